package output

import "github.com/charmbracelet/lipgloss"

// Adaptive colors for light and dark terminal backgrounds
var (
	colorSuccess = lipgloss.AdaptiveColor{Light: "#1A7F37", Dark: "#3FB950"}
	colorPath    = lipgloss.AdaptiveColor{Light: "#0550AE", Dark: "#79C0FF"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#6E7781", Dark: "#8B949E"}
	colorAccent  = lipgloss.AdaptiveColor{Light: "#8250DF", Dark: "#D2A8FF"}
)

// Styles are the semantic styles used by the renderer and the prompts
type Styles struct {
	Bold    lipgloss.Style
	Success lipgloss.Style
	Path    lipgloss.Style
	Muted   lipgloss.Style
	Heading lipgloss.Style
	Accent  lipgloss.Style
}

// NewStyles builds the style set bound to a lipgloss renderer
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Bold:    r.NewStyle().Bold(true),
		Success: r.NewStyle().Foreground(colorSuccess).Bold(true),
		Path:    r.NewStyle().Foreground(colorPath),
		Muted:   r.NewStyle().Foreground(colorMuted),
		Heading: r.NewStyle().Foreground(colorAccent).Bold(true),
		Accent:  r.NewStyle().Foreground(colorAccent),
	}
}
