package resolver

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/NextNodeSolutions/project-generator/pkg/manifest"
	"github.com/NextNodeSolutions/project-generator/pkg/schema"
)

// TimestampLayout formats the generation timestamp in derived project names
const TimestampLayout = "20060102-150405"

var slugUnsafe = regexp.MustCompile(`[^a-z0-9._-]+`)

// DefaultProjectName derives a project name from the template name and timestamp
func DefaultProjectName(src Sources) string {
	return fmt.Sprintf("%s-%s", src.Template.Name, src.Timestamp.UTC().Format(TimestampLayout))
}

// Slug turns a project name into a repository and subdomain safe identifier
func Slug(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugUnsafe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-.")
}

// Defaults computes the lowest-priority layer. slugName is the effective
// project name so derived URLs share the project's slug.
func Defaults(src Sources, m *manifest.Manifest, s *schema.Schema, slugName string) map[string]interface{} {
	system := make(map[string]interface{})
	ext := make(map[string]interface{})

	for _, f := range s.Fields {
		if f.Default != nil {
			system[f.Name] = f.Default
		}
	}

	if s.Has(FieldProjectName) {
		system[FieldProjectName] = DefaultProjectName(src)
	}
	if s.Has(FieldDescription) {
		desc := fmt.Sprintf("%s project", src.Template.Name)
		if m != nil && strings.TrimSpace(m.Description) != "" {
			desc = strings.TrimSpace(m.Description)
		}
		system[FieldDescription] = fmt.Sprintf("%s (generated from %s)", desc, src.Template.String())
	}
	if f, ok := s.Field(FieldCategory); ok && src.Template.Category != "" && f.Allows(src.Template.Category) {
		system[FieldCategory] = src.Template.Category
	}

	slug := Slug(slugName)
	if slug != "" {
		if s.Has(FieldRepositoryURL) && src.Organization != "" {
			system[FieldRepositoryURL] = fmt.Sprintf("https://github.com/%s/%s", src.Organization, slug)
		}
		if s.Has(FieldWebsiteURL) && src.WebsiteDomain != "" {
			system[FieldWebsiteURL] = fmt.Sprintf("https://%s.%s", slug, src.WebsiteDomain)
		}
	}

	if m != nil {
		for _, p := range m.Placeholders {
			if !p.HasDefault || s.Has(p.Name) {
				continue
			}
			if p.IsList() {
				ext[p.Name] = splitList(p.Default)
			} else {
				ext[p.Name] = p.Default
			}
		}
	}

	return map[string]interface{}{
		systemKey:    system,
		extensionKey: ext,
	}
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
