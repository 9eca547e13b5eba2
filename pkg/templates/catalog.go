// Package templates discovers project templates under the templates root.
//
// Templates are laid out as <root>/<category>/<name>/, each with a
// declaration file at its top.
package templates

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/NextNodeSolutions/project-generator/pkg/errors"
	"github.com/NextNodeSolutions/project-generator/pkg/logging"
	"github.com/NextNodeSolutions/project-generator/pkg/manifest"
	"github.com/NextNodeSolutions/project-generator/pkg/types"
)

// maxSuggestions caps the names offered for an unknown template
const maxSuggestions = 3

// Template is a template found in the catalog
type Template struct {
	Identity types.Identity
	// Dir is the template directory on the host filesystem
	Dir string
	// Manifest is the declaration file path relative to the catalog root
	Manifest    string
	Description string
}

// Catalog lists and finds templates
type Catalog struct {
	root string
	fs   billy.Filesystem
}

// New returns a catalog over the host directory root
func New(root string) *Catalog {
	return &Catalog{root: root, fs: osfs.New(root)}
}

// NewWithFS returns a catalog reading from fs; root is only used to report directories
func NewWithFS(root string, fs billy.Filesystem) *Catalog {
	return &Catalog{root: root, fs: fs}
}

// Root returns the catalog root directory
func (c *Catalog) Root() string {
	return c.root
}

// List returns every template, sorted by category then name
func (c *Catalog) List() ([]Template, error) {
	logger := logging.GetLogger("templates")

	categories, err := c.fs.ReadDir("/")
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(err, errors.ErrManifestNotFound, "templates directory %s does not exist", c.root).
				WithDetail("path", c.root)
		}
		return nil, errors.Wrapf(err, errors.ErrManifestNotFound, "cannot read templates directory %s", c.root).
			WithDetail("path", c.root)
	}

	var out []Template
	for _, cat := range categories {
		if !cat.IsDir() || hidden(cat.Name()) {
			continue
		}
		entries, err := c.fs.ReadDir(cat.Name())
		if err != nil {
			logger.Warn().Err(err).Str("category", cat.Name()).Msg("Skipping unreadable category")
			continue
		}
		for _, e := range entries {
			if !e.IsDir() || hidden(e.Name()) {
				continue
			}
			tpl, ok := c.load(types.Identity{Category: cat.Name(), Name: e.Name()})
			if ok {
				out = append(out, tpl)
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Identity.Category != out[j].Identity.Category {
			return out[i].Identity.Category < out[j].Identity.Category
		}
		return out[i].Identity.Name < out[j].Identity.Name
	})
	return out, nil
}

// Find resolves "name" or "category/name" to a template
func (c *Catalog) Find(ref string) (Template, error) {
	ref = strings.Trim(strings.TrimSpace(ref), "/")
	if ref == "" {
		return Template{}, errors.New(errors.ErrManifestNotFound, "no template given")
	}

	all, err := c.List()
	if err != nil {
		return Template{}, err
	}

	var matches []Template
	for _, tpl := range all {
		if tpl.Identity.String() == ref || tpl.Identity.Name == ref {
			matches = append(matches, tpl)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		suggestions := Suggest(ref, all)
		e := errors.Newf(errors.ErrManifestNotFound, "template %q not found", ref).
			WithDetail("template", ref)
		if len(suggestions) > 0 {
			e = e.WithDetail("suggestions", suggestions)
		}
		return Template{}, e
	default:
		candidates := make([]string, len(matches))
		for i, m := range matches {
			candidates[i] = m.Identity.String()
		}
		return Template{}, errors.Newf(errors.ErrManifestAmbiguous,
			"template %q exists in several categories: %s", ref, strings.Join(candidates, ", ")).
			WithDetail("template", ref).
			WithDetail("allowed", candidates)
	}
}

// Suggest returns up to three template references close to ref
func Suggest(ref string, all []Template) []string {
	targets := make([]string, 0, len(all))
	for _, tpl := range all {
		targets = append(targets, tpl.Identity.String())
	}

	ranks := fuzzy.RankFindFold(ref, targets)
	sort.Sort(ranks)

	seen := make(map[string]bool)
	var out []string
	for _, r := range ranks {
		if !seen[r.Target] {
			seen[r.Target] = true
			out = append(out, r.Target)
		}
	}

	// typos are not subsequences; fall back to edit distance on the bare name
	if len(out) < maxSuggestions {
		type near struct {
			ref  string
			dist int
		}
		var nearby []near
		for _, tpl := range all {
			d := fuzzy.LevenshteinDistance(strings.ToLower(ref), strings.ToLower(tpl.Identity.Name))
			if d <= 3 && !seen[tpl.Identity.String()] {
				nearby = append(nearby, near{tpl.Identity.String(), d})
			}
		}
		sort.SliceStable(nearby, func(i, j int) bool { return nearby[i].dist < nearby[j].dist })
		for _, n := range nearby {
			seen[n.ref] = true
			out = append(out, n.ref)
		}
	}

	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}

func (c *Catalog) load(id types.Identity) (Template, bool) {
	logger := logging.GetLogger("templates")
	dir := path.Join(id.Category, id.Name)

	for _, name := range manifest.FileNames {
		rel := path.Join(dir, name)
		if _, err := c.fs.Stat(rel); err != nil {
			continue
		}

		tpl := Template{
			Identity: id,
			Dir:      filepath.Join(c.root, id.Category, id.Name),
			Manifest: rel,
		}
		data, err := util.ReadFile(c.fs, rel)
		if err != nil {
			logger.Warn().Err(err).Str("template", id.String()).Msg("Cannot read template declaration")
			return tpl, true
		}
		m, err := manifest.Parse(rel, data)
		if err != nil {
			logger.Warn().Err(err).Str("template", id.String()).Msg("Invalid template declaration")
			return tpl, true
		}
		tpl.Description = m.Description
		return tpl, true
	}
	return Template{}, false
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
