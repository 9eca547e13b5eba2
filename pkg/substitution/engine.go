package substitution

import (
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/rs/zerolog"

	"github.com/NextNodeSolutions/project-generator/pkg/errors"
	"github.com/NextNodeSolutions/project-generator/pkg/logging"
	"github.com/NextNodeSolutions/project-generator/pkg/manifest"
	"github.com/NextNodeSolutions/project-generator/pkg/types"
)

// GitDir is never copied from a template
const GitDir = ".git"

// engine holds the state of one Apply call
type engine struct {
	ctx      *types.GenerationContext
	manifest *manifest.Manifest
	src      billy.Filesystem
	rules    []manifest.Rule
	scanner  *residualScanner
	logger   zerolog.Logger

	tree    *types.ResolvedTree
	sources map[string]string
}

// Apply resolves every file and directory of src against ctx
func Apply(ctx *types.GenerationContext, m *manifest.Manifest, src billy.Filesystem) (*types.ResolvedTree, error) {
	if ctx == nil || m == nil || src == nil {
		return nil, errors.New(errors.ErrInternal, "substitution needs a context, a manifest and a source tree")
	}

	e := &engine{
		ctx:      ctx,
		manifest: m,
		src:      src,
		rules:    m.EffectiveRules(),
		scanner:  newResidualScanner(m.Delimiters),
		logger:   logging.GetLogger("substitution"),
		tree:     &types.ResolvedTree{},
		sources:  make(map[string]string),
	}

	done := logging.LogOperationStart(e.logger, "substitute")
	defer done()

	if err := e.walk("", ""); err != nil {
		return nil, err
	}

	e.logger.Info().
		Int("entries", len(e.tree.Entries)).
		Int("files", e.tree.Files()).
		Msg("Template resolved")
	return e.tree, nil
}

// walk visits srcDir, whose resolved path is destDir
func (e *engine) walk(srcDir, destDir string) error {
	infos, err := e.src.ReadDir(dirArg(srcDir))
	if err != nil {
		return errors.Wrapf(err, errors.ErrSubstRead, "cannot list %s", displayPath(srcDir)).
			WithDetail("path", displayPath(srcDir))
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })

	for _, info := range infos {
		name := info.Name()
		rel := path.Join(srcDir, name)

		if e.skip(srcDir, info) {
			e.logger.Trace().Str("path", rel).Msg("Skipping")
			continue
		}

		destName, err := e.resolveName(rel, name)
		if err != nil {
			return err
		}
		dest := path.Join(destDir, destName)
		if prev, taken := e.sources[dest]; taken {
			return errors.Newf(errors.ErrSubstPathCollision, "%s and %s both resolve to %s", prev, rel, dest).
				WithDetail("path", dest).
				WithDetail("sources", []string{prev, rel})
		}
		e.sources[dest] = rel

		if info.IsDir() {
			e.tree.Entries = append(e.tree.Entries, types.TreeEntry{
				Path: dest,
				Dir:  true,
				Mode: dirMode(info.Mode()),
			})
			if err := e.walk(rel, dest); err != nil {
				return err
			}
			continue
		}

		entry, err := e.resolveFile(rel, dest, info)
		if err != nil {
			return err
		}
		e.tree.Entries = append(e.tree.Entries, entry)
	}
	return nil
}

func (e *engine) skip(srcDir string, info os.FileInfo) bool {
	if info.Name() == GitDir {
		return true
	}
	if srcDir == "" && !info.IsDir() && info.Name() == e.manifest.FileName() {
		return true
	}
	// links are not followed; templates are plain trees
	return info.Mode()&fs.ModeSymlink != 0
}

func (e *engine) resolveFile(rel, dest string, info os.FileInfo) (types.TreeEntry, error) {
	content, err := util.ReadFile(e.src, rel)
	if err != nil {
		return types.TreeEntry{}, errors.Wrapf(err, errors.ErrSubstRead, "cannot read %s", rel).
			WithDetail("path", rel)
	}

	entry := types.TreeEntry{
		Path: dest,
		Mode: fileMode(info.Mode()),
	}

	if IsBinary(content) {
		e.logger.Debug().Str("path", rel).Msg("Copying binary file unchanged")
		entry.Content = content
		entry.Binary = true
		return entry, nil
	}

	text, err := e.substituteText(rel, string(content))
	if err != nil {
		return types.TreeEntry{}, err
	}

	out, err := e.applyStructured(rel, []byte(text))
	if err != nil {
		return types.TreeEntry{}, err
	}

	if e.manifest.FormatGo && strings.HasSuffix(dest, ".go") {
		if out, err = formatGo(rel, out); err != nil {
			return types.TreeEntry{}, err
		}
	}

	if name, found := e.scanner.find(string(out)); found {
		return types.TreeEntry{}, unresolved(name, rel)
	}

	entry.Content = out
	return entry, nil
}

// rulesFor returns the rules of kind governing rel, in precedence order
func (e *engine) rulesFor(rel string, kind manifest.RuleKind) []manifest.Rule {
	var out []manifest.Rule
	for _, r := range e.rules {
		if r.Kind == kind && r.Applies(rel) {
			out = append(out, r)
		}
	}
	return out
}

func unresolved(name, rel string) *errors.GeneratorError {
	return errors.Newf(errors.ErrSubstUnresolved, "unresolved placeholder %q in %s", name, rel).
		WithDetail("placeholder", name).
		WithDetail("path", rel)
}

func dirArg(rel string) string {
	if rel == "" {
		return "/"
	}
	return rel
}

func displayPath(rel string) string {
	if rel == "" {
		return "."
	}
	return rel
}

func fileMode(m fs.FileMode) fs.FileMode {
	if perm := m.Perm(); perm != 0 {
		return perm
	}
	return 0644
}

func dirMode(m fs.FileMode) fs.FileMode {
	if perm := m.Perm(); perm != 0 {
		return perm
	}
	return 0755
}
