package substitution

import (
	"mvdan.cc/gofumpt/format"

	"github.com/NextNodeSolutions/project-generator/pkg/errors"
)

// formatGo formats resolved Go source with gofumpt
func formatGo(rel string, content []byte) ([]byte, error) {
	formatted, err := format.Source(content, format.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrSubstFormat, "cannot format %s", rel).
			WithDetail("path", rel)
	}
	return formatted, nil
}
