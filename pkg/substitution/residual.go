package substitution

import (
	"regexp"

	"github.com/NextNodeSolutions/project-generator/pkg/manifest"
)

// residualScanner finds tokens left after substitution
type residualScanner struct {
	re *regexp.Regexp
}

func newResidualScanner(d manifest.Delimiters) *residualScanner {
	return &residualScanner{re: d.TokenPattern()}
}

// find returns the placeholder name of the first residual token
func (s *residualScanner) find(text string) (string, bool) {
	m := s.re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}
