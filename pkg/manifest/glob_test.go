package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"**", "a/b/c.txt", true},
		{"package.json", "package.json", true},
		{"package.json", "apps/web/package.json", true},
		{"*.json", "tsconfig.json", true},
		{"*.json", "src/index.ts", false},
		{"src/**", "src", true},
		{"src/**", "src/lib/index.ts", true},
		{"src/**", "test/index.ts", false},
		{"src/*.ts", "src/index.ts", true},
		{"src/*.ts", "src/lib/index.ts", false},
		{"**/*.go", "cmd/app/main.go", true},
		{"**/*.go", "main.go", true},
		{".github/workflows/*.yml", ".github/workflows/ci.yml", true},
		{"", "anything", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"_"+tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(tt.pattern, tt.path))
		})
	}
}

func TestValidPattern(t *testing.T) {
	assert.True(t, ValidPattern("src/**/*.ts"))
	assert.False(t, ValidPattern("src/[.ts"))
}
