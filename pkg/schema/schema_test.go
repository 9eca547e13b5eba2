package schema

import (
	"testing"

	"github.com/NextNodeSolutions/project-generator/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSchema(t *testing.T) {
	s, err := Default()
	require.NoError(t, err)

	assert.Equal(t, CurrentVersion, s.Version)
	assert.Equal(t, []string{"description", "project_name"}, s.RequiredNames())

	license, ok := s.Field("license")
	require.True(t, ok)
	assert.Equal(t, Enumerated, license.Kind)
	assert.Equal(t, "MIT", license.Default)
	assert.True(t, license.Allows("Apache-2.0"))
	assert.False(t, license.Allows("WTFPL"))

	develop, ok := s.Field("create_develop_branch")
	require.True(t, ok)
	assert.Equal(t, TypeBool, develop.Type)
	assert.Equal(t, false, develop.Default)

	assert.True(t, s.Has("category"))
	assert.False(t, s.Has("keywords"))
}

func TestParseRejectsInvalidSchemas(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "wrong version",
			doc:  "schema_version = 2\n",
		},
		{
			name: "unknown kind",
			doc: `schema_version = 1
[[fields]]
name = "x"
kind = "sometimes"`,
		},
		{
			name: "enumerated without values",
			doc: `schema_version = 1
[[fields]]
name = "x"
kind = "enumerated"`,
		},
		{
			name: "duplicate field",
			doc: `schema_version = 1
[[fields]]
name = "x"
kind = "optional"
[[fields]]
name = "x"
kind = "optional"`,
		},
		{
			name: "default outside values",
			doc: `schema_version = 1
[[fields]]
name = "x"
kind = "enumerated"
values = ["a"]
default = "b"`,
		},
		{
			name: "bool default on string field",
			doc: `schema_version = 1
[[fields]]
name = "x"
kind = "optional"
default = true`,
		},
		{
			name: "not toml",
			doc:  "schema_version = [",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrInternal))
		})
	}
}

func TestParseDefaultsTypeToString(t *testing.T) {
	s, err := Parse([]byte(`schema_version = 1
[[fields]]
name = "owner"
kind = "optional"`))
	require.NoError(t, err)

	f, ok := s.Field("owner")
	require.True(t, ok)
	assert.Equal(t, TypeString, f.Type)
	assert.True(t, f.Allows("anything"))
}
