// Package manifest loads template declaration files.
//
// A template directory carries one declaration file, template.toml,
// template.yaml, template.yml or template.hcl. It names the placeholders the
// template expects and an ordered list of replacement rules. The loader
// validates the declaration and derives the authoritative list of placeholder
// names the resolver must satisfy.
package manifest
