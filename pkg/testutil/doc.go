// Package testutil provides fixtures shared by the package tests.
//
// Trees are declared inline as nested FileTree maps and written either to a
// real directory (usually t.TempDir()) or to a billy filesystem such as memfs.
package testutil
