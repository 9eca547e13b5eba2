package types

import "io/fs"

// TreeEntry is one node of a resolved tree
type TreeEntry struct {
	// Path is relative to the tree root, slash separated
	Path string
	// Dir marks directory entries; Content is nil for them
	Dir     bool
	Content []byte
	Mode    fs.FileMode
	// Binary entries were copied without substitution
	Binary bool
}

// ResolvedTree is the output of substitution: entries in depth-first,
// lexical-per-directory order, parents before children.
type ResolvedTree struct {
	Entries []TreeEntry
}

// Files returns the number of non-directory entries
func (t *ResolvedTree) Files() int {
	n := 0
	for _, e := range t.Entries {
		if !e.Dir {
			n++
		}
	}
	return n
}

// Find returns the entry at path
func (t *ResolvedTree) Find(path string) (TreeEntry, bool) {
	for _, e := range t.Entries {
		if e.Path == path {
			return e, true
		}
	}
	return TreeEntry{}, false
}

// Paths lists every entry path in tree order
func (t *ResolvedTree) Paths() []string {
	out := make([]string, len(t.Entries))
	for i, e := range t.Entries {
		out[i] = e.Path
	}
	return out
}
