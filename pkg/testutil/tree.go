package testutil

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// FileTree represents a directory structure for testing. Values are file
// contents (string or []byte) or nested FileTrees.
type FileTree map[string]interface{}

// WriteTree creates tree below root on the host filesystem
func WriteTree(t *testing.T, root string, tree FileTree) {
	t.Helper()

	for name, content := range tree {
		full := filepath.Join(root, filepath.FromSlash(name))

		switch v := content.(type) {
		case string:
			writeFile(t, full, []byte(v))
		case []byte:
			writeFile(t, full, v)
		case FileTree:
			if err := os.MkdirAll(full, 0755); err != nil {
				t.Fatalf("Failed to create directory %s: %v", full, err)
			}
			WriteTree(t, full, v)
		default:
			t.Fatalf("Invalid file tree content type for %s: %T", name, content)
		}
	}
}

func writeFile(t *testing.T, full string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", full, err)
	}
	if err := os.WriteFile(full, data, 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", full, err)
	}
}

// WriteFS creates tree below root on a billy filesystem
func WriteFS(t *testing.T, fs billy.Filesystem, root string, tree FileTree) {
	t.Helper()

	for name, content := range tree {
		full := path.Join(root, name)

		switch v := content.(type) {
		case string:
			if err := util.WriteFile(fs, full, []byte(v), 0644); err != nil {
				t.Fatalf("Failed to write file %s: %v", full, err)
			}
		case []byte:
			if err := util.WriteFile(fs, full, v, 0644); err != nil {
				t.Fatalf("Failed to write file %s: %v", full, err)
			}
		case FileTree:
			if err := fs.MkdirAll(full, 0755); err != nil {
				t.Fatalf("Failed to create directory %s: %v", full, err)
			}
			WriteFS(t, fs, full, v)
		default:
			t.Fatalf("Invalid file tree content type for %s: %T", name, content)
		}
	}
}

// ReadTree returns every regular file below root keyed by slash path
func ReadTree(t *testing.T, root string) map[string]string {
	t.Helper()

	files := make(map[string]string)
	err := filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to read tree %s: %v", root, err)
	}
	return files
}

// ListDir returns the sorted entry names of dir, or nil when it does not exist
func ListDir(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("Failed to list %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

// PathExists reports whether p exists
func PathExists(p string) bool {
	_, err := os.Lstat(p)
	return err == nil
}
