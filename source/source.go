// Package source supplies shader source text by logical filename.
//
// A Provider is an immutable snapshot: hot reload replaces the whole
// provider rather than mutating one. Map is the in-memory snapshot, FromFS
// and LoadDir build one from a file system, and Watcher produces fresh
// snapshots of a directory whenever its files change.
package source

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
)

// ErrNotFound is returned when a provider has no source for a filename.
var ErrNotFound = errors.New("source: not found")

// Provider returns shader source text by logical filename, for example
// "shape.vert". Missing files return an error wrapping ErrNotFound.
type Provider interface {
	Source(filename string) (string, error)
}

// Func adapts a lookup function to Provider.
type Func func(filename string) (string, error)

// Source implements Provider.
func (f Func) Source(filename string) (string, error) { return f(filename) }

// Map is a Provider backed by a map of filename to source text.
// A Map must not be modified after it has been handed to a manager.
type Map map[string]string

// Source implements Provider.
func (m Map) Source(filename string) (string, error) {
	src, ok := m[filename]
	if !ok {
		return "", fmt.Errorf("shader source for %q: %w", filename, ErrNotFound)
	}
	return src, nil
}

// Names returns the filenames in sorted order.
func (m Map) Names() []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// IsShaderFile reports whether name has a stage extension (.vert or .frag).
func IsShaderFile(name string) bool {
	return strings.HasSuffix(name, ".vert") || strings.HasSuffix(name, ".frag")
}

// FromFS reads every shader file directly under dir in fsys into a Map.
// Files are keyed by base name. Subdirectories and other files are ignored.
func FromFS(fsys fs.FS, dir string) (Map, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("source: read %s: %w", dir, err)
	}
	m := make(Map, len(entries))
	for _, e := range entries {
		if e.IsDir() || !IsShaderFile(e.Name()) {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("source: read %s: %w", e.Name(), err)
		}
		m[e.Name()] = string(data)
	}
	return m, nil
}

// LoadDir reads every shader file in the operating system directory dir.
func LoadDir(dir string) (Map, error) {
	return FromFS(os.DirFS(dir), ".")
}
