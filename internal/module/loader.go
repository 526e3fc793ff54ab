package module

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Ext is the file extension of clink source files.
const Ext = ".clink"

// Source is the text of one module, along with a name for positions in
// error messages.
type Source struct {
	Name string
	Text []byte
}

// Loader maps a dotted module path to its source.
// Loaders must return an error wrapping ErrModuleNotFound when the path names
// no module, so that callers may fall back to other loaders.
type Loader interface {
	Load(path string) (Source, error)
}

// FilePath converts a dotted module path like "a.b.c" into the slash
// separated file name "a/b/c.clink".
func FilePath(modPath string) string {
	return strings.ReplaceAll(modPath, ".", "/") + Ext
}

// PathOf converts a slash or OS separated file name, relative to a module
// root, into a dotted module path.
func PathOf(name string) (string, error) {
	name = filepath.ToSlash(filepath.Clean(name))
	if path.Ext(name) != Ext {
		return "", fmt.Errorf("%q is not a %v file", name, Ext)
	}
	if name == ".." || strings.HasPrefix(name, "../") || path.IsAbs(name) {
		return "", fmt.Errorf("%q is outside of the module root", name)
	}
	base := strings.TrimSuffix(name, Ext)
	if strings.Contains(base, ".") {
		return "", fmt.Errorf("%q cannot be named by a module path", name)
	}
	return strings.ReplaceAll(base, "/", "."), nil
}

// FS loads modules from a file system.
type FS struct {
	FS fs.FS

	// Root is prefixed to file names in Source.Name.
	Root string
}

// Dir returns a loader of modules under a directory.
func Dir(root string) FS {
	return FS{FS: os.DirFS(root), Root: root}
}

// Load reads and decodes the file for a module path.
func (l FS) Load(modPath string) (Source, error) {
	name := FilePath(modPath)
	src := Source{Name: name}
	if l.Root != "" {
		src.Name = filepath.Join(l.Root, filepath.FromSlash(name))
	}

	if !fs.ValidPath(name) {
		return src, fmt.Errorf("%w: %q", ErrModuleNotFound, modPath)
	}
	b, err := fs.ReadFile(l.FS, name)
	if errors.Is(err, fs.ErrNotExist) {
		return src, fmt.Errorf("%w: %q (no %v)", ErrModuleNotFound, modPath, src.Name)
	} else if err != nil {
		return src, err
	}

	src.Text, err = decodeSource(b)
	if err != nil {
		return src, fmt.Errorf("decoding %v: %w", src.Name, err)
	}
	return src, nil
}

// decodeSource normalizes source text to UTF-8: a byte order mark selects
// UTF-16 or is stripped, otherwise the text is taken as UTF-8. Invalid
// sequences become U+FFFD, which the lexer rejects with a position.
func decodeSource(b []byte) ([]byte, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, b)
	return out, err
}

// Multi tries each loader in order, moving on only when a loader does not
// have the module.
type Multi []Loader

// Load returns the source from the first loader that has the module.
func (ls Multi) Load(modPath string) (Source, error) {
	for _, l := range ls {
		src, err := l.Load(modPath)
		if err == nil || !errors.Is(err, ErrModuleNotFound) {
			return src, err
		}
	}
	return Source{}, fmt.Errorf("%w: %q", ErrModuleNotFound, modPath)
}
