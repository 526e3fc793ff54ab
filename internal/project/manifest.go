// Package project loads clink.yml, the optional manifest that describes
// where a program's modules live and how to run it.
//
//	name: hello
//	root: src            # module root, relative to the manifest
//	main: hello          # entry module path
//	entry: _             # entry function
//	paths: [lib]         # more module roots, searched after root
//	conflicts: error     # error, first, or last
//	limits:
//	  stack: 1048576     # explicit stack symbols, 0 for no limit
//	  depth: 0           # continuation frames, 0 for no limit
package project

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jcorbin/goclink/internal/module"
	"github.com/jcorbin/goclink/internal/syntax"
)

// FileName is the name of a project manifest.
const FileName = "clink.yml"

// ErrNotFound is returned by Find when no manifest exists.
var ErrNotFound = errors.New(FileName + " not found")

// Manifest is a parsed and validated clink.yml.
type Manifest struct {
	// Path is the absolute path of the manifest file.
	Path string

	Name      string
	Root      string
	Main      string
	Entry     string
	Paths     []string
	Conflicts module.ConflictPolicy

	StackLimit uint
	DepthLimit uint
}

type manifestFile struct {
	Name      string   `yaml:"name"`
	Root      string   `yaml:"root"`
	Main      string   `yaml:"main"`
	Entry     string   `yaml:"entry"`
	Paths     []string `yaml:"paths"`
	Conflicts string   `yaml:"conflicts"`
	Limits    struct {
		Stack uint `yaml:"stack"`
		Depth uint `yaml:"depth"`
	} `yaml:"limits"`
}

// ValidationError collects every problem found in a manifest.
type ValidationError struct {
	Path   string
	Issues []string
}

func (err *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("invalid ")
	b.WriteString(err.Path)
	b.WriteString(":")
	for _, issue := range err.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// Load reads and validates a manifest file.
func Load(path string) (*Manifest, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %v: %w", path, err)
	}
	f, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	defer f.Close()
	return Decode(absPath, f)
}

// Decode parses a manifest from r; path is recorded as the manifest's
// location, and relative roots are taken from its directory.
func Decode(path string, r io.Reader) (*Manifest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var raw manifestFile
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest: %v is empty", path)
		}
		return nil, fmt.Errorf("manifest: parse %v: %w", path, err)
	}
	return raw.toManifest(path)
}

func (raw manifestFile) toManifest(path string) (*Manifest, error) {
	m := &Manifest{
		Path:       path,
		Name:       raw.Name,
		Root:       raw.Root,
		Main:       raw.Main,
		Entry:      raw.Entry,
		StackLimit: raw.Limits.Stack,
		DepthLimit: raw.Limits.Depth,
	}
	errs := ValidationError{Path: path}

	if m.Root == "" {
		m.Root = "."
	}
	if m.Entry == "" {
		m.Entry = module.DefaultEntry
	} else if strings.Contains(m.Entry, ".") || !isIdent(m.Entry) {
		errs.Issues = append(errs.Issues, fmt.Sprintf("entry %q must be a plain function name", m.Entry))
	}
	if m.Main == "" {
		errs.Issues = append(errs.Issues, "main must name the entry module")
	} else if !isIdent(m.Main) {
		errs.Issues = append(errs.Issues, fmt.Sprintf("main %q must be a dotted module path", m.Main))
	}
	if raw.Conflicts != "" {
		if err := m.Conflicts.Set(raw.Conflicts); err != nil {
			errs.Issues = append(errs.Issues, err.Error())
		}
	}
	for i, p := range raw.Paths {
		if p == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("paths[%d] must be a non-empty directory", i))
			continue
		}
		m.Paths = append(m.Paths, p)
	}

	if len(errs.Issues) > 0 {
		return nil, &errs
	}
	return m, nil
}

func isIdent(s string) bool {
	for _, part := range strings.Split(s, ".") {
		if part == "" {
			return false
		}
		for _, r := range part {
			if !syntax.IsIdentRune(r) {
				return false
			}
		}
	}
	return true
}

// Dir returns the directory containing the manifest.
func (m *Manifest) Dir() string { return filepath.Dir(m.Path) }

// Roots returns the module roots in search order, as paths joined onto the
// manifest's directory unless absolute.
func (m *Manifest) Roots() []string {
	roots := make([]string, 0, 1+len(m.Paths))
	for _, p := range append([]string{m.Root}, m.Paths...) {
		if !filepath.IsAbs(p) {
			p = filepath.Join(m.Dir(), p)
		}
		roots = append(roots, p)
	}
	return roots
}

// Loader returns a loader searching the manifest's roots in order.
func (m *Manifest) Loader() module.Loader {
	var ls module.Multi
	for _, root := range m.Roots() {
		ls = append(ls, module.Dir(root))
	}
	return ls
}

// Resolver returns a resolver configured by the manifest.
func (m *Manifest) Resolver() module.Resolver {
	return module.Resolver{
		Loader:   m.Loader(),
		Conflict: m.Conflicts,
		Entry:    m.Entry,
	}
}

// Find looks for a manifest in dir and each of its parents.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotFound
		}
		dir = parent
	}
}
