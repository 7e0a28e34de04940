// Package manifest reads the parts of Cargo.toml the resolver needs: the
// crate name and the entry files.
package manifest

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"rfocxt/internal/core/errors"
)

const FileName = "Cargo.toml"

type Manifest struct {
	Root      string
	CrateName string
	// Entries are absolute paths, main.rs before lib.rs, then explicit
	// [lib] and [[bin]] targets.
	Entries []string
}

type cargoToml struct {
	Package *struct {
		Name *string `toml:"name"`
	} `toml:"package"`
	Lib *target  `toml:"lib"`
	Bin []target `toml:"bin"`
}

type target struct {
	Name string `toml:"name"`
	Path string `toml:"path"`
}

// Load reads <root>/Cargo.toml. Each failure class has its own error code so
// the CLI can exit with a distinct status.
func Load(root string) (*Manifest, error) {
	path := filepath.Join(root, FileName)
	data, err := os.ReadFile(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, errors.AddContext(errors.New(errors.CodeManifestMissing, "can not find the Cargo.toml file of the crate"), errors.CtxPath, path)
	}
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "read manifest"), errors.CtxPath, path)
	}

	var doc cargoToml
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeValidationError, "parse manifest"), errors.CtxPath, path)
	}
	if doc.Package == nil {
		return nil, errors.AddContext(errors.New(errors.CodePackageMissing, "manifest has no [package] table"), errors.CtxPath, path)
	}
	if doc.Package.Name == nil || strings.TrimSpace(*doc.Package.Name) == "" {
		return nil, errors.AddContext(errors.New(errors.CodeNameMissing, "manifest has no package name"), errors.CtxPath, path)
	}

	m := &Manifest{
		Root:      root,
		CrateName: CrateName(*doc.Package.Name),
	}
	candidates := []string{
		filepath.Join(root, "src", "main.rs"),
		filepath.Join(root, "src", "lib.rs"),
	}
	if doc.Lib != nil && doc.Lib.Path != "" {
		candidates = append(candidates, filepath.Join(root, filepath.FromSlash(doc.Lib.Path)))
	}
	for _, bin := range doc.Bin {
		if bin.Path != "" {
			candidates = append(candidates, filepath.Join(root, filepath.FromSlash(bin.Path)))
		}
	}

	seen := make(map[string]bool)
	for _, c := range candidates {
		c = filepath.Clean(c)
		if seen[c] {
			continue
		}
		seen[c] = true
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			m.Entries = append(m.Entries, c)
		}
	}
	if len(m.Entries) == 0 {
		return nil, errors.AddContext(errors.New(errors.CodeEntryMissing, "can not find the entry file of the crate"), errors.CtxPath, root)
	}
	return m, nil
}

// CrateName turns a package name into the identifier rustc uses for it.
func CrateName(pkg string) string {
	return strings.ReplaceAll(strings.TrimSpace(pkg), "-", "_")
}
