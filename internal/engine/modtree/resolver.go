package modtree

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"rfocxt/internal/core/errors"
	"rfocxt/internal/engine/names"
	"rfocxt/internal/engine/parser"
	"rfocxt/internal/engine/syntax"
	"rfocxt/internal/shared/observability"
)

// Source supplies parsed files. *parser.Loader satisfies it.
type Source interface {
	Load(path string) (*parser.File, error)
}

type ParseErrorPolicy int

const (
	// SkipOnParseError indexes a file with syntax errors as an empty scope.
	SkipOnParseError ParseErrorPolicy = iota
	AbortOnParseError
)

type Options struct {
	OnParseError ParseErrorPolicy
	Logger       *slog.Logger
}

type Resolver struct {
	src    Source
	opts   Options
	logger *slog.Logger
}

func NewResolver(src Source, opts Options) *Resolver {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{src: src, opts: opts, logger: logger}
}

// Build constructs the module forest for crateName from its entry files,
// then runs the naming and resolution passes.
func (r *Resolver) Build(crateName string, entries []string) (*Crate, error) {
	start := time.Now()
	defer func() {
		observability.StageDuration.WithLabelValues("resolve").Observe(time.Since(start).Seconds())
	}()

	c := newCrate(crateName)
	for _, entry := range entries {
		items, err := r.load(entry)
		if err != nil {
			return nil, err
		}
		id := c.addRoot(names.NewPath(crateName), filepath.Dir(entry), entry)
		if err := r.populate(c, id, items, []string{absPath(entry)}); err != nil {
			return nil, err
		}
	}

	c.stampNames()
	c.resolveAll()
	observability.ModulesResolved.Set(float64(len(c.Nodes)))
	r.logger.Debug("module tree built", "crate", crateName, "roots", len(c.Roots), "scopes", len(c.Nodes))
	return c, nil
}

// populate indexes items into node id and recurses: inline modules first,
// then function scopes, then file-backed modules.
func (r *Resolver) populate(c *Crate, id NodeID, items []parser.Item, chain []string) error {
	node := c.Nodes[id]
	ctx := syntax.Build(items)
	node.Context = ctx

	for _, m := range ctx.Mods {
		if modName(m) == "" {
			return errors.AddContext(errors.New(errors.CodeModNameEmpty, "mod declaration without a name"), errors.CtxPath, node.File)
		}
	}

	for _, m := range ctx.Mods {
		if !m.Inline {
			continue
		}
		name := modName(m)
		child := c.addChild(id, ScopeModule, name, node.Path.Append(name), filepath.Join(node.Dir, name), node.File)
		if err := r.populate(c, child, m.Items, chain); err != nil {
			return err
		}
	}

	for _, fn := range ctx.FunctionScopes() {
		path := names.Concat(node.Path, names.ParsePath(fn.Scoped))
		child := c.addChild(id, ScopeFunction, fn.Scoped, path, node.Dir, node.File)
		c.Nodes[child].Function = fn
		if err := r.populate(c, child, fn.Nested, chain); err != nil {
			return err
		}
	}

	for _, m := range ctx.Mods {
		if m.Inline {
			continue
		}
		name := modName(m)
		path := node.Path.Append(name)
		file, dir, err := locate(node.Dir, name, m.PathAttr)
		if err != nil {
			return errors.AddContext(err, errors.CtxModule, path.String())
		}
		abs := absPath(file)
		for _, seen := range chain {
			if seen == abs {
				return errors.AddContext(
					errors.AddContext(errors.New(errors.CodeModPath, "module file includes itself"), errors.CtxPath, file),
					errors.CtxModule, path.String())
			}
		}
		items, err := r.load(file)
		if err != nil {
			return err
		}
		child := c.addChild(id, ScopeModule, name, path, dir, file)
		if err := r.populate(c, child, items, append(chain[:len(chain):len(chain)], abs)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) load(path string) ([]parser.Item, error) {
	file, err := r.src.Load(path)
	if err != nil {
		return nil, err
	}
	if !file.HasErrors {
		return file.Items, nil
	}
	if r.opts.OnParseError == AbortOnParseError {
		err := errors.New(errors.CodeParse, fmt.Sprintf("syntax error at line %d column %d", file.ErrorAt.Line, file.ErrorAt.Column))
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}
	r.logger.Warn("skipping file with syntax errors", "path", path, "line", file.ErrorAt.Line, "column", file.ErrorAt.Column)
	return nil, nil
}

// locate finds the backing file of a file-backed module and the directory
// its own children are looked up in. Precedence: #[path], then name.rs,
// then name/mod.rs.
func locate(owning, name, pathAttr string) (string, string, error) {
	if pathAttr != "" {
		file := pathAttr
		if !filepath.IsAbs(file) {
			file = filepath.Join(owning, file)
		}
		if !isFile(file) {
			return "", "", errors.AddContext(errors.New(errors.CodeModPath, "#[path] target does not exist"), errors.CtxPath, file)
		}
		if filepath.Base(file) == "mod.rs" {
			return file, filepath.Dir(file), nil
		}
		stemDir := strings.TrimSuffix(file, filepath.Ext(file))
		if isDir(stemDir) {
			return file, stemDir, nil
		}
		return file, owning, nil
	}

	sibling := filepath.Join(owning, name+".rs")
	if isFile(sibling) {
		dir := filepath.Join(owning, name)
		if isDir(dir) {
			return sibling, dir, nil
		}
		return sibling, owning, nil
	}

	modRS := filepath.Join(owning, name, "mod.rs")
	if isFile(modRS) {
		return modRS, filepath.Join(owning, name), nil
	}

	err := errors.New(errors.CodeModPath, fmt.Sprintf("no %s.rs or %s/mod.rs", name, name))
	return "", "", errors.AddContext(err, errors.CtxPath, owning)
}

// modName drops the raw identifier prefix: `mod r#type;` lives in type.rs.
func modName(m *syntax.ModDecl) string {
	return strings.TrimPrefix(m.Name, "r#")
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
