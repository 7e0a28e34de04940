// Package focal computes the transitive closure of declarations a function
// depends on and renders it back to source.
package focal

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"rfocxt/internal/data/callsandtypes"
	"rfocxt/internal/engine/symbols"
	"rfocxt/internal/shared/observability"
	"rfocxt/internal/shared/util"
)

type BodyMode string

const (
	// BodiesAll keeps every function body.
	BodiesAll BodyMode = "all"
	// BodiesFocal keeps only the target's body; other functions are emitted
	// as `signature {}`.
	BodiesFocal BodyMode = "focal"
)

type Options struct {
	Bodies   BodyMode
	Annotate bool
}

// Engine is safe for concurrent use: it only reads the tables, and every
// run owns its Closure.
type Engine struct {
	tables *symbols.Tables
	opts   Options
}

func NewEngine(tables *symbols.Tables, opts Options) *Engine {
	if opts.Bodies == "" {
		opts.Bodies = BodiesAll
	}
	return &Engine{tables: tables, opts: opts}
}

// Closure accumulates the declarations reached from one target function.
type Closure struct {
	Target    string
	Functions map[string]*symbols.FunctionEntry
	Types     map[string]*symbols.TypeEntry
	seen      map[string]bool
}

func NewClosure(target string) *Closure {
	return &Closure{
		Target:    target,
		Functions: make(map[string]*symbols.FunctionEntry),
		Types:     make(map[string]*symbols.TypeEntry),
		seen:      make(map[string]bool),
	}
}

// Size is the number of declarations in the closure.
func (c *Closure) Size() int {
	return len(c.Functions) + len(c.Types)
}

// Result is the output of one run.
type Result struct {
	Source string
	Record callsandtypes.Record
	Size   int
}

// Seed builds the initial worklist for target from its extractor record.
func (e *Engine) Seed(target *symbols.FunctionEntry, rec *callsandtypes.Record) []string {
	var work []string
	if rec != nil {
		for _, raw := range rec.Calls {
			work = append(work, e.candidates(raw, target).all()...)
		}
		for _, raw := range rec.Types {
			work = append(work, e.candidates(raw, target).all()...)
		}
	}
	work = append(work, target.Canonical)
	return append(work, containerRefs(target)...)
}

// containerRefs are the names a function drags in through its container:
// the impl's self type and trait, or the declaring trait.
func containerRefs(fn *symbols.FunctionEntry) []string {
	var out []string
	switch {
	case fn.Impl != nil:
		if fn.Impl.Target.IsResolved() {
			out = append(out, fn.Impl.Target.Canonical())
		}
		if fn.Impl.Trait.IsResolved() {
			out = append(out, fn.Impl.Trait.Canonical())
		}
	case fn.Trait != nil:
		out = append(out, fn.Trait.Canonical)
	}
	return out
}

// Expand drains work into c. Names already seen are skipped, so expanding
// the same worklist again leaves c unchanged.
func (e *Engine) Expand(c *Closure, work []string) {
	for len(work) > 0 {
		name := work[len(work)-1]
		work = work[:len(work)-1]
		if name == "" || c.seen[name] {
			continue
		}
		c.seen[name] = true

		if fn, ok := e.tables.Function(name); ok {
			c.Functions[name] = fn
			work = append(work, containerRefs(fn)...)
			work = append(work, fn.TypeRefs()...)
		}
		if ty, ok := e.tables.Type(name); ok {
			c.Types[name] = ty
			work = append(work, ty.FieldRefs()...)
			work = append(work, ty.Traits...)
		}
		work = append(work, e.tables.Aliases(name)...)
	}
}

// Run computes and renders the focal context of target.
func (e *Engine) Run(ctx context.Context, target *symbols.FunctionEntry, rec *callsandtypes.Record) Result {
	_, span := observability.Tracer.Start(ctx, "rfocxt.closure",
		trace.WithAttributes(attribute.String("function", target.Canonical)))
	defer span.End()

	c := NewClosure(target.Canonical)
	e.Expand(c, e.Seed(target, rec))
	span.SetAttributes(attribute.Int("closure.size", c.Size()))

	return Result{
		Source: e.Emit(c),
		Record: e.record(c, target, rec),
		Size:   c.Size(),
	}
}

// record lists what the closure matched. Raw names none of whose own
// candidates reached a declaration are reported as unresolved; a match found
// only through a generic argument does not count.
func (e *Engine) record(c *Closure, target *symbols.FunctionEntry, rec *callsandtypes.Record) callsandtypes.Record {
	out := callsandtypes.Record{
		Calls: util.SortedStringKeys(c.Functions),
		Types: util.SortedStringKeys(c.Types),
	}
	if rec == nil {
		return out
	}
	for _, list := range [][]string{rec.Calls, rec.Types} {
		for _, raw := range list {
			if !e.resolves(c, target, raw) {
				out.Unresolved = append(out.Unresolved, raw)
			}
		}
	}
	return out.Normalized()
}

func (e *Engine) resolves(c *Closure, target *symbols.FunctionEntry, raw string) bool {
	visited := make(map[string]bool)
	var reach func(name string) bool
	reach = func(name string) bool {
		if visited[name] {
			return false
		}
		visited[name] = true
		if _, ok := c.Functions[name]; ok {
			return true
		}
		if _, ok := c.Types[name]; ok {
			return true
		}
		for _, alias := range e.tables.Aliases(name) {
			if reach(alias) {
				return true
			}
		}
		return false
	}
	for _, cand := range e.candidates(raw, target).Own {
		if reach(cand) {
			return true
		}
	}
	return false
}
