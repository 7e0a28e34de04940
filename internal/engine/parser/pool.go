// # internal/engine/parser/pool.go
package parser

import (
	"sync"
	"sync/atomic"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"rfocxt/internal/core/errors"
)

// parserPool recycles tree-sitter parsers bound to one grammar. Only the
// module resolver parses, one file at a time, but watch-mode rebuilds reparse
// every changed file on each rebuild, so parsers are leased per parse
// instead of created per file. Leasing keeps ParseFile safe to call from
// several goroutines.
type parserPool struct {
	lang   *sitter.Language
	pool   sync.Pool
	leased atomic.Int64
}

func newParserPool(lang *sitter.Language) *parserPool {
	p := &parserPool{lang: lang}
	p.pool.New = func() any {
		sp := sitter.NewParser()
		_ = sp.SetLanguage(lang)
		return sp
	}
	return p
}

// parse leases a parser for a single parse of content. The caller owns the
// returned tree and must Close it.
func (p *parserPool) parse(content []byte) (*sitter.Tree, error) {
	sp := p.pool.Get().(*sitter.Parser)
	p.leased.Add(1)
	defer func() {
		sp.Reset()
		p.pool.Put(sp)
		p.leased.Add(-1)
	}()

	if err := sp.SetLanguage(p.lang); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "set grammar")
	}
	tree := sp.Parse(content, nil)
	if tree == nil {
		return nil, errors.New(errors.CodeInternal, "parse failed")
	}
	return tree, nil
}

// inUse reports the parsers currently leased.
func (p *parserPool) inUse() int {
	return int(p.leased.Load())
}
