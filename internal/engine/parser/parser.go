// # internal/engine/parser/parser.go
package parser

import (
	"rfocxt/internal/core/errors"
)

// Parser turns Rust source into the closed Item model. Safe for concurrent
// use.
type Parser struct {
	pool      *parserPool
	extractor *rustExtractor
}

func NewParser() *Parser {
	return &Parser{
		pool:      newParserPool(RustLanguage()),
		extractor: newRustExtractor(),
	}
}

func (p *Parser) ParseFile(path string, content []byte) (*File, error) {
	tree, err := p.pool.parse(content)
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}
	defer tree.Close()

	return p.extractor.Extract(tree.RootNode(), content, path), nil
}
