// # internal/engine/parser/loader.go
package parser

import (
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
)

var (
	rustOnce sync.Once
	rustLang *sitter.Language
)

// RustLanguage returns the process-wide tree-sitter Rust grammar.
func RustLanguage() *sitter.Language {
	rustOnce.Do(func() {
		rustLang = sitter.NewLanguage(tree_sitter_rust.Language())
	})
	return rustLang
}
