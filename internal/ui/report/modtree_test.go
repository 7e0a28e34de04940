package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rfocxt/internal/engine/modtree"
	"rfocxt/internal/engine/parser"
	"rfocxt/internal/shared/testutil"
)

func buildCrate(t *testing.T, files map[string]string) (*modtree.Crate, string) {
	t.Helper()
	root := testutil.WriteTree(t, files)
	loader, err := parser.NewLoader(parser.NewParser(), 0)
	require.NoError(t, err)
	crate, err := modtree.NewResolver(loader, modtree.Options{}).Build("demo", []string{filepath.Join(root, "src", "lib.rs")})
	require.NoError(t, err)
	return crate, root
}

func TestModTreeGenerator_ListsScopesAndFunctions(t *testing.T) {
	crate, root := buildCrate(t, map[string]string{
		"src/lib.rs": "pub mod a;\n\nmod inline {\n    pub fn deep() {}\n}\n\npub fn top() {}\n",
		"src/a.rs":   "pub struct S;\n\nimpl S {\n    pub fn make() -> S {\n        fn helper() {}\n        helper();\n        S\n    }\n}\n",
	})

	out, err := NewModTreeGenerator(crate, root).Generate()
	require.NoError(t, err)

	want := "demo [mod] src/lib.rs\n" +
		"  fn demo::top\n" +
		"  demo::inline [mod] src/lib.rs\n" +
		"    fn demo::inline::deep\n" +
		"  demo::a [mod] src/a.rs\n" +
		"    fn demo::a::{impl#0}::make\n" +
		"    demo::a::{impl#0}::make [fn] src/a.rs\n" +
		"      fn demo::a::{impl#0}::make::helper\n"
	assert.Equal(t, want, out)
}

func TestWriteModTrees(t *testing.T) {
	crate, root := buildCrate(t, map[string]string{"src/lib.rs": "pub fn f() {}\n"})
	dir := filepath.Join(t.TempDir(), "ctx")

	path, err := WriteModTrees(dir, root, crate)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ModTreeFile), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "demo [mod] src/lib.rs\n  fn demo::f\n", string(data))

	_, err = WriteModTrees(dir, root, nil)
	assert.Error(t, err)
}
