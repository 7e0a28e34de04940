package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rfocxt/internal/core/config"
	"rfocxt/internal/core/errors"
	"rfocxt/internal/data/callsandtypes"
	"rfocxt/internal/data/history"
	"rfocxt/internal/shared/testutil"
	"rfocxt/internal/ui/report"
)

func newApp(t *testing.T, root string, mutate func(*config.Config)) *App {
	t.Helper()
	cfg := config.Default()
	cfg.Closure.Workers = 2
	if mutate != nil {
		mutate(cfg)
	}
	require.NoError(t, config.Validate(cfg))
	paths, err := config.ResolvePaths(cfg, root)
	require.NoError(t, err)
	a, err := New(cfg, paths, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func saveRecord(t *testing.T, a *App, canonical string, rec callsandtypes.Record) {
	t.Helper()
	require.NoError(t, callsandtypes.NewStore(a.Paths.CallsDir).Save(canonical, rec))
}

func readContext(t *testing.T, a *App, canonical string) string {
	t.Helper()
	dir := callsandtypes.NewWriter(a.Paths.OutputDir).Dir(canonical)
	data, err := os.ReadFile(filepath.Join(dir, callsandtypes.ContextFile))
	require.NoError(t, err)
	return string(data)
}

func TestRun_EndToEnd(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"Cargo.toml":  testutil.Manifest("main"),
		"src/main.rs": "mod a;\n\nfn f() -> a::S {\n    a::make()\n}\n\nfn main() {}\n",
		"src/a.rs":    "pub struct S {\n    x: i32,\n}\n\npub fn make() -> S {\n    S { x: 1 }\n}\n",
	})
	a := newApp(t, root, nil)
	saveRecord(t, a, "main::f", callsandtypes.Record{Calls: []string{"a::make"}, Types: []string{}})

	summary, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "main", summary.Crate)
	assert.Equal(t, 1, summary.Emitted)
	assert.Equal(t, 3, summary.Functions)
	assert.Equal(t, 2, summary.Skipped)
	assert.Zero(t, summary.Failed)

	src := readContext(t, a, "main::f")
	assert.Contains(t, src, "pub fn make() -> S")
	assert.Contains(t, src, "pub struct S {\n    x: i32,\n}")
	assert.Contains(t, src, "fn f() -> a::S")
	assert.NotContains(t, src, "fn main")

	raw, err := os.ReadFile(filepath.Join(a.Paths.OutputDir, "main", "f", callsandtypes.RecordFile))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "main::a::make")
	assert.Contains(t, string(raw), "main::a::S")

	index, err := os.ReadFile(filepath.Join(a.Paths.OutputDir, report.IndexFile))
	require.NoError(t, err)
	assert.Equal(t, "Function\tPath\tFunctions\tTypes\tUnresolved\nmain::f\tmain/f\t2\t1\t0\n", string(index))

	trees, err := os.ReadFile(filepath.Join(a.Paths.OutputDir, report.ModTreeFile))
	require.NoError(t, err)
	assert.Equal(t, "main [mod] src/main.rs\n  fn main::f\n  fn main::main\n  main::a [mod] src/a.rs\n    fn main::a::make\n", string(trees))
}

func TestRun_FiltersAndHistory(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"Cargo.toml": testutil.Manifest("demo-lib"),
		"src/lib.rs": "pub mod api {\n    pub fn get() {}\n    pub fn put() {}\n}\n\npub fn helper() {}\n",
	})
	a := newApp(t, root, func(cfg *config.Config) {
		cfg.Closure.Include = []string{"demo_lib::api::*"}
		cfg.Closure.Exclude = []string{"demo_lib::api::put"}
		cfg.History.Enabled = true
	})
	saveRecord(t, a, "demo_lib::api::get", callsandtypes.Record{Calls: []string{"std::io::stdout"}})
	saveRecord(t, a, "demo_lib::helper", callsandtypes.Record{})

	summary, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Functions)
	assert.Equal(t, 1, summary.Emitted)
	require.NotEmpty(t, summary.RunID)

	_, err = os.Stat(callsandtypes.NewWriter(a.Paths.OutputDir).Dir("demo_lib::helper"))
	assert.True(t, os.IsNotExist(err), "excluded function must not be emitted")

	store, err := history.Open(a.Paths.HistoryPath)
	require.NoError(t, err)
	defer store.Close()
	runs, err := store.LoadRuns(a.Paths.ProjectRoot, time.Time{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "demo_lib", runs[0].Crate)
	rows, err := store.LoadContexts(summary.RunID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "demo_lib::api::get", rows[0].Function)
	assert.Equal(t, 1, rows[0].Unresolved)
}

func TestRun_BadRecordIsCountedNotFatal(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"Cargo.toml": testutil.Manifest("demo"),
		"src/lib.rs": "pub fn f() {}\npub fn g() {}\n",
	})
	a := newApp(t, root, nil)
	require.NoError(t, os.MkdirAll(a.Paths.CallsDir, 0o755))
	require.NoError(t, os.WriteFile(callsandtypes.NewStore(a.Paths.CallsDir).Path("demo::f"), []byte("{"), 0o644))
	saveRecord(t, a, "demo::g", callsandtypes.Record{})

	summary, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Emitted)
}

func TestRun_ConfigurationFailures(t *testing.T) {
	cases := []struct {
		name   string
		files  map[string]string
		mutate func(*config.Config)
		exit   int
	}{
		{
			name:  "NoManifest",
			files: map[string]string{"src/lib.rs": ""},
			exit:  errors.ExitManifestMissing,
		},
		{
			name:  "NoEntry",
			files: map[string]string{"Cargo.toml": testutil.Manifest("demo")},
			exit:  errors.ExitEntryMissing,
		},
		{
			name:  "UnresolvedMod",
			files: map[string]string{"Cargo.toml": testutil.Manifest("demo"), "src/lib.rs": "mod gone;\n"},
			exit:  errors.ExitModPath,
		},
		{
			name:   "ParseAbort",
			files:  map[string]string{"Cargo.toml": testutil.Manifest("demo"), "src/lib.rs": "mod a;\n", "src/a.rs": "fn broken( {\n"},
			mutate: func(cfg *config.Config) { cfg.Parse.OnError = config.OnErrorAbort },
			exit:   errors.ExitParse,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := newApp(t, testutil.WriteTree(t, tc.files), tc.mutate)
			_, err := a.Run(context.Background())
			require.Error(t, err)
			assert.Equal(t, tc.exit, errors.ExitCode(err))
		})
	}
}

func TestRun_ParseErrorsSkippedByDefault(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"Cargo.toml": testutil.Manifest("demo"),
		"src/lib.rs": "mod a;\npub fn ok() {}\n",
		"src/a.rs":   "fn broken( {\n",
	})
	a := newApp(t, root, nil)
	saveRecord(t, a, "demo::ok", callsandtypes.Record{})

	summary, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Emitted)
	assert.Equal(t, 2, summary.Modules)
}

func TestSelected(t *testing.T) {
	a := newApp(t, t.TempDir(), func(cfg *config.Config) {
		cfg.Closure.Include = []string{"demo::**"}
		cfg.Closure.Exclude = []string{"demo::*::tests::**"}
	})
	assert.True(t, a.selected("demo::f"))
	assert.True(t, a.selected("demo::a::{impl#0}::new"))
	assert.False(t, a.selected("demo::a::tests::check"))
	assert.False(t, a.selected("other::f"))
}
