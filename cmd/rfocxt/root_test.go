package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rfocxt/internal/core/errors"
	"rfocxt/internal/data/callsandtypes"
	"rfocxt/internal/shared/testutil"
)

func TestRun_RequiresProject(t *testing.T) {
	var stderr bytes.Buffer
	code := Run(nil, io.Discard, &stderr)
	assert.Equal(t, errors.ExitFailure, code)
	assert.Contains(t, stderr.String(), "project")
}

func TestRun_Version(t *testing.T) {
	var stderr bytes.Buffer
	assert.Equal(t, errors.ExitOK, Run([]string{"--version"}, io.Discard, &stderr))
}

func TestRun_ExitCodes(t *testing.T) {
	cases := []struct {
		name  string
		files map[string]string
		want  int
	}{
		{
			name:  "NoManifest",
			files: map[string]string{"src/main.rs": "fn main() {}\n"},
			want:  errors.ExitManifestMissing,
		},
		{
			name:  "NoPackage",
			files: map[string]string{"Cargo.toml": "[workspace]\n", "src/main.rs": "fn main() {}\n"},
			want:  errors.ExitPackageMissing,
		},
		{
			name:  "NoName",
			files: map[string]string{"Cargo.toml": "[package]\nversion = \"0.1.0\"\n", "src/main.rs": "fn main() {}\n"},
			want:  errors.ExitNameMissing,
		},
		{
			name:  "NoEntry",
			files: map[string]string{"Cargo.toml": testutil.Manifest("demo")},
			want:  errors.ExitEntryMissing,
		},
		{
			name:  "MissingModFile",
			files: map[string]string{"Cargo.toml": testutil.Manifest("demo"), "src/lib.rs": "mod gone;\n"},
			want:  errors.ExitModPath,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			root := testutil.WriteTree(t, tc.files)
			var stderr bytes.Buffer
			assert.Equal(t, tc.want, Run([]string{"-p", root}, io.Discard, &stderr), stderr.String())
		})
	}
}

func TestRun_AncestorManifestIsNotAdopted(t *testing.T) {
	outer := testutil.WriteTree(t, map[string]string{
		"Cargo.toml":               testutil.Manifest("outer"),
		"src/lib.rs":               "pub fn f() {}\n",
		"vendor/inner/src/main.rs": "fn main() {}\n",
	})
	var stderr bytes.Buffer
	code := Run([]string{"-p", filepath.Join(outer, "vendor", "inner")}, io.Discard, &stderr)
	assert.Equal(t, errors.ExitManifestMissing, code, stderr.String())
	_, err := os.Stat(filepath.Join(outer, "rfocxt"))
	assert.True(t, os.IsNotExist(err), "nothing may be written into the enclosing crate")
}

func TestRun_WritesContexts(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"Cargo.toml": testutil.Manifest("my-crate"),
		"src/lib.rs": "pub struct S;\n\npub fn f() -> S {\n    S\n}\n",
	})
	store := callsandtypes.NewStore(filepath.Join(root, "rfocxt", "callsandtypes"))
	require.NoError(t, store.Save("my_crate::f", callsandtypes.Record{Calls: []string{}, Types: []string{"S"}}))
	out := filepath.Join(t.TempDir(), "ctx")

	var stderr bytes.Buffer
	code := Run([]string{"--project", root, "--out", out, "--workers", "1", "--bodies", "focal"}, io.Discard, &stderr)
	require.Equal(t, errors.ExitOK, code, stderr.String())

	data, err := os.ReadFile(filepath.Join(out, "my_crate", "f", "context.rs"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "pub struct S;")
	assert.Contains(t, string(data), "pub fn f() -> S {\n    S\n}")
	_, err = os.Stat(filepath.Join(out, "my_crate", "f", "callsandtypes.json"))
	assert.NoError(t, err)
}

func TestRun_InvalidOverride(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"Cargo.toml": testutil.Manifest("demo"),
		"src/lib.rs": "pub fn f() {}\n",
	})
	var stderr bytes.Buffer
	code := Run([]string{"-p", root, "--bodies", "some"}, io.Discard, &stderr)
	assert.Equal(t, errors.ExitFailure, code)
	assert.Contains(t, stderr.String(), "emit.bodies")
}

func TestRun_ExplicitConfigMustExist(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"Cargo.toml": testutil.Manifest("demo"),
		"src/lib.rs": "pub fn f() {}\n",
	})
	var stderr bytes.Buffer
	code := Run([]string{"-p", root, "--config", filepath.Join(root, "missing.toml")}, io.Discard, &stderr)
	assert.Equal(t, errors.ExitFailure, code)
}
