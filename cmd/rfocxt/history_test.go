package main

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rfocxt/internal/core/errors"
	"rfocxt/internal/data/callsandtypes"
	"rfocxt/internal/shared/testutil"
)

func TestHistory_ListsRunsAndContexts(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"Cargo.toml":  testutil.Manifest("demo"),
		"rfocxt.toml": "[history]\nenabled = true\n",
		"src/lib.rs":  "pub struct S;\n\npub fn f() -> S {\n    S\n}\n\npub fn g() {}\n",
	})
	store := callsandtypes.NewStore(filepath.Join(root, "rfocxt", "callsandtypes"))
	require.NoError(t, store.Save("demo::f", callsandtypes.Record{Calls: []string{}, Types: []string{"S"}}))

	var stderr bytes.Buffer
	require.Equal(t, errors.ExitOK, Run([]string{"-p", root}, io.Discard, &stderr), stderr.String())

	var runs bytes.Buffer
	require.Equal(t, errors.ExitOK, Run([]string{"history", "-p", root}, &runs, &stderr), stderr.String())
	lines := strings.Split(strings.TrimSpace(runs.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "RUN"))
	fields := strings.Fields(lines[1])
	require.NotEmpty(t, fields)
	assert.Contains(t, fields, "demo")

	var contexts bytes.Buffer
	require.Equal(t, errors.ExitOK, Run([]string{"history", "-p", root, "--run", fields[0]}, &contexts, &stderr), stderr.String())
	assert.Contains(t, contexts.String(), "FUNCTION")
	assert.Contains(t, contexts.String(), "demo::f")
	assert.NotContains(t, contexts.String(), "demo::g")

	var recent bytes.Buffer
	require.Equal(t, errors.ExitOK, Run([]string{"history", "-p", root, "--since", "2099-01-01T00:00:00Z"}, &recent, &stderr))
	assert.Equal(t, 1, strings.Count(strings.TrimSpace(recent.String()), "\n")+1, "only the header is printed")
}

func TestHistory_WithoutRecordedRunsFails(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"Cargo.toml": testutil.Manifest("demo"),
		"src/lib.rs": "pub fn f() {}\n",
	})
	var stderr bytes.Buffer
	assert.Equal(t, errors.ExitFailure, Run([]string{"history", "-p", root}, io.Discard, &stderr))
	assert.Contains(t, stderr.String(), "no build history recorded")
}

func TestParseSince(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	got, err := parseSince("", now)
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	got, err = parseSince("2h", now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(-2*time.Hour), got)

	got, err = parseSince("2026-02-01T00:00:00Z", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), got)

	_, err = parseSince("yesterday", now)
	assert.Error(t, err)
}
