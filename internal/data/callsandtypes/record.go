// Package callsandtypes reads the per-function records produced by the
// external calls/types extractor and writes focal context outputs.
package callsandtypes

import (
	"encoding/json"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"rfocxt/internal/core/errors"
	"rfocxt/internal/engine/names"
	"rfocxt/internal/shared/util"
)

const (
	ContextFile = "context.rs"
	RecordFile  = "callsandtypes.json"
)

// Record lists the callables and types a function references. Unresolved is
// only present on records this tool writes.
type Record struct {
	Calls      []string `json:"calls"`
	Types      []string `json:"types"`
	Unresolved []string `json:"unresolved,omitempty"`
}

// Normalized returns a copy with nil slices replaced, entries trimmed,
// empties dropped and duplicates removed, sorted.
func (r Record) Normalized() Record {
	return Record{
		Calls:      cleanList(r.Calls),
		Types:      cleanList(r.Types),
		Unresolved: cleanOptional(r.Unresolved),
	}
}

func cleanList(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func cleanOptional(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	return cleanList(in)
}

// Store reads extractor records from <dir>/<canonical>.json.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Path(canonical string) string {
	return filepath.Join(s.dir, strings.NewReplacer("/", "_", "\\", "_").Replace(canonical)+".json")
}

// Load returns the record for a function. A missing file is reported as
// ok=false with no error.
func (s *Store) Load(canonical string) (*Record, bool, error) {
	path := s.Path(canonical)
	data, err := os.ReadFile(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		err = errors.AddContext(errors.Wrap(err, errors.CodeInternal, "read calls record"), errors.CtxPath, path)
		return nil, false, errors.AddContext(err, errors.CtxSymbol, canonical)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		err = errors.AddContext(errors.Wrap(err, errors.CodeValidationError, "decode calls record"), errors.CtxPath, path)
		return nil, false, errors.AddContext(err, errors.CtxSymbol, canonical)
	}
	if rec.Calls == nil {
		rec.Calls = []string{}
	}
	if rec.Types == nil {
		rec.Types = []string{}
	}
	return &rec, true, nil
}

// Save writes rec where Load will find it. The extractor normally owns these
// files; tests and fixtures use Save.
func (s *Store) Save(canonical string, rec Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "encode calls record")
	}
	return util.WriteFileWithDirs(s.Path(canonical), data, 0o644)
}

// Writer places focal context outputs under one directory per function.
type Writer struct {
	dir string
}

func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Dir maps a canonical function name to its output directory: one path
// element per `::` segment.
func (w *Writer) Dir(canonical string) string {
	segs := names.ParsePath(canonical).Segments()
	parts := make([]string, 0, len(segs)+1)
	parts = append(parts, w.dir)
	for _, seg := range segs {
		parts = append(parts, util.SanitizeSegment(seg))
	}
	return filepath.Join(parts...)
}

// Write stores the emitted fragment and its normalized record.
func (w *Writer) Write(canonical, source string, rec Record) (string, error) {
	dir := w.Dir(canonical)
	if err := util.WriteStringWithDirs(filepath.Join(dir, ContextFile), source, 0o644); err != nil {
		return "", errors.AddContext(errors.Wrap(err, errors.CodeInternal, "write focal context"), errors.CtxPath, dir)
	}
	data, err := json.MarshalIndent(rec.Normalized(), "", "  ")
	if err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "encode calls record")
	}
	if err := util.WriteFileWithDirs(filepath.Join(dir, RecordFile), append(data, '\n'), 0o644); err != nil {
		return "", errors.AddContext(errors.Wrap(err, errors.CodeInternal, "write calls record"), errors.CtxPath, dir)
	}
	return dir, nil
}
