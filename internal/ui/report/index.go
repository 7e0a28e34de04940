// # internal/ui/report/index.go
package report

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"rfocxt/internal/shared/util"
)

// IndexFile is written at the root of the output directory after each run.
const IndexFile = "index.tsv"

// IndexRow describes one emitted focal context.
type IndexRow struct {
	Function string
	// Dir is the context directory relative to the output root, slash
	// separated.
	Dir        string
	Functions  int
	Types      int
	Unresolved int
}

type IndexGenerator struct {
	rows []IndexRow
}

func NewIndexGenerator(rows []IndexRow) *IndexGenerator {
	sorted := append([]IndexRow(nil), rows...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Function < sorted[j].Function })
	return &IndexGenerator{rows: sorted}
}

func (g *IndexGenerator) Generate() (string, error) {
	var buf strings.Builder

	buf.WriteString("Function\tPath\tFunctions\tTypes\tUnresolved\n")
	for _, row := range g.rows {
		buf.WriteString(fmt.Sprintf("%s\t%s\t%d\t%d\t%d\n",
			row.Function, row.Dir, row.Functions, row.Types, row.Unresolved))
	}

	return buf.String(), nil
}

// WriteIndex renders rows to <outputDir>/index.tsv and returns the path.
func WriteIndex(outputDir string, rows []IndexRow) (string, error) {
	content, err := NewIndexGenerator(rows).Generate()
	if err != nil {
		return "", err
	}
	path := filepath.Join(outputDir, IndexFile)
	if err := util.WriteStringWithDirs(path, content, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
