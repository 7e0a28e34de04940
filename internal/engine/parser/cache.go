// # internal/engine/parser/cache.go
package parser

import (
	"crypto/sha256"
	"os"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"rfocxt/internal/core/errors"
	"rfocxt/internal/shared/observability"
)

type cachedFile struct {
	sum  [sha256.Size]byte
	file *File
}

// Loader reads and parses files, reusing a previous parse while the file's
// content hash is unchanged. Returned Files are shared and must be treated
// as read-only.
type Loader struct {
	parser *Parser
	cache  *lru.Cache[string, cachedFile]
}

// NewLoader builds a Loader. entries <= 0 disables caching.
func NewLoader(p *Parser, entries int) (*Loader, error) {
	l := &Loader{parser: p}
	if entries > 0 {
		cache, err := lru.New[string, cachedFile](entries)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "create parse cache")
		}
		l.cache = cache
	}
	return l, nil
}

func (l *Loader) Load(path string) (*File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "read source file"), errors.CtxPath, path)
	}
	sum := sha256.Sum256(content)
	if l.cache != nil {
		if hit, ok := l.cache.Get(path); ok && hit.sum == sum {
			observability.FilesParsedTotal.WithLabelValues("hit").Inc()
			return hit.file, nil
		}
	}

	start := time.Now()
	file, err := l.parser.ParseFile(path, content)
	if err != nil {
		return nil, err
	}
	observability.ParsingDuration.Observe(time.Since(start).Seconds())
	observability.FilesParsedTotal.WithLabelValues("miss").Inc()

	if l.cache != nil {
		l.cache.Add(path, cachedFile{sum: sum, file: file})
	}
	return file, nil
}

// Len reports the number of cached parses.
func (l *Loader) Len() int {
	if l.cache == nil {
		return 0
	}
	return l.cache.Len()
}
