package parser

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParserPool_ParseReturnsLease(t *testing.T) {
	pool := newParserPool(RustLanguage())

	tree, err := pool.parse([]byte("fn main() {}\n"))
	require.NoError(t, err)
	defer tree.Close()

	assert.False(t, tree.RootNode().HasError())
	assert.Equal(t, "source_file", tree.RootNode().Kind())
	assert.Zero(t, pool.inUse())
}

func TestParserPool_Concurrent(t *testing.T) {
	pool := newParserPool(RustLanguage())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tree, err := pool.parse([]byte("struct S { x: i32 }\n"))
			if err != nil {
				t.Error(err)
				return
			}
			tree.Close()
		}()
	}
	wg.Wait()
	assert.Zero(t, pool.inUse())
}
