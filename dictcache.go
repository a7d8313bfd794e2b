package zstd

import (
	"github.com/cespare/xxhash/v2"
	"github.com/dgryski/go-tinylfu"

	"github.com/mpx42/zstd/internal/dicttable"
)

// DictTableCache memoizes parsed dictionary entropy tables keyed by the
// content hash of the raw dictionary bytes, so a process that repeatedly
// resets a decoder with the same dictionary (a common long-lived-server
// pattern) does not re-run the Huff0/FSE table builds on every reset.
type DictTableCache struct {
	cache *tinylfu.T[uint64, *dicttable.Table]
}

// NewDictTableCache builds a cache holding up to size parsed dictionaries,
// the way the teacher repo's internal/spinner/concurrent.go sizes its block cache from a
// caller-supplied capacity.
func NewDictTableCache(size int) *DictTableCache {
	return &DictTableCache{
		cache: tinylfu.New[uint64, *dicttable.Table](size, size*10, dictCacheHasher),
	}
}

func dictCacheHasher(k uint64) uint64 {
	return k
}

// Parse returns a cached dictionary table for raw's content hash, parsing
// and caching it on a miss.
func (c *DictTableCache) Parse(raw []byte) (*dicttable.Table, error) {
	key := xxhash.Sum64(raw)
	if tbl, ok := c.cache.Get(key); ok {
		return tbl, nil
	}
	tbl, err := dicttable.Parse(raw)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, tbl)
	return tbl, nil
}
