// Package searchcache caches search results behind a key that embeds
// the library's version, so a cached entry can never be served once
// the library it was computed from has changed — the cache needs no
// explicit invalidation path, only eviction for size.
package searchcache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Aman-CERP/vectorlib/internal/index"
)

// DefaultSize is used when a caller configures a non-positive cache
// size.
const DefaultSize = 1024

// Cache is an LRU of search results keyed on library id, library
// version, query vector, k, and filter shape.
type Cache struct {
	lru *lru.Cache[string, []index.Result]
}

// New returns a Cache holding up to size entries. size <= 0 falls back
// to DefaultSize.
func New(size int) *Cache {
	if size <= 0 {
		size = DefaultSize
	}
	c, _ := lru.New[string, []index.Result](size)
	return &Cache{lru: c}
}

// Key builds the cache key for a query. filterKey should be a stable
// string describing the filter predicate (e.g. the document id or a
// hash of metadata predicates); pass "" for an unfiltered search.
func Key(libraryID string, libraryVersion uint64, query []float32, k int, filterKey string) string {
	h := sha256.New()
	h.Write([]byte(libraryID))

	var versionBuf [8]byte
	binary.BigEndian.PutUint64(versionBuf[:], libraryVersion)
	h.Write(versionBuf[:])

	for _, x := range query {
		var buf [4]byte
		binary.BigEndian.PutUint32(buf[:], math.Float32bits(x))
		h.Write(buf[:])
	}

	h.Write([]byte(fmt.Sprintf("k=%d", k)))
	h.Write([]byte(filterKey))

	return hex.EncodeToString(h.Sum(nil))
}

// MetadataFilterKey builds a stable filterKey for a set of exact-match
// metadata predicates, independent of map iteration order.
func MetadataFilterKey(predicates map[string]string) string {
	if len(predicates) == 0 {
		return ""
	}
	keys := make([]string, 0, len(predicates))
	for k := range predicates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := ""
	for _, k := range keys {
		out += k + "=" + predicates[k] + ";"
	}
	return out
}

// Get returns the cached results for key, if present.
func (c *Cache) Get(key string) ([]index.Result, bool) {
	return c.lru.Get(key)
}

// Put stores results under key.
func (c *Cache) Put(key string, results []index.Result) {
	c.lru.Add(key, results)
}
