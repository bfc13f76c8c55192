// Package entity defines the domain model shared by every core package:
// Library, Document, Chunk, and the tagged index_config variant. Entities
// carry identity, a monotonically advancing version, and timestamps; only
// the service layer may advance version (see internal/cas).
package entity

import "time"

// Library is the top-level container for a set of document-chunk data
// with a fixed embedding dimension and a single pluggable ANN index.
type Library struct {
	ID           string
	Name         string
	EmbeddingDim int
	IndexConfig  IndexConfig
	Metadata     map[string]string
	Version      uint64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Clone returns a deep copy of l so callers can't mutate repository state
// through a returned pointer.
func (l *Library) Clone() *Library {
	if l == nil {
		return nil
	}
	out := *l
	out.Metadata = cloneMap(l.Metadata)
	out.IndexConfig = l.IndexConfig.clone()
	return &out
}

// Document groups chunks within a library. It has no vector of its own.
type Document struct {
	ID        string
	LibraryID string
	Metadata  map[string]string
	Version   uint64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a deep copy of d.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := *d
	out.Metadata = cloneMap(d.Metadata)
	return &out
}

// Chunk is the indexable unit: text plus an embedding. DocumentID is
// empty when the chunk belongs directly to a library with no document.
type Chunk struct {
	ID         string
	LibraryID  string
	DocumentID string
	Position   int
	Text       string
	Embedding  []float32
	Metadata   map[string]string
	Version    uint64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Clone returns a deep copy of c, including its embedding slice.
func (c *Chunk) Clone() *Chunk {
	if c == nil {
		return nil
	}
	out := *c
	out.Metadata = cloneMap(c.Metadata)
	if c.Embedding != nil {
		out.Embedding = make([]float32, len(c.Embedding))
		copy(out.Embedding, c.Embedding)
	}
	return &out
}

func cloneMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
