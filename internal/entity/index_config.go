package entity

import "fmt"

// IndexKind discriminates the tagged index_config variant.
type IndexKind string

const (
	IndexFlat IndexKind = "flat"
	IndexLSH  IndexKind = "lsh"
	IndexIVF  IndexKind = "ivf"
	IndexHNSW IndexKind = "hnsw"
)

// IndexConfig is the wire and storage representation of a library's index
// strategy choice. Only the fields relevant to Type are meaningful; the
// rest are left zero. Dispatch onto a concrete index.Index happens in
// internal/index by switching on Type.
type IndexConfig struct {
	Type IndexKind `yaml:"type" json:"type"`

	// LSH
	NumTables           int `yaml:"num_tables,omitempty" json:"num_tables,omitempty"`
	HyperplanesPerTable int `yaml:"hyperplanes_per_table,omitempty" json:"hyperplanes_per_table,omitempty"`

	// IVF
	NumCentroids int `yaml:"num_centroids,omitempty" json:"num_centroids,omitempty"`
	NProbe       int `yaml:"nprobe,omitempty" json:"nprobe,omitempty"`

	// HNSW
	M        int `yaml:"m,omitempty" json:"m,omitempty"`
	EfSearch int `yaml:"ef_search,omitempty" json:"ef_search,omitempty"`
}

func (c IndexConfig) clone() IndexConfig {
	return c // no reference fields
}

// Equal reports whether two configs select the same strategy with the
// same parameters. IndexRegistry.ensure uses this to decide whether an
// existing index needs to be rebuilt for a changed configuration.
func (c IndexConfig) Equal(other IndexConfig) bool {
	return c == other
}

// Validate checks that the config names a known strategy with sane
// parameters, independent of any library's embedding dimension.
func (c IndexConfig) Validate() error {
	switch c.Type {
	case IndexFlat:
		return nil
	case IndexLSH:
		if c.NumTables <= 0 {
			return fmt.Errorf("lsh: num_tables must be positive, got %d", c.NumTables)
		}
		if c.HyperplanesPerTable <= 0 {
			return fmt.Errorf("lsh: hyperplanes_per_table must be positive, got %d", c.HyperplanesPerTable)
		}
		return nil
	case IndexIVF:
		if c.NumCentroids <= 0 {
			return fmt.Errorf("ivf: num_centroids must be positive, got %d", c.NumCentroids)
		}
		if c.NProbe <= 0 {
			return fmt.Errorf("ivf: nprobe must be positive, got %d", c.NProbe)
		}
		if c.NProbe > c.NumCentroids {
			return fmt.Errorf("ivf: nprobe (%d) must not exceed num_centroids (%d)", c.NProbe, c.NumCentroids)
		}
		return nil
	case IndexHNSW:
		if c.M < 0 {
			return fmt.Errorf("hnsw: m must not be negative, got %d", c.M)
		}
		if c.EfSearch < 0 {
			return fmt.Errorf("hnsw: ef_search must not be negative, got %d", c.EfSearch)
		}
		return nil
	default:
		return fmt.Errorf("unknown index type %q", c.Type)
	}
}

// DefaultLSHConfig returns a conservative default LSH configuration.
func DefaultLSHConfig() IndexConfig {
	return IndexConfig{Type: IndexLSH, NumTables: 8, HyperplanesPerTable: 12}
}

// DefaultIVFConfig returns a conservative default IVF configuration.
func DefaultIVFConfig() IndexConfig {
	return IndexConfig{Type: IndexIVF, NumCentroids: 16, NProbe: 4}
}

// DefaultHNSWConfig returns the teacher's coder/hnsw default parameters.
func DefaultHNSWConfig() IndexConfig {
	return IndexConfig{Type: IndexHNSW, M: 16, EfSearch: 20}
}
