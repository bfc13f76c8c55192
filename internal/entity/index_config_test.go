package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIndexConfigValidateFlatAlwaysValid(t *testing.T) {
	require.NoError(t, IndexConfig{Type: IndexFlat}.Validate())
}

func TestIndexConfigValidateLSHRequiresPositiveParams(t *testing.T) {
	require.Error(t, IndexConfig{Type: IndexLSH}.Validate())
	require.Error(t, IndexConfig{Type: IndexLSH, NumTables: 1}.Validate())
	require.NoError(t, IndexConfig{Type: IndexLSH, NumTables: 1, HyperplanesPerTable: 1}.Validate())
}

func TestIndexConfigValidateIVFRejectsNProbeExceedingCentroids(t *testing.T) {
	err := IndexConfig{Type: IndexIVF, NumCentroids: 2, NProbe: 3}.Validate()
	require.Error(t, err)
}

func TestIndexConfigValidateIVFRequiresPositiveParams(t *testing.T) {
	require.Error(t, IndexConfig{Type: IndexIVF}.Validate())
	require.NoError(t, IndexConfig{Type: IndexIVF, NumCentroids: 4, NProbe: 2}.Validate())
}

func TestIndexConfigValidateHNSWRejectsNegativeParams(t *testing.T) {
	require.Error(t, IndexConfig{Type: IndexHNSW, M: -1}.Validate())
	require.Error(t, IndexConfig{Type: IndexHNSW, EfSearch: -1}.Validate())
	require.NoError(t, IndexConfig{Type: IndexHNSW}.Validate())
}

func TestIndexConfigValidateRejectsUnknownType(t *testing.T) {
	require.Error(t, IndexConfig{Type: "bogus"}.Validate())
}

func TestIndexConfigEqual(t *testing.T) {
	a := IndexConfig{Type: IndexIVF, NumCentroids: 4, NProbe: 2}
	b := IndexConfig{Type: IndexIVF, NumCentroids: 4, NProbe: 2}
	c := IndexConfig{Type: IndexIVF, NumCentroids: 8, NProbe: 2}
	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
}

func TestDefaultConfigsAreValid(t *testing.T) {
	require.NoError(t, DefaultLSHConfig().Validate())
	require.NoError(t, DefaultIVFConfig().Validate())
	require.NoError(t, DefaultHNSWConfig().Validate())
}
