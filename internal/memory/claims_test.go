package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimilarityRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		min  float64
		max  float64
	}{
		{"identical", "the earth is round", "the earth is round", 1.0, 1.0},
		{"case and space insensitive", "The Earth Is Round", " the earth is round ", 1.0, 1.0},
		{"near duplicate", "the earth is round", "the earth is round!", 0.9, 1.0},
		{"unrelated", "the earth is round", "goldfish memory span", 0.0, 0.3},
		{"empty strings", "", "", 0.0, 0.0},
		{"one empty", "claim", "", 0.0, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := similarityRatio(tt.a, tt.b)
			assert.GreaterOrEqual(t, got, tt.min)
			assert.LessOrEqual(t, got, tt.max)
		})
	}
}

func TestFindSimilarClaim_HitAboveThreshold(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.CacheClaim("The Great Wall of China is visible from space", "FALSE", 0.9, 4, "s1"))
	require.NoError(t, store.CacheClaim("Water boils at 100 degrees Celsius at sea level", "TRUE", 0.95, 3, "s1"))

	hit, err := store.FindSimilarClaim("the great wall of china is visible from space", 20, 0.85)
	require.NoError(t, err)
	assert.Equal(t, "FALSE", hit.Verdict)
	assert.InDelta(t, 0.9, hit.Confidence, 1e-9)
	assert.Greater(t, hit.Similarity, 0.85)
}

func TestFindSimilarClaim_MissBelowThreshold(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.CacheClaim("Water boils at 100 degrees Celsius", "TRUE", 0.95, 3, "s1"))

	_, err := store.FindSimilarClaim("goldfish have a three second memory", 20, 0.85)
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestFindSimilarClaim_EmptyCache(t *testing.T) {
	store := newTestStore(t)

	_, err := store.FindSimilarClaim("anything", 20, 0.85)
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestFindSimilarClaim_ScanLimitBoundsSearch(t *testing.T) {
	store := newTestStore(t)

	// The matching claim is pushed out of the scan window by newer rows.
	require.NoError(t, store.CacheClaim("the moon landing happened in 1969", "TRUE", 0.9, 5, "s1"))
	for i := 0; i < 3; i++ {
		require.NoError(t, store.CacheClaim("unrelated filler claim number", "TRUE", 0.5, 1, "s1"))
	}

	_, err := store.FindSimilarClaim("the moon landing happened in 1969", 3, 0.85)
	assert.ErrorIs(t, err, ErrNoMatch)

	hit, err := store.FindSimilarClaim("the moon landing happened in 1969", 20, 0.85)
	require.NoError(t, err)
	assert.Equal(t, "TRUE", hit.Verdict)
}

func TestStats_VerdictDistribution(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.CacheClaim("a", "TRUE", 0.9, 1, "s"))
	require.NoError(t, store.CacheClaim("b", "TRUE", 0.7, 1, "s"))
	require.NoError(t, store.CacheClaim("c", "FALSE", 0.2, 1, "s"))

	stats, err := store.Stats()
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalVerifiedClaims)
	assert.InDelta(t, 0.6, stats.AverageConfidence, 1e-9)
	assert.Equal(t, 2, stats.VerdictDistribution["TRUE"])
	assert.Equal(t, 1, stats.VerdictDistribution["FALSE"])
}

func TestStats_EmptyStore(t *testing.T) {
	store := newTestStore(t)

	stats, err := store.Stats()
	require.NoError(t, err)

	assert.Zero(t, stats.TotalVerifiedClaims)
	assert.Zero(t, stats.AverageConfidence)
	assert.Empty(t, stats.VerdictDistribution)
}
