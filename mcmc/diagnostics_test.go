package mcmc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func noiseChain(rng *rand.Rand, n int, mu float64) []float64 {
	c := make([]float64, n)
	for i := range c {
		c[i] = mu + 0.1*rng.NormFloat64()
	}
	return c
}

func TestSplitRhatAgreement(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	chains := [][]float64{
		noiseChain(rng, 500, 0.0),
		noiseChain(rng, 500, 0.0),
		noiseChain(rng, 500, 0.0),
		noiseChain(rng, 500, 0.0),
	}
	r := SplitRhat(chains)
	assert.Greater(t, r, 0.9)
	assert.Less(t, r, 1.05)
}

func TestSplitRhatDisagreement(t *testing.T) {
	rng := rand.New(rand.NewSource(12))
	chains := [][]float64{
		noiseChain(rng, 500, 0.0),
		noiseChain(rng, 500, 5.0), // stuck somewhere else entirely
	}
	assert.Greater(t, SplitRhat(chains), RhatThreshold)
}

func TestSplitRhatWithinChainDrift(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	drift := append(noiseChain(rng, 250, 0.0), noiseChain(rng, 250, 10.0)...)
	// the split construction exposes drift even in a single chain
	assert.Greater(t, SplitRhat([][]float64{drift}), RhatThreshold)
}

func TestSplitRhatTooShort(t *testing.T) {
	// near-zero iterations cannot demonstrate convergence; the diagnostic
	// must fail loudly, not pass silently
	r := SplitRhat([][]float64{{1.0, 2.0, 3.0}, {1.0, 2.0, 3.0}})
	require.True(t, math.IsInf(r, 1))
}

func TestSplitRhatDegenerateConstant(t *testing.T) {
	chains := [][]float64{
		{5.0, 5.0, 5.0, 5.0, 5.0, 5.0},
		{5.0, 5.0, 5.0, 5.0, 5.0, 5.0},
	}
	assert.Equal(t, 1.0, SplitRhat(chains))
}
