package survey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

var testSpecies = []string{"COTE", "ROST", "NOGA", "HERG"}
var testExperts = []string{"Ainley", "Brooks", "Cairns"}

var testTruth = Truth_t{
	Alpha:        -0.5,
	Phi:          1e4,
	SigmaExpert:  0.1,
	SigmaSpecies: 0.2,
	OpinionNoise: 0.25,
}

func TestSimulateShape(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	c := Simulate(testSpecies, testExperts, testTruth, rng)

	require.Len(t, c.Opinions, len(testSpecies)*len(testExperts))
	require.Len(t, c.Utilizations, len(testSpecies))
	assert.Len(t, c.ExpertEffect, len(testExperts))
	assert.Len(t, c.SpeciesEffect, len(testSpecies))

	// species-major order
	assert.Equal(t, "COTE", c.Opinions[0].Species)
	assert.Equal(t, "Ainley", c.Opinions[0].Expert)
	assert.Equal(t, "COTE", c.Opinions[2].Species)
	assert.Equal(t, "Cairns", c.Opinions[2].Expert)
	assert.Equal(t, "ROST", c.Opinions[3].Species)
}

func TestSimulateOpenInterval(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	c := Simulate(testSpecies, testExperts, testTruth, rng)

	require.NoError(t, ValidateOpinions(c.Opinions))
	require.NoError(t, ValidateUtilizations(c.Utilizations))
}

func TestSimulateDeterminism(t *testing.T) {
	a := Simulate(testSpecies, testExperts, testTruth, rand.New(rand.NewSource(99)))
	b := Simulate(testSpecies, testExperts, testTruth, rand.New(rand.NewSource(99)))

	require.Equal(t, a.Opinions, b.Opinions)
	require.Equal(t, a.Utilizations, b.Utilizations)
	require.Equal(t, a.ExpertEffect, b.ExpertEffect)
	require.Equal(t, a.SpeciesEffect, b.SpeciesEffect)
	require.Equal(t, a.Baseline, b.Baseline)
}

func TestSimulateSeedsDiffer(t *testing.T) {
	a := Simulate(testSpecies, testExperts, testTruth, rand.New(rand.NewSource(1)))
	b := Simulate(testSpecies, testExperts, testTruth, rand.New(rand.NewSource(2)))
	assert.NotEqual(t, a.Opinions, b.Opinions)
}

func TestSimulateDefaultNoise(t *testing.T) {
	truth := testTruth
	truth.OpinionNoise = 0
	rng := rand.New(rand.NewSource(3))
	c := Simulate(testSpecies, testExperts, truth, rng)
	// zero noise falls back to the default rather than collapsing every
	// expert onto the same opinion
	assert.NotEqual(t, c.Opinions[0].Value, c.Opinions[1].Value)
}

func TestValidateOpinions(t *testing.T) {
	bad := []Opinion_t{{Expert: "Ainley", Species: "COTE", Value: 0.0}}
	err := ValidateOpinions(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COTE")
	assert.Contains(t, err.Error(), "Ainley")

	require.Error(t, ValidateOpinions([]Opinion_t{{Expert: "x", Species: "s", Value: 1.0}}))
	require.Error(t, ValidateOpinions([]Opinion_t{{Expert: "x", Species: "s", Value: -0.2}}))
	require.NoError(t, ValidateOpinions([]Opinion_t{{Expert: "x", Species: "s", Value: 0.001}}))
}

func TestValidateUtilizations(t *testing.T) {
	require.Error(t, ValidateUtilizations([]SpeciesUse_t{{Species: "COTE", Utilization: 1.0}}))
	require.NoError(t, ValidateUtilizations([]SpeciesUse_t{{Species: "COTE", Utilization: 0.0012}}))
}
