package mcmc_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"

	"github.com/seabirdproject/birdUseModel/birdUse/mcmc"
	"github.com/seabirdproject/birdUseModel/birdUse/reshape"
	"github.com/seabirdproject/birdUseModel/birdUse/survey"
)

var recoveryTruth = survey.Truth_t{
	Alpha:        -0.5,
	Phi:          1e4,
	SigmaExpert:  0.1,
	SigmaSpecies: 0.2,
	OpinionNoise: 0.25,
}

// simulatedModel builds a fit-ready model from one synthetic elicitation.
func simulatedModel(t *testing.T, speciesList, experts []string, seed uint64) (*mcmc.Model_t, survey.Cohort_t) {
	t.Helper()

	cohort := survey.Simulate(speciesList, experts, recoveryTruth, rand.New(rand.NewSource(seed)))
	require.NoError(t, survey.ValidateOpinions(cohort.Opinions))

	speciesIx := reshape.NewIndex(speciesList)
	expertIx := reshape.NewIndex(experts)
	m, err := reshape.OpinionMatrix(cohort.Opinions, speciesIx, expertIx)
	require.NoError(t, err)

	u := make([]float64, len(cohort.Utilizations))
	for i, su := range cohort.Utilizations {
		u[i] = su.Utilization
	}

	model, err := mcmc.NewModel(reshape.LogitMatrix(m), u, speciesList, experts)
	require.NoError(t, err)
	return model, cohort
}

var smallSpecies = []string{"COTE", "ROST", "NOGA"}
var smallExperts = []string{"Ainley", "Brooks"}

func TestFitShapes(t *testing.T) {
	model, _ := simulatedModel(t, smallSpecies, smallExperts, 5)

	post, err := mcmc.Fit(model, mcmc.Config_t{Chains: 2, Iterations: 400, Seed: 17})
	require.NoError(t, err)

	assert.Equal(t, 2, post.NChains)
	assert.Equal(t, 200, post.NKept) // second half of each chain
	require.Len(t, post.Names, model.Dim())
	for _, name := range post.Names {
		require.Len(t, post.Draws[name], 2*200, "draws for %s", name)
		_, ok := post.Rhat[name]
		require.True(t, ok, "Rhat for %s", name)
	}
	assert.Equal(t, smallExperts, post.Experts)
	assert.Equal(t, smallSpecies, post.Species)

	// scale parameters are reported on the natural scale
	for _, name := range []string{"phi", "sigma_x", "sigma_s"} {
		for _, v := range post.Draws[name] {
			require.Greater(t, v, 0.0, "%s draw", name)
		}
	}
	assert.Greater(t, post.AcceptRate, 0.0)
	assert.Less(t, post.AcceptRate, 1.0)
}

func TestFitReproducible(t *testing.T) {
	model, _ := simulatedModel(t, smallSpecies, smallExperts, 5)
	cfg := mcmc.Config_t{Chains: 3, Iterations: 300, Seed: 23}

	a, err := mcmc.Fit(model, cfg)
	require.NoError(t, err)
	// a different parallelism degree must not change the draws
	cfg.Workers = 1
	b, err := mcmc.Fit(model, cfg)
	require.NoError(t, err)

	require.Equal(t, a.Draws["alpha"], b.Draws["alpha"])
	require.Equal(t, a.Draws["phi"], b.Draws["phi"])
	assert.Equal(t, a.Divergent, b.Divergent)
}

func TestFitSeedMatters(t *testing.T) {
	model, _ := simulatedModel(t, smallSpecies, smallExperts, 5)
	a, err := mcmc.Fit(model, mcmc.Config_t{Chains: 2, Iterations: 300, Seed: 1})
	require.NoError(t, err)
	b, err := mcmc.Fit(model, mcmc.Config_t{Chains: 2, Iterations: 300, Seed: 2})
	require.NoError(t, err)
	assert.NotEqual(t, a.Draws["alpha"], b.Draws["alpha"])
}

func TestFitPathologicalIterations(t *testing.T) {
	model, _ := simulatedModel(t, smallSpecies, smallExperts, 5)

	post, err := mcmc.Fit(model, mcmc.Config_t{Chains: 2, Iterations: 4, Seed: 3})
	require.NoError(t, err)

	// far too short to demonstrate convergence: the diagnostic must trip
	// the warning path, and the draws are still returned
	assert.False(t, post.Converged)
	assert.Greater(t, post.MaxRhat, mcmc.RhatThreshold)
	assert.Len(t, post.Draws["alpha"], 2*2)
}

func TestFitRejectsTinyRun(t *testing.T) {
	model, _ := simulatedModel(t, smallSpecies, smallExperts, 5)
	_, err := mcmc.Fit(model, mcmc.Config_t{Chains: 1, Iterations: 1})
	require.Error(t, err)
}

// End-to-end parameter recovery on the reference configuration.  Slow by
// unit-test standards, so skipped under -short.
func TestFitRecoversTruth(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping sampling recovery test in short mode")
	}

	speciesList := []string{"COTE", "ROST", "NOGA", "HERG", "GBBG", "RTLO", "COLO", "SUSC", "BLSC", "LTDU"}
	experts := []string{"Ainley", "Brooks", "Cairns", "Drummond", "Esler", "Furness", "Gaston", "Hatch"}

	model, _ := simulatedModel(t, speciesList, experts, 2023)
	post, err := mcmc.Fit(model, mcmc.Config_t{Chains: 4, Iterations: 5000, Seed: 2023})
	require.NoError(t, err)

	alphaMean := stat.Mean(post.Draws["alpha"], nil)
	alphaSd := stat.StdDev(post.Draws["alpha"], nil)
	tol := math.Max(3.0*alphaSd, 0.4)
	assert.InDelta(t, recoveryTruth.Alpha, alphaMean, tol,
		"posterior mean of alpha %.3f (sd %.3f)", alphaMean, alphaSd)

	// the scales are weakly identified from 8 experts / 10 species; check
	// they stay on the right order of magnitude
	sigmaX := stat.Mean(post.Draws["sigma_x"], nil)
	assert.Greater(t, sigmaX, 0.0)
	assert.Less(t, sigmaX, 0.6)
	sigmaS := stat.Mean(post.Draws["sigma_s"], nil)
	assert.Greater(t, sigmaS, 0.0)
	assert.Less(t, sigmaS, 1.0)

	assert.Less(t, post.MaxRhat, 1.5, "chains should roughly agree on this easy target")
}
