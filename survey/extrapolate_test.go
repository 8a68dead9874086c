package survey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/seabirdproject/birdUseModel/birdUse/mcmc"
	"github.com/seabirdproject/birdUseModel/birdUse/xform"
)

// A degenerate posterior with every draw pinned to the same values, so the
// correction the extrapolation applies is known in closed form.
func pinnedPosterior(experts []string, nDraws int, alpha, phi, sigmaS float64) *mcmc.Posterior_t {
	rep := func(v float64) []float64 {
		d := make([]float64, nDraws)
		for i := range d {
			d[i] = v
		}
		return d
	}
	post := &mcmc.Posterior_t{
		Draws:   map[string][]float64{"alpha": rep(alpha), "phi": rep(phi), "sigma_s": rep(sigmaS)},
		Experts: experts,
	}
	for _, x := range experts {
		post.Draws["Zx["+x+"]"] = rep(0.0)
	}
	return post
}

func TestExtrapolateBiasCorrection(t *testing.T) {
	experts := []string{"Ainley", "Brooks", "Cairns"}
	post := pinnedPosterior(experts, 2000, -0.5, 1e4, 1e-8)

	opinions := mat.NewDense(1, 3, []float64{0.01, 0.01, 0.01})
	preds := Extrapolate(post, opinions, []string{"ATPU"}, rand.New(rand.NewSource(31)))
	require.Len(t, preds, 1)

	p := preds[0]
	assert.Equal(t, "ATPU", p.Species)
	require.Len(t, p.Draws, 2000)
	assert.InDelta(t, 0.01, p.RawMean, 1e-12)

	// with expert effects and the species scale pinned at zero, the whole
	// correction is the fitted overestimation intercept
	want := xform.InvLogit(xform.Logit(0.01) - 0.5)
	assert.InDelta(t, want, p.Mean, 5e-4)
	assert.Less(t, p.Mean, p.RawMean, "overestimation must be corrected downward")
	assert.Less(t, p.Lo, p.Mean)
	assert.Greater(t, p.Hi, p.Mean)
}

func TestExtrapolateExpertEffect(t *testing.T) {
	experts := []string{"Ainley", "Brooks"}
	post := pinnedPosterior(experts, 1500, 0.0, 1e4, 1e-8)
	// one expert's fitted effect enters through the per-expert sum before
	// the divide, exactly like the likelihood's mean aggregation
	for i := range post.Draws["Zx[Ainley]"] {
		post.Draws["Zx[Ainley]"][i] = 0.4
	}

	opinions := mat.NewDense(1, 2, []float64{0.01, 0.01})
	preds := Extrapolate(post, opinions, []string{"RAZO"}, rand.New(rand.NewSource(5)))

	want := xform.InvLogit(xform.Logit(0.01) + 0.4/2.0)
	assert.InDelta(t, want, preds[0].Mean, 5e-4)
}

func TestExtrapolateSigmaSWidensInterval(t *testing.T) {
	experts := []string{"Ainley", "Brooks"}
	narrow := pinnedPosterior(experts, 1500, -0.5, 1e4, 1e-8)
	wide := pinnedPosterior(experts, 1500, -0.5, 1e4, 0.5)

	opinions := mat.NewDense(1, 2, []float64{0.01, 0.012})
	pn := Extrapolate(narrow, opinions, []string{"COMU"}, rand.New(rand.NewSource(9)))[0]
	pw := Extrapolate(wide, opinions, []string{"COMU"}, rand.New(rand.NewSource(9)))[0]

	// marginalizing over an uncertain species effect spreads the predictive
	assert.Greater(t, pw.Hi-pw.Lo, pn.Hi-pn.Lo)
}

func TestExtrapolateRowOrder(t *testing.T) {
	experts := []string{"Ainley", "Brooks"}
	post := pinnedPosterior(experts, 500, -0.5, 1e4, 1e-8)

	opinions := mat.NewDense(2, 2, []float64{
		0.001, 0.001,
		0.02, 0.02,
	})
	preds := Extrapolate(post, opinions, []string{"ATPU", "RAZO"}, rand.New(rand.NewSource(4)))
	require.Len(t, preds, 2)
	assert.Equal(t, "ATPU", preds[0].Species)
	assert.Equal(t, "RAZO", preds[1].Species)
	assert.Less(t, preds[0].Mean, preds[1].Mean)
}
