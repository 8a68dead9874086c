// simulate
/*
Copyright 2023 Offshore Seabird Working Group

Permission is hereby granted, free of charge, to any person obtaining a copy of
this software and associated documentation files (the "Software"), to deal in
the Software without restriction, including without limitation the rights to
use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
of the Software, and to permit persons to whom the Software is furnished to do
so, subject to the following conditions:
The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/
package survey

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/seabirdproject/birdUseModel/birdUse/xform"
)

// Utilization of an offshore lease area by any one species is tiny; the
// dummy baseline that centers the simulated opinions is drawn on this range.
const (
	baselineLow  = 0.0001
	baselineHigh = 0.003
)

// Simulate generates one synthetic elicitation over the given species and
// experts.  The draw order is fixed and part of the reproducibility
// contract: expert effects, species effects, baselines, then opinions in
// species-major order, then the per-species utilization draws.  Two calls
// with generators seeded alike produce identical cohorts.
//
// The baseline is only used to center the opinions at a plausible scale.
// The recorded utilization is the separate beta draw below, so the "truth"
// carries the same overestimation structure the model fits.
func Simulate(speciesList, experts []string, truth Truth_t, rng *rand.Rand) Cohort_t {

	noise := truth.OpinionNoise
	if noise <= 0.0 {
		noise = DefaultOpinionNoise
	}

	c := Cohort_t{
		Species:       speciesList,
		Experts:       experts,
		ExpertEffect:  make(map[string]float64, len(experts)),
		SpeciesEffect: make(map[string]float64, len(speciesList)),
		Baseline:      make(map[string]float64, len(speciesList)),
	}

	zxDist := distuv.Normal{Mu: 0.0, Sigma: truth.SigmaExpert, Src: rng}
	for _, x := range experts {
		c.ExpertEffect[x] = zxDist.Rand()
	}

	zsDist := distuv.Normal{Mu: 0.0, Sigma: truth.SigmaSpecies, Src: rng}
	for _, s := range speciesList {
		c.SpeciesEffect[s] = zsDist.Rand()
	}

	baseDist := distuv.Uniform{Min: baselineLow, Max: baselineHigh, Src: rng}
	for _, s := range speciesList {
		c.Baseline[s] = baseDist.Rand()
	}

	for _, s := range speciesList {
		center := xform.Logit(c.Baseline[s]) + c.SpeciesEffect[s]
		for _, x := range experts {
			op := distuv.Normal{
				Mu:    center + c.ExpertEffect[x],
				Sigma: noise,
				Src:   rng,
			}.Rand()
			c.Opinions = append(c.Opinions, Opinion_t{
				Expert:  x,
				Species: s,
				Value:   xform.InvLogit(op),
			})
		}
	}

	// The simulated ground truth: the model's own mean aggregation fed
	// through the beta observation distribution.
	for i, s := range speciesList {
		logitRow := make([]float64, len(experts))
		zxRow := make([]float64, len(experts))
		for j, x := range experts {
			logitRow[j] = xform.Logit(c.Opinions[i*len(experts)+j].Value)
			zxRow[j] = c.ExpertEffect[x]
		}
		mu := xform.InvLogit(xform.Eta(truth.Alpha, logitRow, zxRow, c.SpeciesEffect[s]))
		u := distuv.Beta{
			Alpha: mu * truth.Phi,
			Beta:  (1.0 - mu) * truth.Phi,
			Src:   rng,
		}.Rand()
		c.Utilizations = append(c.Utilizations, SpeciesUse_t{Species: s, Utilization: u})
	}

	return c
}
