// extrapolate
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
	"sort"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/seabirdproject/birdUseModel/birdUse/mcmc"
	"github.com/seabirdproject/birdUseModel/birdUse/xform"
)

// Prediction_t is the bias-corrected predictive utilization distribution
// for one unknown species.
type Prediction_t struct {
	Species string
	Draws   []float64

	RawMean float64 // plain mean of the uncorrected opinions
	Mean    float64
	Lo, Hi  float64 // central 90% interval
}

// Extrapolate applies the fitted posterior to species the model never saw.
// No fitted species effect exists for them, so each posterior draw gets a
// fresh effect from the estimated population distribution N(0, sigma_s),
// and the result is propagated through the beta observation model with that
// draw's phi.  Matrix rows follow speciesCodes; columns must be in the
// posterior's expert order.
func Extrapolate(post *mcmc.Posterior_t, opinions *mat.Dense, speciesCodes []string, rng *rand.Rand) []Prediction_t {

	alpha := post.Draws["alpha"]
	phi := post.Draws["phi"]
	sigmaS := post.Draws["sigma_s"]
	zx := make([][]float64, len(post.Experts))
	for j, x := range post.Experts {
		zx[j] = post.Draws["Zx["+x+"]"]
	}

	nDraws := len(alpha)
	nX := len(post.Experts)

	preds := make([]Prediction_t, 0, len(speciesCodes))
	logitRow := make([]float64, nX)
	zxRow := make([]float64, nX)

	for i, s := range speciesCodes {

		var rawSum float64
		for j := 0; j < nX; j++ {
			v := opinions.At(i, j)
			rawSum += v
			logitRow[j] = xform.Logit(v)
		}

		p := Prediction_t{
			Species: s,
			Draws:   make([]float64, nDraws),
			RawMean: rawSum / float64(nX),
		}

		for d := 0; d < nDraws; d++ {
			for j := 0; j < nX; j++ {
				zxRow[j] = zx[j][d]
			}
			zsNew := rng.NormFloat64() * sigmaS[d]
			mu := xform.InvLogit(xform.Eta(alpha[d], logitRow, zxRow, zsNew))
			p.Draws[d] = distuv.Beta{
				Alpha: mu * phi[d],
				Beta:  (1.0 - mu) * phi[d],
				Src:   rng,
			}.Rand()
		}

		sorted := append([]float64(nil), p.Draws...)
		sort.Float64s(sorted)
		p.Mean = stat.Mean(sorted, nil)
		p.Lo = stat.Quantile(0.05, stat.Empirical, sorted, nil)
		p.Hi = stat.Quantile(0.95, stat.Empirical, sorted, nil)

		preds = append(preds, p)
	}

	return preds
}
