// model
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

// Package mcmc fits the hierarchical beta regression.  The model log-density
// is a pure function of a parameter vector so it can be tested apart from
// the sampling driver.
package mcmc

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/seabirdproject/birdUseModel/birdUse/xform"
)

// Priors.  The gamma on phi is very diffuse: utilizations sit near 1e-3, so
// phi has to be free to land in the thousands-to-millions range.
var (
	phiPrior   = distuv.Gamma{Alpha: 1.0, Beta: 1e-5}
	alphaPrior = distuv.Normal{Mu: 0.0, Sigma: 5.0}
	scalePrior = distuv.Exponential{Rate: 1.0}
)

// Unconstrained parameter vector layout:
//
//	theta[0]          alpha
//	theta[1]          log phi
//	theta[2]          log sigma_x
//	theta[3]          log sigma_s
//	theta[4:4+X]      Zx, one per expert
//	theta[4+X:4+X+S]  Zs, one per known species
const nGlobals = 4

// Model_t is the fixed data a fit runs against: logit-scale opinions for the
// known species and their true utilizations.
type Model_t struct {
	L       [][]float64 // logit opinions, species rows x expert columns
	U       []float64   // known utilization per species row
	Species []string
	Experts []string

	nS, nX int
}

// NewModel copies the reshaped logit-opinion matrix and the utilization
// vector into a fit-ready model.  Row order of the matrix, the utilization
// vector and the species list must agree; likewise columns and experts.
func NewModel(logitOpinions *mat.Dense, utilization []float64, speciesCodes, expertNames []string) (*Model_t, error) {

	nS, nX := logitOpinions.Dims()
	if nS != len(utilization) {
		return nil, fmt.Errorf("opinion matrix has %d rows but %d utilizations given", nS, len(utilization))
	}
	if nS != len(speciesCodes) {
		return nil, fmt.Errorf("opinion matrix has %d rows but %d species codes given", nS, len(speciesCodes))
	}
	if nX != len(expertNames) {
		return nil, fmt.Errorf("opinion matrix has %d columns but %d expert names given", nX, len(expertNames))
	}

	m := &Model_t{
		U:       append([]float64(nil), utilization...),
		Species: append([]string(nil), speciesCodes...),
		Experts: append([]string(nil), expertNames...),
		nS:      nS,
		nX:      nX,
	}
	for i := 0; i < nS; i++ {
		m.L = append(m.L, mat.Row(nil, i, logitOpinions))
	}
	return m, nil
}

// Dim is the length of the unconstrained parameter vector.
func (m *Model_t) Dim() int {
	return nGlobals + m.nX + m.nS
}

// ParamNames returns the reporting name for every parameter, in vector
// order.  Scale parameters are named on the natural scale because that is
// the scale draws are stored on.
func (m *Model_t) ParamNames() []string {
	names := []string{"alpha", "phi", "sigma_x", "sigma_s"}
	for _, x := range m.Experts {
		names = append(names, "Zx["+x+"]")
	}
	for _, s := range m.Species {
		names = append(names, "Zs["+s+"]")
	}
	return names
}

// LogPosterior evaluates the joint log-density at theta, including the
// log-Jacobians of the log transforms on phi and the two scales.  A
// non-finite return marks a divergent point; the sampler rejects and counts
// it.
func (m *Model_t) LogPosterior(theta []float64) float64 {

	alpha := theta[0]
	phi := math.Exp(theta[1])
	sigmaX := math.Exp(theta[2])
	sigmaS := math.Exp(theta[3])
	zx := theta[nGlobals : nGlobals+m.nX]
	zs := theta[nGlobals+m.nX:]

	lp := phiPrior.LogProb(phi) + theta[1]
	lp += alphaPrior.LogProb(alpha)
	lp += scalePrior.LogProb(sigmaX) + theta[2]
	lp += scalePrior.LogProb(sigmaS) + theta[3]

	zxPrior := distuv.Normal{Mu: 0.0, Sigma: sigmaX}
	for j := range zx {
		lp += zxPrior.LogProb(zx[j])
	}
	zsPrior := distuv.Normal{Mu: 0.0, Sigma: sigmaS}
	for i := range zs {
		lp += zsPrior.LogProb(zs[i])
	}

	for i := 0; i < m.nS; i++ {
		mu := xform.InvLogit(xform.Eta(alpha, m.L[i], zx, zs[i]))
		shape1 := mu * phi
		shape2 := (1.0 - mu) * phi
		if !(shape1 > 0.0) || !(shape2 > 0.0) || math.IsInf(phi, 1) {
			// mu rounded onto the boundary or phi overflowed; the beta
			// density is undefined here.  NaN marks the point divergent.
			return math.NaN()
		}
		like := distuv.Beta{Alpha: shape1, Beta: shape2}
		lp += like.LogProb(m.U[i])
	}

	return lp
}
