// sampler
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
package mcmc

import (
	"fmt"
	"math"

	"github.com/remeh/sizedwaitgroup"
	"golang.org/x/exp/rand"
)

const (
	DefaultChains     = 4
	DefaultIterations = 5000 // per chain, warmup included

	targetAccept = 0.234 // random-walk optimum for multivariate targets
	initStep     = 0.1
)

// Config_t controls one fit.  Zero values fall back to the defaults above;
// Workers limits how many chains run at once (0 means one worker per chain).
type Config_t struct {
	Chains     int
	Iterations int
	Workers    int
	Seed       uint64
}

// Posterior_t is the fitted result: named draw sequences with chains
// concatenated in chain order, plus the convergence diagnostics.  Scale
// parameters (phi, sigma_x, sigma_s) are stored on the natural scale.
type Posterior_t struct {
	Names   []string
	Draws   map[string][]float64
	Rhat    map[string]float64
	Species []string
	Experts []string

	MaxRhat    float64
	Converged  bool
	Divergent  int     // proposals with non-finite density across all chains
	AcceptRate float64 // post-warmup, across all chains
	NChains    int
	NKept      int // kept draws per chain
}

type chainResult_t struct {
	chain     int
	draws     [][]float64 // kept iterations x parameter, natural scale
	divergent int
	accepted  int
	proposed  int
}

// Fit runs the configured number of independent Metropolis chains in
// parallel and pools their post-warmup draws.  Chain c derives its own
// generator from Seed+c, so the result is reproducible regardless of the
// parallelism degree.  Non-convergence is reported on the result, never an
// error: the caller decides how much to trust the draws.
func Fit(m *Model_t, cfg Config_t) (*Posterior_t, error) {

	chains := cfg.Chains
	if chains <= 0 {
		chains = DefaultChains
	}
	iters := cfg.Iterations
	if iters == 0 {
		iters = DefaultIterations
	}
	if iters < 2 {
		return nil, fmt.Errorf("need at least 2 iterations per chain, got %d", iters)
	}
	workers := cfg.Workers
	if workers <= 0 || workers > chains {
		workers = chains
	}

	results := make(chan chainResult_t, chains)
	swg := sizedwaitgroup.New(workers)
	for c := 0; c < chains; c++ {
		swg.Add()
		go func(c int) {
			defer swg.Done()
			results <- runChain(m, c, iters, cfg.Seed+uint64(c))
		}(c)
	}
	swg.Wait()
	close(results)

	byChain := make([]chainResult_t, chains)
	for r := range results {
		byChain[r.chain] = r
	}

	names := m.ParamNames()
	post := &Posterior_t{
		Names:   names,
		Draws:   make(map[string][]float64, len(names)),
		Rhat:    make(map[string]float64, len(names)),
		Species: m.Species,
		Experts: m.Experts,
		NChains: chains,
		NKept:   len(byChain[0].draws),
	}

	var accepted, proposed int
	for _, r := range byChain {
		post.Divergent += r.divergent
		accepted += r.accepted
		proposed += r.proposed
	}
	if proposed > 0 {
		post.AcceptRate = float64(accepted) / float64(proposed)
	}

	for k, name := range names {
		seq := make([][]float64, chains)
		var pooled []float64
		for c, r := range byChain {
			seq[c] = make([]float64, len(r.draws))
			for t, draw := range r.draws {
				seq[c][t] = draw[k]
			}
			pooled = append(pooled, seq[c]...)
		}
		post.Draws[name] = pooled
		rhat := SplitRhat(seq)
		post.Rhat[name] = rhat
		if rhat > post.MaxRhat || math.IsNaN(rhat) {
			post.MaxRhat = rhat
		}
	}
	post.Converged = post.MaxRhat <= RhatThreshold

	return post, nil
}

// runChain executes one adaptive random-walk Metropolis chain.  The global
// proposal scale is adapted toward the target acceptance rate during warmup
// only; draws are kept after warmup, transformed back to the natural scale.
func runChain(m *Model_t, chain, iters int, seed uint64) chainResult_t {

	rng := rand.New(rand.NewSource(seed))
	d := m.Dim()
	warmup := iters / 2

	theta := initTheta(m, rng)
	lp := m.LogPosterior(theta)
	for try := 0; try < 100 && !isFinite(lp); try++ {
		theta = initTheta(m, rng)
		lp = m.LogPosterior(theta)
	}

	r := chainResult_t{chain: chain}
	step := initStep
	prop := make([]float64, d)

	for t := 0; t < iters; t++ {

		for k := range prop {
			prop[k] = theta[k] + step*rng.NormFloat64()
		}
		lpNew := m.LogPosterior(prop)

		var accProb float64
		switch {
		case math.IsNaN(lpNew):
			r.divergent++ // undefined density, reject outright
		case math.IsInf(lpNew, -1):
			// zero-probability point, an ordinary rejection
		default:
			accProb = math.Exp(math.Min(0.0, lpNew-lp))
			if rng.Float64() < accProb {
				copy(theta, prop)
				lp = lpNew
				if t >= warmup {
					r.accepted++
				}
			}
		}

		if t < warmup {
			// Robbins-Monro adaptation of the global step size
			step *= math.Exp((accProb - targetAccept) / math.Sqrt(float64(t+1)))
		} else {
			r.proposed++
			r.draws = append(r.draws, naturalScale(theta))
		}
	}

	return r
}

// initTheta draws an overdispersed but plausible starting point.  Phi starts
// near the scale the diffuse gamma prior is there to allow.
func initTheta(m *Model_t, rng *rand.Rand) []float64 {
	theta := make([]float64, m.Dim())
	theta[0] = rng.NormFloat64()                     // alpha
	theta[1] = math.Log(1000.0) + rng.NormFloat64()  // log phi
	theta[2] = -1.0 + 0.5*rng.NormFloat64()          // log sigma_x
	theta[3] = -1.0 + 0.5*rng.NormFloat64()          // log sigma_s
	for k := nGlobals; k < len(theta); k++ {
		theta[k] = 0.1 * rng.NormFloat64()
	}
	return theta
}

// naturalScale copies a state vector, mapping the log-scale parameters back
// through exp.
func naturalScale(theta []float64) []float64 {
	out := append([]float64(nil), theta...)
	out[1] = math.Exp(theta[1])
	out[2] = math.Exp(theta[2])
	out[3] = math.Exp(theta[3])
	return out
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
