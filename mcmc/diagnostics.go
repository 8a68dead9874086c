// diagnostics
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
	"math"

	"gonum.org/v1/gonum/stat"
)

// Chains agreeing within this split-Rhat bound are accepted as converged.
const RhatThreshold = 1.1

// SplitRhat computes the split potential-scale-reduction statistic for one
// parameter from its per-chain draw sequences.  Each chain is split in half
// so within-chain drift shows up as disagreement.  Values near 1.0 indicate
// agreement; chains too short to assess return +Inf rather than a false
// pass.
func SplitRhat(chains [][]float64) float64 {

	var halves [][]float64
	n := 0
	for _, c := range chains {
		h := len(c) / 2
		if h < 2 {
			return math.Inf(1)
		}
		if n == 0 || h < n {
			n = h
		}
		halves = append(halves, c[:h], c[len(c)-h:])
	}
	if len(halves) < 2 {
		return math.Inf(1)
	}

	// Truncate every half to the shortest so the pooled variances are over
	// equal lengths.
	means := make([]float64, len(halves))
	vars := make([]float64, len(halves))
	for k, h := range halves {
		h = h[:n]
		means[k] = stat.Mean(h, nil)
		vars[k] = stat.Variance(h, nil)
	}

	w := stat.Mean(vars, nil)
	b := float64(n) * stat.Variance(means, nil)
	varPlus := float64(n-1)/float64(n)*w + b/float64(n)

	if w == 0.0 {
		if varPlus == 0.0 {
			return 1.0 // degenerate but identical chains
		}
		return math.Inf(1)
	}
	return math.Sqrt(varPlus / w)
}
