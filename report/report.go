// report
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

// Package report writes the posterior and prediction summary tables the
// downstream presentation layer consumes.
package report

import (
	"fmt"
	"os"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/seabirdproject/birdUseModel/birdUse/mcmc"
	"github.com/seabirdproject/birdUseModel/birdUse/survey"
)

type Summary_t struct {
	Mean   float64
	StdDev float64
	Q05    float64
	Q50    float64
	Q95    float64
}

// Summarize reduces a draw sequence to the table columns.
func Summarize(draws []float64) Summary_t {
	sorted := append([]float64(nil), draws...)
	sort.Float64s(sorted)
	return Summary_t{
		Mean:   stat.Mean(sorted, nil),
		StdDev: stat.StdDev(sorted, nil),
		Q05:    stat.Quantile(0.05, stat.Empirical, sorted, nil),
		Q50:    stat.Quantile(0.50, stat.Empirical, sorted, nil),
		Q95:    stat.Quantile(0.95, stat.Empirical, sorted, nil),
	}
}

// DumpPosterior writes one row per parameter in vector order.
func DumpPosterior(filename string, post *mcmc.Posterior_t) {
	if filename == "" {
		return
	}

	f, _ := os.Create(filename)
	defer f.Close()

	fmt.Fprintf(f, "%-14s %12s %12s %12s %12s %12s %8s\n",
		"Parameter", "Mean", "StdDev", "Q05", "Q50", "Q95", "Rhat")
	for _, name := range post.Names {
		s := Summarize(post.Draws[name])
		fmt.Fprintf(f, "%-14s %12.6g %12.6g %12.6g %12.6g %12.6g %8.3f\n",
			name, s.Mean, s.StdDev, s.Q05, s.Q50, s.Q95, post.Rhat[name])
	}
	fmt.Fprintf(f, "\nchains %d  kept/chain %d  acceptance %.3f  divergent %d  max Rhat %.3f\n",
		post.NChains, post.NKept, post.AcceptRate, post.Divergent, post.MaxRhat)
}

// DumpPredictions writes the corrected utilization per unknown species next
// to the raw opinion mean it was corrected from.
func DumpPredictions(filename string, preds []survey.Prediction_t) {
	if filename == "" {
		return
	}

	f, _ := os.Create(filename)
	defer f.Close()

	fmt.Fprintf(f, "%-10s %12s %12s %12s %12s\n",
		"Species", "RawMean", "Corrected", "Q05", "Q95")
	for _, p := range preds {
		fmt.Fprintf(f, "%-10s %12.6g %12.6g %12.6g %12.6g\n",
			p.Species, p.RawMean, p.Mean, p.Lo, p.Hi)
	}
}
