// xform
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

// Package xform holds the link-function arithmetic the model works in.
// Everything downstream of the raw opinion tables runs on the logit scale.
package xform

import "math"

// Logit returns the log odds of p.  The caller must guarantee p is strictly
// inside (0,1); the boundary maps to +/-Inf.
func Logit(p float64) float64 {
	return math.Log(p / (1.0 - p))
}

// InvLogit maps any real y into (0,1).  Branching on the sign of y keeps the
// exponential argument non-positive so it never overflows for large |y|.
func InvLogit(y float64) float64 {
	if y >= 0 {
		return 1.0 / (1.0 + math.Exp(-y))
	}
	e := math.Exp(y)
	return e / (1.0 + e)
}

// Eta is the model mean for one species on the logit scale: the intercept,
// plus the per-expert (logit opinion + expert effect) terms summed across
// experts and divided by the expert count, plus the species effect.
// The sum-then-divide order is shared by the simulator, the likelihood and
// the extrapolation step so the three can never disagree numerically.
func Eta(alpha float64, logitRow, zx []float64, zs float64) float64 {
	var sum float64
	for j := range logitRow {
		sum += logitRow[j] + zx[j]
	}
	return alpha + sum/float64(len(logitRow)) + zs
}
