// survey
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

// Package survey holds the elicitation data model: species, experts and the
// opinions experts gave about lease-area utilization, plus the synthetic
// cohort generator and the unknown-species extrapolation step.
package survey

import "fmt"

// One expert's subjective utilization estimate for one species
type Opinion_t struct {
	Expert  string
	Species string
	Value   float64 // strictly inside (0,1)
}

// Ground-truth utilization for a known species
type SpeciesUse_t struct {
	Species     string
	Utilization float64 // strictly inside (0,1)
}

// Truth_t are the generating parameters of a simulated elicitation
type Truth_t struct {
	Alpha        float64 // systematic overestimation intercept
	Phi          float64 // beta dispersion, larger is tighter
	SigmaExpert  float64 // spread of the per-expert effects
	SigmaSpecies float64 // spread of the per-species effects
	OpinionNoise float64 // logit-scale sd of an individual opinion
}

// Logit-scale sd of an individual opinion when the parameter file does not
// set one
const DefaultOpinionNoise = 0.25

// Cohort_t is one simulated elicitation.  The latent effects and the
// baseline are carried along so recovery checks can reach the truth; they
// are never inputs to inference.
type Cohort_t struct {
	Species []string
	Experts []string

	Opinions     []Opinion_t
	Utilizations []SpeciesUse_t

	ExpertEffect  map[string]float64
	SpeciesEffect map[string]float64
	Baseline      map[string]float64
}

// ValidateOpinions rejects any opinion at or outside (0,1) before it can
// reach the logit transform.
func ValidateOpinions(opinions []Opinion_t) error {
	for _, o := range opinions {
		if !(o.Value > 0.0 && o.Value < 1.0) {
			return fmt.Errorf("opinion for species %s from expert %s is %g; must be strictly inside (0,1)",
				o.Species, o.Expert, o.Value)
		}
	}
	return nil
}

// ValidateUtilizations rejects any known utilization at or outside (0,1).
func ValidateUtilizations(uses []SpeciesUse_t) error {
	for _, u := range uses {
		if !(u.Utilization > 0.0 && u.Utilization < 1.0) {
			return fmt.Errorf("utilization for species %s is %g; must be strictly inside (0,1)",
				u.Species, u.Utilization)
		}
	}
	return nil
}
