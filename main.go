// birdUse project main.go
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

package main

import (
	"fmt"
	"math"

	"github.com/seabirdproject/birdUseModel/birdUse/logger"
	"github.com/seabirdproject/birdUseModel/birdUse/mcmc"
	"github.com/seabirdproject/birdUseModel/birdUse/report"
	"github.com/seabirdproject/birdUseModel/birdUse/reshape"
	"github.com/seabirdproject/birdUseModel/birdUse/survey"
)

var version = "beta0.1.2"

var knownOpinions []survey.Opinion_t
var unknownOpinions []survey.Opinion_t
var trueUnknownUse map[string]float64 // simulated truth for the comparison table

// Assemble the run's data.  An Opinions: table in the parameter file is the
// real-data path; without one a synthetic elicitation is simulated from the
// sim* keys, and the unknown species get simulated opinions from the same
// truth so the corrected predictions can be checked against it.
func assembleData() {

	if opinions := loadOpinionRows("Opinions"); opinions != nil {

		knownOpinions = opinions
		for i, u := range knownUseVals {
			if math.IsNaN(u) {
				logger.LogWriterFatal("species " + knownSpecies[i] + " has no utilization in 'knownSpecies:' but an 'Opinions:' table is present")
			}
		}
		unknownOpinions = loadOpinionRows("unknownOpinions")
		if len(unknownSpecies) > 0 && unknownOpinions == nil {
			logger.LogWriterFatal("'unknownSpecies:' listed but no 'unknownOpinions:' table in " + *paramFile)
		}
		return
	}

	if *logger.OutputMode == "verbose" {
		fmt.Printf("No 'Opinions:' table; simulating an elicitation (alpha %g, phi %g, sigma_x %g, sigma_s %g)\n",
			simTruth.Alpha, simTruth.Phi, simTruth.SigmaExpert, simTruth.SigmaSpecies)
	}

	cohort := survey.Simulate(knownSpecies, experts, simTruth, masterRng)
	knownOpinions = cohort.Opinions
	for i, u := range cohort.Utilizations {
		knownUseVals[i] = u.Utilization
	}

	if len(unknownSpecies) > 0 {
		uc := survey.Simulate(unknownSpecies, experts, simTruth, masterRng)
		unknownOpinions = uc.Opinions
		trueUnknownUse = make(map[string]float64, len(uc.Utilizations))
		for _, u := range uc.Utilizations {
			trueUnknownUse[u.Species] = u.Utilization
		}
	}
}

// Print the posterior and prediction summary tables
func printTables(post *mcmc.Posterior_t, preds []survey.Prediction_t) {
	if *logger.OutputMode != "verbose" {
		return
	}

	fmt.Printf("\nParameter          Mean       StdDev          Q05          Q95     Rhat\n")
	for _, name := range []string{"alpha", "phi", "sigma_x", "sigma_s"} {
		s := report.Summarize(post.Draws[name])
		fmt.Printf("%-12s %10.4g %12.4g %12.4g %12.4g %8.3f\n",
			name, s.Mean, s.StdDev, s.Q05, s.Q95, post.Rhat[name])
	}
	fmt.Printf("\nAcceptance: %.3f   Divergent: %d   Max split-Rhat: %.3f\n",
		post.AcceptRate, post.Divergent, post.MaxRhat)

	if len(preds) == 0 {
		return
	}
	fmt.Printf("\nSpecies       RawMean    Corrected          Q05          Q95         True\n")
	for _, p := range preds {
		if u, ok := trueUnknownUse[p.Species]; ok {
			fmt.Printf("%-8s %12.5g %12.5g %12.5g %12.5g %12.5g\n", p.Species, p.RawMean, p.Mean, p.Lo, p.Hi, u)
		} else {
			fmt.Printf("%-8s %12.5g %12.5g %12.5g %12.5g            -\n", p.Species, p.RawMean, p.Mean, p.Lo, p.Hi)
		}
	}
}

func main() {

	initRun() // flags, parameter file, species/expert tables, master RNG

	assembleData()

	// Fail fast on anything the logit transform cannot take
	if err := survey.ValidateOpinions(knownOpinions); err != nil {
		logger.LogWriterFatal(err.Error())
	}
	if err := survey.ValidateOpinions(unknownOpinions); err != nil {
		logger.LogWriterFatal(err.Error())
	}
	uses := make([]survey.SpeciesUse_t, len(knownSpecies))
	for i := range knownSpecies {
		uses[i] = survey.SpeciesUse_t{Species: knownSpecies[i], Utilization: knownUseVals[i]}
	}
	if err := survey.ValidateUtilizations(uses); err != nil {
		logger.LogWriterFatal(err.Error())
	}

	speciesIx := reshape.NewIndex(knownSpecies)
	expertIx := reshape.NewIndex(experts)
	opMatrix, err := reshape.OpinionMatrix(knownOpinions, speciesIx, expertIx)
	if err != nil {
		logger.LogWriterFatal(err.Error())
	}

	model, err := mcmc.NewModel(reshape.LogitMatrix(opMatrix), knownUseVals, knownSpecies, experts)
	if err != nil {
		logger.LogWriterFatal(err.Error())
	}

	if *logger.OutputMode == "verbose" {
		fmt.Printf("\nFitting %d species x %d experts...\n", speciesIx.Len(), expertIx.Len())
	}

	post, err := mcmc.Fit(model, mcmc.Config_t{
		Chains:     nChains,
		Iterations: nIterations,
		Workers:    nWorkers,
		Seed:       uint64(*logger.Seed),
	})
	if err != nil {
		logger.LogWriterFatal(err.Error())
	}

	if !post.Converged {
		msg := fmt.Sprintf("sampler did not converge: max split-Rhat %.3f exceeds %.2f; treat results with caution",
			post.MaxRhat, mcmc.RhatThreshold)
		logger.LogWriter(msg)
		if *logger.OutputMode == "verbose" {
			fmt.Println("WARNING: " + msg)
		}
	}
	if post.Divergent > 0 {
		logger.LogWriter(fmt.Sprintf("%d divergent proposals during sampling", post.Divergent))
	}

	var preds []survey.Prediction_t
	if len(unknownSpecies) > 0 {
		uIx := reshape.NewIndex(unknownSpecies)
		uMatrix, err := reshape.OpinionMatrix(unknownOpinions, uIx, expertIx)
		if err != nil {
			logger.LogWriterFatal(err.Error())
		}
		preds = survey.Extrapolate(post, uMatrix, unknownSpecies, masterRng)
	}

	printTables(post, preds)

	report.DumpPosterior(posteriorDump, post)
	report.DumpPredictions(predictionDump, preds)
}
