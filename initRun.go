// initRun
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
	"errors"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	hjson "github.com/hjson/hjson-go"
	"golang.org/x/exp/rand"

	"github.com/seabirdproject/birdUseModel/birdUse/logger"
	"github.com/seabirdproject/birdUseModel/birdUse/survey"
)

// setup the map of the array of json name:value pairs - notice "interface{}"
var param map[string]interface{}

var paramFile *string // Name of the parameter file

var knownSpecies []string  // species with tracking-derived utilization
var knownUseVals []float64 // aligned with knownSpecies; NaN until loaded/simulated
var unknownSpecies []string
var experts []string

var simTruth survey.Truth_t // generating parameters for synthetic runs

var nChains int
var nIterations int
var nWorkers int

var posteriorDump string
var predictionDump string

var masterRng *rand.Rand

// Initialize the run
func initRun() {

	parseArgs()

	loadParam()

	if *logger.OutputMode == "verbose" {
		runComment, ok := param["Comment"].(interface{})
		if ok {
			fmt.Printf("Comment: %v\n\n", runComment.(string))
		}
	}

	loadKnownSpecies()
	loadUnknownSpecies()
	loadExperts()
	loadSimTruth()
	loadSamplerConfig()
	openOutputFiles()

	// One master stream per run; chains derive their own sub-streams from
	// the same seed inside the sampler.
	masterRng = rand.New(rand.NewSource(uint64(*logger.Seed)))

	if *logger.OutputMode == "verbose" {
		fmt.Printf("\n\tFinished loading %v...\n\n", *paramFile)
	}
}

// Parse the arg list looking for the input hjson file
func parseArgs() {

	paramFile = flag.String("param", "", "The birdUse parameter file (required)")
	logger.OutputMode = flag.String("outputMode", "verbose", "'verbose'(default) or 'model'")
	logger.User = flag.String("user", "admin", "user=[Username]")

	logger.Seed = flag.Int64("seed", 1234, "Random number generator seed (int64)")

	flag.Parse()

	if *logger.OutputMode == "verbose" {
		fmt.Printf("\n\t*** birdUse ver %v ***\n\n", version)
	}

	if *paramFile == "" {
		if *logger.OutputMode == "verbose" {
			fmt.Printf("Error: A parameter file name must be provided on the command line\n\tbirdUse -param=[file name]\n")
			syntax := `Usage of ./birdUse:
  -param string
    	The birdUse parameter file (required)
  -outputMode string
    	'verbose'(default) or 'model' (default "verbose")
  -seed int
    	Random number generator seed (int64) (default 1234)
  -user string
    	user=[Username] (default "admin")`

			fmt.Printf("\n%s\n\n", syntax)
			log.Fatal(errors.New("no parameter file name provided"))
		} else {
			logger.LogWriter("no parameter file name provided")
			os.Exit(1)
		}
	}
}

// Read in the parameter hjson file and setup the map of param[key] pairs
func loadParam() {

	hjsonFile, err := os.Open(*paramFile)
	if err != nil {
		if *logger.OutputMode == "verbose" {
			fmt.Println("Failed to open " + *paramFile)
			fmt.Println(err)
			os.Exit(1)
		} else {
			logger.LogWriter("Failed to open parameter file " + *paramFile)
			os.Exit(1)
		}
	}
	defer hjsonFile.Close()

	byteValue, _ := ioutil.ReadAll(hjsonFile)

	if er := hjson.Unmarshal(byteValue, &param); er != nil {
		panic(er)
	}
}

// Read the knownSpecies: table.  Each row is "CODE" or "CODE, utilization";
// utilization may be omitted on synthetic runs where it gets simulated.
func loadKnownSpecies() {

	array, ok := param["knownSpecies"].([]interface{})
	if !ok {
		logger.LogWriterFatal("'knownSpecies:' key not found in " + *paramFile)
	}

	if *logger.OutputMode == "verbose" {
		fmt.Print("Known species:\n")
	}
	for i := range array {
		s := strings.Split(array[i].(string), ",")
		code := strings.TrimSpace(s[0])
		u := math.NaN()
		if len(s) > 1 {
			u, _ = strconv.ParseFloat(strings.TrimSpace(s[1]), 64)
		}
		knownSpecies = append(knownSpecies, code)
		knownUseVals = append(knownUseVals, u)
		if *logger.OutputMode == "verbose" {
			if math.IsNaN(u) {
				fmt.Printf("\t%v\n", code)
			} else {
				fmt.Printf("\t%v %v\n", code, u)
			}
		}
	}
}

// Read the unknownSpecies: list; these only ever carry opinions
func loadUnknownSpecies() {

	array, ok := param["unknownSpecies"].([]interface{})
	if !ok {
		return // extrapolation step is optional
	}
	if *logger.OutputMode == "verbose" {
		fmt.Print("Unknown species:\n")
	}
	for i := range array {
		code := strings.TrimSpace(array[i].(string))
		unknownSpecies = append(unknownSpecies, code)
		if *logger.OutputMode == "verbose" {
			fmt.Printf("\t%v\n", code)
		}
	}
}

// Read the experts: list
func loadExperts() {

	array, ok := param["experts"].([]interface{})
	if !ok {
		logger.LogWriterFatal("'experts:' key not found in " + *paramFile)
	}
	if *logger.OutputMode == "verbose" {
		fmt.Print("Experts:\n")
	}
	for i := range array {
		name := strings.TrimSpace(array[i].(string))
		experts = append(experts, name)
		if *logger.OutputMode == "verbose" {
			fmt.Printf("\t%v\n", name)
		}
	}
}

// Read the generating parameters for synthetic runs.  Ignored when an
// Opinions: table is present.
func loadSimTruth() {

	simTruth.Alpha, _ = param["simAlpha"].(float64)
	simTruth.Phi, _ = param["simPhi"].(float64)
	simTruth.SigmaExpert, _ = param["simSigmaExpert"].(float64)
	simTruth.SigmaSpecies, _ = param["simSigmaSpecies"].(float64)
	simTruth.OpinionNoise, _ = param["simOpinionNoise"].(float64)

	if _, real := param["Opinions"]; !real && simTruth.Phi <= 0.0 {
		logger.LogWriterFatal("no 'Opinions:' table and no valid 'simPhi:' in " + *paramFile + "; nothing to fit")
	}
}

// Read chains/iterations/workers with the reference defaults
func loadSamplerConfig() {

	nChains = 4
	if v, ok := param["chains"].(float64); ok {
		nChains = int(v)
	}
	nIterations = 5000
	if v, ok := param["iterations"].(float64); ok {
		nIterations = int(v)
	}
	nWorkers = 0 // one worker per chain
	if v, ok := param["workers"].(float64); ok {
		nWorkers = int(v)
	}

	if *logger.OutputMode == "verbose" {
		fmt.Printf("\nSampler: %d chains x %d iterations\n", nChains, nIterations)
	}
}

// Record the output files named in the parameter file
func openOutputFiles() {

	if c := param["posteriordump"]; c != nil {
		posteriorDump = c.(string)
	}
	if c := param["predictiondump"]; c != nil {
		predictionDump = c.(string)
	}
}

// Parse an "expert, species, value" opinion table under the given key.
// Returns nil if the key is absent.
func loadOpinionRows(key string) []survey.Opinion_t {

	array, ok := param[key].([]interface{})
	if !ok {
		return nil
	}

	var opinions []survey.Opinion_t
	for i := range array {
		s := strings.Split(array[i].(string), ",")
		if len(s) != 3 {
			logger.LogWriterFatal("'" + key + ":' row " + strconv.Itoa(i) + " is not 'expert, species, value'")
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s[2]), 64)
		if err != nil {
			logger.LogWriterFatal("'" + key + ":' row " + strconv.Itoa(i) + " has a non-numeric value")
		}
		opinions = append(opinions, survey.Opinion_t{
			Expert:  strings.TrimSpace(s[0]),
			Species: strings.TrimSpace(s[1]),
			Value:   v,
		})
	}
	return opinions
}
