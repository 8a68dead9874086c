// reshape
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

// Package reshape converts the long-form opinion records into the dense
// species x expert matrix the inference engine runs on.
package reshape

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/seabirdproject/birdUseModel/birdUse/survey"
	"github.com/seabirdproject/birdUseModel/birdUse/xform"
)

// Index_t maps string identifiers to dense integer codes in the order of the
// canonical list it was built from.  Built once per dataset, never mutated.
type Index_t struct {
	codes []string
	of    map[string]int
}

func NewIndex(codes []string) Index_t {
	ix := Index_t{codes: append([]string(nil), codes...), of: make(map[string]int, len(codes))}
	for i, c := range ix.codes {
		ix.of[c] = i
	}
	return ix
}

func (ix Index_t) Of(code string) (int, bool) {
	i, ok := ix.of[code]
	return i, ok
}

func (ix Index_t) Len() int {
	return len(ix.codes)
}

func (ix Index_t) Codes() []string {
	return ix.codes
}

// OpinionMatrix lays the long-form records out as a dense S x X matrix, rows
// in species index order, columns in expert index order.  The grid must be
// complete and free of duplicates; anything else is a structural error, not
// something to impute over.
func OpinionMatrix(opinions []survey.Opinion_t, speciesIx, expertIx Index_t) (*mat.Dense, error) {

	nS := speciesIx.Len()
	nX := expertIx.Len()
	if nS == 0 || nX == 0 {
		return nil, fmt.Errorf("empty species or expert index")
	}

	m := mat.NewDense(nS, nX, nil)
	seen := make([]bool, nS*nX)

	for _, o := range opinions {
		i, ok := speciesIx.Of(o.Species)
		if !ok {
			return nil, fmt.Errorf("opinion references unknown species %q", o.Species)
		}
		j, ok := expertIx.Of(o.Expert)
		if !ok {
			return nil, fmt.Errorf("opinion references unknown expert %q", o.Expert)
		}
		if seen[i*nX+j] {
			return nil, fmt.Errorf("duplicate opinion for species %s from expert %s", o.Species, o.Expert)
		}
		seen[i*nX+j] = true
		m.Set(i, j, o.Value)
	}

	for i := 0; i < nS; i++ {
		for j := 0; j < nX; j++ {
			if !seen[i*nX+j] {
				return nil, fmt.Errorf("incomplete opinion grid: no opinion for species %s from expert %s",
					speciesIx.codes[i], expertIx.codes[j])
			}
		}
	}

	return m, nil
}

// LogitMatrix maps every cell through the logit.  Inputs must already have
// passed the open-interval validation.
func LogitMatrix(m *mat.Dense) *mat.Dense {
	r, c := m.Dims()
	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, xform.Logit(m.At(i, j)))
		}
	}
	return out
}
