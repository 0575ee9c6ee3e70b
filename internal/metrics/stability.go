package metrics

import (
	"math"

	"github.com/san-kum/wavelink/internal/dynamo"
)

// Stability is the fraction of rows whose selected columns all stay within
// threshold. With no columns selected every entry is checked.
type Stability struct {
	name       string
	threshold  float64
	cols       []int
	violations int
	samples    int
}

func NewStability(threshold float64, cols ...int) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
		cols:      cols,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(x dynamo.State, u dynamo.Control, t float64) {
	s.samples++
	if len(s.cols) == 0 {
		for _, val := range x {
			if !(math.Abs(val) <= s.threshold) {
				s.violations++
				return
			}
		}
		return
	}
	for _, i := range s.cols {
		if !(math.Abs(x.At(i)) <= s.threshold) {
			s.violations++
			return
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
