package metrics

import (
	"math"

	"github.com/san-kum/wavelink/internal/dynamo"
)

// TrackingError is the RMS difference between two position columns.
type TrackingError struct {
	name    string
	a, b    int
	sumSq   float64
	max     float64
	samples int
}

func NewTrackingError(a, b int) *TrackingError {
	return &TrackingError{name: "tracking_error", a: a, b: b}
}

func (e *TrackingError) Name() string { return e.name }

func (e *TrackingError) Observe(x dynamo.State, u dynamo.Control, t float64) {
	d := x.At(e.a) - x.At(e.b)
	e.sumSq += d * d
	e.max = math.Max(e.max, math.Abs(d))
	e.samples++
}

func (e *TrackingError) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return math.Sqrt(e.sumSq / float64(e.samples))
}

// Max is the largest absolute difference seen.
func (e *TrackingError) Max() float64 { return e.max }

func (e *TrackingError) Reset() {
	e.sumSq = 0
	e.max = 0
	e.samples = 0
}
