// Package metrics implements dynamo.Metric over session telemetry rows.
// Metrics are told which columns to read at construction, so they stay
// independent of the row layout.
package metrics

import (
	"math"

	"github.com/san-kum/wavelink/internal/dynamo"
)

// ControlEffort is the mean absolute sum of the selected control entries,
// or of all entries when none are selected.
type ControlEffort struct {
	name    string
	cols    []int
	sum     float64
	samples int
}

func NewControlEffort(cols ...int) *ControlEffort {
	return &ControlEffort{
		name: "control_effort",
		cols: cols,
	}
}

func (c *ControlEffort) Name() string {
	return c.name
}

func (c *ControlEffort) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if len(c.cols) == 0 {
		for _, val := range u {
			c.sum += math.Abs(val)
		}
	} else {
		for _, i := range c.cols {
			if i < len(u) {
				c.sum += math.Abs(u[i])
			}
		}
	}
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}
