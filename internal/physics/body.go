package physics

import "github.com/san-kum/wavelink/internal/dynamo"

// Body is the controlled rigid body. State is [x, v]. Without drag it keeps
// whatever velocity it was last given, which is what the wave controller's
// no-drive branch relies on.
type Body struct {
	Mass float64
	Drag float64
}

func NewBody() *Body {
	return &Body{Mass: 1.0}
}

func (b *Body) StateDim() int   { return 2 }
func (b *Body) ControlDim() int { return 0 }

func (b *Body) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	acc := 0.0
	if b.Drag > 0 && b.Mass > 0 {
		acc = -b.Drag * x[1] / b.Mass
	}
	return dynamo.State{x[1], acc}
}

func (b *Body) Energy(x dynamo.State) float64 {
	return 0.5 * b.Mass * x[1] * x[1]
}
