package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/wavelink/internal/dynamo"
)

func TestDeviceDerive_Equilibrium(t *testing.T) {
	dev := NewDevice()
	dx := dev.Derive(dynamo.State{0.2, 0.0}, dynamo.Control{0.2, 0.0}, 0)

	if dx[0] != 0 {
		t.Errorf("velocity at equilibrium should be 0, got %f", dx[0])
	}
	if dx[1] != 0 {
		t.Errorf("acceleration at equilibrium should be 0, got %f", dx[1])
	}
}

func TestDeviceDerive_SetpointPull(t *testing.T) {
	dev := NewDevice()
	dx := dev.Derive(dynamo.State{0.0, 0.0}, dynamo.Control{0.1, 0.0}, 0)

	expected := DefaultStiffness * 0.1 / DefaultMass
	if math.Abs(dx[1]-expected) > 1e-9 {
		t.Errorf("expected acceleration %f, got %f", expected, dx[1])
	}
}

func TestDeviceDerive_OperatorForce(t *testing.T) {
	dev := NewDevice()
	dx := dev.Derive(dynamo.State{0.0, 0.0}, dynamo.Control{0.0, 2.0}, 0)

	if math.Abs(dx[1]-2.0/DefaultMass) > 1e-9 {
		t.Errorf("expected acceleration %f, got %f", 2.0/DefaultMass, dx[1])
	}
}

func TestDeviceSetParam(t *testing.T) {
	dev := NewDevice()

	tests := []struct {
		name  string
		value float64
		err   error
	}{
		{"stiffness", 10, nil},
		{"damping", 0, nil},
		{"mass", 0, dynamo.ErrParameterBounds},
		{"damping", -1, dynamo.ErrParameterBounds},
		{"gravity", 9.81, dynamo.ErrUnknownParameter},
	}

	for _, tt := range tests {
		err := dev.SetParam(tt.name, tt.value)
		if !errors.Is(err, tt.err) {
			t.Errorf("SetParam(%s, %f) = %v, want %v", tt.name, tt.value, err, tt.err)
		}
	}

	if dev.GetParams()["stiffness"] != 10 {
		t.Errorf("stiffness not applied: %v", dev.GetParams())
	}
}

func TestBodyKeepsVelocity(t *testing.T) {
	b := NewBody()
	dx := b.Derive(dynamo.State{1.0, 0.5}, nil, 0)
	if dx[0] != 0.5 || dx[1] != 0 {
		t.Errorf("free body derivative = %v, want [0.5 0]", dx)
	}
}

func TestBodyDrag(t *testing.T) {
	b := &Body{Mass: 2.0, Drag: 1.0}
	dx := b.Derive(dynamo.State{0, 4.0}, nil, 0)
	if dx[1] != -2.0 {
		t.Errorf("expected drag deceleration -2, got %f", dx[1])
	}
}
