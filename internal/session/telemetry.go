package session

import "github.com/san-kum/wavelink/internal/dynamo"

// Telemetry row layout. Positions and velocities are relative to each
// controller's origin and expressed in the device frame, so a faithful
// link shows LocalPos and RemotePos tracking each other.
const (
	LocalPos = iota
	LocalVel
	RemotePos
	RemoteVel
	LocalForce
	RemoteForce
	LocalWaveIn
	LocalWaveOut
	RemoteWaveIn
	RemoteWaveOut
	LocalMomentum
	RemoteMomentum
	LinkUp
	NumColumns
)

// Controls row layout: raw operator forces in newtons.
const (
	LocalOperator = iota
	RemoteOperator
	NumControls
)

var ColumnNames = []string{
	"local_pos", "local_vel", "remote_pos", "remote_vel",
	"local_force", "remote_force",
	"local_wave_in", "local_wave_out", "remote_wave_in", "remote_wave_out",
	"local_momentum", "remote_momentum", "link_up",
}

var ControlNames = []string{"local_operator", "remote_operator"}

// Frame is everything the live view draws for one tick.
type Frame struct {
	Time   float64
	Row    dynamo.State
	Ctrl   dynamo.Control
	Local  PeerFrame
	Remote PeerFrame
	LinkUp bool
	Delay  int
}

type PeerFrame struct {
	Name          string
	Mode          string
	Impedance     float64
	DriftGain     float64
	Setpoint      float64
	OperatorForce float64
	DevicePos     float64
	BodyPos       float64
	Momentum      float64
}
