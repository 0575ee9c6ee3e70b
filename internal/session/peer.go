package session

import (
	"log/slog"

	"github.com/san-kum/wavelink/internal/axis"
	"github.com/san-kum/wavelink/internal/link"
	"github.com/san-kum/wavelink/internal/wave"
)

// Peer is one end of the teleoperation link: a controller bound to its
// simulated axis, publishing through its own store.
type Peer struct {
	Name       string
	Controller *wave.Controller
	Axis       *axis.Sim
	Store      *link.Store
}

func NewPeer(name string, id wave.EntityID, p wave.Params, ax *axis.Sim, logger *slog.Logger) (*Peer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	store := link.NewStore()
	ctrl, err := wave.New(id, wave.AxisZ, store, p,
		wave.WithAxis(ax),
		wave.WithLogger(logger.With("peer", name)),
	)
	if err != nil {
		return nil, err
	}
	return &Peer{Name: name, Controller: ctrl, Axis: ax, Store: store}, nil
}

func (p *Peer) frame() PeerFrame {
	params := p.Controller.Params()
	return PeerFrame{
		Name:          p.Name,
		Mode:          p.Controller.Mode().String(),
		Impedance:     params.Impedance,
		DriftGain:     params.DriftGain,
		Setpoint:      p.Axis.Setpoint(),
		OperatorForce: p.Axis.OperatorForce(),
		DevicePos:     p.Axis.DevicePosition(),
		BodyPos:       p.Axis.BodyPosition(),
		Momentum:      p.Controller.Momentum(),
	}
}

// devicePos maps the controller's relative body position to the device frame.
func (p *Peer) devicePos() float64 {
	return p.Controller.RelativePosition() * p.Axis.Orientation()
}

func (p *Peer) deviceVel() float64 {
	return p.Controller.Velocity() * p.Axis.Orientation()
}
