package wave

type fakeAxis struct {
	force    float64
	pos, vel float64
	rng      float64
	orient   float64

	setpoint     float64
	setpoints    int
	velocitySets int
	stiffness    float64
	damping      float64

	onForce func()
}

func newFakeAxis() *fakeAxis {
	return &fakeAxis{rng: 1, orient: 1}
}

func (a *fakeAxis) ScaledForce() float64 {
	if a.onForce != nil {
		a.onForce()
	}
	return a.force
}

func (a *fakeAxis) SetScaledPosition(v float64) {
	a.setpoint = v
	a.setpoints++
}

func (a *fakeAxis) SetHelperStiffness(v float64) { a.stiffness = v }
func (a *fakeAxis) SetHelperDamping(v float64)   { a.damping = v }
func (a *fakeAxis) BodyPosition() float64        { return a.pos }
func (a *fakeAxis) BodyVelocity() float64        { return a.vel }
func (a *fakeAxis) Range() float64               { return a.rng }
func (a *fakeAxis) Orientation() float64         { return a.orient }

func (a *fakeAxis) SetBodyVelocity(v float64) {
	a.vel = v
	a.velocitySets++
}

type chanKey struct {
	id     EntityID
	axis   AxisLabel
	signal Signal
}

type fakeChannel struct {
	remote map[chanKey]float64
	local  map[chanKey]float64
	writes map[Signal]int
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{
		remote: make(map[chanKey]float64),
		local:  make(map[chanKey]float64),
		writes: make(map[Signal]int),
	}
}

func (c *fakeChannel) RemoteValue(id EntityID, axis AxisLabel, s Signal) float64 {
	return c.remote[chanKey{id, axis, s}]
}

func (c *fakeChannel) SetLocalValue(id EntityID, axis AxisLabel, s Signal, v float64) {
	c.local[chanKey{id, axis, s}] = v
	c.writes[s]++
}

func (c *fakeChannel) receive(id EntityID, u, U float64) {
	c.remote[chanKey{id, AxisZ, Wave}] = u
	c.remote[chanKey{id, AxisZ, WaveIntegral}] = U
}

func (c *fakeChannel) sent(id EntityID) (float64, float64) {
	return c.local[chanKey{id, AxisZ, Wave}], c.local[chanKey{id, AxisZ, WaveIntegral}]
}
