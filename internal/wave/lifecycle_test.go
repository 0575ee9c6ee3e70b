package wave

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Controller lifecycle", func() {
	var (
		ch   *fakeChannel
		ax   *fakeAxis
		ctrl *Controller
	)

	BeforeEach(func() {
		ch = newFakeChannel()
		ax = newFakeAxis()
		var err error
		ctrl, err = New(7, AxisZ, ch, Params{Impedance: 2})
		Expect(err).NotTo(HaveOccurred())
	})

	It("starts disabled and ignores steps", func() {
		Expect(ctrl.Mode()).To(Equal(Disabled))
		ctrl.Bind(ax)
		ctrl.Step(0.01)
		Expect(ch.writes).To(BeEmpty())
		Expect(ax.setpoints).To(BeZero())
	})

	Context("when enabled", func() {
		BeforeEach(func() {
			ax.pos = 3.0
			ctrl.Bind(ax)
			Expect(ctrl.Enable()).To(Succeed())
		})

		It("captures the body position as origin", func() {
			Expect(ctrl.Origin()).To(Equal(3.0))
			Expect(ctrl.RelativePosition()).To(BeZero())
			Expect(ctrl.AbsolutePosition()).To(Equal(3.0))
		})

		It("publishes one pair per step", func() {
			ch.receive(7, 0.2, 0.1)
			for i := 0; i < 5; i++ {
				ctrl.Step(0.02)
			}
			Expect(ch.writes).To(HaveKeyWithValue(Wave, 5))
			Expect(ch.writes).To(HaveKeyWithValue(WaveIntegral, 5))
		})

		It("drives the body only while the incoming wave is non-zero", func() {
			ch.receive(7, 0.5, 0)
			ctrl.Step(0.01)
			Expect(ax.velocitySets).To(Equal(1))

			ch.receive(7, 0, 0)
			ctrl.Step(0.01)
			Expect(ax.velocitySets).To(Equal(1))
		})

		It("keeps integrating force across idle ticks", func() {
			ax.force = 1
			for i := 0; i < 10; i++ {
				ctrl.Step(0.1)
			}
			Expect(ctrl.Momentum()).To(BeNumerically("~", 1.0, 1e-9))
		})

		Context("and then disabled", func() {
			BeforeEach(func() {
				ax.force = 2
				ch.receive(7, 1, 1)
				ctrl.Step(0.1)
				ctrl.Disable()
			})

			It("releases the peer with a zero pair", func() {
				v, V := ch.sent(7)
				Expect(v).To(BeZero())
				Expect(V).To(BeZero())
				Expect(ctrl.Mode()).To(Equal(Disabled))
			})

			It("does not repeat the release", func() {
				writes := ch.writes[Wave]
				ctrl.Disable()
				ctrl.Step(0.1)
				Expect(ch.writes[Wave]).To(Equal(writes))
			})

			It("starts a fresh session when re-enabled", func() {
				ax.pos = 4.5
				Expect(ctrl.Enable()).To(Succeed())
				Expect(ctrl.Momentum()).To(BeZero())
				Expect(ctrl.Origin()).To(Equal(4.5))

				ch.receive(7, 0, 0)
				ax.force = 0
				ctrl.Step(0.1)
				v, V := ch.sent(7)
				Expect(v).To(BeZero())
				Expect(V).To(BeZero())
			})
		})
	})

	DescribeTable("outgoing wave for a single tick",
		func(b, u, force, want float64) {
			c, err := New(1, AxisZ, ch, Params{Impedance: b}, WithAxis(ax))
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Enable()).To(Succeed())
			ch.receive(1, u, 0)
			ax.force = force
			c.Step(0.1)
			v, _ := c.Outgoing()
			Expect(v).To(BeNumerically("~", want, 1e-9))
		},
		Entry("pure reflection", 2.0, 1.0, 0.0, 1.0),
		Entry("force only", 2.0, 0.0, 5.0, -5.0),
		Entry("mixed", 8.0, 1.0, 2.0, 1.0-math.Sqrt(2.0/8.0)*2.0),
	)
})
