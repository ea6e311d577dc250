package physics_test

import (
	"math"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/nbodysim/internal/physics"
)

func mustBody(px, py, vx, vy, mass float64, asset string) physics.Body {
	GinkgoHelper()
	b, err := physics.NewBody(px, py, vx, vy, mass, asset)
	Expect(err).NotTo(HaveOccurred())
	return b
}

func earthAndRock() *physics.System {
	return physics.New(1e8, []physics.Body{
		mustBody(0, 0, 0, 0, 5.972e24, "earth.gif"),
		mustBody(1.0e7, 0, 0, 0, 1.0e20, "rock.gif"),
	})
}

var _ = Describe("System", func() {
	Describe("accessors", func() {
		It("reports size and radius", func() {
			sys := earthAndRock()
			Expect(sys.Len()).To(Equal(2))
			Expect(sys.Radius()).To(Equal(1e8))
		})

		It("returns bodies by index", func() {
			sys := earthAndRock()
			b, err := sys.BodyAt(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(b.Asset()).To(Equal("rock.gif"))
		})

		DescribeTable("rejects out of range indices",
			func(i int) {
				_, err := earthAndRock().BodyAt(i)
				Expect(err).To(MatchError(physics.ErrIndexOutOfRange))
			},
			Entry("one past the end", 2),
			Entry("far past the end", 100),
			Entry("negative", -1),
		)

		It("hands out copies", func() {
			sys := earthAndRock()
			b, _ := sys.BodyAt(0)
			b.AdvancePosition(1e9)
			b.ApplyAcceleration(1, 1, 1)

			again, _ := sys.BodyAt(0)
			Expect(again.Position()).To(Equal(physics.Vec2{}))
			Expect(again.Velocity()).To(Equal(physics.Vec2{}))
		})
	})

	Describe("Forces", func() {
		It("is equal and opposite for two bodies", func() {
			f := earthAndRock().Forces()
			Expect(f).To(HaveLen(2))
			Expect(f[0].X).To(BeNumerically(">", 0))
			Expect(f[0].X).To(Equal(-f[1].X))
			Expect(f[0].Y).To(Equal(-f[1].Y))
		})

		It("follows the inverse-square law", func() {
			f := earthAndRock().Forces()
			want := physics.G * 5.972e24 * 1.0e20 / (1.0e7 * 1.0e7)
			Expect(f[0].X).To(BeNumerically("~", want, want*1e-12))
			Expect(f[0].Y).To(BeZero())
		})

		It("sums to zero for many bodies", func() {
			sys := physics.New(1e12, []physics.Body{
				mustBody(0, 0, 0, 0, 2e30, "sun.gif"),
				mustBody(1.5e11, 0, 0, 3e4, 6e24, "earth.gif"),
				mustBody(0, 2.3e11, -2.4e4, 0, 6.4e23, "mars.gif"),
				mustBody(-5.8e10, 1e9, 0, -4.8e4, 3.3e23, "mercury.gif"),
			})
			var sum physics.Vec2
			var largest float64
			for _, f := range sys.Forces() {
				sum = sum.Add(f)
				largest = math.Max(largest, f.Norm())
			}
			Expect(sum.Norm()).To(BeNumerically("<", largest*1e-12))
		})
	})

	Describe("Step", func() {
		It("pulls two bodies toward each other while conserving momentum", func() {
			sys := earthAndRock()
			sys.Step(1.0)

			b0, _ := sys.BodyAt(0)
			b1, _ := sys.BodyAt(1)
			Expect(b0.Velocity().X).To(BeNumerically(">", 0))
			Expect(b1.Velocity().X).To(BeNumerically("<", 0))

			p0 := b0.Mass() * b0.Velocity().X
			p1 := b1.Mass() * -b1.Velocity().X
			Expect(p0).To(BeNumerically("~", p1, p1*1e-9))
		})

		It("updates velocity before position", func() {
			sys := earthAndRock()
			f := sys.Forces()
			sys.Step(2.0)

			b1, _ := sys.BodyAt(1)
			v := f[1].X / 1.0e20 * 2.0
			Expect(b1.Velocity().X).To(Equal(v))
			Expect(b1.Position().X).To(Equal(1.0e7 + v*2.0))
		})

		It("leaves the state unchanged for a zero step", func() {
			sys := physics.New(1e12, []physics.Body{
				mustBody(0, 0, 1, 2, 2e30, "sun.gif"),
				mustBody(1.5e11, 0, 0, 3e4, 6e24, "earth.gif"),
			})
			before := sys.Snapshot()
			sys.Step(0)
			Expect(sys.Snapshot()).To(Equal(before))
		})

		It("is a no-op on an empty system", func() {
			sys := physics.New(0, nil)
			Expect(func() { sys.Step(10) }).NotTo(Panic())
			Expect(sys.Len()).To(BeZero())
		})

		It("moves a lone body in a straight line", func() {
			sys := physics.New(10, []physics.Body{mustBody(1, 1, 2, -1, 5, "a.gif")})
			for range 10 {
				sys.Step(0.5)
			}
			b, _ := sys.BodyAt(0)
			Expect(b.Velocity()).To(Equal(physics.Vec2{X: 2, Y: -1}))
			Expect(b.Position().X).To(BeNumerically("~", 11, 1e-12))
			Expect(b.Position().Y).To(BeNumerically("~", -4, 1e-12))
		})

		It("keeps mass and asset fixed", func() {
			sys := earthAndRock()
			for range 5 {
				sys.Step(60)
			}
			b, _ := sys.BodyAt(1)
			Expect(b.Mass()).To(Equal(1.0e20))
			Expect(b.Asset()).To(Equal("rock.gif"))
		})

		It("conserves total momentum over many steps", func() {
			sys := physics.New(2.5e11, []physics.Body{
				mustBody(0, 0, 0, 0, 1.989e30, "sun.gif"),
				mustBody(1.496e11, 0, 0, 2.98e4, 5.974e24, "earth.gif"),
			})
			p0 := sys.Momentum()
			for range 1000 {
				sys.Step(25000)
			}
			p1 := sys.Momentum()
			scale := 5.974e24 * 2.98e4
			Expect(p1.X - p0.X).To(BeNumerically("~", 0, scale*1e-9))
			Expect(p1.Y - p0.Y).To(BeNumerically("~", 0, scale*1e-9))
		})

		It("keeps a circular orbit bounded", func() {
			sys := physics.New(2.5e11, []physics.Body{
				mustBody(0, 0, 0, 0, 1.989e30, "sun.gif"),
				mustBody(1.496e11, 0, 0, 2.98e4, 5.974e24, "earth.gif"),
			})
			e0 := sys.Energy()
			for range 1262 {
				sys.Step(25000)
			}
			Expect(sys.Valid()).To(BeTrue())
			Expect(math.Abs((sys.Energy() - e0) / e0)).To(BeNumerically("<", 0.05))
		})
	})

	Describe("coincident bodies", func() {
		coincident := func(opts ...physics.Option) *physics.System {
			return physics.New(1, []physics.Body{
				mustBody(1, 1, 0, 0, 1e10, "a.gif"),
				mustBody(1, 1, 0, 0, 1e10, "b.gif"),
			}, opts...)
		}

		It("produces non-finite state without a floor", func() {
			sys := coincident()
			sys.Step(1)
			Expect(sys.Valid()).To(BeFalse())
		})

		It("stays finite with a minimum separation", func() {
			sys := coincident(physics.WithMinSeparation(1e3))
			Expect(sys.MinSeparation()).To(Equal(1e3))
			sys.Step(1)
			Expect(sys.Valid()).To(BeTrue())
		})
	})

	Describe("Snapshot", func() {
		It("is not torn by concurrent steps", func() {
			sys := physics.New(2.5e11, []physics.Body{
				mustBody(0, 0, 0, 0, 1.989e30, "sun.gif"),
				mustBody(1.496e11, 0, 0, 2.98e4, 5.974e24, "earth.gif"),
			})

			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range 500 {
					sys.Step(25000)
				}
			}()

			for range 200 {
				snap := sys.Snapshot()
				Expect(snap.Bodies).To(HaveLen(2))
				Expect(snap.Radius).To(Equal(2.5e11))
			}
			wg.Wait()
		})
	})

	Describe("diagnostics", func() {
		It("computes energy and angular momentum", func() {
			sys := physics.New(10, []physics.Body{
				mustBody(0, 0, 0, 0, 2, "a"),
				mustBody(3, 0, 0, 4, 1, "b"),
			})
			ke := 0.5 * 1 * 16.0
			pe := -physics.G * 2 * 1 / 3.0
			Expect(sys.Energy()).To(BeNumerically("~", ke+pe, 1e-12))
			Expect(sys.AngularMomentum()).To(Equal(12.0))
			Expect(sys.Momentum()).To(Equal(physics.Vec2{X: 0, Y: 4}))
		})
	})
})
