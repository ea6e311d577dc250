package sim_test

import (
	"bytes"
	"context"
	"errors"

	"github.com/charmbracelet/log"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/nbodysim/internal/physics"
	"github.com/san-kum/nbodysim/internal/sim"
)

func drifter() *physics.System {
	GinkgoHelper()
	b, err := physics.NewBody(0, 0, 1, 0, 1, "probe.gif")
	Expect(err).NotTo(HaveOccurred())
	return physics.New(100, []physics.Body{b})
}

func sunEarth() *physics.System {
	GinkgoHelper()
	sun, err := physics.NewBody(0, 0, 0, 0, 1.989e30, "sun.gif")
	Expect(err).NotTo(HaveOccurred())
	earth, err := physics.NewBody(1.496e11, 0, 0, 2.98e4, 5.974e24, "earth.gif")
	Expect(err).NotTo(HaveOccurred())
	return physics.New(2.5e11, []physics.Body{sun, earth})
}

type countingMetric struct {
	observed int
}

func (c *countingMetric) Name() string                     { return "count" }
func (c *countingMetric) Observe(*physics.System, float64) { c.observed++ }
func (c *countingMetric) Value() float64                   { return float64(c.observed) }
func (c *countingMetric) Reset()                           { c.observed = 0 }

var _ = Describe("Simulator", func() {
	var s *sim.Simulator

	BeforeEach(func() {
		s = sim.New()
	})

	It("keeps stepping until the requested duration is reached", func() {
		res, err := s.Run(context.Background(), drifter(), sim.Config{Duration: 10, Dt: 3})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.StepsTaken).To(Equal(4))
		Expect(res.Elapsed).To(Equal(12.0))
	})

	It("stops exactly at one Julian year", func() {
		sys := drifter()
		res, err := s.Run(context.Background(), sys, sim.Config{Duration: 1e8, Dt: 1e7})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.StepsTaken).To(Equal(4))
		Expect(res.Elapsed).To(Equal(sim.JulianYear))

		b, _ := sys.BodyAt(0)
		Expect(b.Position().X).To(BeNumerically("~", sim.JulianYear, 1e-6))
	})

	It("clips the last step to a custom limit", func() {
		sys := drifter()
		res, err := s.Run(context.Background(), sys, sim.Config{Duration: 10, Dt: 4, Limit: 10})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.StepsTaken).To(Equal(3))
		Expect(res.Elapsed).To(Equal(10.0))

		b, _ := sys.BodyAt(0)
		Expect(b.Position().X).To(Equal(10.0))
	})

	DescribeTable("rejects invalid config",
		func(cfg sim.Config) {
			_, err := s.Run(context.Background(), drifter(), cfg)
			Expect(err).To(MatchError(sim.ErrInvalidConfig))
		},
		Entry("zero dt", sim.Config{Dt: 0, Duration: 1}),
		Entry("negative dt", sim.Config{Dt: -0.1, Duration: 1}),
		Entry("zero duration", sim.Config{Dt: 0.1, Duration: 0}),
		Entry("negative duration", sim.Config{Dt: 0.1, Duration: -1}),
		Entry("negative record interval", sim.Config{Dt: 0.1, Duration: 1, RecordEvery: -1}),
	)

	It("stops on a cancelled context", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		res, err := s.Run(ctx, drifter(), sim.Config{Duration: 10, Dt: 1})
		Expect(err).To(MatchError(context.Canceled))
		Expect(res.StepsTaken).To(BeZero())
	})

	It("reports non-finite state from coincident bodies", func() {
		a, _ := physics.NewBody(0, 0, 0, 0, 1e10, "a.gif")
		b, _ := physics.NewBody(0, 0, 0, 0, 1e10, "b.gif")
		sys := physics.New(1, []physics.Body{a, b})

		res, err := s.Run(context.Background(), sys, sim.Config{Duration: 10, Dt: 1, ValidateState: true})
		Expect(err).To(MatchError(sim.ErrNonFinite))

		var se *sim.StepError
		Expect(errors.As(err, &se)).To(BeTrue())
		Expect(se.Step).To(Equal(1))
		Expect(res.StepsTaken).To(Equal(1))
	})

	It("notifies metrics and observers", func() {
		m := &countingMetric{}
		s.AddMetric(m)

		var steps []int
		s.AddObserver(sim.ObserverFunc(func(_ *physics.System, step int, _ float64) {
			steps = append(steps, step)
		}))

		res, err := s.Run(context.Background(), drifter(), sim.Config{Duration: 5, Dt: 1})
		Expect(err).NotTo(HaveOccurred())
		Expect(steps).To(Equal([]int{1, 2, 3, 4, 5}))
		Expect(res.Metrics).To(HaveKeyWithValue("count", 6.0))
	})

	It("records samples at the requested interval", func() {
		res, err := s.Run(context.Background(), drifter(), sim.Config{Duration: 5, Dt: 1, RecordEvery: 2})
		Expect(err).NotTo(HaveOccurred())

		var steps []int
		for _, smp := range res.Samples {
			steps = append(steps, smp.Step)
		}
		Expect(steps).To(Equal([]int{0, 2, 4, 5}))
		Expect(res.Samples[3].Time).To(Equal(5.0))
		Expect(res.Samples[3].Bodies[0].Position().X).To(Equal(5.0))
	})

	It("records nothing by default", func() {
		res, err := s.Run(context.Background(), drifter(), sim.Config{Duration: 5, Dt: 1})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Samples).To(BeEmpty())
	})

	It("keeps energy drift small over a year of Earth orbit", func() {
		res, err := s.Run(context.Background(), sunEarth(), sim.DefaultConfig())
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Elapsed).To(Equal(sim.JulianYear))
		Expect(res.EnergyDrift).To(BeNumerically("<", 0.05))
	})

	It("logs progress through the configured logger", func() {
		var buf bytes.Buffer
		logger := log.New(&buf)
		s.AddObserver(sim.NewProgressLogger(logger, 2))

		_, err := s.Run(context.Background(), drifter(), sim.Config{Duration: 4, Dt: 1})
		Expect(err).NotTo(HaveOccurred())
		Expect(bytes.Count(buf.Bytes(), []byte("progress"))).To(Equal(2))
	})
})
