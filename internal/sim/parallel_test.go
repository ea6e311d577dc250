package sim_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/nbodysim/internal/physics"
	"github.com/san-kum/nbodysim/internal/sim"
)

var _ = Describe("Ensemble", func() {
	It("runs each configuration on its own copy", func() {
		origin := sunEarth()
		snap := origin.Snapshot()

		ens := sim.NewEnsemble(func() []sim.Metric {
			return []sim.Metric{&countingMetric{}}
		})
		cfgs := []sim.Config{
			{Duration: 1e6, Dt: 1e5},
			{Duration: 1e6, Dt: 2.5e5},
			{Duration: 1e6, Dt: 5e5},
		}

		results, err := ens.Run(context.Background(), snap, cfgs)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(3))
		Expect(results[0].StepsTaken).To(Equal(10))
		Expect(results[1].StepsTaken).To(Equal(4))
		Expect(results[2].StepsTaken).To(Equal(2))

		// initial observation plus one per step
		Expect(results[0].Metrics["count"]).To(Equal(11.0))
		Expect(results[2].Metrics["count"]).To(Equal(3.0))

		Expect(origin.Snapshot()).To(Equal(snap))
	})

	It("reports the failing configuration", func() {
		a, _ := physics.NewBody(0, 0, 0, 0, 1e10, "a.gif")
		b, _ := physics.NewBody(0, 0, 0, 0, 1e10, "b.gif")
		snap := physics.Snapshot{Radius: 1, Bodies: []physics.Body{a, b}}

		cfgs := []sim.Config{
			{Duration: 10, Dt: 1, ValidateState: true},
		}
		results, err := sim.NewEnsemble(nil).Run(context.Background(), snap, cfgs)
		Expect(err).To(MatchError(sim.ErrNonFinite))
		Expect(err.Error()).To(ContainSubstring("run 0"))
		Expect(results[0]).NotTo(BeNil())
	})

	It("honours the minimum separation option", func() {
		a, _ := physics.NewBody(0, 0, 0, 0, 1e10, "a.gif")
		b, _ := physics.NewBody(0, 0, 0, 0, 1e10, "b.gif")
		snap := physics.Snapshot{Radius: 1, Bodies: []physics.Body{a, b}}

		ens := sim.NewEnsemble(nil, physics.WithMinSeparation(1))
		_, err := ens.Run(context.Background(), snap, []sim.Config{{Duration: 10, Dt: 1, ValidateState: true}})
		Expect(err).NotTo(HaveOccurred())
	})
})
