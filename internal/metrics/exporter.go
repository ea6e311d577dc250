package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/san-kum/nbodysim/internal/physics"
)

const namespace = "nbodysim"

// Exporter mirrors a run into Prometheus gauges. It observes every step
// and can be written out in the node exporter textfile format once the
// run ends.
type Exporter struct {
	registry *prometheus.Registry

	bodies  prometheus.Gauge
	step    prometheus.Gauge
	simTime prometheus.Gauge
	energy  prometheus.Gauge
	result  *prometheus.GaugeVec
}

func NewExporter() *Exporter {
	e := &Exporter{
		registry: prometheus.NewRegistry(),
		bodies: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "bodies",
			Help:      "Number of bodies in the simulated system.",
		}),
		step: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "step",
			Help:      "Last completed step.",
		}),
		simTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "simulated_seconds",
			Help:      "Simulated time reached.",
		}),
		energy: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "total_energy_joules",
			Help:      "Total kinetic plus potential energy after the last step.",
		}),
		result: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_metric",
			Help:      "Final value of each run metric.",
		}, []string{"metric"}),
	}
	e.registry.MustRegister(e.bodies, e.step, e.simTime, e.energy, e.result)
	return e
}

func (e *Exporter) OnStep(sys *physics.System, step int, t float64) {
	e.bodies.Set(float64(sys.Len()))
	e.step.Set(float64(step))
	e.simTime.Set(t)
	e.energy.Set(sys.Energy())
}

// Record publishes the final metric values of a run.
func (e *Exporter) Record(values map[string]float64) {
	for name, v := range values {
		e.result.WithLabelValues(name).Set(v)
	}
}

func (e *Exporter) Gatherer() prometheus.Gatherer { return e.registry }

// WriteTextfile atomically writes every gauge to path.
func (e *Exporter) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, e.registry)
}
