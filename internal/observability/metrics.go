package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Module provides metrics and registers them with the default registry.
var Module = fx.Options(
	fx.Provide(NewMetrics),
	fx.Invoke(func(m *Metrics) error {
		return m.Register(prometheus.DefaultRegisterer)
	}),
)

// Metrics holds the service counters. Collectors are created unregistered
// so tests can construct a fresh set without touching the global registry.
type Metrics struct {
	ConsumptionsTotal       prometheus.Counter
	BatchesAddedTotal       prometheus.Counter
	AvailabilityChecksTotal prometheus.Counter
	ShortagesTotal          prometheus.Counter
	StatusRefreshesTotal    prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		ConsumptionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fridgely_consumptions_total",
			Help: "Completed FIFO consumptions.",
		}),
		BatchesAddedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fridgely_batches_added_total",
			Help: "Inventory batches created.",
		}),
		AvailabilityChecksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fridgely_availability_checks_total",
			Help: "Timeline availability checks performed.",
		}),
		ShortagesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fridgely_shortages_total",
			Help: "Ingredients reported short by availability checks.",
		}),
		StatusRefreshesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fridgely_status_refreshes_total",
			Help: "Meal plan status refresh passes.",
		}),
	}
}

func (m *Metrics) Register(r prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.ConsumptionsTotal,
		m.BatchesAddedTotal,
		m.AvailabilityChecksTotal,
		m.ShortagesTotal,
		m.StatusRefreshesTotal,
	} {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}
