package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "namepool"

// Collectors groups the pool metrics so each run can own its registry.
type Collectors struct {
	interned     *prometheus.CounterVec
	values       prometheus.Counter
	tableEntries prometheus.Gauge
}

// New creates collectors and registers them with reg.
func New(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		interned: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "intern_total",
				Help:      "Count of intern calls, split by whether the token was already in the table.",
			},
			[]string{"result"},
		),
		values: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "values_total",
			Help:      "Count of composite values built.",
		}),
		tableEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "table_entries",
			Help:      "Number of unique strings held by the pool.",
		}),
	}
	if reg != nil {
		reg.MustRegister(c.interned, c.values, c.tableEntries)
	}
	return c
}

// RecordValue records one composite value of tokens tokens, added of which
// created a new table entry.
func (c *Collectors) RecordValue(tokens, added int) {
	if c == nil {
		return
	}
	c.values.Inc()
	if hits := tokens - added; hits > 0 {
		c.interned.WithLabelValues("hit").Add(float64(hits))
	}
	if added > 0 {
		c.interned.WithLabelValues("miss").Add(float64(added))
	}
}

// SetTableSize publishes the current number of table entries.
func (c *Collectors) SetTableSize(n int) {
	if c == nil {
		return
	}
	c.tableEntries.Set(float64(n))
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
