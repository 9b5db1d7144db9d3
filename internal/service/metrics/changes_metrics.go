package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	ChangesApplied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "findash",
			Subsystem: "changes",
			Name:      "applied_total",
			Help:      "Change events applied, by collection",
		},
		[]string{"collection"},
	)

	InvalidatedEntries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "findash",
			Subsystem: "changes",
			Name:      "invalidated_entries_total",
			Help:      "Cache entries dropped by tag invalidation",
		},
		[]string{"tag"},
	)

	LiveSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "findash",
			Subsystem: "live",
			Name:      "subscribers",
			Help:      "Connected forecast websocket subscribers",
		},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(ChangesApplied, InvalidatedEntries, LiveSubscribers)
	})
}
