package devrt

import "github.com/prometheus/client_golang/prometheus"

var (
	runtimeOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "devmem",
			Subsystem: "runtime",
			Name:      "ops_total",
			Help:      "Total number of device runtime calls",
		},
		[]string{"op", "status"},
	)

	runtimeOpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "devmem",
			Subsystem: "runtime",
			Name:      "op_duration_seconds",
			Help:      "Duration of device runtime calls in seconds",
			Buckets:   []float64{.000001, .00001, .0001, .001, .01, .1, 1},
		},
		[]string{"op"},
	)

	runtimeBytesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "devmem",
			Subsystem: "runtime",
			Name:      "bytes_total",
			Help:      "Bytes allocated, freed or copied by successful runtime calls",
		},
		[]string{"op"},
	)

	runtimeBytesInUse = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "devmem",
			Subsystem: "runtime",
			Name:      "bytes_in_use",
			Help:      "Device bytes currently allocated through instrumented runtimes",
		},
	)
)

func init() {
	prometheus.MustRegister(runtimeOpsTotal, runtimeOpDuration, runtimeBytesTotal, runtimeBytesInUse)
}
