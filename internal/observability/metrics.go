package observability

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds only tlgen metrics so a textfile dump carries nothing else.
var Registry = prometheus.NewRegistry()

var (
	registerOnce sync.Once

	combinators = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tlgen",
			Subsystem: "api",
			Name:      "combinators_total",
			Help:      "Resolved TL combinators by kind.",
		},
		[]string{"kind"},
	)
	errorEntries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tlgen",
			Subsystem: "errors",
			Name:      "entries_total",
			Help:      "Parsed error-table entries by kind.",
		},
		[]string{"kind"},
	)
	filesWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tlgen",
			Subsystem: "output",
			Name:      "files_total",
			Help:      "Generated files written or checked, by pipeline.",
		},
		[]string{"pipeline"},
	)
	passDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tlgen",
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Pipeline pass duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"pipeline", "success"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		Registry.MustRegister(combinators, errorEntries, filesWritten, passDuration)
	})
}

// RecordCombinators counts n combinators of kind ("type" or "function").
func RecordCombinators(kind string, n int) {
	RegisterMetrics()
	combinators.WithLabelValues(kind).Add(float64(n))
}

// RecordErrorEntries counts n entries of kind ("exact" or "pattern").
func RecordErrorEntries(kind string, n int) {
	RegisterMetrics()
	errorEntries.WithLabelValues(kind).Add(float64(n))
}

func RecordFiles(pipeline string, n int) {
	RegisterMetrics()
	filesWritten.WithLabelValues(pipeline).Add(float64(n))
}

func RecordPass(pipeline string, duration time.Duration, success bool) {
	RegisterMetrics()
	passDuration.WithLabelValues(pipeline, strconv.FormatBool(success)).Observe(duration.Seconds())
}

// WriteTextfile dumps the registry in the node-exporter textfile format.
func WriteTextfile(path string) error {
	RegisterMetrics()
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
