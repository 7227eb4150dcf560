package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics covers report generation and the export jobs built on top of it.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Reports by format and outcome (ok, not_found, error)
	Reports *prometheus.CounterVec

	// Protection pass outcome: applied, skipped, failed
	Protection *prometheus.CounterVec

	GenerateLatency *prometheus.HistogramVec

	// Export jobs by final status
	Exports *prometheus.CounterVec
}

// New registers every collector with the default registry. Call it once.
func New() *Metrics {
	return &Metrics{
		Reports: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dails_reports_generated_total",
			Help: "Declaration reports generated by format and outcome",
		}, []string{"format", "outcome"}),

		Protection: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dails_report_protection_total",
			Help: "Outcome of the PDF protection pass",
		}, []string{"outcome"}),

		GenerateLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dails_report_generate_duration_seconds",
			Help:    "Duration of a full report generation including data retrieval",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"format"}),

		Exports: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dails_exports_total",
			Help: "Background export jobs by final status",
		}, []string{"status"}),
	}
}

func (m *Metrics) IncReport(format, outcome string) {
	if m != nil {
		m.Reports.WithLabelValues(format, outcome).Inc()
	}
}

func (m *Metrics) IncProtection(outcome string) {
	if m != nil {
		m.Protection.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) ObserveGenerate(format string, d time.Duration) {
	if m != nil {
		m.GenerateLatency.WithLabelValues(format).Observe(d.Seconds())
	}
}

func (m *Metrics) IncExport(status string) {
	if m != nil {
		m.Exports.WithLabelValues(status).Inc()
	}
}
