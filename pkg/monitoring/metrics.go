package monitoring

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"frameworks/dbdoctor/pkg/health"
	"frameworks/dbdoctor/pkg/report"
)

// ReportCollector holds the gauges describing finished reports. Each
// collector owns its registry so rendering never touches global state.
type ReportCollector struct {
	registry        *prometheus.Registry
	status          *prometheus.GaugeVec
	probeSeverity   *prometheus.GaugeVec
	probeDuration   *prometheus.GaugeVec
	recommendations *prometheus.GaugeVec
	runDuration     *prometheus.GaugeVec
}

// NewReportCollector creates the gauges under the given namespace.
func NewReportCollector(namespace string) *ReportCollector {
	rc := &ReportCollector{registry: prometheus.NewRegistry()}

	rc.status = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "status",
			Help:      "Overall status of the run (0 healthy, 1 degraded, 2 unhealthy)",
		},
		[]string{"target"},
	)

	rc.probeSeverity = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "probe_severity",
			Help:      "Severity of each probe finding (0 ok, 1 warning, 2 error)",
		},
		[]string{"target", "probe"},
	)

	rc.probeDuration = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "probe_duration_seconds",
			Help:      "Measured duration of each probe",
		},
		[]string{"target", "probe"},
	)

	rc.recommendations = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "recommendations",
			Help:      "Number of distinct recommendations per category",
		},
		[]string{"target", "category"},
	)

	rc.runDuration = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of the whole run",
		},
		[]string{"target"},
	)

	rc.registry.MustRegister(rc.status, rc.probeSeverity, rc.probeDuration, rc.recommendations, rc.runDuration)
	return rc
}

// Observe records r.
func (rc *ReportCollector) Observe(r *report.Report) {
	target := r.Target.Redacted
	rc.status.WithLabelValues(target).Set(float64(r.Status.Level()))
	rc.runDuration.WithLabelValues(target).Set(r.Duration().Seconds())

	for _, f := range r.Findings {
		rc.probeSeverity.WithLabelValues(target, f.Probe).Set(float64(f.Severity))
		if d, ok := f.Duration(); ok {
			rc.probeDuration.WithLabelValues(target, f.Probe).Set(d.Seconds())
		}
	}

	counts := make(map[health.Category]int)
	for _, rec := range r.Recommendations {
		counts[rec.Category]++
	}
	for c, n := range counts {
		rc.recommendations.WithLabelValues(target, string(c)).Set(float64(n))
	}
}

// Write encodes everything observed so far in the Prometheus text format,
// suitable for the node_exporter textfile collector.
func (rc *ReportCollector) Write(w io.Writer) error {
	families, err := rc.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// WriteBatch renders every report of batch in one exposition.
func WriteBatch(w io.Writer, namespace string, batch *report.Batch) error {
	rc := NewReportCollector(namespace)
	for _, r := range batch.Reports {
		rc.Observe(r)
	}
	return rc.Write(w)
}
