package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"reorgScope/internal/attribution"
	"reorgScope/internal/extract"
)

// Recorder collects per-run counters on its own registry so that repeated
// runs in one process never share state.
type Recorder struct {
	registry     *prometheus.Registry
	lines        *prometheus.CounterVec
	attributions *prometheus.CounterVec
	validators   prometheus.Gauge
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		lines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reorgscope",
			Subsystem: "extract",
			Name:      "lines_total",
			Help:      "Log lines seen by the extractor, by classification",
		}, []string{"kind"}),
		attributions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reorgscope",
			Name:      "attributions_total",
			Help:      "Reorg tip hashes resolved, by resolution source",
		}, []string{"resolution"}),
		validators: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "reorgscope",
			Subsystem: "attribution",
			Name:      "validators",
			Help:      "Distinct validators held responsible for reorgs",
		}),
	}
	r.registry.MustRegister(r.lines, r.attributions, r.validators)
	return r
}

// ObserveExtract records the line classification of a scan.
func (r *Recorder) ObserveExtract(stats extract.Stats) {
	r.lines.WithLabelValues("import").Add(float64(stats.Imports))
	r.lines.WithLabelValues("reorg").Add(float64(stats.Reorgs))
	r.lines.WithLabelValues("skipped").Add(float64(stats.Skipped))
	r.lines.WithLabelValues("malformed").Add(float64(stats.Malformed))
}

// ObserveAnalysis records how reorg tips were resolved.
func (r *Recorder) ObserveAnalysis(a attribution.Analysis) {
	r.ObserveExtract(a.Stats)
	for _, res := range []attribution.Resolution{
		attribution.ResolvedIndex,
		attribution.ResolvedFallback,
		attribution.ResolvedUnknown,
	} {
		r.attributions.WithLabelValues(string(res)).Add(float64(a.Resolutions[res]))
	}
	r.validators.Set(float64(len(a.Summary)))
}

// WriteTextfile dumps the registry in the node exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
