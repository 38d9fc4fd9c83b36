// Package metrics records validation outcomes as Prometheus counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-extparams/pkg/validation"
)

// Outcome label values.
const (
	OutcomeValid   = "valid"
	OutcomeInvalid = "invalid"
)

// Recorder tracks validation results.
//
// Metrics:
//   - extparams_validations_total: aggregate validations by extension and outcome
//   - extparams_findings_total: findings by extension and kind
type Recorder struct {
	validations *prometheus.CounterVec
	findings    *prometheus.CounterVec
}

// NewRecorder creates the counters and registers them with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "extparams",
				Name:      "validations_total",
				Help:      "Total number of instance parameter validations",
			},
			[]string{"extension", "outcome"},
		),
		findings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "extparams",
				Name:      "findings_total",
				Help:      "Total number of validation findings by kind",
			},
			[]string{"extension", "kind"},
		),
	}
	reg.MustRegister(r.validations, r.findings)
	return r
}

// ObserveResult implements validation.Observer.
func (r *Recorder) ObserveResult(extension string, res validation.Result) {
	outcome := OutcomeValid
	if !res.Success {
		outcome = OutcomeInvalid
	}
	r.validations.WithLabelValues(extension, outcome).Inc()
	for _, f := range res.Findings {
		r.findings.WithLabelValues(extension, string(f.Kind)).Inc()
	}
}
