package formsession

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks session lifecycle and engine outcomes. A nil *Metrics is a
// valid no-op.
type Metrics struct {
	SessionsOpened     *prometheus.CounterVec
	SessionsActive     prometheus.Gauge
	FieldChanges       *prometheus.CounterVec
	Submissions        *prometheus.CounterVec
	ContractViolations *prometheus.CounterVec
}

// NewMetrics registers the session metrics on reg. It returns nil when reg is
// nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}
	factory := promauto.With(reg)
	return &Metrics{
		SessionsOpened: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "formstate_sessions_opened_total",
			Help: "Total number of form sessions opened",
		}, []string{"form"}),
		SessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "formstate_sessions_active",
			Help: "Number of sessions currently held in memory",
		}),
		FieldChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "formstate_field_changes_total",
			Help: "Field value changes by form and whether the field ended up valid",
		}, []string{"form", "valid"}),
		Submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "formstate_submissions_total",
			Help: "Submission attempts by form and outcome",
		}, []string{"form", "outcome"}),
		ContractViolations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "formstate_contract_violations_total",
			Help: "Requests rejected because they broke the engine contract",
		}, []string{"form"}),
	}
}

func (m *Metrics) sessionOpened(form string) {
	if m == nil {
		return
	}
	m.SessionsOpened.WithLabelValues(form).Inc()
	m.SessionsActive.Inc()
}

func (m *Metrics) sessionRemoved() {
	if m == nil {
		return
	}
	m.SessionsActive.Dec()
}

func (m *Metrics) fieldChanged(form string, valid bool) {
	if m == nil {
		return
	}
	label := "false"
	if valid {
		label = "true"
	}
	m.FieldChanges.WithLabelValues(form, label).Inc()
}

func (m *Metrics) submitted(form string, valid bool) {
	if m == nil {
		return
	}
	outcome := "rejected"
	if valid {
		outcome = "accepted"
	}
	m.Submissions.WithLabelValues(form, outcome).Inc()
}

func (m *Metrics) contractViolation(form string) {
	if m == nil {
		return
	}
	m.ContractViolations.WithLabelValues(form).Inc()
}
