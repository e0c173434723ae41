// Package metrics holds Prometheus instruments for form guarding.  All
// collectors are registered with the global registry, so importing this
// package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yanizio/formguard/internal/form"
)

var (
	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formguard_submissions_total",
			Help: "Submissions judged, by form and outcome.",
		}, []string{"form", "outcome"})

	RuleFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formguard_rule_failures_total",
			Help: "Rejections, by form and the field whose rule failed first.",
		}, []string{"form", "field"})

	FieldChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formguard_field_checks_total",
			Help: "Single-field checks, by form and outcome.",
		}, []string{"form", "outcome"})

	ActionErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formguard_action_errors_total",
			Help: "Accepted submissions whose downstream actions failed.",
		}, []string{"form"})

	FormsLoaded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "formguard_forms_loaded",
			Help: "Number of form definitions currently registered.",
		})
)

func init() {
	prometheus.MustRegister(
		SubmissionsTotal,
		RuleFailuresTotal,
		FieldChecksTotal,
		ActionErrorsTotal,
		FormsLoaded,
	)
}

// ObserveSubmit records the outcome of one submit.  err is the error the
// guard returned alongside an accepted result.
func ObserveSubmit(formID string, res form.Result, err error) {
	SubmissionsTotal.WithLabelValues(formID, res.Outcome.String()).Inc()
	if !res.OK() {
		RuleFailuresTotal.WithLabelValues(formID, fieldLabel(res.Field)).Inc()
	}
	if err != nil && res.OK() {
		ActionErrorsTotal.WithLabelValues(formID).Inc()
	}
}

// ObserveField records the outcome of one single-field check.
func ObserveField(formID string, res form.Result) {
	FieldChecksTotal.WithLabelValues(formID, res.Outcome.String()).Inc()
}

// Form-level rules may span fields and carry no owner.
func fieldLabel(f string) string {
	if f == "" {
		return "_form"
	}
	return f
}
