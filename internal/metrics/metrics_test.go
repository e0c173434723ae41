package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/yanizio/formguard/internal/form"
)

func TestObserveSubmit(t *testing.T) {
	ObserveSubmit("m-login", form.Rejected("All fields required"), nil)
	ObserveSubmit("m-login", form.Accepted(form.Values{"username": "sam"}), nil)
	ObserveSubmit("m-login", form.Accepted(nil), errors.New("store down"))

	assert.Equal(t, 1.0, testutil.ToFloat64(SubmissionsTotal.WithLabelValues("m-login", "rejected")))
	assert.Equal(t, 2.0, testutil.ToFloat64(SubmissionsTotal.WithLabelValues("m-login", "accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(RuleFailuresTotal.WithLabelValues("m-login", "_form")))
	assert.Equal(t, 1.0, testutil.ToFloat64(ActionErrorsTotal.WithLabelValues("m-login")))
}

func TestObserveSubmit_FieldLabel(t *testing.T) {
	res := form.Rejected("Must be 18+")
	res.Field = "age"
	ObserveSubmit("m-survey", res, nil)
	assert.Equal(t, 1.0, testutil.ToFloat64(RuleFailuresTotal.WithLabelValues("m-survey", "age")))
}

func TestObserveField(t *testing.T) {
	ObserveField("m-contact", form.Rejected("Invalid email!"))
	ObserveField("m-contact", form.Rejected("Invalid email!"))
	assert.Equal(t, 2.0, testutil.ToFloat64(FieldChecksTotal.WithLabelValues("m-contact", "rejected")))
}
