package form

import (
	"maps"

	"github.com/samber/lo"
)

// Outcome is the terminal state of one validation run.
type Outcome int

const (
	OutcomeAccepted Outcome = iota + 1
	OutcomeRejected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Result is the value produced by one evaluation.  Values is set only when
// accepted; Message, Field, and Rule only when rejected.
type Result struct {
	Outcome Outcome
	Values  Values
	Message string
	Field   string
	Rule    string
}

// Accepted returns a passing result carrying a copy of v.
func Accepted(v Values) Result {
	return Result{Outcome: OutcomeAccepted, Values: maps.Clone(v)}
}

// Rejected returns a failing result with message.
func Rejected(message string) Result {
	return Result{Outcome: OutcomeRejected, Message: message}
}

// OK reports whether the result is Accepted.
func (r Result) OK() bool { return r.Outcome == OutcomeAccepted }

// Evaluate runs rules in order against v and returns the first rejection,
// or Accepted when every rule holds.
func Evaluate(rules []Rule, v Values) Result {
	for _, r := range rules {
		if !r.Holds(v) {
			res := Rejected(r.Message)
			res.Field = r.Field
			res.Rule = r.Type
			return res
		}
	}
	return Accepted(v)
}

// EvaluateField runs only the rules owned by field.
func EvaluateField(rules []Rule, field string, v Values) Result {
	return Evaluate(lo.Filter(rules, func(r Rule, _ int) bool { return r.Field == field }), v)
}
