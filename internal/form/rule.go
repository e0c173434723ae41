package form

import (
	"regexp"
	"slices"
	"unicode/utf8"
)

// Predicate is a pure check over a snapshot.
type Predicate func(Values) bool

// Rule pairs a predicate with the message reported when it fails.  Field
// names the owning field, or is empty for a form-level rule.  Type is the
// rule kind ("required", "pattern", …) used in logs and metrics.
type Rule struct {
	Field   string
	Type    string
	Message string
	Check   Predicate
}

// Holds reports whether r passes against v.  A rule without a predicate
// never holds.
func (r Rule) Holds(v Values) bool {
	return r.Check != nil && r.Check(v)
}

// Required holds when every named field is non-blank (checkboxes: checked).
func Required(message string, fields ...string) Rule {
	owner := ""
	if len(fields) == 1 {
		owner = fields[0]
	}
	names := slices.Clone(fields)
	return Rule{
		Field:   owner,
		Type:    RuleRequired,
		Message: message,
		Check: func(v Values) bool {
			for _, n := range names {
				if !v.present(n) {
					return false
				}
			}
			return true
		},
	}
}

// Pattern holds when the field's text matches every expression.
func Pattern(field, message string, exprs ...*regexp.Regexp) Rule {
	res := slices.Clone(exprs)
	return Rule{
		Field:   field,
		Type:    RulePattern,
		Message: message,
		Check: func(v Values) bool {
			s := v.Text(field)
			for _, re := range res {
				if !re.MatchString(s) {
					return false
				}
			}
			return true
		},
	}
}

// Min holds when the field parses as a number no smaller than min.
func Min(field string, min float64, message string) Rule {
	return Rule{
		Field:   field,
		Type:    RuleMin,
		Message: message,
		Check: func(v Values) bool {
			n, ok := v.Number(field)
			return ok && n >= min
		},
	}
}

// Max holds when the field parses as a number no larger than max.
func Max(field string, max float64, message string) Rule {
	return Rule{
		Field:   field,
		Type:    RuleMax,
		Message: message,
		Check: func(v Values) bool {
			n, ok := v.Number(field)
			return ok && n <= max
		},
	}
}

// MinLength holds when the field has at least n characters.
func MinLength(field string, n int, message string) Rule {
	return Rule{
		Field:   field,
		Type:    RuleMinLength,
		Message: message,
		Check:   func(v Values) bool { return utf8.RuneCountInString(v.Text(field)) >= n },
	}
}

// MaxLength holds when the field has at most n characters.
func MaxLength(field string, n int, message string) Rule {
	return Rule{
		Field:   field,
		Type:    RuleMaxLength,
		Message: message,
		Check:   func(v Values) bool { return utf8.RuneCountInString(v.Text(field)) <= n },
	}
}

// Equals holds when field and other carry identical text.
func Equals(field, other, message string) Rule {
	return Rule{
		Field:   field,
		Type:    RuleEquals,
		Message: message,
		Check:   func(v Values) bool { return v.Text(field) == v.Text(other) },
	}
}

// Checked holds when the checkbox field is ticked.
func Checked(field, message string) Rule {
	return Rule{
		Field:   field,
		Type:    RuleChecked,
		Message: message,
		Check:   func(v Values) bool { return v.Checked(field) },
	}
}

// OneOf holds when the field's text is one of options.
func OneOf(field string, options []string, message string) Rule {
	opts := slices.Clone(options)
	return Rule{
		Field:   field,
		Type:    RuleOneOf,
		Message: message,
		Check:   func(v Values) bool { return slices.Contains(opts, v.Text(field)) },
	}
}
