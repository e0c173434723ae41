// internal/form/values.go
//
// Formguard – Forms subsystem: field kinds and value snapshots.
//
// Context
//   A submission is judged against a snapshot of every declared field,
//   taken once at the instant the guard intercepts the event.  Rules never
//   read the live source, so a rule set sees one consistent view.
//
// Workflow
//   •  Snapshot reads each FieldDef through an event.FieldSource and
//      normalizes by kind: text kinds are trimmed, passwords are kept raw,
//      checkboxes become booleans.
//   •  Values accessors (Text, Checked, Number) give rules a typed view and
//      fold malformed input into "absent" so no rule silently passes it.
//
//------------------------------------------------------------------------------

package form

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/yanizio/formguard/internal/event"
)

// decimal is the only text accepted as a number: no exponents, hex,
// underscores or special values.
var decimal = regexp.MustCompile(`^[+-]?[0-9]+(\.[0-9]+)?$`)

// Kind is the declared type of a field.
type Kind string

const (
	KindText     Kind = "text"
	KindTextarea Kind = "textarea"
	KindEmail    Kind = "email"
	KindNumber   Kind = "number"
	KindPassword Kind = "password"
	KindCheckbox Kind = "checkbox"
)

// Values maps field name to its snapshot value: string for text, number,
// and password kinds, bool for checkboxes.  Callers building Values by hand
// may also store Go numbers under numeric fields.
type Values map[string]any

// Text returns the value of name as a string.  Booleans render as "true"
// or "", and absent fields as "".
func (v Values) Text(name string) string {
	switch x := v[name].(type) {
	case string:
		return x
	case bool:
		if x {
			return "true"
		}
		return ""
	case nil:
		return ""
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return ""
	}
}

// Checked reports whether name holds a true boolean.
func (v Values) Checked(name string) bool {
	b, ok := v[name].(bool)
	return ok && b
}

// Number parses name as a finite number.  ok is false when the value is
// absent, empty, or not a number.
func (v Values) Number(name string) (n float64, ok bool) {
	switch x := v[name].(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case float64:
		return x, !math.IsNaN(x) && !math.IsInf(x, 0)
	case string:
		x = strings.TrimSpace(x)
		if !decimal.MatchString(x) {
			return 0, false
		}
		f, err := strconv.ParseFloat(x, 64)
		if err != nil || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// present reports whether name carries a non-blank value.
func (v Values) present(name string) bool {
	switch x := v[name].(type) {
	case bool:
		return x
	case string:
		return strings.TrimSpace(x) != ""
	case nil:
		return false
	default:
		return true
	}
}

// Snapshot reads every field of fd from src.  A nil src yields an all-absent
// snapshot, which every required rule rejects.
func Snapshot(fd *FormDef, src event.FieldSource) Values {
	out := make(Values, len(fd.Fields))
	for i := range fd.Fields {
		f := &fd.Fields[i]
		raw, ok := "", false
		if src != nil {
			raw, ok = src.Lookup(f.Name)
		}
		out[f.Name] = readField(f, raw, ok)
	}
	return out
}

func readField(f *FieldDef, raw string, present bool) any {
	switch f.Kind {
	case KindCheckbox:
		return present && checkboxOn(raw)
	case KindPassword:
		return raw
	default:
		return strings.TrimSpace(raw)
	}
}

// checkboxOn treats browser "on" and any non-false token as checked.
func checkboxOn(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "false", "off", "0", "no":
		return false
	default:
		return true
	}
}
