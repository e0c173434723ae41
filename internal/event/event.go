// internal/event/event.go
//
// Formguard – Event dispatch: event and field-source types.
//
// Context
//   An Event is one user interaction (submit, blur, input, …) aimed at a
//   Target, which is a form ID for submit events and a field name for
//   field-level events.  Listeners may call PreventDefault to tell the
//   host that the interaction's native effect (navigation, reload) must
//   not happen.
//
//   Fields gives listeners read access to the current field values.  It is
//   the only way a listener sees user input, so validation code can be
//   tested with a plain map instead of a live page or HTTP request.
//
//------------------------------------------------------------------------------

package event

import (
	"net/url"
)

// Type names an interaction.
type Type string

const (
	Submit  Type = "submit"
	Blur    Type = "blur"
	Input   Type = "input"
	Change  Type = "change"
	Click   Type = "click"
	KeyDown Type = "keydown"
)

// FieldSource reads the current raw value of a named field.  ok is false
// when the field is absent (an unchecked checkbox, for example).
type FieldSource interface {
	Lookup(name string) (raw string, ok bool)
}

// Event is one interaction routed through a Dispatcher.
type Event struct {
	Type   Type
	Target string      // form ID (submit) or field name (blur, input, change)
	Form   string      // owning form ID, set on field-level events
	Fields FieldSource // snapshot source; may be nil for non-form events

	defaultPrevented bool
}

// New returns an Event for typ aimed at target.
func New(typ Type, target string, fields FieldSource) *Event {
	return &Event{Type: typ, Target: target, Fields: fields}
}

// PreventDefault suppresses the host's native handling of the event.
func (e *Event) PreventDefault() { e.defaultPrevented = true }

// DefaultPrevented reports whether any listener called PreventDefault.
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// -----------------------------------------------------------------------------
// FieldSource adapters
// -----------------------------------------------------------------------------

// MapSource serves values from a plain map.  Missing keys are absent.
type MapSource map[string]string

// Lookup implements FieldSource.
func (m MapSource) Lookup(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// FormSource serves the first value of each key in parsed form data, the
// same shape net/http produces for r.PostForm.
type FormSource url.Values

// Lookup implements FieldSource.
func (f FormSource) Lookup(name string) (string, bool) {
	vs, ok := f[name]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}
