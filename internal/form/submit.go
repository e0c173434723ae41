// internal/form/submit.go
//
// Formguard – Forms subsystem: HTTP request adapters.
//
// Context
//   Handlers turn a POST into an event.Event and dispatch it.  These
//   helpers parse the body and wire r.PostForm in as the event's field
//   source, so the guard reads exactly what the browser sent.
//
//------------------------------------------------------------------------------

package form

import (
	"net/http"

	"github.com/yanizio/formguard/internal/event"
)

// SubmitEvent parses r and returns a submit event aimed at formID.
func SubmitEvent(r *http.Request, formID string) (*event.Event, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	return event.New(event.Submit, formID, event.FormSource(r.PostForm)), nil
}

// BlurEvent parses r and returns a blur event for field on formID.
func BlurEvent(r *http.Request, formID, field string) (*event.Event, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	ev := event.New(event.Blur, field, event.FormSource(r.PostForm))
	ev.Form = formID
	return ev, nil
}

// Prefill returns the raw posted values of fd's fields for re-rendering.
func Prefill(fd *FormDef, src event.FieldSource) map[string]string {
	out := make(map[string]string, len(fd.Fields))
	if src == nil {
		return out
	}
	for _, f := range fd.Fields {
		if v, ok := src.Lookup(f.Name); ok {
			out[f.Name] = v
		}
	}
	return out
}
