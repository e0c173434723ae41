// internal/notify/notify.go
//
// Formguard – Notify subsystem: rejection sinks.
//
// Context
//   A Guard hands the first failing rule's message to a form.Notifier.  In
//   a browser that is an alert; here it is one of these sinks:
//
//     •  Log      – structured zap line per rejection.
//     •  Recorder – keeps the last message per form.  The CLI reads it
//                   back to pick its exit status.
//     •  Writer   – plain text to an io.Writer, used by the CLI.
//     •  Multi    – fan-out to several sinks in order.
//
//------------------------------------------------------------------------------

package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/yanizio/formguard/internal/form"
	"github.com/yanizio/formguard/internal/logger"
)

var (
	_ form.Notifier = (*Log)(nil)
	_ form.Notifier = (*Recorder)(nil)
	_ form.Notifier = (*Writer)(nil)
	_ form.Notifier = Multi(nil)
)

// -----------------------------------------------------------------------------
// Log
// -----------------------------------------------------------------------------

// Log writes each rejection at info level.  With L unset it logs through
// the request-scoped logger in ctx.
type Log struct {
	L *zap.SugaredLogger
}

// Notify implements form.Notifier.
func (n *Log) Notify(ctx context.Context, formID, message string) {
	l := n.L
	if l == nil {
		l = logger.FromContext(ctx)
	}
	l.Infow("form rejected", "form", formID, "message", message)
}

// -----------------------------------------------------------------------------
// Recorder
// -----------------------------------------------------------------------------

// Recorder keeps the most recent message per form.
type Recorder struct {
	mu   sync.Mutex
	last map[string]string
	n    int
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder { return &Recorder{last: make(map[string]string)} }

// Notify implements form.Notifier.
func (r *Recorder) Notify(_ context.Context, formID, message string) {
	r.mu.Lock()
	r.last[formID] = message
	r.n++
	r.mu.Unlock()
}

// Last returns the latest message recorded for formID.
func (r *Recorder) Last(formID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.last[formID]
	return m, ok
}

// Count returns how many messages have been recorded in total.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.n
}

// -----------------------------------------------------------------------------
// Writer
// -----------------------------------------------------------------------------

// Writer prints "formID: message" lines to W.
type Writer struct {
	mu sync.Mutex
	W  io.Writer
}

// Notify implements form.Notifier.
func (w *Writer) Notify(_ context.Context, formID, message string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.W, "%s: %s\n", formID, message)
}

// -----------------------------------------------------------------------------
// Multi
// -----------------------------------------------------------------------------

// Multi forwards to every non-nil sink in order.
type Multi []form.Notifier

// Notify implements form.Notifier.
func (m Multi) Notify(ctx context.Context, formID, message string) {
	for _, n := range m {
		if n != nil {
			n.Notify(ctx, formID, message)
		}
	}
}
