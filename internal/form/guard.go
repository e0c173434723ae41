// internal/form/guard.go
//
// Formguard – Forms subsystem: submission guard.
//
// Context
//   A Guard owns one form definition and judges every submission made
//   against it.  Each submission walks the same transitions:
//
//      Idle → Intercepted → Accepted | Rejected → Idle
//
//   On interception the guard suppresses the event's default effect and
//   snapshots the field values.  Accepted hands the values to the
//   downstream Handler.  Rejected hands the first failing rule's message
//   to the Notifier and leaves the source untouched so the user can fix
//   it and resubmit.  Nothing is fatal; the guard always ends in Idle.
//
// Concurrency
//   Submissions against one guard are serialized, so two runs never
//   overlap on the same form.  State may be read from any goroutine.
//
//------------------------------------------------------------------------------

package form

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/yanizio/formguard/internal/event"
)

// State is a guard lifecycle position.
type State int32

const (
	StateIdle State = iota
	StateIntercepted
	StateAccepted
	StateRejected
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateIntercepted:
		return "intercepted"
	case StateAccepted:
		return "accepted"
	case StateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// ErrUnexpectedEvent is returned when an event is routed to the wrong guard.
var ErrUnexpectedEvent = errors.New("event not addressed to this form")

// Handler receives the values of an accepted submission.
type Handler interface {
	Accept(ctx context.Context, formID string, values Values) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, formID string, values Values) error

// Accept implements Handler.
func (f HandlerFunc) Accept(ctx context.Context, formID string, values Values) error {
	return f(ctx, formID, values)
}

// Notifier receives the message of a rejected submission or field check.
type Notifier interface {
	Notify(ctx context.Context, formID, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, formID, message string)

// Notify implements Notifier.
func (f NotifierFunc) Notify(ctx context.Context, formID, message string) { f(ctx, formID, message) }

// Observer sees every state transition.
type Observer func(formID string, from, to State)

// Guard intercepts submissions for one form.
type Guard struct {
	def     *FormDef
	rules   []Rule
	accept  Handler
	notify  Notifier
	observe Observer
	log     *zap.SugaredLogger

	mu    sync.Mutex
	state atomic.Int32
}

// GuardOption customizes a Guard.
type GuardOption func(*Guard)

// WithObserver installs fn as the transition observer.
func WithObserver(fn Observer) GuardOption { return func(g *Guard) { g.observe = fn } }

// WithLogger sets the logger used for listener errors.
func WithLogger(l *zap.SugaredLogger) GuardOption { return func(g *Guard) { g.log = l } }

// NewGuard builds a guard for def.  A nil accept or notify is replaced by
// a no-op.  def must come from Registry so its rules are compiled.
func NewGuard(def *FormDef, accept Handler, notify Notifier, opts ...GuardOption) *Guard {
	g := &Guard{
		def:    def,
		rules:  def.CompiledRules(),
		accept: accept,
		notify: notify,
		log:    zap.S(),
	}
	if g.accept == nil {
		g.accept = HandlerFunc(func(context.Context, string, Values) error { return nil })
	}
	if g.notify == nil {
		g.notify = NotifierFunc(func(context.Context, string, string) {})
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Form returns the guarded definition.
func (g *Guard) Form() *FormDef { return g.def }

// State returns the current lifecycle state.
func (g *Guard) State() State { return State(g.state.Load()) }

// Submit runs one submission.  The returned error is non-nil only when the
// event is misrouted or the downstream handler fails; in the latter case
// the result is still Accepted.
func (g *Guard) Submit(ctx context.Context, ev *event.Event) (Result, error) {
	if ev == nil || ev.Type != event.Submit || ev.Target != g.def.ID {
		return Result{}, ErrUnexpectedEvent
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	ev.PreventDefault()
	g.transition(StateIntercepted)
	defer g.transition(StateIdle)

	res := Evaluate(g.rules, Snapshot(g.def, ev.Fields))
	if !res.OK() {
		g.transition(StateRejected)
		g.notify.Notify(ctx, g.def.ID, res.Message)
		return res, nil
	}

	g.transition(StateAccepted)
	if err := g.accept.Accept(ctx, g.def.ID, res.Values); err != nil {
		return res, fmt.Errorf("form %s: downstream handler: %w", g.def.ID, err)
	}
	return res, nil
}

// CheckField validates a single field, as on blur.  ev.Target names the
// field.  Guard state does not change.
func (g *Guard) CheckField(ctx context.Context, ev *event.Event) (Result, error) {
	if ev == nil || ev.Form != g.def.ID {
		return Result{}, ErrUnexpectedEvent
	}
	if _, ok := g.def.Field(ev.Target); !ok {
		return Result{}, fmt.Errorf("form %s: unknown field %q", g.def.ID, ev.Target)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	res := EvaluateField(g.rules, ev.Target, Snapshot(g.def, ev.Fields))
	if !res.OK() {
		g.notify.Notify(ctx, g.def.ID, res.Message)
	}
	return res, nil
}

// ReportFunc receives the outcome of a dispatched event.
type ReportFunc func(ctx context.Context, ev *event.Event, res Result, err error)

// Attach registers the guard on d: submit events aimed at the form, and
// blur events on its fields.  report may be nil, in which case errors are
// logged.  The returned func detaches every listener.
func (g *Guard) Attach(d *event.Dispatcher, report ReportFunc) (detach func()) {
	if report == nil {
		report = g.logReport
	}

	offs := []func(){
		d.On(event.Submit, g.def.ID, func(ctx context.Context, ev *event.Event) {
			res, err := g.Submit(ctx, ev)
			report(ctx, ev, res, err)
		}),
	}
	for _, f := range g.def.Fields {
		offs = append(offs, d.On(event.Blur, f.Name, func(ctx context.Context, ev *event.Event) {
			if ev.Form != g.def.ID {
				return // same field name on another form
			}
			res, err := g.CheckField(ctx, ev)
			report(ctx, ev, res, err)
		}))
	}

	return func() {
		for _, off := range offs {
			off()
		}
	}
}

func (g *Guard) logReport(_ context.Context, ev *event.Event, _ Result, err error) {
	if err != nil {
		g.log.Errorw("form event failed", "form", g.def.ID, "event", string(ev.Type), "error", err)
	}
}

func (g *Guard) transition(to State) {
	from := State(g.state.Swap(int32(to)))
	if g.observe != nil {
		g.observe(g.def.ID, from, to)
	}
}
