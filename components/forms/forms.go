// components/forms/forms.go
//
// Formguard – forms component: HTTP surface for guarded forms.
//
// Context
//   Every registered form gets a Guard attached to one event.Dispatcher.
//   A POST becomes a submit event, a field check becomes a blur event, and
//   the guard that owns the form answers.  The guard's verdict travels back
//   to the handler through a per-request slot in the context, filled by
//   the report hook, so concurrent requests never see each other's result.
//
// Routes (mounted at /forms)
//   GET  /                     JSON list of forms.
//   GET  /{id}                 HTML page with a fresh CSRF token.
//   POST /{id}                 Submit.  200 accepted, 422 rejected, 403 bad
//                              token.  HTML re-render when the client
//                              accepts text/html.
//   POST /{id}/fields/{field}  Single-field check.  200 or 422.
//
//------------------------------------------------------------------------------

package forms

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/formguard/internal/component"
	"github.com/yanizio/formguard/internal/database"
	"github.com/yanizio/formguard/internal/event"
	"github.com/yanizio/formguard/internal/form"
	"github.com/yanizio/formguard/internal/head"
	"github.com/yanizio/formguard/internal/logger"
	"github.com/yanizio/formguard/internal/metrics"
	"github.com/yanizio/formguard/internal/middleware"
	"github.com/yanizio/formguard/internal/notify"
	"github.com/yanizio/formguard/internal/view"
)

// Compile-time assertions.
var (
	_ component.Component   = (*Component)(nil)
	_ component.Initializer = (*Component)(nil)
)

// Component serves every form in the registry it was initialised with.
type Component struct {
	forms  *form.Registry
	tokens *form.Tokens
	pages  *view.Engine
	disp   *event.Dispatcher
	log    *zap.SugaredLogger
}

/*────────────────── component.Component methods ───────────────────────────*/

// Name returns the canonical component key and mount point.
func (c *Component) Name() string { return "forms" }

// Migrations creates the submission table used by the store action.
func (c *Component) Migrations() []string { return []string{database.SubmissionSchema} }

// Init builds one guard per registered form.  Calling Init again rebuilds
// every guard against the current registry.
func (c *Component) Init(deps component.Deps) error {
	if deps.Forms == nil {
		return errors.New("forms component: no form registry")
	}
	c.forms = deps.Forms
	c.tokens = deps.Tokens
	c.pages = deps.Pages
	if c.pages == nil {
		c.pages = view.New("")
	}
	c.log = deps.Log
	if c.log == nil {
		c.log = zap.S()
	}

	c.disp = event.NewDispatcher()
	c.disp.OnPanic(func(ev *event.Event, recovered any) {
		c.log.Errorw("form listener panic", "event", string(ev.Type), "target", ev.Target, "panic", recovered)
	})

	sink := &notify.Log{}
	for _, fd := range c.forms.All() {
		g := form.NewGuard(fd, deps.Actions, sink, form.WithLogger(c.log))
		g.Attach(c.disp, c.report)
	}
	c.log.Infow("forms component ready", "forms", c.forms.Len(), "csrf", c.tokens != nil)
	return nil
}

// Routes builds the router mounted at “/forms”.
func (c *Component) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.NoStore)
	r.Get("/", c.handleList)
	r.Get("/{id}", c.handlePage)
	r.Post("/{id}", c.handleSubmit)
	r.Post("/{id}/fields/{field}", c.handleField)
	return r
}

// Register component at program start.
func init() { component.Register(&Component{}) }

/*──────────────────────────── verdict slot ─────────────────────────────────*/

type verdictKey struct{}

type verdict struct {
	done bool
	res  form.Result
	err  error
}

// report is the ReportFunc every guard shares.
func (c *Component) report(ctx context.Context, ev *event.Event, res form.Result, err error) {
	formID := ev.Form
	if ev.Type == event.Submit {
		formID = ev.Target
		metrics.ObserveSubmit(formID, res, err)
	} else if err == nil {
		metrics.ObserveField(formID, res)
	}
	if err != nil {
		logger.FromContext(ctx).Errorw("form event failed", "form", formID, "event", string(ev.Type), "error", err)
	}

	if v, ok := ctx.Value(verdictKey{}).(*verdict); ok {
		v.done, v.res, v.err = true, res, err
	}
}

// dispatch runs ev and returns the guard's verdict.
func (c *Component) dispatch(ctx context.Context, ev *event.Event) *verdict {
	v := &verdict{}
	c.disp.Dispatch(context.WithValue(ctx, verdictKey{}, v), ev)
	return v
}

/*──────────────────────────── handlers ─────────────────────────────────────*/

type formSummary struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
}

func (c *Component) handleList(w http.ResponseWriter, _ *http.Request) {
	out := make([]formSummary, 0, c.forms.Len())
	for _, fd := range c.forms.All() {
		out = append(out, formSummary{ID: fd.ID, Title: fd.Title})
	}
	writeJSON(w, http.StatusOK, out)
}

func (c *Component) handlePage(w http.ResponseWriter, r *http.Request) {
	fd, ok := c.lookup(w, r)
	if !ok {
		return
	}
	c.renderPage(w, r, fd, http.StatusOK, form.RenderOptions{})
}

func (c *Component) handleSubmit(w http.ResponseWriter, r *http.Request) {
	fd, ok := c.lookup(w, r)
	if !ok {
		return
	}

	ev, err := form.SubmitEvent(r, fd.ID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "malformed form body"})
		return
	}

	if c.tokens != nil {
		if err := c.tokens.Verify(fd.ID, r.PostForm.Get("csrf_token")); err != nil {
			logger.FromContext(r.Context()).Warnw("csrf check failed", "form", fd.ID, "error", err)
			writeJSON(w, http.StatusForbidden, map[string]any{"error": err.Error()})
			return
		}
	}

	v := c.dispatch(r.Context(), ev)
	if !v.done || (v.err != nil && !v.res.OK()) {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if wantsHTML(r) {
		if v.res.OK() {
			c.writePage(w, r, http.StatusOK, fd, "", template.HTML(`<p class="form-ok" role="status">Thank you.</p>`))
			return
		}
		c.renderPage(w, r, fd, http.StatusUnprocessableEntity, form.RenderOptions{
			Message: v.res.Message,
			Prefill: form.Prefill(fd, ev.Fields),
		})
		return
	}

	if v.res.OK() {
		writeJSON(w, http.StatusOK, map[string]any{"accepted": true})
		return
	}
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"accepted": false,
		"message":  v.res.Message,
		"field":    v.res.Field,
	})
}

func (c *Component) handleField(w http.ResponseWriter, r *http.Request) {
	fd, ok := c.lookup(w, r)
	if !ok {
		return
	}
	field := chi.URLParam(r, "field")
	if _, ok := fd.Field(field); !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "unknown field"})
		return
	}

	ev, err := form.BlurEvent(r, fd.ID, field)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "malformed form body"})
		return
	}

	v := c.dispatch(r.Context(), ev)
	if !v.done || v.err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if v.res.OK() {
		writeJSON(w, http.StatusOK, map[string]any{"valid": true})
		return
	}
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"valid": false, "message": v.res.Message})
}

/*──────────────────────────── helpers ──────────────────────────────────────*/

func (c *Component) lookup(w http.ResponseWriter, r *http.Request) (*form.FormDef, bool) {
	fd, ok := c.forms.Get(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "unknown form"})
	}
	return fd, ok
}

func (c *Component) renderPage(w http.ResponseWriter, r *http.Request, fd *form.FormDef, status int, opts form.RenderOptions) {
	opts.Action = r.URL.Path
	if c.tokens != nil {
		tok, err := c.tokens.Issue(fd.ID)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		opts.Token = tok
	}
	body, err := form.Render(fd, opts)
	if err != nil {
		logger.FromContext(r.Context()).Errorw("render error", "form", fd.ID, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	c.writePage(w, r, status, fd, opts.Token, body)
}

// writePage wraps body in the "page" layout.  The token, when set, is also
// exposed as a csrf-token meta tag for scripts doing field checks.
func (c *Component) writePage(w http.ResponseWriter, r *http.Request, status int, fd *form.FormDef, token string, body template.HTML) {
	h := head.New()
	title := fd.Title
	if title == "" {
		title = fd.ID
	}
	h.SetTitle(title)
	if token != "" {
		h.MetaName("csrf-token", token)
	}
	if err := c.pages.Page(w, status, "page", view.PageData{Head: h, Body: body, Data: map[string]any{"Form": fd.ID}}); err != nil {
		logger.FromContext(r.Context()).Errorw("page render failed", "form", fd.ID, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
