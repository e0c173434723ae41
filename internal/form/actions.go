// internal/form/actions.go
//
// Formguard – Forms subsystem: post-accept actions.
//
// Context
//   A FormDef may list actions.  Actions is the downstream Handler a Guard
//   calls once a submission is accepted.  It runs each action in declared
//   order: log, store, or webhook.  Password fields are stripped before
//   any value leaves the process.  Failures are logged and joined into the
//   returned error; they never turn an accepted submission into a rejected
//   one.
//
//------------------------------------------------------------------------------

package form

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/yanizio/formguard/internal/logger"
)

var knownActions = map[string]bool{
	"log":     true,
	"store":   true,
	"webhook": true,
}

// SubmissionStore persists accepted values.
type SubmissionStore interface {
	SaveSubmission(ctx context.Context, formID string, data map[string]any) error
}

// WebhookQueue accepts outbound webhook requests for later delivery.
type WebhookQueue interface {
	EnqueueWebhook(ctx context.Context, req *http.Request) error
}

// Actions runs the YAML-declared actions of accepted submissions.  Store
// and Outbox may be nil; the matching actions then fail with an error.
type Actions struct {
	Forms  *Registry
	Store  SubmissionStore
	Outbox WebhookQueue
}

var _ Handler = (*Actions)(nil)

// Accept implements Handler.
func (a *Actions) Accept(ctx context.Context, formID string, values Values) error {
	fd, err := a.Forms.Lookup(formID)
	if err != nil {
		return err
	}
	data := fd.Public(values)

	var errs []error
	for _, ac := range fd.Actions {
		var err error
		switch ac.Type {
		case "log":
			runLog(ctx, fd, ac.Params, data)
		case "store":
			err = a.runStore(ctx, fd, data)
		case "webhook":
			err = a.runWebhook(ctx, fd, ac.Params, data)
		default:
			err = fmt.Errorf("unsupported action %q", ac.Type)
		}
		if err != nil {
			logErr(ctx, fd.ID, ac.Type, err)
			errs = append(errs, fmt.Errorf("%s action: %w", ac.Type, err))
		}
	}
	return errors.Join(errs...)
}

// -----------------------------------------------------------------------------
// Log action
// -----------------------------------------------------------------------------

func runLog(ctx context.Context, fd *FormDef, p map[string]any, data map[string]any) {
	msg, _ := p["message"].(string)
	if msg == "" {
		msg = "form submission accepted"
	}
	fields := lo.Keys(data)
	sort.Strings(fields)
	logger.FromContext(ctx).Infow(msg, "form", fd.ID, "fields", fields)
}

// -----------------------------------------------------------------------------
// Store action
// -----------------------------------------------------------------------------

func (a *Actions) runStore(ctx context.Context, fd *FormDef, data map[string]any) error {
	if a.Store == nil {
		return errors.New("no submission store configured")
	}
	return a.Store.SaveSubmission(ctx, fd.ID, data)
}

// -----------------------------------------------------------------------------
// Webhook action
// -----------------------------------------------------------------------------

func (a *Actions) runWebhook(ctx context.Context, fd *FormDef, p map[string]any, data map[string]any) error {
	if a.Outbox == nil {
		return errors.New("no outbox configured")
	}
	url, ok := p["url"].(string)
	if !ok || url == "" {
		return fmt.Errorf("webhook action requires 'url'")
	}
	method, _ := p["method"].(string)
	if method == "" {
		method = http.MethodPost
	}

	payload, err := json.Marshal(map[string]any{"form": fd.ID, "values": data})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", uuid.NewString())
	for k, v := range p {
		if strings.HasPrefix(k, "header.") {
			req.Header.Set(strings.TrimPrefix(k, "header."), fmt.Sprint(v))
		}
	}
	return a.Outbox.EnqueueWebhook(ctx, req)
}

// -----------------------------------------------------------------------------
// Logging helpers
// -----------------------------------------------------------------------------

func logErr(ctx context.Context, formID, action string, err error) {
	logger.FromContext(ctx).Errorw(
		"form action failed",
		"form", formID, "action", action, "error", err.Error(),
	)
}
