// internal/message/message.go
//
// Formguard – Outbound messaging.
//
// Context
//   The forms subsystem hands webhook deliveries to an Outbox so a
//   submission returns as soon as its rules pass.  The Outbox is a bounded
//   queue drained by a fixed pool of workers.  Enqueue never blocks: when
//   the queue is full it fails with ErrQueueFull and the caller logs it.
//
// Workflow
//   •  NewOutbox(opts) builds the queue.
//   •  Run(ctx) starts the workers under an errgroup and blocks until ctx
//      is cancelled, then drains nothing further and returns.
//   •  EnqueueWebhook(ctx, req) queues one request.  Non-2xx responses and
//      transport errors are logged; there is no retry.
//
//------------------------------------------------------------------------------

package message

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrQueueFull is returned when the outbox cannot take more jobs.
var ErrQueueFull = errors.New("outbox queue full")

// Options tunes an Outbox.
type Options struct {
	Workers  int           // Concurrent deliveries.  Default 2.
	Capacity int           // Queued jobs before ErrQueueFull.  Default 64.
	Timeout  time.Duration // Per-delivery timeout.  Default 10s.
	Client   *http.Client  // Default: a client with Timeout.
	Log      *zap.SugaredLogger
}

// Outbox queues webhook deliveries.
type Outbox struct {
	opts  Options
	queue chan *http.Request
}

// NewOutbox returns an Outbox; call Run to start delivering.
func NewOutbox(opts Options) *Outbox {
	if opts.Workers < 1 {
		opts.Workers = 2
	}
	if opts.Capacity < 1 {
		opts.Capacity = 64
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Log == nil {
		opts.Log = zap.S()
	}
	return &Outbox{opts: opts, queue: make(chan *http.Request, opts.Capacity)}
}

// EnqueueWebhook queues req.  The request's own context is replaced at
// delivery time, so callers may pass a request-scoped one.
func (o *Outbox) EnqueueWebhook(_ context.Context, req *http.Request) error {
	select {
	case o.queue <- req:
		return nil
	default:
		return ErrQueueFull
	}
}

// Pending reports how many jobs wait for a worker.
func (o *Outbox) Pending() int { return len(o.queue) }

// Run delivers queued jobs until ctx is done.
func (o *Outbox) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < o.opts.Workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case req := <-o.queue:
					o.deliver(ctx, req)
				}
			}
		})
	}
	return g.Wait()
}

func (o *Outbox) deliver(ctx context.Context, req *http.Request) {
	ctx, cancel := context.WithTimeout(ctx, o.opts.Timeout)
	defer cancel()

	resp, err := o.opts.Client.Do(req.Clone(ctx))
	if err != nil {
		o.opts.Log.Warnw("webhook delivery failed", "url", req.URL.String(), "error", err)
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		o.opts.Log.Warnw("webhook rejected", "url", req.URL.String(), "status", resp.StatusCode)
		return
	}
	o.opts.Log.Debugw("webhook delivered", "url", req.URL.String(), "status", resp.StatusCode)
}

// String describes the outbox for boot logs.
func (o *Outbox) String() string {
	return fmt.Sprintf("outbox(workers=%d capacity=%d)", o.opts.Workers, o.opts.Capacity)
}
