package form_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/formguard/internal/event"
	"github.com/yanizio/formguard/internal/form"
)

// recorder captures what a Guard hands downstream.
type recorder struct {
	mu       sync.Mutex
	accepted []form.Values
	messages []string
	steps    []form.State
	err      error
}

func (r *recorder) Accept(_ context.Context, _ string, v form.Values) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accepted = append(r.accepted, v)
	return r.err
}

func (r *recorder) Notify(_ context.Context, _ string, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

func (r *recorder) observe(_ string, _, to form.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, to)
}

func newGuard(t *testing.T, id string) (*form.Guard, *recorder) {
	t.Helper()
	rec := &recorder{}
	return form.NewGuard(sample(t, id), rec, rec, form.WithObserver(rec.observe)), rec
}

func TestGuardSubmit_Accepted(t *testing.T) {
	g, rec := newGuard(t, "login")
	ev := event.New(event.Submit, "login", event.MapSource{"username": " sam ", "password": "pw"})

	res, err := g.Submit(context.Background(), ev)
	require.NoError(t, err)

	assert.True(t, res.OK())
	assert.True(t, ev.DefaultPrevented())
	require.Len(t, rec.accepted, 1)
	assert.Equal(t, form.Values{"username": "sam", "password": "pw"}, rec.accepted[0])
	assert.Empty(t, rec.messages)
	assert.Equal(t, []form.State{form.StateIntercepted, form.StateAccepted, form.StateIdle}, rec.steps)
	assert.Equal(t, form.StateIdle, g.State())
}

func TestGuardSubmit_Rejected(t *testing.T) {
	g, rec := newGuard(t, "signup")
	ev := event.New(event.Submit, "signup", event.MapSource{"password": "Strong1pass", "confirm": "nope"})

	res, err := g.Submit(context.Background(), ev)
	require.NoError(t, err)

	assert.False(t, res.OK())
	assert.Equal(t, "Passwords don’t match!", res.Message)
	assert.True(t, ev.DefaultPrevented())
	assert.Empty(t, rec.accepted)
	assert.Equal(t, []string{"Passwords don’t match!"}, rec.messages)
	assert.Equal(t, []form.State{form.StateIntercepted, form.StateRejected, form.StateIdle}, rec.steps)
	assert.Equal(t, form.StateIdle, g.State())
}

func TestGuardSubmit_Resubmit(t *testing.T) {
	g, rec := newGuard(t, "contact")
	ctx := context.Background()

	res, err := g.Submit(ctx, event.New(event.Submit, "contact", event.MapSource{"email": "bad"}))
	require.NoError(t, err)
	assert.False(t, res.OK())

	res, err = g.Submit(ctx, event.New(event.Submit, "contact", event.MapSource{"email": "a@b.com"}))
	require.NoError(t, err)
	assert.True(t, res.OK())

	assert.Len(t, rec.accepted, 1)
	assert.Len(t, rec.messages, 1)
}

func TestGuardSubmit_HandlerError(t *testing.T) {
	g, rec := newGuard(t, "contact")
	rec.err = errors.New("db down")

	res, err := g.Submit(context.Background(), event.New(event.Submit, "contact", event.MapSource{"email": "a@b.com"}))
	require.Error(t, err)
	assert.ErrorIs(t, err, rec.err)
	assert.True(t, res.OK())
	assert.Equal(t, form.StateIdle, g.State())
}

func TestGuardSubmit_Misrouted(t *testing.T) {
	g, rec := newGuard(t, "login")
	ctx := context.Background()

	for _, ev := range []*event.Event{
		nil,
		event.New(event.Submit, "signup", nil),
		event.New(event.Click, "login", nil),
	} {
		_, err := g.Submit(ctx, ev)
		assert.ErrorIs(t, err, form.ErrUnexpectedEvent)
	}
	assert.Empty(t, rec.steps)
}

func TestGuardSubmit_NilHandlers(t *testing.T) {
	g := form.NewGuard(sample(t, "login"), nil, nil)
	res, err := g.Submit(context.Background(), event.New(event.Submit, "login", nil))
	require.NoError(t, err)
	assert.Equal(t, "All fields required", res.Message)
}

func TestGuardSubmit_Concurrent(t *testing.T) {
	g, rec := newGuard(t, "contact")

	var wg sync.WaitGroup
	for n := 0; n < 20; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = g.Submit(context.Background(), event.New(event.Submit, "contact", event.MapSource{"email": "a@b.com"}))
		}()
	}
	wg.Wait()

	assert.Len(t, rec.accepted, 20)
	require.Len(t, rec.steps, 60)
	for i := 0; i < len(rec.steps); i += 3 {
		assert.Equal(t, []form.State{form.StateIntercepted, form.StateAccepted, form.StateIdle}, rec.steps[i:i+3])
	}
}

func TestGuardCheckField(t *testing.T) {
	g, rec := newGuard(t, "survey")
	ctx := context.Background()

	ev := event.New(event.Blur, "age", event.MapSource{"age": "12"})
	ev.Form = "survey"
	res, err := g.CheckField(ctx, ev)
	require.NoError(t, err)
	assert.Equal(t, "Must be 18+", res.Message)
	assert.Equal(t, []string{"Must be 18+"}, rec.messages)
	assert.Empty(t, rec.steps)

	ev = event.New(event.Blur, "nope", nil)
	ev.Form = "survey"
	_, err = g.CheckField(ctx, ev)
	assert.Error(t, err)

	_, err = g.CheckField(ctx, event.New(event.Blur, "age", nil))
	assert.ErrorIs(t, err, form.ErrUnexpectedEvent)
}

func TestGuardAttach(t *testing.T) {
	d := event.NewDispatcher()
	login, loginRec := newGuard(t, "login")
	signup, signupRec := newGuard(t, "signup")

	var reports []form.Result
	report := func(_ context.Context, _ *event.Event, res form.Result, err error) {
		assert.NoError(t, err)
		reports = append(reports, res)
	}
	detachLogin := login.Attach(d, report)
	signup.Attach(d, report)

	ctx := context.Background()
	n := d.Dispatch(ctx, event.New(event.Submit, "login", event.MapSource{"username": "a", "password": "b"}))
	assert.Equal(t, 1, n)
	assert.Len(t, loginRec.accepted, 1)
	assert.Empty(t, signupRec.accepted)

	// Both forms declare "password"; only the addressed guard reacts.
	blur := event.New(event.Blur, "password", event.MapSource{"password": "weak"})
	blur.Form = "signup"
	d.Dispatch(ctx, blur)
	assert.Equal(t, []string{"Password must be 8+ chars, 1 uppercase, 1 number"}, signupRec.messages)
	assert.Empty(t, loginRec.messages)

	detachLogin()
	assert.False(t, d.Listening(event.Submit, "login"))
	assert.True(t, d.Listening(event.Submit, "signup"))
	assert.Len(t, reports, 2)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", form.StateIdle.String())
	assert.Equal(t, "intercepted", form.StateIntercepted.String())
	assert.Equal(t, "accepted", form.StateAccepted.String())
	assert.Equal(t, "rejected", form.StateRejected.String())
	assert.Equal(t, "unknown", form.State(99).String())
}
