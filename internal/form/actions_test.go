package form_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
	"testing/fstest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/formguard/internal/form"
)

type fakeStore struct {
	form string
	data map[string]any
	err  error
}

func (s *fakeStore) SaveSubmission(_ context.Context, formID string, data map[string]any) error {
	s.form, s.data = formID, data
	return s.err
}

type fakeQueue struct{ reqs []*http.Request }

func (q *fakeQueue) EnqueueWebhook(_ context.Context, req *http.Request) error {
	q.reqs = append(q.reqs, req)
	return nil
}

func TestActions_StoreStripsPasswords(t *testing.T) {
	store := &fakeStore{}
	a := &form.Actions{Forms: sampleRegistry(t), Store: store}

	err := a.Accept(context.Background(), "signup", form.Values{"username": "sam", "password": "Secret1xx", "confirm": "Secret1xx"})
	require.NoError(t, err)
	assert.Equal(t, "signup", store.form)
	assert.Equal(t, map[string]any{"username": "sam"}, store.data)
}

func TestActions_MissingStore(t *testing.T) {
	a := &form.Actions{Forms: sampleRegistry(t)}
	err := a.Accept(context.Background(), "contact", form.Values{"email": "a@b.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store action")
}

func TestActions_StoreError(t *testing.T) {
	store := &fakeStore{err: errors.New("boom")}
	a := &form.Actions{Forms: sampleRegistry(t), Store: store}
	err := a.Accept(context.Background(), "contact", form.Values{"email": "a@b.com"})
	assert.ErrorIs(t, err, store.err)
}

func TestActions_UnknownForm(t *testing.T) {
	a := &form.Actions{Forms: form.NewRegistry()}
	err := a.Accept(context.Background(), "nope", nil)
	assert.ErrorIs(t, err, form.ErrUnknownForm)
}

func TestActions_Webhook(t *testing.T) {
	reg := form.NewRegistry()
	_, err := reg.LoadFS(fstest.MapFS{"hook.yaml": {Data: []byte(`
id: hook
fields:
  - name: email
    kind: email
actions:
  - type: webhook
    url: https://hooks.example.test/in
    header.X-Token: abc
`)}}, ".")
	require.NoError(t, err)

	q := &fakeQueue{}
	a := &form.Actions{Forms: reg, Outbox: q}
	require.NoError(t, a.Accept(context.Background(), "hook", form.Values{"email": "a@b.com"}))

	require.Len(t, q.reqs, 1)
	req := q.reqs[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "https://hooks.example.test/in", req.URL.String())
	assert.Equal(t, "abc", req.Header.Get("X-Token"))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	_, err = uuid.Parse(req.Header.Get("Idempotency-Key"))
	assert.NoError(t, err)

	body, _ := io.ReadAll(req.Body)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, "hook", payload["form"])
	assert.Equal(t, map[string]any{"email": "a@b.com"}, payload["values"])
}
