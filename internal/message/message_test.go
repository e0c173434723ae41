package message

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOutbox_Delivers(t *testing.T) {
	got := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got <- string(b)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	o := NewOutbox(Options{Workers: 1, Log: zap.NewNop().Sugar()})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- o.Run(ctx) }()

	req, err := http.NewRequest(http.MethodPost, srv.URL, strings.NewReader(`{"a":1}`))
	require.NoError(t, err)
	require.NoError(t, o.EnqueueWebhook(context.Background(), req))

	select {
	case body := <-got:
		assert.Equal(t, `{"a":1}`, body)
	case <-time.After(5 * time.Second):
		t.Fatal("webhook not delivered")
	}

	cancel()
	assert.NoError(t, <-done)
}

func TestOutbox_QueueFull(t *testing.T) {
	o := NewOutbox(Options{Capacity: 1, Log: zap.NewNop().Sugar()})
	req, _ := http.NewRequest(http.MethodPost, "http://127.0.0.1:0", nil)

	require.NoError(t, o.EnqueueWebhook(context.Background(), req))
	assert.ErrorIs(t, o.EnqueueWebhook(context.Background(), req), ErrQueueFull)
	assert.Equal(t, 1, o.Pending())
}
