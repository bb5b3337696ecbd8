package dm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"distrust-bot/internal/domain"
)

var testReveal = domain.Reveal{
	SessionID:    "s1",
	PlayerID:     "p1",
	Role:         domain.RoleImpostor,
	Instructions: "play nice",
}

func newTestSender(t *testing.T, url string, attempts int) *WebhookSender {
	t.Helper()
	sender, err := NewWebhookSender(url, "adapter-token", time.Second, attempts, zap.NewNop())
	require.NoError(t, err)
	sender.backoff = time.Millisecond
	return sender
}

func TestWebhookSender_Delivers(t *testing.T) {
	var got domain.Reveal
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/reveals", r.URL.Path)
		assert.Equal(t, "Bearer adapter-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sender := newTestSender(t, srv.URL+"/", 3)
	require.NoError(t, sender.SendReveal(context.Background(), testReveal))
	assert.Equal(t, testReveal, got)
}

func TestWebhookSender_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "cannot send messages to this user", http.StatusForbidden)
	}))
	defer srv.Close()

	err := newTestSender(t, srv.URL, 3).SendReveal(context.Background(), testReveal)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=403")
	assert.Equal(t, int32(1), calls.Load())
}

func TestWebhookSender_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	require.NoError(t, newTestSender(t, srv.URL, 3).SendReveal(context.Background(), testReveal))
	assert.Equal(t, int32(3), calls.Load())
}

func TestWebhookSender_GivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := newTestSender(t, srv.URL, 2).SendReveal(context.Background(), testReveal)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
	assert.Equal(t, int32(2), calls.Load())
}

func TestWebhookSender_Validation(t *testing.T) {
	_, err := NewWebhookSender("", "", 0, 0, nil)
	assert.Error(t, err)
	_, err = NewWebhookSender("not a url", "", 0, 0, nil)
	assert.Error(t, err)

	sender, err := NewWebhookSender("http://127.0.0.1:1", "", 0, 0, nil)
	require.NoError(t, err)
	assert.Error(t, sender.SendReveal(context.Background(), domain.Reveal{SessionID: "s1"}))
}

func TestDisabledSender(t *testing.T) {
	err := NewDisabledSender("dm webhook not configured").SendReveal(context.Background(), testReveal)
	assert.EqualError(t, err, "dm webhook not configured")
	assert.Error(t, NewDisabledSender("").SendReveal(context.Background(), testReveal))
}

func TestSenderFunc(t *testing.T) {
	var seen domain.Reveal
	var s Sender = SenderFunc(func(_ context.Context, r domain.Reveal) error {
		seen = r
		return nil
	})
	require.NoError(t, s.SendReveal(context.Background(), testReveal))
	assert.Equal(t, testReveal, seen)
}
