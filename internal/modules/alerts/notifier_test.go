package alerts

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	testutil "github.com/dgnsrekt/market-clock/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ Notifier = (*SlackNotifier)(nil)
	_ Notifier = (*LogNotifier)(nil)
	_ Notifier = (*testutil.MockNotifier)(nil)
)

func TestSlackNotifier_Notify(t *testing.T) {
	var received map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier, err := NewSlackNotifier(server.URL)
	require.NoError(t, err)

	require.NoError(t, notifier.Notify(context.Background(), "[Tokyo] - JPX Tokyo exchange opening in 10 minutes"))
	assert.Equal(t, "[Tokyo] - JPX Tokyo exchange opening in 10 minutes", received["text"])
}

func TestSlackNotifier_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	notifier, err := NewSlackNotifier(server.URL)
	require.NoError(t, err)
	assert.Error(t, notifier.Notify(context.Background(), "hello"))
}

func TestNewSlackNotifier_EmptyURL(t *testing.T) {
	_, err := NewSlackNotifier("")
	assert.Error(t, err)
}

func TestSlackWebhookURL(t *testing.T) {
	assert.Equal(t, "https://hooks.slack.com/services/T0/B0/XYZ", SlackWebhookURL("", "T0/B0/XYZ"))
	assert.Equal(t, "https://example.com/hook", SlackWebhookURL("https://example.com/hook", "T0/B0/XYZ"))
	assert.Equal(t, "", SlackWebhookURL("", ""))
}

func TestLogNotifier(t *testing.T) {
	notifier := NewLogNotifier(testutil.NewTestLogger())
	assert.NoError(t, notifier.Notify(context.Background(), "hello"))
}
