package channel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/washlane/booking-assistant/pkg/logger"
)

type recordedCall struct {
	path string
	auth string
	body sendRequest
}

func newGatewayServer(t *testing.T, primaryStatus, fallbackStatus int, calls *[]recordedCall) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body sendRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		*calls = append(*calls, recordedCall{
			path: r.URL.Path,
			auth: r.Header.Get("Authorization"),
			body: body,
		})

		if r.URL.Path == "/messages" {
			w.WriteHeader(fallbackStatus)
			return
		}
		w.WriteHeader(primaryStatus)
	}))
}

func TestGateway_SendPrimaryPath(t *testing.T) {
	var calls []recordedCall
	server := newGatewayServer(t, http.StatusOK, http.StatusOK, &calls)
	defer server.Close()

	g := NewGateway(server.URL, "tok-123", logger.NewNop())
	err := g.Send(context.Background(), "94771234567@c.us", "hello")

	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, "/chats/94771234567@c.us/messages", calls[0].path)
	assert.Equal(t, "Bearer tok-123", calls[0].auth)
	assert.Equal(t, "hello", calls[0].body.Text)
	assert.Empty(t, calls[0].body.To, "primary path addresses the chat in the URL")
}

func TestGateway_FallsBackWhenPrimaryFails(t *testing.T) {
	var calls []recordedCall
	server := newGatewayServer(t, http.StatusInternalServerError, http.StatusOK, &calls)
	defer server.Close()

	g := NewGateway(server.URL, "", logger.NewNop())
	err := g.Send(context.Background(), "94771234567@c.us", "hello")

	require.NoError(t, err)
	require.Len(t, calls, 2)
	assert.Equal(t, "/messages", calls[1].path)
	assert.Equal(t, "94771234567@c.us", calls[1].body.To)
	assert.Equal(t, "hello", calls[1].body.Text)
	assert.Empty(t, calls[1].auth, "no auth header without a token")
}

func TestGateway_ErrorWhenBothPathsFail(t *testing.T) {
	var calls []recordedCall
	server := newGatewayServer(t, http.StatusBadGateway, http.StatusBadGateway, &calls)
	defer server.Close()

	g := NewGateway(server.URL, "", logger.NewNop())
	err := g.Send(context.Background(), "94771234567@c.us", "hello")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "fallback send failed")
	assert.Len(t, calls, 2)
}

func TestGateway_TrimsTrailingSlashFromBaseURL(t *testing.T) {
	var calls []recordedCall
	server := newGatewayServer(t, http.StatusOK, http.StatusOK, &calls)
	defer server.Close()

	g := NewGateway(server.URL+"/", "", logger.NewNop())
	require.NoError(t, g.Send(context.Background(), "chat-1", "hello"))
	require.Len(t, calls, 1)
	assert.Equal(t, "/chats/chat-1/messages", calls[0].path)
}
