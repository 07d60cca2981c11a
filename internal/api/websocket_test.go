package api

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartguard-server/internal/domain"
)

func dialValidateSocket(t *testing.T, server *Server) *websocket.Conn {
	t.Helper()

	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/validate"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func TestValidateSocketCompleteRecord(t *testing.T) {
	server := newTestServer(t, &stubPredictor{probability: 0.2}, &memStore{})
	conn := dialValidateSocket(t, server)

	body := completeRequestBody()
	body["trestbps"] = 190
	require.NoError(t, conn.WriteJSON(body))

	var frame validationFrame
	require.NoError(t, conn.ReadJSON(&frame))

	assert.Equal(t, "validation", frame.Type)
	require.NotNil(t, frame.Result)
	require.Len(t, frame.Result.Advisories, 1)
	assert.Equal(t, domain.SeverityError, frame.Result.Advisories[0].Severity)
}

func TestValidateSocketIncompleteRecord(t *testing.T) {
	server := newTestServer(t, &stubPredictor{probability: 0.2}, &memStore{})
	conn := dialValidateSocket(t, server)

	body := completeRequestBody()
	delete(body, "oldpeak")
	require.NoError(t, conn.WriteJSON(body))

	var frame validationFrame
	require.NoError(t, conn.ReadJSON(&frame))

	assert.Equal(t, "incomplete", frame.Type)
	assert.Equal(t, []string{"oldpeak"}, frame.MissingFields)
}

func TestValidateSocketStreamsMultipleFrames(t *testing.T) {
	server := newTestServer(t, &stubPredictor{probability: 0.2}, &memStore{})
	conn := dialValidateSocket(t, server)

	// First edit: incomplete. Second edit: complete and clean.
	body := completeRequestBody()
	delete(body, "chol")
	require.NoError(t, conn.WriteJSON(body))

	var first validationFrame
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "incomplete", first.Type)

	require.NoError(t, conn.WriteJSON(completeRequestBody()))

	var second validationFrame
	require.NoError(t, conn.ReadJSON(&second))
	assert.Equal(t, "validation", second.Type)
	require.NotNil(t, second.Result)
	assert.Empty(t, second.Result.Advisories)
	assert.Equal(t, 100, second.Result.Quality.Score)
}
