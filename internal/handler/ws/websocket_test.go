package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chemassist/assistant/backend/internal/model/chat"
	"github.com/chemassist/assistant/backend/internal/testutil"
)

type received struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Data      json.RawMessage `json:"data"`
}

func dial(t *testing.T) (*websocket.Conn, string) {
	t.Helper()

	services, _ := testutil.Services(t.TempDir())
	session, err := services.Chat.CreateSession(context.Background())
	require.NoError(t, err)

	r := chi.NewRouter()
	New(services.Chat, nil).RegisterRoutes(r)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/" + session.ID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn, session.ID
}

func read(t *testing.T, conn *websocket.Conn) received {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg received
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func send(t *testing.T, conn *websocket.Conn, kind, text string) {
	t.Helper()

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type": kind,
		"data": map[string]string{"text": text},
	}))
}

func TestConnectedCarriesMenuPrompt(t *testing.T) {
	conn, sessionID := dial(t)

	msg := read(t, conn)
	assert.Equal(t, "connected", msg.Type)
	assert.Equal(t, sessionID, msg.SessionID)

	var data struct {
		Mode   chat.Mode `json:"mode"`
		Prompt string    `json:"prompt"`
	}
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	assert.Equal(t, chat.ModeMenu, data.Mode)
	assert.NotEmpty(t, data.Prompt)
}

func TestInputProducesTurns(t *testing.T) {
	conn, _ := dial(t)
	read(t, conn)

	send(t, conn, "input", "1")
	msg := read(t, conn)
	require.Equal(t, "turn", msg.Type)

	var turn struct {
		Mode    chat.Mode      `json:"mode"`
		Entries []chat.Message `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(msg.Data, &turn))
	assert.Equal(t, chat.ModeFormula, turn.Mode)

	send(t, conn, "input", "3")
	msg = read(t, conn)
	require.Equal(t, "turn", msg.Type)
	require.NoError(t, json.Unmarshal(msg.Data, &turn))
	require.Len(t, turn.Entries, 2)
	assert.Equal(t, "The molecular formula for CID 3 is C2H6O.", turn.Entries[1].Content)
}

func TestPingAndUnsupportedType(t *testing.T) {
	conn, _ := dial(t)
	read(t, conn)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
	assert.Equal(t, "pong", read(t, conn).Type)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "audio"}))
	msg := read(t, conn)
	assert.Equal(t, "error", msg.Type)
	assert.Contains(t, string(msg.Data), "unsupported")
}

func TestEmptyTextIsRejected(t *testing.T) {
	conn, _ := dial(t)
	read(t, conn)

	send(t, conn, "input", "   ")
	msg := read(t, conn)
	assert.Equal(t, "error", msg.Type)
}

func TestUnknownSessionIsNotUpgraded(t *testing.T) {
	services, _ := testutil.Services(t.TempDir())
	r := chi.NewRouter()
	New(services.Chat, nil).RegisterRoutes(r)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/ws/missing", nil))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
