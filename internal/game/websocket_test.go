package game

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/scythe504/leaguedraw/internal"
	"github.com/scythe504/leaguedraw/internal/words"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gatewayFixture struct {
	registry *Registry
	server   *httptest.Server
	url      string
}

func newGatewayFixture(t *testing.T, opts GatewayOptions) *gatewayFixture {
	t.Helper()
	bank := words.NewMemoryBank(internal.WordData{Id: "1", Category: words.CategoryChampions, Word: "abc"})
	reg := newTestRegistry(bank, &manualTicker{})
	gw := NewGateway(reg, nil, opts)

	srv := httptest.NewServer(http.HandlerFunc(gw.HandleWebSocket))
	t.Cleanup(srv.Close)

	return &gatewayFixture{
		registry: reg,
		server:   srv,
		url:      "ws" + strings.TrimPrefix(srv.URL, "http"),
	}
}

func (f *gatewayFixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(f.url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, eventType string, data any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(internal.NewMessage(eventType, data)))
}

// readUntil reads messages until one of eventType arrives.
func readUntil(t *testing.T, conn *websocket.Conn, eventType string) json.RawMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var msg internal.Message[json.RawMessage]
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == eventType {
			return msg.Data
		}
	}
}

func readClose(t *testing.T, conn *websocket.Conn) *websocket.CloseError {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		_, _, err := conn.ReadMessage()
		if err == nil {
			continue
		}
		var closeErr *websocket.CloseError
		require.ErrorAs(t, err, &closeErr)
		return closeErr
	}
}

func TestGatewayRound(t *testing.T) {
	f := newGatewayFixture(t, GatewayOptions{})
	_, err := f.registry.Create("room", "", []internal.WordChoice{abc}, 60)
	require.NoError(t, err)

	a := f.dial(t)
	send(t, a, internal.EventJoin, internal.JoinRequest{Room: "room", Nick: "A"})
	var roster internal.PlayersData
	require.NoError(t, json.Unmarshal(readUntil(t, a, internal.EventPlayers), &roster))
	require.Len(t, roster.Players, 1)
	assert.Equal(t, "A", roster.Players[0].Name)
	assert.False(t, roster.Drawing)

	b := f.dial(t)
	send(t, b, internal.EventJoin, internal.JoinRequest{Room: "room", Nick: "B"})
	readUntil(t, b, internal.EventPlayers)

	var choices []internal.WordData
	require.NoError(t, json.Unmarshal(readUntil(t, a, internal.EventChoose), &choices))
	require.NotEmpty(t, choices)

	send(t, a, internal.EventChoice, choices[0].Choice())

	var hint internal.HintData
	require.NoError(t, json.Unmarshal(readUntil(t, b, internal.EventRound), &hint))
	assert.Equal(t, "_ _ _", hint.Word)

	var drawn internal.WordData
	require.NoError(t, json.Unmarshal(readUntil(t, a, internal.EventDrawer), &drawn))
	assert.Equal(t, "abc", drawn.Word)

	send(t, a, internal.EventMouseDown, map[string]int{"x": 1, "y": 2})
	assert.JSONEq(t, `{"x":1,"y":2}`, string(readUntil(t, b, internal.EventMouseDown)))

	send(t, b, internal.EventChatMessage, "abc")
	var guesser string
	require.NoError(t, json.Unmarshal(readUntil(t, a, internal.EventGuessed), &guesser))
	assert.Equal(t, "B", guesser)

	var ended string
	require.NoError(t, json.Unmarshal(readUntil(t, b, internal.EventRoundEnd), &ended))
	assert.Equal(t, "abc", ended)

	var start internal.RoundStartData
	require.NoError(t, json.Unmarshal(readUntil(t, a, internal.EventRoundStart), &start))
	assert.NotEmpty(t, start.DrawerId)
	assert.Equal(t, 60, start.MaxTime)
}

func TestGatewayDisconnectLeavesRoom(t *testing.T) {
	f := newGatewayFixture(t, GatewayOptions{})
	room, err := f.registry.Create("room", "", []internal.WordChoice{abc}, 60)
	require.NoError(t, err)

	a := f.dial(t)
	send(t, a, internal.EventJoin, internal.JoinRequest{Room: "room", Nick: "A"})
	readUntil(t, a, internal.EventPlayers)

	b := f.dial(t)
	send(t, b, internal.EventJoin, internal.JoinRequest{Room: "room", Nick: "B"})
	readUntil(t, b, internal.EventPlayers)

	require.NoError(t, b.Close())
	readUntil(t, a, internal.EventLeave)
	assert.Len(t, room.Players(), 1)

	require.NoError(t, a.Close())
	require.Eventually(t, func() bool {
		_, ok := f.registry.Get("room")
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
}

func TestGatewayRejections(t *testing.T) {
	f := newGatewayFixture(t, GatewayOptions{})
	_, err := f.registry.Create("locked", "pw", []internal.WordChoice{abc}, 60)
	require.NoError(t, err)

	t.Run("unknown room", func(t *testing.T) {
		conn := f.dial(t)
		send(t, conn, internal.EventJoin, internal.JoinRequest{Room: "nowhere", Nick: "A"})
		closeErr := readClose(t, conn)
		assert.Equal(t, websocket.CloseNormalClosure, closeErr.Code)
		assert.Equal(t, ErrRoomNotFound.Error(), closeErr.Text)
	})

	t.Run("wrong password", func(t *testing.T) {
		conn := f.dial(t)
		send(t, conn, internal.EventJoin, internal.JoinRequest{Room: "locked", Nick: "A", Password: "guess"})
		closeErr := readClose(t, conn)
		assert.Equal(t, websocket.ClosePolicyViolation, closeErr.Code)
		assert.Equal(t, ErrWrongPassword.Error(), closeErr.Text)
	})

	t.Run("event before join", func(t *testing.T) {
		conn := f.dial(t)
		send(t, conn, internal.EventChatMessage, "hello")
		closeErr := readClose(t, conn)
		assert.Equal(t, websocket.ClosePolicyViolation, closeErr.Code)
	})

	t.Run("malformed frames are skipped", func(t *testing.T) {
		conn := f.dial(t)
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
		send(t, conn, internal.EventJoin, internal.JoinRequest{Room: "locked", Nick: "A", Password: "pw"})
		readUntil(t, conn, internal.EventPlayers)
	})
}

func TestGatewayChatRateLimit(t *testing.T) {
	f := newGatewayFixture(t, GatewayOptions{ChatRate: 0.001, ChatBurst: 2})
	_, err := f.registry.Create("room", "", []internal.WordChoice{abc}, 60)
	require.NoError(t, err)

	a := f.dial(t)
	send(t, a, internal.EventJoin, internal.JoinRequest{Room: "room", Nick: "A"})
	readUntil(t, a, internal.EventPlayers)

	for i := range 4 {
		send(t, a, internal.EventChatMessage, strings.Repeat("x", i+1))
	}
	var texts []string
	require.NoError(t, a.SetReadDeadline(time.Now().Add(500*time.Millisecond)))
	for {
		var msg internal.Message[json.RawMessage]
		if err := a.ReadJSON(&msg); err != nil {
			break
		}
		if msg.Type == internal.EventChatMessage {
			var chat internal.ChatData
			require.NoError(t, json.Unmarshal(msg.Data, &chat))
			texts = append(texts, chat.Text)
		}
	}
	assert.Equal(t, []string{"x", "xx"}, texts)
}
