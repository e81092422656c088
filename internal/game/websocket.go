package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/scythe504/leaguedraw/internal"
	"github.com/scythe504/leaguedraw/internal/metrics"
	"golang.org/x/time/rate"
)

// =============================================================================
// WEBSOCKET CONNECTION HANDLING
// =============================================================================

type GatewayOptions struct {
	AllowedOrigin string
	ChatRate      float64
	ChatBurst     int
	SendBuffer    int
}

// Gateway binds websocket connections to rooms and turns inbound events into
// room operations.
type Gateway struct {
	registry *Registry
	metrics  *metrics.Metrics
	upgrader websocket.Upgrader

	chatRate   rate.Limit
	chatBurst  int
	sendBuffer int
}

func NewGateway(registry *Registry, m *metrics.Metrics, opts GatewayOptions) *Gateway {
	if opts.ChatRate <= 0 {
		opts.ChatRate = 2
	}
	if opts.ChatBurst <= 0 {
		opts.ChatBurst = 5
	}
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 256
	}

	allowed := opts.AllowedOrigin
	return &Gateway{
		registry: registry,
		metrics:  m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if allowed == "" || allowed == "*" {
					return true
				}
				return r.Header.Get("Origin") == allowed
			},
		},
		chatRate:   rate.Limit(opts.ChatRate),
		chatBurst:  opts.ChatBurst,
		sendBuffer: opts.SendBuffer,
	}
}

// session is the per-connection binding. Only the read loop touches it.
type session struct {
	client *Client
	room   *Room
	player *internal.Player
}

// HandleWebSocket upgrades the request and serves the connection until it
// closes. The client must send a join event before anything else.
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("[HandleWebSocket] upgrade failed")
		return
	}

	client := newClient(uuid.NewString(), conn, g.sendBuffer, rate.NewLimiter(g.chatRate, g.chatBurst))
	log.Debug().Str("client", client.id).Str("remote", r.RemoteAddr).Msg("[HandleWebSocket] connection opened")

	go client.writePump()
	g.readLoop(&session{client: client})
}

func (g *Gateway) readLoop(s *session) {
	conn := s.client.conn
	defer func() {
		g.detach(s)
		s.client.Close(websocket.CloseNormalClosure, "")
		log.Debug().Str("client", s.client.id).Msg("[readLoop] connection closed")
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("client", s.client.id).Msg("[readLoop] unexpected close")
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))

		start := time.Now()
		g.metrics.IncMessagesReceived()

		var msg internal.Message[json.RawMessage]
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Debug().Err(err).Str("client", s.client.id).Msg("[readLoop] malformed message")
			continue
		}

		err = g.dispatch(s, msg)
		g.metrics.ObserveMessageLatency(time.Since(start))

		if err != nil {
			log.Warn().Err(err).Str("client", s.client.id).Str("type", msg.Type).Msg("[readLoop] closing connection")
			s.client.Close(closeCodeFor(err), closeReason(err))
			return
		}
	}
}

// dispatch handles one event. A returned error ends the connection; faults
// that only concern the one event are logged and swallowed here.
func (g *Gateway) dispatch(s *session, msg internal.Message[json.RawMessage]) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Str("client", s.client.id).Str("type", msg.Type).
				Msg("[dispatch] recovered from panic")
			err = fmt.Errorf("internal error handling %q", msg.Type)
		}
	}()

	if msg.Type == internal.EventJoin {
		return g.handleJoin(s, msg.Data)
	}
	if s.room == nil {
		return ErrNoRoom
	}

	switch msg.Type {
	case internal.EventChoice:
		var choice internal.WordChoice
		if err := json.Unmarshal(msg.Data, &choice); err != nil {
			log.Debug().Err(err).Str("client", s.client.id).Msg("[dispatch] bad choice payload")
			return nil
		}
		return g.ignoreSoftErrors(s, s.room.Choose(s.player.Id, choice))

	case internal.EventChatMessage:
		var text string
		if err := json.Unmarshal(msg.Data, &text); err != nil {
			log.Debug().Err(err).Str("client", s.client.id).Msg("[dispatch] bad chat payload")
			return nil
		}
		if !s.client.limiter.Allow() {
			log.Debug().Str("client", s.client.id).Msg("[dispatch] chat rate limited")
			return nil
		}
		return g.ignoreSoftErrors(s, s.room.Chat(s.player.Id, text))

	default:
		if _, ok := internal.DrawingEvents[msg.Type]; ok {
			return g.ignoreSoftErrors(s, s.room.Relay(s.player.Id, msg.Type, msg.Data))
		}
		log.Debug().Str("client", s.client.id).Str("type", msg.Type).Msg("[dispatch] unknown event")
		return nil
	}
}

func (g *Gateway) handleJoin(s *session, data json.RawMessage) error {
	if s.room != nil {
		log.Debug().Str("client", s.client.id).Msg("[handleJoin] already joined, ignoring")
		return nil
	}

	var req internal.JoinRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("bad join payload: %w", err)
	}

	room, ok := g.registry.Get(req.Room)
	if !ok {
		return ErrRoomNotFound
	}

	player := internal.NewPlayer(s.client.id, req.Nick)
	if err := room.Join(player, s.client, req.Password); err != nil {
		return err
	}

	s.room = room
	s.player = player
	g.metrics.IncOnlinePlayers()
	return nil
}

// detach runs the leave operation for a connection that had joined.
func (g *Gateway) detach(s *session) {
	if s.room == nil {
		return
	}
	s.room.Leave(s.player.Id)
	g.metrics.DecOnlinePlayers()
	s.room = nil
}

// ignoreSoftErrors keeps the connection open for errors caused by a single
// out-of-turn or failed action.
func (g *Gateway) ignoreSoftErrors(s *session, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotAuthorized), errors.Is(err, ErrWrongState),
		errors.Is(err, ErrWordLookup), errors.Is(err, ErrUnknownEvent):
		log.Debug().Err(err).Str("client", s.client.id).Msg("[dispatch] action rejected")
		return nil
	default:
		return err
	}
}

func closeCodeFor(err error) int {
	switch {
	case errors.Is(err, ErrWrongPassword), errors.Is(err, ErrNoRoom):
		return websocket.ClosePolicyViolation
	case errors.Is(err, ErrRoomNotFound):
		return websocket.CloseNormalClosure
	default:
		return websocket.CloseInternalServerErr
	}
}

// close frame payloads are capped at 125 bytes, two of them the code
func closeReason(err error) string {
	reason := err.Error()
	if len(reason) > 123 {
		reason = reason[:123]
	}
	return reason
}
