package game

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/scythe504/leaguedraw/internal"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

var ErrBackpressure = errors.New("client send queue is full")

// Client is one websocket connection. Rooms only see it as a Sender; the
// write pump owns the socket for writing.
type Client struct {
	id      string
	conn    *websocket.Conn
	out     chan []byte
	done    chan struct{}
	limiter *rate.Limiter

	closeOnce   sync.Once
	closeCode   int
	closeReason string
}

func newClient(id string, conn *websocket.Conn, buffer int, limiter *rate.Limiter) *Client {
	return &Client{
		id:      id,
		conn:    conn,
		out:     make(chan []byte, buffer),
		done:    make(chan struct{}),
		limiter: limiter,
	}
}

func (c *Client) Id() string {
	return c.id
}

// Send marshals and enqueues msg. A client that cannot keep up is closed
// rather than allowed to stall the room.
func (c *Client) Send(msg internal.Message[any]) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("client", c.id).Str("type", msg.Type).Msg("[Send] marshal failed")
		return
	}

	select {
	case <-c.done:
		return
	default:
	}

	select {
	case c.out <- data:
	default:
		log.Warn().Err(ErrBackpressure).Str("client", c.id).Msg("[Send] dropping slow client")
		c.Close(websocket.ClosePolicyViolation, "too slow")
	}
}

// Close is safe to call more than once; only the first reason is sent.
func (c *Client) Close(code int, reason string) {
	c.closeOnce.Do(func() {
		c.closeCode = code
		c.closeReason = reason
		close(c.done)
	})
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data := <-c.out:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Debug().Err(err).Str("client", c.id).Msg("[writePump] write failed")
				c.Close(websocket.CloseAbnormalClosure, "")
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close(websocket.CloseAbnormalClosure, "")
				return
			}
		case <-c.done:
			c.drain()
			frame := websocket.FormatCloseMessage(c.closeCode, c.closeReason)
			c.conn.WriteControl(websocket.CloseMessage, frame, time.Now().Add(writeWait))
			return
		}
	}
}

// drain flushes whatever was queued before the close so a rejected client
// still sees the last events, bounded by the write deadline.
func (c *Client) drain() {
	for {
		select {
		case data := <-c.out:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		default:
			return
		}
	}
}
