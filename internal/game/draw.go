package game

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/leaguedraw/internal"
)

// =============================================================================
// DRAWING RELAY & BROADCAST HELPERS
// =============================================================================

// Relay forwards a drawing event from the current drawer to everyone else.
// The payload is passed through untouched.
func (r *Room) Relay(playerId, event string, data json.RawMessage) error {
	if _, ok := internal.DrawingEvents[event]; !ok {
		return ErrUnknownEvent
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == internal.StateClosed {
		return ErrRoomNotFound
	}
	drawer := r.currentDrawer()
	if drawer == nil || drawer.player.Id != playerId {
		log.Debug().Str("room", r.name).Str("player", playerId).Str("event", event).
			Msg("[Relay] drawing event from non-drawer dropped")
		return ErrNotAuthorized
	}

	r.broadcastExcept(playerId, event, data)
	return nil
}

// The helpers below enqueue without blocking and must be called with r.mu held.

func (r *Room) broadcast(eventType string, data any) {
	msg := internal.NewMessage(eventType, data)
	for _, m := range r.players {
		m.out.Send(msg)
	}
}

func (r *Room) broadcastExcept(excludeId, eventType string, data any) {
	msg := internal.NewMessage(eventType, data)
	for _, m := range r.players {
		if m.player.Id == excludeId {
			continue
		}
		m.out.Send(msg)
	}
}

func (r *Room) sendTo(m *member, eventType string, data any) {
	if m == nil {
		return
	}
	m.out.Send(internal.NewMessage(eventType, data))
}

// sendToSenderAndDrawer keeps near-miss guesses between the guesser and the
// drawer.
func (r *Room) sendToSenderAndDrawer(sender, drawer *member, eventType string, data any) {
	r.sendTo(sender, eventType, data)
	if drawer != nil && drawer != sender {
		r.sendTo(drawer, eventType, data)
	}
}
