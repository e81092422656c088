package game

import (
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/leaguedraw/internal"
	"github.com/scythe504/leaguedraw/internal/metrics"
	"github.com/scythe504/leaguedraw/internal/words"
)

// =============================================================================
// ROOM
// =============================================================================

// Sender receives outbound messages for one connection. Send must not block.
type Sender interface {
	Send(msg internal.Message[any])
}

type member struct {
	player *internal.Player
	out    Sender
}

// Room is one game. Every field below mu is guarded by it, and every outbound
// message is enqueued while it is held so clients see events in order.
type Room struct {
	mu sync.Mutex

	name     string
	password string
	words    []internal.WordChoice
	maxTime  int

	players     []*member
	drawerIndex int
	guessed     []string
	word        *internal.WordData
	choices     []internal.WordData
	time        int
	paused      bool
	state       internal.RoomState

	timer      *RoundTimer
	generation uint64

	registry      *Registry
	bank          words.Bank
	metrics       *metrics.Metrics
	rng           *rand.Rand
	newTicker     TickerFunc
	lookupTimeout time.Duration
}

func newRoom(settings internal.RoomSettings, reg *Registry) *Room {
	return &Room{
		name:          settings.Name,
		password:      settings.Password,
		words:         slices.Clone(settings.Words),
		maxTime:       settings.MaxTime,
		drawerIndex:   -1,
		state:         internal.StateIdle,
		registry:      reg,
		bank:          reg.bank,
		metrics:       reg.opts.Metrics,
		rng:           reg.opts.NewRand(),
		newTicker:     reg.opts.Ticker,
		lookupTimeout: reg.opts.LookupTimeout,
	}
}

func (r *Room) Name() string {
	return r.name
}

// Join adds a player and starts the first round once a second player is in.
func (r *Room) Join(player *internal.Player, out Sender, password string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == internal.StateClosed {
		return ErrRoomNotFound
	}
	if r.password != "" && password != r.password {
		log.Warn().Str("room", r.name).Str("player", player.Id).Msg("[Join] wrong password")
		return ErrWrongPassword
	}
	if r.member(player.Id) != nil {
		return ErrAlreadyJoined
	}

	m := &member{player: player, out: out}
	r.players = append(r.players, m)

	log.Info().Str("room", r.name).Str("player", player.Id).Str("name", player.Name).
		Int("players", len(r.players)).Msg("[Join] player joined")

	r.sendTo(m, internal.EventPlayers, r.roster())
	r.broadcastExcept(player.Id, internal.EventJoin, player.Snapshot())

	if len(r.players) == internal.MinPlayersForRound && r.state == internal.StateIdle {
		r.startRound()
	}
	return nil
}

// Leave removes a player. Leaving is idempotent; the last one out closes the
// room and drops it from the registry.
func (r *Room) Leave(playerId string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == internal.StateClosed {
		return
	}
	idx := r.indexOf(playerId)
	if idx < 0 {
		return
	}

	wasDrawer := idx == r.drawerIndex && r.state != internal.StateIdle
	r.players = slices.Delete(r.players, idx, idx+1)
	r.guessed = slices.DeleteFunc(r.guessed, func(id string) bool { return id == playerId })
	if idx <= r.drawerIndex {
		r.drawerIndex--
	}

	log.Info().Str("room", r.name).Str("player", playerId).
		Int("players", len(r.players)).Bool("was_drawer", wasDrawer).Msg("[Leave] player left")

	if len(r.players) == 0 {
		r.closeLocked()
		r.registry.remove(r.name, r)
		return
	}

	r.broadcast(internal.EventLeave, playerId)

	if wasDrawer {
		if len(r.players) == 1 {
			r.endRoundAlone()
		} else {
			r.startRound()
		}
		return
	}

	if r.state == internal.StateDrawing && len(r.players) >= internal.MinPlayersForRound &&
		len(r.guessed) == len(r.players)-1 {
		log.Info().Str("room", r.name).Msg("[Leave] remaining players have all guessed")
		r.startRound()
	}
}

// Close stops the room for good. Used when the registry drops a room that
// still has players.
func (r *Room) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closeLocked()
}

func (r *Room) closeLocked() {
	if r.state == internal.StateClosed {
		return
	}
	r.stopTimer()
	r.state = internal.StateClosed
	r.word = nil
	r.choices = nil
	r.guessed = nil
	log.Info().Str("room", r.name).Msg("[closeLocked] room closed")
}

// roster is the full room state sent to a joiner and after every score change.
func (r *Room) roster() internal.PlayersData {
	data := internal.PlayersData{
		Players: make([]internal.Player, 0, len(r.players)),
		Drawing: r.state == internal.StateDrawing,
		MaxTime: r.maxTime,
		Time:    r.time,
		Paused:  r.paused,
	}
	for _, m := range r.players {
		data.Players = append(data.Players, m.player.Snapshot())
	}
	if d := r.currentDrawer(); d != nil {
		data.DrawerId = d.player.Id
	}
	return data
}

// Players returns a snapshot of the roster in join order.
func (r *Room) Players() []internal.Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.roster().Players
}

func (r *Room) State() internal.RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Room) member(playerId string) *member {
	if idx := r.indexOf(playerId); idx >= 0 {
		return r.players[idx]
	}
	return nil
}

func (r *Room) indexOf(playerId string) int {
	return slices.IndexFunc(r.players, func(m *member) bool { return m.player.Id == playerId })
}

// currentDrawer is nil while the room is idle.
func (r *Room) currentDrawer() *member {
	if r.state == internal.StateIdle || r.state == internal.StateClosed {
		return nil
	}
	if r.drawerIndex < 0 || r.drawerIndex >= len(r.players) {
		return nil
	}
	return r.players[r.drawerIndex]
}
