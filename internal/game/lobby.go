package game

import (
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/leaguedraw/internal"
	"github.com/scythe504/leaguedraw/internal/metrics"
	"github.com/scythe504/leaguedraw/internal/words"
)

// =============================================================================
// ROOM REGISTRY
// =============================================================================

const DefaultLookupTimeout = 5 * time.Second

type Options struct {
	LookupTimeout time.Duration
	Ticker        TickerFunc
	// NewRand seeds each room's word sampler.
	NewRand func() *rand.Rand
	Metrics *metrics.Metrics
}

func (o Options) withDefaults() Options {
	if o.LookupTimeout <= 0 {
		o.LookupTimeout = DefaultLookupTimeout
	}
	if o.Ticker == nil {
		o.Ticker = RealTicker
	}
	if o.NewRand == nil {
		o.NewRand = func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		}
	}
	return o
}

// Registry maps room names to live rooms. Lock order is room before
// registry: a room emptying out calls back into remove while holding its own
// lock, so the registry never takes a room lock while holding mu.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	bank  words.Bank
	opts  Options
}

func NewRegistry(bank words.Bank, opts Options) *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
		bank:  bank,
		opts:  opts.withDefaults(),
	}
}

// Create registers an empty room. The name must be unused, the pool
// non-empty and the round length positive.
func (reg *Registry) Create(name, password string, pool []internal.WordChoice, maxTime int) (*Room, error) {
	if strings.TrimSpace(name) == "" || len(pool) == 0 || maxTime <= 0 {
		return nil, ErrInvalidRoom
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, exists := reg.rooms[name]; exists {
		return nil, ErrDuplicateRoom
	}

	room := newRoom(internal.RoomSettings{
		Name:     name,
		Password: password,
		Words:    pool,
		MaxTime:  maxTime,
	}, reg)
	reg.rooms[name] = room
	reg.opts.Metrics.SetActiveRooms(len(reg.rooms))

	log.Info().Str("room", name).Int("pool", len(pool)).Int("max_time", maxTime).
		Bool("password", password != "").Msg("[Create] room created")
	return room, nil
}

func (reg *Registry) Get(name string) (*Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	room, ok := reg.rooms[name]
	return room, ok
}

// Delete drops a room and stops it. Missing names are ignored.
func (reg *Registry) Delete(name string) {
	reg.mu.Lock()
	room, ok := reg.rooms[name]
	if ok {
		delete(reg.rooms, name)
		reg.opts.Metrics.SetActiveRooms(len(reg.rooms))
	}
	reg.mu.Unlock()

	if !ok {
		return
	}
	room.Close()
	log.Info().Str("room", name).Msg("[Delete] room deleted")
}

// Names lists room names, sorted.
func (reg *Registry) Names() []string {
	reg.mu.RLock()
	names := make([]string, 0, len(reg.rooms))
	for name := range reg.rooms {
		names = append(names, name)
	}
	reg.mu.RUnlock()

	slices.Sort(names)
	return names
}

func (reg *Registry) Count() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}

// remove is called by a room that just lost its last player. It only drops
// the entry if it still points at that room.
func (reg *Registry) remove(name string, room *Room) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if current, ok := reg.rooms[name]; ok && current == room {
		delete(reg.rooms, name)
		reg.opts.Metrics.SetActiveRooms(len(reg.rooms))
		log.Info().Str("room", name).Msg("[remove] empty room removed")
	}
}
