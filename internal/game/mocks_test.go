package game

import (
	"context"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/scythe504/leaguedraw/internal"
	"github.com/scythe504/leaguedraw/internal/words"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Sender ---

type recorder struct {
	mu   sync.Mutex
	msgs []internal.Message[any]
}

func (r *recorder) Send(msg internal.Message[any]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *recorder) events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.msgs))
	for _, m := range r.msgs {
		out = append(out, m.Type)
	}
	return out
}

func (r *recorder) all(eventType string) []internal.Message[any] {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []internal.Message[any]
	for _, m := range r.msgs {
		if m.Type == eventType {
			out = append(out, m)
		}
	}
	return out
}

func (r *recorder) last(t *testing.T, eventType string) internal.Message[any] {
	t.Helper()
	msgs := r.all(eventType)
	require.NotEmpty(t, msgs, "no %q message recorded", eventType)
	return msgs[len(msgs)-1]
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = nil
}

// --- Bank ---

type MockBank struct {
	mock.Mock
}

func (m *MockBank) Lookup(ctx context.Context, choice internal.WordChoice) (internal.WordData, error) {
	args := m.Called(ctx, choice)
	return args.Get(0).(internal.WordData), args.Error(1)
}

func (m *MockBank) Pool(ctx context.Context, categories []string) ([]internal.WordChoice, error) {
	args := m.Called(ctx, categories)
	return args.Get(0).([]internal.WordChoice), args.Error(1)
}

// --- Ticker ---

// manualTicker hands out tick channels that only fire when the test says so.
type manualTicker struct {
	mu    sync.Mutex
	chans []chan time.Time
}

func (m *manualTicker) new(time.Duration) (<-chan time.Time, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan time.Time)
	m.chans = append(m.chans, ch)
	return ch, func() {}
}

// fire blocks until the newest timer goroutine takes the tick.
func (m *manualTicker) fire() {
	m.mu.Lock()
	ch := m.chans[len(m.chans)-1]
	m.mu.Unlock()
	ch <- time.Now()
}

func (m *manualTicker) started() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.chans)
}

// --- fixtures ---

var abc = internal.WordChoice{Id: "1", Category: words.CategoryChampions}

func newTestRegistry(bank words.Bank, ticker *manualTicker) *Registry {
	return NewRegistry(bank, Options{
		LookupTimeout: time.Second,
		Ticker:        ticker.new,
		NewRand:       func() *rand.Rand { return rand.New(rand.NewPCG(1, 2)) },
	})
}

// newABCRoom creates a room whose only word is "abc" with a 60 second round.
func newABCRoom(t *testing.T) (*Room, *manualTicker) {
	t.Helper()
	bank := words.NewMemoryBank(internal.WordData{Id: "1", Category: words.CategoryChampions, Word: "abc"})
	ticker := &manualTicker{}
	room, err := newTestRegistry(bank, ticker).Create("room", "", []internal.WordChoice{abc}, 60)
	require.NoError(t, err)
	return room, ticker
}

func join(t *testing.T, room *Room, id, name string) *recorder {
	t.Helper()
	rec := &recorder{}
	require.NoError(t, room.Join(internal.NewPlayer(id, name), rec, ""))
	return rec
}

func points(room *Room) map[string]int {
	out := make(map[string]int)
	for _, p := range room.Players() {
		out[p.Name] = p.Points
	}
	return out
}

func drawerId(room *Room) string {
	room.mu.Lock()
	defer room.mu.Unlock()
	if d := room.currentDrawer(); d != nil {
		return d.player.Id
	}
	return ""
}

func generation(room *Room) uint64 {
	room.mu.Lock()
	defer room.mu.Unlock()
	return room.generation
}

func remaining(room *Room) int {
	room.mu.Lock()
	defer room.mu.Unlock()
	return room.time
}
