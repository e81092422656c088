package game

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// =============================================================================
// TIMER MANAGEMENT
// =============================================================================

// TickerFunc returns a tick channel and a function that stops it. Tests swap
// in a channel they drive by hand.
type TickerFunc func(interval time.Duration) (<-chan time.Time, func())

func RealTicker(interval time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(interval)
	return t.C, t.Stop
}

const tickInterval = time.Second

// RoundTimer is the once-per-second countdown of a drawing phase. A room owns
// at most one; every tick carries the generation it was started with so a
// tick that races a cancellation is discarded by the room.
type RoundTimer struct {
	generation uint64
	cancel     context.CancelFunc
	done       chan struct{}
}

// Done is closed when the timer goroutine has exited.
func (t *RoundTimer) Done() <-chan struct{} {
	return t.done
}

// startTimer replaces any running timer. Caller holds r.mu.
func (r *Room) startTimer() {
	r.stopTimer()

	gen := r.generation
	ctx, cancel := context.WithCancel(context.Background())
	ticks, stop := r.newTicker(tickInterval)

	t := &RoundTimer{
		generation: gen,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	r.timer = t

	log.Debug().Str("room", r.name).Uint64("generation", gen).Msg("[startTimer] timer started")

	go func() {
		defer close(t.done)
		defer stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticks:
				r.tick(gen)
			}
		}
	}()
}

// stopTimer cancels the running timer, if any, and invalidates ticks already
// in flight. Caller holds r.mu.
func (r *Room) stopTimer() {
	r.generation++
	if r.timer == nil {
		return
	}
	r.timer.cancel()
	log.Debug().Str("room", r.name).Uint64("generation", r.timer.generation).Msg("[stopTimer] timer cancelled")
	r.timer = nil
}
