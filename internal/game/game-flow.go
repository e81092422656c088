package game

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/leaguedraw/internal"
	"github.com/scythe504/leaguedraw/internal/utils"
	"github.com/scythe504/leaguedraw/internal/words"
)

// =============================================================================
// ROUND LIFECYCLE
// =============================================================================

// startRound closes out the current round and hands the turn to the next
// drawer, offering them up to three words from the room's pool. If none of
// the candidates resolve the room stays in Choosing until a leave, a join
// after idling, or a timeout moves it on. Caller holds r.mu.
func (r *Room) startRound() {
	if len(r.players) == 0 {
		return
	}

	if r.word != nil {
		r.broadcast(internal.EventRoundEnd, r.word.Word)
	}
	r.stopTimer()
	r.word = nil
	r.choices = nil
	r.guessed = nil
	r.time = 0

	r.drawerIndex = (r.drawerIndex + 1) % len(r.players)
	drawer := r.players[r.drawerIndex]
	r.state = internal.StateChoosing
	r.metrics.IncRoundsStarted()

	log.Info().Str("room", r.name).Str("drawer", drawer.player.Id).
		Int("drawer_index", r.drawerIndex).Msg("[startRound] round started")

	r.broadcast(internal.EventRoundStart, internal.RoundStartData{
		DrawerId: drawer.player.Id,
		MaxTime:  r.maxTime,
	})

	if len(r.words) == 0 {
		log.Error().Str("room", r.name).Msg("[startRound] room has an empty word pool")
		return
	}

	candidates := utils.SampleWithReplacement(r.rng, r.words, internal.ChoicesPerRound)

	ctx, cancel := context.WithTimeout(context.Background(), r.lookupTimeout)
	defer cancel()

	for _, c := range candidates {
		w, err := r.bank.Lookup(ctx, c)
		if err != nil {
			r.metrics.IncWordLookupFailures()
			log.Error().Err(err).Str("room", r.name).Str("category", c.Category).Str("id", c.Id).
				Msg("[startRound] word lookup failed, skipping candidate")
			continue
		}
		w.Id = c.Id
		r.choices = append(r.choices, words.FormatSubtext(w, c.Category))
	}

	if len(r.choices) == 0 {
		log.Error().Str("room", r.name).Msg("[startRound] no word could be resolved, room is waiting")
		return
	}

	r.sendTo(drawer, internal.EventChoose, r.choices)
}

// Choose commits the drawer's pick and starts the drawing phase.
func (r *Room) Choose(playerId string, choice internal.WordChoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == internal.StateClosed {
		return ErrRoomNotFound
	}
	drawer := r.currentDrawer()
	if drawer == nil || drawer.player.Id != playerId {
		return ErrNotAuthorized
	}
	if r.state != internal.StateChoosing {
		return ErrWrongState
	}
	if !slices.ContainsFunc(r.choices, func(w internal.WordData) bool { return w.Choice() == choice }) {
		log.Warn().Str("room", r.name).Str("player", playerId).Str("id", choice.Id).
			Msg("[Choose] choice was not offered")
		return ErrNotAuthorized
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.lookupTimeout)
	defer cancel()

	row, err := r.bank.Lookup(ctx, choice)
	if err != nil {
		r.metrics.IncWordLookupFailures()
		log.Error().Err(err).Str("room", r.name).Str("id", choice.Id).Msg("[Choose] word lookup failed")
		return fmt.Errorf("%w: %w", ErrWordLookup, err)
	}
	row.Id = choice.Id
	w := words.FormatSubtext(row, choice.Category)

	r.guessed = nil
	r.choices = nil
	r.word = &w
	r.time = r.maxTime
	r.state = internal.StateDrawing

	log.Info().Str("room", r.name).Str("drawer", playerId).Str("category", w.Category).
		Msg("[Choose] word chosen, drawing phase started")

	r.broadcast(internal.EventTime, r.time)
	if r.timer == nil {
		r.startTimer()
	}
	r.broadcast(internal.EventRound, internal.HintData{
		Category: w.Category,
		Word:     utils.GetMaskedWord(w.Word),
	})
	r.sendTo(drawer, internal.EventDrawer, w)

	return nil
}

// tick advances the countdown for timer generation gen. Ticks from a
// cancelled timer are ignored.
func (r *Room) tick(gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if gen != r.generation || r.state != internal.StateDrawing || r.time <= 0 {
		return
	}

	r.time--
	r.broadcast(internal.EventTime, r.time)

	if r.time == 0 {
		log.Info().Str("room", r.name).Msg("[tick] time is up")
		r.startRound()
	}
}

// endRoundAlone drops back to Idle when the drawer leaves a single player
// behind. The next join starts a fresh round. Caller holds r.mu.
func (r *Room) endRoundAlone() {
	if r.word != nil {
		r.broadcast(internal.EventRoundEnd, r.word.Word)
	}
	r.stopTimer()
	r.word = nil
	r.choices = nil
	r.guessed = nil
	r.time = 0
	r.state = internal.StateIdle

	log.Info().Str("room", r.name).Msg("[endRoundAlone] drawer left, waiting for players")
}
