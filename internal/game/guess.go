package game

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/rs/zerolog/log"
	"github.com/scythe504/leaguedraw/internal"
	"github.com/scythe504/leaguedraw/internal/utils"
)

// =============================================================================
// GUESS HANDLING
// =============================================================================

type Verdict int

const (
	VerdictNone Verdict = iota
	VerdictExact
	VerdictClose
	VerdictContains
)

func (v Verdict) String() string {
	switch v {
	case VerdictExact:
		return "exact"
	case VerdictClose:
		return "close"
	case VerdictContains:
		return "contains"
	default:
		return "none"
	}
}

type Evaluation struct {
	Verdict Verdict
	// Matched holds the word's own tokens, as written, that the guess hit.
	Matched []string
}

// Evaluate classifies a chat message against the active word. Comparison is
// case-insensitive; an edit distance of one counts as close.
func Evaluate(message, word string) Evaluation {
	msg := strings.ToLower(message)
	target := strings.ToLower(word)

	if target == "" {
		return Evaluation{Verdict: VerdictNone}
	}
	if msg == target {
		return Evaluation{Verdict: VerdictExact}
	}
	if levenshtein.ComputeDistance(msg, target) <= 1 {
		return Evaluation{Verdict: VerdictClose}
	}
	if matched := matchingTokens(message, word); len(matched) > 0 {
		return Evaluation{Verdict: VerdictContains, Matched: matched}
	}
	return Evaluation{Verdict: VerdictNone}
}

func matchingTokens(message, word string) []string {
	guessed := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(message)) {
		if cleaned := utils.StripNonAlphanumeric(tok); cleaned != "" {
			guessed[cleaned] = struct{}{}
		}
	}
	if len(guessed) == 0 {
		return nil
	}

	var matched []string
	for _, tok := range strings.Fields(word) {
		cleaned := utils.StripNonAlphanumeric(strings.ToLower(tok))
		if cleaned == "" {
			continue
		}
		if _, ok := guessed[cleaned]; ok {
			matched = append(matched, tok)
		}
	}
	return matched
}

// Chat routes a chat message. While a word is being drawn the message is
// evaluated as a guess; otherwise it is plain room chat.
func (r *Room) Chat(playerId, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == internal.StateClosed {
		return ErrRoomNotFound
	}
	sender := r.member(playerId)
	if sender == nil {
		return ErrNotInRoom
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}

	chat := internal.ChatData{Player: sender.player.Name, Text: text}

	if r.state != internal.StateDrawing || r.word == nil {
		r.broadcast(internal.EventChatMessage, chat)
		return nil
	}

	drawer := r.currentDrawer()
	isDrawer := drawer != nil && drawer.player.Id == playerId
	if r.hasGuessed(playerId) || (isDrawer && len(r.players) > 1) {
		log.Debug().Str("room", r.name).Str("player", playerId).
			Msg("[Chat] message from drawer or finished guesser dropped")
		return nil
	}

	eval := Evaluate(text, r.word.Word)
	r.metrics.IncGuess(eval.Verdict.String())

	switch eval.Verdict {
	case VerdictExact:
		if isDrawer {
			// lone drawer typed the answer; nothing to score
			return nil
		}
		r.guessCorrect(sender)
	case VerdictClose:
		r.sendToSenderAndDrawer(sender, drawer, internal.EventChatMessage, chat)
		r.sendTo(sender, internal.EventClose, text)
	case VerdictContains:
		r.sendToSenderAndDrawer(sender, drawer, internal.EventChatMessage, chat)
		r.sendTo(sender, internal.EventContains, eval.Matched)
	default:
		r.broadcast(internal.EventChatMessage, chat)
	}

	return nil
}

// guessCorrect scores a correct guess and ends the round once every
// non-drawer has it. Caller holds r.mu.
func (r *Room) guessCorrect(guesser *member) {
	before := len(r.guessed)
	guesserPoints := GuesserPoints(before)
	drawerPoints := DrawerPoints(before)

	guesser.player.AddPoints(guesserPoints)
	if drawer := r.currentDrawer(); drawer != nil {
		drawer.player.AddPoints(drawerPoints)
	}
	r.guessed = append(r.guessed, guesser.player.Id)

	log.Info().Str("room", r.name).Str("player", guesser.player.Id).
		Int("position", before+1).Int("points", guesserPoints).
		Msg("[guessCorrect] correct guess")

	r.broadcast(internal.EventGuessed, guesser.player.Name)
	r.broadcast(internal.EventPlayers, r.roster())

	if len(r.guessed) == len(r.players)-1 {
		log.Info().Str("room", r.name).Msg("[guessCorrect] everyone guessed, ending round early")
		r.startRound()
	}
}

func (r *Room) hasGuessed(playerId string) bool {
	for _, id := range r.guessed {
		if id == playerId {
			return true
		}
	}
	return false
}
