package game

const (
	GuesserBasePoints  = 100
	GuesserStepPenalty = 10
	GuesserMinPoints   = 10
	DrawerFirstPoints  = 100
	DrawerLaterPoints  = 10
)

// GuesserPoints is what a correct guesser earns when guessedBefore players
// already got the word this round.
func GuesserPoints(guessedBefore int) int {
	return max(GuesserBasePoints-GuesserStepPenalty*guessedBefore, GuesserMinPoints)
}

// DrawerPoints rewards the drawer once per correct guess, most for the first.
func DrawerPoints(guessedBefore int) int {
	if guessedBefore == 0 {
		return DrawerFirstPoints
	}
	return DrawerLaterPoints
}
