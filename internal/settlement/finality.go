package settlement

import (
	"strings"
	"time"
)

// Game lifecycle states as settlement sees them.
const (
	StatePreTip     = "pre_tip"
	StateInProgress = "in_progress"
	StateFinal      = "final"
)

const (
	// estimatedDuration is how long an NBA game runs wall-clock.
	estimatedDuration = 2*time.Hour + 30*time.Minute

	// settlementBuffer holds settlement back after the estimated end so
	// stat providers can post their final boxscores.
	settlementBuffer = 10 * time.Minute
)

// GameState is the merged view of one game used to decide finality,
// assembled from the games cache, BDL, or ESPN.
type GameState struct {
	BDLGameID int64
	ESPNID    string
	HomeTeam  string
	AwayTeam  string
	HomeScore int
	AwayScore int
	Period    int
	Clock     string
	Status    string
	Tipoff    time.Time
	Source    string
}

// Classify decides whether a game is final, in progress, or still before
// tipoff. Checks run in order:
//  1. the status string says final;
//  2. the score sheet looks complete (both sides scored, 4th period or
//     later, no clock remaining);
//  3. enough wall-clock time has passed since tipoff that the game must
//     have ended, plus a buffer for stats to post.
func Classify(g GameState, now time.Time) string {
	if strings.Contains(strings.ToLower(g.Status), "final") {
		return StateFinal
	}

	if g.HomeScore > 0 && g.AwayScore > 0 && g.Period >= 4 && clockExpired(g.Clock) {
		return StateFinal
	}

	if !g.Tipoff.IsZero() {
		if now.After(g.Tipoff.Add(estimatedDuration + settlementBuffer)) {
			return StateFinal
		}
		if now.After(g.Tipoff) {
			return StateInProgress
		}
		return StatePreTip
	}

	// No tipoff on record: activity in the row is the only signal
	if g.HomeScore > 0 || g.AwayScore > 0 || g.Period > 0 {
		return StateInProgress
	}
	return StatePreTip
}

func clockExpired(clock string) bool {
	c := strings.TrimSpace(clock)
	return c == "" || c == "0.0" || c == "0:00" || strings.EqualFold(c, "final")
}

// ScoresAgree cross-checks two sources' final scores. Zero scores on
// either side mean that source hasn't reported and the check passes.
func ScoresAgree(a, b GameState) bool {
	if a.HomeScore == 0 && a.AwayScore == 0 {
		return true
	}
	if b.HomeScore == 0 && b.AwayScore == 0 {
		return true
	}
	return a.HomeScore == b.HomeScore && a.AwayScore == b.AwayScore
}
