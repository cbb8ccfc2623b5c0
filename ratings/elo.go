// Package ratings implements the ELO update applied after every rated
// (non-bye) tournament match.
package ratings

import "math"

const (
	// MinRating is the floor below which no result can push a player.
	MinRating = 100

	// ScoreWin, ScoreDraw, ScoreLoss are the actual-score values.
	ScoreWin  = 1.0
	ScoreDraw = 0.5
	ScoreLoss = 0.0
)

// ExpectedScore returns the probability-like expected outcome for a player
// against an opponent: 1 / (1 + 10^((opponent-player)/400)).
func ExpectedScore(rating, opponentRating int) float64 {
	return 1.0 / (1.0 + math.Pow(10, float64(opponentRating-rating)/400.0))
}

// KFactor picks the sensitivity constant by experience and strength. New
// players move fast, established strong players move slowly. Both sides of a
// match compute their K independently; asymmetric K is intentional.
func KFactor(rating, gamesPlayed int) int {
	switch {
	case gamesPlayed < 30:
		return 40
	case rating < 2100:
		return 32
	case rating < 2400:
		return 24
	default:
		return 16
	}
}

// NewRating applies one game result (score 1, 0.5 or 0) to a rating.
func NewRating(rating, opponentRating int, score float64, gamesPlayed int) int {
	k := float64(KFactor(rating, gamesPlayed))
	expected := ExpectedScore(rating, opponentRating)
	updated := int(math.Round(float64(rating) + k*(score-expected)))
	if updated < MinRating {
		return MinRating
	}
	return updated
}
