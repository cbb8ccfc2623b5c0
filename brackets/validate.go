package brackets

import (
	"fmt"
	"math"

	"github.com/kudzilenett/nhandare-server-sub002/models"
)

// Validate re-checks structural invariants after a build. A bracket failing
// any of these is rejected before anything is persisted: the engine makes a
// half-seeded first round unreachable instead of repairable.
func Validate(b *models.Bracket) error {
	n := len(b.Players)
	if n < 2 {
		return fmt.Errorf("%w: only %d players", ErrUnresolvedInvariant, n)
	}

	seen := make(map[int]bool, n)
	for _, p := range b.Players {
		if p.SeedNumber < 1 || p.SeedNumber > n || seen[p.SeedNumber] {
			return fmt.Errorf("%w: seed numbering is not dense 1..%d", ErrUnresolvedInvariant, n)
		}
		seen[p.SeedNumber] = true
	}

	switch b.Type {
	case models.BracketSingleElimination:
		return validateSingleElimination(b, n)
	case models.BracketRoundRobin, models.BracketSwiss:
		return validateRoundBased(b)
	default:
		return fmt.Errorf("%w: %q", ErrInvalidBracketType, b.Type)
	}
}

func validateSingleElimination(b *models.Bracket, n int) error {
	wantRounds := int(math.Ceil(math.Log2(float64(n))))
	if b.TotalRounds != wantRounds || len(b.Rounds) != wantRounds {
		return fmt.Errorf("%w: expected %d rounds for %d players, got %d", ErrUnresolvedInvariant, wantRounds, n, b.TotalRounds)
	}
	if b.TotalMatches != n-1 {
		return fmt.Errorf("%w: expected %d playable matches for %d players, got %d", ErrUnresolvedInvariant, n-1, n, b.TotalMatches)
	}

	sinks := 0
	for ri, round := range b.Rounds {
		wantMatches := 1 << uint(wantRounds-round.Number)
		if round.Number != ri+1 || len(round.Matches) != wantMatches {
			return fmt.Errorf("%w: round %d has %d matches, expected %d", ErrUnresolvedInvariant, round.Number, len(round.Matches), wantMatches)
		}

		for mi, bm := range round.Matches {
			if bm.MatchNumber != mi || bm.UID != models.BracketMatchUID(round.Number, mi) {
				return fmt.Errorf("%w: match %s has unstable position", ErrUnresolvedInvariant, bm.UID)
			}

			// The regression this validation exists for: a first-round
			// contest with exactly one participant resolved.
			if round.Number == 1 && !bm.IsBye && !bm.HasBothPlayers() {
				return fmt.Errorf("%w: round 1 match %s is missing a player", ErrUnresolvedInvariant, bm.UID)
			}

			if bm.NextMatchUID == nil {
				sinks++
				continue
			}
			want := models.BracketMatchUID(round.Number+1, mi/2)
			if *bm.NextMatchUID != want {
				return fmt.Errorf("%w: match %s links to %s, expected %s", ErrUnresolvedInvariant, bm.UID, *bm.NextMatchUID, want)
			}
			if b.FindMatch(want) == nil {
				return fmt.Errorf("%w: match %s links to missing node %s", ErrUnresolvedInvariant, bm.UID, want)
			}
		}
	}

	if sinks != 1 {
		return fmt.Errorf("%w: advancement graph has %d sinks, expected exactly one final", ErrUnresolvedInvariant, sinks)
	}
	return nil
}

func validateRoundBased(b *models.Bracket) error {
	if len(b.Rounds) == 0 {
		return fmt.Errorf("%w: bracket has no rounds", ErrUnresolvedInvariant)
	}
	for _, round := range b.Rounds {
		for _, bm := range round.Matches {
			if !bm.IsBye && !bm.HasBothPlayers() {
				return fmt.Errorf("%w: match %s is missing a player", ErrUnresolvedInvariant, bm.UID)
			}
			if bm.NextMatchUID != nil {
				return fmt.Errorf("%w: match %s has a forward link in a round-based bracket", ErrUnresolvedInvariant, bm.UID)
			}
		}
	}
	if len(b.Standings) != len(b.Players) {
		return fmt.Errorf("%w: standings cover %d of %d players", ErrUnresolvedInvariant, len(b.Standings), len(b.Players))
	}
	return nil
}
