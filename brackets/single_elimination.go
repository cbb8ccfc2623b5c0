package brackets

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/kudzilenett/nhandare-server-sub002/models"
)

type SingleEliminationGenerator struct{}

func NewSingleEliminationGenerator() BracketGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// GenerateBracket builds the full elimination tree for a seed list. Round 1
// pairs seed i+1 against seed bracketSize-i, so the top seed meets the
// lowest seed and high seeds cannot meet before the late rounds. Seeds
// beyond N materialize as bye slots and are resolved immediately, cascading
// winners into round 2 at build time.
func (g *SingleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) (*models.Bracket, error) {
	if err := validateSeeds(params.Seeds, params.RegistrationCount); err != nil {
		return nil, err
	}
	seeds := orderedSeeds(params.Seeds)
	n := len(seeds)

	totalRounds := int(math.Ceil(math.Log2(float64(n))))
	bracketSize := 1 << uint(totalRounds)

	bracket := &models.Bracket{
		TournamentID: params.Tournament.ID,
		Type:         models.BracketSingleElimination,
		TotalRounds:  totalRounds,
		Players:      params.Seeds,
		GeneratedAt:  time.Now().UTC(),
	}

	slotFor := func(seed int) models.SeedSlot {
		if seed <= n {
			return models.AssignedSlot(seed)
		}
		return models.ByeSlot()
	}

	// Skeleton first: round 1 fully slotted, later rounds pending, forward
	// links fixed once and never recomputed.
	for r := 1; r <= totalRounds; r++ {
		matchCount := bracketSize >> uint(r)
		round := models.Round{Number: r, Matches: make([]models.BracketMatch, matchCount)}
		for i := 0; i < matchCount; i++ {
			bm := models.BracketMatch{
				UID:         models.BracketMatchUID(r, i),
				Round:       r,
				MatchNumber: i,
				Player1Slot: models.PendingSlot(),
				Player2Slot: models.PendingSlot(),
				Status:      models.BracketMatchPending,
			}
			if r == 1 {
				bm.Player1Slot = slotFor(i + 1)
				bm.Player2Slot = slotFor(bracketSize - i)
			}
			if r < totalRounds {
				next := models.BracketMatchUID(r+1, i/2)
				bm.NextMatchUID = &next
			}
			round.Matches[i] = bm
		}
		bracket.Rounds = append(bracket.Rounds, round)
	}

	// Resolve byes round by round so a pass-through cascades as far as it
	// has to. With a dense seed list only round 1 can contain byes, but the
	// cascade is written generally.
	for r := 0; r < len(bracket.Rounds); r++ {
		for i := range bracket.Rounds[r].Matches {
			bm := &bracket.Rounds[r].Matches[i]

			if bm.Player1Slot.IsAssigned() {
				id := seeds[bm.Player1Slot.Seed-1].UserID
				bm.Player1ID = &id
			}
			if bm.Player2Slot.IsAssigned() {
				id := seeds[bm.Player2Slot.Seed-1].UserID
				bm.Player2ID = &id
			}

			switch {
			case bm.Player1Slot.IsBye() && bm.Player2Slot.IsBye():
				bm.IsBye = true
				bm.Status = models.BracketMatchCompleted
				g.propagateSlot(bracket, bm, models.ByeSlot())

			case bm.Player1Slot.IsAssigned() && bm.Player2Slot.IsBye():
				bm.IsBye = true
				bm.Status = models.BracketMatchWaiting
				bm.WinnerID = bm.Player1ID
				g.propagateSlot(bracket, bm, bm.Player1Slot)

			case bm.Player2Slot.IsAssigned() && bm.Player1Slot.IsBye():
				bm.IsBye = true
				bm.Status = models.BracketMatchWaiting
				bm.WinnerID = bm.Player2ID
				g.propagateSlot(bracket, bm, bm.Player2Slot)

			case bm.HasBothPlayers():
				bm.Status = models.BracketMatchWaiting
			}
		}
	}

	for _, round := range bracket.Rounds {
		for _, bm := range round.Matches {
			if !bm.IsBye {
				bracket.TotalMatches++
			}
		}
	}

	if err := Validate(bracket); err != nil {
		return nil, err
	}
	return bracket, nil
}

// propagateSlot writes a build-time resolved slot into the downstream node.
// Even match numbers feed player 1, odd feed player 2.
func (g *SingleEliminationGenerator) propagateSlot(b *models.Bracket, from *models.BracketMatch, slot models.SeedSlot) {
	if from.NextMatchUID == nil {
		return
	}
	target := b.FindMatch(*from.NextMatchUID)
	if target == nil {
		return
	}
	if from.MatchNumber%2 == 0 {
		target.Player1Slot = slot
	} else {
		target.Player2Slot = slot
	}
}

func (g *SingleEliminationGenerator) AdvanceWinner(bracket *models.Bracket, matchUID string, result models.MatchResult) (*AdvanceResult, error) {
	bm := bracket.FindMatch(matchUID)
	if bm == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBracketMatch, matchUID)
	}
	if bm.Status == models.BracketMatchCompleted {
		return &AdvanceResult{Duplicate: true}, nil
	}
	if bm.IsBye {
		return nil, fmt.Errorf("%w: %s is a bye", ErrMatchNotAdvanceable, matchUID)
	}
	if !bm.HasBothPlayers() {
		return nil, fmt.Errorf("%w: %s has unresolved participants", ErrMatchNotAdvanceable, matchUID)
	}

	// A draw cannot eliminate anyone. The contest goes back to the game
	// session for a replay or an external tie-break.
	if result == models.ResultDraw {
		return &AdvanceResult{Replay: true}, nil
	}

	var winnerID, loserID int
	switch result {
	case models.ResultPlayer1Win:
		winnerID, loserID = *bm.Player1ID, *bm.Player2ID
	case models.ResultPlayer2Win:
		winnerID, loserID = *bm.Player2ID, *bm.Player1ID
	default:
		return nil, fmt.Errorf("%w: result %q is not terminal", ErrMatchNotAdvanceable, result)
	}

	bm.Status = models.BracketMatchCompleted
	bm.WinnerID = &winnerID

	res := &AdvanceResult{WinnerID: &winnerID, LoserID: &loserID}

	if bm.NextMatchUID == nil {
		res.Completed = true
		res.Champion = &winnerID
		res.Placements = g.placements(bracket, winnerID, loserID)
		return res, nil
	}

	target := bracket.FindMatch(*bm.NextMatchUID)
	if target == nil {
		return nil, fmt.Errorf("%w: next match %s", ErrUnknownBracketMatch, *bm.NextMatchUID)
	}

	winnerSeed := seedOf(bracket, winnerID)
	if bm.MatchNumber%2 == 0 {
		target.Player1Slot = models.AssignedSlot(winnerSeed)
		target.Player1ID = &winnerID
	} else {
		target.Player2Slot = models.AssignedSlot(winnerSeed)
		target.Player2ID = &winnerID
	}

	// The sibling feeder may complete in either order; readiness depends
	// only on both slots being filled, not on who filled them first.
	if target.HasBothPlayers() && target.Status == models.BracketMatchPending {
		target.Status = models.BracketMatchWaiting
		res.ReadyUIDs = append(res.ReadyUIDs, target.UID)
	}

	return res, nil
}

// placements resolves podium places when the final completes: champion,
// runner-up, and the semifinal loser with the higher rating as third.
func (g *SingleEliminationGenerator) placements(b *models.Bracket, champion, runnerUp int) []Placement {
	placements := []Placement{
		{UserID: champion, Place: 1},
		{UserID: runnerUp, Place: 2},
	}

	if b.TotalRounds < 2 {
		return placements
	}

	var losers []int
	semis := b.Rounds[b.TotalRounds-2]
	for _, sm := range semis.Matches {
		if sm.IsBye || sm.WinnerID == nil || !sm.HasBothPlayers() {
			continue
		}
		if *sm.WinnerID == *sm.Player1ID {
			losers = append(losers, *sm.Player2ID)
		} else {
			losers = append(losers, *sm.Player1ID)
		}
	}

	if len(losers) == 0 {
		return placements
	}
	third := losers[0]
	if len(losers) == 2 {
		if ratingOf(b, losers[1]) > ratingOf(b, third) {
			third = losers[1]
		}
	}
	return append(placements, Placement{UserID: third, Place: 3})
}

func seedOf(b *models.Bracket, userID int) int {
	for _, p := range b.Players {
		if p.UserID == userID {
			return p.SeedNumber
		}
	}
	return 0
}

func ratingOf(b *models.Bracket, userID int) int {
	for _, p := range b.Players {
		if p.UserID == userID {
			return p.Rating
		}
	}
	return 0
}
