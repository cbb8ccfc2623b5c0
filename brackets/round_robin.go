package brackets

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/kudzilenett/nhandare-server-sub002/models"
)

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() BracketGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// GenerateBracket schedules all N*(N-1)/2 pairings with the circle method:
// seed 1 stays fixed while the rest rotate one position per round, giving
// N-1 rounds for even N. An odd field plays N rounds with a rotating bye
// (the ghost opponent).
func (g *RoundRobinGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) (*models.Bracket, error) {
	if err := validateSeeds(params.Seeds, params.RegistrationCount); err != nil {
		return nil, err
	}
	seeds := orderedSeeds(params.Seeds)
	n := len(seeds)

	// Circle of seed numbers, 0 is the ghost for odd fields.
	circle := make([]int, 0, n+1)
	for s := 1; s <= n; s++ {
		circle = append(circle, s)
	}
	if n%2 != 0 {
		circle = append(circle, 0)
	}
	size := len(circle)
	totalRounds := size - 1

	bracket := &models.Bracket{
		TournamentID: params.Tournament.ID,
		Type:         models.BracketRoundRobin,
		TotalRounds:  totalRounds,
		TotalMatches: n * (n - 1) / 2,
		Players:      params.Seeds,
		Standings:    initStandings(seeds),
		GeneratedAt:  time.Now().UTC(),
	}

	for r := 1; r <= totalRounds; r++ {
		round := models.Round{Number: r}
		for i := 0; i < size/2; i++ {
			s1, s2 := circle[i], circle[size-1-i]
			bm := models.BracketMatch{
				UID:         models.BracketMatchUID(r, len(round.Matches)),
				Round:       r,
				MatchNumber: len(round.Matches),
			}
			if s1 == 0 || s2 == 0 {
				real := s1 + s2
				bm.IsBye = true
				bm.Status = models.BracketMatchCompleted
				bm.Player1Slot = models.AssignedSlot(real)
				bm.Player2Slot = models.ByeSlot()
				id := seeds[real-1].UserID
				bm.Player1ID = &id
				if st := bracket.Standing(id); st != nil {
					st.Byes++
				}
			} else {
				bm.Status = models.BracketMatchWaiting
				bm.Player1Slot = models.AssignedSlot(s1)
				bm.Player2Slot = models.AssignedSlot(s2)
				id1, id2 := seeds[s1-1].UserID, seeds[s2-1].UserID
				bm.Player1ID = &id1
				bm.Player2ID = &id2
			}
			round.Matches = append(round.Matches, bm)
		}
		bracket.Rounds = append(bracket.Rounds, round)

		// Rotate everyone but the first position.
		last := circle[size-1]
		copy(circle[2:], circle[1:size-1])
		circle[1] = last
	}

	if err := Validate(bracket); err != nil {
		return nil, err
	}
	return bracket, nil
}

// AdvanceWinner records a result into the standings. Round robin has no
// advancement graph: the bracket completes when every scheduled contest has
// a terminal result, and placements come from points.
func (g *RoundRobinGenerator) AdvanceWinner(bracket *models.Bracket, matchUID string, result models.MatchResult) (*AdvanceResult, error) {
	bm := bracket.FindMatch(matchUID)
	if bm == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBracketMatch, matchUID)
	}
	if bm.Status == models.BracketMatchCompleted {
		return &AdvanceResult{Duplicate: true}, nil
	}
	if bm.IsBye || !bm.HasBothPlayers() {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotAdvanceable, matchUID)
	}

	res := &AdvanceResult{}
	if err := recordStandingsResult(bracket, bm, result, res); err != nil {
		return nil, err
	}

	if allMatchesCompleted(bracket) {
		res.Completed = true
		res.Placements = standingsPlacements(bracket)
		champion := res.Placements[0].UserID
		res.Champion = &champion
	}
	return res, nil
}

func initStandings(seeds []models.PlayerSeed) []models.BracketStanding {
	standings := make([]models.BracketStanding, len(seeds))
	for i, s := range seeds {
		standings[i] = models.BracketStanding{UserID: s.UserID, SeedNumber: s.SeedNumber}
	}
	return standings
}

// recordStandingsResult applies one terminal result to the match node and
// the standings. Draws are terminal here: half a point each.
func recordStandingsResult(b *models.Bracket, bm *models.BracketMatch, result models.MatchResult, res *AdvanceResult) error {
	p1, p2 := b.Standing(*bm.Player1ID), b.Standing(*bm.Player2ID)
	if p1 == nil || p2 == nil {
		return fmt.Errorf("%w: %s references players outside the standings", ErrUnresolvedInvariant, bm.UID)
	}

	switch result {
	case models.ResultPlayer1Win:
		bm.WinnerID = bm.Player1ID
		p1.Points, p1.Wins = p1.Points+1, p1.Wins+1
		p2.Losses++
		res.WinnerID, res.LoserID = bm.Player1ID, bm.Player2ID
	case models.ResultPlayer2Win:
		bm.WinnerID = bm.Player2ID
		p2.Points, p2.Wins = p2.Points+1, p2.Wins+1
		p1.Losses++
		res.WinnerID, res.LoserID = bm.Player2ID, bm.Player1ID
	case models.ResultDraw:
		p1.Points, p1.Draws = p1.Points+0.5, p1.Draws+1
		p2.Points, p2.Draws = p2.Points+0.5, p2.Draws+1
	default:
		return fmt.Errorf("%w: result %q is not terminal", ErrMatchNotAdvanceable, result)
	}

	bm.Status = models.BracketMatchCompleted
	return nil
}

func allMatchesCompleted(b *models.Bracket) bool {
	for _, round := range b.Rounds {
		for _, bm := range round.Matches {
			if bm.Status != models.BracketMatchCompleted {
				return false
			}
		}
	}
	return true
}

// standingsPlacements ranks every player: points, then wins, then the better
// (lower) seed.
func standingsPlacements(b *models.Bracket) []Placement {
	ranked := make([]models.BracketStanding, len(b.Standings))
	copy(ranked, b.Standings)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Points != ranked[j].Points {
			return ranked[i].Points > ranked[j].Points
		}
		if ranked[i].Wins != ranked[j].Wins {
			return ranked[i].Wins > ranked[j].Wins
		}
		return ranked[i].SeedNumber < ranked[j].SeedNumber
	})

	placements := make([]Placement, len(ranked))
	for i, st := range ranked {
		placements[i] = Placement{UserID: st.UserID, Place: i + 1}
	}
	return placements
}
