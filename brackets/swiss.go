package brackets

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/kudzilenett/nhandare-server-sub002/models"
)

type SwissGenerator struct{}

func NewSwissGenerator() BracketGenerator {
	return &SwissGenerator{}
}

func (g *SwissGenerator) GetName() string {
	return "Swiss"
}

// GenerateBracket builds only round 1: the top half of the seed order plays
// the bottom half (seed i meets seed i+N/2). Later rounds are paired on
// demand by AdvanceWinner once the current round has fully resolved, since
// swiss pairings depend on scores that do not exist yet.
func (g *SwissGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) (*models.Bracket, error) {
	if err := validateSeeds(params.Seeds, params.RegistrationCount); err != nil {
		return nil, err
	}
	seeds := orderedSeeds(params.Seeds)
	n := len(seeds)

	totalRounds := int(math.Ceil(math.Log2(float64(n))))

	bracket := &models.Bracket{
		TournamentID: params.Tournament.ID,
		Type:         models.BracketSwiss,
		TotalRounds:  totalRounds,
		TotalMatches: totalRounds * (n / 2),
		Players:      params.Seeds,
		Standings:    initStandings(seeds),
		GeneratedAt:  time.Now().UTC(),
	}

	half := n / 2
	round := models.Round{Number: 1}
	for i := 1; i <= half; i++ {
		round.Matches = append(round.Matches, g.pairNode(bracket, 1, len(round.Matches), seeds[i-1], seeds[i+half-1]))
	}
	if n%2 != 0 {
		round.Matches = append(round.Matches, g.byeNode(bracket, 1, len(round.Matches), seeds[n-1]))
	}
	bracket.Rounds = append(bracket.Rounds, round)

	if err := Validate(bracket); err != nil {
		return nil, err
	}
	return bracket, nil
}

func (g *SwissGenerator) pairNode(b *models.Bracket, roundNum, matchNumber int, s1, s2 models.PlayerSeed) models.BracketMatch {
	id1, id2 := s1.UserID, s2.UserID
	return models.BracketMatch{
		UID:         models.BracketMatchUID(roundNum, matchNumber),
		Round:       roundNum,
		MatchNumber: matchNumber,
		Player1Slot: models.AssignedSlot(s1.SeedNumber),
		Player2Slot: models.AssignedSlot(s2.SeedNumber),
		Player1ID:   &id1,
		Player2ID:   &id2,
		Status:      models.BracketMatchWaiting,
	}
}

// byeNode records a swiss bye, which scores as a win. A player sits out at
// most once per tournament.
func (g *SwissGenerator) byeNode(b *models.Bracket, roundNum, matchNumber int, seed models.PlayerSeed) models.BracketMatch {
	id := seed.UserID
	if st := b.Standing(id); st != nil {
		st.Byes++
		st.Points++
	}
	return models.BracketMatch{
		UID:         models.BracketMatchUID(roundNum, matchNumber),
		Round:       roundNum,
		MatchNumber: matchNumber,
		Player1Slot: models.AssignedSlot(seed.SeedNumber),
		Player2Slot: models.ByeSlot(),
		Player1ID:   &id,
		IsBye:       true,
		Status:      models.BracketMatchCompleted,
		WinnerID:    &id,
	}
}

// AdvanceWinner records the result into the standings; when the current
// round fully resolves it either pairs the next round by nearest score
// (avoiding rematches) or, after the last round, ranks final placements.
func (g *SwissGenerator) AdvanceWinner(bracket *models.Bracket, matchUID string, result models.MatchResult) (*AdvanceResult, error) {
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

	if !allMatchesCompleted(bracket) {
		return res, nil
	}

	if len(bracket.Rounds) >= bracket.TotalRounds {
		res.Completed = true
		res.Placements = standingsPlacements(bracket)
		champion := res.Placements[0].UserID
		res.Champion = &champion
		return res, nil
	}

	next := g.pairNextRound(bracket)
	bracket.Rounds = append(bracket.Rounds, *next)
	res.NewRound = next
	for _, nm := range next.Matches {
		if !nm.IsBye {
			res.ReadyUIDs = append(res.ReadyUIDs, nm.UID)
		}
	}
	return res, nil
}

// pairNextRound pairs by the current score groups: standings sorted by
// points then seed, walked top-down, each player matched with the nearest
// unpaired opponent they have not met. If every remaining opponent is a
// rematch the nearest one is taken anyway rather than leaving the round
// unpairable. An odd field gives the bye to the lowest-standing player who
// has not had one.
func (g *SwissGenerator) pairNextRound(b *models.Bracket) *models.Round {
	roundNum := len(b.Rounds) + 1
	round := &models.Round{Number: roundNum}

	ranked := make([]models.BracketStanding, len(b.Standings))
	copy(ranked, b.Standings)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Points != ranked[j].Points {
			return ranked[i].Points > ranked[j].Points
		}
		return ranked[i].SeedNumber < ranked[j].SeedNumber
	})

	played := playedPairs(b)
	seedByUser := make(map[int]models.PlayerSeed, len(b.Players))
	for _, p := range b.Players {
		seedByUser[p.UserID] = p
	}

	var byeUser *models.BracketStanding
	if len(ranked)%2 != 0 {
		for i := len(ranked) - 1; i >= 0; i-- {
			if ranked[i].Byes == 0 {
				byeUser = &ranked[i]
				ranked = append(ranked[:i:i], ranked[i+1:]...)
				break
			}
		}
		if byeUser == nil {
			byeUser = &ranked[len(ranked)-1]
			ranked = ranked[:len(ranked)-1]
		}
	}

	paired := make(map[int]bool, len(ranked))
	for i := 0; i < len(ranked); i++ {
		if paired[ranked[i].UserID] {
			continue
		}
		opponent := -1
		for j := i + 1; j < len(ranked); j++ {
			if paired[ranked[j].UserID] {
				continue
			}
			if opponent == -1 {
				opponent = j // nearest fallback, rematch or not
			}
			if !played[pairKey(ranked[i].UserID, ranked[j].UserID)] {
				opponent = j
				break
			}
		}
		if opponent == -1 {
			continue
		}
		paired[ranked[i].UserID] = true
		paired[ranked[opponent].UserID] = true
		round.Matches = append(round.Matches, g.pairNode(b, roundNum, len(round.Matches),
			seedByUser[ranked[i].UserID], seedByUser[ranked[opponent].UserID]))
	}

	if byeUser != nil {
		round.Matches = append(round.Matches, g.byeNode(b, roundNum, len(round.Matches), seedByUser[byeUser.UserID]))
	}
	return round
}

func playedPairs(b *models.Bracket) map[[2]int]bool {
	played := make(map[[2]int]bool)
	for _, round := range b.Rounds {
		for _, bm := range round.Matches {
			if bm.Player1ID != nil && bm.Player2ID != nil {
				played[pairKey(*bm.Player1ID, *bm.Player2ID)] = true
			}
		}
	}
	return played
}

func pairKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}
