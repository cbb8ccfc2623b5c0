package brackets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kudzilenett/nhandare-server-sub002/models"
)

func generateSwiss(t *testing.T, n int) *models.Bracket {
	t.Helper()
	gen := NewSwissGenerator()
	bracket, err := gen.GenerateBracket(context.Background(), GenerateBracketParams{
		Tournament:        &models.Tournament{ID: 1, BracketType: models.BracketSwiss},
		Seeds:             testSeeds(n),
		RegistrationCount: n,
	})
	require.NoError(t, err)
	return bracket
}

// completeRound feeds one terminal result per open contest in the latest
// round. The lower (better) seed wins unless decide says otherwise.
func completeSwissRound(t *testing.T, gen BracketGenerator, bracket *models.Bracket) *AdvanceResult {
	t.Helper()
	round := bracket.Rounds[len(bracket.Rounds)-1]

	var last *AdvanceResult
	for _, bm := range round.Matches {
		node := bracket.FindMatch(bm.UID)
		if node.IsBye || node.Status == models.BracketMatchCompleted {
			continue
		}
		result := models.ResultPlayer1Win
		if node.Player2Slot.Seed < node.Player1Slot.Seed {
			result = models.ResultPlayer2Win
		}
		res, err := gen.AdvanceWinner(bracket, bm.UID, result)
		require.NoError(t, err)
		last = res
	}
	require.NotNil(t, last)
	return last
}

func TestSwissFirstRoundPairsHalves(t *testing.T) {
	bracket := generateSwiss(t, 8)

	assert.Equal(t, 3, bracket.TotalRounds)
	require.Len(t, bracket.Rounds, 1, "later rounds are paired on demand")
	require.Len(t, bracket.Rounds[0].Matches, 4)

	// Seed i meets seed i+4.
	for i, bm := range bracket.Rounds[0].Matches {
		assert.Equal(t, i+1, bm.Player1Slot.Seed)
		assert.Equal(t, i+5, bm.Player2Slot.Seed)
		assert.Equal(t, models.BracketMatchWaiting, bm.Status)
	}
}

func TestSwissOddFieldByeScoresAPoint(t *testing.T) {
	bracket := generateSwiss(t, 5)

	round := bracket.Rounds[0]
	require.Len(t, round.Matches, 3)

	bye := round.Matches[2]
	require.True(t, bye.IsBye)
	assert.Equal(t, models.BracketMatchCompleted, bye.Status)
	require.NotNil(t, bye.Player1ID)
	assert.Equal(t, 105, *bye.Player1ID)

	st := bracket.Standing(105)
	assert.Equal(t, 1.0, st.Points)
	assert.Equal(t, 1, st.Byes)
}

func TestSwissPairsNextRoundByScore(t *testing.T) {
	gen := NewSwissGenerator()
	bracket := generateSwiss(t, 8)

	res := completeSwissRound(t, gen, bracket)
	require.NotNil(t, res.NewRound)
	assert.False(t, res.Completed)
	require.Len(t, bracket.Rounds, 2)

	// Winners (seeds 1..4, one point) pair among themselves, losers among
	// themselves, and nobody replays a previous opponent.
	round2 := bracket.Rounds[1]
	require.Len(t, round2.Matches, 4)
	assert.Equal(t, 1, round2.Matches[0].Player1Slot.Seed)
	assert.Equal(t, 2, round2.Matches[0].Player2Slot.Seed)
	assert.Equal(t, 3, round2.Matches[1].Player1Slot.Seed)
	assert.Equal(t, 4, round2.Matches[1].Player2Slot.Seed)

	played := playedPairs(bracket)
	for pair, count := range pairingCounts(bracket) {
		assert.Equal(t, 1, count, "pair %v", pair)
	}
	assert.NotEmpty(t, played)

	// The freshly paired contests are all startable.
	assert.Len(t, res.ReadyUIDs, 4)
	for _, uid := range res.ReadyUIDs {
		assert.Equal(t, models.BracketMatchWaiting, bracket.FindMatch(uid).Status)
	}
}

func pairingCounts(b *models.Bracket) map[[2]int]int {
	counts := make(map[[2]int]int)
	for _, round := range b.Rounds {
		for _, bm := range round.Matches {
			if bm.Player1ID != nil && bm.Player2ID != nil {
				counts[pairKey(*bm.Player1ID, *bm.Player2ID)]++
			}
		}
	}
	return counts
}

func TestSwissFullTournament(t *testing.T) {
	gen := NewSwissGenerator()
	bracket := generateSwiss(t, 8)

	var res *AdvanceResult
	for i := 0; i < bracket.TotalRounds; i++ {
		res = completeSwissRound(t, gen, bracket)
	}

	require.NotNil(t, res)
	assert.True(t, res.Completed)
	require.NotNil(t, res.Champion)
	// Seed 1 wins every contest it plays.
	assert.Equal(t, 101, *res.Champion)
	assert.Len(t, res.Placements, 8)
	assert.Equal(t, 3.0, bracket.Standing(101).Points)
}

func TestSwissByeGoesToLowestStandingWithoutOne(t *testing.T) {
	gen := NewSwissGenerator()
	bracket := generateSwiss(t, 5)

	// Round 1 gave seed 5 the bye. After the round resolves, the next bye
	// must go to a different player: the lowest-standing one still owed a
	// rest.
	res := completeSwissRound(t, gen, bracket)
	require.NotNil(t, res.NewRound)

	var byes []int
	for _, round := range bracket.Rounds {
		for _, bm := range round.Matches {
			if bm.IsBye {
				byes = append(byes, *bm.Player1ID)
			}
		}
	}
	require.Len(t, byes, 2)
	assert.NotEqual(t, byes[0], byes[1])

	for _, st := range bracket.Standings {
		assert.LessOrEqual(t, st.Byes, 1, "user %d", st.UserID)
	}
}

func TestSwissDuplicateCompletionIsNoOp(t *testing.T) {
	gen := NewSwissGenerator()
	bracket := generateSwiss(t, 8)

	uid := bracket.Rounds[0].Matches[0].UID
	_, err := gen.AdvanceWinner(bracket, uid, models.ResultPlayer1Win)
	require.NoError(t, err)

	res, err := gen.AdvanceWinner(bracket, uid, models.ResultPlayer2Win)
	require.NoError(t, err)
	assert.True(t, res.Duplicate)
	assert.Equal(t, 1.0, bracket.Standing(101).Points)
}
