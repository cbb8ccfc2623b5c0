package brackets

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kudzilenett/nhandare-server-sub002/models"
)

// testSeeds builds a dense seed list where seed s belongs to user 100+s and
// lower seeds carry higher ratings.
func testSeeds(n int) []models.PlayerSeed {
	seeds := make([]models.PlayerSeed, n)
	for i := 0; i < n; i++ {
		seeds[i] = models.PlayerSeed{
			UserID:     100 + i + 1,
			SeedNumber: i + 1,
			Rating:     2000 - i*100,
		}
	}
	return seeds
}

func generateSingleElim(t *testing.T, n int) *models.Bracket {
	t.Helper()
	gen := NewSingleEliminationGenerator()
	bracket, err := gen.GenerateBracket(context.Background(), GenerateBracketParams{
		Tournament:        &models.Tournament{ID: 1, BracketType: models.BracketSingleElimination},
		Seeds:             testSeeds(n),
		RegistrationCount: n,
	})
	require.NoError(t, err)
	return bracket
}

func TestSingleEliminationFivePlayers(t *testing.T) {
	bracket := generateSingleElim(t, 5)

	assert.Equal(t, 3, bracket.TotalRounds)
	assert.Equal(t, 4, bracket.TotalMatches)
	require.Len(t, bracket.Rounds, 3)
	assert.Len(t, bracket.Rounds[0].Matches, 4)
	assert.Len(t, bracket.Rounds[1].Matches, 2)
	assert.Len(t, bracket.Rounds[2].Matches, 1)

	// Round 1 pairs seed i+1 against seed 8-i; seeds 6..8 do not exist, so
	// seeds 1, 2 and 3 get byes.
	for i, wantBye := range []bool{true, true, true, false} {
		bm := bracket.MatchAt(1, i)
		require.NotNil(t, bm)
		assert.Equal(t, wantBye, bm.IsBye, "round 1 match %d", i)
	}

	playable := bracket.MatchAt(1, 3)
	require.NotNil(t, playable.Player1ID)
	require.NotNil(t, playable.Player2ID)
	assert.Equal(t, 104, *playable.Player1ID)
	assert.Equal(t, 105, *playable.Player2ID)
	assert.Equal(t, models.BracketMatchWaiting, playable.Status)

	// Bye winners cascade at build time: seeds 1 and 2 meet in round 2
	// immediately, seed 3 waits on the 4-vs-5 winner.
	r2m0 := bracket.MatchAt(2, 0)
	require.True(t, r2m0.HasBothPlayers())
	assert.Equal(t, 101, *r2m0.Player1ID)
	assert.Equal(t, 102, *r2m0.Player2ID)
	assert.Equal(t, models.BracketMatchWaiting, r2m0.Status)

	r2m1 := bracket.MatchAt(2, 1)
	require.NotNil(t, r2m1.Player1ID)
	assert.Equal(t, 103, *r2m1.Player1ID)
	assert.Nil(t, r2m1.Player2ID)
	assert.Equal(t, models.BracketMatchPending, r2m1.Status)
}

func TestSingleEliminationStructuralInvariants(t *testing.T) {
	for n := 2; n <= 16; n++ {
		t.Run(fmt.Sprintf("%d_players", n), func(t *testing.T) {
			bracket := generateSingleElim(t, n)

			assert.Equal(t, n-1, bracket.TotalMatches)
			require.NoError(t, Validate(bracket))

			// No first-round contest may have exactly one resolved
			// participant.
			for _, bm := range bracket.Rounds[0].Matches {
				if !bm.IsBye {
					assert.True(t, bm.HasBothPlayers(), "match %s", bm.UID)
				}
			}
		})
	}
}

func TestSingleEliminationPowerOfTwoHasNoByes(t *testing.T) {
	for _, n := range []int{2, 4, 8, 16} {
		bracket := generateSingleElim(t, n)
		for _, round := range bracket.Rounds {
			for _, bm := range round.Matches {
				assert.False(t, bm.IsBye, "match %s with %d players", bm.UID, n)
			}
		}
	}
}

func TestSingleEliminationSeedValidation(t *testing.T) {
	gen := NewSingleEliminationGenerator()
	tournament := &models.Tournament{ID: 1}

	_, err := gen.GenerateBracket(context.Background(), GenerateBracketParams{
		Tournament: tournament,
		Seeds:      testSeeds(1),
	})
	assert.ErrorIs(t, err, ErrInsufficientPlayers)

	_, err = gen.GenerateBracket(context.Background(), GenerateBracketParams{
		Tournament:        tournament,
		Seeds:             testSeeds(7),
		RegistrationCount: 8,
	})
	require.ErrorIs(t, err, ErrSeedCountMismatch)
	assert.Contains(t, err.Error(), "expected 8 players, got 7")

	// A forgotten registration count is a caller error, not a wildcard.
	_, err = gen.GenerateBracket(context.Background(), GenerateBracketParams{
		Tournament: tournament,
		Seeds:      testSeeds(4),
	})
	require.ErrorIs(t, err, ErrSeedCountMismatch)
	assert.Contains(t, err.Error(), "expected 0 players, got 4")

	dup := testSeeds(4)
	dup[3].SeedNumber = 2
	_, err = gen.GenerateBracket(context.Background(), GenerateBracketParams{
		Tournament:        tournament,
		Seeds:             dup,
		RegistrationCount: 4,
	})
	assert.ErrorIs(t, err, ErrSeedCountMismatch)
}

func TestSingleEliminationAdvancement(t *testing.T) {
	gen := NewSingleEliminationGenerator()
	bracket := generateSingleElim(t, 4)

	// 1v4 and 2v3 in round 1. Complete 1v4 first: the final is not ready
	// until its sibling feeder also resolves.
	res, err := gen.AdvanceWinner(bracket, "R1M0", models.ResultPlayer1Win)
	require.NoError(t, err)
	require.NotNil(t, res.WinnerID)
	assert.Equal(t, 101, *res.WinnerID)
	assert.Equal(t, 104, *res.LoserID)
	assert.Empty(t, res.ReadyUIDs)
	assert.False(t, res.Completed)

	final := bracket.MatchAt(2, 0)
	require.NotNil(t, final.Player1ID)
	assert.Equal(t, 101, *final.Player1ID)
	assert.Equal(t, models.BracketMatchPending, final.Status)

	res, err = gen.AdvanceWinner(bracket, "R1M1", models.ResultPlayer2Win)
	require.NoError(t, err)
	assert.Equal(t, []string{"R2M0"}, res.ReadyUIDs)
	assert.Equal(t, models.BracketMatchWaiting, final.Status)
	require.NotNil(t, final.Player2ID)
	assert.Equal(t, 103, *final.Player2ID)

	res, err = gen.AdvanceWinner(bracket, "R2M0", models.ResultPlayer2Win)
	require.NoError(t, err)
	assert.True(t, res.Completed)
	require.NotNil(t, res.Champion)
	assert.Equal(t, 103, *res.Champion)

	// Third place goes to the higher-rated semifinal loser: user 102
	// (seed 2, rating 1900) over user 104 (seed 4, rating 1700).
	require.Len(t, res.Placements, 3)
	assert.Equal(t, Placement{UserID: 103, Place: 1}, res.Placements[0])
	assert.Equal(t, Placement{UserID: 101, Place: 2}, res.Placements[1])
	assert.Equal(t, Placement{UserID: 102, Place: 3}, res.Placements[2])
}

func TestSingleEliminationSiblingOrderIndependence(t *testing.T) {
	gen := NewSingleEliminationGenerator()

	run := func(first, second string) *models.Bracket {
		bracket := generateSingleElim(t, 4)
		_, err := gen.AdvanceWinner(bracket, first, models.ResultPlayer1Win)
		require.NoError(t, err)
		_, err = gen.AdvanceWinner(bracket, second, models.ResultPlayer1Win)
		require.NoError(t, err)
		return bracket
	}

	a := run("R1M0", "R1M1")
	b := run("R1M1", "R1M0")

	fa, fb := a.MatchAt(2, 0), b.MatchAt(2, 0)
	assert.Equal(t, *fa.Player1ID, *fb.Player1ID)
	assert.Equal(t, *fa.Player2ID, *fb.Player2ID)
	assert.Equal(t, models.BracketMatchWaiting, fa.Status)
	assert.Equal(t, models.BracketMatchWaiting, fb.Status)
}

func TestSingleEliminationDuplicateCompletionIsNoOp(t *testing.T) {
	gen := NewSingleEliminationGenerator()
	bracket := generateSingleElim(t, 4)

	_, err := gen.AdvanceWinner(bracket, "R1M0", models.ResultPlayer1Win)
	require.NoError(t, err)

	res, err := gen.AdvanceWinner(bracket, "R1M0", models.ResultPlayer2Win)
	require.NoError(t, err)
	assert.True(t, res.Duplicate)

	// The original winner still stands.
	bm := bracket.MatchAt(1, 0)
	require.NotNil(t, bm.WinnerID)
	assert.Equal(t, 101, *bm.WinnerID)
}

func TestSingleEliminationDrawTriggersReplay(t *testing.T) {
	gen := NewSingleEliminationGenerator()
	bracket := generateSingleElim(t, 4)

	res, err := gen.AdvanceWinner(bracket, "R1M0", models.ResultDraw)
	require.NoError(t, err)
	assert.True(t, res.Replay)

	// Nothing eliminated, nothing propagated, the node stays playable.
	bm := bracket.MatchAt(1, 0)
	assert.Equal(t, models.BracketMatchWaiting, bm.Status)
	assert.Nil(t, bm.WinnerID)
	assert.Nil(t, bracket.MatchAt(2, 0).Player1ID)

	// A terminal replay result then advances normally.
	res, err = gen.AdvanceWinner(bracket, "R1M0", models.ResultPlayer2Win)
	require.NoError(t, err)
	assert.Equal(t, 104, *res.WinnerID)
}

func TestSingleEliminationAdvanceErrors(t *testing.T) {
	gen := NewSingleEliminationGenerator()
	bracket := generateSingleElim(t, 5)

	_, err := gen.AdvanceWinner(bracket, "R9M9", models.ResultPlayer1Win)
	assert.ErrorIs(t, err, ErrUnknownBracketMatch)

	// R1M0 is the seed-1 bye; byes resolve at build time and never take a
	// result.
	_, err = gen.AdvanceWinner(bracket, "R1M0", models.ResultPlayer1Win)
	assert.ErrorIs(t, err, ErrMatchNotAdvanceable)

	// R2M1 still waits on a feeder.
	_, err = gen.AdvanceWinner(bracket, "R2M1", models.ResultPlayer1Win)
	assert.ErrorIs(t, err, ErrMatchNotAdvanceable)

	_, err = gen.AdvanceWinner(bracket, "R1M3", models.ResultPending)
	assert.ErrorIs(t, err, ErrMatchNotAdvanceable)
}

func TestSingleEliminationTwoPlayerFinal(t *testing.T) {
	gen := NewSingleEliminationGenerator()
	bracket := generateSingleElim(t, 2)

	require.Equal(t, 1, bracket.TotalRounds)
	res, err := gen.AdvanceWinner(bracket, "R1M0", models.ResultPlayer1Win)
	require.NoError(t, err)
	assert.True(t, res.Completed)
	assert.Equal(t, 101, *res.Champion)
	// No semifinal exists, so only two placements resolve.
	assert.Len(t, res.Placements, 2)
}

func TestForType(t *testing.T) {
	for _, tc := range []struct {
		bracketType models.BracketType
		name        string
	}{
		{models.BracketSingleElimination, "SingleElimination"},
		{models.BracketRoundRobin, "RoundRobin"},
		{models.BracketSwiss, "Swiss"},
	} {
		gen, err := ForType(tc.bracketType)
		require.NoError(t, err)
		assert.Equal(t, tc.name, gen.GetName())
	}

	_, err := ForType(models.BracketDoubleElimination)
	assert.ErrorIs(t, err, ErrInvalidBracketType)
	_, err = ForType(models.BracketType("LADDER"))
	assert.ErrorIs(t, err, ErrInvalidBracketType)
}
