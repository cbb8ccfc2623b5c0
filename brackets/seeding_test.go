package brackets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kudzilenett/nhandare-server-sub002/models"
)

func TestBuildSeedsOrdering(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	players := []*models.TournamentPlayer{
		{UserID: 4, RegisteredAt: base.Add(2 * time.Hour)},
		{UserID: 1, RegisteredAt: base},
		{UserID: 3, RegisteredAt: base.Add(time.Hour)},
		{UserID: 2, RegisteredAt: base.Add(time.Hour)},
	}
	ratings := map[int]int{1: 1500, 2: 1400, 3: 1800, 4: 1600}

	seeds, err := BuildSeeds(players, ratings)
	require.NoError(t, err)
	require.Len(t, seeds, 4)

	// Registration order first; users 3 and 2 registered simultaneously, so
	// the higher rating takes the earlier seed.
	assert.Equal(t, 1, seeds[0].UserID)
	assert.Equal(t, 3, seeds[1].UserID)
	assert.Equal(t, 2, seeds[2].UserID)
	assert.Equal(t, 4, seeds[3].UserID)

	for i, s := range seeds {
		assert.Equal(t, i+1, s.SeedNumber)
		assert.Equal(t, ratings[s.UserID], s.Rating)
	}
}

func TestBuildSeedsTiesFallBackToUserID(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	players := []*models.TournamentPlayer{
		{UserID: 9, RegisteredAt: at},
		{UserID: 2, RegisteredAt: at},
		{UserID: 5, RegisteredAt: at},
	}
	ratings := map[int]int{9: 1500, 2: 1500, 5: 1500}

	seeds, err := BuildSeeds(players, ratings)
	require.NoError(t, err)
	assert.Equal(t, 2, seeds[0].UserID)
	assert.Equal(t, 5, seeds[1].UserID)
	assert.Equal(t, 9, seeds[2].UserID)
}

func TestBuildSeedsRejectsTooFewPlayers(t *testing.T) {
	_, err := BuildSeeds([]*models.TournamentPlayer{{UserID: 1}}, nil)
	assert.ErrorIs(t, err, ErrInsufficientPlayers)
}

func TestValidateRejectsBrokenStructures(t *testing.T) {
	bracket := generateSingleElim(t, 5)
	require.NoError(t, Validate(bracket))

	t.Run("missing round 1 player", func(t *testing.T) {
		b := generateSingleElim(t, 5)
		bm := b.MatchAt(1, 3)
		bm.Player2ID = nil
		assert.ErrorIs(t, Validate(b), ErrUnresolvedInvariant)
	})

	t.Run("wrong match count", func(t *testing.T) {
		b := generateSingleElim(t, 5)
		b.TotalMatches = 7
		assert.ErrorIs(t, Validate(b), ErrUnresolvedInvariant)
	})

	t.Run("broken forward link", func(t *testing.T) {
		b := generateSingleElim(t, 5)
		bad := "R9M9"
		b.MatchAt(1, 0).NextMatchUID = &bad
		assert.ErrorIs(t, Validate(b), ErrUnresolvedInvariant)
	})

	t.Run("non-dense seeds", func(t *testing.T) {
		b := generateSingleElim(t, 5)
		b.Players[2].SeedNumber = 9
		assert.ErrorIs(t, Validate(b), ErrUnresolvedInvariant)
	})
}
