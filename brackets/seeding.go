package brackets

import (
	"fmt"
	"sort"

	"github.com/kudzilenett/nhandare-server-sub002/models"
)

// BuildSeeds orders active registrations into a dense 1..N seed sequence:
// registration time ascending, ties broken by rating descending, then user
// id ascending. The resulting list is immutable input for the builders.
func BuildSeeds(players []*models.TournamentPlayer, ratings map[int]int) ([]models.PlayerSeed, error) {
	if len(players) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInsufficientPlayers, len(players))
	}

	ordered := make([]*models.TournamentPlayer, len(players))
	copy(ordered, players)

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if !a.RegisteredAt.Equal(b.RegisteredAt) {
			return a.RegisteredAt.Before(b.RegisteredAt)
		}
		if ratings[a.UserID] != ratings[b.UserID] {
			return ratings[a.UserID] > ratings[b.UserID]
		}
		return a.UserID < b.UserID
	})

	seeds := make([]models.PlayerSeed, len(ordered))
	for i, p := range ordered {
		seeds[i] = models.PlayerSeed{
			UserID:     p.UserID,
			SeedNumber: i + 1,
			Rating:     ratings[p.UserID],
		}
	}
	return seeds, nil
}
