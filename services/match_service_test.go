package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kudzilenett/nhandare-server-sub002/models"
)

func intPtr(v int) *int { return &v }

func TestStartMatch(t *testing.T) {
	tournamentRepo := newFakeTournamentRepo(
		&models.Tournament{ID: 1, Status: models.StatusActive},
	)
	matchRepo := newFakeMatchRepo(
		&models.Match{ID: 10, TournamentID: 1, Status: models.MatchStatusWaiting, Player1ID: intPtr(1), Player2ID: intPtr(2)},
	)
	svc := NewMatchService(tournamentRepo, matchRepo, testLogger())

	match, err := svc.StartMatch(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusActive, match.Status)
	assert.Equal(t, []int{10}, matchRepo.started)
}

func TestStartMatchAllowedWhileClosed(t *testing.T) {
	// A closed tournament freezes registration and the bracket, but
	// contests already in it keep playing.
	tournamentRepo := newFakeTournamentRepo(
		&models.Tournament{ID: 1, Status: models.StatusClosed},
	)
	matchRepo := newFakeMatchRepo(
		&models.Match{ID: 10, TournamentID: 1, Status: models.MatchStatusWaiting, Player1ID: intPtr(1), Player2ID: intPtr(2)},
	)
	svc := NewMatchService(tournamentRepo, matchRepo, testLogger())

	_, err := svc.StartMatch(context.Background(), 10)
	assert.NoError(t, err)
}

func TestStartMatchRejections(t *testing.T) {
	tournamentRepo := newFakeTournamentRepo(
		&models.Tournament{ID: 1, Status: models.StatusActive},
		&models.Tournament{ID: 2, Status: models.StatusOpen},
	)
	matchRepo := newFakeMatchRepo(
		&models.Match{ID: 10, TournamentID: 1, Status: models.MatchStatusPending, Player1ID: intPtr(1)},
		&models.Match{ID: 11, TournamentID: 1, Status: models.MatchStatusActive, Player1ID: intPtr(1), Player2ID: intPtr(2)},
		&models.Match{ID: 12, TournamentID: 2, Status: models.MatchStatusWaiting, Player1ID: intPtr(1), Player2ID: intPtr(2)},
	)
	svc := NewMatchService(tournamentRepo, matchRepo, testLogger())
	ctx := context.Background()

	_, err := svc.StartMatch(ctx, 99)
	assert.ErrorIs(t, err, ErrMatchNotFound)

	// Not waiting: still pending on a feeder, or already running.
	_, err = svc.StartMatch(ctx, 10)
	assert.ErrorIs(t, err, ErrMatchNotWaiting)
	_, err = svc.StartMatch(ctx, 11)
	assert.ErrorIs(t, err, ErrMatchNotWaiting)

	// Open tournaments have no startable matches.
	_, err = svc.StartMatch(ctx, 12)
	assert.ErrorIs(t, err, ErrMatchNotStartable)
}

func TestListTournamentMatchesFilters(t *testing.T) {
	tournamentRepo := newFakeTournamentRepo(
		&models.Tournament{ID: 1, Status: models.StatusActive},
	)
	waiting := models.MatchStatusWaiting
	round2 := 2
	matchRepo := newFakeMatchRepo(
		&models.Match{ID: 10, TournamentID: 1, Round: 1, Status: models.MatchStatusCompleted},
		&models.Match{ID: 11, TournamentID: 1, Round: 2, Status: models.MatchStatusWaiting},
		&models.Match{ID: 12, TournamentID: 2, Round: 1, Status: models.MatchStatusWaiting},
	)
	svc := NewMatchService(tournamentRepo, matchRepo, testLogger())
	ctx := context.Background()

	all, err := svc.ListTournamentMatches(ctx, 1, nil, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := svc.ListTournamentMatches(ctx, 1, &round2, &waiting)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, 11, filtered[0].ID)

	_, err = svc.ListTournamentMatches(ctx, 99, nil, nil)
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}
