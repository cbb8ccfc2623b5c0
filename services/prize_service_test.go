package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kudzilenett/nhandare-server-sub002/brackets"
	"github.com/kudzilenett/nhandare-server-sub002/models"
)

func TestPrizeDistributionDefaultSplit(t *testing.T) {
	playerRepo := &fakePlayerRepo{}
	payoutRepo := &fakePayoutRepo{}
	payment := &fakePayment{}
	svc := NewPrizeService(playerRepo, payoutRepo, payment, DefaultPrizeSplit, testLogger())

	tournament := &models.Tournament{ID: 1, PrizePool: 500.00}
	placements := []brackets.Placement{
		{UserID: 10, Place: 1},
		{UserID: 20, Place: 2},
		{UserID: 30, Place: 3},
		{UserID: 40, Place: 4},
	}

	payouts, err := svc.Distribute(context.Background(), nil, tournament, placements)
	require.NoError(t, err)
	require.Len(t, payouts, 3, "only the podium is paid")

	assert.Equal(t, 300.00, payouts[0].Amount)
	assert.Equal(t, 125.00, payouts[1].Amount)
	assert.Equal(t, 75.00, payouts[2].Amount)
	for _, p := range payouts {
		assert.NotEmpty(t, p.ID)
		assert.Equal(t, 1, p.TournamentID)
	}

	// Player rows record placement and winnings for all ranked players
	// with a share.
	require.Len(t, playerRepo.placements, 3)
	assert.Equal(t, placementRecord{UserID: 10, Placement: 1, PrizeWon: 300.00}, playerRepo.placements[0])

	// The collaborator received every recorded payout.
	assert.Len(t, payment.sent, 3)
}

func TestPrizeDistributionIsIdempotent(t *testing.T) {
	playerRepo := &fakePlayerRepo{}
	payoutRepo := &fakePayoutRepo{}
	payment := &fakePayment{}
	svc := NewPrizeService(playerRepo, payoutRepo, payment, DefaultPrizeSplit, testLogger())

	tournament := &models.Tournament{ID: 1, PrizePool: 500.00}
	placements := []brackets.Placement{{UserID: 10, Place: 1}, {UserID: 20, Place: 2}}

	_, err := svc.Distribute(context.Background(), nil, tournament, placements)
	require.NoError(t, err)
	recorded := len(payoutRepo.payouts)

	_, err = svc.Distribute(context.Background(), nil, tournament, placements)
	assert.ErrorIs(t, err, ErrPrizesAlreadyDistributed)
	assert.Len(t, payoutRepo.payouts, recorded, "nothing written twice")
	assert.Len(t, payment.sent, recorded)
}

func TestPrizeDistributionRoundsToCent(t *testing.T) {
	playerRepo := &fakePlayerRepo{}
	payoutRepo := &fakePayoutRepo{}
	svc := NewPrizeService(playerRepo, payoutRepo, &fakePayment{}, DefaultPrizeSplit, testLogger())

	tournament := &models.Tournament{ID: 1, PrizePool: 100.01}
	placements := []brackets.Placement{
		{UserID: 10, Place: 1},
		{UserID: 20, Place: 2},
		{UserID: 30, Place: 3},
	}

	payouts, err := svc.Distribute(context.Background(), nil, tournament, placements)
	require.NoError(t, err)
	require.Len(t, payouts, 3)
	assert.Equal(t, 60.01, payouts[0].Amount)
	assert.Equal(t, 25.00, payouts[1].Amount)
	assert.Equal(t, 15.00, payouts[2].Amount)
}

func TestPrizeDistributionSurvivesPaymentFailure(t *testing.T) {
	playerRepo := &fakePlayerRepo{}
	payoutRepo := &fakePayoutRepo{}
	payment := &fakePayment{err: errors.New("gateway unavailable")}
	svc := NewPrizeService(playerRepo, payoutRepo, payment, DefaultPrizeSplit, testLogger())

	tournament := &models.Tournament{ID: 1, PrizePool: 200.00}
	placements := []brackets.Placement{{UserID: 10, Place: 1}}

	// The payout rows are the source of truth; a collaborator outage is
	// logged and retried out of band, not surfaced to the caller.
	payouts, err := svc.Distribute(context.Background(), nil, tournament, placements)
	require.NoError(t, err)
	assert.Len(t, payouts, 1)
	assert.Len(t, payoutRepo.payouts, 1)
}

func TestPrizeDistributionCustomSplit(t *testing.T) {
	playerRepo := &fakePlayerRepo{}
	payoutRepo := &fakePayoutRepo{}
	split := PrizeSplit{First: 50, Second: 30, Third: 20}
	svc := NewPrizeService(playerRepo, payoutRepo, &fakePayment{}, split, testLogger())

	tournament := &models.Tournament{ID: 7, PrizePool: 1000.00}
	placements := []brackets.Placement{
		{UserID: 10, Place: 1},
		{UserID: 20, Place: 2},
		{UserID: 30, Place: 3},
	}

	payouts, err := svc.Distribute(context.Background(), nil, tournament, placements)
	require.NoError(t, err)
	require.Len(t, payouts, 3)
	assert.Equal(t, 500.00, payouts[0].Amount)
	assert.Equal(t, 300.00, payouts[1].Amount)
	assert.Equal(t, 200.00, payouts[2].Amount)
}
