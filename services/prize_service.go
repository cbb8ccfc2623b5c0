package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"

	"github.com/kudzilenett/nhandare-server-sub002/brackets"
	"github.com/kudzilenett/nhandare-server-sub002/models"
	"github.com/kudzilenett/nhandare-server-sub002/repositories"
)

// PrizeSplit is the placement share of the prize pool, in percent.
type PrizeSplit struct {
	First  float64
	Second float64
	Third  float64
}

// DefaultPrizeSplit is the 60/25/15 split used unless configured otherwise.
var DefaultPrizeSplit = PrizeSplit{First: 60, Second: 25, Third: 15}

func (p PrizeSplit) shareFor(place int) float64 {
	switch place {
	case 1:
		return p.First
	case 2:
		return p.Second
	case 3:
		return p.Third
	default:
		return 0
	}
}

// PaymentCollaborator receives payout instructions. The actual money
// movement lives with the external payment platform.
type PaymentCollaborator interface {
	SendPayout(ctx context.Context, payout *models.PrizePayout) error
}

type PrizeService interface {
	// Distribute computes placement payouts once per tournament and writes
	// them inside the caller's transaction. Re-running for an already
	// distributed tournament returns ErrPrizesAlreadyDistributed and
	// changes nothing.
	Distribute(ctx context.Context, exec repositories.SQLExecutor, tournament *models.Tournament, placements []brackets.Placement) ([]*models.PrizePayout, error)
}

type prizeService struct {
	playerRepo repositories.PlayerRepository
	payoutRepo repositories.PayoutRepository
	payment    PaymentCollaborator
	split      PrizeSplit
	logger     *slog.Logger
}

func NewPrizeService(
	playerRepo repositories.PlayerRepository,
	payoutRepo repositories.PayoutRepository,
	payment PaymentCollaborator,
	split PrizeSplit,
	logger *slog.Logger,
) PrizeService {
	if split.First+split.Second+split.Third == 0 {
		split = DefaultPrizeSplit
	}
	return &prizeService{
		playerRepo: playerRepo,
		payoutRepo: payoutRepo,
		payment:    payment,
		split:      split,
		logger:     logger,
	}
}

// roundToCent keeps payout arithmetic off floating-point drift.
func roundToCent(amount float64) float64 {
	return math.Round(amount*100) / 100
}

func (s *prizeService) Distribute(ctx context.Context, exec repositories.SQLExecutor, tournament *models.Tournament, placements []brackets.Placement) ([]*models.PrizePayout, error) {
	distributed, err := s.payoutRepo.ExistsForTournament(ctx, tournament.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check payouts for tournament %d: %w", tournament.ID, err)
	}
	if distributed {
		return nil, ErrPrizesAlreadyDistributed
	}

	payouts := make([]*models.PrizePayout, 0, 3)
	for _, placement := range placements {
		share := s.split.shareFor(placement.Place)
		if share == 0 {
			continue
		}
		amount := roundToCent(tournament.PrizePool * share / 100)

		payout := &models.PrizePayout{
			ID:           uuid.NewString(),
			TournamentID: tournament.ID,
			UserID:       placement.UserID,
			Placement:    placement.Place,
			Amount:       amount,
		}
		if err := s.payoutRepo.Create(ctx, exec, payout); err != nil {
			return nil, fmt.Errorf("failed to record payout for user %d: %w", placement.UserID, err)
		}
		if err := s.playerRepo.UpdatePlacement(ctx, exec, tournament.ID, placement.UserID, placement.Place, amount); err != nil {
			return nil, err
		}
		payouts = append(payouts, payout)
	}

	// Payout instructions are handed over only after they are recorded;
	// the collaborator is responsible for its own retries.
	for _, payout := range payouts {
		if err := s.payment.SendPayout(ctx, payout); err != nil {
			s.logger.Error("payment collaborator rejected payout",
				slog.String("payout_id", payout.ID),
				slog.Int("user_id", payout.UserID),
				slog.Any("error", err))
		}
	}

	s.logger.Info("prizes distributed",
		slog.Int("tournament_id", tournament.ID),
		slog.Float64("prize_pool", tournament.PrizePool),
		slog.Int("payouts", len(payouts)))
	return payouts, nil
}
