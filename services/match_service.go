package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kudzilenett/nhandare-server-sub002/models"
	"github.com/kudzilenett/nhandare-server-sub002/repositories"
)

type MatchService interface {
	GetMatchByID(ctx context.Context, id int) (*models.Match, error)
	ListTournamentMatches(ctx context.Context, tournamentID int, round *int, status *models.MatchStatus) ([]*models.Match, error)

	// StartMatch moves a waiting match with both players present to active.
	// Starting is allowed while the tournament is active or closed.
	StartMatch(ctx context.Context, id int) (*models.Match, error)
}

type matchService struct {
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
	logger         *slog.Logger
}

func NewMatchService(
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
		logger:         logger,
	}
}

func (s *matchService) GetMatchByID(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

func (s *matchService) ListTournamentMatches(ctx context.Context, tournamentID int, round *int, status *models.MatchStatus) ([]*models.Match, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return s.matchRepo.ListByTournament(ctx, tournamentID, round, status)
}

func (s *matchService) StartMatch(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.GetMatchByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if match.Status != models.MatchStatusWaiting {
		return nil, fmt.Errorf("%w: match %d is %s", ErrMatchNotWaiting, id, match.Status)
	}
	if match.Player1ID == nil || match.Player2ID == nil {
		return nil, fmt.Errorf("%w: match %d is missing a player", ErrMatchNotWaiting, id)
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, match.TournamentID)
	if err != nil {
		return nil, err
	}
	if !tournament.Status.IsMatchStartable() {
		return nil, fmt.Errorf("%w: tournament %d is %s", ErrMatchNotStartable, tournament.ID, tournament.Status)
	}

	if err := s.matchRepo.MarkStarted(ctx, nil, id); err != nil {
		return nil, err
	}
	match.Status = models.MatchStatusActive

	s.logger.Info("match started",
		slog.Int("match_id", id),
		slog.Int("tournament_id", match.TournamentID))
	return match, nil
}
