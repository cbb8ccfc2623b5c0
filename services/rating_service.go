package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kudzilenett/nhandare-server-sub002/models"
	"github.com/kudzilenett/nhandare-server-sub002/ratings"
	"github.com/kudzilenett/nhandare-server-sub002/repositories"
)

type RatingService interface {
	// ApplyMatchResult updates both contestants' ratings for a decisive or
	// drawn result. Both sides compute their expected score and K-factor
	// independently. Bye matches never reach this service.
	ApplyMatchResult(ctx context.Context, exec repositories.SQLExecutor, player1ID, player2ID int, result models.MatchResult) error
}

type ratingService struct {
	userRepo repositories.UserRepository
	logger   *slog.Logger
}

func NewRatingService(userRepo repositories.UserRepository, logger *slog.Logger) RatingService {
	return &ratingService{userRepo: userRepo, logger: logger}
}

func (s *ratingService) ApplyMatchResult(ctx context.Context, exec repositories.SQLExecutor, player1ID, player2ID int, result models.MatchResult) error {
	var score1 float64
	switch result {
	case models.ResultPlayer1Win:
		score1 = ratings.ScoreWin
	case models.ResultPlayer2Win:
		score1 = ratings.ScoreLoss
	case models.ResultDraw:
		score1 = ratings.ScoreDraw
	default:
		return fmt.Errorf("%w: result %q", ErrMatchNotCompleted, result)
	}

	player1, err := s.loadUser(ctx, player1ID)
	if err != nil {
		return err
	}
	player2, err := s.loadUser(ctx, player2ID)
	if err != nil {
		return err
	}

	newRating1 := ratings.NewRating(player1.Rating, player2.Rating, score1, player1.GamesPlayed)
	newRating2 := ratings.NewRating(player2.Rating, player1.Rating, 1-score1, player2.GamesPlayed)

	if err := s.userRepo.UpdateRating(ctx, exec, player1.ID, newRating1, player1.GamesPlayed+1); err != nil {
		return err
	}
	if err := s.userRepo.UpdateRating(ctx, exec, player2.ID, newRating2, player2.GamesPlayed+1); err != nil {
		return err
	}

	s.logger.Debug("ratings updated",
		slog.Int("player1_id", player1.ID), slog.Int("player1_rating", newRating1),
		slog.Int("player2_id", player2.ID), slog.Int("player2_rating", newRating2))
	return nil
}

func (s *ratingService) loadUser(ctx context.Context, id int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrUserNotFound, id)
		}
		return nil, err
	}
	return user, nil
}
