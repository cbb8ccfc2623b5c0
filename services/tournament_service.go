package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kudzilenett/nhandare-server-sub002/brackets"
	"github.com/kudzilenett/nhandare-server-sub002/models"
	"github.com/kudzilenett/nhandare-server-sub002/repositories"
)

type TournamentService interface {
	CreateTournament(ctx context.Context, tournament *models.Tournament) error
	GetTournamentByID(ctx context.Context, id int) (*models.Tournament, error)
	ListTournaments(ctx context.Context, status *models.TournamentStatus, limit, offset int) ([]models.Tournament, error)

	// RegisterPlayer enrolls a user while registration is open.
	RegisterPlayer(ctx context.Context, tournamentID, userID int) (*models.TournamentPlayer, error)

	// Activate builds the bracket and moves an open tournament to active.
	Activate(ctx context.Context, id int) (*models.Bracket, error)

	// Close freezes registration and the bracket while letting existing
	// matches keep playing.
	Close(ctx context.Context, id int) error

	// AutoStartDueTournaments activates every open tournament whose start
	// time has passed; invoked by the scheduler.
	AutoStartDueTournaments(ctx context.Context) error
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	playerRepo     repositories.PlayerRepository
	userRepo       repositories.UserRepository
	bracketService BracketService
	hub            *brackets.Hub
	logger         *slog.Logger
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	playerRepo repositories.PlayerRepository,
	userRepo repositories.UserRepository,
	bracketService BracketService,
	hub *brackets.Hub,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		playerRepo:     playerRepo,
		userRepo:       userRepo,
		bracketService: bracketService,
		hub:            hub,
		logger:         logger,
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, tournament *models.Tournament) error {
	if !models.IsValidBracketType(tournament.BracketType) {
		return fmt.Errorf("%w: %s", ErrInvalidBracketType, tournament.BracketType)
	}
	tournament.Status = models.StatusOpen
	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		return err
	}

	s.logger.Info("tournament created",
		slog.Int("tournament_id", tournament.ID),
		slog.String("bracket_type", string(tournament.BracketType)))
	return nil
}

func (s *tournamentService) GetTournamentByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return tournament, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context, status *models.TournamentStatus, limit, offset int) ([]models.Tournament, error) {
	return s.tournamentRepo.List(ctx, status, limit, offset)
}

func (s *tournamentService) RegisterPlayer(ctx context.Context, tournamentID, userID int) (*models.TournamentPlayer, error) {
	tournament, err := s.GetTournamentByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.Status != models.StatusOpen {
		return nil, fmt.Errorf("%w: tournament is %s", ErrRegistrationNotOpen, tournament.Status)
	}
	if !tournament.RegCloseAt.IsZero() && time.Now().After(tournament.RegCloseAt) {
		return nil, ErrRegistrationClosed
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if tournament.MaxPlayers > 0 {
		players, err := s.playerRepo.ListByTournament(ctx, tournamentID)
		if err != nil {
			return nil, err
		}
		if len(players) >= tournament.MaxPlayers {
			return nil, ErrTournamentFull
		}
	}

	player := &models.TournamentPlayer{
		UserID:       userID,
		TournamentID: tournamentID,
		CurrentRound: 1,
	}
	if err := s.playerRepo.Register(ctx, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerAlreadyRegistered) {
			return nil, ErrPlayerAlreadyRegistered
		}
		return nil, err
	}

	s.logger.Info("player registered",
		slog.Int("tournament_id", tournamentID),
		slog.Int("user_id", userID))
	return player, nil
}

func (s *tournamentService) Activate(ctx context.Context, id int) (*models.Bracket, error) {
	tournament, err := s.GetTournamentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(tournament.Status, models.StatusActive) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrTournamentInvalidStatusTransition, tournament.Status, models.StatusActive)
	}

	// Generation validates, persists and flips the status in one
	// transaction; a tournament is never active without a sound bracket.
	bracket, err := s.bracketService.GenerateBracket(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("tournament activated", slog.Int("tournament_id", id))
	return bracket, nil
}

func (s *tournamentService) Close(ctx context.Context, id int) error {
	tournament, err := s.GetTournamentByID(ctx, id)
	if err != nil {
		return err
	}
	if !models.CanTransition(tournament.Status, models.StatusClosed) {
		return fmt.Errorf("%w: %s -> %s", ErrTournamentInvalidStatusTransition, tournament.Status, models.StatusClosed)
	}

	if err := s.tournamentRepo.UpdateStatus(ctx, nil, id, models.StatusClosed); err != nil {
		return err
	}

	s.hub.BroadcastTournamentEvent(id, brackets.EventTournamentClosed, map[string]interface{}{"tournament_id": id})
	s.logger.Info("tournament closed", slog.Int("tournament_id", id))
	return nil
}

func (s *tournamentService) AutoStartDueTournaments(ctx context.Context) error {
	due, err := s.tournamentRepo.ListDueForStart(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("failed to list due tournaments: %w", err)
	}

	for _, tournament := range due {
		if _, err := s.Activate(ctx, tournament.ID); err != nil {
			// One failing tournament (e.g. too few players) must not stall
			// the rest of the sweep.
			s.logger.Error("failed to auto-start tournament",
				slog.Int("tournament_id", tournament.ID),
				slog.Any("error", err))
		}
	}
	return nil
}
