package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/kudzilenett/nhandare-server-sub002/brackets"
	"github.com/kudzilenett/nhandare-server-sub002/models"
	"github.com/kudzilenett/nhandare-server-sub002/repositories"
)

type BracketService interface {
	// GenerateBracket seeds the tournament's registrations and builds (or
	// destructively rebuilds) its bracket. Generation is atomic: the
	// document, the persisted matches and the player seed numbers change in
	// one transaction or not at all.
	GenerateBracket(ctx context.Context, tournamentID int) (*models.Bracket, error)

	GetBracket(ctx context.Context, tournamentID int) (*models.Bracket, error)
	GetFullTournamentData(ctx context.Context, tournamentID int) (*models.Tournament, error)
}

type bracketService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	playerRepo     repositories.PlayerRepository
	matchRepo      repositories.MatchRepository
	bracketRepo    repositories.BracketRepository
	locker         *TournamentLocker
	hub            *brackets.Hub
	logger         *slog.Logger
}

func NewBracketService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	playerRepo repositories.PlayerRepository,
	matchRepo repositories.MatchRepository,
	bracketRepo repositories.BracketRepository,
	locker *TournamentLocker,
	hub *brackets.Hub,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		db:             db,
		tournamentRepo: tournamentRepo,
		playerRepo:     playerRepo,
		matchRepo:      matchRepo,
		bracketRepo:    bracketRepo,
		locker:         locker,
		hub:            hub,
		logger:         logger,
	}
}

func (s *bracketService) GenerateBracket(ctx context.Context, tournamentID int) (*models.Bracket, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	if tournament.Status != models.StatusOpen && tournament.Status != models.StatusActive {
		return nil, fmt.Errorf("%w: cannot generate bracket in status %q", ErrTournamentInvalidStatusTransition, tournament.Status)
	}

	// At most one rebuild in flight per tournament; a concurrent request is
	// a conflict, not a queue entry.
	if !s.locker.TryLock(tournamentID) {
		return nil, ErrConcurrentRegeneration
	}
	defer s.locker.Unlock(tournamentID)

	players, err := s.playerRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players for tournament %d: %w", tournamentID, err)
	}

	ratings := make(map[int]int, len(players))
	playerRowByUser := make(map[int]int, len(players))
	for _, p := range players {
		playerRowByUser[p.UserID] = p.ID
		if p.User != nil {
			ratings[p.UserID] = p.User.Rating
		}
	}

	seeds, err := brackets.BuildSeeds(players, ratings)
	if err != nil {
		return nil, mapBracketError(err)
	}

	generator, err := brackets.ForType(tournament.BracketType)
	if err != nil {
		return nil, mapBracketError(err)
	}

	s.logger.Info("generating bracket",
		slog.Int("tournament_id", tournamentID),
		slog.String("type", generator.GetName()),
		slog.Int("players", len(players)))

	bracket, err := generator.GenerateBracket(ctx, brackets.GenerateBracketParams{
		Tournament:        tournament,
		Seeds:             seeds,
		RegistrationCount: len(players),
	})
	if err != nil {
		return nil, mapBracketError(err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Destructive regeneration: document and match rows go together so the
	// two can never disagree.
	if err := s.matchRepo.DeleteByTournament(ctx, tx, tournamentID); err != nil {
		return nil, fmt.Errorf("failed to clear matches for tournament %d: %w", tournamentID, err)
	}
	if err := s.bracketRepo.DeleteByTournament(ctx, tx, tournamentID); err != nil {
		return nil, fmt.Errorf("failed to clear bracket for tournament %d: %w", tournamentID, err)
	}
	if err := s.playerRepo.ResetProgress(ctx, tx, tournamentID); err != nil {
		return nil, fmt.Errorf("failed to reset player progress for tournament %d: %w", tournamentID, err)
	}

	for _, seed := range seeds {
		n := seed.SeedNumber
		if err := s.playerRepo.UpdateSeedNumber(ctx, tx, playerRowByUser[seed.UserID], &n); err != nil {
			return nil, fmt.Errorf("failed to persist seed %d: %w", n, err)
		}
	}

	if err := CreateMatchesForBracket(ctx, tx, s.matchRepo, tournament, bracket); err != nil {
		return nil, err
	}

	if err := s.bracketRepo.Save(ctx, tx, bracket); err != nil {
		return nil, fmt.Errorf("failed to save bracket document: %w", err)
	}

	activated := tournament.Status == models.StatusOpen
	if activated {
		if err := s.tournamentRepo.UpdateStatus(ctx, tx, tournamentID, models.StatusActive); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit bracket for tournament %d: %w", tournamentID, err)
	}

	s.hub.BroadcastTournamentEvent(tournamentID, brackets.EventBracketUpdated, bracket)
	if activated {
		s.hub.BroadcastTournamentEvent(tournamentID, brackets.EventTournamentActive, map[string]interface{}{"tournament_id": tournamentID})
	}
	s.logger.Info("bracket generated",
		slog.Int("tournament_id", tournamentID),
		slog.Int("rounds", bracket.TotalRounds),
		slog.Int("matches", bracket.TotalMatches))

	return bracket, nil
}

// CreateMatchesForBracket persists a playable match for every non-bye node
// of the given rounds and links the new ids back into the document. Shared
// between initial generation and swiss round pairing.
func CreateMatchesForBracket(ctx context.Context, exec repositories.SQLExecutor, matchRepo repositories.MatchRepository, tournament *models.Tournament, bracket *models.Bracket) error {
	for ri := range bracket.Rounds {
		if err := createMatchesForRound(ctx, exec, matchRepo, tournament, &bracket.Rounds[ri]); err != nil {
			return err
		}
	}
	return nil
}

func createMatchesForRound(ctx context.Context, exec repositories.SQLExecutor, matchRepo repositories.MatchRepository, tournament *models.Tournament, round *models.Round) error {
	for mi := range round.Matches {
		bm := &round.Matches[mi]
		if bm.IsBye || bm.MatchID != nil {
			continue
		}

		status := models.MatchStatusPending
		if bm.HasBothPlayers() {
			status = models.MatchStatusWaiting
		}
		match := &models.Match{
			TournamentID: tournament.ID,
			GameID:       tournament.GameID,
			Round:        bm.Round,
			BracketUID:   bm.UID,
			Player1ID:    bm.Player1ID,
			Player2ID:    bm.Player2ID,
			Status:       status,
			Result:       models.ResultPending,
		}
		if err := matchRepo.Create(ctx, exec, match); err != nil {
			return fmt.Errorf("failed to create match for bracket node %s: %w", bm.UID, err)
		}
		bm.MatchID = &match.ID
	}
	return nil
}

func (s *bracketService) GetBracket(ctx context.Context, tournamentID int) (*models.Bracket, error) {
	bracket, err := s.bracketRepo.GetByTournament(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrBracketNotFound) {
			return nil, ErrBracketNotFound
		}
		return nil, err
	}
	return bracket, nil
}

// GetFullTournamentData loads the tournament with players, bracket and
// matches fetched in parallel, for the read views.
func (s *bracketService) GetFullTournamentData(ctx context.Context, tournamentID int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		players, err := s.playerRepo.ListByTournament(gCtx, tournamentID)
		if err != nil {
			return err
		}
		tournament.Players = make([]models.TournamentPlayer, 0, len(players))
		for _, p := range players {
			tournament.Players = append(tournament.Players, *p)
		}
		return nil
	})

	g.Go(func() error {
		matches, err := s.matchRepo.ListByTournament(gCtx, tournamentID, nil, nil)
		if err != nil {
			return err
		}
		tournament.Matches = make([]models.Match, 0, len(matches))
		for _, m := range matches {
			tournament.Matches = append(tournament.Matches, *m)
		}
		return nil
	})

	g.Go(func() error {
		bracket, err := s.bracketRepo.GetByTournament(gCtx, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrBracketNotFound) {
				return nil // tournament may simply not have started
			}
			return err
		}
		tournament.Bracket = bracket
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load tournament %d data: %w", tournamentID, err)
	}
	return tournament, nil
}

// mapBracketError translates engine sentinels into the service taxonomy
// while keeping the detailed message (e.g. "expected 8 players, got 7").
func mapBracketError(err error) error {
	switch {
	case errors.Is(err, brackets.ErrInsufficientPlayers):
		return fmt.Errorf("%w: %s", ErrInsufficientPlayers, err)
	case errors.Is(err, brackets.ErrSeedCountMismatch):
		return fmt.Errorf("%w: %s", ErrSeedCountMismatch, err)
	case errors.Is(err, brackets.ErrInvalidBracketType):
		return fmt.Errorf("%w: %s", ErrInvalidBracketType, err)
	case errors.Is(err, brackets.ErrUnresolvedInvariant):
		return fmt.Errorf("%w: %s", ErrUnresolvedBracketInvariant, err)
	default:
		return err
	}
}
