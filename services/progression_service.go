package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kudzilenett/nhandare-server-sub002/brackets"
	"github.com/kudzilenett/nhandare-server-sub002/models"
	"github.com/kudzilenett/nhandare-server-sub002/repositories"
)

// MatchCompletionEvent is what the game-session collaborator delivers when a
// contest reaches a terminal state. Duration and GameData are pass-through.
type MatchCompletionEvent struct {
	MatchID  int                `json:"match_id"`
	Result   models.MatchResult `json:"result"`
	WinnerID *int               `json:"winner_id,omitempty"`
	Duration *int               `json:"duration,omitempty"`
	GameData *string            `json:"game_data,omitempty"`
}

type ProgressionService interface {
	// HandleMatchCompleted consumes one completion event: records the
	// result, updates ratings, advances the winner through the bracket and
	// fires completion side effects when the final resolves. Redelivery of
	// an event for an already progressed match is a logged no-op.
	HandleMatchCompleted(ctx context.Context, event MatchCompletionEvent) error
}

type progressionService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	playerRepo     repositories.PlayerRepository
	matchRepo      repositories.MatchRepository
	bracketRepo    repositories.BracketRepository
	ratingService  RatingService
	prizeService   PrizeService
	locker         *TournamentLocker
	hub            *brackets.Hub
	logger         *slog.Logger
}

func NewProgressionService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	playerRepo repositories.PlayerRepository,
	matchRepo repositories.MatchRepository,
	bracketRepo repositories.BracketRepository,
	ratingService RatingService,
	prizeService PrizeService,
	locker *TournamentLocker,
	hub *brackets.Hub,
	logger *slog.Logger,
) ProgressionService {
	return &progressionService{
		db:             db,
		tournamentRepo: tournamentRepo,
		playerRepo:     playerRepo,
		matchRepo:      matchRepo,
		bracketRepo:    bracketRepo,
		ratingService:  ratingService,
		prizeService:   prizeService,
		locker:         locker,
		hub:            hub,
		logger:         logger,
	}
}

func (s *progressionService) HandleMatchCompleted(ctx context.Context, event MatchCompletionEvent) error {
	if event.Result == models.ResultPending {
		return fmt.Errorf("%w: match %d", ErrMatchNotCompleted, event.MatchID)
	}

	match, err := s.matchRepo.GetByID(ctx, event.MatchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return fmt.Errorf("%w: %d", ErrMatchNotFound, event.MatchID)
		}
		return err
	}

	// Shares the regeneration lock: no completion is ever applied against a
	// bracket mid-rebuild, and completions for one tournament apply in
	// sequence regardless of delivery order.
	s.locker.Lock(match.TournamentID)
	defer s.locker.Unlock(match.TournamentID)

	bracket, err := s.bracketRepo.GetByTournament(ctx, match.TournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrBracketNotFound) {
			return fmt.Errorf("%w: tournament %d", ErrBracketNotFound, match.TournamentID)
		}
		return err
	}

	generator, err := brackets.ForType(bracket.Type)
	if err != nil {
		return mapBracketError(err)
	}

	advance, err := generator.AdvanceWinner(bracket, match.BracketUID, event.Result)
	if err != nil {
		return mapBracketError(err)
	}

	if advance.Duplicate {
		// Retried deliveries are expected; swallowing them here is what
		// keeps a winner from advancing twice.
		s.logger.Debug("duplicate completion event ignored",
			slog.Int("match_id", event.MatchID),
			slog.String("bracket_uid", match.BracketUID))
		return nil
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, match.TournamentID)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Ratings apply to every real contested result, draws included, before
	// any advancement bookkeeping.
	if match.Player1ID != nil && match.Player2ID != nil {
		if err := s.ratingService.ApplyMatchResult(ctx, tx, *match.Player1ID, *match.Player2ID, event.Result); err != nil {
			return fmt.Errorf("failed to update ratings for match %d: %w", event.MatchID, err)
		}
	}

	if advance.Replay {
		// A draw cannot resolve an elimination match: record nothing
		// terminal and hand the contest back to the game session.
		if err := s.matchRepo.ClearResult(ctx, tx, match.ID); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit draw replay for match %d: %w", event.MatchID, err)
		}
		s.logger.Info("drawn elimination match returned for replay",
			slog.Int("match_id", event.MatchID),
			slog.Int("tournament_id", match.TournamentID))
		return nil
	}

	if err := s.matchRepo.UpdateResult(ctx, tx, match.ID, event.Result, advance.WinnerID, event.Duration, event.GameData); err != nil {
		return err
	}

	if err := s.applyAdvancement(ctx, tx, tournament, bracket, match, advance); err != nil {
		return err
	}

	if err := s.bracketRepo.Save(ctx, tx, bracket); err != nil {
		return fmt.Errorf("failed to save bracket document: %w", err)
	}

	var payouts []*models.PrizePayout
	if advance.Completed {
		if err := s.tournamentRepo.UpdateStatus(ctx, tx, tournament.ID, models.StatusCompleted); err != nil {
			return err
		}
		payouts, err = s.prizeService.Distribute(ctx, tx, tournament, advance.Placements)
		if err != nil && !errors.Is(err, ErrPrizesAlreadyDistributed) {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit progression for match %d: %w", event.MatchID, err)
	}

	s.broadcast(tournament, bracket, advance, payouts)
	return nil
}

// applyAdvancement writes every in-bracket effect of one completion: slot
// propagation into downstream matches, swiss round creation, and the
// per-player round/elimination bookkeeping.
func (s *progressionService) applyAdvancement(ctx context.Context, tx repositories.SQLExecutor, tournament *models.Tournament, bracket *models.Bracket, match *models.Match, advance *brackets.AdvanceResult) error {
	// Downstream nodes that just became ready get their players and the
	// WAITING status in one write each.
	for _, uid := range advance.ReadyUIDs {
		node := bracket.FindMatch(uid)
		if node == nil || node.MatchID == nil {
			continue
		}
		if err := s.matchRepo.UpdatePlayersAndStatus(ctx, tx, *node.MatchID, node.Player1ID, node.Player2ID, models.MatchStatusWaiting); err != nil {
			return fmt.Errorf("failed to ready match %s: %w", uid, err)
		}
	}

	// A downstream node may have gained one player without becoming ready;
	// persist the partial fill too so the match row mirrors the document.
	if bm := bracket.FindMatch(match.BracketUID); bm != nil && bm.NextMatchUID != nil {
		if target := bracket.FindMatch(*bm.NextMatchUID); target != nil &&
			target.MatchID != nil && target.Status == models.BracketMatchPending {
			if err := s.matchRepo.UpdatePlayersAndStatus(ctx, tx, *target.MatchID, target.Player1ID, target.Player2ID, models.MatchStatusPending); err != nil {
				return fmt.Errorf("failed to propagate winner into %s: %w", *bm.NextMatchUID, err)
			}
		}
	}

	if advance.NewRound != nil {
		// Swiss pairs the next round only once the current one resolves;
		// its matches need rows of their own.
		roundIdx := len(bracket.Rounds) - 1
		if err := createMatchesForRound(ctx, tx, s.matchRepo, tournament, &bracket.Rounds[roundIdx]); err != nil {
			return err
		}
		advance.NewRound.Matches = bracket.Rounds[roundIdx].Matches
	}

	if bracket.Type == models.BracketSingleElimination {
		if advance.WinnerID != nil {
			bm := bracket.FindMatch(match.BracketUID)
			if err := s.playerRepo.UpdateProgress(ctx, tx, tournament.ID, *advance.WinnerID, bm.Round+1, false); err != nil {
				return err
			}
		}
		if advance.LoserID != nil {
			bm := bracket.FindMatch(match.BracketUID)
			if err := s.playerRepo.UpdateProgress(ctx, tx, tournament.ID, *advance.LoserID, bm.Round, true); err != nil {
				return err
			}
		}
	}

	if advance.Completed {
		for _, placement := range advance.Placements {
			if err := s.playerRepo.UpdatePlacement(ctx, tx, tournament.ID, placement.UserID, placement.Place, 0); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *progressionService) broadcast(tournament *models.Tournament, bracket *models.Bracket, advance *brackets.AdvanceResult, payouts []*models.PrizePayout) {
	s.hub.BroadcastTournamentEvent(tournament.ID, brackets.EventBracketUpdated, bracket)

	for _, uid := range advance.ReadyUIDs {
		if node := bracket.FindMatch(uid); node != nil {
			s.hub.BroadcastTournamentEvent(tournament.ID, brackets.EventMatchReady, node)
		}
	}

	if advance.Completed {
		s.hub.BroadcastTournamentEvent(tournament.ID, brackets.EventTournamentCompleted, map[string]interface{}{
			"tournament_id": tournament.ID,
			"champion_id":   advance.Champion,
		})
		if len(payouts) > 0 {
			s.hub.BroadcastTournamentEvent(tournament.ID, brackets.EventPrizesDistributed, payouts)
		}
		s.logger.Info("tournament completed",
			slog.Int("tournament_id", tournament.ID),
			slog.Any("champion_id", advance.Champion))
	}
}
