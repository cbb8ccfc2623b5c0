package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kudzilenett/nhandare-server-sub002/models"
)

var (
	ErrPlayerNotFound          = errors.New("tournament player not found")
	ErrPlayerAlreadyRegistered = errors.New("player already registered for this tournament")
)

type PlayerRepository interface {
	Register(ctx context.Context, p *models.TournamentPlayer) error
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.TournamentPlayer, error)
	UpdateSeedNumber(ctx context.Context, exec SQLExecutor, id int, seedNumber *int) error
	UpdateProgress(ctx context.Context, exec SQLExecutor, tournamentID, userID, currentRound int, isEliminated bool) error
	UpdatePlacement(ctx context.Context, exec SQLExecutor, tournamentID, userID, placement int, prizeWon float64) error
	ResetProgress(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPlayerRepository) Register(ctx context.Context, p *models.TournamentPlayer) error {
	query := `
		INSERT INTO tournament_players (user_id, tournament_id, current_round)
		VALUES ($1, $2, $3)
		RETURNING id, registered_at`

	err := r.db.QueryRowContext(ctx, query, p.UserID, p.TournamentID, p.CurrentRound).
		Scan(&p.ID, &p.RegisteredAt)
	if isUniqueViolation(err, "tournament_players_user_id_tournament_id_key") {
		return ErrPlayerAlreadyRegistered
	}
	return err
}

func (r *postgresPlayerRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.TournamentPlayer, error) {
	query := `
		SELECT tp.id, tp.user_id, tp.tournament_id, tp.seed_number, tp.current_round,
		       tp.is_eliminated, tp.placement, tp.prize_won, tp.registered_at,
		       u.id, u.username, u.rating, u.games_played, u.created_at
		FROM tournament_players tp
		JOIN users u ON u.id = tp.user_id
		WHERE tp.tournament_id = $1
		ORDER BY tp.registered_at ASC, tp.user_id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query players for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	players := make([]*models.TournamentPlayer, 0)
	for rows.Next() {
		p := &models.TournamentPlayer{User: &models.User{}}
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.TournamentID, &p.SeedNumber, &p.CurrentRound,
			&p.IsEliminated, &p.Placement, &p.PrizeWon, &p.RegisteredAt,
			&p.User.ID, &p.User.Username, &p.User.Rating, &p.User.GamesPlayed, &p.User.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan tournament player row: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (r *postgresPlayerRepository) UpdateSeedNumber(ctx context.Context, exec SQLExecutor, id int, seedNumber *int) error {
	result, err := r.getExecutor(exec).ExecContext(ctx,
		`UPDATE tournament_players SET seed_number = $1 WHERE id = $2`, seedNumber, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) UpdateProgress(ctx context.Context, exec SQLExecutor, tournamentID, userID, currentRound int, isEliminated bool) error {
	result, err := r.getExecutor(exec).ExecContext(ctx, `
		UPDATE tournament_players SET current_round = $1, is_eliminated = $2
		WHERE tournament_id = $3 AND user_id = $4`,
		currentRound, isEliminated, tournamentID, userID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) UpdatePlacement(ctx context.Context, exec SQLExecutor, tournamentID, userID, placement int, prizeWon float64) error {
	result, err := r.getExecutor(exec).ExecContext(ctx, `
		UPDATE tournament_players SET placement = $1, prize_won = $2
		WHERE tournament_id = $3 AND user_id = $4`,
		placement, prizeWon, tournamentID, userID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

// ResetProgress clears seed, round and elimination state for every player of
// a tournament. Part of the atomic regeneration transaction.
func (r *postgresPlayerRepository) ResetProgress(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	_, err := r.getExecutor(exec).ExecContext(ctx, `
		UPDATE tournament_players
		SET seed_number = NULL, current_round = 1, is_eliminated = FALSE, placement = NULL, prize_won = NULL
		WHERE tournament_id = $1`, tournamentID)
	return err
}
