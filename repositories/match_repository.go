package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kudzilenett/nhandare-server-sub002/models"
)

var (
	ErrMatchNotFound           = errors.New("match not found")
	ErrMatchBracketUIDConflict = errors.New("match bracket uid conflict")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int, round *int, status *models.MatchStatus) ([]*models.Match, error)
	UpdatePlayersAndStatus(ctx context.Context, exec SQLExecutor, id int, player1ID, player2ID *int, status models.MatchStatus) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.MatchStatus) error
	MarkStarted(ctx context.Context, exec SQLExecutor, id int) error
	UpdateResult(ctx context.Context, exec SQLExecutor, id int, result models.MatchResult, winnerID *int, duration *int, gameData *string) error
	ClearResult(ctx context.Context, exec SQLExecutor, id int) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `
	id, tournament_id, game_id, round, bracket_uid, player1_id, player2_id,
	status, result, winner_id, duration, game_data, started_at, completed_at, created_at
	`

func scanMatch(row interface{ Scan(...interface{}) error }, m *models.Match) error {
	return row.Scan(
		&m.ID, &m.TournamentID, &m.GameID, &m.Round, &m.BracketUID, &m.Player1ID, &m.Player2ID,
		&m.Status, &m.Result, &m.WinnerID, &m.Duration, &m.GameData, &m.StartedAt, &m.CompletedAt, &m.CreatedAt,
	)
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		INSERT INTO matches (tournament_id, game_id, round, bracket_uid, player1_id, player2_id, status, result)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		match.TournamentID, match.GameID, match.Round, match.BracketUID,
		match.Player1ID, match.Player2ID, match.Status, match.Result,
	).Scan(&match.ID, &match.CreatedAt)

	if isUniqueViolation(err, "matches_tournament_id_bracket_uid_key") {
		return ErrMatchBracketUIDConflict
	}
	return err
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT` + matchColumns + `FROM matches WHERE id = $1`

	m := &models.Match{}
	if err := scanMatch(r.db.QueryRowContext(ctx, query, id), m); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match %d: %w", id, err)
	}
	return m, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int, round *int, status *models.MatchStatus) ([]*models.Match, error) {
	var query strings.Builder
	query.WriteString(`SELECT` + matchColumns + `FROM matches WHERE tournament_id = $1`)

	args := []interface{}{tournamentID}
	if round != nil {
		args = append(args, *round)
		query.WriteString(` AND round = $` + strconv.Itoa(len(args)))
	}
	if status != nil {
		args = append(args, *status)
		query.WriteString(` AND status = $` + strconv.Itoa(len(args)))
	}
	query.WriteString(` ORDER BY round ASC, id ASC`)

	rows, err := r.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m := &models.Match{}
		if err := scanMatch(rows, m); err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// UpdatePlayersAndStatus fills participants propagated from the bracket and
// moves the match to its new status in one statement, so a partially
// advanced match is never observable.
func (r *postgresMatchRepository) UpdatePlayersAndStatus(ctx context.Context, exec SQLExecutor, id int, player1ID, player2ID *int, status models.MatchStatus) error {
	result, err := r.getExecutor(exec).ExecContext(ctx, `
		UPDATE matches SET player1_id = $1, player2_id = $2, status = $3
		WHERE id = $4`,
		player1ID, player2ID, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.MatchStatus) error {
	result, err := r.getExecutor(exec).ExecContext(ctx,
		`UPDATE matches SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) MarkStarted(ctx context.Context, exec SQLExecutor, id int) error {
	result, err := r.getExecutor(exec).ExecContext(ctx,
		`UPDATE matches SET status = $1, started_at = NOW() WHERE id = $2`,
		models.MatchStatusActive, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

// UpdateResult records a terminal result delivered by the game session and
// completes the match.
func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, id int, result models.MatchResult, winnerID *int, duration *int, gameData *string) error {
	res, err := r.getExecutor(exec).ExecContext(ctx, `
		UPDATE matches
		SET result = $1, winner_id = $2, duration = $3, game_data = COALESCE($4, game_data),
		    status = $5, completed_at = NOW()
		WHERE id = $6`,
		result, winnerID, duration, gameData, models.MatchStatusCompleted, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(res, ErrMatchNotFound)
}

// ClearResult puts a drawn elimination match back in play for its replay.
func (r *postgresMatchRepository) ClearResult(ctx context.Context, exec SQLExecutor, id int) error {
	res, err := r.getExecutor(exec).ExecContext(ctx, `
		UPDATE matches
		SET result = $1, winner_id = NULL, status = $2, completed_at = NULL
		WHERE id = $3`,
		models.ResultPending, models.MatchStatusActive, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(res, ErrMatchNotFound)
}

// DeleteByTournament clears all persisted matches; only ever called inside
// the regeneration transaction together with the bracket delete.
func (r *postgresMatchRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	_, err := r.getExecutor(exec).ExecContext(ctx,
		`DELETE FROM matches WHERE tournament_id = $1`, tournamentID)
	return err
}
