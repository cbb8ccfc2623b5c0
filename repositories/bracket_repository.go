package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kudzilenett/nhandare-server-sub002/models"
)

var ErrBracketNotFound = errors.New("bracket not found")

// BracketRepository stores the bracket document, one per tournament. The
// document and the normalized match rows must always change in the same
// transaction, which is why every write takes an SQLExecutor.
type BracketRepository interface {
	Save(ctx context.Context, exec SQLExecutor, bracket *models.Bracket) error
	GetByTournament(ctx context.Context, tournamentID int) (*models.Bracket, error)
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresBracketRepository struct {
	db *sql.DB
}

func NewPostgresBracketRepository(db *sql.DB) BracketRepository {
	return &postgresBracketRepository{db: db}
}

func (r *postgresBracketRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresBracketRepository) Save(ctx context.Context, exec SQLExecutor, bracket *models.Bracket) error {
	document, err := json.Marshal(bracket)
	if err != nil {
		return fmt.Errorf("failed to marshal bracket document: %w", err)
	}

	query := `
		INSERT INTO brackets (tournament_id, bracket_type, document, generated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tournament_id)
		DO UPDATE SET bracket_type = EXCLUDED.bracket_type,
		              document = EXCLUDED.document,
		              generated_at = EXCLUDED.generated_at`

	_, err = r.getExecutor(exec).ExecContext(ctx, query,
		bracket.TournamentID, bracket.Type, document, bracket.GeneratedAt)
	return err
}

func (r *postgresBracketRepository) GetByTournament(ctx context.Context, tournamentID int) (*models.Bracket, error) {
	var document []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT document FROM brackets WHERE tournament_id = $1`, tournamentID,
	).Scan(&document)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBracketNotFound
		}
		return nil, err
	}

	bracket := &models.Bracket{}
	if err := json.Unmarshal(document, bracket); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bracket document for tournament %d: %w", tournamentID, err)
	}
	return bracket, nil
}

func (r *postgresBracketRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	_, err := r.getExecutor(exec).ExecContext(ctx,
		`DELETE FROM brackets WHERE tournament_id = $1`, tournamentID)
	return err
}
