package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/kudzilenett/nhandare-server-sub002/models"
)

var ErrPayoutConflict = errors.New("payout already recorded for this tournament and user")

type PayoutRepository interface {
	Create(ctx context.Context, exec SQLExecutor, payout *models.PrizePayout) error
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.PrizePayout, error)
	ExistsForTournament(ctx context.Context, tournamentID int) (bool, error)
}

type postgresPayoutRepository struct {
	db *sql.DB
}

func NewPostgresPayoutRepository(db *sql.DB) PayoutRepository {
	return &postgresPayoutRepository{db: db}
}

func (r *postgresPayoutRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPayoutRepository) Create(ctx context.Context, exec SQLExecutor, payout *models.PrizePayout) error {
	query := `
		INSERT INTO prize_payouts (id, tournament_id, user_id, placement, amount)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		payout.ID, payout.TournamentID, payout.UserID, payout.Placement, payout.Amount,
	).Scan(&payout.CreatedAt)

	if isUniqueViolation(err, "prize_payouts_tournament_id_user_id_key") {
		return ErrPayoutConflict
	}
	return err
}

func (r *postgresPayoutRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.PrizePayout, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, tournament_id, user_id, placement, amount, created_at
		FROM prize_payouts
		WHERE tournament_id = $1
		ORDER BY placement ASC`, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payouts := make([]*models.PrizePayout, 0)
	for rows.Next() {
		p := &models.PrizePayout{}
		if err := rows.Scan(&p.ID, &p.TournamentID, &p.UserID, &p.Placement, &p.Amount, &p.CreatedAt); err != nil {
			return nil, err
		}
		payouts = append(payouts, p)
	}
	return payouts, rows.Err()
}

// ExistsForTournament is the idempotency guard for prize distribution.
func (r *postgresPayoutRepository) ExistsForTournament(ctx context.Context, tournamentID int) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM prize_payouts WHERE tournament_id = $1)`, tournamentID,
	).Scan(&exists)
	return exists, err
}
