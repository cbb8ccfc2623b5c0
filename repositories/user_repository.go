package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/kudzilenett/nhandare-server-sub002/models"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetRatings(ctx context.Context, userIDs []int) (map[int]int, error)
	UpdateRating(ctx context.Context, exec SQLExecutor, id, rating, gamesPlayed int) error
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

func (r *postgresUserRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	u := &models.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, rating, games_played, created_at FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Username, &u.Rating, &u.GamesPlayed, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *postgresUserRepository) GetRatings(ctx context.Context, userIDs []int) (map[int]int, error) {
	ratings := make(map[int]int, len(userIDs))
	if len(userIDs) == 0 {
		return ratings, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, rating FROM users WHERE id = ANY($1)`, pq.Array(userIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id, rating int
		if err := rows.Scan(&id, &rating); err != nil {
			return nil, err
		}
		ratings[id] = rating
	}
	return ratings, rows.Err()
}

func (r *postgresUserRepository) UpdateRating(ctx context.Context, exec SQLExecutor, id, rating, gamesPlayed int) error {
	result, err := r.getExecutor(exec).ExecContext(ctx,
		`UPDATE users SET rating = $1, games_played = $2 WHERE id = $3`, rating, gamesPlayed, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrUserNotFound)
}
