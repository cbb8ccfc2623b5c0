package models

import "time"

// PrizePayout is a payout instruction emitted to the payment collaborator
// when a tournament completes. The UUID identifies the instruction across
// the payment boundary; amounts are rounded to the cent before the row is
// written.
type PrizePayout struct {
	ID           string    `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	UserID       int       `json:"user_id" db:"user_id"`
	Placement    int       `json:"placement" db:"placement"`
	Amount       float64   `json:"amount" db:"amount"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
