package models

import "time"

// TournamentPlayer is a registration record. The progression engine mutates
// CurrentRound and IsEliminated as the bracket resolves; the prize
// distributor writes Placement and PrizeWon. Nothing mutates the row once
// the tournament is completed.
type TournamentPlayer struct {
	ID           int       `json:"id" db:"id"`
	UserID       int       `json:"user_id" db:"user_id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	SeedNumber   *int      `json:"seed_number,omitempty" db:"seed_number"`
	CurrentRound int       `json:"current_round" db:"current_round"`
	IsEliminated bool      `json:"is_eliminated" db:"is_eliminated"`
	Placement    *int      `json:"placement,omitempty" db:"placement"`
	PrizeWon     *float64  `json:"prize_won,omitempty" db:"prize_won"`
	RegisteredAt time.Time `json:"registered_at" db:"registered_at"`

	User *User `json:"user,omitempty" db:"-"`
}
