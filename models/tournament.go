package models

import "time"

// TournamentStatus представляет статусы турнира, соответствующие ENUM в БД.
type TournamentStatus string

const (
	// StatusOpen: registration window active, matches cannot be started yet.
	StatusOpen TournamentStatus = "open"
	// StatusActive: bracket built, matches playable.
	StatusActive TournamentStatus = "active"
	// StatusClosed: registration and bracket frozen, but matches already in
	// the bracket may still be started and played.
	StatusClosed TournamentStatus = "closed"
	// StatusCompleted: final match resolved, prizes distributed. Terminal.
	StatusCompleted TournamentStatus = "completed"
)

// validTransitions описывает допустимые переходы статусов турнира.
var validTransitions = map[TournamentStatus][]TournamentStatus{
	StatusOpen:      {StatusActive},
	StatusActive:    {StatusClosed, StatusCompleted},
	StatusClosed:    {StatusCompleted},
	StatusCompleted: {},
}

// CanTransition reports whether moving from one tournament status to another
// is allowed by the lifecycle state machine.
func CanTransition(from, to TournamentStatus) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsMatchStartable reports whether matches of a tournament in this status may
// be started. Open tournaments have no bracket yet; completed ones are done.
func (s TournamentStatus) IsMatchStartable() bool {
	return s == StatusActive || s == StatusClosed
}

func (s TournamentStatus) IsTerminal() bool {
	return s == StatusCompleted
}

// Tournament представляет турнир.
type Tournament struct {
	ID          int              `json:"id" db:"id"`
	Name        string           `json:"name" db:"name"`
	Description *string          `json:"description,omitempty" db:"description"`
	GameID      int              `json:"game_id" db:"game_id"`
	BracketType BracketType      `json:"bracket_type" db:"bracket_type"`
	Status      TournamentStatus `json:"status" db:"status"`
	PrizePool   float64          `json:"prize_pool" db:"prize_pool"`
	MaxPlayers  int              `json:"max_players" db:"max_players"`
	RegCloseAt  time.Time        `json:"reg_close_at" db:"reg_close_at"`
	StartAt     time.Time        `json:"start_at" db:"start_at"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Players []TournamentPlayer `json:"players,omitempty" db:"-"`
	Bracket *Bracket           `json:"bracket,omitempty" db:"-"`
	Matches []Match            `json:"matches,omitempty" db:"-"`
}
