package models

import "time"

type MatchStatus string

const (
	// MatchStatusPending: created from the bracket but at least one
	// participant is still unknown.
	MatchStatusPending MatchStatus = "pending"
	// MatchStatusWaiting: both participants known, startable.
	MatchStatusWaiting MatchStatus = "waiting"
	// MatchStatusActive: contest in progress, driven by the game session.
	MatchStatusActive    MatchStatus = "active"
	MatchStatusCompleted MatchStatus = "completed"
)

type MatchResult string

const (
	ResultPending    MatchResult = "pending"
	ResultPlayer1Win MatchResult = "player1_win"
	ResultPlayer2Win MatchResult = "player2_win"
	ResultDraw       MatchResult = "draw"
)

// Match is a persisted playable contest, one per non-bye bracket node. The
// game-session collaborator owns the pending→active→completed part of its
// lifecycle; the progression engine consumes the terminal state. The contest
// itself is opaque here: GameData carries whatever the game engine stores.
type Match struct {
	ID           int     `json:"id" db:"id"`
	TournamentID int     `json:"tournament_id" db:"tournament_id"`
	GameID       int     `json:"game_id" db:"game_id"`
	Round        int     `json:"round" db:"round"`
	BracketUID   string  `json:"bracket_uid" db:"bracket_uid"`
	Player1ID    *int    `json:"player1_id,omitempty" db:"player1_id"`
	Player2ID    *int    `json:"player2_id,omitempty" db:"player2_id"`

	Status   MatchStatus `json:"status" db:"status"`
	Result   MatchResult `json:"result" db:"result"`
	WinnerID *int        `json:"winner_id,omitempty" db:"winner_id"`

	// Duration in seconds, set by the game session on completion.
	Duration *int    `json:"duration,omitempty" db:"duration"`
	GameData *string `json:"game_data,omitempty" db:"game_data"`

	StartedAt   *time.Time `json:"started_at,omitempty" db:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// WinnerFromResult maps a terminal result onto the winning player id. Draws
// and pending results have no winner.
func (m *Match) WinnerFromResult() *int {
	switch m.Result {
	case ResultPlayer1Win:
		return m.Player1ID
	case ResultPlayer2Win:
		return m.Player2ID
	}
	return nil
}

// LoserID returns the participant that did not win, nil for draws or when
// participants are incomplete.
func (m *Match) LoserID() *int {
	if m.WinnerID == nil || m.Player1ID == nil || m.Player2ID == nil {
		return nil
	}
	if *m.WinnerID == *m.Player1ID {
		return m.Player2ID
	}
	return m.Player1ID
}
