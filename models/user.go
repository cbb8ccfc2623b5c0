package models

import "time"

// User carries the rating state the engine needs. Account management lives
// with the outer platform.
type User struct {
	ID          int       `json:"id"`
	Username    string    `json:"username"`
	Rating      int       `json:"rating"`
	GamesPlayed int       `json:"games_played"`
	CreatedAt   time.Time `json:"created_at"`
}
