package models

import (
	"fmt"
	"time"
)

type BracketType string

const (
	BracketSingleElimination BracketType = "SINGLE_ELIMINATION"
	BracketDoubleElimination BracketType = "DOUBLE_ELIMINATION"
	BracketRoundRobin        BracketType = "ROUND_ROBIN"
	BracketSwiss             BracketType = "SWISS"
)

func IsValidBracketType(t BracketType) bool {
	switch t {
	case BracketSingleElimination, BracketDoubleElimination, BracketRoundRobin, BracketSwiss:
		return true
	}
	return false
}

// SlotKind tags a SeedSlot. A slot is either assigned a concrete seed, a bye
// filler, or pending the winner of an earlier match. The tagged variant
// replaces the old "TBD"/"BYE" string sentinels that made slot state
// ambiguous.
type SlotKind string

const (
	SlotAssigned SlotKind = "assigned"
	SlotBye      SlotKind = "bye"
	SlotPending  SlotKind = "pending"
)

// SeedSlot is one side of a bracket match as planned at build time.
type SeedSlot struct {
	Kind SlotKind `json:"kind"`
	Seed int      `json:"seed,omitempty"`
}

func AssignedSlot(seed int) SeedSlot { return SeedSlot{Kind: SlotAssigned, Seed: seed} }
func ByeSlot() SeedSlot              { return SeedSlot{Kind: SlotBye} }
func PendingSlot() SeedSlot          { return SeedSlot{Kind: SlotPending} }

func (s SeedSlot) IsAssigned() bool { return s.Kind == SlotAssigned }
func (s SeedSlot) IsBye() bool      { return s.Kind == SlotBye }
func (s SeedSlot) IsPending() bool  { return s.Kind == SlotPending }

func (s SeedSlot) String() string {
	switch s.Kind {
	case SlotAssigned:
		return fmt.Sprintf("seed %d", s.Seed)
	case SlotBye:
		return "bye"
	default:
		return "pending"
	}
}

// BracketMatchStatus is the lifecycle of a structural bracket node. It is
// distinct from MatchStatus: a bracket match with a bye completes at build
// time and never gets a playable match at all.
type BracketMatchStatus string

const (
	// BracketMatchPending: at least one slot still waits on an earlier match.
	BracketMatchPending BracketMatchStatus = "pending"
	// BracketMatchWaiting: both players known, contest startable (or a bye
	// already resolved).
	BracketMatchWaiting BracketMatchStatus = "waiting"
	// BracketMatchActive: the persisted match is being played.
	BracketMatchActive BracketMatchStatus = "active"
	// BracketMatchCompleted: winner recorded and propagated.
	BracketMatchCompleted BracketMatchStatus = "completed"
)

// BracketMatch is a node of the advancement graph. MatchNumber is the 0-based
// position within its round and is stable for the life of the bracket; match
// i of round r feeds slot 1 (even i) or slot 2 (odd i) of match i/2 in round
// r+1. NextMatchUID is fixed at build time and never recomputed.
type BracketMatch struct {
	UID         string `json:"uid"`
	Round       int    `json:"round"`
	MatchNumber int    `json:"match_number"`

	Player1Slot SeedSlot `json:"player1_slot"`
	Player2Slot SeedSlot `json:"player2_slot"`

	Player1ID *int `json:"player1_id,omitempty"`
	Player2ID *int `json:"player2_id,omitempty"`

	IsBye    bool               `json:"is_bye"`
	Status   BracketMatchStatus `json:"status"`
	WinnerID *int               `json:"winner_id,omitempty"`

	NextMatchUID *string `json:"next_match_uid,omitempty"`

	// MatchID links to the persisted playable match, nil for byes.
	MatchID *int `json:"match_id,omitempty"`
}

// BracketMatchUID builds the canonical node key for a (round, matchNumber)
// address, e.g. "R2M0".
func BracketMatchUID(round, matchNumber int) string {
	return fmt.Sprintf("R%dM%d", round, matchNumber)
}

// HasBothPlayers reports whether both participant ids are known.
func (m *BracketMatch) HasBothPlayers() bool {
	return m.Player1ID != nil && m.Player2ID != nil
}

type Round struct {
	Number  int            `json:"number"`
	Matches []BracketMatch `json:"matches"`
}

// PlayerSeed fixes a player's position in the seed order. Created once at
// bracket generation time and immutable thereafter.
type PlayerSeed struct {
	UserID     int `json:"user_id"`
	SeedNumber int `json:"seed_number"`
	Rating     int `json:"rating"`
}

// BracketStanding accumulates per-player results for round robin and swiss
// brackets. Points use the 1 / 0.5 / 0 scale.
type BracketStanding struct {
	UserID     int     `json:"user_id"`
	SeedNumber int     `json:"seed_number"`
	Points     float64 `json:"points"`
	Wins       int     `json:"wins"`
	Draws      int     `json:"draws"`
	Losses     int     `json:"losses"`
	Byes       int     `json:"byes"`
}

// Bracket is the complete round/match structure for a tournament, persisted
// as a single document owned by exactly one tournament and kept consistent
// with the normalized match rows in the same transaction.
type Bracket struct {
	TournamentID int         `json:"tournament_id"`
	Type         BracketType `json:"type"`
	TotalRounds  int         `json:"total_rounds"`
	TotalMatches int         `json:"total_matches"`

	Players []PlayerSeed `json:"players"`
	Rounds  []Round      `json:"rounds"`

	// Standings are maintained for round robin and swiss brackets only.
	Standings []BracketStanding `json:"standings,omitempty"`

	GeneratedAt time.Time `json:"generated_at"`
}

// FindMatch locates a bracket node by UID. Returns nil when the UID does not
// address a node of this bracket.
func (b *Bracket) FindMatch(uid string) *BracketMatch {
	for ri := range b.Rounds {
		for mi := range b.Rounds[ri].Matches {
			if b.Rounds[ri].Matches[mi].UID == uid {
				return &b.Rounds[ri].Matches[mi]
			}
		}
	}
	return nil
}

// MatchAt locates a bracket node by its (round, matchNumber) address.
func (b *Bracket) MatchAt(round, matchNumber int) *BracketMatch {
	return b.FindMatch(BracketMatchUID(round, matchNumber))
}

// SeedUser resolves a seed number to its user id, 0 when out of range.
func (b *Bracket) SeedUser(seed int) int {
	if seed < 1 || seed > len(b.Players) {
		return 0
	}
	return b.Players[seed-1].UserID
}

// FinalMatch returns the single sink of the advancement graph, nil for
// bracket types without one (round robin, swiss).
func (b *Bracket) FinalMatch() *BracketMatch {
	if b.Type != BracketSingleElimination || len(b.Rounds) == 0 {
		return nil
	}
	last := &b.Rounds[len(b.Rounds)-1]
	if len(last.Matches) != 1 {
		return nil
	}
	return &last.Matches[0]
}

// Standing returns the standings row for a user, nil when absent.
func (b *Bracket) Standing(userID int) *BracketStanding {
	for i := range b.Standings {
		if b.Standings[i].UserID == userID {
			return &b.Standings[i]
		}
	}
	return nil
}
