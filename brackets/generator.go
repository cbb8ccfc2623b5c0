package brackets

import (
	"context"
	"errors"
	"fmt"

	"github.com/kudzilenett/nhandare-server-sub002/models"
)

// Engine-level failures. Generation errors are fatal to the operation and
// leave prior state untouched; callers wrap them with tournament context.
var (
	ErrInsufficientPlayers = errors.New("not enough players to generate a bracket (minimum 2)")
	ErrSeedCountMismatch   = errors.New("seed list does not match registration count")
	ErrInvalidBracketType  = errors.New("unsupported bracket type")
	ErrUnresolvedInvariant = errors.New("bracket invariant violated")
	ErrUnknownBracketMatch = errors.New("bracket match not found")
	ErrMatchNotAdvanceable = errors.New("bracket match is not in an advanceable state")
)

type GenerateBracketParams struct {
	Tournament *models.Tournament
	Seeds      []models.PlayerSeed

	// RegistrationCount is the number of active registrations the seeds were
	// built from. A seed list of any other length is a caller error.
	RegistrationCount int
}

// Placement is a final standing produced when a bracket resolves.
type Placement struct {
	UserID int
	Place  int
}

// AdvanceResult describes every effect of applying one match completion, so
// the service layer can persist and broadcast without re-deriving bracket
// state.
type AdvanceResult struct {
	// Duplicate is set when the node was already completed; the event is an
	// idempotent no-op and nothing else in the result is populated.
	Duplicate bool

	// Replay is set when a draw is not a terminal outcome for this bracket
	// type and the contest must be replayed.
	Replay bool

	WinnerID *int
	LoserID  *int

	// ReadyUIDs lists nodes that now have both participants and became
	// startable.
	ReadyUIDs []string

	// NewRound is a freshly paired round (swiss), needing persisted matches.
	NewRound *models.Round

	// Completed is set when the whole bracket resolved; Champion and
	// Placements are populated alongside it.
	Completed  bool
	Champion   *int
	Placements []Placement
}

// BracketGenerator is the strategy for one bracket type: it both builds the
// structure and advances results through it. Implementations share the
// Bracket/Round/BracketMatch data shapes but differ in construction and
// progression rules.
type BracketGenerator interface {
	GetName() string

	GenerateBracket(ctx context.Context, params GenerateBracketParams) (*models.Bracket, error)

	// AdvanceWinner applies a terminal match result to the bracket in place.
	// Callers serialize invocations per tournament; re-delivery of a result
	// for an already completed node yields AdvanceResult.Duplicate.
	AdvanceWinner(bracket *models.Bracket, matchUID string, result models.MatchResult) (*AdvanceResult, error)
}

// ForType selects the generator strategy for a bracket type.
func ForType(t models.BracketType) (BracketGenerator, error) {
	switch t {
	case models.BracketSingleElimination:
		return NewSingleEliminationGenerator(), nil
	case models.BracketRoundRobin:
		return NewRoundRobinGenerator(), nil
	case models.BracketSwiss:
		return NewSwissGenerator(), nil
	default:
		// DOUBLE_ELIMINATION is a recognized type without an implemented
		// algorithm.
		return nil, fmt.Errorf("%w: %q", ErrInvalidBracketType, t)
	}
}

// validateSeeds rejects malformed seed lists before any structure is built:
// too few players, a length that disagrees with the registration count, or a
// non-dense seed numbering. Patching any of these at build time is exactly
// how first-round matches end up missing a player.
func validateSeeds(seeds []models.PlayerSeed, registrationCount int) error {
	if len(seeds) < 2 {
		return fmt.Errorf("%w: got %d", ErrInsufficientPlayers, len(seeds))
	}
	if len(seeds) != registrationCount {
		return fmt.Errorf("%w: expected %d players, got %d", ErrSeedCountMismatch, registrationCount, len(seeds))
	}
	seen := make(map[int]bool, len(seeds))
	for _, s := range seeds {
		if s.SeedNumber < 1 || s.SeedNumber > len(seeds) {
			return fmt.Errorf("%w: seed number %d out of range 1..%d", ErrSeedCountMismatch, s.SeedNumber, len(seeds))
		}
		if seen[s.SeedNumber] {
			return fmt.Errorf("%w: duplicate seed number %d", ErrSeedCountMismatch, s.SeedNumber)
		}
		seen[s.SeedNumber] = true
	}
	return nil
}

// orderedSeeds returns the seed list indexed so that orderedSeeds[i] holds
// seed number i+1.
func orderedSeeds(seeds []models.PlayerSeed) []models.PlayerSeed {
	out := make([]models.PlayerSeed, len(seeds))
	for _, s := range seeds {
		out[s.SeedNumber-1] = s
	}
	return out
}
