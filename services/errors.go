package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Generation-time failures. All of them abort the operation and leave
	// prior state untouched.
	ErrInsufficientPlayers        = errors.New("not enough players to generate a bracket (minimum 2)")
	ErrSeedCountMismatch          = errors.New("seed list does not match registration count")
	ErrInvalidBracketType         = errors.New("unsupported bracket type")
	ErrUnresolvedBracketInvariant = errors.New("generated bracket failed invariant validation")
	ErrConcurrentRegeneration     = errors.New("bracket regeneration already in progress for this tournament")

	// Progression-time failures, isolated to the match they concern.
	ErrMatchNotCompleted = errors.New("match has no terminal result to progress")
	ErrMatchNotStartable = errors.New("match cannot be started in the tournament's current status")
	ErrMatchNotWaiting   = errors.New("match is not waiting to be started")

	// Registration failures.
	ErrRegistrationNotOpen     = errors.New("tournament registration is not open")
	ErrRegistrationClosed      = errors.New("tournament registration deadline has passed")
	ErrTournamentFull          = errors.New("tournament has reached its player capacity")
	ErrPlayerAlreadyRegistered = errors.New("player already registered for this tournament")

	// Lifecycle failures.
	ErrTournamentInvalidStatusTransition = errors.New("invalid tournament status transition")
	ErrPrizesAlreadyDistributed          = errors.New("prizes already distributed for this tournament")

	// Entity lookups.
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrBracketNotFound    = errors.New("bracket not found")
	ErrMatchNotFound      = errors.New("match not found")
	ErrUserNotFound       = errors.New("user not found")
)
