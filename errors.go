package pokertournament

import (
	"errors"
	"fmt"

	"github.com/weedbox/pokertournament/blind"
	"github.com/weedbox/pokertournament/clock"
	"github.com/weedbox/pokertournament/payout"
	"github.com/weedbox/pokertournament/seat_manager"
	"github.com/weedbox/pokertournament/store"
)

// Error kinds. Every error returned by the engine matches exactly one of
// them with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
)

var (
	// NotFound
	ErrTournamentNotFound   = newKindError(ErrNotFound, "tournament: tournament not found")
	ErrRegistrationNotFound = newKindError(ErrNotFound, "tournament: registration not found")
	ErrPlayerNotFound       = newKindError(ErrNotFound, "tournament: player not found")
	ErrTableNotFound        = newKindError(ErrNotFound, "tournament: table not found")
	ErrLevelNotFound        = newKindError(ErrNotFound, "tournament: level not found")
	ErrPayoutNotFound       = newKindError(ErrNotFound, "tournament: payout not found")

	// InvalidState
	ErrTournamentFinished         = newKindError(ErrInvalidState, "tournament: tournament already finished")
	ErrNoLevels                   = newKindError(ErrInvalidState, "tournament: no levels configured")
	ErrRegistrationClosed         = newKindError(ErrInvalidState, "tournament: registration is closed")
	ErrCannotUnregisterEliminated = newKindError(ErrInvalidState, "tournament: cannot unregister eliminated player")
	ErrAlreadyEliminated          = newKindError(ErrInvalidState, "tournament: player already eliminated")
	ErrTableNotEmpty              = newKindError(ErrInvalidState, "tournament: cannot delete table with seated players")

	// Conflict
	ErrAlreadyRegistered = newKindError(ErrConflict, "tournament: player already registered")
	ErrSeatTaken         = newKindError(ErrConflict, "tournament: seat already taken")
	ErrZeroPrizePool     = newKindError(ErrConflict, "tournament: prize pool is zero")
	ErrDuplicateLevel    = newKindError(ErrConflict, "tournament: level number already exists")
	ErrDuplicatePlayer   = newKindError(ErrConflict, "tournament: player already exists")
)

type kindError struct {
	kind error
	msg  string
}

func newKindError(kind error, msg string) error {
	return &kindError{
		kind: kind,
		msg:  msg,
	}
}

func (e *kindError) Error() string {
	return e.msg
}

func (e *kindError) Is(target error) bool {
	return target == e.kind
}

// NewValidationError reports a rejected request before any mutation.
func NewValidationError(format string, args ...interface{}) error {
	return newKindError(ErrValidation, "validation: "+fmt.Sprintf(format, args...))
}

// ErrorKind returns the kind sentinel err belongs to, or nil for internal
// errors.
func ErrorKind(err error) error {
	for _, kind := range []error{ErrNotFound, ErrInvalidState, ErrConflict, ErrValidation} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// translateError maps collaborator errors onto the engine's error set.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case ErrorKind(err) != nil:
		return err
	case errors.Is(err, clock.ErrClockFinished):
		return ErrTournamentFinished
	case errors.Is(err, clock.ErrNoLevels):
		return ErrNoLevels
	case errors.Is(err, clock.ErrInvalidDirection),
		errors.Is(err, clock.ErrInvalidTimer),
		errors.Is(err, clock.ErrInvalidDuration),
		errors.Is(err, blind.ErrInvalidLevel),
		errors.Is(err, payout.ErrInvalidPayout),
		errors.Is(err, seat_manager.ErrInvalidMaxSeats),
		errors.Is(err, seat_manager.ErrInvalidSeat),
		errors.Is(err, seat_manager.ErrDuplicatePlayer):
		return newKindError(ErrValidation, err.Error())
	case errors.Is(err, blind.ErrDuplicateLevel):
		return ErrDuplicateLevel
	case errors.Is(err, blind.ErrLevelNotFound):
		return ErrLevelNotFound
	case errors.Is(err, payout.ErrPayoutNotFound):
		return ErrPayoutNotFound
	case errors.Is(err, payout.ErrZeroPrizePool):
		return ErrZeroPrizePool
	case errors.Is(err, seat_manager.ErrSeatTaken):
		return ErrSeatTaken
	case errors.Is(err, store.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, store.ErrPlayerNotFound):
		return ErrPlayerNotFound
	case errors.Is(err, store.ErrPlayerExists):
		return ErrDuplicatePlayer
	}
	return err
}
