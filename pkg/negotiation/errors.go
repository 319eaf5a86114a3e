package negotiation

import (
	"errors"
	"fmt"
	"time"
)

// User-facing negotiation failures. These are recoverable by retrying and
// are reported only to the operator whose request failed, never broadcast.
var (
	// ErrWrongTurn means the operator acted out of role: the selector
	// tried to pick a route, or the non-selector tried to pick a
	// destination.
	ErrWrongTurn = errors.New("wrong turn")

	// ErrNoPartner means the other operator seat is empty.
	ErrNoPartner = errors.New("no partner connected")

	// ErrBusy means a move is in flight or a proposal is already pending.
	ErrBusy = errors.New("negotiation busy")

	// ErrNoPendingRequest means a route was chosen before any destination.
	ErrNoPendingRequest = errors.New("no pending destination request")

	// ErrDestinationUnresolved means the final target is no longer on the
	// robot's map. Unlike the errors above this aborts the whole round and
	// is broadcast, since retrying the same selection cannot succeed.
	ErrDestinationUnresolved = errors.New("destination not found on map")
)

// CooldownError rejects a destination request during the post-arrival
// cooldown window and reports how long the selector still has to wait.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("cooldown active: %.0fs remaining", e.Remaining.Seconds())
}
