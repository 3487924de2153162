package game

import (
	"errors"
	"fmt"
)

// ErrMalformedCombination is wrapped by every classification failure.
var ErrMalformedCombination = errors.New("cards do not form a combination")

// ErrIllegalAction is wrapped by every rejected state transition.
var ErrIllegalAction = errors.New("illegal action")

// ErrLogic marks an invariant violation inside the engine. It indicates a
// defect and must abort the current round or search, never be swallowed.
var ErrLogic = errors.New("logic error")

// MalformedCombinationError reports a card set that matches no known shape.
type MalformedCombinationError struct {
	Cards  CardSet
	Reason string
}

func (e *MalformedCombinationError) Error() string {
	return fmt.Sprintf("cards %v do not form a combination: %s", e.Cards, e.Reason)
}

func (e *MalformedCombinationError) Unwrap() error { return ErrMalformedCombination }

// IllegalActionError reports an action that failed the legality check.
// The state it was applied to is left unchanged.
type IllegalActionError struct {
	Player int
	Action Action
	Reason string
}

func (e *IllegalActionError) Error() string {
	return fmt.Sprintf("illegal action by player %d (%v): %s", e.Player, e.Action, e.Reason)
}

func (e *IllegalActionError) Unwrap() error { return ErrIllegalAction }

func malformed(cards CardSet, reason string) error {
	return &MalformedCombinationError{Cards: cards, Reason: reason}
}

func illegal(player int, action Action, reason string) error {
	return &IllegalActionError{Player: player, Action: action, Reason: reason}
}

func logicErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrLogic}, args...)...)
}
