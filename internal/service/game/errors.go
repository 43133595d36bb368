package game

import "errors"

// State errors are caller-correctable and always surfaced, never retried.
var (
	ErrSessionNotFound        = errors.New("session not found")
	ErrInvalidPhaseTransition = errors.New("invalid phase transition")
	ErrMissingConfiguration   = errors.New("conversation mode not selected")
	ErrTurnAlreadyAnswered    = errors.New("turn already answered")
	ErrInvalidPlayerIndex     = errors.New("invalid player index")
	ErrInvalidCardIndex       = errors.New("invalid card index")
	ErrInvalidMode            = errors.New("unknown conversation mode")
)
