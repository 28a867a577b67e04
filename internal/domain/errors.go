package domain

import "errors"

// Sentinel errors for the domain layer.
var (
	ErrNotFound     = errors.New("domain: not found")
	ErrConflict     = errors.New("domain: conflict")
	ErrNotOwner     = errors.New("domain: actor does not own task")
	ErrInvalidState = errors.New("domain: action not valid for task status")
	ErrValidation   = errors.New("domain: validation failed")
)

// ValidationError names the payload field that failed a completion requirement.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
