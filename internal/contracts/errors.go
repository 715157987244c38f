package contracts

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter marks request values outside the accepted ranges
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInsufficientUniverse is returned when there is nothing to select from
	ErrInsufficientUniverse = errors.New("insufficient universe")

	// ErrUnknownStrategy is returned for unrecognized strategy names
	ErrUnknownStrategy = errors.New("unknown strategy")

	// ErrTargetReturnRequired is returned when target_return strategy has no target
	ErrTargetReturnRequired = errors.New("target return strategy requires a target return")
)

// ParameterError describes one rejected request field.
// errors.Is matches ErrInvalidParameter and the optional cause.
type ParameterError struct {
	Field   string
	Message string
	Err     error
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ParameterError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidParameter, e.Err}
	}
	return []error{ErrInvalidParameter}
}
