package pipeline

import (
	"errors"
	"fmt"
)

// ErrNoActiveConfiguration indicates that none of the selected plugins has
// any instance configured. An empty run is a failure, not a vacuous pass.
var ErrNoActiveConfiguration = errors.New("no configuration defined for any selected plugins")

// StageError annotates a failure with the stage it happened in. The
// original cause stays reachable through errors.Is and errors.As.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// IsStageError returns the StageError in the chain, if any.
func IsStageError(err error) (*StageError, bool) {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr, true
	}
	return nil, false
}
