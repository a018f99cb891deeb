package guides

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/declarr/internal/domain/manager"
)

// FetchError indicates that the guides metadata could not be downloaded or
// unpacked.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching guides metadata from %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// RenderError indicates that the guides metadata could not be rendered into
// one instance configuration.
type RenderError struct {
	Key manager.InstanceKey
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("rendering guides metadata for %s: %v", e.Key, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// IsFetchError reports whether err is or wraps a FetchError.
func IsFetchError(err error) bool {
	var fetchErr *FetchError
	return errors.As(err, &fetchErr)
}

// IsRenderError reports whether err is or wraps a RenderError.
func IsRenderError(err error) bool {
	var renderErr *RenderError
	return errors.As(err, &renderErr)
}
