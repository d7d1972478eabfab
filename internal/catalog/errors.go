package catalog

import (
	"errors"
	"fmt"
)

// ErrTooLarge is wrapped by a FetchError when the remote lesson file
// exceeds Config.MaxBodySize.
var ErrTooLarge = errors.New("lesson file too large")

// FetchError reports a failed download of the remote lesson file.
type FetchError struct {
	URL        string
	StatusCode int // set for non-2xx responses
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch lessons from %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch lessons from %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// CustomError reports an unreadable custom lesson file. It is returned
// together with the main lesson list, which is still usable.
type CustomError struct {
	Path string
	Err  error
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("custom lessons %s: %v", e.Path, e.Err)
}

func (e *CustomError) Unwrap() error { return e.Err }
