package botdb

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by Rename when the source key is absent.
	ErrNotFound = errors.New("botdb: key not found")
	// ErrRejected is wrapped when a driver refused a write without an error.
	ErrRejected = errors.New("botdb: write rejected by driver")
	// ErrClosed is returned by operations on a closed Store.
	ErrClosed = errors.New("botdb: store closed")
)

// OpError reports a failed backend operation for one key (or for the whole
// store when Key is empty).
type OpError struct {
	Op      string
	Key     string
	Backend string
	Err     error
}

func (e *OpError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("botdb: %s on %s: %v", e.Op, e.Backend, e.Err)
	}
	return fmt.Sprintf("botdb: %s %q on %s: %v", e.Op, e.Key, e.Backend, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }
