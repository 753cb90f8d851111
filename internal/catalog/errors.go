package catalog

import (
	"errors"
	"fmt"
)

// ConnectionError reports that the catalog could not be reached: opening the
// pool, pinging it or acquiring a session failed. It is fatal for a batch.
type ConnectionError struct {
	Op     string // "open", "ping" or "acquire"
	Driver string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("catalog %s (%s): %v", e.Op, e.Driver, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// IsConnectionError reports whether err is or wraps a *ConnectionError.
func IsConnectionError(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}
