package deluge

import (
	"errors"
	"fmt"
)

// Common errors returned by the Deluge client
var (
	// ErrEmptyURL is returned when no JSON endpoint is configured
	ErrEmptyURL = errors.New("deluge URL is required")
	// ErrLoginRejected is returned when auth.login does not answer true
	ErrLoginRejected = errors.New("deluge rejected the password")
	// ErrUpdateRejected is returned when core.set_config does not answer true
	ErrUpdateRejected = errors.New("deluge did not confirm the configuration change")
)

// StatusError is returned for a non-200 HTTP response
type StatusError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface
func (e *StatusError) Error() string {
	return fmt.Sprintf("deluge returned status %d: %s", e.StatusCode, e.Body)
}
