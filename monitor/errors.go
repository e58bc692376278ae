package monitor

import "errors"

// ErrAuthenticationFailed is returned by Run when the backend session could
// not be established within the retry budget
var ErrAuthenticationFailed = errors.New("authentication failed")
