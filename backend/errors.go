package backend

import "errors"

// ErrUnknownBackend is returned for an unsupported backend name
var ErrUnknownBackend = errors.New("unknown backend")
