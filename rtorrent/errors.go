package rtorrent

import "errors"

// ErrEmptyURL is returned when no rTorrent URL is configured.
var ErrEmptyURL = errors.New("rTorrent URL is required")
