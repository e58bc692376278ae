package qbittorrent

import "errors"

// Common errors returned by the qBittorrent client.
var (
	// ErrEmptyURL is returned when no Web UI URL is configured.
	ErrEmptyURL = errors.New("qBittorrent URL is required")

	// ErrLoginFailed is returned when the Web UI rejects the credentials.
	ErrLoginFailed = errors.New("qBittorrent login failed")
)
