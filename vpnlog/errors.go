package vpnlog

import "errors"

// Errors returned while discovering the forwarded port.
var (
	// ErrNoLogFiles is returned when the log directory holds no candidate file.
	ErrNoLogFiles = errors.New("no log files found")

	// ErrNoAnnouncement is returned when the tail window of a log file contains
	// no valid port pair announcement.
	ErrNoAnnouncement = errors.New("no forwarded port announcement found")
)
