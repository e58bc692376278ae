package monitor

// Outcome describes how a poll ended
type Outcome int

const (
	// OutcomeNoLog means no log file could be located
	OutcomeNoLog Outcome = iota
	// OutcomeNoPort means the newest log has no valid announcement
	OutcomeNoPort
	// OutcomeRejected means the guard refused the port
	OutcomeRejected
	// OutcomeUnchanged means the port was already applied
	OutcomeUnchanged
	// OutcomeUpdated means the backend accepted a new port
	OutcomeUpdated
	// OutcomeUpdateFailed means the update exhausted its retries
	OutcomeUpdateFailed
)

var outcomeNames = map[Outcome]string{
	OutcomeNoLog:        "no_log",
	OutcomeNoPort:       "no_port",
	OutcomeRejected:     "rejected",
	OutcomeUnchanged:    "unchanged",
	OutcomeUpdated:      "updated",
	OutcomeUpdateFailed: "update_failed",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return "unknown"
}
