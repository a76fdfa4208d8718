package model

const (
	StateCreated    = "created"
	StateQueued     = "queued"
	StateProcessing = "processing"
	StateSuccess    = "success"
	StateFailed     = "failed"
)

// IsTerminal reports whether polling should stop at this state.
// Only success and failed end a generation; anything else (including an
// empty or unrecognized state) counts as still in progress.
func IsTerminal(state string) bool {
	return state == StateSuccess || state == StateFailed
}

func IsKnown(state string) bool {
	switch state {
	case StateCreated, StateQueued, StateProcessing, StateSuccess, StateFailed:
		return true
	}
	return false
}

// StateOf pulls the task state out of a raw API response body. The service
// has been observed using both "state" and "status" as the field name;
// "state" wins when both are present. Returns "" when neither is a string.
func StateOf(body map[string]any) string {
	for _, key := range []string{"state", "status"} {
		if v, ok := body[key].(string); ok {
			return v
		}
	}
	return ""
}
