package domain

import "time"

// SessionState enumerates the lifecycle states of an event attendance session.
type SessionState string

const (
	SessionNotStarted SessionState = "not_started"
	SessionActive     SessionState = "active"
	SessionPaused     SessionState = "paused"
	SessionStopped    SessionState = "stopped"
)

// Valid reports whether the state is one of the known lifecycle states.
func (s SessionState) Valid() bool {
	switch s {
	case SessionNotStarted, SessionActive, SessionPaused, SessionStopped:
		return true
	}
	return false
}

// legalTransitions maps each state to the set of states it may move to.
// Stopped sessions may be reopened: a restart reuses the existing session
// record, so attendees already on the ledger stay recorded.
var legalTransitions = map[SessionState][]SessionState{
	SessionNotStarted: {SessionActive},
	SessionActive:     {SessionPaused, SessionStopped},
	SessionPaused:     {SessionActive, SessionStopped},
	SessionStopped:    {SessionActive},
}

// CanTransition reports whether moving from the current state to target is
// legal. A no-op transition (current == target) is always allowed.
func CanTransition(current, target SessionState) bool {
	if current == target {
		return true
	}
	for _, next := range legalTransitions[current] {
		if next == target {
			return true
		}
	}
	return false
}

// Session is the per-event lifecycle record gating attendance submissions.
type Session struct {
	EventID         string
	State           SessionState
	RefreshInterval time.Duration
	UpdatedAt       time.Time
}

// AcceptsSubmissions reports whether attendee submissions are accepted.
func (s Session) AcceptsSubmissions() bool {
	return s.State == SessionActive
}
