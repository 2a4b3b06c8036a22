package domain

import "time"

// AttendanceRecordedEvent is published after a submission appends a ledger record.
type AttendanceRecordedEvent struct {
	EventID           string
	RecordID          string
	AttendeeID        string
	AttendanceEventID string
	CredentialUsed    bool
	ScanTime          time.Time
	Metadata          map[string]any
}

// SessionTransitionedEvent is published after an operator lifecycle action succeeds.
type SessionTransitionedEvent struct {
	EventID           string
	AttendanceEventID string
	FromState         SessionState
	ToState           SessionState
	TransitionedAt    time.Time
	Metadata          map[string]any
}

// DeviceReuseDetectedEvent is published when a fingerprint bound to one
// attendee is observed again for a different attendee in the same event.
type DeviceReuseDetectedEvent struct {
	EventID           string
	AttendanceEventID string
	AttendeeID        string
	BoundAttendeeID   string
	FingerprintSuffix string
	DetectedAt        time.Time
	Metadata          map[string]any
}

// AttendanceStatusChangedEvent is published when an operator toggles a record
// between present and revoked.
type AttendanceStatusChangedEvent struct {
	EventID           string
	RecordID          string
	AttendeeID        string
	AttendanceEventID string
	NewStatus         AttendanceStatus
	ChangedAt         time.Time
	ChangedBy         string
	Metadata          map[string]any
}
