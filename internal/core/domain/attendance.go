package domain

import "time"

// AttendanceStatus enumerates the operator-visible states of a ledger record.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceRevoked AttendanceStatus = "revoked"
)

// Valid reports whether the status is a known ledger status.
func (s AttendanceStatus) Valid() bool {
	return s == AttendancePresent || s == AttendanceRevoked
}

// AttendanceRecord is an append-only ledger entry. At most one record exists
// per (attendee, event); the storage layer enforces the uniqueness.
type AttendanceRecord struct {
	ID                string
	AttendeeID        string
	EventID           string
	CredentialValue   *string
	DeviceFingerprint string
	Status            AttendanceStatus
	ScanTime          time.Time
}

// Outcome describes how a submission was resolved.
type Outcome string

const (
	// OutcomeRecorded means a new ledger record was appended.
	OutcomeRecorded Outcome = "recorded"
	// OutcomeAlreadyRecorded means a record for the attendee and event
	// already existed; the submission is idempotent from the caller's view.
	OutcomeAlreadyRecorded Outcome = "already_recorded"
)
