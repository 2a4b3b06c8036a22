package domain

import "time"

// AlertKind classifies operator-facing security signals.
type AlertKind string

const (
	// AlertDeviceReuse marks a fingerprint already bound to a different
	// attendee within the same event.
	AlertDeviceReuse AlertKind = "device_reuse"
)

// AuditAlert is an advisory, non-durable signal surfaced on the operator
// security panel. Only a fingerprint suffix is retained.
type AuditAlert struct {
	EventID           string
	FingerprintSuffix string
	Kind              AlertKind
	DetectedAt        time.Time
}
