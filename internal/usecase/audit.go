package usecase

import (
	"sync"
	"time"

	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/core/domain"
)

const (
	defaultTrailCapacity = 5
	fingerprintSuffixLen = 8
)

// AuditTrail keeps a bounded, per-event, in-memory buffer of security
// signals for the operator panel. It is advisory only and deliberately
// non-durable: a restart clears it.
type AuditTrail struct {
	mu       sync.Mutex
	capacity int
	entries  map[string][]domain.AuditAlert
	now      func() time.Time
}

// NewAuditTrail constructs an AuditTrail with the given per-event capacity.
func NewAuditTrail(capacity int) *AuditTrail {
	if capacity <= 0 {
		capacity = defaultTrailCapacity
	}
	return &AuditTrail{
		capacity: capacity,
		entries:  make(map[string][]domain.AuditAlert),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the internal clock for deterministic tests.
func (t *AuditTrail) WithClock(clock func() time.Time) {
	if clock != nil {
		t.now = clock
	}
}

// Append pushes an alert to the front of the event's buffer, dropping the
// oldest entry beyond capacity. Only a fingerprint suffix is retained.
func (t *AuditTrail) Append(eventID, fingerprint string, kind domain.AlertKind) {
	alert := domain.AuditAlert{
		EventID:           eventID,
		FingerprintSuffix: domain.FingerprintSuffix(fingerprint, fingerprintSuffixLen),
		Kind:              kind,
		DetectedAt:        t.now(),
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	buf := append([]domain.AuditAlert{alert}, t.entries[eventID]...)
	if len(buf) > t.capacity {
		buf = buf[:t.capacity]
	}
	t.entries[eventID] = buf
}

// List returns the event's alerts, newest first.
func (t *AuditTrail) List(eventID string) []domain.AuditAlert {
	t.mu.Lock()
	defer t.mu.Unlock()

	buf := t.entries[eventID]
	out := make([]domain.AuditAlert, len(buf))
	copy(out, buf)
	return out
}
