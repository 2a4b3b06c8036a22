package port

import (
	"context"

	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/core/domain"
)

// AttendanceRepository is the append-only, uniqueness-constrained ledger.
type AttendanceRepository interface {
	// Insert appends a record. A second record for the same (attendee, event)
	// fails with repository.ErrDuplicate; the unique index is the only
	// authority on de-duplication under concurrent submissions.
	Insert(ctx context.Context, record domain.AttendanceRecord) error
	GetByID(ctx context.Context, recordID string) (*domain.AttendanceRecord, error)
	GetByAttendeeAndEvent(ctx context.Context, attendeeID, eventID string) (*domain.AttendanceRecord, error)
	UpdateStatus(ctx context.Context, recordID string, status domain.AttendanceStatus) (*domain.AttendanceRecord, error)
	// DeviceOwner returns the attendee already bound to the fingerprint within
	// the event, or repository.ErrNotFound when the fingerprint is unseen.
	DeviceOwner(ctx context.Context, eventID, fingerprint string) (string, error)
	CountByEvent(ctx context.Context, eventID string) (int, error)
	// RecentByEvent returns up to limit records, newest first. The listing is
	// point-in-time and not restartable.
	RecentByEvent(ctx context.Context, eventID string, limit int) ([]domain.AttendanceRecord, error)
	// HistoryByAttendee returns the attendee's records across events, newest first.
	HistoryByAttendee(ctx context.Context, attendeeID string) ([]domain.AttendanceRecord, error)
}
