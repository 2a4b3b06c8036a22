package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/core/domain"
	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for development environments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishAttendanceRecorded logs attendance.recorded events.
func (p *StubPublisher) PublishAttendanceRecorded(_ context.Context, event domain.AttendanceRecordedEvent) error {
	payload := map[string]any{
		"record_id":       event.RecordID,
		"attendee_id":     event.AttendeeID,
		"event_id":        event.AttendanceEventID,
		"credential_used": event.CredentialUsed,
		"scan_time":       event.ScanTime,
	}
	p.logEvent("attendance.recorded", event.ScanTime, payload)
	return nil
}

// PublishSessionTransitioned logs attendance.session.transitioned events.
func (p *StubPublisher) PublishSessionTransitioned(_ context.Context, event domain.SessionTransitionedEvent) error {
	payload := map[string]any{
		"event_id":        event.AttendanceEventID,
		"from_state":      event.FromState,
		"to_state":        event.ToState,
		"transitioned_at": event.TransitionedAt,
	}
	p.logEvent("attendance.session.transitioned", event.TransitionedAt, payload)
	return nil
}

// PublishDeviceReuseDetected logs attendance.device.reuse_detected events.
func (p *StubPublisher) PublishDeviceReuseDetected(_ context.Context, event domain.DeviceReuseDetectedEvent) error {
	payload := map[string]any{
		"event_id":           event.AttendanceEventID,
		"attendee_id":        event.AttendeeID,
		"bound_attendee_id":  event.BoundAttendeeID,
		"fingerprint_suffix": event.FingerprintSuffix,
		"detected_at":        event.DetectedAt,
	}
	p.logEvent("attendance.device.reuse_detected", event.DetectedAt, payload)
	return nil
}

// PublishAttendanceStatusChanged logs attendance.status.changed events.
func (p *StubPublisher) PublishAttendanceStatusChanged(_ context.Context, event domain.AttendanceStatusChangedEvent) error {
	payload := map[string]any{
		"record_id":   event.RecordID,
		"attendee_id": event.AttendeeID,
		"event_id":    event.AttendanceEventID,
		"new_status":  event.NewStatus,
		"changed_at":  event.ChangedAt,
		"changed_by":  event.ChangedBy,
	}
	p.logEvent("attendance.status.changed", event.ChangedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
