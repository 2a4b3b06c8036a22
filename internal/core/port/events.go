package port

import (
	"context"

	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/core/domain"
)

// EventPublisher publishes domain events to the message bus.
type EventPublisher interface {
	PublishAttendanceRecorded(ctx context.Context, event domain.AttendanceRecordedEvent) error
	PublishSessionTransitioned(ctx context.Context, event domain.SessionTransitionedEvent) error
	PublishDeviceReuseDetected(ctx context.Context, event domain.DeviceReuseDetectedEvent) error
	PublishAttendanceStatusChanged(ctx context.Context, event domain.AttendanceStatusChangedEvent) error
}
