package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/core/domain"
	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/core/port"
	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/infra/config"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishAttendanceRecorded publishes attendance.recorded events.
func (p *EventPublisher) PublishAttendanceRecorded(ctx context.Context, event domain.AttendanceRecordedEvent) error {
	payload := struct {
		RecordID       string         `json:"record_id"`
		AttendeeID     string         `json:"attendee_id"`
		EventID        string         `json:"event_id"`
		CredentialUsed bool           `json:"credential_used"`
		ScanTime       time.Time      `json:"scan_time"`
		Metadata       map[string]any `json:"metadata,omitempty"`
	}{
		RecordID:       event.RecordID,
		AttendeeID:     event.AttendeeID,
		EventID:        event.AttendanceEventID,
		CredentialUsed: event.CredentialUsed,
		ScanTime:       event.ScanTime.UTC(),
		Metadata:       event.Metadata,
	}

	return p.publish(ctx, event.EventID, "attendance.recorded", event.ScanTime, payload)
}

// PublishSessionTransitioned publishes attendance.session.transitioned events.
func (p *EventPublisher) PublishSessionTransitioned(ctx context.Context, event domain.SessionTransitionedEvent) error {
	payload := struct {
		EventID        string         `json:"event_id"`
		FromState      string         `json:"from_state"`
		ToState        string         `json:"to_state"`
		TransitionedAt time.Time      `json:"transitioned_at"`
		Metadata       map[string]any `json:"metadata,omitempty"`
	}{
		EventID:        event.AttendanceEventID,
		FromState:      string(event.FromState),
		ToState:        string(event.ToState),
		TransitionedAt: event.TransitionedAt.UTC(),
		Metadata:       event.Metadata,
	}

	return p.publish(ctx, event.EventID, "attendance.session.transitioned", event.TransitionedAt, payload)
}

// PublishDeviceReuseDetected publishes attendance.device.reuse_detected events.
func (p *EventPublisher) PublishDeviceReuseDetected(ctx context.Context, event domain.DeviceReuseDetectedEvent) error {
	payload := struct {
		EventID           string         `json:"event_id"`
		AttendeeID        string         `json:"attendee_id"`
		BoundAttendeeID   string         `json:"bound_attendee_id"`
		FingerprintSuffix string         `json:"fingerprint_suffix"`
		DetectedAt        time.Time      `json:"detected_at"`
		Metadata          map[string]any `json:"metadata,omitempty"`
	}{
		EventID:           event.AttendanceEventID,
		AttendeeID:        event.AttendeeID,
		BoundAttendeeID:   event.BoundAttendeeID,
		FingerprintSuffix: event.FingerprintSuffix,
		DetectedAt:        event.DetectedAt.UTC(),
		Metadata:          event.Metadata,
	}

	return p.publish(ctx, event.EventID, "attendance.device.reuse_detected", event.DetectedAt, payload)
}

// PublishAttendanceStatusChanged publishes attendance.status.changed events.
func (p *EventPublisher) PublishAttendanceStatusChanged(ctx context.Context, event domain.AttendanceStatusChangedEvent) error {
	payload := struct {
		RecordID   string         `json:"record_id"`
		AttendeeID string         `json:"attendee_id"`
		EventID    string         `json:"event_id"`
		NewStatus  string         `json:"new_status"`
		ChangedAt  time.Time      `json:"changed_at"`
		ChangedBy  string         `json:"changed_by,omitempty"`
		Metadata   map[string]any `json:"metadata,omitempty"`
	}{
		RecordID:   event.RecordID,
		AttendeeID: event.AttendeeID,
		EventID:    event.AttendanceEventID,
		NewStatus:  string(event.NewStatus),
		ChangedAt:  event.ChangedAt.UTC(),
		ChangedBy:  event.ChangedBy,
		Metadata:   event.Metadata,
	}

	return p.publish(ctx, event.EventID, "attendance.status.changed", event.ChangedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
