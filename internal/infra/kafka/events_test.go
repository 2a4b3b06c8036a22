package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap/zaptest"

	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/core/domain"
	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/infra/config"
)

type fakeAsyncProducer struct {
	input  chan *sarama.ProducerMessage
	errors chan *sarama.ProducerError
}

func newFakeAsyncProducer() *fakeAsyncProducer {
	return &fakeAsyncProducer{
		input:  make(chan *sarama.ProducerMessage, 1),
		errors: make(chan *sarama.ProducerError, 1),
	}
}

func (f *fakeAsyncProducer) AsyncClose() {}

func (f *fakeAsyncProducer) Close() error { return nil }

func (f *fakeAsyncProducer) Input() chan<- *sarama.ProducerMessage { return f.input }

func (f *fakeAsyncProducer) Successes() <-chan *sarama.ProducerMessage { return nil }

func (f *fakeAsyncProducer) Errors() <-chan *sarama.ProducerError { return f.errors }

func (f *fakeAsyncProducer) IsTransactional() bool { return false }

func (f *fakeAsyncProducer) BeginTxn() error { return nil }

func (f *fakeAsyncProducer) CommitTxn() error { return nil }

func (f *fakeAsyncProducer) AbortTxn() error { return nil }

func (f *fakeAsyncProducer) AddOffsetsToTxn(offsets map[string][]*sarama.PartitionOffsetMetadata, groupID string) error {
	return nil
}

func (f *fakeAsyncProducer) AddMessageToTxn(msg *sarama.ConsumerMessage, groupID string, metadata *string) error {
	return nil
}

func (f *fakeAsyncProducer) TxnStatus() sarama.ProducerTxnStatusFlag {
	return sarama.ProducerTxnStatusFlag(0)
}

func newTestPublisher(t *testing.T) (*EventPublisher, *fakeAsyncProducer) {
	t.Helper()

	asyncProducer := newFakeAsyncProducer()
	producer := &Producer{
		producer: asyncProducer,
		logger:   zaptest.NewLogger(t),
		cfg: config.KafkaSettings{
			TopicPrefix: "attendance",
		},
		errChan: make(chan error, 1),
		done:    make(chan struct{}),
	}

	publisher := NewEventPublisher(producer, config.AppSettings{
		Name: "attendance-service",
		Env:  "test",
	}, zaptest.NewLogger(t))

	return publisher, asyncProducer
}

func decodeEnvelope(t *testing.T, msg *sarama.ProducerMessage) map[string]any {
	t.Helper()

	bytes, err := msg.Value.Encode()
	if err != nil {
		t.Fatalf("Value.Encode returned error: %v", err)
	}

	var envelope map[string]any
	if err := json.Unmarshal(bytes, &envelope); err != nil {
		t.Fatalf("failed to unmarshal envelope: %v", err)
	}
	return envelope
}

func TestPublishAttendanceRecorded(t *testing.T) {
	publisher, asyncProducer := newTestPublisher(t)

	scanTime := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	event := domain.AttendanceRecordedEvent{
		EventID:           "event-123",
		RecordID:          "rec-1",
		AttendeeID:        "alice",
		AttendanceEventID: "evt-1",
		CredentialUsed:    true,
		ScanTime:          scanTime,
		Metadata:          map[string]any{"source": "unit-test"},
	}

	if err := publisher.PublishAttendanceRecorded(context.Background(), event); err != nil {
		t.Fatalf("PublishAttendanceRecorded returned error: %v", err)
	}

	select {
	case msg := <-asyncProducer.input:
		if msg.Topic != "attendance.recorded" {
			t.Fatalf("unexpected topic: %s", msg.Topic)
		}

		envelope := decodeEnvelope(t, msg)
		if got := envelope["event_type"]; got != "attendance.recorded" {
			t.Fatalf("unexpected event_type: %v", got)
		}
		if got := envelope["event_id"]; got != event.EventID {
			t.Fatalf("unexpected event_id: %v", got)
		}
		if got := envelope["timestamp"]; got != scanTime.Format(time.RFC3339Nano) {
			t.Fatalf("unexpected timestamp: %v", got)
		}

		payload, ok := envelope["payload"].(map[string]any)
		if !ok {
			t.Fatalf("payload not an object: %T", envelope["payload"])
		}
		if got := payload["attendee_id"]; got != "alice" {
			t.Fatalf("unexpected attendee_id: %v", got)
		}
		if got := payload["credential_used"]; got != true {
			t.Fatalf("unexpected credential_used: %v", got)
		}

		metadata, ok := envelope["metadata"].(map[string]any)
		if !ok {
			t.Fatalf("metadata not an object: %T", envelope["metadata"])
		}
		if got := metadata["service"]; got != "attendance-service" {
			t.Fatalf("unexpected service metadata: %v", got)
		}
	default:
		t.Fatal("expected message on producer input channel")
	}
}

func TestPublishSessionTransitioned(t *testing.T) {
	publisher, asyncProducer := newTestPublisher(t)

	transitionedAt := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	event := domain.SessionTransitionedEvent{
		EventID:           "event-456",
		AttendanceEventID: "evt-1",
		FromState:         domain.SessionActive,
		ToState:           domain.SessionPaused,
		TransitionedAt:    transitionedAt,
	}

	if err := publisher.PublishSessionTransitioned(context.Background(), event); err != nil {
		t.Fatalf("PublishSessionTransitioned returned error: %v", err)
	}

	select {
	case msg := <-asyncProducer.input:
		if msg.Topic != "attendance.session.transitioned" {
			t.Fatalf("unexpected topic: %s", msg.Topic)
		}

		envelope := decodeEnvelope(t, msg)
		payload, ok := envelope["payload"].(map[string]any)
		if !ok {
			t.Fatalf("payload not an object: %T", envelope["payload"])
		}
		if got := payload["from_state"]; got != string(domain.SessionActive) {
			t.Fatalf("unexpected from_state: %v", got)
		}
		if got := payload["to_state"]; got != string(domain.SessionPaused) {
			t.Fatalf("unexpected to_state: %v", got)
		}
	default:
		t.Fatal("expected message on producer input channel")
	}
}

func TestPublishDeviceReuseDetected(t *testing.T) {
	publisher, asyncProducer := newTestPublisher(t)

	detectedAt := time.Date(2026, 3, 14, 10, 5, 0, 0, time.UTC)
	event := domain.DeviceReuseDetectedEvent{
		EventID:           "event-789",
		AttendanceEventID: "evt-1",
		AttendeeID:        "bob",
		BoundAttendeeID:   "alice",
		FingerprintSuffix: "deadbeef",
		DetectedAt:        detectedAt,
	}

	if err := publisher.PublishDeviceReuseDetected(context.Background(), event); err != nil {
		t.Fatalf("PublishDeviceReuseDetected returned error: %v", err)
	}

	select {
	case msg := <-asyncProducer.input:
		if msg.Topic != "attendance.device.reuse_detected" {
			t.Fatalf("unexpected topic: %s", msg.Topic)
		}

		envelope := decodeEnvelope(t, msg)
		payload, ok := envelope["payload"].(map[string]any)
		if !ok {
			t.Fatalf("payload not an object: %T", envelope["payload"])
		}
		if got := payload["bound_attendee_id"]; got != "alice" {
			t.Fatalf("unexpected bound_attendee_id: %v", got)
		}
		if got := payload["fingerprint_suffix"]; got != "deadbeef" {
			t.Fatalf("unexpected fingerprint_suffix: %v", got)
		}
	default:
		t.Fatal("expected message on producer input channel")
	}
}
