package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/core/domain"
	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/core/port"
	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/repository"
)

// SubmissionMetrics receives one signal per resolved submission.
type SubmissionMetrics interface {
	SubmissionResolved(outcome string)
}

// AttendanceService orchestrates one attendee submission end to end:
// session gate, duplicate check, credential validity, device-reuse policy,
// ledger append. It also exposes the operator-facing ledger reads.
type AttendanceService struct {
	sessions    *SessionService
	credentials *CredentialService
	ledger      port.AttendanceRepository
	audit       *AuditTrail
	events      port.EventPublisher
	policy      domain.ReusePolicy
	metrics     SubmissionMetrics
	logger      *zap.Logger
	now         func() time.Time
}

// NewAttendanceService constructs an AttendanceService with the default
// audit-and-allow reuse policy.
func NewAttendanceService(sessions *SessionService, credentials *CredentialService, ledger port.AttendanceRepository, audit *AuditTrail, events port.EventPublisher, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	service := &AttendanceService{
		sessions:    sessions,
		credentials: credentials,
		ledger:      ledger,
		audit:       audit,
		events:      events,
		policy:      domain.DefaultReusePolicy,
		logger:      logger,
	}
	service.now = func() time.Time { return time.Now().UTC() }
	return service
}

// WithReusePolicy swaps the device-reuse policy.
func (s *AttendanceService) WithReusePolicy(policy domain.ReusePolicy) *AttendanceService {
	if policy != nil {
		s.policy = policy
	}
	return s
}

// WithMetrics attaches submission counters.
func (s *AttendanceService) WithMetrics(metrics SubmissionMetrics) *AttendanceService {
	s.metrics = metrics
	return s
}

// WithClock overrides the internal clock for deterministic tests.
func (s *AttendanceService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// Submit records attendance for the attendee at the event. A nil credential
// value is the manual-entry fallback and skips the credential check. Device
// reuse is a soft signal: depending on the injected policy it is flagged for
// operators, never surfaced to the submitter. Duplicate submissions resolve
// to OutcomeAlreadyRecorded; correctness under concurrent duplicates rests
// on the ledger's uniqueness constraint, not on the pre-check.
func (s *AttendanceService) Submit(ctx context.Context, attendeeID, eventID string, credentialValue *string, attrs domain.DeviceAttributes) (domain.Outcome, *domain.AttendanceRecord, error) {
	if strings.TrimSpace(attendeeID) == "" {
		return "", nil, fmt.Errorf("attendee id is required")
	}
	if strings.TrimSpace(eventID) == "" {
		return "", nil, fmt.Errorf("event id is required")
	}

	state, err := s.sessions.CurrentState(ctx, eventID)
	if err != nil {
		return "", nil, fmt.Errorf("resolve session state: %w", err)
	}
	if state != domain.SessionActive {
		s.observe("rejected_inactive")
		return "", nil, ErrSessionNotActive
	}

	if existing, err := s.ledger.GetByAttendeeAndEvent(ctx, attendeeID, eventID); err == nil {
		s.observe(string(domain.OutcomeAlreadyRecorded))
		return domain.OutcomeAlreadyRecorded, existing, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return "", nil, fmt.Errorf("check existing record: %w", err)
	}

	if credentialValue != nil {
		valid, err := s.credentials.IsValid(ctx, eventID, *credentialValue)
		if err != nil {
			return "", nil, err
		}
		if !valid {
			s.observe("rejected_credential")
			return "", nil, ErrInvalidCredential
		}
	}

	fingerprint := domain.Fingerprint(attrs)
	if err := s.applyReusePolicy(ctx, attendeeID, eventID, fingerprint); err != nil {
		s.observe("rejected_device")
		return "", nil, err
	}

	record := domain.AttendanceRecord{
		ID:                uuid.NewString(),
		AttendeeID:        attendeeID,
		EventID:           eventID,
		CredentialValue:   credentialValue,
		DeviceFingerprint: fingerprint,
		Status:            domain.AttendancePresent,
		ScanTime:          s.now(),
	}

	if err := s.ledger.Insert(ctx, record); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Lost the race against a concurrent duplicate; idempotent for
			// the caller.
			existing, getErr := s.ledger.GetByAttendeeAndEvent(ctx, attendeeID, eventID)
			if getErr != nil {
				existing = &record
			}
			s.observe(string(domain.OutcomeAlreadyRecorded))
			return domain.OutcomeAlreadyRecorded, existing, nil
		}
		return "", nil, fmt.Errorf("append attendance record: %w", err)
	}

	s.publishRecorded(ctx, record)
	s.observe(string(domain.OutcomeRecorded))
	return domain.OutcomeRecorded, &record, nil
}

// UpdateStatus toggles a ledger record between present and revoked.
func (s *AttendanceService) UpdateStatus(ctx context.Context, recordID string, status domain.AttendanceStatus, changedBy string) (*domain.AttendanceRecord, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("unknown attendance status %q", status)
	}

	record, err := s.ledger.UpdateStatus(ctx, recordID, status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("update attendance status: %w", err)
	}

	if s.events != nil {
		publish := domain.AttendanceStatusChangedEvent{
			EventID:           uuid.NewString(),
			RecordID:          record.ID,
			AttendeeID:        record.AttendeeID,
			AttendanceEventID: record.EventID,
			NewStatus:         status,
			ChangedAt:         s.now(),
			ChangedBy:         changedBy,
		}
		if err := s.events.PublishAttendanceStatusChanged(ctx, publish); err != nil {
			s.logger.Warn("publish status changed failed", zap.String("record_id", record.ID), zap.Error(err))
		}
	}

	return record, nil
}

// Count returns the number of ledger records for the event.
func (s *AttendanceService) Count(ctx context.Context, eventID string) (int, error) {
	count, err := s.ledger.CountByEvent(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("count attendance: %w", err)
	}
	return count, nil
}

// Recent returns up to limit records for the event, newest first.
func (s *AttendanceService) Recent(ctx context.Context, eventID string, limit int) ([]domain.AttendanceRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	records, err := s.ledger.RecentByEvent(ctx, eventID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent attendance: %w", err)
	}
	return records, nil
}

// History returns the attendee's records across all events, newest first.
func (s *AttendanceService) History(ctx context.Context, attendeeID string) ([]domain.AttendanceRecord, error) {
	records, err := s.ledger.HistoryByAttendee(ctx, attendeeID)
	if err != nil {
		return nil, fmt.Errorf("list attendance history: %w", err)
	}
	return records, nil
}

// Alerts returns the event's audit alerts, newest first.
func (s *AttendanceService) Alerts(eventID string) []domain.AuditAlert {
	if s.audit == nil {
		return nil
	}
	return s.audit.List(eventID)
}

func (s *AttendanceService) applyReusePolicy(ctx context.Context, attendeeID, eventID, fingerprint string) error {
	owner, err := s.ledger.DeviceOwner(ctx, eventID, fingerprint)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("resolve device owner: %w", err)
	}

	reused := owner != "" && owner != attendeeID
	switch s.policy(reused) {
	case domain.PolicyBlock:
		return ErrDeviceReuseBlocked
	case domain.PolicyAllowAndFlag:
		if !reused {
			return nil
		}
		if s.audit != nil {
			s.audit.Append(eventID, fingerprint, domain.AlertDeviceReuse)
		}
		s.logger.Info("device reuse detected",
			zap.String("event_id", eventID),
			zap.String("fingerprint_suffix", domain.FingerprintSuffix(fingerprint, fingerprintSuffixLen)),
		)
		if s.events != nil {
			publish := domain.DeviceReuseDetectedEvent{
				EventID:           uuid.NewString(),
				AttendanceEventID: eventID,
				AttendeeID:        attendeeID,
				BoundAttendeeID:   owner,
				FingerprintSuffix: domain.FingerprintSuffix(fingerprint, fingerprintSuffixLen),
				DetectedAt:        s.now(),
			}
			if err := s.events.PublishDeviceReuseDetected(ctx, publish); err != nil {
				s.logger.Warn("publish device reuse failed", zap.String("event_id", eventID), zap.Error(err))
			}
		}
	}
	return nil
}

func (s *AttendanceService) publishRecorded(ctx context.Context, record domain.AttendanceRecord) {
	if s.events == nil {
		return
	}
	publish := domain.AttendanceRecordedEvent{
		EventID:           uuid.NewString(),
		RecordID:          record.ID,
		AttendeeID:        record.AttendeeID,
		AttendanceEventID: record.EventID,
		CredentialUsed:    record.CredentialValue != nil,
		ScanTime:          record.ScanTime,
	}
	if err := s.events.PublishAttendanceRecorded(ctx, publish); err != nil {
		s.logger.Warn("publish attendance recorded failed", zap.String("record_id", record.ID), zap.Error(err))
	}
}

func (s *AttendanceService) observe(outcome string) {
	if s.metrics != nil {
		s.metrics.SubmissionResolved(outcome)
	}
}
