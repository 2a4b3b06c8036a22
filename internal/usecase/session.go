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

// casRetries bounds how often a transition re-reads state after losing a
// compare-and-swap to a concurrent operator action.
const casRetries = 3

// LoopControl is the slice of the scheduler the session service drives.
type LoopControl interface {
	Start(eventID string, interval time.Duration)
	Stop(eventID string)
}

// SessionService owns the per-event lifecycle state machine. Transitions are
// serialized through a storage-level compare-and-swap so racing operator
// actions land deterministically.
type SessionService struct {
	sessions        port.SessionRepository
	scheduler       LoopControl
	events          port.EventPublisher
	logger          *zap.Logger
	defaultInterval time.Duration
	now             func() time.Time
}

// NewSessionService constructs a SessionService.
func NewSessionService(sessions port.SessionRepository, scheduler LoopControl, events port.EventPublisher, defaultInterval time.Duration, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultInterval <= 0 {
		defaultInterval = 10 * time.Second
	}
	service := &SessionService{
		sessions:        sessions,
		scheduler:       scheduler,
		events:          events,
		logger:          logger,
		defaultInterval: defaultInterval,
	}
	service.now = func() time.Time { return time.Now().UTC() }
	return service
}

// WithClock overrides the internal clock for deterministic tests.
func (s *SessionService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// CurrentState returns the persisted lifecycle state, defaulting to
// not_started for events that have never been transitioned.
func (s *SessionService) CurrentState(ctx context.Context, eventID string) (domain.SessionState, error) {
	session, err := s.get(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.SessionNotStarted, nil
		}
		return "", err
	}
	return session.State, nil
}

// Session returns the full session record, materializing a not_started one
// for unknown events.
func (s *SessionService) Session(ctx context.Context, eventID string) (*domain.Session, error) {
	session, err := s.get(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &domain.Session{
				EventID:         eventID,
				State:           domain.SessionNotStarted,
				RefreshInterval: s.defaultInterval,
			}, nil
		}
		return nil, err
	}
	return session, nil
}

// Transition moves the event session to the target state. A no-op request
// (current == target) succeeds idempotently. Success drives the credential
// scheduler: active arms the mint loop, paused and stopped tear it down.
func (s *SessionService) Transition(ctx context.Context, eventID string, target domain.SessionState) (domain.SessionState, error) {
	if strings.TrimSpace(eventID) == "" {
		return "", fmt.Errorf("event id is required")
	}
	if !target.Valid() {
		return "", &IllegalTransitionError{Requested: target}
	}

	var current domain.SessionState
	var interval time.Duration

	for attempt := 0; attempt <= casRetries; attempt++ {
		session, err := s.get(ctx, eventID)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return "", err
			}
			session = &domain.Session{
				EventID:         eventID,
				State:           domain.SessionNotStarted,
				RefreshInterval: s.defaultInterval,
				UpdatedAt:       s.now(),
			}
			if err := s.sessions.Upsert(ctx, *session); err != nil {
				return "", fmt.Errorf("create session: %w", err)
			}
		}

		current = session.State
		interval = session.RefreshInterval
		if interval <= 0 {
			interval = s.defaultInterval
		}

		if current == target {
			return current, nil
		}
		if !domain.CanTransition(current, target) {
			return current, &IllegalTransitionError{Current: current, Requested: target}
		}

		err = s.sessions.CompareAndSwapState(ctx, eventID, current, target)
		if err == nil {
			s.applyTransition(ctx, eventID, current, target, interval)
			return target, nil
		}
		if !errors.Is(err, repository.ErrConflict) {
			return current, fmt.Errorf("transition session: %w", err)
		}
		// Lost the swap; re-read and re-evaluate against the fresh state.
	}

	return current, &IllegalTransitionError{Current: current, Requested: target}
}

// ConfigureInterval stores a new refresh cadence for the event. When the
// session is active the mint loop is re-armed immediately with the new
// interval.
func (s *SessionService) ConfigureInterval(ctx context.Context, eventID string, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("refresh interval must be positive")
	}

	session, err := s.Session(ctx, eventID)
	if err != nil {
		return err
	}
	if session.State == domain.SessionNotStarted {
		session.RefreshInterval = interval
		session.UpdatedAt = s.now()
		if err := s.sessions.Upsert(ctx, *session); err != nil {
			return fmt.Errorf("create session: %w", err)
		}
	}
	if err := s.sessions.SetRefreshInterval(ctx, eventID, interval); err != nil {
		return fmt.Errorf("set refresh interval: %w", err)
	}

	if session.State == domain.SessionActive && s.scheduler != nil {
		s.scheduler.Start(eventID, interval)
	}
	return nil
}

func (s *SessionService) get(ctx context.Context, eventID string) (*domain.Session, error) {
	if s.sessions == nil {
		return nil, fmt.Errorf("session repository not configured")
	}
	session, err := s.sessions.Get(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

func (s *SessionService) applyTransition(ctx context.Context, eventID string, from, to domain.SessionState, interval time.Duration) {
	if s.scheduler != nil {
		switch to {
		case domain.SessionActive:
			s.scheduler.Start(eventID, interval)
		case domain.SessionPaused, domain.SessionStopped:
			s.scheduler.Stop(eventID)
		}
	}

	s.logger.Info("session transitioned",
		zap.String("event_id", eventID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)

	if s.events == nil {
		return
	}
	publish := domain.SessionTransitionedEvent{
		EventID:           uuid.NewString(),
		AttendanceEventID: eventID,
		FromState:         from,
		ToState:           to,
		TransitionedAt:    s.now(),
	}
	if err := s.events.PublishSessionTransitioned(ctx, publish); err != nil {
		s.logger.Warn("publish session transitioned failed", zap.String("event_id", eventID), zap.Error(err))
	}
}
