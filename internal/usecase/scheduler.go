package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/core/domain"
	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/core/port"
)

// SchedulerMetrics receives mint outcome signals for monitoring.
type SchedulerMetrics interface {
	MintSucceeded(eventID string)
	MintFailed(eventID string)
}

// Scheduler owns one independent mint loop per active event. The registry is
// process-local; timers are not persisted, so Rehydrate must run at startup
// to re-arm loops for events whose stored session state is still active.
type Scheduler struct {
	credentials *CredentialService
	sessions    port.SessionRepository
	logger      *zap.Logger
	metrics     SchedulerMetrics
	mintTimeout time.Duration

	mu    sync.Mutex
	loops map[string]*mintLoop
}

type mintLoop struct {
	interval time.Duration
	done     chan struct{}
}

// NewScheduler constructs a Scheduler.
func NewScheduler(credentials *CredentialService, sessions port.SessionRepository, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		credentials: credentials,
		sessions:    sessions,
		logger:      logger,
		mintTimeout: 5 * time.Second,
		loops:       make(map[string]*mintLoop),
	}
}

// WithMetrics attaches mint counters.
func (s *Scheduler) WithMetrics(metrics SchedulerMetrics) *Scheduler {
	s.metrics = metrics
	return s
}

// Rehydrate re-arms mint loops for every event whose persisted session state
// is active. Mandatory at process start: a session that looks active with no
// running timer would otherwise never rotate its credential again.
func (s *Scheduler) Rehydrate(ctx context.Context) error {
	sessions, err := s.sessions.ListByState(ctx, domain.SessionActive)
	if err != nil {
		return fmt.Errorf("list active sessions: %w", err)
	}

	for _, session := range sessions {
		s.Start(session.EventID, session.RefreshInterval)
	}

	if len(sessions) > 0 {
		s.logger.Info("rehydrated credential schedules", zap.Int("count", len(sessions)))
	}
	return nil
}

// Start arms the mint loop for the event, replacing any existing loop. One
// credential is minted inline so an active session never has a window
// without a valid credential; subsequent mints run off the ticker, each
// dispatched on its own goroutine so a slow mint never delays the cadence or
// any other event's loop.
func (s *Scheduler) Start(eventID string, interval time.Duration) {
	if eventID == "" || interval <= 0 {
		return
	}

	s.mu.Lock()
	if existing, ok := s.loops[eventID]; ok {
		close(existing.done)
	}
	loop := &mintLoop{interval: interval, done: make(chan struct{})}
	s.loops[eventID] = loop
	s.mu.Unlock()

	s.mint(eventID, interval)

	go s.run(eventID, loop)
}

// Stop cancels the event's mint loop. Idempotent.
func (s *Scheduler) Stop(eventID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if loop, ok := s.loops[eventID]; ok {
		close(loop.done)
		delete(s.loops, eventID)
	}
}

// Close tears down every loop. Used on shutdown.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for eventID, loop := range s.loops {
		close(loop.done)
		delete(s.loops, eventID)
	}
}

// Running reports whether a loop is armed for the event.
func (s *Scheduler) Running(eventID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.loops[eventID]
	return ok
}

func (s *Scheduler) run(eventID string, loop *mintLoop) {
	ticker := time.NewTicker(loop.interval)
	defer ticker.Stop()

	for {
		select {
		case <-loop.done:
			return
		case <-ticker.C:
			// Fire and forget: a failed mint is logged and the next natural
			// tick proceeds, never tearing the schedule down.
			go s.mint(eventID, loop.interval)
		}
	}
}

func (s *Scheduler) mint(eventID string, interval time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), s.mintTimeout)
	defer cancel()

	credential, err := s.credentials.Issue(ctx, eventID, interval)
	if err != nil {
		if s.metrics != nil {
			s.metrics.MintFailed(eventID)
		}
		s.logger.Error("credential mint failed", zap.String("event_id", eventID), zap.Error(err))
		return
	}

	if s.metrics != nil {
		s.metrics.MintSucceeded(eventID)
	}
	s.logger.Debug("credential minted",
		zap.String("event_id", eventID),
		zap.Time("expires_at", credential.ExpireAt),
	)
}
