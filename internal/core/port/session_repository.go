package port

import (
	"context"
	"time"

	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/core/domain"
)

// SessionRepository persists per-event lifecycle state.
type SessionRepository interface {
	// Get returns the session for the event, or repository.ErrNotFound when
	// the event has never been transitioned.
	Get(ctx context.Context, eventID string) (*domain.Session, error)
	// Upsert creates the session row for a previously unknown event.
	Upsert(ctx context.Context, session domain.Session) error
	// CompareAndSwapState moves the session from the expected state to the
	// target state, returning repository.ErrConflict when the stored state no
	// longer matches expected. This is what serializes racing operator actions.
	CompareAndSwapState(ctx context.Context, eventID string, expected, target domain.SessionState) error
	// SetRefreshInterval updates the operator-configured mint cadence.
	SetRefreshInterval(ctx context.Context, eventID string, interval time.Duration) error
	// ListByState returns every session currently in the supplied state.
	// Used once at startup to rehydrate scheduler loops for active events.
	ListByState(ctx context.Context, state domain.SessionState) ([]domain.Session, error)
}
