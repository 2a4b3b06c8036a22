package port

import (
	"context"
	"time"

	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/core/domain"
)

// CredentialCache caches the current credential per event so the display
// poll loop does not hit the ledger database on every refresh.
type CredentialCache interface {
	SetCurrent(ctx context.Context, credential domain.Credential, ttl time.Duration) error
	// GetCurrent returns the cached credential, or repository.ErrNotFound on
	// a cache miss or after expiry.
	GetCurrent(ctx context.Context, eventID string) (*domain.Credential, error)
	Invalidate(ctx context.Context, eventID string) error
}
