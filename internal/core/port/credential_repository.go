package port

import (
	"context"

	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/core/domain"
)

// CredentialRepository persists issued rotating credentials.
type CredentialRepository interface {
	Insert(ctx context.Context, credential domain.Credential) error
	// Current returns the newest non-expired credential for the event, or
	// repository.ErrNotFound when none is live.
	Current(ctx context.Context, eventID string) (*domain.Credential, error)
	// Exists reports whether a non-expired credential with the given value is
	// stored for the event.
	Exists(ctx context.Context, eventID, value string) (bool, error)
}
