package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/core/domain"
	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/core/port"
	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/infra/security"
	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/repository"
)

// CredentialService mints, caches, and validates the rotating check-in codes.
type CredentialService struct {
	credentials port.CredentialRepository
	cache       port.CredentialCache
	logger      *zap.Logger
	codeLength  int
	grace       time.Duration
	linkBase    string
	now         func() time.Time
}

// NewCredentialService constructs a CredentialService. The grace duration is
// added to every credential's expiry to absorb clock skew and display poll
// latency.
func NewCredentialService(credentials port.CredentialRepository, cache port.CredentialCache, codeLength int, grace time.Duration, linkBase string, logger *zap.Logger) *CredentialService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if codeLength <= 0 {
		codeLength = 6
	}
	if grace < 0 {
		grace = 0
	}
	service := &CredentialService{
		credentials: credentials,
		cache:       cache,
		logger:      logger,
		codeLength:  codeLength,
		grace:       grace,
		linkBase:    strings.TrimRight(linkBase, "/"),
	}
	service.now = func() time.Time { return time.Now().UTC() }
	return service
}

// WithClock overrides the internal clock for deterministic tests.
func (s *CredentialService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// Issue mints a new credential valid for interval plus the grace buffer.
// Value collisions across events are harmless; a collision within an event
// merely shortens the older value's effective window, since validation only
// requires a live matching row.
func (s *CredentialService) Issue(ctx context.Context, eventID string, interval time.Duration) (*domain.Credential, error) {
	if strings.TrimSpace(eventID) == "" {
		return nil, fmt.Errorf("event id is required")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("interval must be positive")
	}

	value, err := security.GenerateNumericCode(s.codeLength)
	if err != nil {
		return nil, fmt.Errorf("generate credential value: %w", err)
	}

	issuedAt := s.now()
	credential := domain.Credential{
		ID:       uuid.NewString(),
		EventID:  eventID,
		Value:    value,
		IssuedAt: issuedAt,
		ExpireAt: issuedAt.Add(interval + s.grace),
	}

	if err := s.credentials.Insert(ctx, credential); err != nil {
		return nil, fmt.Errorf("insert credential: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetCurrent(ctx, credential, interval+s.grace); err != nil {
			s.logger.Warn("cache current credential failed", zap.String("event_id", eventID), zap.Error(err))
		}
	}

	return &credential, nil
}

// Current returns the newest live credential for the event, or nil when the
// event has none. The cache is consulted first; the store remains the source
// of truth on a miss.
func (s *CredentialService) Current(ctx context.Context, eventID string) (*domain.Credential, error) {
	if s.cache != nil {
		cached, err := s.cache.GetCurrent(ctx, eventID)
		if err == nil && cached.IsValid(s.now()) {
			return cached, nil
		}
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("credential cache read failed", zap.String("event_id", eventID), zap.Error(err))
		}
	}

	credential, err := s.credentials.Current(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load current credential: %w", err)
	}
	if !credential.IsValid(s.now()) {
		return nil, nil
	}
	return credential, nil
}

// IsValid reports whether the presented value matches a stored, non-expired
// credential for the event.
func (s *CredentialService) IsValid(ctx context.Context, eventID, value string) (bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return false, nil
	}
	ok, err := s.credentials.Exists(ctx, eventID, value)
	if err != nil {
		return false, fmt.Errorf("check credential: %w", err)
	}
	return ok, nil
}

// DeepLink derives the check-in URL carried in the displayed QR payload.
func (s *CredentialService) DeepLink(eventID, value string) string {
	return fmt.Sprintf("%s/checkin?event=%s&code=%s", s.linkBase, url.QueryEscape(eventID), url.QueryEscape(value))
}
