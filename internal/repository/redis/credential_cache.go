package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/core/domain"
	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/core/port"
	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/repository"
)

const defaultCredentialPrefix = "attendance:current_credential"

// CredentialCache keeps the current credential per event so the public
// display poll loop avoids a database round trip on every refresh. The TTL
// mirrors the credential's validity window, so a stale entry simply expires.
type CredentialCache struct {
	client *red.Client
	prefix string
}

// NewCredentialCache constructs a credential cache helper.
func NewCredentialCache(client *red.Client, keyPrefix string) *CredentialCache {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultCredentialPrefix
	}
	return &CredentialCache{client: client, prefix: prefix}
}

type cachedCredential struct {
	ID       string    `json:"id"`
	EventID  string    `json:"event_id"`
	Value    string    `json:"value"`
	IssuedAt time.Time `json:"issued_at"`
	ExpireAt time.Time `json:"expires_at"`
}

// SetCurrent stores the credential with the provided TTL.
func (c *CredentialCache) SetCurrent(ctx context.Context, credential domain.Credential, ttl time.Duration) error {
	key := c.key(credential.EventID)
	if key == "" {
		return fmt.Errorf("event id is required")
	}
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive")
	}

	payload, err := json.Marshal(cachedCredential{
		ID:       credential.ID,
		EventID:  credential.EventID,
		Value:    credential.Value,
		IssuedAt: credential.IssuedAt,
		ExpireAt: credential.ExpireAt,
	})
	if err != nil {
		return fmt.Errorf("marshal cached credential: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set current credential: %w", err)
	}
	return nil
}

// GetCurrent fetches the cached credential, returning ErrNotFound on a miss.
func (c *CredentialCache) GetCurrent(ctx context.Context, eventID string) (*domain.Credential, error) {
	key := c.key(eventID)
	if key == "" {
		return nil, fmt.Errorf("event id is required")
	}

	value, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, red.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("redis get current credential: %w", err)
	}

	var cached cachedCredential
	if err := json.Unmarshal([]byte(value), &cached); err != nil {
		return nil, fmt.Errorf("unmarshal cached credential: %w", err)
	}

	return &domain.Credential{
		ID:       cached.ID,
		EventID:  cached.EventID,
		Value:    cached.Value,
		IssuedAt: cached.IssuedAt,
		ExpireAt: cached.ExpireAt,
	}, nil
}

// Invalidate drops the cached credential for the event.
func (c *CredentialCache) Invalidate(ctx context.Context, eventID string) error {
	key := c.key(eventID)
	if key == "" {
		return fmt.Errorf("event id is required")
	}
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete current credential: %w", err)
	}
	return nil
}

func (c *CredentialCache) key(eventID string) string {
	trimmed := strings.TrimSpace(eventID)
	if trimmed == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s", c.prefix, trimmed)
}

var _ port.CredentialCache = (*CredentialCache)(nil)
