package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/core/domain"
	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/core/port"
	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/repository"
)

// CredentialRepository implements port.CredentialRepository for PostgreSQL.
type CredentialRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewCredentialRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewCredentialRepository(exec pgExecutor) *CredentialRepository {
	return &CredentialRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Insert persists an issued credential.
func (r *CredentialRepository) Insert(ctx context.Context, credential domain.Credential) error {
	sql, args, err := r.builder.
		Insert("attendance.credentials").
		Columns("id", "event_id", "value", "issued_at", "expires_at").
		Values(credential.ID, credential.EventID, credential.Value, credential.IssuedAt, credential.ExpireAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert credential sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert credential: %w", err)
	}
	return nil
}

// Current returns the newest non-expired credential for the event.
func (r *CredentialRepository) Current(ctx context.Context, eventID string) (*domain.Credential, error) {
	sql, args, err := r.builder.
		Select("id", "event_id", "value", "issued_at", "expires_at").
		From("attendance.credentials").
		Where(squirrel.Eq{"event_id": eventID}).
		Where(squirrel.Gt{"expires_at": time.Now().UTC()}).
		OrderBy("issued_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select credential sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, sql, args...)

	var credential domain.Credential
	if err := row.Scan(&credential.ID, &credential.EventID, &credential.Value, &credential.IssuedAt, &credential.ExpireAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan credential: %w", err)
	}

	return &credential, nil
}

// Exists reports whether a live credential with the value is stored for the event.
func (r *CredentialRepository) Exists(ctx context.Context, eventID, value string) (bool, error) {
	sql, args, err := r.builder.
		Select("1").
		From("attendance.credentials").
		Where(squirrel.Eq{"event_id": eventID, "value": value}).
		Where(squirrel.Gt{"expires_at": time.Now().UTC()}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists credential sql: %w", err)
	}

	var one int
	if err := r.exec.QueryRow(ctx, sql, args...).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("scan credential existence: %w", err)
	}
	return true, nil
}

var _ port.CredentialRepository = (*CredentialRepository)(nil)
