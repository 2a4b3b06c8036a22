package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/core/domain"
	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/core/port"
	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/repository"
)

type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SessionRepository implements port.SessionRepository for PostgreSQL.
type SessionRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewSessionRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewSessionRepository(exec pgExecutor) *SessionRepository {
	return &SessionRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Get returns the session row for the event.
func (r *SessionRepository) Get(ctx context.Context, eventID string) (*domain.Session, error) {
	sql, args, err := r.builder.
		Select("event_id", "state", "refresh_interval_seconds", "updated_at").
		From("attendance.sessions").
		Where(squirrel.Eq{"event_id": eventID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select session sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, sql, args...)

	var session domain.Session
	var intervalSeconds int64
	if err := row.Scan(&session.EventID, &session.State, &intervalSeconds, &session.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}
	session.RefreshInterval = time.Duration(intervalSeconds) * time.Second

	return &session, nil
}

// Upsert creates the session row, leaving an existing row untouched so a
// concurrent creator cannot clobber state that already advanced.
func (r *SessionRepository) Upsert(ctx context.Context, session domain.Session) error {
	sql, args, err := r.builder.
		Insert("attendance.sessions").
		Columns("event_id", "state", "refresh_interval_seconds", "updated_at").
		Values(session.EventID, session.State, int64(session.RefreshInterval/time.Second), session.UpdatedAt).
		Suffix("ON CONFLICT (event_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert session sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// CompareAndSwapState updates the state only when the stored value still
// matches expected. Zero rows affected means a concurrent writer won.
func (r *SessionRepository) CompareAndSwapState(ctx context.Context, eventID string, expected, target domain.SessionState) error {
	sql, args, err := r.builder.
		Update("attendance.sessions").
		Set("state", target).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"event_id": eventID, "state": expected}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update session sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update session state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrConflict
	}
	return nil
}

// SetRefreshInterval stores the operator-configured mint cadence.
func (r *SessionRepository) SetRefreshInterval(ctx context.Context, eventID string, interval time.Duration) error {
	sql, args, err := r.builder.
		Update("attendance.sessions").
		Set("refresh_interval_seconds", int64(interval/time.Second)).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"event_id": eventID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update interval sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update refresh interval: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListByState returns every session currently in the supplied state.
func (r *SessionRepository) ListByState(ctx context.Context, state domain.SessionState) ([]domain.Session, error) {
	sql, args, err := r.builder.
		Select("event_id", "state", "refresh_interval_seconds", "updated_at").
		From("attendance.sessions").
		Where(squirrel.Eq{"state": state}).
		OrderBy("updated_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list sessions sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		var session domain.Session
		var intervalSeconds int64
		if err := rows.Scan(&session.EventID, &session.State, &intervalSeconds, &session.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		session.RefreshInterval = time.Duration(intervalSeconds) * time.Second
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	return sessions, nil
}

var _ port.SessionRepository = (*SessionRepository)(nil)
