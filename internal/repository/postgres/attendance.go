package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/core/domain"
	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/core/port"
	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/repository"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint violations.
const pgUniqueViolation = "23505"

const attendanceColumns = "id, attendee_id, event_id, credential_value, device_fingerprint, status, scan_time"

// AttendanceRepository implements port.AttendanceRepository for PostgreSQL.
// The unique index on (attendee_id, event_id) is the sole authority on
// de-duplication; a losing concurrent insert surfaces as ErrDuplicate.
type AttendanceRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewAttendanceRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewAttendanceRepository(exec pgExecutor) *AttendanceRepository {
	return &AttendanceRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Insert appends a ledger record.
func (r *AttendanceRepository) Insert(ctx context.Context, record domain.AttendanceRecord) error {
	sql, args, err := r.builder.
		Insert("attendance.records").
		Columns("id", "attendee_id", "event_id", "credential_value", "device_fingerprint", "status", "scan_time").
		Values(record.ID, record.AttendeeID, record.EventID, record.CredentialValue, record.DeviceFingerprint, record.Status, record.ScanTime).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert record sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// GetByID returns a ledger record by identifier.
func (r *AttendanceRepository) GetByID(ctx context.Context, recordID string) (*domain.AttendanceRecord, error) {
	return r.getOne(ctx, squirrel.Eq{"id": recordID})
}

// GetByAttendeeAndEvent returns the attendee's record for the event.
func (r *AttendanceRepository) GetByAttendeeAndEvent(ctx context.Context, attendeeID, eventID string) (*domain.AttendanceRecord, error) {
	return r.getOne(ctx, squirrel.Eq{"attendee_id": attendeeID, "event_id": eventID})
}

// UpdateStatus toggles a record's status and returns the updated row.
func (r *AttendanceRepository) UpdateStatus(ctx context.Context, recordID string, status domain.AttendanceStatus) (*domain.AttendanceRecord, error) {
	sql, args, err := r.builder.
		Update("attendance.records").
		Set("status", status).
		Where(squirrel.Eq{"id": recordID}).
		Suffix("RETURNING " + attendanceColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update status sql: %w", err)
	}

	record, err := scanRecord(r.exec.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("update record status: %w", err)
	}
	return record, nil
}

// DeviceOwner returns the attendee bound to the fingerprint within the event.
// When several records share the fingerprint the earliest binding wins.
func (r *AttendanceRepository) DeviceOwner(ctx context.Context, eventID, fingerprint string) (string, error) {
	sql, args, err := r.builder.
		Select("attendee_id").
		From("attendance.records").
		Where(squirrel.Eq{"event_id": eventID, "device_fingerprint": fingerprint}).
		OrderBy("scan_time ASC").
		Limit(1).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build device owner sql: %w", err)
	}

	var attendeeID string
	if err := r.exec.QueryRow(ctx, sql, args...).Scan(&attendeeID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", repository.ErrNotFound
		}
		return "", fmt.Errorf("scan device owner: %w", err)
	}
	return attendeeID, nil
}

// CountByEvent returns the number of ledger records for the event.
func (r *AttendanceRepository) CountByEvent(ctx context.Context, eventID string) (int, error) {
	sql, args, err := r.builder.
		Select("COUNT(*)").
		From("attendance.records").
		Where(squirrel.Eq{"event_id": eventID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count sql: %w", err)
	}

	var count int
	if err := r.exec.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("scan count: %w", err)
	}
	return count, nil
}

// RecentByEvent returns up to limit records for the event, newest first.
func (r *AttendanceRepository) RecentByEvent(ctx context.Context, eventID string, limit int) ([]domain.AttendanceRecord, error) {
	return r.list(ctx, squirrel.Eq{"event_id": eventID}, uint64(limit))
}

// HistoryByAttendee returns the attendee's records across events, newest first.
func (r *AttendanceRepository) HistoryByAttendee(ctx context.Context, attendeeID string) ([]domain.AttendanceRecord, error) {
	return r.list(ctx, squirrel.Eq{"attendee_id": attendeeID}, 0)
}

func (r *AttendanceRepository) getOne(ctx context.Context, where squirrel.Eq) (*domain.AttendanceRecord, error) {
	sql, args, err := r.builder.
		Select("id", "attendee_id", "event_id", "credential_value", "device_fingerprint", "status", "scan_time").
		From("attendance.records").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select record sql: %w", err)
	}

	record, err := scanRecord(r.exec.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan record: %w", err)
	}
	return record, nil
}

func (r *AttendanceRepository) list(ctx context.Context, where squirrel.Eq, limit uint64) ([]domain.AttendanceRecord, error) {
	query := r.builder.
		Select("id", "attendee_id", "event_id", "credential_value", "device_fingerprint", "status", "scan_time").
		From("attendance.records").
		Where(where).
		OrderBy("scan_time DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list records sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []domain.AttendanceRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, *record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	return records, nil
}

func scanRecord(row pgx.Row) (*domain.AttendanceRecord, error) {
	var record domain.AttendanceRecord
	if err := row.Scan(
		&record.ID,
		&record.AttendeeID,
		&record.EventID,
		&record.CredentialValue,
		&record.DeviceFingerprint,
		&record.Status,
		&record.ScanTime,
	); err != nil {
		return nil, err
	}
	return &record, nil
}

var _ port.AttendanceRepository = (*AttendanceRepository)(nil)
