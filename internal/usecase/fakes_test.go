package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/core/domain"
	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/repository"
)

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]domain.Session

	// conflictNext forces the next CompareAndSwapState to lose, applying
	// racerState instead, so CAS retry paths can be exercised.
	conflictNext bool
	racerState   domain.SessionState

	getErr error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]domain.Session)}
}

func (r *fakeSessionRepo) Get(_ context.Context, eventID string) (*domain.Session, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[eventID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := session
	return &copy, nil
}

func (r *fakeSessionRepo) Upsert(_ context.Context, session domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[session.EventID]; !ok {
		r.sessions[session.EventID] = session
	}
	return nil
}

func (r *fakeSessionRepo) CompareAndSwapState(_ context.Context, eventID string, expected, target domain.SessionState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[eventID]
	if !ok {
		return repository.ErrConflict
	}
	if r.conflictNext {
		r.conflictNext = false
		session.State = r.racerState
		r.sessions[eventID] = session
		return repository.ErrConflict
	}
	if session.State != expected {
		return repository.ErrConflict
	}
	session.State = target
	r.sessions[eventID] = session
	return nil
}

func (r *fakeSessionRepo) SetRefreshInterval(_ context.Context, eventID string, interval time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[eventID]
	if !ok {
		return repository.ErrNotFound
	}
	session.RefreshInterval = interval
	r.sessions[eventID] = session
	return nil
}

func (r *fakeSessionRepo) ListByState(_ context.Context, state domain.SessionState) ([]domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Session
	for _, session := range r.sessions {
		if session.State == state {
			out = append(out, session)
		}
	}
	return out, nil
}

type fakeCredentialRepo struct {
	mu          sync.Mutex
	credentials []domain.Credential
	now         func() time.Time
	insertErr   error
}

func newFakeCredentialRepo() *fakeCredentialRepo {
	return &fakeCredentialRepo{now: func() time.Time { return time.Now().UTC() }}
}

func (r *fakeCredentialRepo) Insert(_ context.Context, credential domain.Credential) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.credentials = append(r.credentials, credential)
	return nil
}

func (r *fakeCredentialRepo) Current(_ context.Context, eventID string) (*domain.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var newest *domain.Credential
	for i := range r.credentials {
		c := r.credentials[i]
		if c.EventID != eventID || !c.IsValid(r.now()) {
			continue
		}
		if newest == nil || c.IssuedAt.After(newest.IssuedAt) {
			copy := c
			newest = &copy
		}
	}
	if newest == nil {
		return nil, repository.ErrNotFound
	}
	return newest, nil
}

func (r *fakeCredentialRepo) Exists(_ context.Context, eventID, value string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.credentials {
		if c.EventID == eventID && c.Value == value && c.IsValid(r.now()) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeCredentialRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.credentials)
}

type fakeCredentialCache struct {
	mu      sync.Mutex
	entries map[string]domain.Credential
	setTTLs map[string]time.Duration
	getErr  error
}

func newFakeCredentialCache() *fakeCredentialCache {
	return &fakeCredentialCache{
		entries: make(map[string]domain.Credential),
		setTTLs: make(map[string]time.Duration),
	}
}

func (c *fakeCredentialCache) SetCurrent(_ context.Context, credential domain.Credential, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[credential.EventID] = credential
	c.setTTLs[credential.EventID] = ttl
	return nil
}

func (c *fakeCredentialCache) GetCurrent(_ context.Context, eventID string) (*domain.Credential, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	credential, ok := c.entries[eventID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := credential
	return &copy, nil
}

func (c *fakeCredentialCache) Invalidate(_ context.Context, eventID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, eventID)
	return nil
}

type fakeAttendanceRepo struct {
	mu      sync.Mutex
	records []domain.AttendanceRecord

	// duplicateNext forces the next Insert to report a unique violation, as
	// a concurrent duplicate racing past the pre-check would.
	duplicateNext bool
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{}
}

func (r *fakeAttendanceRepo) Insert(_ context.Context, record domain.AttendanceRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.duplicateNext {
		r.duplicateNext = false
		return repository.ErrDuplicate
	}
	for _, existing := range r.records {
		if existing.AttendeeID == record.AttendeeID && existing.EventID == record.EventID {
			return repository.ErrDuplicate
		}
	}
	r.records = append(r.records, record)
	return nil
}

func (r *fakeAttendanceRepo) GetByID(_ context.Context, recordID string) (*domain.AttendanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.records {
		if r.records[i].ID == recordID {
			copy := r.records[i]
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeAttendanceRepo) GetByAttendeeAndEvent(_ context.Context, attendeeID, eventID string) (*domain.AttendanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.records {
		if r.records[i].AttendeeID == attendeeID && r.records[i].EventID == eventID {
			copy := r.records[i]
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeAttendanceRepo) UpdateStatus(_ context.Context, recordID string, status domain.AttendanceStatus) (*domain.AttendanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.records {
		if r.records[i].ID == recordID {
			r.records[i].Status = status
			copy := r.records[i]
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeAttendanceRepo) DeviceOwner(_ context.Context, eventID, fingerprint string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var owner string
	var earliest time.Time
	for _, record := range r.records {
		if record.EventID != eventID || record.DeviceFingerprint != fingerprint {
			continue
		}
		if owner == "" || record.ScanTime.Before(earliest) {
			owner = record.AttendeeID
			earliest = record.ScanTime
		}
	}
	if owner == "" {
		return "", repository.ErrNotFound
	}
	return owner, nil
}

func (r *fakeAttendanceRepo) CountByEvent(_ context.Context, eventID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, record := range r.records {
		if record.EventID == eventID {
			count++
		}
	}
	return count, nil
}

func (r *fakeAttendanceRepo) RecentByEvent(_ context.Context, eventID string, limit int) ([]domain.AttendanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.AttendanceRecord
	for _, record := range r.records {
		if record.EventID == eventID {
			out = append(out, record)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScanTime.After(out[j].ScanTime) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeAttendanceRepo) HistoryByAttendee(_ context.Context, attendeeID string) ([]domain.AttendanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.AttendanceRecord
	for _, record := range r.records {
		if record.AttendeeID == attendeeID {
			out = append(out, record)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScanTime.After(out[j].ScanTime) })
	return out, nil
}

type recordingPublisher struct {
	mu            sync.Mutex
	recorded      []domain.AttendanceRecordedEvent
	transitioned  []domain.SessionTransitionedEvent
	reuseDetected []domain.DeviceReuseDetectedEvent
	statusChanged []domain.AttendanceStatusChangedEvent
}

func (p *recordingPublisher) PublishAttendanceRecorded(_ context.Context, event domain.AttendanceRecordedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.recorded = append(p.recorded, event)
	return nil
}

func (p *recordingPublisher) PublishSessionTransitioned(_ context.Context, event domain.SessionTransitionedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.transitioned = append(p.transitioned, event)
	return nil
}

func (p *recordingPublisher) PublishDeviceReuseDetected(_ context.Context, event domain.DeviceReuseDetectedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reuseDetected = append(p.reuseDetected, event)
	return nil
}

func (p *recordingPublisher) PublishAttendanceStatusChanged(_ context.Context, event domain.AttendanceStatusChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statusChanged = append(p.statusChanged, event)
	return nil
}

type recordingLoopControl struct {
	mu     sync.Mutex
	starts []string
	stops  []string
}

func (l *recordingLoopControl) Start(eventID string, _ time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.starts = append(l.starts, eventID)
}

func (l *recordingLoopControl) Stop(eventID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stops = append(l.stops, eventID)
}
