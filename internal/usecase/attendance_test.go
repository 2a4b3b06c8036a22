package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/core/domain"
)

type submissionCounter struct {
	outcomes map[string]int
}

func (c *submissionCounter) SubmissionResolved(outcome string) {
	if c.outcomes == nil {
		c.outcomes = make(map[string]int)
	}
	c.outcomes[outcome]++
}

type attendanceFixture struct {
	service     *AttendanceService
	sessions    *fakeSessionRepo
	credentials *fakeCredentialRepo
	ledger      *fakeAttendanceRepo
	audit       *AuditTrail
	publisher   *recordingPublisher
	metrics     *submissionCounter
	clock       time.Time
}

func newAttendanceFixture(t *testing.T, state domain.SessionState) *attendanceFixture {
	t.Helper()

	clock := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	sessions := newFakeSessionRepo()
	sessions.sessions["evt-1"] = domain.Session{EventID: "evt-1", State: state, RefreshInterval: 10 * time.Second}

	credentials := newFakeCredentialRepo()
	credentials.now = func() time.Time { return clock }

	sessionService := NewSessionService(sessions, nil, nil, 10*time.Second, nil)
	credentialService := NewCredentialService(credentials, nil, 6, 5*time.Second, "", nil)
	credentialService.WithClock(func() time.Time { return clock })

	ledger := newFakeAttendanceRepo()
	audit := NewAuditTrail(5)
	publisher := &recordingPublisher{}
	metrics := &submissionCounter{}

	service := NewAttendanceService(sessionService, credentialService, ledger, audit, publisher, nil).
		WithMetrics(metrics)
	service.WithClock(func() time.Time { return clock })

	return &attendanceFixture{
		service:     service,
		sessions:    sessions,
		credentials: credentials,
		ledger:      ledger,
		audit:       audit,
		publisher:   publisher,
		metrics:     metrics,
		clock:       clock,
	}
}

func (f *attendanceFixture) issueCredential(t *testing.T, value string, ttl time.Duration) {
	t.Helper()
	f.credentials.credentials = append(f.credentials.credentials, domain.Credential{
		EventID:  "evt-1",
		Value:    value,
		IssuedAt: f.clock,
		ExpireAt: f.clock.Add(ttl),
	})
}

func strPtr(s string) *string { return &s }

var laptopAttrs = domain.DeviceAttributes{
	Platform:         "MacIntel",
	ScreenResolution: "2560x1600",
	Timezone:         "Asia/Kolkata",
	UserAgent:        "Mozilla/5.0",
}

func TestSubmitRecordsAttendance(t *testing.T) {
	f := newAttendanceFixture(t, domain.SessionActive)
	f.issueCredential(t, "123456", 15*time.Second)

	outcome, record, err := f.service.Submit(context.Background(), "alice", "evt-1", strPtr("123456"), laptopAttrs)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if outcome != domain.OutcomeRecorded {
		t.Fatalf("expected recorded, got %s", outcome)
	}
	if record.Status != domain.AttendancePresent {
		t.Fatalf("expected present status, got %s", record.Status)
	}
	if record.DeviceFingerprint == "" {
		t.Fatal("expected fingerprint on the ledger record")
	}
	if len(f.publisher.recorded) != 1 {
		t.Fatalf("expected one recorded event, got %d", len(f.publisher.recorded))
	}
	if f.metrics.outcomes["recorded"] != 1 {
		t.Fatalf("expected recorded counter increment, got %v", f.metrics.outcomes)
	}
}

func TestSubmitIsIdempotentPerAttendeeAndEvent(t *testing.T) {
	f := newAttendanceFixture(t, domain.SessionActive)
	f.issueCredential(t, "123456", 15*time.Second)

	ctx := context.Background()
	_, first, err := f.service.Submit(ctx, "alice", "evt-1", strPtr("123456"), laptopAttrs)
	if err != nil {
		t.Fatalf("first Submit failed: %v", err)
	}

	outcome, second, err := f.service.Submit(ctx, "alice", "evt-1", strPtr("123456"), laptopAttrs)
	if err != nil {
		t.Fatalf("second Submit failed: %v", err)
	}
	if outcome != domain.OutcomeAlreadyRecorded {
		t.Fatalf("expected already_recorded, got %s", outcome)
	}
	if second.ID != first.ID {
		t.Fatal("expected the existing record returned, not a new one")
	}
	if count, _ := f.ledger.CountByEvent(ctx, "evt-1"); count != 1 {
		t.Fatalf("expected a single ledger record, got %d", count)
	}
	if len(f.publisher.recorded) != 1 {
		t.Fatalf("duplicate submission must not publish again, got %d", len(f.publisher.recorded))
	}
}

func TestSubmitRejectedOutsideActiveWindow(t *testing.T) {
	for _, state := range []domain.SessionState{domain.SessionNotStarted, domain.SessionPaused, domain.SessionStopped} {
		t.Run(string(state), func(t *testing.T) {
			f := newAttendanceFixture(t, state)

			_, _, err := f.service.Submit(context.Background(), "alice", "evt-1", nil, laptopAttrs)
			if !errors.Is(err, ErrSessionNotActive) {
				t.Fatalf("expected ErrSessionNotActive for %s session, got %v", state, err)
			}
			if f.metrics.outcomes["rejected_inactive"] != 1 {
				t.Fatalf("expected rejected_inactive counter, got %v", f.metrics.outcomes)
			}
		})
	}
}

func TestSubmitRejectsExpiredCredential(t *testing.T) {
	f := newAttendanceFixture(t, domain.SessionActive)
	f.credentials.credentials = append(f.credentials.credentials, domain.Credential{
		EventID:  "evt-1",
		Value:    "123456",
		IssuedAt: f.clock.Add(-time.Minute),
		ExpireAt: f.clock.Add(-45 * time.Second),
	})

	_, _, err := f.service.Submit(context.Background(), "alice", "evt-1", strPtr("123456"), laptopAttrs)
	if !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential, got %v", err)
	}
	if count, _ := f.ledger.CountByEvent(context.Background(), "evt-1"); count != 0 {
		t.Fatal("rejected submission must not append to the ledger")
	}
}

func TestSubmitRejectsUnknownCredential(t *testing.T) {
	f := newAttendanceFixture(t, domain.SessionActive)
	f.issueCredential(t, "123456", 15*time.Second)

	_, _, err := f.service.Submit(context.Background(), "alice", "evt-1", strPtr("654321"), laptopAttrs)
	if !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential for unknown value, got %v", err)
	}
}

func TestSubmitManualFallbackSkipsCredentialCheck(t *testing.T) {
	f := newAttendanceFixture(t, domain.SessionActive)

	outcome, _, err := f.service.Submit(context.Background(), "alice", "evt-1", nil, laptopAttrs)
	if err != nil {
		t.Fatalf("manual fallback Submit failed: %v", err)
	}
	if outcome != domain.OutcomeRecorded {
		t.Fatalf("expected recorded via manual fallback, got %s", outcome)
	}
}

func TestSubmitFlagsDeviceReuseWithoutBlocking(t *testing.T) {
	f := newAttendanceFixture(t, domain.SessionActive)
	f.issueCredential(t, "123456", 15*time.Second)

	ctx := context.Background()
	if _, _, err := f.service.Submit(ctx, "alice", "evt-1", strPtr("123456"), laptopAttrs); err != nil {
		t.Fatalf("first Submit failed: %v", err)
	}

	outcome, record, err := f.service.Submit(ctx, "bob", "evt-1", strPtr("123456"), laptopAttrs)
	if err != nil {
		t.Fatalf("reused-device Submit must not be blocked, got %v", err)
	}
	if outcome != domain.OutcomeRecorded {
		t.Fatalf("expected recorded despite reuse, got %s", outcome)
	}

	alerts := f.audit.List("evt-1")
	if len(alerts) != 1 {
		t.Fatalf("expected one reuse alert, got %d", len(alerts))
	}
	if alerts[0].Kind != domain.AlertDeviceReuse {
		t.Fatalf("expected device_reuse alert, got %s", alerts[0].Kind)
	}
	if len(alerts[0].FingerprintSuffix) != 8 {
		t.Fatalf("expected 8-character fingerprint suffix, got %q", alerts[0].FingerprintSuffix)
	}
	if record.DeviceFingerprint[len(record.DeviceFingerprint)-8:] != alerts[0].FingerprintSuffix {
		t.Fatal("alert suffix must match the submitting device's fingerprint")
	}
	if len(f.publisher.reuseDetected) != 1 {
		t.Fatalf("expected one reuse event, got %d", len(f.publisher.reuseDetected))
	}
	if f.publisher.reuseDetected[0].BoundAttendeeID != "alice" {
		t.Fatalf("expected alice as bound attendee, got %s", f.publisher.reuseDetected[0].BoundAttendeeID)
	}
}

func TestSubmitSameAttendeeSameDeviceNotFlagged(t *testing.T) {
	f := newAttendanceFixture(t, domain.SessionActive)

	ctx := context.Background()
	if _, _, err := f.service.Submit(ctx, "alice", "evt-1", nil, laptopAttrs); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if _, _, err := f.service.Submit(ctx, "alice", "evt-1", nil, laptopAttrs); err != nil {
		t.Fatalf("repeat Submit failed: %v", err)
	}

	if alerts := f.audit.List("evt-1"); len(alerts) != 0 {
		t.Fatalf("own-device resubmission must not raise alerts, got %d", len(alerts))
	}
}

func TestSubmitBlockingPolicyRejects(t *testing.T) {
	f := newAttendanceFixture(t, domain.SessionActive)
	f.service.WithReusePolicy(domain.ReusePolicyByName("block"))

	ctx := context.Background()
	if _, _, err := f.service.Submit(ctx, "alice", "evt-1", nil, laptopAttrs); err != nil {
		t.Fatalf("first Submit failed: %v", err)
	}

	_, _, err := f.service.Submit(ctx, "bob", "evt-1", nil, laptopAttrs)
	if !errors.Is(err, ErrDeviceReuseBlocked) {
		t.Fatalf("expected ErrDeviceReuseBlocked under blocking policy, got %v", err)
	}
	if count, _ := f.ledger.CountByEvent(ctx, "evt-1"); count != 1 {
		t.Fatalf("blocked submission must not be appended, got %d records", count)
	}
}

func TestSubmitConcurrentDuplicateResolvesIdempotently(t *testing.T) {
	f := newAttendanceFixture(t, domain.SessionActive)

	ctx := context.Background()
	if _, _, err := f.service.Submit(ctx, "alice", "evt-1", nil, laptopAttrs); err != nil {
		t.Fatalf("seed Submit failed: %v", err)
	}

	// Simulate a racer that inserted between the pre-check and the append.
	f.ledger.duplicateNext = true

	outcome, record, err := f.service.Submit(ctx, "bob", "evt-1", nil, domain.DeviceAttributes{Platform: "Linux"})
	if err != nil {
		t.Fatalf("racing Submit must resolve, got %v", err)
	}
	if outcome != domain.OutcomeAlreadyRecorded {
		t.Fatalf("expected already_recorded after losing the insert race, got %s", outcome)
	}
	if record == nil {
		t.Fatal("expected a record back after losing the insert race")
	}
}

func TestUpdateStatusRevokesAndRestores(t *testing.T) {
	f := newAttendanceFixture(t, domain.SessionActive)

	ctx := context.Background()
	_, record, err := f.service.Submit(ctx, "alice", "evt-1", nil, laptopAttrs)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	updated, err := f.service.UpdateStatus(ctx, record.ID, domain.AttendanceRevoked, "operator-1")
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if updated.Status != domain.AttendanceRevoked {
		t.Fatalf("expected revoked, got %s", updated.Status)
	}

	restored, err := f.service.UpdateStatus(ctx, record.ID, domain.AttendancePresent, "operator-1")
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if restored.Status != domain.AttendancePresent {
		t.Fatalf("expected present, got %s", restored.Status)
	}
	if len(f.publisher.statusChanged) != 2 {
		t.Fatalf("expected two status events, got %d", len(f.publisher.statusChanged))
	}
}

func TestUpdateStatusUnknownRecord(t *testing.T) {
	f := newAttendanceFixture(t, domain.SessionActive)

	_, err := f.service.UpdateStatus(context.Background(), "missing", domain.AttendanceRevoked, "operator-1")
	if !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	f := newAttendanceFixture(t, domain.SessionActive)

	if _, err := f.service.UpdateStatus(context.Background(), "r1", domain.AttendanceStatus("ghost"), "operator-1"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestRecentAndHistoryOrdering(t *testing.T) {
	f := newAttendanceFixture(t, domain.SessionActive)

	ctx := context.Background()
	base := f.clock
	for i, attendee := range []string{"alice", "bob", "carol"} {
		f.ledger.records = append(f.ledger.records, domain.AttendanceRecord{
			ID:         attendee,
			AttendeeID: attendee,
			EventID:    "evt-1",
			Status:     domain.AttendancePresent,
			ScanTime:   base.Add(time.Duration(i) * time.Minute),
		})
	}

	recent, err := f.service.Recent(ctx, "evt-1", 2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 2 || recent[0].AttendeeID != "carol" || recent[1].AttendeeID != "bob" {
		t.Fatalf("expected newest-first limited listing, got %+v", recent)
	}

	history, err := f.service.History(ctx, "alice")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 1 || history[0].AttendeeID != "alice" {
		t.Fatalf("expected alice's history, got %+v", history)
	}
}
