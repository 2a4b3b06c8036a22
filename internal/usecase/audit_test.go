package usecase

import (
	"fmt"
	"testing"
	"time"

	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/core/domain"
)

func TestAuditTrailKeepsNewestFirst(t *testing.T) {
	trail := NewAuditTrail(5)
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	tick := 0
	trail.WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	})

	trail.Append("evt-1", "fingerprint-aaaa1111", domain.AlertDeviceReuse)
	trail.Append("evt-1", "fingerprint-bbbb2222", domain.AlertDeviceReuse)

	alerts := trail.List("evt-1")
	if len(alerts) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(alerts))
	}
	if alerts[0].FingerprintSuffix != "bbbb2222" {
		t.Fatalf("expected newest alert first, got %q", alerts[0].FingerprintSuffix)
	}
	if !alerts[0].DetectedAt.After(alerts[1].DetectedAt) {
		t.Fatal("expected descending timestamps")
	}
}

func TestAuditTrailDropsOldestBeyondCapacity(t *testing.T) {
	trail := NewAuditTrail(5)

	for i := 0; i < 7; i++ {
		trail.Append("evt-1", fmt.Sprintf("fingerprint-%08d", i), domain.AlertDeviceReuse)
	}

	alerts := trail.List("evt-1")
	if len(alerts) != 5 {
		t.Fatalf("expected capacity of 5, got %d", len(alerts))
	}
	if alerts[0].FingerprintSuffix != "00000006" {
		t.Fatalf("expected newest entry retained, got %q", alerts[0].FingerprintSuffix)
	}
	if alerts[4].FingerprintSuffix != "00000002" {
		t.Fatalf("expected oldest two entries dropped, got %q", alerts[4].FingerprintSuffix)
	}
}

func TestAuditTrailIsolatesEvents(t *testing.T) {
	trail := NewAuditTrail(5)

	trail.Append("evt-1", "fingerprint-aaaa1111", domain.AlertDeviceReuse)

	if alerts := trail.List("evt-2"); len(alerts) != 0 {
		t.Fatalf("expected no alerts for evt-2, got %d", len(alerts))
	}
}

func TestAuditTrailTruncatesFingerprint(t *testing.T) {
	trail := NewAuditTrail(5)

	full := "0123456789abcdef0123456789abcdef"
	trail.Append("evt-1", full, domain.AlertDeviceReuse)

	alerts := trail.List("evt-1")
	if alerts[0].FingerprintSuffix != full[len(full)-8:] {
		t.Fatalf("expected trailing 8 characters only, got %q", alerts[0].FingerprintSuffix)
	}
}

func TestAuditTrailListReturnsCopy(t *testing.T) {
	trail := NewAuditTrail(5)
	trail.Append("evt-1", "fingerprint-aaaa1111", domain.AlertDeviceReuse)

	alerts := trail.List("evt-1")
	alerts[0].FingerprintSuffix = "mutated"

	if trail.List("evt-1")[0].FingerprintSuffix == "mutated" {
		t.Fatal("List must return a copy of the buffer")
	}
}
