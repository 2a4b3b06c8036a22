package domain

import "testing"

func TestFingerprintIsDeterministic(t *testing.T) {
	attrs := DeviceAttributes{
		Platform:         "MacIntel",
		ScreenResolution: "2560x1600",
		Timezone:         "Asia/Kolkata",
		UserAgent:        "Mozilla/5.0",
	}

	if Fingerprint(attrs) != Fingerprint(attrs) {
		t.Fatal("identical attributes must hash identically")
	}
	if len(Fingerprint(attrs)) != 64 {
		t.Fatalf("expected hex sha256, got %d characters", len(Fingerprint(attrs)))
	}
}

func TestFingerprintNormalizesCaseAndWhitespace(t *testing.T) {
	a := DeviceAttributes{Platform: "MacIntel", ScreenResolution: "2560x1600", Timezone: "Asia/Kolkata", UserAgent: "Mozilla/5.0"}
	b := DeviceAttributes{Platform: "  macintel ", ScreenResolution: "2560X1600", Timezone: "ASIA/KOLKATA", UserAgent: " mozilla/5.0"}

	if Fingerprint(a) != Fingerprint(b) {
		t.Fatal("case and surrounding whitespace must not change the fingerprint")
	}
}

func TestFingerprintMissingAttributeFallsBack(t *testing.T) {
	blank := Fingerprint(DeviceAttributes{})
	explicit := Fingerprint(DeviceAttributes{
		Platform:         "unknown",
		ScreenResolution: "unknown",
		Timezone:         "unknown",
		UserAgent:        "unknown",
	})

	if blank != explicit {
		t.Fatal("missing attributes must hash as the placeholder value")
	}

	partial := Fingerprint(DeviceAttributes{Platform: "Linux"})
	if partial == blank {
		t.Fatal("a present attribute must change the hash")
	}
}

func TestFingerprintSuffix(t *testing.T) {
	if got := FingerprintSuffix("abcdef12345678", 8); got != "12345678" {
		t.Fatalf("expected trailing 8 characters, got %q", got)
	}
	if got := FingerprintSuffix("short", 8); got != "short" {
		t.Fatalf("short input must be returned whole, got %q", got)
	}
	if got := FingerprintSuffix("abcdef", 0); got != "abcdef" {
		t.Fatalf("non-positive length must return the input, got %q", got)
	}
}
