package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const attributeFallback = "unknown"

// DeviceAttributes is the fixed tuple of client-declared request attributes
// that participate in fingerprinting. It is a heuristic proxy-detection
// signal, not a hardware identifier: two distinct devices with identical
// configuration hash to the same value, which is why reuse is audited rather
// than blocked.
type DeviceAttributes struct {
	Platform         string
	ScreenResolution string
	Timezone         string
	UserAgent        string
}

// Fingerprint derives the deterministic device fingerprint for the supplied
// attributes. Missing attributes default to a fixed placeholder so that an
// absent header never silently changes the hash layout.
func Fingerprint(attrs DeviceAttributes) string {
	parts := []string{
		orFallback(attrs.Platform),
		orFallback(attrs.ScreenResolution),
		orFallback(attrs.Timezone),
		orFallback(attrs.UserAgent),
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// FingerprintSuffix returns the trailing characters of a fingerprint for
// operator-facing display. Enough for human triage, useless for replay.
func FingerprintSuffix(fingerprint string, length int) string {
	if length <= 0 || len(fingerprint) <= length {
		return fingerprint
	}
	return fingerprint[len(fingerprint)-length:]
}

func orFallback(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return attributeFallback
	}
	return strings.ToLower(trimmed)
}
