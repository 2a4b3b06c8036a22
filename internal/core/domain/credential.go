package domain

import "time"

// Credential is a short-lived rotating check-in code displayed at the venue.
// Credentials are immutable once issued; a new one is minted on every
// scheduler tick and the newest non-expired value is the current one.
type Credential struct {
	ID       string
	EventID  string
	Value    string
	IssuedAt time.Time
	ExpireAt time.Time
}

// IsValid reports whether the credential can still be redeemed at the
// supplied moment. The expiry already includes the grace buffer applied at
// mint time, so no further slack is added here.
func (c Credential) IsValid(at time.Time) bool {
	return c.ExpireAt.After(at)
}
