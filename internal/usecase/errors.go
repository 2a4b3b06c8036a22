package usecase

import (
	"errors"
	"fmt"

	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/core/domain"
)

var (
	// ErrIllegalTransition indicates a session lifecycle action outside the legality table.
	ErrIllegalTransition = errors.New("illegal session transition")
	// ErrSessionNotActive indicates a submission arrived outside the active window.
	ErrSessionNotActive = errors.New("session not active")
	// ErrInvalidCredential indicates the presented code is unknown or expired.
	ErrInvalidCredential = errors.New("invalid or expired credential")
	// ErrRecordNotFound indicates the requested attendance record does not exist.
	ErrRecordNotFound = errors.New("attendance record not found")
	// ErrDeviceReuseBlocked indicates the configured reuse policy rejected the submission.
	ErrDeviceReuseBlocked = errors.New("device already bound to another attendee")
)

// IllegalTransitionError carries the states involved in a rejected transition
// so operators can see what raced them. Matches ErrIllegalTransition under
// errors.Is.
type IllegalTransitionError struct {
	Current   domain.SessionState
	Requested domain.SessionState
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal session transition from %s to %s", e.Current, e.Requested)
}

// Is lets callers match the sentinel without unwrapping the detail.
func (e *IllegalTransitionError) Is(target error) bool {
	return target == ErrIllegalTransition
}
