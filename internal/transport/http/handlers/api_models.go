package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// SessionStateResponse reports the lifecycle state of an event session.
type SessionStateResponse struct {
	EventID         string `json:"event_id"`
	State           string `json:"state"`
	RefreshInterval int    `json:"refresh_interval_seconds"`
}

// DisplayResponse is the payload polled by the public display page.
type DisplayResponse struct {
	EventID         string     `json:"event_id"`
	State           string     `json:"state"`
	CredentialValue *string    `json:"credential_value,omitempty"`
	CheckinLink     *string    `json:"checkin_link,omitempty"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	AttendanceCount int        `json:"attendance_count"`
}

// SubmitRequest is the attendee check-in payload. Credential value is
// optional: a null value is the manual-entry fallback.
type SubmitRequest struct {
	EventID          string  `json:"event_id" binding:"required"`
	CredentialValue  *string `json:"credential_value"`
	Platform         string  `json:"platform"`
	ScreenResolution string  `json:"screen_resolution"`
	Timezone         string  `json:"timezone"`
}

// SubmitResponse reports how a submission was resolved.
type SubmitResponse struct {
	Outcome string           `json:"outcome"`
	Record  AttendancePayload `json:"record"`
}

// AttendancePayload is the API view of a ledger record.
type AttendancePayload struct {
	ID         string    `json:"id"`
	AttendeeID string    `json:"attendee_id"`
	EventID    string    `json:"event_id"`
	Status     string    `json:"status"`
	ScanTime   time.Time `json:"scan_time"`
}

func newAttendancePayload(record domain.AttendanceRecord) AttendancePayload {
	return AttendancePayload{
		ID:         record.ID,
		AttendeeID: record.AttendeeID,
		EventID:    record.EventID,
		Status:     string(record.Status),
		ScanTime:   record.ScanTime,
	}
}

// AttendanceListResponse wraps a ledger listing.
type AttendanceListResponse struct {
	Records []AttendancePayload `json:"records"`
	Total   int                 `json:"total"`
}

// UpdateStatusRequest toggles a ledger record between present and revoked.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// IntervalRequest sets the credential refresh cadence for an event.
type IntervalRequest struct {
	RefreshIntervalSeconds int `json:"refresh_interval_seconds" binding:"required"`
}

// AlertPayload is the API view of an audit alert.
type AlertPayload struct {
	EventID           string    `json:"event_id"`
	FingerprintSuffix string    `json:"fingerprint_suffix"`
	Kind              string    `json:"kind"`
	DetectedAt        time.Time `json:"detected_at"`
}

// AlertListResponse wraps the security panel listing.
type AlertListResponse struct {
	Alerts []AlertPayload `json:"alerts"`
	Total  int            `json:"total"`
}

// HealthResponse describes the service health payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse describes the readiness payload with per-check results.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
