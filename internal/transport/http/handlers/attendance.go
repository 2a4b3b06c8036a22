package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/core/domain"
	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/transport/http/middleware"
	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/usecase"
)

// AttendanceHandler exposes the attendee submission endpoint and the operator
// ledger endpoints.
type AttendanceHandler struct {
	attendance *usecase.AttendanceService
}

// NewAttendanceHandler constructs an attendance handler.
func NewAttendanceHandler(attendance *usecase.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// Submit godoc
// @Summary Submit attendance
// @Description Records attendance for the authenticated attendee at an event.
// @Tags Attendance
// @Security Bearer
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer identity token"
// @Param request body SubmitRequest true "Attendance submission"
// @Success 200 {object} SubmitResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/attendance/submit [post]
func (h *AttendanceHandler) Submit(c *gin.Context) {
	if h.attendance == nil {
		c.JSON(http.StatusServiceUnavailable, NewErrorResponse(c, "attendance service unavailable"))
		return
	}

	attendeeID, ok := middleware.GetAttendeeID(c)
	if !ok || attendeeID == "" {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "event_id is required"))
		return
	}

	attrs := domain.DeviceAttributes{
		UserAgent:        c.Request.UserAgent(),
		Platform:         req.Platform,
		ScreenResolution: req.ScreenResolution,
		Timezone:         req.Timezone,
	}

	outcome, record, err := h.attendance.Submit(c.Request.Context(), attendeeID, req.EventID, req.CredentialValue, attrs)
	if err != nil {
		cases := []ErrorCase{
			{Err: usecase.ErrSessionNotActive, Status: http.StatusConflict, Message: "attendance collection is not active for this event"},
			{Err: usecase.ErrInvalidCredential, Status: http.StatusUnprocessableEntity, Message: "credential is invalid or expired"},
			{Err: usecase.ErrDeviceReuseBlocked, Status: http.StatusForbidden, Message: "submission rejected"},
		}
		RespondWithMappedError(c, err, cases, http.StatusInternalServerError, "failed to record attendance")
		return
	}

	c.JSON(http.StatusOK, SubmitResponse{
		Outcome: string(outcome),
		Record:  newAttendancePayload(*record),
	})
}

// UpdateStatus godoc
// @Summary Update attendance record status
// @Description Toggles a ledger record between present and revoked.
// @Tags Attendance
// @Accept json
// @Produce json
// @Param record_id path string true "Attendance record identifier"
// @Param request body UpdateStatusRequest true "Status update request"
// @Success 200 {object} AttendancePayload
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/attendance/{record_id}/status [patch]
func (h *AttendanceHandler) UpdateStatus(c *gin.Context) {
	recordID := strings.TrimSpace(c.Param("record_id"))
	if recordID == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "record_id is required"))
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "status is required"))
		return
	}

	status := domain.AttendanceStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if !status.Valid() {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "status must be present or revoked"))
		return
	}

	record, err := h.attendance.UpdateStatus(c.Request.Context(), recordID, status, operatorIdentity(c))
	if err != nil {
		cases := []ErrorCase{
			{Err: usecase.ErrRecordNotFound, Status: http.StatusNotFound, Message: "attendance record not found"},
		}
		RespondWithMappedError(c, err, cases, http.StatusInternalServerError, "failed to update attendance status")
		return
	}

	c.JSON(http.StatusOK, newAttendancePayload(*record))
}

// Recent godoc
// @Summary Recent attendance for an event
// @Description Lists the newest ledger records for the event.
// @Tags Attendance
// @Produce json
// @Param event_id path string true "Event identifier"
// @Param limit query int false "Maximum records to return (default 20)"
// @Success 200 {object} AttendanceListResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/events/{event_id}/attendance [get]
func (h *AttendanceHandler) Recent(c *gin.Context) {
	eventID := strings.TrimSpace(c.Param("event_id"))
	if eventID == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "event_id is required"))
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	records, err := h.attendance.Recent(c.Request.Context(), eventID, limit)
	if err != nil {
		RespondWithMappedError(c, err, nil, http.StatusInternalServerError, "failed to list attendance")
		return
	}

	c.JSON(http.StatusOK, newAttendanceListResponse(records))
}

// History godoc
// @Summary Attendance history for an attendee
// @Description Lists the attendee's ledger records across all events.
// @Tags Attendance
// @Produce json
// @Param attendee_id path string true "Attendee identifier"
// @Success 200 {object} AttendanceListResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/attendees/{attendee_id}/attendance [get]
func (h *AttendanceHandler) History(c *gin.Context) {
	attendeeID := strings.TrimSpace(c.Param("attendee_id"))
	if attendeeID == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "attendee_id is required"))
		return
	}

	records, err := h.attendance.History(c.Request.Context(), attendeeID)
	if err != nil {
		RespondWithMappedError(c, err, nil, http.StatusInternalServerError, "failed to list attendance history")
		return
	}

	c.JSON(http.StatusOK, newAttendanceListResponse(records))
}

func newAttendanceListResponse(records []domain.AttendanceRecord) AttendanceListResponse {
	payloads := make([]AttendancePayload, 0, len(records))
	for _, record := range records {
		payloads = append(payloads, newAttendancePayload(record))
	}
	return AttendanceListResponse{Records: payloads, Total: len(payloads)}
}

func operatorIdentity(c *gin.Context) string {
	if id, ok := middleware.GetAttendeeID(c); ok && id != "" {
		return id
	}
	return "operator"
}
