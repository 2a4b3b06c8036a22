package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/usecase"
)

// AlertHandler exposes the operator security panel listing.
type AlertHandler struct {
	attendance *usecase.AttendanceService
}

// NewAlertHandler constructs an alert handler.
func NewAlertHandler(attendance *usecase.AttendanceService) *AlertHandler {
	return &AlertHandler{attendance: attendance}
}

// List godoc
// @Summary Device reuse alerts for an event
// @Description Lists the most recent audit alerts recorded for the event, newest first.
// @Tags Alerts
// @Produce json
// @Param event_id path string true "Event identifier"
// @Success 200 {object} AlertListResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/events/{event_id}/alerts [get]
func (h *AlertHandler) List(c *gin.Context) {
	eventID := strings.TrimSpace(c.Param("event_id"))
	if eventID == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "event_id is required"))
		return
	}

	alerts := h.attendance.Alerts(eventID)
	payloads := make([]AlertPayload, 0, len(alerts))
	for _, alert := range alerts {
		payloads = append(payloads, AlertPayload{
			EventID:           alert.EventID,
			FingerprintSuffix: alert.FingerprintSuffix,
			Kind:              string(alert.Kind),
			DetectedAt:        alert.DetectedAt,
		})
	}

	c.JSON(http.StatusOK, AlertListResponse{Alerts: payloads, Total: len(payloads)})
}
