package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/core/domain"
	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/usecase"
)

// DisplayHandler serves the public projector page payload: current session
// state, the live credential, and the running attendance count.
type DisplayHandler struct {
	sessions    *usecase.SessionService
	credentials *usecase.CredentialService
	attendance  *usecase.AttendanceService
}

// NewDisplayHandler constructs a display handler.
func NewDisplayHandler(sessions *usecase.SessionService, credentials *usecase.CredentialService, attendance *usecase.AttendanceService) *DisplayHandler {
	return &DisplayHandler{sessions: sessions, credentials: credentials, attendance: attendance}
}

// Show godoc
// @Summary Live display payload
// @Description Returns the session state, current credential, and attendance count for the projector page.
// @Tags Display
// @Produce json
// @Param event_id path string true "Event identifier"
// @Success 200 {object} DisplayResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/events/{event_id}/display [get]
func (h *DisplayHandler) Show(c *gin.Context) {
	eventID := strings.TrimSpace(c.Param("event_id"))
	if eventID == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "event_id is required"))
		return
	}

	session, err := h.sessions.Session(c.Request.Context(), eventID)
	if err != nil {
		RespondWithMappedError(c, err, nil, http.StatusInternalServerError, "failed to load session state")
		return
	}

	response := DisplayResponse{
		EventID: eventID,
		State:   string(session.State),
	}

	if session.State == domain.SessionActive {
		credential, err := h.credentials.Current(c.Request.Context(), eventID)
		if err != nil {
			RespondWithMappedError(c, err, nil, http.StatusInternalServerError, "failed to load current credential")
			return
		}
		if credential != nil {
			link := h.credentials.DeepLink(eventID, credential.Value)
			expiresAt := credential.ExpireAt
			response.CredentialValue = &credential.Value
			response.CheckinLink = &link
			response.ExpiresAt = &expiresAt
		}
	}

	count, err := h.attendance.Count(c.Request.Context(), eventID)
	if err != nil {
		RespondWithMappedError(c, err, nil, http.StatusInternalServerError, "failed to count attendance")
		return
	}
	response.AttendanceCount = count

	c.JSON(http.StatusOK, response)
}
