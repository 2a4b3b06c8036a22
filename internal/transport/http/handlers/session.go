package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/core/domain"
	"github.com/pranavgawaii/smart-attendance-system-sub000/internal/usecase"
)

// SessionHandler exposes the operator lifecycle endpoints for event sessions.
type SessionHandler struct {
	sessions    *usecase.SessionService
	minInterval time.Duration
}

// NewSessionHandler constructs a session handler. minInterval is the lower
// bound enforced on operator-configured refresh cadences.
func NewSessionHandler(sessions *usecase.SessionService, minInterval time.Duration) *SessionHandler {
	if minInterval <= 0 {
		minInterval = 5 * time.Second
	}
	return &SessionHandler{sessions: sessions, minInterval: minInterval}
}

// RegisterRoutes binds lifecycle routes to the provided router group.
func (h *SessionHandler) RegisterRoutes(r *gin.RouterGroup) {
	if r == nil {
		return
	}

	r.GET("/:event_id", h.State)
	r.POST("/:event_id/start", h.Start)
	r.POST("/:event_id/pause", h.Pause)
	r.POST("/:event_id/stop", h.Stop)
	r.PUT("/:event_id/interval", h.ConfigureInterval)
}

// State godoc
// @Summary Current session state
// @Description Returns the lifecycle state and refresh cadence for an event.
// @Tags Sessions
// @Produce json
// @Param event_id path string true "Event identifier"
// @Success 200 {object} SessionStateResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/sessions/{event_id} [get]
func (h *SessionHandler) State(c *gin.Context) {
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

	c.JSON(http.StatusOK, SessionStateResponse{
		EventID:         session.EventID,
		State:           string(session.State),
		RefreshInterval: int(session.RefreshInterval / time.Second),
	})
}

// Start godoc
// @Summary Start or resume attendance collection
// @Description Moves the event session to active and begins credential rotation.
// @Tags Sessions
// @Produce json
// @Param event_id path string true "Event identifier"
// @Success 200 {object} SessionStateResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/sessions/{event_id}/start [post]
func (h *SessionHandler) Start(c *gin.Context) {
	h.transition(c, domain.SessionActive)
}

// Pause godoc
// @Summary Pause attendance collection
// @Description Suspends credential rotation and submissions without discarding the session.
// @Tags Sessions
// @Produce json
// @Param event_id path string true "Event identifier"
// @Success 200 {object} SessionStateResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/sessions/{event_id}/pause [post]
func (h *SessionHandler) Pause(c *gin.Context) {
	h.transition(c, domain.SessionPaused)
}

// Stop godoc
// @Summary Stop attendance collection
// @Description Ends the collection window. Stopped sessions can be restarted via start.
// @Tags Sessions
// @Produce json
// @Param event_id path string true "Event identifier"
// @Success 200 {object} SessionStateResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/sessions/{event_id}/stop [post]
func (h *SessionHandler) Stop(c *gin.Context) {
	h.transition(c, domain.SessionStopped)
}

// ConfigureInterval godoc
// @Summary Configure credential refresh cadence
// @Description Sets how often the displayed credential rotates for the event.
// @Tags Sessions
// @Accept json
// @Produce json
// @Param event_id path string true "Event identifier"
// @Param request body IntervalRequest true "Refresh interval request"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/sessions/{event_id}/interval [put]
func (h *SessionHandler) ConfigureInterval(c *gin.Context) {
	eventID := strings.TrimSpace(c.Param("event_id"))
	if eventID == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "event_id is required"))
		return
	}

	var req IntervalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "refresh_interval_seconds is required"))
		return
	}

	interval := time.Duration(req.RefreshIntervalSeconds) * time.Second
	if interval < h.minInterval {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "refresh interval below minimum"))
		return
	}

	if err := h.sessions.ConfigureInterval(c.Request.Context(), eventID, interval); err != nil {
		RespondWithMappedError(c, err, nil, http.StatusInternalServerError, "failed to configure refresh interval")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "refresh interval updated"})
}

func (h *SessionHandler) transition(c *gin.Context, target domain.SessionState) {
	eventID := strings.TrimSpace(c.Param("event_id"))
	if eventID == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "event_id is required"))
		return
	}

	state, err := h.sessions.Transition(c.Request.Context(), eventID, target)
	if err != nil {
		cases := []ErrorCase{
			{Err: usecase.ErrIllegalTransition, Status: http.StatusConflict, Message: "transition not allowed from current state"},
		}
		RespondWithMappedError(c, err, cases, http.StatusInternalServerError, "failed to transition session")
		return
	}

	session, err := h.sessions.Session(c.Request.Context(), eventID)
	if err != nil {
		c.JSON(http.StatusOK, SessionStateResponse{EventID: eventID, State: string(state)})
		return
	}

	c.JSON(http.StatusOK, SessionStateResponse{
		EventID:         session.EventID,
		State:           string(session.State),
		RefreshInterval: int(session.RefreshInterval / time.Second),
	})
}
