package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lunchbuddy-backend/internal/store"
	"lunchbuddy-backend/internal/window"
)

// Handler holds shared dependencies for the ops API handlers.
type Handler struct {
	store  store.Store
	window *window.Window
}

// NewHandler creates a new ops API handler.
func NewHandler(s store.Store, w *window.Window) *Handler {
	return &Handler{
		store:  s,
		window: w,
	}
}

// Healthz handles the GET /healthz request.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// statusResponse reports the current confirmation window state.
type statusResponse struct {
	WindowOpen    bool  `json:"windowOpen"`
	YesResponses  int   `json:"yesResponses"`
	NoResponses   int   `json:"noResponses"`
	EnrolledUsers int64 `json:"enrolledUsers"`
}

// GetStatus handles the GET /api/status request.
func (h *Handler) GetStatus(c *gin.Context) {
	enrolled, err := h.store.CountEnrolled(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to count enrolled users"})
		return
	}

	yes, no := h.window.Counts()
	c.JSON(http.StatusOK, statusResponse{
		WindowOpen:    h.window.IsOpen(),
		YesResponses:  yes,
		NoResponses:   no,
		EnrolledUsers: enrolled,
	})
}
