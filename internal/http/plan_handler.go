// README: Trip-plan generation endpoints (streaming relay and cache control).
package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wayfare/internal/plangen"
)

// HandleGenerate handles POST /api/trips/generate. Clients that accept
// text/event-stream get generation events relayed as SSE as they arrive;
// everyone else blocks for the final outcome as JSON.
func (s *Server) HandleGenerate(c *gin.Context) {
	var prefs plangen.Preferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if prefs.Destination == "" || prefs.Duration <= 0 || prefs.Travelers <= 0 {
		writeError(c, http.StatusBadRequest, "destination, duration and travelers are required")
		return
	}
	userID, token := authedUser(c)

	if !wantsEventStream(c) {
		respondOutcome(c, s.planner.Generate(c.Request.Context(), userID, token, prefs))
		return
	}

	events := s.planner.GenerateStream(c.Request.Context(), userID, token, prefs)
	c.Header("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		e, ok := <-events
		if !ok {
			return false
		}
		c.SSEvent(e.Name, e.Data)
		return true
	})
}

// HandleClearCache handles DELETE /api/trips/generate/cache.
func (s *Server) HandleClearCache(c *gin.Context) {
	userID, _ := authedUser(c)
	if err := s.planner.ClearCache(c.Request.Context(), userID); err != nil {
		s.logger.Warn("cache clear failed", zap.String("user_id", string(userID)), zap.Error(err))
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.Status(http.StatusNoContent)
}
