// README: HTTP helper utilities for JSON and error mapping.
package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"wayfare/internal/modules/trip"
	"wayfare/internal/plangen"
	"wayfare/internal/types"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(c *gin.Context, status int, msg string) {
	c.JSON(status, errorResponse{Error: msg})
}

func writeTripError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, trip.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, trip.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, trip.ErrForbidden):
		writeError(c, http.StatusForbidden, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

// respondOutcome writes a generation outcome: 200 with the outcome body on
// success, otherwise the gateway status its failure code maps to, with
// the outcome body carrying the detail.
func respondOutcome(c *gin.Context, out plangen.Outcome[*plangen.Result]) {
	c.JSON(outcomeStatus(out), out)
}

func outcomeStatus(out plangen.Outcome[*plangen.Result]) int {
	if out.Success {
		return http.StatusOK
	}
	if out.Code == plangen.CodeTimeout {
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

// authedUser returns the user ID and raw bearer token set by the auth
// middleware.
func authedUser(c *gin.Context) (types.ID, string) {
	return types.ID(c.GetString("userID")), c.GetString("authToken")
}

func wantsEventStream(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "text/event-stream")
}
