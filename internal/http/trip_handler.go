// README: Saved-trip CRUD endpoints.
package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"wayfare/internal/modules/trip"
	"wayfare/internal/types"
)

type tripView struct {
	ID           types.ID        `json:"id"`
	Title        string          `json:"title"`
	Destination  string          `json:"destination"`
	StartDate    string          `json:"start_date,omitempty"`
	DurationDays int             `json:"duration_days"`
	Travelers    int             `json:"travelers"`
	Plan         json.RawMessage `json:"plan"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func toTripView(t *trip.Trip) tripView {
	return tripView{
		ID:           t.ID,
		Title:        t.Title,
		Destination:  t.Destination,
		StartDate:    t.StartDate,
		DurationDays: t.DurationDays,
		Travelers:    t.Travelers,
		Plan:         json.RawMessage(t.Plan),
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

type saveTripReq struct {
	Title        string         `json:"title"`
	Destination  string         `json:"destination"`
	StartDate    string         `json:"start_date"`
	DurationDays int            `json:"duration_days"`
	Travelers    int            `json:"travelers"`
	Plan         map[string]any `json:"plan"`
}

// HandleSaveTrip handles POST /api/trips.
func (s *Server) HandleSaveTrip(c *gin.Context) {
	var req saveTripReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	userID, _ := authedUser(c)
	saved, err := s.trips.Save(c.Request.Context(), trip.SaveCommand{
		UserID:       userID,
		Title:        req.Title,
		Destination:  req.Destination,
		StartDate:    req.StartDate,
		DurationDays: req.DurationDays,
		Travelers:    req.Travelers,
		Plan:         req.Plan,
	})
	if err != nil {
		writeTripError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTripView(saved))
}

// HandleListTrips handles GET /api/trips.
func (s *Server) HandleListTrips(c *gin.Context) {
	userID, _ := authedUser(c)
	trips, err := s.trips.List(c.Request.Context(), userID)
	if err != nil {
		writeTripError(c, err)
		return
	}
	views := make([]tripView, 0, len(trips))
	for _, t := range trips {
		views = append(views, toTripView(t))
	}
	c.JSON(http.StatusOK, views)
}

// HandleGetTrip handles GET /api/trips/:id.
func (s *Server) HandleGetTrip(c *gin.Context) {
	userID, _ := authedUser(c)
	t, err := s.trips.Get(c.Request.Context(), userID, types.ID(c.Param("id")))
	if err != nil {
		writeTripError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTripView(t))
}

type updateTripReq struct {
	Title        *string        `json:"title"`
	StartDate    *string        `json:"start_date"`
	DurationDays *int           `json:"duration_days"`
	Travelers    *int           `json:"travelers"`
	Plan         map[string]any `json:"plan"`
}

// HandleUpdateTrip handles PATCH /api/trips/:id.
func (s *Server) HandleUpdateTrip(c *gin.Context) {
	var req updateTripReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	userID, _ := authedUser(c)
	updated, err := s.trips.Update(c.Request.Context(), trip.UpdateCommand{
		UserID:       userID,
		TripID:       types.ID(c.Param("id")),
		Title:        req.Title,
		StartDate:    req.StartDate,
		DurationDays: req.DurationDays,
		Travelers:    req.Travelers,
		Plan:         req.Plan,
	})
	if err != nil {
		writeTripError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTripView(updated))
}

// HandleDeleteTrip handles DELETE /api/trips/:id.
func (s *Server) HandleDeleteTrip(c *gin.Context) {
	userID, _ := authedUser(c)
	if err := s.trips.Delete(c.Request.Context(), userID, types.ID(c.Param("id"))); err != nil {
		writeTripError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
