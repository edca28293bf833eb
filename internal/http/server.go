// README: API gateway; registers HTTP routes and delegates to module services.
package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wayfare/internal/http/middleware"
	"wayfare/internal/modules/trip"
	"wayfare/internal/plangen"
	"wayfare/internal/service"
	"wayfare/internal/types"
)

// Planner is the slice of the trip planner the handlers use.
type Planner interface {
	Generate(ctx context.Context, userID types.ID, token string, prefs plangen.Preferences) plangen.Outcome[*plangen.Result]
	GenerateStream(ctx context.Context, userID types.ID, token string, prefs plangen.Preferences) <-chan service.PlanEvent
	ClearCache(ctx context.Context, userID types.ID) error
}

type ServerDeps struct {
	Planner   Planner
	Trips     *trip.Service
	JWTSecret string
	Logger    *zap.Logger
}

type Server struct {
	planner   Planner
	trips     *trip.Service
	jwtSecret string
	logger    *zap.Logger
}

func NewServer(deps ServerDeps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		planner:   deps.Planner,
		trips:     deps.Trips,
		jwtSecret: deps.JWTSecret,
		logger:    logger,
	}
}

func (s *Server) Routes() http.Handler {
	r := gin.New()
	r.Use(middleware.Recovery(s.logger))
	r.Use(middleware.Logging(s.logger))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api")
	api.Use(middleware.Auth(s.jwtSecret))

	api.POST("/trips/generate", s.HandleGenerate)
	api.DELETE("/trips/generate/cache", s.HandleClearCache)

	api.POST("/trips", s.HandleSaveTrip)
	api.GET("/trips", s.HandleListTrips)
	api.GET("/trips/:id", s.HandleGetTrip)
	api.PATCH("/trips/:id", s.HandleUpdateTrip)
	api.DELETE("/trips/:id", s.HandleDeleteTrip)

	return r
}
