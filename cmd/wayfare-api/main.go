// README: Entry point; loads config, wires services, starts the HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"wayfare/internal/config"
	httptransport "wayfare/internal/http"
	"wayfare/internal/infra"
	"wayfare/internal/maps"
	"wayfare/internal/modules/plancache"
	"wayfare/internal/modules/trip"
	"wayfare/internal/plangen"
	"wayfare/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := infra.NewLogger(cfg.Env)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		logger.Fatal("db init", zap.Error(err))
	}

	redisClient := infra.NewRedis(cfg.Redis.Addr)

	cacheStore := plancache.NewRedisStore(redisClient, cfg.Cache.TTL, cfg.Cache.Capacity, logger)

	genClient := plangen.NewClient(plangen.Options{
		BaseURL:        cfg.Generation.BaseURL,
		RequestTimeout: cfg.Generation.RequestTimeout,
		StreamTimeout:  cfg.Generation.StreamTimeout,
		CacheHitDelay:  cfg.Generation.CacheHitDelay,
		Cache:          cacheStore,
		Logger:         logger,
	})

	var geocoder service.Geocoder
	if cfg.Maps.APIKey != "" {
		geo, err := maps.NewGeocodeService(cfg.Maps.APIKey)
		if err != nil {
			logger.Fatal("maps init", zap.Error(err))
		}
		geocoder = geo
	} else {
		logger.Warn("MAPS_API_KEY not set; itinerary enrichment disabled")
	}

	planner := service.NewTripPlanner(genClient, cacheStore, geocoder, logger)

	tripStore := trip.NewStore(dbPool)
	tripSvc := trip.NewService(tripStore)

	handler := httptransport.NewServer(httptransport.ServerDeps{
		Planner:   planner,
		Trips:     tripSvc,
		JWTSecret: cfg.Auth.JWTSecret,
		Logger:    logger,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler.Routes()}

	go func() {
		<-ctx.Done()
		server.Shutdown(context.Background())
	}()

	logger.Info("listening", zap.String("addr", cfg.HTTP.Addr))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server", zap.Error(err))
	}
}
