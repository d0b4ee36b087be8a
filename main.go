// main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariebrainware/patient-registry/config"
	"github.com/ariebrainware/patient-registry/endpoint"
	"github.com/ariebrainware/patient-registry/metrics"
	"github.com/ariebrainware/patient-registry/store"
	"github.com/ariebrainware/patient-registry/util"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load the configuration
	cfg := config.LoadConfig()

	logger := util.NewLogger(util.LoggerOptions{
		Level:   cfg.LogLevel,
		Console: cfg.AppEnv == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.Options{
		Driver:   cfg.StoreDriver,
		URL:      cfg.StoreURL(),
		Database: cfg.DBName,
	})
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open store")
	}

	pingCtx, cancelPing := context.WithTimeout(ctx, 5*time.Second)
	if err := st.Ping(pingCtx); err != nil {
		// Not fatal: the driver keeps trying and each request reports its own failure.
		logger.Warn().Err(err).Msg("store not reachable yet")
	} else {
		logger.Info().Str("driver", st.Driver()).Str("database", cfg.DBName).Msg("connected to store")
	}
	cancelPing()

	rdb, err := config.ConnectRedis(cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("rate limiting disabled")
	}

	access := util.NewAccessLogger(logger, nil)
	if cfg.AccessLog {
		access = util.NewAccessLogger(logger, st.Collection(util.AccessLogCollection))
	}

	// Set Gin mode from config
	gin.SetMode(cfg.GinMode)

	router, err := endpoint.SetupRouter(endpoint.RouterDeps{
		Config:  cfg,
		Store:   st,
		Logger:  logger,
		Access:  access,
		Metrics: metrics.New(),
		Redis:   rdb,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build router")
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.AppPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Str("app", cfg.AppName).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if err := st.Close(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("store close failed")
	}
	logger.Info().Msg("server stopped")
}
