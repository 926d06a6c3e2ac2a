package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "cv-portfolio/docs" // Swagger docs
	"cv-portfolio/internal/api"
	"cv-portfolio/internal/cache"
	"cv-portfolio/internal/config"
	"cv-portfolio/internal/cv"
	"cv-portfolio/internal/logger"
	"cv-portfolio/internal/storage"
)

// @title CV Portfolio API
// @version 1.0
// @description Structures OCR'd CV text into a fixed record and recommends a portfolio template.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}
	logger.Init(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx := context.Background()
	opts := api.Options{
		CacheTTL:       cfg.CacheTTL,
		MaxUploadBytes: cfg.MaxUploadBytes,
		QueueSize:      cfg.QueueSize,
	}

	if cfg.DatabaseURL != "" {
		logger.Info().Msg("connecting to database")
		db, err := storage.NewDB(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("db open")
		}
		defer db.Close()
		if err := db.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("db schema")
		}
		opts.Store = db
	} else {
		logger.Warn().Msg("DATABASE_URL not set, uploads will not be persisted")
	}

	if cfg.RedisURL != "" {
		rdb, err := cache.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			// the cache is optional; run without it
			logger.Warn().Err(err).Msg("redis unavailable, caching disabled")
		} else {
			defer rdb.Close()
			opts.Cache = rdb
		}
	}

	var ocr cv.OCR
	if cfg.OCRServiceURL != "" {
		ocr = cv.NewRemoteOCR(cfg.OCRServiceURL, 2*time.Minute)
	}
	opts.Parser = cv.NewCVParser(cfg.UploadsDir, ocr)

	apiSrv := api.NewAPI(opts)
	router := api.NewRouter(apiSrv)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("server shutdown")
		}
		if err := apiSrv.Close(ctx); err != nil {
			logger.Error().Err(err).Msg("background jobs did not drain")
		}
		close(idleConnsClosed)
	}()

	logger.Info().Str("port", cfg.Port).Msg("API server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("listen")
	}

	<-idleConnsClosed
}
