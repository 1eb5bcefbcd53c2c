package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openefficiency/aegisv11-sub000/internal/intake"
	"github.com/openefficiency/aegisv11-sub000/internal/ratelimit"
	"github.com/openefficiency/aegisv11-sub000/internal/server"
	"github.com/openefficiency/aegisv11-sub000/internal/vapi"

	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, err := loadConfig(cCtx)
	if err != nil {
		return err
	}

	logger := newLogger(config)

	caseStore, closeStore, err := openCaseStore(ctx, config, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	limits, closeLimits, err := openLimiterStore(ctx, config, logger)
	if err != nil {
		return err
	}
	defer closeLimits()

	pipeline := intake.New(logger, newNormalizer(config), caseStore, newLimiters(config, limits))

	var calls server.CallFetcher
	if config.VapiAPIKey != "" {
		calls = vapi.NewClient(config.VapiBaseURL, config.VapiAPIKey)
	}

	var recordings server.RecordingArchiver
	if config.RecordingsBucket != "" {
		archive, err := newRecordingArchive(ctx, config)
		if err != nil {
			return err
		}
		logger.WithField("bucket", archive.Bucket()).Info("archiving call recordings")
		recordings = archive
	}

	tracking := ratelimit.New(limits, "track", config.TrackRateLimit, config.RateLimitWindow)

	srv := server.New(config, logger, pipeline, calls, recordings, tracking)

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}
