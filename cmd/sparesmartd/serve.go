package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"sparesmart-backend/internal/api"
	"sparesmart-backend/internal/auth"
	"sparesmart-backend/internal/db"
	"sparesmart-backend/internal/events"
	"sparesmart-backend/internal/notification"
	"sparesmart-backend/internal/store"
	"sparesmart-backend/internal/sweeper"
	"sparesmart-backend/internal/telemetry"
)

const (
	shutdownTimeout = 5 * time.Second

	eventQueueSize      = 256
	eventPublishTimeout = 2 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API, the notification workers and the due-date sweeper",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	log.Info().Str("driver", cfg.Database.Driver).Msg("database initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)

	var webpushOptions *webpush.Options
	if cfg.Push.Configured() {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
	}

	pool := notification.NewWorkerPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize, appStore, webpushOptions)
	pool.Start(ctx)

	publisher := connectPublisher()
	defer publisher.Close()

	recorder := connectRecorder()
	defer recorder.Close()

	sweeperSvc := sweeper.NewService(cfg.Sweeper, appStore, pool, publisher, recorder)
	go sweeperSvc.Run(ctx)

	handler := api.NewHandler(api.Deps{
		Store:      appStore,
		WebPush:    webpushOptions,
		Dispatcher: sweeperSvc,
		Events:     publisher,
		Telemetry:  recorder,
		Auth:       auth.NewService(cfg.Auth),
		Display:    cfg.Display,
	})
	if !cfg.Auth.Enabled() {
		log.Warn().Msg("auth.username is empty, the API is open to every client")
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: api.NewRouter(handler, cfg),
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("shutdown signal received, stopping services")
	case err := <-serverErr:
		return fmt.Errorf("HTTP server: %w", err)
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown: %w", err)
	}

	log.Info().Msg("server gracefully stopped")
	return nil
}

// connectPublisher returns the queued MQTT publisher, or a no-op one when MQTT
// is disabled or the broker cannot be reached.
func connectPublisher() events.Publisher {
	if !cfg.MQTT.Enabled {
		return events.Nop{}
	}
	pub, err := events.Connect(cfg.MQTT)
	if err != nil {
		log.Error().Err(err).Str("host", cfg.MQTT.Host).Msg("MQTT unavailable, change events will not be published")
		return events.Nop{}
	}
	log.Info().Str("host", cfg.MQTT.Host).Msg("connected to MQTT broker")
	return events.NewAsync(pub, eventQueueSize, eventPublishTimeout)
}

func connectRecorder() telemetry.Recorder {
	rec, err := telemetry.Connect(cfg.InfluxDB)
	switch {
	case errors.Is(err, telemetry.ErrDisabled):
		return telemetry.Nop{}
	case err != nil:
		log.Error().Err(err).Str("url", cfg.InfluxDB.URL).Msg("InfluxDB unavailable, stock telemetry is off")
		return telemetry.Nop{}
	}
	log.Info().Str("url", cfg.InfluxDB.URL).Str("bucket", cfg.InfluxDB.Bucket).Msg("connected to InfluxDB")
	return rec
}
