package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nadzzz/krishivoice/internal/health"
	"github.com/nadzzz/krishivoice/internal/langid"
	"github.com/nadzzz/krishivoice/internal/recognition/whisper"
	"github.com/nadzzz/krishivoice/internal/transport"
	grpctransport "github.com/nadzzz/krishivoice/internal/transport/grpc"
	httptransport "github.com/nadzzz/krishivoice/internal/transport/http"
	mqtttransport "github.com/nadzzz/krishivoice/internal/transport/mqtt"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the assistant daemon",
		Long: `Run the assistant daemon with every enabled transport (HTTP/WebSocket, gRPC,
MQTT) and the health server (/healthz, /readyz, /metrics). The daemon stops
on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), opts)
		},
	}
}

func serve(parent context.Context, opts *rootOptions) error {
	cfg, err := opts.load(os.Stdout)
	if err != nil {
		return err
	}
	slog.Info("krishivoice starting", "version", version)

	// Create root context with signal handling for graceful shutdown.
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	asst := newAssistant(cfg)
	defer asst.Close()

	classifier := langid.NewClassifier(nil)

	// Initialize enabled transports.
	var transports []transport.Transport

	if cfg.Transports.GRPC.Enabled {
		transports = append(transports, grpctransport.New(cfg.Transports.GRPC, classifier))
	}
	if cfg.Transports.HTTP.Enabled {
		live, demo := newWeather(cfg.Weather)
		deps := httptransport.Deps{
			Classifier:  classifier,
			Weather:     live,
			Demo:        demo,
			Recognition: recognitionOptions(cfg.Recognition),
		}
		if cfg.Recognition.Whisper.Endpoint != "" {
			deps.Whisper = whisper.New(cfg.Recognition.Whisper)
		}
		transports = append(transports, httptransport.New(cfg.Transports.HTTP, deps))
	}
	if cfg.Transports.MQTT.Enabled {
		transports = append(transports, mqtttransport.New(cfg.Transports.MQTT))
	}

	if len(transports) == 0 {
		return errors.New("no transports enabled, enable at least one in config")
	}

	// Start health check server.
	healthServer := health.New(cfg.Server.HealthPort, version)
	go func() {
		if err := healthServer.ListenAndServe(ctx); err != nil {
			slog.Error("health server failed", "error", err)
		}
	}()

	// Start all transports.
	var wg sync.WaitGroup
	for _, t := range transports {
		wg.Add(1)
		go func(t transport.Transport) {
			defer wg.Done()
			slog.Info("starting transport", "name", t.Name())
			if err := t.Listen(ctx, asst.Handle); err != nil {
				slog.Error("transport failed", "name", t.Name(), "error", err)
			}
		}(t)
	}

	// Mark as ready once all transports are started.
	healthServer.SetReady(true)
	slog.Info("krishivoice ready",
		"transports", len(transports),
		"backend", asst.Backend(),
		"health_port", cfg.Server.HealthPort)

	// Block until shutdown signal.
	<-ctx.Done()
	healthServer.SetReady(false)
	slog.Info("shutdown signal received, draining...")

	// Close all transports gracefully.
	for _, t := range transports {
		if err := t.Close(); err != nil {
			slog.Error("transport close error", "name", t.Name(), "error", err)
		}
	}

	wg.Wait()
	slog.Info("krishivoice stopped")
	return nil
}
