// Marketmap - Market Area Analysis and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketmap

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

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"

	"github.com/tomtom215/marketmap/internal/api"
	"github.com/tomtom215/marketmap/internal/config"
	"github.com/tomtom215/marketmap/internal/engine"
	"github.com/tomtom215/marketmap/internal/interaction"
	"github.com/tomtom215/marketmap/internal/kv"
	"github.com/tomtom215/marketmap/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("storage", cfg.Storage.Path).
		Msg("Starting marketmap label engine")

	backend, err := kv.OpenBadger(cfg.Storage.Path)
	if err != nil {
		logging.Fatal().Err(err).Str("path", cfg.Storage.Path).Msg("Failed to open label store")
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logging.Error().Err(err).Msg("Failed to close label store")
		}
	}()

	mode := interaction.ModeClickSelect
	if cfg.Label.DirectDrag {
		mode = interaction.ModeDirectDrag
	}

	// The bridge is the engine's surface dependency and the engine is the
	// bridge's pointer sink, so the bridge is built first and the sink is
	// attached after the engine exists.
	bridge := api.NewSurfaceBridge(nil, cfg.Server.CORSOrigins)
	eng := engine.New(backend, bridge, engine.Options{
		AllowPartialScope: cfg.Storage.AllowPartialScope,
		AutoSaveInterval:  cfg.Label.AutoSaveInterval,
		Mode:              mode,
	})
	bridge.SetSink(eng)

	handler := api.NewHandler(eng)
	router := api.NewRouter(cfg.Server, handler, bridge)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// The correct sutureslog API is (&Handler{Logger: logger}).MustHook();
	// MustHook has a pointer receiver.
	hook := (&sutureslog.Handler{Logger: logging.NewSlogLogger()}).MustHook()
	root := suture.New("marketmap", suture.Spec{
		EventHook:        hook,
		FailureThreshold: 5,
		FailureDecay:     30.0,
		FailureBackoff:   15 * time.Second,
		Timeout:          cfg.Server.ShutdownTimeout,
	})
	root.Add(&httpServerService{server: server, shutdownTimeout: cfg.Server.ShutdownTimeout})
	root.Add(eng.AutoSaver())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
		cancel()
	}()

	errCh := root.ServeBackground(ctx)
	logging.Info().Str("addr", server.Addr).Msg("Label engine ready")

	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor exited with error")
	}

	logging.Info().Msg("Label engine stopped gracefully")
}

// httpServerService adapts http.Server's blocking ListenAndServe to
// suture's context-aware Serve contract.
type httpServerService struct {
	server          *http.Server
	shutdownTimeout time.Duration
}

func (s *httpServerService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		// The original context is canceled, so shutdown gets its own.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		<-errCh
		return ctx.Err()
	}
}

func (s *httpServerService) String() string {
	return "http-server"
}
