// Schoolbook - Offline-first School Records Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/schoolbook

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

	"github.com/tomtom215/schoolbook/internal/api"
	"github.com/tomtom215/schoolbook/internal/config"
	"github.com/tomtom215/schoolbook/internal/events"
	"github.com/tomtom215/schoolbook/internal/logging"
	"github.com/tomtom215/schoolbook/internal/repository"
	"github.com/tomtom215/schoolbook/internal/store"
	"github.com/tomtom215/schoolbook/internal/supervisor"
	"github.com/tomtom215/schoolbook/internal/supervisor/services"
	syncpkg "github.com/tomtom215/schoolbook/internal/sync"
	ws "github.com/tomtom215/schoolbook/internal/websocket"
)

// changeFeedBuffer is the watermill output buffer between the change bus
// and the websocket hub.
const changeFeedBuffer = 64

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Schoolbook stopped with an error")
	}
}

//nolint:gocyclo // sequential wiring of every component
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logging.Init(cfg.Logging.LoggerSettings())

	logging.Info().
		Str("version", api.Version).
		Str("store_path", cfg.Store.Path).
		Bool("store_in_memory", cfg.Store.InMemory).
		Str("addr", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)).
		Msg("Starting Schoolbook")

	bs, err := store.OpenBadger(cfg.Store.StoreSettings())
	if err != nil {
		return fmt.Errorf("open record store: %w", err)
	}
	defer func() {
		if err := bs.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing record store")
		}
	}()

	// A nil cipher stores remote credentials as given.
	var cipher repository.CredentialCipher
	if cfg.Security.CredentialSecret != "" {
		enc, err := config.NewCredentialEncryptor(cfg.Security.CredentialSecret)
		if err != nil {
			return fmt.Errorf("credential encryption: %w", err)
		}
		cipher = enc
	} else {
		logging.Warn().Msg("CREDENTIAL_SECRET not set, remote credentials are stored unencrypted")
	}

	bus := events.NewBus()
	repos := repository.New(bs, bus, cipher)

	if !repos.Config.Exists() {
		seed := cfg.InitialSystemConfig()
		if err := repos.Config.Put(seed); err != nil {
			return fmt.Errorf("seed system config: %w", err)
		}
		logging.Info().
			Str("school", seed.SchoolName).
			Bool("offline", seed.Offline()).
			Msg("Seeded system config from process configuration")
	}

	transport := syncpkg.NewCircuitBreakerClient(syncpkg.NewClient(&cfg.Sync), &cfg.Sync)
	engine := syncpkg.NewEngine(repos, transport, cfg.Sync.FailureLogInterval)

	hub := ws.NewHub()
	feed := events.NewChangeFeed(hub.DataChanged, changeFeedBuffer)
	defer func() {
		if err := feed.Close(); err != nil {
			logging.Warn().Err(err).Msg("Error closing change feed")
		}
	}()
	defer feed.Attach(bus)()
	engine.SetOnSyncCompleted(hub.BroadcastSyncCompleted)

	handler := api.NewHandler(repos, engine, hub, cfg)
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           api.NewRouter(handler, cfg).SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		// sync and export answer after the remote round trip
		WriteTimeout: cfg.Server.Timeout + cfg.Sync.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	tree := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	})
	n := tree.Install(supervisor.Services{
		StoreGC:    store.NewGCService(bs, cfg.Store.GCInterval),
		Hub:        hub,
		ChangeFeed: feed,
		Pusher:     engine.Pusher(),
		HTTP:       services.NewHTTPServerService(server, 10*time.Second),
	})
	logging.Info().Int("services", n).Msg("Supervisor tree assembled")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	errCh := tree.ServeBackground(ctx)

	var serveErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown requested, waiting for services to stop")
		serveErr = <-errCh
	case serveErr = <-errCh:
	}
	if errors.Is(serveErr, context.Canceled) {
		serveErr = nil
	}
	if serveErr != nil {
		logging.Error().Err(serveErr).Msg("Supervisor tree error")
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}

	// the pusher drained its queue on stop; later pushes run on their own
	// goroutines and still hold the store
	engine.Flush()
	logging.Info().Msg("Schoolbook stopped")
	return serveErr
}
