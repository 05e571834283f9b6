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

	"github.com/ewilliams-labs/beatbuddies/internal/adapters/bolt"
	"github.com/ewilliams-labs/beatbuddies/internal/adapters/rest"
	"github.com/ewilliams-labs/beatbuddies/internal/adapters/spotify"
	"github.com/ewilliams-labs/beatbuddies/internal/adapters/sqlite"
	"github.com/ewilliams-labs/beatbuddies/internal/config"
	"github.com/ewilliams-labs/beatbuddies/internal/core/domain"
	"github.com/ewilliams-labs/beatbuddies/internal/core/services"
	"github.com/ewilliams-labs/beatbuddies/internal/platform/logger"
	"github.com/ewilliams-labs/beatbuddies/internal/worker"
)

func main() {
	// 1. Configuration (files, then environment)
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", "error", err)
	}
	policy, err := domain.ParseDedupePolicy(cfg.Search.Dedupe)
	if err != nil {
		log.Fatal("invalid configuration", "error", err)
	}

	// 2. Initialize "Driven" Adapters
	// -- Library database
	repo, err := sqlite.NewAdapter(cfg.Storage.DBPath)
	if err != nil {
		log.Fatal("failed to initialize database", "path", cfg.Storage.DBPath, "error", err)
	}
	defer repo.Close()

	// -- Search history
	history, err := bolt.NewHistoryStore(cfg.Storage.HistoryPath)
	if err != nil {
		log.Fatal("failed to open search history", "path", cfg.Storage.HistoryPath, "error", err)
	}
	defer history.Close()

	// -- Catalog
	catalog := spotify.NewClient(spotify.Config{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
		APIBase:      cfg.Spotify.APIBase,
		AccountsBase: cfg.Spotify.AccountsBase,
		MaxRetries:   cfg.Spotify.MaxRetries,
		RetryBackoff: cfg.Spotify.RetryBackoff(),
		Timeout:      cfg.Spotify.Timeout(),
		ReuseToken:   cfg.Spotify.ReuseToken,
	}, nil, log)

	// -- Preview analysis workers
	pool := worker.NewPool(repo, cfg.Worker.QueueSize, log.With("component", "worker"))
	pool.Start(cfg.Worker.Workers)
	defer pool.Stop()

	// 3. Initialize Core Logic
	searches, err := services.NewSearches(catalog, history, pool, services.SearchesOptions{
		PageSize:    cfg.Search.PageSize,
		Policy:      policy,
		MaxSessions: cfg.Search.MaxSessions,
	}, log.With("component", "searches"))
	if err != nil {
		log.Fatal("failed to initialize search sessions", "error", err)
	}
	library := services.NewLibrary(repo, catalog, log.With("component", "library"))

	// 4. Initialize "Driving" Adapter
	handler := rest.NewHandler(searches, library, repo, log.With("component", "http"))
	handler.AddReadinessCheck("sqlite", repo.Ping)

	// 5. Start the Server
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
	}
	log.Info("BeatBuddies API is running", "addr", cfg.Addr, "page_size", cfg.Search.PageSize, "reuse_token", cfg.Spotify.ReuseToken)

	serverErr := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErr:
		if err != nil {
			log.Error("server failed", "error", err)
		}
	case <-ctx.Done():
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown error", "error", err)
		}
	}
}
