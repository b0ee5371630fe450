package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := loadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	cfg, err := LoadConfig(os.Args[1:], os.LookupEnv)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	initLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

// run serves until ctx is cancelled or the listener fails
func run(ctx context.Context, cfg Config) error {
	var db *DB
	if cfg.DBPath != "" {
		var err error
		if db, err = OpenDB(cfg.DBPath); err != nil {
			return fmt.Errorf("event log: %w", err)
		}
		defer db.Close()
	}
	analytics := NewAnalytics(db)
	defer analytics.Stop()

	game := NewGame(cfg.Rules)
	hub := NewHub(cfg.MaxConnsPerIP, cfg.MaxConns)

	loopCtx, cancelLoops := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	for _, loop := range []func(context.Context){
		NewSpawner(game, cfg.SpawnInterval, cfg.Seed).Run,
		NewPhysics(game, cfg.PhysicsInterval, analytics).Run,
		NewBroadcaster(game, hub, cfg.BroadcastInterval).Run,
	} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			loop(loopCtx)
		}()
	}
	defer func() {
		cancelLoops()
		wg.Wait()
	}()

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: SetupRoutes(cfg, game, hub, analytics, db),
	}
	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"addr":      cfg.Addr,
			"map":       fmt.Sprintf("%dx%d", cfg.Rules.MapWidth, cfg.Rules.MapHeight),
			"max_cells": cfg.Rules.MaxCells,
			"event_log": cfg.DBPath != "",
		}).Info("server starting")
		if cfg.ClientDir != "" {
			log.Infof("Serving client files from %s", cfg.ClientDir)
		}
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen %s: %w", cfg.Addr, err)
	case <-ctx.Done():
	}

	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := server.Shutdown(shutdownCtx)
	hub.CloseAll()
	return err
}
