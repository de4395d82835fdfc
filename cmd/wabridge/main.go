package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wabridge/pkg/api"
	"wabridge/pkg/banner"
	"wabridge/pkg/config"
	"wabridge/pkg/events"
	"wabridge/pkg/groupcache"
	"wabridge/pkg/history"
	"wabridge/pkg/logger"
	"wabridge/pkg/session"
	"wabridge/pkg/transport"
	"wabridge/pkg/webhook"
)

// build metadata - set via ldflags during build/release
var (
	version = "dev"
	commit  = "none"
)

func main() {
	_ = godotenv.Load(".env")
	addrVal, credsVal, cfgVal, setFlags := config.ParseCommandFlags()

	cfgPath := config.ResolveConfigPath(cfgVal, setFlags["config"])
	cfg, envUsed, err := config.LoadEffective(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Explicit flags win over config/env.
	addr := cfg.Addr()
	if setFlags["addr"] {
		addr = addrVal
	}
	credsPath := cfg.Storage.CredsPath
	if setFlags["creds"] || credsPath == "" {
		credsPath = credsVal
	}

	logger.InitWithLevel(cfg.Logging.Level)

	srcs := []string{}
	if len(setFlags) > 0 {
		srcs = append(srcs, "flags")
	}
	if envUsed {
		srcs = append(srcs, "env")
	}
	if _, err := config.Load(cfgPath); err == nil {
		srcs = append(srcs, "config")
	}
	verStr := version
	if commit != "none" {
		verStr = verStr + " (" + commit + ")"
	}
	banner.Print(addr, credsPath, strings.Join(srcs, ", "), verStr)

	credDB, err := transport.OpenCredentialDB(credsPath)
	if err != nil {
		log.Fatalf("failed to open pebble at %s: %v", credsPath, err)
	}

	hist := history.New(cfg.HistoryCapacity())
	registry := events.NewRegistry()
	groups := groupcache.New(cfg.GroupTTL())
	notifier := webhook.New(cfg.Webhook.URL, cfg.Webhook.RPS, cfg.Webhook.Burst)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sm := session.New(session.Options{
		Factory:        transport.NewDefault,
		Creds:          credDB,
		History:        hist,
		Registry:       registry,
		Groups:         groups,
		Webhook:        notifier,
		ReconnectDelay: cfg.ReconnectDelay(),
	})
	if err := sm.Start(ctx); err != nil {
		log.Fatalf("failed to start session: %v", err)
	}

	if _, err := groupcache.StartSweeper(ctx, groups, cfg.Groups.SweepCron); err != nil {
		log.Fatalf("invalid group sweep schedule: %v", err)
	}

	router := api.NewServer(sm, hist, registry).Routes()
	router.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: addr, Handler: router}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		s := <-sig
		logger.Info("shutting down", "signal", s.String())
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
		_ = credDB.Close()
	}()

	logger.Info("listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
