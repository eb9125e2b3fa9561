package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/viniciushammett/go-audit-trail/internal/api"
	"github.com/viniciushammett/go-audit-trail/internal/audit"
	"github.com/viniciushammett/go-audit-trail/internal/config"
	"github.com/viniciushammett/go-audit-trail/internal/ingest"
	"github.com/viniciushammett/go-audit-trail/internal/logger"
	"github.com/viniciushammett/go-audit-trail/internal/metrics"
	"github.com/viniciushammett/go-audit-trail/internal/monitor"
	"github.com/viniciushammett/go-audit-trail/internal/notify"
	"github.com/viniciushammett/go-audit-trail/internal/rules"
	"github.com/viniciushammett/go-audit-trail/internal/settings"
)

func main() {
	log := logger.New(env("LOG_LEVEL", "info"))
	cfgPath := env("CONFIG_PATH", "configs/config.yaml")

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	metrics.MustRegister()

	// O diretório-base é resolvido a cada chamada, nunca cacheado.
	trail := audit.New(cfg.DataDir)

	if err := os.MkdirAll(cfg.DataDir(), 0o755); err != nil {
		log.Fatal().Err(err).Msg("create data dir")
	}
	store, err := settings.Open(filepath.Join(cfg.DataDir(), "settings.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("open settings store")
	}
	defer store.Close()

	notifier := notify.New(cfg.Slack.Webhook, cfg.Slack.Enabled)
	processor := ingest.NewProcessor(log, trail, rules.New(cfg.Rules), notifier)
	settingsSvc := settings.NewService(store, trail)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		<-c
		cancel()
	}()

	if cfg.Monitor.Enabled {
		go monitor.New(log, trail, notifier, cfg.Monitor.Interval).Run(ctx)
	}

	srv := api.NewServer(api.Deps{
		Log: log, Trail: trail, Proc: processor, Settings: settingsSvc,
		AuthToken: cfg.AuthToken,
	}, api.Config{Addr: cfg.Server.Addr, CORSOrigins: cfg.Server.CORSOrigins})
	if err := srv.Run(ctx); err != nil {
		log.Error().Err(err).Msg("server stopped")
	}
}

func env(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
