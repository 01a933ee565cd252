package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"dubstudio/internal/config"
	"dubstudio/internal/daemon"
	"dubstudio/internal/deps"
	"dubstudio/internal/logging"
	"dubstudio/internal/notifications"
	"dubstudio/internal/pipeline"
	"dubstudio/internal/session"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := session.Open(cfg)
	if err != nil {
		logger.Error("open session store", logging.Error(err))
		return
	}

	for _, status := range deps.CheckBinaries(deps.Required(cfg)) {
		if !status.Available {
			logger.Warn("external dependency unavailable",
				logging.String("dependency", status.Name),
				logging.String("detail", status.Detail),
			)
		}
	}

	notifier := notifications.NewService(cfg)
	orchestrator := pipeline.NewOrchestratorWithNotifier(cfg, store, logger, buildStages(cfg, store, logger), notifier)

	d, err := daemon.New(cfg, store, logger, orchestrator)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		store.Close()
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("dubstudiod shutting down")
}
