package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"

	v1 "socialpulse/report-portal-backend/api/v1"
	"socialpulse/report-portal-backend/internal/config"
	"socialpulse/report-portal-backend/internal/logging"
	"socialpulse/report-portal-backend/internal/reports/scheduler"
)

type launchConfig struct {
	ConfigPath string `env:"CONFIG_PATH" envDefault:"config.json"`
	RunOnStart bool   `env:"SCHEDULER_RUN_ON_START" envDefault:"false"`
}

func main() {
	var launch launchConfig
	if err := env.Parse(&launch); err != nil {
		panic(err)
	}

	cfg, err := config.LoadConfig(launch.ConfigPath)
	if err != nil {
		panic(err)
	}

	logger := logging.MustNew(cfg.Logging.Level, cfg.Logging.Format)
	defer logger.Sync()

	if len(cfg.Scheduler.Jobs) == 0 {
		logger.Warn("No recurring report jobs configured")
	}
	if cfg.Scheduler.ServiceToken == "" {
		logger.Warn("No scheduler service token configured, upstream calls are unauthenticated")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reportsAPI, err := v1.SetupReportsAPI(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to set up reports service", zap.Error(err))
	}
	defer reportsAPI.Close()

	executor := scheduler.NewExecutor(reportsAPI.Service, cfg.Scheduler.ServiceToken, cfg.Scheduler.Timeout, logger)
	manager := scheduler.NewManager(executor, logger)

	for _, job := range cfg.Scheduler.Jobs {
		if err := manager.AddJob(job); err != nil {
			logger.Fatal("Failed to register job", zap.String("job", job.Name), zap.Error(err))
		}
	}

	if launch.RunOnStart {
		for _, job := range cfg.Scheduler.Jobs {
			if err := manager.RunNow(ctx, job.Name); err != nil {
				logger.Error("Initial run failed", zap.String("job", job.Name), zap.Error(err))
			}
		}
	}

	if err := manager.Start(); err != nil {
		logger.Fatal("Failed to start scheduler", zap.Error(err))
	}

	for _, job := range manager.Jobs() {
		logger.Info("Scheduled job",
			zap.String("job", job.Name),
			zap.String("cron", job.Cron),
			zap.Time("next_run", job.NextRun))
	}

	<-ctx.Done()
	logger.Info("Report scheduler shutting down")
	manager.Stop()
}
