package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/parttrack/parttrack-backend/api/routes"
	"github.com/parttrack/parttrack-backend/internal/access"
	"github.com/parttrack/parttrack-backend/internal/auditlog"
	"github.com/parttrack/parttrack-backend/internal/cron"
	"github.com/parttrack/parttrack-backend/internal/export"
	"github.com/parttrack/parttrack-backend/internal/ledger"
	"github.com/parttrack/parttrack-backend/internal/notify"
	"github.com/parttrack/parttrack-backend/internal/seed"
	"github.com/parttrack/parttrack-backend/internal/settings"
	"github.com/parttrack/parttrack-backend/internal/stats"
	"github.com/parttrack/parttrack-backend/internal/users"
	"github.com/parttrack/parttrack-backend/pkg/config"
	"github.com/parttrack/parttrack-backend/pkg/db"
	"github.com/parttrack/parttrack-backend/pkg/logger"
	"github.com/parttrack/parttrack-backend/pkg/metrics"
	"github.com/parttrack/parttrack-backend/pkg/migrate"
	"github.com/parttrack/parttrack-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	if cfg.App.IsDev() && cfg.Flags.SeedDev {
		if err := seed.Run(context.Background(), dbClient.DB(), logg); err != nil {
			logg.Error(context.Background(), "failed to seed dev data", err)
			os.Exit(1)
		}
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	cronMetrics := metrics.NewCronJobMetrics(registry)
	mutationMetrics := metrics.NewMutationMetrics(registry)

	auditRepo := auditlog.NewRepository(dbClient.DB())
	auditSvc, err := auditlog.NewService(auditRepo, cfg.Inventory.LogRetention)
	if err != nil {
		logg.Error(context.Background(), "failed to create audit log service", err)
		os.Exit(1)
	}

	settingsSvc, err := settings.NewService(settings.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create settings service", err)
		os.Exit(1)
	}

	ledgerSvc, err := ledger.NewService(
		dbClient,
		auditSvc,
		ledger.NewRedisChangePublisher(redisClient, logg),
		mutationMetrics,
		logg,
		cfg.Inventory.LowStockThreshold,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	statsSvc, err := stats.NewService(auditSvc, settingsSvc, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create stats service", err)
		os.Exit(1)
	}

	usersSvc, err := users.NewService(users.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	accessSvc, err := access.NewService(cfg.AccessGate, cfg.JWT, usersSvc, redisClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create access service", err)
		os.Exit(1)
	}

	notifySvc, err := notify.NewService(ledgerSvc, settingsSvc, cfg.Notify, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create notify service", err)
		os.Exit(1)
	}

	exportSvc, err := export.NewService(ledgerSvc, auditSvc)
	if err != nil {
		logg.Error(context.Background(), "failed to create export service", err)
		os.Exit(1)
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startSweeper(rootCtx, cfg, logg, cronMetrics, redisClient, notifySvc, auditRepo)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:   cfg,
			Logger:   logg,
			DB:       dbClient,
			Redis:    redisClient,
			Registry: registry,
			Access:   accessSvc,
			Ledger:   ledgerSvc,
			AuditLog: auditSvc,
			Stats:    statsSvc,
			Users:    usersSvc,
			Settings: settingsSvc,
			Notify:   notifySvc,
			Export:   exportSvc,
		}),
	}

	go func() {
		<-rootCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "shutdown did not complete cleanly", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

// startSweeper wires the periodic jobs: the low-stock Telegram sweep and the
// audit log retention trim. The sweeper shares the API process; the redis
// lock keeps extra replicas idle.
func startSweeper(
	ctx context.Context,
	cfg *config.Config,
	logg *logger.Logger,
	cronMetrics *metrics.CronJobMetrics,
	redisClient *redis.Client,
	notifySvc notify.Service,
	auditRepo *auditlog.Repository,
) {
	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey("daily_sweep"), 0)
	if err != nil {
		logg.Error(ctx, "failed to create sweep lock", err)
		os.Exit(1)
	}

	lowStockJob, err := cron.NewLowStockJob(notifySvc)
	if err != nil {
		logg.Error(ctx, "failed to create low stock job", err)
		os.Exit(1)
	}
	retentionJob, err := cron.NewRetentionJob(auditRepo, cfg.Inventory.LogRetention)
	if err != nil {
		logg.Error(ctx, "failed to create retention job", err)
		os.Exit(1)
	}

	sweeper, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Lock:     lock,
		Metrics:  cronMetrics,
		Interval: cfg.Cron.SweepInterval,
		Jobs:     []cron.Job{lowStockJob, retentionJob},
	})
	if err != nil {
		logg.Error(ctx, "failed to create sweeper", err)
		os.Exit(1)
	}

	go func() {
		if err := sweeper.Run(ctx); err != nil && ctx.Err() == nil {
			logg.Error(ctx, "sweeper stopped unexpectedly", err)
		}
	}()
}
