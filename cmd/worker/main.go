package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"casefiles/internal/backup"
	"casefiles/internal/config"
	"casefiles/internal/database"
	"casefiles/internal/database/migration"
	"casefiles/internal/logging"
	"casefiles/internal/metrics"
	tracing "casefiles/internal/otel"
	"casefiles/internal/repository/postgres"
	"casefiles/internal/storage"
)

// The worker executes backup jobs enqueued by the API when BACKUP_RUNNER=redis.
func main() {
	cfg := config.Load()
	logger := logging.New(cfg.Log, cfg.Location())
	log := logging.Component(logger, "worker")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, "casefiles-worker", logging.Component(logger, "tracing"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracing")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	db, err := database.NewPostgres(cfg.Database, logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, logger, cfg.Database.Host); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	documents, archives, err := storage.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize object storage")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("failed to connect to redis")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	backupMetrics, err := metrics.NewBackupMetrics(reg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register backup metrics")
	}

	archiver := backup.NewArchiver(documents, archives, cfg.Backup.StagingDir, cfg.Backup.Dir, logging.Component(logger, "archiver"))
	exec := backup.NewExecutor(postgres.NewBackupPostgres(db), postgres.NewDocumentPostgres(db), archiver, backupMetrics, logging.Component(logger, "backup"))
	worker := backup.NewQueueWorker(rdb, cfg.Redis.QueueKey, exec, cfg.Backup.Concurrency, cfg.Backup.JobTimeout(), log)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	go func() {
		if err := app.Listen(":" + cfg.WorkerPort); err != nil {
			log.Error().Err(err).Msg("metrics listener stopped")
		}
	}()
	defer app.ShutdownWithTimeout(5 * time.Second)

	log.Info().
		Str("event", "worker_started").
		Str("queue", cfg.Redis.QueueKey).
		Int("concurrency", cfg.Backup.Concurrency).
		Msg("")
	if err := worker.Run(ctx); err != nil {
		log.Error().Err(err).Msg("worker stopped with error")
	}
	log.Info().Str("event", "worker_stopped").Msg("")
}
