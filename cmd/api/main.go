package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"casefiles/docs"
	"casefiles/internal/auth"
	"casefiles/internal/backup"
	"casefiles/internal/config"
	"casefiles/internal/database"
	"casefiles/internal/database/migration"
	handlers "casefiles/internal/http/handler"
	"casefiles/internal/http/middleware"
	"casefiles/internal/logging"
	"casefiles/internal/metrics"
	"casefiles/internal/model"
	tracing "casefiles/internal/otel"
	"casefiles/internal/repository/postgres"
	"casefiles/internal/service"
	"casefiles/internal/storage"
)

const shutdownTimeout = 15 * time.Second

// @title						Case Files API
// @version					1.0
// @BasePath					/
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	cfg := config.Load()
	loc := cfg.Location()
	logger := logging.New(cfg.Log, loc)
	log := logging.Component(logger, "api")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, "casefiles-api", logging.Component(logger, "tracing"))
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

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	backupMetrics, err := metrics.NewBackupMetrics(reg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register backup metrics")
	}
	httpMetrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register http metrics")
	}

	docRepo := postgres.NewDocumentPostgres(db)
	backupRepo := postgres.NewBackupPostgres(db)
	auditRepo := postgres.NewAuditPostgres(db)

	var (
		dispatcher service.JobDispatcher
		runner     *backup.LocalRunner
	)
	switch cfg.Backup.Runner {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("failed to connect to redis")
		}
		dispatcher = backup.NewQueueDispatcher(rdb, cfg.Redis.QueueKey)
	case "local", "":
		archiver := backup.NewArchiver(documents, archives, cfg.Backup.StagingDir, cfg.Backup.Dir, logging.Component(logger, "archiver"))
		exec := backup.NewExecutor(backupRepo, docRepo, archiver, backupMetrics, logging.Component(logger, "backup"))
		runner = backup.NewLocalRunner(exec, cfg.Backup.Concurrency, cfg.Backup.JobTimeout(), logging.Component(logger, "runner"))
		dispatcher = runner
	default:
		log.Fatal().Str("runner", cfg.Backup.Runner).Msg("unknown backup runner")
	}

	docSvc := service.NewDocumentService(documents, docRepo, auditRepo, logging.Component(logger, "documents"))
	backupSvc := service.NewBackupService(backupRepo, auditRepo, dispatcher, service.BackupServiceConfig{
		Location:     loc,
		ObjectTarget: archives != nil,
	}, logging.Component(logger, "coordinator"))

	var sched *backup.Scheduler
	if cfg.Backup.Schedule != "" {
		sched, err = backup.NewScheduler(backupSvc, cfg.Backup.Schedule, model.BackupKind(cfg.Backup.ScheduleKind), logging.Component(logger, "scheduler"))
		if err != nil {
			log.Fatal().Err(err).Msg("failed to configure backup schedule")
		}
		sched.Start()
	}

	tokens, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure authentication")
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		DisableStartupMessage: true,
	})

	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(logging.Component(logger, "http")))
	app.Use(httpMetrics.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	handlers.RegisterRoutes(app, db, docSvc, backupSvc, tokens)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port
	go func() {
		log.Info().Str("event", "server_started").Str("addr", addr).Str("backup_runner", cfg.Backup.Runner).Msg("")
		if err := app.Listen(addr); err != nil {
			log.Error().Err(err).Msg("failed to start server")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Str("event", "server_stopping").Msg("")

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	if sched != nil {
		// no new submissions may reach the runner once Wait starts
		sched.Stop()
	}
	if runner != nil {
		// in-flight jobs finalize on their own detached context
		runner.Wait()
	}
	log.Info().Str("event", "server_stopped").Msg("")
}
