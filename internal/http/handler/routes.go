package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"casefiles/internal/http/middleware"
	"casefiles/internal/service"
)

// RegisterRoutes attaches the probes and the authenticated /api routes to app.
// /metrics and /swagger are mounted by the caller.
func RegisterRoutes(app *fiber.App, db *sql.DB, docSvc service.DocumentService, backupSvc service.BackupService, tokens middleware.TokenValidator) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	api := app.Group("/api", middleware.Authenticate(tokens))

	files := api.Group("/files")
	files.Get("/", ListDocuments(docSvc))
	files.Post("/", UploadDocument(docSvc))
	files.Get("/:id", GetDocument(docSvc))
	files.Get("/:id/download", DownloadDocument(docSvc))
	files.Delete("/:id", DeleteDocument(docSvc))

	backups := api.Group("/backup")
	backups.Post("/", StartBackup(backupSvc))
	backups.Get("/", ListBackups(backupSvc))
	// registered before /:id so the literal segment wins
	backups.Get("/statistics", BackupStatistics(backupSvc))
	backups.Get("/:id", GetBackup(backupSvc))
	backups.Post("/:id/restore", RestoreBackup(backupSvc))
}
