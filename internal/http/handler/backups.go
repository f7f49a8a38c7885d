package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"casefiles/internal/model"
	"casefiles/internal/service"
)

const backupNotFound = "backup not found"

// StartBackupResponse is returned when a backup job is accepted.
type StartBackupResponse struct {
	Message  string             `json:"message"`
	BackupID string             `json:"backup_id"`
	Status   model.BackupStatus `json:"status"`
}

// RestoreBackupResponse is returned when a restore is accepted.
type RestoreBackupResponse struct {
	Message string `json:"message"`
	Warning string `json:"warning"`
}

// StartBackup godoc
//
//	@Summary	Start a backup job
//	@Tags		Backups
//	@Security	BearerAuth
//	@Accept		json
//	@Param		body	body		StartBackupRequest	false	"Backup options"
//	@Success	202		{object}	StartBackupResponse
//	@Failure	400		{object}	errorPayload
//	@Failure	401		{object}	errorPayload
//	@Failure	500		{object}	errorPayload
//	@Router		/api/backup [post]
func StartBackup(svc service.BackupService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller, ok, err := requireIdentity(c)
		if !ok {
			return err
		}

		var req StartBackupRequest
		if err := decodeJSON(c, &req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		}

		job, err := svc.Submit(c.UserContext(), caller, model.BackupRequest{
			Kind:          model.BackupKind(req.Type),
			StorageTarget: req.StorageLocation,
			Description:   req.Description,
		})
		if err != nil {
			return writeServiceError(c, err, backupNotFound)
		}
		return c.Status(fiber.StatusAccepted).JSON(StartBackupResponse{
			Message:  "Backup started",
			BackupID: job.ID,
			Status:   job.Status,
		})
	}
}

// ListBackups godoc
//
//	@Summary	List backup jobs, newest first
//	@Tags		Backups
//	@Security	BearerAuth
//	@Success	200	{array}		service.BackupSummary
//	@Failure	401	{object}	errorPayload
//	@Failure	500	{object}	errorPayload
//	@Router		/api/backup [get]
func ListBackups(svc service.BackupService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := svc.List(c.UserContext())
		if err != nil {
			return writeServiceError(c, err, backupNotFound)
		}
		return c.JSON(list)
	}
}

// GetBackup godoc
//
//	@Summary	Get a backup job
//	@Tags		Backups
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Backup ID"
//	@Success	200	{object}	model.Backup
//	@Failure	400	{object}	errorPayload
//	@Failure	404	{object}	errorPayload
//	@Router		/api/backup/{id} [get]
func GetBackup(svc service.BackupService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		job, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err, backupNotFound)
		}
		return c.JSON(job)
	}
}

// BackupStatistics godoc
//
//	@Summary	Aggregate backup statistics (admin only)
//	@Tags		Backups
//	@Security	BearerAuth
//	@Success	200	{object}	service.BackupStatistics
//	@Failure	401	{object}	errorPayload
//	@Failure	403	{object}	errorPayload
//	@Router		/api/backup/statistics [get]
func BackupStatistics(svc service.BackupService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller, ok, err := requireIdentity(c)
		if !ok {
			return err
		}
		stats, err := svc.Statistics(c.UserContext(), caller)
		if err != nil {
			return writeServiceError(c, err, backupNotFound)
		}
		return c.JSON(stats)
	}
}

// RestoreBackup godoc
//
//	@Summary	Mark a completed backup as restoring (admin only)
//	@Tags		Backups
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Backup ID"
//	@Success	202	{object}	RestoreBackupResponse
//	@Failure	403	{object}	errorPayload
//	@Failure	404	{object}	errorPayload
//	@Failure	409	{object}	errorPayload
//	@Router		/api/backup/{id}/restore [post]
func RestoreBackup(svc service.BackupService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller, ok, err := requireIdentity(c)
		if !ok {
			return err
		}
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if _, err := svc.Restore(c.UserContext(), caller, id); err != nil {
			return writeServiceError(c, err, backupNotFound)
		}
		return c.Status(fiber.StatusAccepted).JSON(RestoreBackupResponse{
			Message: "Restore process started",
			Warning: "This will replace current data!",
		})
	}
}
