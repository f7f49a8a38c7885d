package handler

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"casefiles/internal/http/middleware"
	"casefiles/internal/model"
)

var validate = validator.New()

// StartBackupRequest is the body of POST /api/backup. Every field is optional.
type StartBackupRequest struct {
	Type            string `json:"type" validate:"omitempty,oneof=full incremental differential"`
	StorageLocation string `json:"storage_location" validate:"omitempty,oneof=local object"`
	Description     string `json:"description" validate:"max=500"`
}

// uploadForm holds the non-file fields of a document upload.
type uploadForm struct {
	CaseID       string `validate:"required,max=64"`
	DocumentType string `validate:"omitempty,oneof=ruling evidence witness_statement affidavit pleading exhibit"`
}

// decodeJSON parses an optional JSON body into v and validates it.
func decodeJSON(c *fiber.Ctx, v any) error {
	if body := c.Body(); len(body) > 0 {
		if err := json.Unmarshal(body, v); err != nil {
			return fmt.Errorf("invalid JSON: %w", err)
		}
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	return nil
}

// requireIdentity returns the caller stored by middleware.Authenticate. When it is
// missing, ok is false and a 401 has already been written.
func requireIdentity(c *fiber.Ctx) (id model.Identity, ok bool, err error) {
	id, ok = middleware.IdentityFrom(c)
	if !ok {
		return id, false, writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
	}
	return id, true, nil
}
