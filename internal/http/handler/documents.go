package handler

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"casefiles/internal/model"
	"casefiles/internal/service"
)

const documentNotFound = "document not found"

// ListDocuments godoc
//
//	@Summary	List case documents
//	@Tags		Files
//	@Security	BearerAuth
//	@Param		limit	query		int	false	"Page size"	default(10)
//	@Param		offset	query		int	false	"Offset"	default(0)
//	@Success	200		{object}	service.DocumentListResult
//	@Failure	400		{object}	errorPayload
//	@Router		/api/files [get]
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// UploadDocument godoc
//
//	@Summary	Upload a case document
//	@Tags		Files
//	@Security	BearerAuth
//	@Accept		multipart/form-data
//	@Param		file			formData	file	true	"Document content"
//	@Param		case_id			formData	string	true	"Case ID"
//	@Param		document_type	formData	string	false	"Document type"
//	@Success	201				{object}	model.Document
//	@Failure	400				{object}	errorPayload
//	@Router		/api/files [post]
func UploadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller, ok, err := requireIdentity(c)
		if !ok {
			return err
		}

		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		form := uploadForm{CaseID: c.FormValue("case_id"), DocumentType: c.FormValue("document_type")}
		if err := validate.Struct(form); err != nil {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", fmt.Sprintf("validation error: %v", err))
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		doc, err := svc.Upload(c.UserContext(), caller, service.UploadInput{
			CaseID:           form.CaseID,
			DocumentType:     model.DocumentType(form.DocumentType),
			OriginalFilename: fh.Filename,
			ContentType:      ct,
			Size:             fh.Size,
		}, f)
		if err != nil {
			return writeServiceError(c, err, documentNotFound)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// GetDocument godoc
//
//	@Summary	Get document metadata
//	@Tags		Files
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Document ID"
//	@Success	200	{object}	model.Document
//	@Failure	404	{object}	errorPayload
//	@Router		/api/files/{id} [get]
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err, documentNotFound)
		}
		return c.JSON(doc)
	}
}

// DownloadDocument godoc
//
//	@Summary	Download a document (redirects to a presigned URL when available)
//	@Tags		Files
//	@Security	BearerAuth
//	@Param		id	path	string	true	"Document ID"
//	@Success	200
//	@Success	307
//	@Failure	404	{object}	errorPayload
//	@Router		/api/files/{id}/download [get]
func DownloadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		dl, err := svc.Download(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err, documentNotFound)
		}
		if dl.URL != "" {
			return c.Redirect(dl.URL, fiber.StatusTemporaryRedirect)
		}

		c.Attachment(dl.Document.OriginalFilename)
		if dl.Document.ContentType != "" {
			c.Set(fiber.HeaderContentType, dl.Document.ContentType)
		}
		// fasthttp closes the stream once it has been written
		return c.SendStream(dl.Body)
	}
}

// DeleteDocument godoc
//
//	@Summary	Delete a document
//	@Tags		Files
//	@Security	BearerAuth
//	@Param		id	path	string	true	"Document ID"
//	@Success	204
//	@Failure	404	{object}	errorPayload
//	@Router		/api/files/{id} [delete]
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller, ok, err := requireIdentity(c)
		if !ok {
			return err
		}
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), caller, id); err != nil {
			return writeServiceError(c, err, documentNotFound)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
