package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"casefiles/internal/model"
	"casefiles/internal/repository"
	"casefiles/internal/storage"
)

const downloadURLExpiry = 15 * time.Minute

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items []model.Document `json:"data"`
	Total int              `json:"total"`
}

// UploadInput describes a document being uploaded.
type UploadInput struct {
	CaseID           string
	DocumentType     model.DocumentType
	OriginalFilename string
	ContentType      string
	Size             int64
}

// DocumentDownload is either a presigned URL or an open stream of the content.
// The caller must close Body when it is set.
type DocumentDownload struct {
	Document *model.Document
	URL      string
	Body     io.ReadCloser
}

// DocumentService defines the use cases for handling case documents.
type DocumentService interface {
	// Upload uploads the content to storage, saves metadata to DB, and rolls back storage if DB save fails.
	// - OriginalFilename is used only to extract extension; stored filename will be UUID + original extension.
	Upload(ctx context.Context, caller model.Identity, in UploadInput, r io.Reader) (*model.Document, error)

	// List returns documents using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*DocumentListResult, error)

	// Get returns a single document by its ID.
	Get(ctx context.Context, id string) (*model.Document, error)

	// Download returns a presigned URL when the backend supports it, otherwise a content stream.
	Download(ctx context.Context, id string) (*DocumentDownload, error)

	// Delete removes a document by ID from both storage and repository.
	Delete(ctx context.Context, caller model.Identity, id string) error
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	store storage.Storage
	repo  repository.DocumentRepository
	audit repository.AuditRepository
	log   zerolog.Logger
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(store storage.Storage, repo repository.DocumentRepository, audit repository.AuditRepository, log zerolog.Logger) DocumentService {
	return &documentService{store: store, repo: repo, audit: audit, log: log}
}

func (s *documentService) Upload(ctx context.Context, caller model.Identity, in UploadInput, r io.Reader) (*model.Document, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	if in.CaseID == "" {
		return nil, ErrCaseIDRequired
	}
	if in.DocumentType == "" {
		in.DocumentType = model.DocumentTypeEvidence
	}
	if !in.DocumentType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDocumentType, in.DocumentType)
	}

	// Generate filename using UUID + extension
	ext := filepath.Ext(in.OriginalFilename)
	genName := uuid.New().String() + ext
	key := filepath.ToSlash(filepath.Join("documents", genName))

	objInfo, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        in.Size,
		ContentType: in.ContentType,
		Metadata: map[string]string{
			"original-filename": in.OriginalFilename,
			"case-id":           in.CaseID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	doc := &model.Document{
		ID:               uuid.New().String(),
		CaseID:           in.CaseID,
		Filename:         genName,
		OriginalFilename: in.OriginalFilename,
		StoragePath:      objInfo.Key,
		Size:             objInfo.Size,
		ContentType:      objInfo.ContentType,
		DocumentType:     in.DocumentType,
		UploadedBy:       caller.UserID,
		CreatedAt:        time.Now().UTC(),
	}
	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		// Rollback: delete the object from storage
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	s.record(ctx, caller, model.AuditFileUpload, stored.ID, fmt.Sprintf("Uploaded %s for case %s", in.OriginalFilename, in.CaseID))
	return stored, nil
}

// List returns paginated documents without exposing repository types.
func (s *documentService) List(ctx context.Context, limit, offset int) (*DocumentListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}

// Get returns a document by ID.
func (s *documentService) Get(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (s *documentService) Download(ctx context.Context, id string) (*DocumentDownload, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	u, err := s.store.PresignGet(ctx, doc.StoragePath, downloadURLExpiry)
	if err == nil {
		return &DocumentDownload{Document: doc, URL: u}, nil
	}
	if !errors.Is(err, storage.ErrPresignUnsupported) {
		return nil, fmt.Errorf("presign: %w", err)
	}

	body, _, err := s.store.Get(ctx, doc.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	return &DocumentDownload{Document: doc, Body: body}, nil
}

// Delete removes a document from storage, then deletes its record.
func (s *documentService) Delete(ctx context.Context, caller model.Identity, id string) error {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	// Delete from storage first; if this fails, keep DB row to avoid orphaned storage reference loss
	if err := s.store.Delete(ctx, doc.StoragePath); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	// Delete DB row (repository ignores missing row errors as per contract)
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.record(ctx, caller, model.AuditFileDelete, id, fmt.Sprintf("Deleted %s", doc.OriginalFilename))
	return nil
}

func (s *documentService) record(ctx context.Context, caller model.Identity, action, resourceID, details string) {
	err := s.audit.Record(ctx, &model.AuditEntry{
		ID:           uuid.NewString(),
		ActorID:      caller.UserID,
		Action:       action,
		ResourceType: "document",
		ResourceID:   resourceID,
		Details:      details,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		s.log.Error().Err(err).Str("event", "audit_record_failed").Str("action", action).Str("document_id", resourceID).Msg("")
	}
}
