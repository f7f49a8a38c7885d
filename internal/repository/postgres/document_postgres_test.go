package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"casefiles/internal/model"
	"casefiles/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var documentRowColumns = []string{"id", "case_id", "filename", "original_filename", "storage_path", "size", "content_type", "document_type", "uploaded_by", "created_at"}

func TestDocumentPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	doc := &model.Document{
		ID:               "doc-uuid",
		CaseID:           "case-1",
		Filename:         "doc-uuid.pdf",
		OriginalFilename: "ruling.pdf",
		StoragePath:      "documents/doc-uuid.pdf",
		Size:             123,
		ContentType:      "application/pdf",
		DocumentType:     model.DocumentTypeRuling,
		UploadedBy:       "user-1",
		CreatedAt:        now,
	}

	rows := sqlmock.NewRows(documentRowColumns).
		AddRow(doc.ID, doc.CaseID, doc.Filename, doc.OriginalFilename, doc.StoragePath, doc.Size, doc.ContentType, string(doc.DocumentType), doc.UploadedBy, doc.CreatedAt)

	mock.ExpectQuery("INSERT INTO documents").
		WithArgs(doc.ID, doc.CaseID, doc.Filename, doc.OriginalFilename, doc.StoragePath, doc.Size, doc.ContentType, doc.DocumentType, doc.UploadedBy, doc.CreatedAt).
		WillReturnRows(rows)

	result, err := repo.Create(ctx, doc)

	assert.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, doc.ID, result.ID)
	assert.Equal(t, model.DocumentTypeRuling, result.DocumentType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows(documentRowColumns).
			AddRow("test-id", "case-1", "file.txt", "orig.txt", "path/file.txt", 100, "text/plain", "evidence", "user-1", time.Now())

		mock.ExpectQuery("SELECT (.+) FROM documents WHERE id = ?").
			WithArgs("test-id").
			WillReturnRows(rows)

		doc, err := repo.FindByID(ctx, "test-id")

		assert.NoError(t, err)
		require.NotNil(t, doc)
		assert.Equal(t, "test-id", doc.ID)
		assert.Equal(t, model.DocumentTypeEvidence, doc.DocumentType)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM documents WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		doc, err := repo.FindByID(ctx, "missing")

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, doc)
	})
}

func TestDocumentPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM documents").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		rows := sqlmock.NewRows(documentRowColumns).
			AddRow("test-id", "case-1", "file.txt", "orig.txt", "path/file.txt", 100, "text/plain", "exhibit", "user-1", time.Now())

		mock.ExpectQuery("SELECT (.+) FROM documents ORDER BY").
			WithArgs(10, 0).
			WillReturnRows(rows)

		res, err := repo.List(ctx, repository.PageQuery{Limit: 10, Offset: 0})

		assert.NoError(t, err)
		assert.Equal(t, 1, res.Total)
		assert.Len(t, res.Items, 1)
	})

	t.Run("count error", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM documents").
			WillReturnError(errors.New("db down"))

		res, err := repo.List(ctx, repository.PageQuery{Limit: 10})

		assert.Error(t, err)
		assert.Nil(t, res)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_ListCreatedAfter(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("all documents when since is nil", func(t *testing.T) {
		rows := sqlmock.NewRows(documentRowColumns).
			AddRow("a", "case-1", "a.txt", "a.txt", "documents/a.txt", 10, "text/plain", "evidence", "user-1", time.Now()).
			AddRow("b", "case-1", "b.txt", "b.txt", "documents/b.txt", 20, "text/plain", "evidence", "user-1", time.Now())

		mock.ExpectQuery("SELECT (.+) FROM documents ORDER BY created_at ASC").
			WithoutArgs().
			WillReturnRows(rows)

		docs, err := repo.ListCreatedAfter(ctx, nil)

		assert.NoError(t, err)
		assert.Len(t, docs, 2)
	})

	t.Run("filtered by creation time", func(t *testing.T) {
		since := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		rows := sqlmock.NewRows(documentRowColumns).
			AddRow("c", "case-2", "c.txt", "c.txt", "documents/c.txt", 30, "text/plain", "pleading", "user-2", since.Add(time.Hour))

		mock.ExpectQuery("SELECT (.+) FROM documents WHERE created_at > (.+) ORDER BY").
			WithArgs(since).
			WillReturnRows(rows)

		docs, err := repo.ListCreatedAfter(ctx, &since)

		assert.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "c", docs[0].ID)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	mock.ExpectExec("DELETE FROM documents WHERE id = ?").
		WithArgs("test-id").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Delete(ctx, "test-id")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
