package model

import "time"

// DocumentType classifies a case document.
type DocumentType string

const (
	DocumentTypeRuling           DocumentType = "ruling"
	DocumentTypeEvidence         DocumentType = "evidence"
	DocumentTypeWitnessStatement DocumentType = "witness_statement"
	DocumentTypeAffidavit        DocumentType = "affidavit"
	DocumentTypePleading         DocumentType = "pleading"
	DocumentTypeExhibit          DocumentType = "exhibit"
)

// Document represents an uploaded case document.
// This is a pure domain model with no database-specific dependencies or tags.
// It can be used across layers (HTTP, service, storage) without coupling to persistence.
type Document struct {
	ID               string       `json:"id"`
	CaseID           string       `json:"case_id"`
	Filename         string       `json:"filename"`
	OriginalFilename string       `json:"original_filename"`
	StoragePath      string       `json:"storage_path"`
	Size             int64        `json:"size"`
	ContentType      string       `json:"content_type"`
	DocumentType     DocumentType `json:"document_type"`
	UploadedBy       string       `json:"uploaded_by"`
	CreatedAt        time.Time    `json:"created_at"`
}

// Valid reports whether t is a known document type.
func (t DocumentType) Valid() bool {
	switch t {
	case DocumentTypeRuling, DocumentTypeEvidence, DocumentTypeWitnessStatement,
		DocumentTypeAffidavit, DocumentTypePleading, DocumentTypeExhibit:
		return true
	}
	return false
}
