package service

import "errors"

var (
	ErrIDRequired = errors.New("id is required")
	ErrNotFound   = errors.New("not found")
	ErrReaderNil  = errors.New("reader is nil")
	ErrForbidden  = errors.New("admin access required")

	// ErrInvalidState is returned when an operation does not apply to the current job status.
	ErrInvalidState = errors.New("backup is not in a valid state for this operation")

	ErrInvalidKind         = errors.New("unknown backup kind")
	ErrUnsupportedTarget   = errors.New("unsupported storage target")
	ErrInvalidDocumentType = errors.New("unknown document type")
	ErrCaseIDRequired      = errors.New("case id is required")
)
