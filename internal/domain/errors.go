package domain

import "errors"

var (
	ErrCaseNotFound        = errors.New("case not found")
	ErrInvalidDocumentType = errors.New("invalid document type")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrTooManyFiles        = errors.New("too many files in a single case")
	ErrUploadFailed        = errors.New("file upload to storage failed")
)
