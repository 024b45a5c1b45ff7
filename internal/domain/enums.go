package domain

// FileType represents the allowed file types for upload.
type FileType string

const (
	FileTypePDF FileType = "pdf"
	FileTypeJPG FileType = "jpg"
	FileTypePNG FileType = "png"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF: "application/pdf",
	FileTypeJPG: "image/jpeg",
	FileTypePNG: "image/png",
}

// AllowedContentTypes maps MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
	"image/jpeg":      FileTypeJPG,
	"image/png":       FileTypePNG,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
}

// DocumentType identifies the kind of identity document under verification.
type DocumentType string

const (
	DocTypePassport       DocumentType = "passport"
	DocTypeDriversLicense DocumentType = "drivers_license"
	DocTypeUnknown        DocumentType = "unknown"
)

// ValidDocumentTypes lists the document types accepted for verification.
var ValidDocumentTypes = map[DocumentType]bool{
	DocTypePassport:       true,
	DocTypeDriversLicense: true,
}

// CheckStatus is the outcome of a single verification check.
type CheckStatus string

const (
	CheckPass CheckStatus = "pass"
	CheckFail CheckStatus = "fail"
	CheckWarn CheckStatus = "warn"
)

// CaseStatus represents the lifecycle of a verification case.
type CaseStatus string

const (
	CaseStatusQueued     CaseStatus = "queued"
	CaseStatusProcessing CaseStatus = "processing"
	CaseStatusCompleted  CaseStatus = "completed"
	CaseStatusFailed     CaseStatus = "failed"
)
