package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"veridoc/internal/domain"
	"veridoc/internal/service"
)

// maxUploadFiles bounds how many files one verification request may carry.
const maxUploadFiles = 2

// VerifyHandler handles synchronous verification endpoints.
type VerifyHandler struct {
	verifier      service.VerificationService
	maxFileSizeMB int64
}

// NewVerifyHandler creates a new VerifyHandler.
func NewVerifyHandler(verifier service.VerificationService, maxFileSizeMB int64) *VerifyHandler {
	return &VerifyHandler{verifier: verifier, maxFileSizeMB: maxFileSizeMB}
}

// Extract handles POST /api/v1/verify/extract
// Form fields: file (pdf/jpg/png), doc_type (passport or drivers_license).
func (h *VerifyHandler) Extract(c *gin.Context) {
	docType, ok := h.docTypeParam(c)
	if !ok {
		return
	}
	file, ok := h.readUpload(c, "file")
	if !ok {
		return
	}

	result := h.verifier.VerifyDocument(c.Request.Context(), file, docType)
	RespondOK(c, result)
}

// ExtractPair handles POST /api/v1/verify/extract-pair
// Form fields: passport and drivers_license files.
func (h *VerifyHandler) ExtractPair(c *gin.Context) {
	if !h.checkFileCount(c) {
		return
	}
	passport, ok := h.readUpload(c, "passport")
	if !ok {
		return
	}
	license, ok := h.readUpload(c, "drivers_license")
	if !ok {
		return
	}

	result := h.verifier.VerifyPair(c.Request.Context(), passport, license)
	RespondOK(c, result)
}

// CheckType handles POST /api/v1/verify/type
// Form fields: file, doc_type (the declared type to verify against).
func (h *VerifyHandler) CheckType(c *gin.Context) {
	docType, ok := h.docTypeParam(c)
	if !ok {
		return
	}
	file, ok := h.readUpload(c, "file")
	if !ok {
		return
	}

	result := h.verifier.CheckType(c.Request.Context(), file, docType)
	RespondOK(c, result)
}

// CheckAuthenticity handles POST /api/v1/verify/authenticity
// Form fields: file, doc_type.
func (h *VerifyHandler) CheckAuthenticity(c *gin.Context) {
	docType, ok := h.docTypeParam(c)
	if !ok {
		return
	}
	file, ok := h.readUpload(c, "file")
	if !ok {
		return
	}

	result := h.verifier.CheckAuthenticity(c.Request.Context(), file, docType)
	RespondOK(c, result)
}

// docTypeParam parses and validates the doc_type form field. Writes the
// error response itself when the value is missing or unknown.
func (h *VerifyHandler) docTypeParam(c *gin.Context) (domain.DocumentType, bool) {
	docType := domain.DocumentType(c.PostForm("doc_type"))
	if !domain.ValidDocumentTypes[docType] {
		HandleError(c, domain.ErrInvalidDocumentType)
		return "", false
	}
	return docType, true
}

// checkFileCount rejects requests carrying more files than allowed.
func (h *VerifyHandler) checkFileCount(c *gin.Context) bool {
	form, err := c.MultipartForm()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_FORM", "multipart form is required")
		return false
	}
	count := 0
	for _, files := range form.File {
		count += len(files)
	}
	if count > maxUploadFiles {
		HandleError(c, domain.ErrTooManyFiles)
		return false
	}
	return true
}

// readUpload reads one uploaded file into memory after checking its size and
// magic-byte content type. Writes the error response itself on failure.
func (h *VerifyHandler) readUpload(c *gin.Context, field string) (service.FileInput, bool) {
	file, header, err := c.Request.FormFile(field)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", field+" field is required")
		return service.FileInput{}, false
	}
	defer func() { _ = file.Close() }()

	if header.Size > h.maxFileSizeMB*1024*1024 {
		HandleError(c, domain.ErrFileTooLarge)
		return service.FileInput{}, false
	}

	data, err := io.ReadAll(file)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "UNREADABLE_FILE", "could not read uploaded file")
		return service.FileInput{}, false
	}

	detected := http.DetectContentType(data)
	if _, ok := domain.AllowedContentTypes[detected]; !ok {
		HandleError(c, domain.ErrUnsupportedFileType)
		return service.FileInput{}, false
	}

	return service.FileInput{Bytes: data, ContentType: detected}, true
}
