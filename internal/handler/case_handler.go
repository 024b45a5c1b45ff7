package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"veridoc/internal/domain"
	"veridoc/internal/export"
	"veridoc/internal/service"
)

// CaseHandler handles verification case endpoints.
type CaseHandler struct {
	caseService service.CaseService
}

// NewCaseHandler creates a new CaseHandler.
func NewCaseHandler(caseService service.CaseService) *CaseHandler {
	return &CaseHandler{caseService: caseService}
}

// Create handles POST /api/v1/cases
// Single document: file + doc_type form fields. Passport/license pair:
// passport and drivers_license files. The case is queued for asynchronous
// verification.
func (h *CaseHandler) Create(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_FORM", "multipart form is required")
		return
	}
	count := 0
	for _, files := range form.File {
		count += len(files)
	}
	if count > maxUploadFiles {
		HandleError(c, domain.ErrTooManyFiles)
		return
	}

	input := &service.CreateCaseInput{}

	if _, ok := form.File["passport"]; ok {
		passport, passportHeader, ferr := c.Request.FormFile("passport")
		if ferr != nil {
			RespondError(c, http.StatusBadRequest, "MISSING_FILE", "passport field is required")
			return
		}
		defer func() { _ = passport.Close() }()

		license, licenseHeader, ferr := c.Request.FormFile("drivers_license")
		if ferr != nil {
			RespondError(c, http.StatusBadRequest, "MISSING_FILE", "drivers_license field is required")
			return
		}
		defer func() { _ = license.Close() }()

		input.DocType = domain.DocTypePassport
		input.File = passport
		input.Header = passportHeader
		input.PairFile = license
		input.PairHeader = licenseHeader
	} else {
		file, header, ferr := c.Request.FormFile("file")
		if ferr != nil {
			RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
			return
		}
		defer func() { _ = file.Close() }()

		input.DocType = domain.DocumentType(c.PostForm("doc_type"))
		input.File = file
		input.Header = header
	}

	created, err := h.caseService.Create(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondAccepted(c, created)
}

// List handles GET /api/v1/cases
func (h *CaseHandler) List(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	cases, total, err := h.caseService.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, cases, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/cases/:id
func (h *CaseHandler) GetByID(c *gin.Context) {
	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid case ID")
		return
	}

	vc, result, err := h.caseService.GetByID(c.Request.Context(), caseID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{
		"case":   vc,
		"result": result,
	})
}

// GetDownloadURL handles GET /api/v1/cases/:id/download-url
func (h *CaseHandler) GetDownloadURL(c *gin.Context) {
	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid case ID")
		return
	}

	url, err := h.caseService.GetDownloadURL(c.Request.Context(), caseID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"download_url": url})
}

// Export handles GET /api/v1/cases/export?format=csv|xlsx
func (h *CaseHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		RespondError(c, http.StatusBadRequest, "INVALID_FORMAT", "format must be csv or xlsx")
		return
	}

	rows, err := h.caseService.ExportRows(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}

	filename := export.BuildFilename("verification_cases", format)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if format == "xlsx" {
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Status(http.StatusOK)
		if err := export.WriteXLSX(c.Writer, rows); err != nil {
			HandleError(c, err)
		}
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)
	if _, err := c.Writer.Write(export.BOM); err != nil {
		return
	}

	w := export.NewWriter(c.Writer)
	if err := w.WriteHeader(); err != nil {
		return
	}
	if err := w.WriteRows(rows); err != nil {
		return
	}
	w.Flush()
}
