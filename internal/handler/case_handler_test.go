package handler_test

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"veridoc/internal/domain"
	"veridoc/internal/export"
	"veridoc/internal/handler"
	"veridoc/mocks"
)

func setupCaseRouter(svc *mocks.MockCaseService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handler.NewCaseHandler(svc)
	r := gin.New()
	r.GET("/api/v1/cases", h.List)
	r.GET("/api/v1/cases/export", h.Export)
	r.GET("/api/v1/cases/:id", h.GetByID)
	return r
}

func TestExportCSV(t *testing.T) {
	svc := new(mocks.MockCaseService)
	caseID := uuid.New()
	svc.On("ExportRows", mock.Anything).Return([]export.Row{
		{Case: domain.VerificationCase{
			ID:           caseID,
			DocType:      domain.DocTypePassport,
			OriginalName: "passport.png",
			Status:       domain.CaseStatusQueued,
			CreatedAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		}},
	}, nil)

	router := setupCaseRouter(svc)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cases/export?format=csv", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `attachment; filename="verification_cases_`)
	assert.Contains(t, w.Header().Get("Content-Disposition"), `.csv"`)

	body := w.Body.Bytes()
	require.True(t, bytes.HasPrefix(body, export.BOM), "CSV must start with a UTF-8 BOM")

	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(body, export.BOM))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Case ID", records[0][0])
	assert.Equal(t, caseID.String(), records[1][0])
	assert.Equal(t, "passport", records[1][1])
	assert.Equal(t, "queued", records[1][3])
}

func TestExport_InvalidFormat(t *testing.T) {
	svc := new(mocks.MockCaseService)
	router := setupCaseRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cases/export?format=pdf", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "ExportRows", mock.Anything)
}

func TestList_ClampsLimit(t *testing.T) {
	svc := new(mocks.MockCaseService)
	svc.On("List", mock.Anything, 0, 20).Return([]domain.VerificationCase{}, 0, nil)

	router := setupCaseRouter(svc)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cases?limit=500", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestGetByID_InvalidID(t *testing.T) {
	svc := new(mocks.MockCaseService)
	router := setupCaseRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cases/not-a-uuid", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_ID")
}

func TestGetByID_NotFound(t *testing.T) {
	svc := new(mocks.MockCaseService)
	svc.On("GetByID", mock.Anything, mock.Anything).Return(nil, nil, domain.ErrCaseNotFound)

	router := setupCaseRouter(svc)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cases/"+uuid.NewString(), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "CASE_NOT_FOUND")
}
