package extract_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"veridoc/internal/domain"
	"veridoc/internal/extract"
	"veridoc/internal/port"
	"veridoc/mocks"
)

var testImage = []byte("not-really-a-jpeg")

func TestExtract_Direct(t *testing.T) {
	gw := new(mocks.MockModelGateway)
	gw.On("Infer", mock.Anything, mock.MatchedBy(func(in port.InferInput) bool {
		return in.ContentType == "image/jpeg"
	})).Return(`{"name": "JANE DOE", "dob": "1990-01-15", "issuing_country": "USA", "id_number": "P1234567", "expiry_date": "2030-01-01"}`, nil)

	e := extract.NewExtractor(gw, extract.StrategyDirect)
	rec := e.Extract(context.Background(), testImage, "image/jpeg", domain.DocTypePassport)

	assert.Equal(t, "JANE DOE", rec.Get(domain.FieldName))
	assert.Equal(t, "1990-01-15", rec.Get(domain.FieldDOB))
	assert.Equal(t, "USA", rec.Get(domain.FieldCountry))
	gw.AssertNotCalled(t, "Transcribe", mock.Anything, mock.Anything, mock.Anything)
}

func TestExtract_RecordAlwaysCarriesDeclaredKeys(t *testing.T) {
	gw := new(mocks.MockModelGateway)
	// Model returns a partial object with an invented extra key.
	gw.On("Infer", mock.Anything, mock.Anything).
		Return(`{"name": "JANE DOE", "nickname": "JD", "dob": null}`, nil)

	e := extract.NewExtractor(gw, extract.StrategyDirect)
	rec := e.Extract(context.Background(), testImage, "image/jpeg", domain.DocTypePassport)

	require.Len(t, rec, len(domain.FieldNames(domain.DocTypePassport)))
	for _, field := range domain.FieldNames(domain.DocTypePassport) {
		_, present := rec[field]
		assert.True(t, present, "missing key %s", field)
	}
	assert.Nil(t, rec[domain.FieldDOB])
	assert.Nil(t, rec[domain.FieldIDNumber])
	_, invented := rec["nickname"]
	assert.False(t, invented)
}

func TestExtract_OCRAssisted(t *testing.T) {
	gw := new(mocks.MockModelGateway)
	gw.On("Transcribe", mock.Anything, testImage, "image/png").
		Return("UNITED STATES OF AMERICA PASSPORT", nil)
	gw.On("Infer", mock.Anything, mock.MatchedBy(func(in port.InferInput) bool {
		return strings.Contains(in.Prompt, "OCR_TEXT:") &&
			strings.Contains(in.Prompt, "UNITED STATES OF AMERICA PASSPORT")
	})).Return(`{"name": "JANE DOE"}`, nil)

	e := extract.NewExtractor(gw, extract.StrategyOCRAssisted)
	rec := e.Extract(context.Background(), testImage, "image/png", domain.DocTypePassport)

	assert.Equal(t, "JANE DOE", rec.Get(domain.FieldName))
	gw.AssertExpectations(t)
}

func TestExtract_OCRFailureFallsBackToDirect(t *testing.T) {
	gw := new(mocks.MockModelGateway)
	gw.On("Transcribe", mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("ocr model unavailable"))
	gw.On("Infer", mock.Anything, mock.MatchedBy(func(in port.InferInput) bool {
		return !strings.Contains(in.Prompt, "OCR_TEXT:")
	})).Return(`{"name": "JANE DOE"}`, nil)

	e := extract.NewExtractor(gw, extract.StrategyOCRAssisted)
	rec := e.Extract(context.Background(), testImage, "image/jpeg", domain.DocTypePassport)

	assert.Equal(t, "JANE DOE", rec.Get(domain.FieldName))
	gw.AssertExpectations(t)
}

func TestExtract_GatewayFailureYieldsEmptyRecord(t *testing.T) {
	gw := new(mocks.MockModelGateway)
	gw.On("Infer", mock.Anything, mock.Anything).Return("", errors.New("upstream timeout"))

	e := extract.NewExtractor(gw, extract.StrategyDirect)
	rec := e.Extract(context.Background(), testImage, "image/jpeg", domain.DocTypeDriversLicense)

	require.Len(t, rec, len(domain.FieldNames(domain.DocTypeDriversLicense)))
	for _, field := range domain.FieldNames(domain.DocTypeDriversLicense) {
		assert.Nil(t, rec[field])
	}
}

func TestExtract_MalformedReplyYieldsEmptyRecord(t *testing.T) {
	gw := new(mocks.MockModelGateway)
	gw.On("Infer", mock.Anything, mock.Anything).Return("Sorry, I cannot help with that.", nil)

	e := extract.NewExtractor(gw, extract.StrategyDirect)
	rec := e.Extract(context.Background(), testImage, "image/jpeg", domain.DocTypePassport)

	for _, field := range domain.FieldNames(domain.DocTypePassport) {
		assert.Nil(t, rec[field])
	}
}

func TestParseStrategy(t *testing.T) {
	assert.Equal(t, extract.StrategyOCRAssisted, extract.ParseStrategy("ocr_assisted"))
	assert.Equal(t, extract.StrategyDirect, extract.ParseStrategy("direct"))
	assert.Equal(t, extract.StrategyDirect, extract.ParseStrategy(""))
	assert.Equal(t, extract.StrategyDirect, extract.ParseStrategy("bogus"))
}
