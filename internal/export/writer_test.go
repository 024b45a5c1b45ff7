package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veridoc/internal/domain"
)

func strPtr(s string) *string { return &s }

func completedPairRow() Row {
	created := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	completed := time.Date(2026, 3, 1, 8, 1, 0, 0, time.UTC)

	passport := domain.NewFieldRecord(domain.DocTypePassport)
	passport[domain.FieldName] = strPtr("JANE DOE")
	passport[domain.FieldDOB] = strPtr("1990-01-15")
	passport[domain.FieldIDNumber] = strPtr("P12345678")
	passport[domain.FieldExpiryDate] = strPtr("2030-01-01")
	passport[domain.FieldCountry] = strPtr("USA")

	license := domain.NewFieldRecord(domain.DocTypeDriversLicense)
	license[domain.FieldName] = strPtr("DOE JANE")
	license[domain.FieldDOB] = strPtr("1990-01-15")
	license[domain.FieldIDNumber] = strPtr("D987")
	license[domain.FieldState] = strPtr("CA")

	return Row{
		Case: domain.VerificationCase{
			ID:           uuid.New(),
			DocType:      domain.DocTypePassport,
			OriginalName: "passport.jpg",
			Status:       domain.CaseStatusCompleted,
			FinalStatus:  domain.CheckPass,
			CreatedAt:    created,
			CompletedAt:  &completed,
		},
		Result: &domain.CaseResult{
			Passport: &domain.DocumentResult{DocType: domain.DocTypePassport, Extracted: passport},
			License:  &domain.DocumentResult{DocType: domain.DocTypeDriversLicense, Extracted: license},
			Consistency: []domain.CheckResult{
				{Name: "consistency:name", Status: domain.CheckPass},
				{Name: "consistency:dob", Status: domain.CheckPass},
			},
			TypeCheck:   &domain.TypeInferenceResult{Match: true},
			Fraud:       &domain.AuthenticityVerdict{IsSuspectedFraud: false, Confidence: 0.8},
			FinalStatus: domain.CheckPass,
		},
	}
}

func TestWriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	row, err := r.Read()
	require.NoError(t, err)

	assert.Len(t, row, 23)
	assert.Equal(t, "Case ID", row[0])
	assert.Equal(t, "Passport Name", row[5])
	assert.Equal(t, "Completed At", row[22])
}

func TestWriteRows_CompletedPair(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteRows([]Row{completedPairRow()}))
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	row := records[1]
	assert.Equal(t, "passport.jpg", row[2])
	assert.Equal(t, "completed", row[3])
	assert.Equal(t, "pass", row[4])
	assert.Equal(t, "JANE DOE", row[5])
	assert.Equal(t, "*****5678", row[7], "id number must be masked")
	assert.Equal(t, "DOE JANE", row[10])
	assert.Equal(t, "****", row[12])
	assert.Equal(t, "pass", row[15])
	assert.Equal(t, "pass", row[16])
	assert.Equal(t, "Yes", row[17])
	assert.Equal(t, "No", row[18])
	assert.Equal(t, "0.80", row[19])
}

func TestWriteRows_PendingCaseHasMetadataOnly(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())

	row := Row{
		Case: domain.VerificationCase{
			ID:           uuid.New(),
			DocType:      domain.DocTypeDriversLicense,
			OriginalName: "license.png",
			Status:       domain.CaseStatusQueued,
			CreatedAt:    time.Now().UTC(),
		},
	}
	require.NoError(t, w.WriteRows([]Row{row}))
	w.Flush()

	r := csv.NewReader(&buf)
	records, err := r.ReadAll()
	require.NoError(t, err)
	data := records[1]

	assert.Equal(t, "license.png", data[2])
	assert.Equal(t, "queued", data[3])
	for i := 5; i <= 19; i++ {
		assert.Empty(t, data[i], "column %d should be empty", i)
	}
}

func TestMaskIDNumber(t *testing.T) {
	assert.Equal(t, "", MaskIDNumber(""))
	assert.Equal(t, "*", MaskIDNumber("A"))
	assert.Equal(t, "****", MaskIDNumber("ABCD"))
	assert.Equal(t, "*2345", MaskIDNumber("12345"))
	assert.Equal(t, "*****5678", MaskIDNumber("P12345678"))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "Q3_Cases", SanitizeFilename("Q3 Cases"))
	assert.Equal(t, "a_b_c", SanitizeFilename("a//b??c"))
	assert.Equal(t, "trimmed", SanitizeFilename("__trimmed__"))
	assert.Len(t, SanitizeFilename(string(bytes.Repeat([]byte("x"), 200))), 100)
}

func TestBuildFilename(t *testing.T) {
	name := BuildFilename("verification cases", "csv")
	assert.Contains(t, name, "verification_cases_")
	assert.Contains(t, name, ".csv")
}
