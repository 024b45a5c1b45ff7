package verify_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veridoc/internal/domain"
	"veridoc/internal/verify"
)

// fixedValidator pins the clock to 2026-06-15 so age and expiry outcomes are
// stable.
func fixedValidator() *verify.Validator {
	v := verify.NewValidator()
	v.Now = func() time.Time {
		return time.Date(2026, 6, 15, 10, 30, 0, 0, time.UTC)
	}
	return v
}

func record(docType domain.DocumentType, values map[string]string) domain.FieldRecord {
	rec := domain.NewFieldRecord(docType)
	for k, v := range values {
		val := v
		rec[k] = &val
	}
	return rec
}

func checkByName(t *testing.T, checks []domain.CheckResult, name string) domain.CheckStatus {
	t.Helper()
	for _, c := range checks {
		if c.Name == name {
			return c.Status
		}
	}
	t.Fatalf("check %s not found", name)
	return ""
}

func TestValidate_AllPassportFieldsPresent(t *testing.T) {
	v := fixedValidator()
	rec := record(domain.DocTypePassport, map[string]string{
		domain.FieldName:       "JANE DOE",
		domain.FieldDOB:        "1990-01-15",
		domain.FieldExpiryDate: "2030-01-01",
		domain.FieldIDNumber:   "P1234567",
		domain.FieldCountry:    "USA",
	})

	checks := v.Validate(rec, domain.DocTypePassport)

	require.Len(t, checks, len(domain.FieldNames(domain.DocTypePassport))+2)
	for _, c := range checks {
		assert.Equal(t, domain.CheckPass, c.Status, c.Name)
	}
	assert.True(t, domain.AllPassed(checks))
}

func TestValidate_MissingRequiredField(t *testing.T) {
	v := fixedValidator()
	rec := record(domain.DocTypePassport, map[string]string{
		domain.FieldName:       "JANE DOE",
		domain.FieldDOB:        "1990-01-15",
		domain.FieldExpiryDate: "2030-01-01",
		domain.FieldCountry:    "USA",
	})

	checks := v.Validate(rec, domain.DocTypePassport)

	assert.Equal(t, domain.CheckFail, checkByName(t, checks, "required:id_number"))
	assert.Equal(t, domain.CheckPass, checkByName(t, checks, "required:name"))
	assert.False(t, domain.AllPassed(checks))
}

func TestValidate_CheckOrderIsStable(t *testing.T) {
	v := fixedValidator()
	rec := record(domain.DocTypeDriversLicense, nil)

	checks := v.Validate(rec, domain.DocTypeDriversLicense)

	want := []string{
		"required:name", "required:dob", "required:expiry_date",
		"required:id_number", "required:issuing_state", "required:address",
		"expiry_future", "age_check",
	}
	require.Len(t, checks, len(want))
	for i, name := range want {
		assert.Equal(t, name, checks[i].Name)
	}
}

func TestValidate_Idempotent(t *testing.T) {
	v := fixedValidator()
	rec := record(domain.DocTypePassport, map[string]string{
		domain.FieldName: "JANE DOE",
		domain.FieldDOB:  "2000-03-01",
	})

	first := v.Validate(rec, domain.DocTypePassport)
	second := v.Validate(rec, domain.DocTypePassport)
	assert.Equal(t, first, second)
}

func TestExpiryFuture(t *testing.T) {
	v := fixedValidator()

	cases := []struct {
		name   string
		expiry string
		want   domain.CheckStatus
	}{
		{"future date passes", "2030-01-01", domain.CheckPass},
		{"today passes", "2026-06-15", domain.CheckPass},
		{"past date fails", "2026-06-14", domain.CheckFail},
		{"long expired fails", "2019-05-01", domain.CheckFail},
		{"missing warns", "", domain.CheckWarn},
		{"non-ISO format warns", "01/01/2030", domain.CheckWarn},
		{"garbage warns", "never", domain.CheckWarn},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			values := map[string]string{}
			if tc.expiry != "" {
				values[domain.FieldExpiryDate] = tc.expiry
			}
			checks := v.Validate(record(domain.DocTypePassport, values), domain.DocTypePassport)
			assert.Equal(t, tc.want, checkByName(t, checks, "expiry_future"))
		})
	}
}

func TestAgeCheck(t *testing.T) {
	v := fixedValidator()

	cases := []struct {
		name string
		dob  string
		want domain.CheckStatus
	}{
		{"adult passes", "1990-01-15", domain.CheckPass},
		{"18th birthday today passes", "2008-06-15", domain.CheckPass},
		{"seventeen fails", "2009-06-15", domain.CheckFail},
		{"missing warns", "", domain.CheckWarn},
		{"non-ISO format warns", "15/01/1990", domain.CheckWarn},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			values := map[string]string{}
			if tc.dob != "" {
				values[domain.FieldDOB] = tc.dob
			}
			checks := v.Validate(record(domain.DocTypePassport, values), domain.DocTypePassport)
			assert.Equal(t, tc.want, checkByName(t, checks, "age_check"))
		})
	}
}

// Age is computed as days-since-birth / 365, so leap days accumulated over 18
// years let a birth date two days ahead of the exact anniversary pass.
func TestAgeCheck_DaysOver365Approximation(t *testing.T) {
	v := fixedValidator()

	rec := record(domain.DocTypePassport, map[string]string{domain.FieldDOB: "2008-06-17"})
	checks := v.Validate(rec, domain.DocTypePassport)
	assert.Equal(t, domain.CheckPass, checkByName(t, checks, "age_check"))
}
