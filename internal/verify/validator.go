package verify

import (
	"time"

	"veridoc/internal/domain"
)

const adultAgeYears = 18

// Validator applies per-document-type rule sets to a field record. It is a
// pure function over the record and the injected clock; calling Validate
// twice with the same inputs yields identical outcome lists.
type Validator struct {
	// Now supplies the current time for the expiry and age checks.
	Now func() time.Time
}

// NewValidator creates a Validator using the wall clock.
func NewValidator() *Validator {
	return &Validator{Now: time.Now}
}

// Validate runs the rule set for docType against a field record. Required
// fields emit required:<field>; the expiry and age rules emit warn, not
// fail, when the field they judge is missing or unparseable. An absent
// expiry date is unknown, not wrong.
func (v *Validator) Validate(rec domain.FieldRecord, docType domain.DocumentType) []domain.CheckResult {
	out := make([]domain.CheckResult, 0, len(domain.FieldNames(docType))+2)

	for _, field := range domain.FieldNames(docType) {
		status := domain.CheckFail
		if rec.Has(field) {
			status = domain.CheckPass
		}
		out = append(out, domain.CheckResult{Name: "required:" + field, Status: status})
	}

	out = append(out, domain.CheckResult{Name: "expiry_future", Status: v.expiryFuture(rec)})
	out = append(out, domain.CheckResult{Name: "age_check", Status: v.ageCheck(rec)})

	return out
}

func (v *Validator) expiryFuture(rec domain.FieldRecord) domain.CheckStatus {
	raw := rec.Get(domain.FieldExpiryDate)
	if raw == "" {
		return domain.CheckWarn
	}
	expiry, err := time.Parse(isoDate, raw)
	if err != nil {
		return domain.CheckWarn
	}
	today, err := time.Parse(isoDate, v.Now().Format(isoDate))
	if err != nil {
		return domain.CheckWarn
	}
	if expiry.Before(today) {
		return domain.CheckFail
	}
	return domain.CheckPass
}

func (v *Validator) ageCheck(rec domain.FieldRecord) domain.CheckStatus {
	raw := rec.Get(domain.FieldDOB)
	if raw == "" {
		return domain.CheckWarn
	}
	dob, err := time.Parse(isoDate, raw)
	if err != nil {
		return domain.CheckWarn
	}
	// Age in whole years approximated as days-since-birth / 365.
	days := int(v.Now().Sub(dob).Hours() / 24)
	if days/365 < adultAgeYears {
		return domain.CheckFail
	}
	return domain.CheckPass
}
