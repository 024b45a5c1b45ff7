package domain

// Field names shared by both document types.
const (
	FieldName       = "name"
	FieldDOB        = "dob"
	FieldExpiryDate = "expiry_date"
	FieldIDNumber   = "id_number"
	FieldCountry    = "issuing_country"
	FieldState      = "issuing_state"
	FieldAddress    = "address"
)

var passportFields = []string{FieldName, FieldDOB, FieldExpiryDate, FieldIDNumber, FieldCountry}

var driversLicenseFields = []string{FieldName, FieldDOB, FieldExpiryDate, FieldIDNumber, FieldState, FieldAddress}

// FieldNames returns the declared field set for a document type. The result
// is also the required-field set used by verification checks.
func FieldNames(docType DocumentType) []string {
	if docType == DocTypeDriversLicense {
		return driversLicenseFields
	}
	return passportFields
}

// FieldRecord is the normalized mapping of extracted identity fields for one
// document. Its keys are always exactly the declared field set for the
// document type it was built for; a missing value is a nil entry, never an
// absent key. Records are built once per extraction and not mutated after.
type FieldRecord map[string]*string

// NewFieldRecord returns an empty record carrying the full declared key set
// for docType with nil values.
func NewFieldRecord(docType DocumentType) FieldRecord {
	names := FieldNames(docType)
	rec := make(FieldRecord, len(names))
	for _, n := range names {
		rec[n] = nil
	}
	return rec
}

// NormalizeFieldRecord projects a parsed mapping onto the declared field set
// for docType. Only string values survive; everything else (missing keys,
// nulls, wrong types, extra keys the model invented) becomes nil or is
// dropped.
func NormalizeFieldRecord(parsed map[string]any, docType DocumentType) FieldRecord {
	rec := NewFieldRecord(docType)
	for name := range rec {
		if s, ok := parsed[name].(string); ok && s != "" {
			v := s
			rec[name] = &v
		}
	}
	return rec
}

// Get returns the field value, or "" if the field is nil or undeclared.
func (r FieldRecord) Get(name string) string {
	if v, ok := r[name]; ok && v != nil {
		return *v
	}
	return ""
}

// Has reports whether the field is present with a non-empty value.
func (r FieldRecord) Has(name string) bool {
	return r.Get(name) != ""
}
