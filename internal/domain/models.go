package domain

import (
	"time"

	"github.com/google/uuid"
)

// CheckResult is the named pass/fail/warn outcome of one verification check.
type CheckResult struct {
	Name   string      `json:"name"`
	Status CheckStatus `json:"status"`
}

// AllPassed reports whether every check in the list passed.
func AllPassed(checks []CheckResult) bool {
	for _, c := range checks {
		if c.Status != CheckPass {
			return false
		}
	}
	return true
}

// TypeInferenceResult compares a declared document type against the type
// inferred from transcribed text.
type TypeInferenceResult struct {
	ExpectedType DocumentType `json:"expected_type"`
	InferredType DocumentType `json:"inferred_type"`
	Match        bool         `json:"match"`
}

// AuthenticityVerdict is the structured fraud-suspicion verdict for one
// document image. The zero value means "no flag raised".
type AuthenticityVerdict struct {
	IsSuspectedFraud bool    `json:"is_suspected_fraud"`
	Confidence       float64 `json:"confidence"`
	Explanation      string  `json:"explanation"`
}

// DocumentResult bundles the extraction and checks for a single document.
type DocumentResult struct {
	DocType   DocumentType  `json:"doc_type"`
	Model     string        `json:"model"`
	Extracted FieldRecord   `json:"extracted"`
	Checks    []CheckResult `json:"checks"`
}

// CaseResult is the persisted outcome of a verification case. For
// single-document cases License is nil and Consistency is empty.
type CaseResult struct {
	Passport    *DocumentResult      `json:"passport,omitempty"`
	License     *DocumentResult      `json:"drivers_license,omitempty"`
	Consistency []CheckResult        `json:"consistency,omitempty"`
	TypeCheck   *TypeInferenceResult `json:"type_check,omitempty"`
	Fraud       *AuthenticityVerdict `json:"fraud,omitempty"`
	FinalStatus CheckStatus          `json:"final_status"`
}

// AllChecks returns every check in the result, document checks first, then
// cross-document consistency checks.
func (r *CaseResult) AllChecks() []CheckResult {
	var out []CheckResult
	if r.Passport != nil {
		out = append(out, r.Passport.Checks...)
	}
	if r.License != nil {
		out = append(out, r.License.Checks...)
	}
	out = append(out, r.Consistency...)
	return out
}

// VerificationCase is one stored verification run over one or two uploaded
// documents.
type VerificationCase struct {
	ID           uuid.UUID    `db:"id" json:"id"`
	DocType      DocumentType `db:"doc_type" json:"doc_type"`
	OriginalName string       `db:"original_name" json:"original_name"`
	ContentType  string       `db:"content_type" json:"content_type"`
	FileSize     int64        `db:"file_size" json:"file_size"`
	S3Bucket     string       `db:"s3_bucket" json:"s3_bucket"`
	S3Key        string       `db:"s3_key" json:"s3_key"`

	// Second document of a passport/license pair; empty for single cases.
	PairOriginalName string `db:"pair_original_name" json:"pair_original_name,omitempty"`
	PairContentType  string `db:"pair_content_type" json:"pair_content_type,omitempty"`
	PairS3Key        string `db:"pair_s3_key" json:"pair_s3_key,omitempty"`

	Status      CaseStatus  `db:"status" json:"status"`
	Attempts    int         `db:"attempts" json:"attempts"`
	Payload     []byte      `db:"payload" json:"-"`
	Encrypted   bool        `db:"encrypted" json:"-"`
	FinalStatus CheckStatus `db:"final_status" json:"final_status,omitempty"`
	LastError   string      `db:"last_error" json:"last_error,omitempty"`

	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
}
