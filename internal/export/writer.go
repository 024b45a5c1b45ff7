package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"veridoc/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the export header row (23 columns).
var columns = []string{
	"Case ID",
	"Document Type",
	"File Name",
	"Status",
	"Final Status",
	"Passport Name",
	"Passport DOB",
	"Passport ID Number",
	"Passport Expiry",
	"Passport Country",
	"License Name",
	"License DOB",
	"License ID Number",
	"License Expiry",
	"License State",
	"Name Consistency",
	"DOB Consistency",
	"Type Match",
	"Fraud Suspected",
	"Fraud Confidence",
	"Last Error",
	"Created At",
	"Completed At",
}

// Row pairs a stored case with its decoded result. Result is nil when the
// case has not completed or its payload could not be decoded.
type Row struct {
	Case   domain.VerificationCase
	Result *domain.CaseResult
}

// Writer wraps csv.Writer for exporting verification cases as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteRows converts a batch of case rows to CSV rows and writes them.
func (w *Writer) WriteRows(rows []Row) error {
	for i := range rows {
		if err := w.csv.Write(caseToRow(&rows[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// caseToRow converts a single case to a 23-element string slice. Metadata
// columns are always filled; result columns are left empty when the case has
// no decoded result.
func caseToRow(r *Row) []string {
	row := make([]string, len(columns))

	c := &r.Case
	row[0] = c.ID.String()
	row[1] = string(c.DocType)
	row[2] = c.OriginalName
	row[3] = string(c.Status)
	row[4] = string(c.FinalStatus)
	row[20] = c.LastError
	row[21] = c.CreatedAt.Format(time.RFC3339)
	row[22] = formatTime(c.CompletedAt)

	res := r.Result
	if res == nil {
		return row
	}

	if res.Passport != nil {
		rec := res.Passport.Extracted
		row[5] = rec.Get(domain.FieldName)
		row[6] = rec.Get(domain.FieldDOB)
		row[7] = MaskIDNumber(rec.Get(domain.FieldIDNumber))
		row[8] = rec.Get(domain.FieldExpiryDate)
		row[9] = rec.Get(domain.FieldCountry)
	}
	if res.License != nil {
		rec := res.License.Extracted
		row[10] = rec.Get(domain.FieldName)
		row[11] = rec.Get(domain.FieldDOB)
		row[12] = MaskIDNumber(rec.Get(domain.FieldIDNumber))
		row[13] = rec.Get(domain.FieldExpiryDate)
		row[14] = rec.Get(domain.FieldState)
	}
	row[15] = checkStatus(res.Consistency, "consistency:name")
	row[16] = checkStatus(res.Consistency, "consistency:dob")
	if res.TypeCheck != nil {
		row[17] = formatBool(res.TypeCheck.Match)
	}
	if res.Fraud != nil {
		row[18] = formatBool(res.Fraud.IsSuspectedFraud)
		row[19] = strconv.FormatFloat(res.Fraud.Confidence, 'f', 2, 64)
	}

	return row
}

func checkStatus(checks []domain.CheckResult, name string) string {
	for _, c := range checks {
		if c.Name == name {
			return string(c.Status)
		}
	}
	return ""
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

// MaskIDNumber hides all but the last four characters of a document number.
func MaskIDNumber(id string) string {
	if id == "" {
		return ""
	}
	if len(id) <= 4 {
		return strings.Repeat("*", len(id))
	}
	return strings.Repeat("*", len(id)-4) + id[len(id)-4:]
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition. Replaces
// non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for Content-Disposition header.
// Format: {sanitized_name}_{YYYY-MM-DD}.{ext}
func BuildFilename(name, ext string) string {
	return fmt.Sprintf("%s_%s.%s", SanitizeFilename(name), time.Now().Format("2006-01-02"), ext)
}
