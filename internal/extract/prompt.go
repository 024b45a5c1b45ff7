package extract

import "veridoc/internal/domain"

// ocrTextLimit bounds the transcript appended to an OCR-assisted extraction
// prompt, to respect prompt-size limits.
const ocrTextLimit = 12000

const passportPrompt = `Extract the following fields from this Passport.
Return only JSON with keys: name, dob (YYYY-MM-DD), issuing_country (ISO3),
id_number, expiry_date (YYYY-MM-DD).
If a field is missing, set it to null.
Ensure the output is only a valid JSON object.`

const driversLicensePrompt = `Extract the following fields from this ID document.
Return only JSON with keys: name, dob (YYYY-MM-DD), issuing_state (USPS),
id_number, expiry_date (YYYY-MM-DD), address.
If a field is missing, set it to null.
Ensure the output is only a valid JSON object.`

// BuildExtractionPrompt returns the field extraction prompt for a document type.
func BuildExtractionPrompt(docType domain.DocumentType) string {
	if docType == domain.DocTypeDriversLicense {
		return driversLicensePrompt
	}
	return passportPrompt
}

// AppendTranscript attaches OCR output to an extraction prompt, truncated to
// ocrTextLimit characters.
func AppendTranscript(prompt, transcript string) string {
	if len(transcript) > ocrTextLimit {
		transcript = transcript[:ocrTextLimit]
	}
	return prompt + "\n\nOCR_TEXT:\n" + transcript
}
