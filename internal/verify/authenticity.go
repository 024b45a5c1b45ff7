package verify

import (
	"context"
	"encoding/json"
	"log"

	"veridoc/internal/domain"
	"veridoc/internal/extract"
	"veridoc/internal/port"
)

const passportFraudPrompt = `You are a cautious identity verification assistant.
You are shown an image of a passport.
Your task is to assess whether the document appears authentic or suspicious.

Return ONLY JSON with the following fields:
{
"is_suspected_fraud": true | false,
"confidence": 0.0-1.0,
"explanation": "short rationale"
}
If the document is not a passport, return "is_suspected_fraud": true with high confidence and explain.

Guidelines:
- Look for tampering: mismatched fonts, cut-and-paste artifacts, blurred text, misaligned photo, missing hologram/barcode/MRZ.
- Look for validity: presence of MRZ lines (passport), consistent fonts, correct placement of fields.
- If uncertain, return "is_suspected_fraud": false with low confidence and explain.
- Do not hallucinate security features that are not visible.`

const driversLicenseFraudPrompt = `You are a cautious identity verification assistant.
You are shown an image of a driver's license.
Your task is to assess whether the document appears authentic or suspicious.

Return ONLY JSON with the following fields:
{
"is_suspected_fraud": true | false,
"confidence": 0.0-1.0,
"explanation": "short rationale"
}
If the document is not a driver's license, return "is_suspected_fraud": true with high confidence and explain.

Guidelines:
- Look for tampering: mismatched fonts, cut-and-paste artifacts, blurred text, misaligned photo, missing hologram/barcode/MRZ.
- Look for validity: presence of PDF417 barcode (DL), consistent fonts, correct placement of fields.
- If uncertain, return "is_suspected_fraud": false with low confidence and explain.
- Do not hallucinate security features that are not visible.`

// BuildFraudPrompt returns the authenticity assessment prompt for a document type.
func BuildFraudPrompt(docType domain.DocumentType) string {
	if docType == domain.DocTypeDriversLicense {
		return driversLicenseFraudPrompt
	}
	return passportFraudPrompt
}

// Assessor produces a structured fraud-suspicion verdict for a document
// image. The type mismatch rule (a non-passport image counts as suspected
// fraud) is enforced by the prompt, not re-checked here.
type Assessor struct {
	gateway port.ModelGateway
}

// NewAssessor creates an Assessor over a gateway.
func NewAssessor(gw port.ModelGateway) *Assessor {
	return &Assessor{gateway: gw}
}

// Assess sends the fraud-assessment prompt with the document image and
// decodes the verdict. Any gateway or parse failure yields the zero verdict,
// which callers treat as "no flag raised".
func (a *Assessor) Assess(ctx context.Context, fileBytes []byte, contentType string, docType domain.DocumentType) domain.AuthenticityVerdict {
	text, err := a.gateway.Infer(ctx, port.InferInput{
		FileBytes:   fileBytes,
		ContentType: contentType,
		Prompt:      BuildFraudPrompt(docType),
	})
	if err != nil {
		log.Printf("verify.Assessor: gateway inference failed for %s: %v", docType, err)
		return domain.AuthenticityVerdict{}
	}

	obj, err := extract.ParseObject(text)
	if err != nil {
		log.Printf("verify.Assessor: %v", err)
		return domain.AuthenticityVerdict{}
	}

	raw, err := json.Marshal(obj)
	if err != nil {
		return domain.AuthenticityVerdict{}
	}
	var verdict domain.AuthenticityVerdict
	if err := json.Unmarshal(raw, &verdict); err != nil {
		log.Printf("verify.Assessor: decoding verdict: %v", err)
		return domain.AuthenticityVerdict{}
	}
	return verdict
}
