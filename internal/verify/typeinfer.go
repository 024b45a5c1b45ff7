package verify

import (
	"context"
	"log"
	"strings"

	"veridoc/internal/domain"
	"veridoc/internal/port"
)

// ClassifyTranscript infers a document type from transcribed text.
// "PASSPORT" wins over the license indicators ("DRIVER", "DL"); text
// matching neither classifies as unknown.
func ClassifyTranscript(transcript string) domain.DocumentType {
	upper := strings.ToUpper(transcript)
	switch {
	case strings.Contains(upper, "PASSPORT"): // MRZ line indicator
		return domain.DocTypePassport
	case strings.Contains(upper, "DRIVER"), strings.Contains(upper, "DL"):
		return domain.DocTypeDriversLicense
	default:
		return domain.DocTypeUnknown
	}
}

// TypeInferencer classifies a document image against its declared type by
// transcribing it and scanning for indicator terms.
type TypeInferencer struct {
	gateway port.ModelGateway
}

// NewTypeInferencer creates a TypeInferencer over a gateway.
func NewTypeInferencer(gw port.ModelGateway) *TypeInferencer {
	return &TypeInferencer{gateway: gw}
}

// Infer transcribes the document and compares the inferred type against the
// declared one. A transcription failure classifies as unknown, which never
// matches.
func (t *TypeInferencer) Infer(ctx context.Context, fileBytes []byte, contentType string, declared domain.DocumentType) domain.TypeInferenceResult {
	inferred := domain.DocTypeUnknown

	transcript, err := t.gateway.Transcribe(ctx, fileBytes, contentType)
	if err != nil {
		log.Printf("verify.TypeInferencer: transcription failed: %v", err)
	} else {
		inferred = ClassifyTranscript(transcript)
	}

	return domain.TypeInferenceResult{
		ExpectedType: declared,
		InferredType: inferred,
		Match:        inferred == declared,
	}
}
