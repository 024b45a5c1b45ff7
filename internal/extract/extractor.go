package extract

import (
	"context"
	"log"

	"veridoc/internal/domain"
	"veridoc/internal/port"
)

// Strategy selects how field extraction is performed.
type Strategy string

const (
	// StrategyDirect sends the document image with the extraction prompt.
	StrategyDirect Strategy = "direct"

	// StrategyOCRAssisted transcribes the document first and appends the
	// transcript to the extraction prompt. One extra model call, higher
	// field recovery on low-quality scans.
	StrategyOCRAssisted Strategy = "ocr_assisted"
)

// ParseStrategy maps a config string to a Strategy, defaulting to direct.
func ParseStrategy(s string) Strategy {
	if Strategy(s) == StrategyOCRAssisted {
		return StrategyOCRAssisted
	}
	return StrategyDirect
}

// Extractor produces normalized field records from document images via the
// model gateway. Gateway and parse failures never escape Extract: they are
// absorbed into an empty record here, at the single boundary the rest of the
// pipeline relies on, so every downstream check sees a well-shaped record.
type Extractor struct {
	gateway  port.ModelGateway
	strategy Strategy
}

// NewExtractor creates an Extractor using the given gateway and strategy.
func NewExtractor(gw port.ModelGateway, strategy Strategy) *Extractor {
	return &Extractor{gateway: gw, strategy: strategy}
}

// ModelName reports the underlying vision model, for audit trails.
func (e *Extractor) ModelName() string {
	return e.gateway.ModelName()
}

// Extract runs field extraction for one document. The returned record always
// carries the full declared key set for docType; on any failure every value
// is nil and the failure is logged.
func (e *Extractor) Extract(ctx context.Context, fileBytes []byte, contentType string, docType domain.DocumentType) domain.FieldRecord {
	prompt := BuildExtractionPrompt(docType)

	if e.strategy == StrategyOCRAssisted {
		transcript, err := e.gateway.Transcribe(ctx, fileBytes, contentType)
		if err != nil {
			// Fall back to the direct prompt rather than failing the run.
			log.Printf("extract.Extractor: transcription failed, using direct prompt: %v", err)
		} else {
			prompt = AppendTranscript(prompt, transcript)
		}
	}

	text, err := e.gateway.Infer(ctx, port.InferInput{
		FileBytes:   fileBytes,
		ContentType: contentType,
		Prompt:      prompt,
	})
	if err != nil {
		log.Printf("extract.Extractor: gateway inference failed for %s: %v", docType, err)
		return domain.NewFieldRecord(docType)
	}

	parsed, err := ParseObject(text)
	if err != nil {
		log.Printf("extract.Extractor: %v", err)
		return domain.NewFieldRecord(docType)
	}

	return domain.NormalizeFieldRecord(parsed, docType)
}
