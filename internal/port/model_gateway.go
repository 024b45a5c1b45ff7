package port

import "context"

// InferInput carries a document image and prompt for a vision model call.
type InferInput struct {
	FileBytes   []byte
	ContentType string
	Prompt      string
}

// ModelGateway abstracts the hosted vision-language and transcription
// models. It is the sole I/O dependency of the verification core and must be
// substitutable with a deterministic stub in tests.
type ModelGateway interface {
	// Infer sends an image plus text prompt to the vision model and returns
	// the raw text reply.
	Infer(ctx context.Context, input InferInput) (string, error)

	// InferText sends a text-only prompt to the vision model.
	InferText(ctx context.Context, prompt string) (string, error)

	// Transcribe sends an image to the transcription model and returns all
	// legible text.
	Transcribe(ctx context.Context, fileBytes []byte, contentType string) (string, error)

	// ModelName identifies the vision model, for audit trails.
	ModelName() string
}
