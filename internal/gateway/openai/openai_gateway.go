package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"veridoc/internal/config"
	"veridoc/internal/gateway"
	"veridoc/internal/port"
)

const (
	apiURL = "https://api.openai.com/v1/chat/completions"

	transcribePrompt = "Transcribe all legible text exactly as seen (no summaries)."
)

func init() {
	gateway.RegisterProvider("openai", func(cfg *config.GatewayProviderConfig) (port.ModelGateway, error) {
		return NewGateway(cfg), nil
	})
}

// Gateway implements port.ModelGateway using the OpenAI Chat Completions
// API. Transcription reuses the vision model unless a dedicated OCR model is
// configured.
type Gateway struct {
	apiKey   string
	model    string
	ocrModel string
	endpoint string
	client   *http.Client
}

// NewGateway creates an OpenAI-based model gateway from a provider config.
func NewGateway(cfg *config.GatewayProviderConfig) *Gateway {
	return newGateway(cfg, apiURL)
}

// NewGatewayWithEndpoint creates a gateway pointing at a custom API endpoint (for testing).
func NewGatewayWithEndpoint(cfg *config.GatewayProviderConfig, endpoint string) *Gateway {
	return newGateway(cfg, endpoint)
}

func newGateway(cfg *config.GatewayProviderConfig, endpoint string) *Gateway {
	model := cfg.Model
	if model == "" {
		model = "gpt-4o"
	}
	ocrModel := cfg.OCRModel
	if ocrModel == "" {
		ocrModel = model
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Gateway{
		apiKey:   cfg.APIKey,
		model:    model,
		ocrModel: ocrModel,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// ModelName identifies the vision model.
func (g *Gateway) ModelName() string {
	return g.model
}

func (g *Gateway) Infer(ctx context.Context, input port.InferInput) (string, error) {
	content, err := buildContentBlocks(input.FileBytes, input.ContentType, input.Prompt)
	if err != nil {
		return "", fmt.Errorf("building content blocks: %w", err)
	}
	return g.complete(ctx, g.model, content)
}

func (g *Gateway) InferText(ctx context.Context, prompt string) (string, error) {
	return g.complete(ctx, g.model, prompt)
}

func (g *Gateway) Transcribe(ctx context.Context, fileBytes []byte, contentType string) (string, error) {
	content, err := buildContentBlocks(fileBytes, contentType, transcribePrompt)
	if err != nil {
		return "", fmt.Errorf("building content blocks: %w", err)
	}
	return g.complete(ctx, g.ocrModel, content)
}

func (g *Gateway) complete(ctx context.Context, model string, content interface{}) (string, error) {
	reqBody := map[string]interface{}{
		"model":                 model,
		"max_completion_tokens": 4096,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": content,
			},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling openai API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("openai API error (status %d): %s", resp.StatusCode, string(respBody))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := gateway.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return "", gateway.NewRateLimitError("openai", baseErr, retryAfter)
		}
		return "", baseErr
	}

	return extractText(respBody)
}

func buildContentBlocks(fileBytes []byte, contentType, prompt string) ([]map[string]interface{}, error) {
	encoded := base64.StdEncoding.EncodeToString(fileBytes)
	var blocks []map[string]interface{}

	switch contentType {
	case "application/pdf":
		dataURI := fmt.Sprintf("data:%s;base64,%s", contentType, encoded)
		blocks = append(blocks, map[string]interface{}{
			"type": "file",
			"file": map[string]interface{}{
				"filename":  "document.pdf",
				"file_data": dataURI,
			},
		})
	case "image/jpeg", "image/png":
		dataURI := fmt.Sprintf("data:%s;base64,%s", contentType, encoded)
		blocks = append(blocks, map[string]interface{}{
			"type": "image_url",
			"image_url": map[string]interface{}{
				"url": dataURI,
			},
		})
	default:
		return nil, fmt.Errorf("unsupported content type: %s", contentType)
	}

	blocks = append(blocks, map[string]interface{}{
		"type": "text",
		"text": prompt,
	})

	return blocks, nil
}

// apiResponse models the OpenAI Chat Completions API response.
type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func extractText(body []byte) (string, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from API: no choices")
	}

	if resp.Choices[0].FinishReason == "length" {
		return "", fmt.Errorf("output truncated (finish_reason: length): response exceeded output token limit")
	}

	return resp.Choices[0].Message.Content, nil
}
