package extraction

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"tron-receipt-validator/internal/domain"
)

// DefaultGeminiBaseURL is the production Generative Language API endpoint.
const DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

// DefaultGeminiModel is the extraction model used when none is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// extractionPrompt instructs the model to emit strict JSON with exactly the
// claim fields the pipeline consumes.
const extractionPrompt = `You are an invoice OCR/IE agent for USDT TRC-20 receipts. Extract ONLY these fields and return STRICT JSON.
{
  "txid": "string | null (The 64-character transaction hash)",
  "explorer_url": "string | null (If a URL like tronscan.org/... is present)",
  "from_address": "string | null (The sender's 'T...' address)",
  "to_address": "string | null (The recipient's 'T...' address)",
  "amount": "number | null (The amount of USDT, always positive)",
  "timestamp": "string | null (The UTC timestamp of the transaction if available, e.g., '2025-11-05 11:47:45')"
}`

// GeminiExtractor implements Extractor against the Gemini REST API.
type GeminiExtractor struct {
	baseURL string
	model   string
	apiKey  string
	client  *http.Client
}

// GeminiOption configures GeminiExtractor.
type GeminiOption func(*GeminiExtractor)

// WithGeminiBaseURL overrides the API base URL (used in tests).
func WithGeminiBaseURL(u string) GeminiOption {
	return func(e *GeminiExtractor) {
		e.baseURL = u
	}
}

// WithGeminiHTTPClient sets a custom http.Client.
func WithGeminiHTTPClient(c *http.Client) GeminiOption {
	return func(e *GeminiExtractor) {
		e.client = c
	}
}

// NewGeminiExtractor creates an Extractor backed by the given model.
func NewGeminiExtractor(model, apiKey string, opts ...GeminiOption) *GeminiExtractor {
	if model == "" {
		model = DefaultGeminiModel
	}
	e := &GeminiExtractor{
		baseURL: DefaultGeminiBaseURL,
		model:   model,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compile-time interface check.
var _ Extractor = (*GeminiExtractor)(nil)

// ExtractClaim sends the receipt image to the model and decodes its JSON
// reply into a Claim.
func (e *GeminiExtractor) ExtractClaim(ctx context.Context, image []byte) (domain.Claim, error) {
	req := generateRequest{
		Contents: []content{{
			Parts: []part{
				{Text: extractionPrompt},
				{InlineData: &inlineData{
					MimeType: "image/png",
					Data:     base64.StdEncoding.EncodeToString(image),
				}},
			},
		}},
		GenerationConfig: &generationConfig{
			Temperature:      0,
			ResponseMimeType: "application/json",
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return domain.Claim{}, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", e.baseURL, e.model, e.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.Claim{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return domain.Claim{}, fmt.Errorf("call model: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Claim{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return domain.Claim{}, fmt.Errorf("model returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result generateResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return domain.Claim{}, fmt.Errorf("unmarshal response: %w", err)
	}

	return DecodeClaim(result.text())
}

// Gemini REST wire types.

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMimeType string  `json:"response_mime_type,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// text concatenates the reply parts of the first candidate.
func (r *generateResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var out string
	for _, p := range r.Candidates[0].Content.Parts {
		out += p.Text
	}
	return out
}
