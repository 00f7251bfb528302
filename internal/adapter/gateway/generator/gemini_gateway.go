package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/YoshitsuguKoike/noterefiner/internal/application/port/output"
)

// Gemini API defaults
const (
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	DefaultGeminiModel   = "gemini-flash-latest"
)

// GeminiGateway implements TextGenerator for the Gemini generateContent REST API
type GeminiGateway struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewGeminiGateway creates a new Gemini gateway. Empty baseURL and model use the defaults.
func NewGeminiGateway(apiKey, baseURL, model string) *GeminiGateway {
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiGateway{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

// Name returns "gemini"
func (g *GeminiGateway) Name() string { return "gemini" }

// Generate sends the prompt as a single user turn
func (g *GeminiGateway) Generate(ctx context.Context, req output.GenerationRequest) (*output.GenerationResponse, error) {
	start := time.Now()

	geminiReq := GeminiRequest{
		Contents: []GeminiContent{
			{Role: "user", Parts: []GeminiPart{{Text: req.Prompt}}},
		},
	}
	if req.MaxTokens > 0 || req.Temperature > 0 {
		geminiReq.GenerationConfig = &GenerationConfig{
			MaxOutputTokens: req.MaxTokens,
			Temperature:     req.Temperature,
		}
	}

	resp, err := g.callGeminiAPI(ctx, geminiReq)
	if err != nil {
		return nil, fmt.Errorf("Gemini API call failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		reason := "no candidates"
		if len(resp.Candidates) > 0 {
			reason = "finish reason " + resp.Candidates[0].FinishReason
		}
		if resp.PromptFeedback.BlockReason != "" {
			reason = "blocked: " + resp.PromptFeedback.BlockReason
		}
		return nil, fmt.Errorf("Gemini returned no text (%s)", reason)
	}

	metadata := map[string]string{
		"model": g.model,
	}
	if len(resp.Candidates) > 0 {
		metadata["finish_reason"] = resp.Candidates[0].FinishReason
	}

	return &output.GenerationResponse{
		Text:       text,
		Model:      g.model,
		Duration:   time.Since(start),
		TokensUsed: resp.UsageMetadata.TotalTokenCount,
		Metadata:   metadata,
	}, nil
}

// HealthCheck fetches the model resource, which needs a valid key but no quota
func (g *GeminiGateway) HealthCheck(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/v1beta/models/%s", g.baseURL, url.PathEscape(g.model))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	httpResp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(httpResp.Body, 4096))
		return apiError(httpResp.StatusCode, body)
	}
	return nil
}

// callGeminiAPI makes an HTTP request to the generateContent endpoint
func (g *GeminiGateway) callGeminiAPI(ctx context.Context, req GeminiRequest) (*GeminiResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, url.PathEscape(g.model))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	httpResp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, apiError(httpResp.StatusCode, respBody)
	}

	var geminiResp GeminiResponse
	if err := json.Unmarshal(respBody, &geminiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &geminiResp, nil
}

// apiError formats a non-200 response, using the Google error envelope when present
func apiError(status int, body []byte) error {
	var envelope struct {
		Error GeminiError `json:"error"`
	}
	if json.Unmarshal(body, &envelope) == nil && envelope.Error.Message != "" {
		return fmt.Errorf("API error (%d): %s - %s", status, envelope.Error.Status, envelope.Error.Message)
	}
	return fmt.Errorf("API error: status %d", status)
}

// Gemini API request/response types
type GeminiRequest struct {
	Contents         []GeminiContent   `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

type GeminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []GeminiPart `json:"parts"`
}

type GeminiPart struct {
	Text string `json:"text"`
}

type GenerationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	Temperature     float64 `json:"temperature,omitempty"`
}

type GeminiResponse struct {
	Candidates     []GeminiCandidate `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

type GeminiCandidate struct {
	Content      GeminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
}

type GeminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Text concatenates the text parts of the first candidate
func (r *GeminiResponse) Text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, part := range r.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String()
}
