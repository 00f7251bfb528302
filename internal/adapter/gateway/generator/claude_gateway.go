package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/YoshitsuguKoike/noterefiner/internal/application/port/output"
)

// Anthropic API defaults
const (
	DefaultClaudeBaseURL   = "https://api.anthropic.com"
	DefaultClaudeModel     = "claude-sonnet-4-5"
	DefaultClaudeMaxTokens = 2048
	anthropicVersion       = "2023-06-01"
)

// ClaudeGateway implements TextGenerator for the Anthropic Messages API
type ClaudeGateway struct {
	apiKey     string
	apiURL     string
	model      string
	httpClient *http.Client
}

// NewClaudeGateway creates a new Claude API gateway
func NewClaudeGateway(apiKey, baseURL, model string) *ClaudeGateway {
	if baseURL == "" {
		baseURL = DefaultClaudeBaseURL
	}
	if model == "" {
		model = DefaultClaudeModel
	}
	return &ClaudeGateway{
		apiKey: apiKey,
		apiURL: strings.TrimRight(baseURL, "/") + "/v1/messages",
		model:  model,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

// Name returns "claude"
func (g *ClaudeGateway) Name() string { return "claude" }

// Generate sends the prompt as one user message
func (g *ClaudeGateway) Generate(ctx context.Context, req output.GenerationRequest) (*output.GenerationResponse, error) {
	start := time.Now()

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultClaudeMaxTokens
	}

	claudeReq := ClaudeRequest{
		Model:       g.model,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
		Messages: []Message{
			{Role: "user", Content: req.Prompt},
		},
	}

	resp, err := g.callClaudeAPI(ctx, claudeReq)
	if err != nil {
		return nil, fmt.Errorf("Claude API call failed: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	return &output.GenerationResponse{
		Text:       sb.String(),
		Model:      resp.Model,
		Duration:   time.Since(start),
		TokensUsed: resp.Usage.InputTokens + resp.Usage.OutputTokens,
		Metadata: map[string]string{
			"stop_reason":   resp.StopReason,
			"input_tokens":  fmt.Sprintf("%d", resp.Usage.InputTokens),
			"output_tokens": fmt.Sprintf("%d", resp.Usage.OutputTokens),
		},
	}, nil
}

// HealthCheck sends a minimal request
func (g *ClaudeGateway) HealthCheck(ctx context.Context) error {
	req := ClaudeRequest{
		Model:     g.model,
		MaxTokens: 10,
		Messages: []Message{
			{Role: "user", Content: "ping"},
		},
	}

	_, err := g.callClaudeAPI(ctx, req)
	return err
}

// callClaudeAPI makes an HTTP request to the Messages API
func (g *ClaudeGateway) callClaudeAPI(ctx context.Context, req ClaudeRequest) (*ClaudeResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", g.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	httpResp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var claudeResp ClaudeResponse
	decodeErr := json.Unmarshal(respBody, &claudeResp)

	if httpResp.StatusCode != http.StatusOK {
		if decodeErr == nil && claudeResp.Error.Message != "" {
			return nil, fmt.Errorf("API error (%d): %s - %s", httpResp.StatusCode, claudeResp.Error.Type, claudeResp.Error.Message)
		}
		return nil, fmt.Errorf("API error: status %d", httpResp.StatusCode)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode response: %w", decodeErr)
	}

	return &claudeResp, nil
}

// Claude API request/response types
type ClaudeRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ClaudeResponse struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Role       string          `json:"role"`
	Content    []ContentBlock  `json:"content"`
	Model      string          `json:"model"`
	StopReason string          `json:"stop_reason"`
	Usage      Usage           `json:"usage"`
	Error      ClaudeErrorResp `json:"error,omitempty"`
}

type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type ClaudeErrorResp struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
