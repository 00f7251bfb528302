package claudecli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Runner executes the claude CLI in print mode
type Runner struct {
	Bin     string
	Timeout time.Duration // 0 means no extra deadline beyond ctx
}

// ClaudeResponse represents the JSON response from claude
type ClaudeResponse struct {
	Type       string  `json:"type"`
	Subtype    string  `json:"subtype"`
	IsError    bool    `json:"is_error"`
	DurationMs int     `json:"duration_ms"`
	Result     string  `json:"result"`
	SessionID  string  `json:"session_id"`
	TotalCost  float64 `json:"total_cost_usd"`
}

// RunOptions contains options for claude execution
type RunOptions struct {
	Model           string   // --model
	DisallowedTools []string // Tools to disallow
}

// Run executes `claude -p --output-format json <prompt>` and returns the result text
func (r Runner) Run(ctx context.Context, prompt string, extraArgs ...string) (string, error) {
	resp, err := r.RunWithOptions(ctx, prompt, nil, extraArgs...)
	if err != nil {
		return "", err
	}
	return resp.Result, nil
}

// RunWithOptions is Run with model and tool restrictions, returning the full response
func (r Runner) RunWithOptions(ctx context.Context, prompt string, opts *RunOptions, extraArgs ...string) (*ClaudeResponse, error) {
	args := []string{"-p", "--output-format", "json"}

	if opts != nil {
		if opts.Model != "" {
			args = append(args, "--model", opts.Model)
		}
		if len(opts.DisallowedTools) > 0 {
			args = append(args, "--disallowed-tools", strings.Join(opts.DisallowedTools, ","))
		}
	}

	args = append(args, extraArgs...)
	args = append(args, prompt)

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.Bin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("claude execution aborted: %w", ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("claude exited with code %d: %s", exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return nil, fmt.Errorf("claude execution failed: %w", err)
	}

	var response ClaudeResponse
	if err := json.Unmarshal(stdout.Bytes(), &response); err != nil {
		// Older CLI versions print plain text
		return &ClaudeResponse{Type: "result", Result: stdout.String()}, nil
	}

	if response.IsError {
		return nil, fmt.Errorf("claude returned error: %s", response.Result)
	}
	return &response, nil
}
