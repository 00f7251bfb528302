package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/YoshitsuguKoike/noterefiner/internal/application/port/output"
	"github.com/YoshitsuguKoike/noterefiner/internal/domain/refine"
)

// DefaultRefineTimeout bounds one generator call when no timeout is configured.
const DefaultRefineTimeout = 60 * time.Second

// RefineConfig holds generation settings for RefineService
type RefineConfig struct {
	Timeout     time.Duration // Deadline for a single generator call
	MaxTokens   int           // Passed through to the generator (0 = backend default)
	Temperature float64       // Passed through to the generator
}

// RefineService builds the prompt for a note and delegates generation to the
// external collaborator. It implements input.Refiner.
type RefineService struct {
	prompts   *PromptBuilderService
	generator output.TextGenerator
	config    RefineConfig
	logger    *slog.Logger
}

// NewRefineService creates a new refine service
func NewRefineService(prompts *PromptBuilderService, generator output.TextGenerator, config RefineConfig, logger *slog.Logger) *RefineService {
	if prompts == nil {
		prompts = NewPromptBuilderService(nil)
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultRefineTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RefineService{
		prompts:   prompts,
		generator: generator,
		config:    config,
		logger:    logger,
	}
}

// Refine produces structured text for note in the given mode. Empty notes
// fail with a validation error before any outbound call. Every collaborator
// failure is normalized to an upstream or timeout error; the detail goes to
// the log only.
func (s *RefineService) Refine(ctx context.Context, note, modeID string) (string, error) {
	if strings.TrimSpace(note) == "" {
		return "", refine.Validation(refine.MsgNoteRequired)
	}

	requestID := ulid.Make().String()
	log := s.logger.With(
		slog.String("request_id", requestID),
		slog.String("mode", modeID),
		slog.String("generator", s.generator.Name()),
	)

	prompt := s.prompts.Build(modeID, note)

	callCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := s.generator.Generate(callCtx, output.GenerationRequest{
		Prompt:      prompt,
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
	})
	elapsed := time.Since(start)

	if err != nil {
		rerr := classify(callCtx, err)
		log.Error("generation failed",
			slog.String("kind", string(rerr.Kind)),
			slog.Duration("elapsed", elapsed),
			slog.Any("error", err),
		)
		return "", rerr
	}

	if resp == nil || strings.TrimSpace(resp.Text) == "" {
		rerr := refine.Upstream(fmt.Errorf("generator returned no text"))
		log.Error("generation returned empty output", slog.Duration("elapsed", elapsed))
		return "", rerr
	}

	log.Info("note refined",
		slog.Int("prompt_chars", len(prompt)),
		slog.Int("output_chars", len(resp.Text)),
		slog.String("model", resp.Model),
		slog.Duration("elapsed", elapsed),
	)
	return resp.Text, nil
}

// classify maps a generator error to a refinement error. Any deadline hit
// is a timeout; everything else, caller cancellation included, is upstream.
func classify(call context.Context, err error) *refine.Error {
	if errors.Is(call.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return refine.Timeout(err)
	}
	return refine.Upstream(err)
}

// Generator returns the configured collaborator
func (s *RefineService) Generator() output.TextGenerator {
	return s.generator
}
