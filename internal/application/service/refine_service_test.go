package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YoshitsuguKoike/noterefiner/internal/application/port/output"
	"github.com/YoshitsuguKoike/noterefiner/internal/domain/mode"
	"github.com/YoshitsuguKoike/noterefiner/internal/domain/refine"
)

// fakeGenerator records prompts and answers with GenerateFunc
type fakeGenerator struct {
	GenerateFunc func(ctx context.Context, req output.GenerationRequest) (*output.GenerationResponse, error)
	prompts      []string
}

func (g *fakeGenerator) Generate(ctx context.Context, req output.GenerationRequest) (*output.GenerationResponse, error) {
	g.prompts = append(g.prompts, req.Prompt)
	if g.GenerateFunc != nil {
		return g.GenerateFunc(ctx, req)
	}
	return &output.GenerationResponse{Text: "ok", Model: "fake"}, nil
}

func (g *fakeGenerator) Name() string { return "fake" }

func (g *fakeGenerator) HealthCheck(ctx context.Context) error { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRefineService(gen output.TextGenerator, timeout time.Duration) *RefineService {
	return NewRefineService(nil, gen, RefineConfig{Timeout: timeout}, discardLogger())
}

func TestRefineService_PromptShape(t *testing.T) {
	gen := &fakeGenerator{}
	svc := newTestRefineService(gen, time.Second)

	note := "  user cant login\n- tried reset <script>  "
	_, err := svc.Refine(context.Background(), note, mode.KBArticle)
	require.NoError(t, err)

	require.Len(t, gen.prompts, 1)
	assert.Equal(t, mode.Resolve(mode.KBArticle)+"\n\nUSER NOTES:\n"+note, gen.prompts[0])
}

func TestRefineService_UnknownModeUsesDefault(t *testing.T) {
	gen := &fakeGenerator{}
	svc := newTestRefineService(gen, time.Second)

	_, err := svc.Refine(context.Background(), "hello", "sonnet")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(gen.prompts[0], "Refine this text to be professional and clear."))
}

func TestRefineService_ReturnsOutputUnmodified(t *testing.T) {
	want := "Subject: Server outage\n\n**Summary**\n  - restarted\n"
	gen := &fakeGenerator{GenerateFunc: func(ctx context.Context, req output.GenerationRequest) (*output.GenerationResponse, error) {
		return &output.GenerationResponse{Text: want}, nil
	}}

	got, err := newTestRefineService(gen, time.Second).Refine(context.Background(), "server down", mode.Email)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRefineService_EmptyNoteFailsFast(t *testing.T) {
	for _, note := range []string{"", "   ", "\n\t"} {
		gen := &fakeGenerator{}
		_, err := newTestRefineService(gen, time.Second).Refine(context.Background(), note, mode.Email)

		require.Error(t, err)
		assert.True(t, refine.IsValidation(err))
		assert.Empty(t, gen.prompts, "no outbound call for %q", note)
	}
}

func TestRefineService_UpstreamFailures(t *testing.T) {
	tests := []struct {
		name string
		fn   func(ctx context.Context, req output.GenerationRequest) (*output.GenerationResponse, error)
	}{
		{"transport", func(ctx context.Context, req output.GenerationRequest) (*output.GenerationResponse, error) {
			return nil, errors.New("dial tcp 10.0.0.1:443: connection refused")
		}},
		{"status", func(ctx context.Context, req output.GenerationRequest) (*output.GenerationResponse, error) {
			return nil, errors.New("API error (503): UNAVAILABLE")
		}},
		{"nil response", func(ctx context.Context, req output.GenerationRequest) (*output.GenerationResponse, error) {
			return nil, nil
		}},
		{"blank text", func(ctx context.Context, req output.GenerationRequest) (*output.GenerationResponse, error) {
			return &output.GenerationResponse{Text: " \n "}, nil
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			gen := &fakeGenerator{GenerateFunc: tt.fn}
			svc := NewRefineService(nil, gen, RefineConfig{Timeout: time.Second}, slog.New(slog.NewTextHandler(&logs, nil)))

			out, err := svc.Refine(context.Background(), "note", mode.TechSupport)
			require.Error(t, err)
			assert.Empty(t, out)
			assert.True(t, refine.IsUpstream(err))
			assert.Equal(t, "[UPSTREAM] Failed to refine note.", err.Error())
			assert.Len(t, gen.prompts, 1, "exactly one call, no retry")
			assert.Contains(t, logs.String(), "request_id=")
		})
	}
}

func TestRefineService_DetailOnlyInLogs(t *testing.T) {
	var logs bytes.Buffer
	gen := &fakeGenerator{GenerateFunc: func(ctx context.Context, req output.GenerationRequest) (*output.GenerationResponse, error) {
		return nil, errors.New("API error (400): API key not valid")
	}}
	svc := NewRefineService(nil, gen, RefineConfig{}, slog.New(slog.NewTextHandler(&logs, nil)))

	_, err := svc.Refine(context.Background(), "note", mode.Email)
	require.Error(t, err)

	assert.NotContains(t, err.Error(), "API key")
	assert.Contains(t, logs.String(), "API key not valid")
}

func TestRefineService_Timeout(t *testing.T) {
	gen := &fakeGenerator{GenerateFunc: func(ctx context.Context, req output.GenerationRequest) (*output.GenerationResponse, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}

	_, err := newTestRefineService(gen, 20*time.Millisecond).Refine(context.Background(), "note", mode.Email)
	require.Error(t, err)
	assert.True(t, refine.IsTimeout(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRefineService_CallerCancellationIsUpstream(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	gen := &fakeGenerator{GenerateFunc: func(ctx context.Context, req output.GenerationRequest) (*output.GenerationResponse, error) {
		cancel()
		<-ctx.Done()
		return nil, ctx.Err()
	}}

	_, err := newTestRefineService(gen, time.Minute).Refine(ctx, "note", mode.Email)
	require.Error(t, err)
	assert.True(t, refine.IsUpstream(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRefineService_NonEmptyOrClassified(t *testing.T) {
	outputs := []string{"x", "", "  ", "long output"}
	for _, o := range outputs {
		o := o
		gen := &fakeGenerator{GenerateFunc: func(ctx context.Context, req output.GenerationRequest) (*output.GenerationResponse, error) {
			return &output.GenerationResponse{Text: o}, nil
		}}
		for _, m := range []string{mode.TechSupport, mode.Email, mode.MeetingMinutes, mode.KBArticle, "other"} {
			got, err := newTestRefineService(gen, time.Second).Refine(context.Background(), "n", m)
			if err != nil {
				assert.NotEqual(t, refine.Kind(""), refine.KindOf(err))
				continue
			}
			assert.NotEmpty(t, strings.TrimSpace(got))
		}
	}
}
