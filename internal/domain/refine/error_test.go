package refine

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Kinds(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")

	tests := []struct {
		name    string
		err     error
		kind    Kind
		message string
	}{
		{"validation", Validation(MsgNoteRequired), KindValidation, MsgNoteRequired},
		{"upstream", Upstream(cause), KindUpstream, MsgRefineFailed},
		{"timeout", Timeout(context.DeadlineExceeded), KindTimeout, MsgRefineTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, KindOf(tt.err))

			var re *Error
			assert.True(t, errors.As(tt.err, &re))
			assert.Equal(t, tt.message, re.Message)
			assert.Equal(t, fmt.Sprintf("[%s] %s", tt.kind, tt.message), tt.err.Error())
		})
	}
}

func TestError_CauseHiddenFromMessage(t *testing.T) {
	cause := errors.New("API error (401): invalid api key sk-123")
	err := Upstream(cause)

	assert.NotContains(t, err.Error(), "sk-123")
	assert.Contains(t, err.Detail(), "sk-123")
	assert.ErrorIs(t, err, cause)
}

func TestIsHelpers(t *testing.T) {
	wrapped := fmt.Errorf("controller: %w", Timeout(context.DeadlineExceeded))

	assert.True(t, IsTimeout(wrapped))
	assert.False(t, IsUpstream(wrapped))
	assert.False(t, IsValidation(errors.New("plain")))
	assert.Equal(t, Kind(""), KindOf(nil))
	assert.ErrorIs(t, wrapped, context.DeadlineExceeded)
}
