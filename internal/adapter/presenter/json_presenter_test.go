package presenter_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YoshitsuguKoike/noterefiner/internal/adapter/presenter"
	"github.com/YoshitsuguKoike/noterefiner/internal/application/dto"
	"github.com/YoshitsuguKoike/noterefiner/internal/domain/refine"
)

func TestJSONPresenter_PresentSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	p := presenter.NewJSONPresenter(buf)

	data := &dto.RefineResult{Mode: "email", Label: "Professional Email", Input: "x", Output: "Subject: y"}
	require.NoError(t, p.PresentSuccess("Saved to History!", data))

	var result struct {
		Success bool             `json:"success"`
		Message string           `json:"message"`
		Data    dto.RefineResult `json:"data"`
	}
	require.NoError(t, json.NewDecoder(buf).Decode(&result))

	assert.True(t, result.Success)
	assert.Equal(t, "Saved to History!", result.Message)
	assert.Equal(t, *data, result.Data)
}

func TestJSONPresenter_PresentError(t *testing.T) {
	t.Run("plain error", func(t *testing.T) {
		buf := &bytes.Buffer{}
		require.NoError(t, presenter.NewJSONPresenter(buf).PresentError(errors.New("test error")))

		var result map[string]interface{}
		require.NoError(t, json.NewDecoder(buf).Decode(&result))
		assert.Equal(t, false, result["success"])
		assert.Equal(t, "test error", result["error"])
		assert.NotContains(t, result, "kind")
	})

	t.Run("refine error hides cause", func(t *testing.T) {
		buf := &bytes.Buffer{}
		err := refine.Upstream(errors.New("API key not valid"))
		require.NoError(t, presenter.NewJSONPresenter(buf).PresentError(err))

		var result map[string]interface{}
		require.NoError(t, json.NewDecoder(buf).Decode(&result))
		assert.Equal(t, refine.MsgRefineFailed, result["error"])
		assert.Equal(t, "UPSTREAM", result["kind"])
		assert.NotContains(t, buf.String(), "API key")
	})
}
