package cardaction_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dooriya/WorkflowBot/internal/cardaction"
)

func TestNewTextMessageResponse(t *testing.T) {
	t.Parallel()

	resp, err := cardaction.NewTextMessageResponse("done")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	require.NotNil(t, resp.Body)
	assert.Equal(t, http.StatusOK, resp.Body.StatusCode)
	assert.Equal(t, cardaction.ContentTypeMessage, resp.Body.Type)
	assert.Equal(t, "done", resp.Body.Value)

	_, err = cardaction.NewTextMessageResponse("")
	assert.ErrorIs(t, err, cardaction.ErrEmptyMessage)
}

func TestNewAdaptiveCardResponse(t *testing.T) {
	t.Parallel()

	card := cardaction.NewAdaptiveCard()
	card.Body = []map[string]any{{"type": "TextBlock", "text": "hi"}}

	resp, err := cardaction.NewAdaptiveCardResponse(card)
	require.NoError(t, err)
	assert.Equal(t, cardaction.ContentTypeAdaptiveCard, resp.Body.Type)
	assert.Equal(t, card, resp.Body.Value)

	_, err = cardaction.NewAdaptiveCardResponse(nil)
	assert.ErrorIs(t, err, cardaction.ErrMissingCardContent)
}

func TestNewErrorResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		statusCode int
		wantErr    bool
	}{
		{"bad request is valid", http.StatusBadRequest, false},
		{"internal error is valid", http.StatusInternalServerError, false},
		{"ok is rejected", http.StatusOK, true},
		{"arbitrary code is rejected", 999, true},
		{"not found is rejected", http.StatusNotFound, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resp, err := cardaction.NewErrorResponse(tt.statusCode, "x")
			if tt.wantErr {
				assert.ErrorIs(t, err, cardaction.ErrInvalidStatusCode)
				assert.Nil(t, resp)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.Status)
			assert.Equal(t, tt.statusCode, resp.Body.StatusCode)
			assert.Equal(t, cardaction.ContentTypeError, resp.Body.Type)
			body, ok := resp.Body.Value.(cardaction.ErrorBody)
			require.True(t, ok)
			assert.Equal(t, "x", body.Message)
		})
	}
}
