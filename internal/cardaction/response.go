package cardaction

import (
	"errors"
	"fmt"
	"net/http"
)

// Invoke response body content types.
const (
	ContentTypeAdaptiveCard = "application/vnd.microsoft.card.adaptive"
	ContentTypeMessage      = "application/vnd.microsoft.activity.message"
	ContentTypeError        = "application/vnd.microsoft.error"
)

// defaultResponseMessage acknowledges an action when the handler produced no
// card of its own.
const defaultResponseMessage = "Your response was sent to the app"

// Construction errors for invoke responses.
var (
	ErrEmptyMessage       = errors.New("the text message cannot be empty")
	ErrMissingCardContent = errors.New("adaptive card content cannot be found in the response body")
	ErrInvalidStatusCode  = errors.New("error response status code must be 400 or 500")
)

// InvokeResponse is the acknowledgment closing a synchronous invoke.
type InvokeResponse struct {
	Status int                 `json:"status"`
	Body   *InvokeResponseBody `json:"body,omitempty"`
}

// InvokeResponseBody carries the acknowledgment payload: a card, a plain
// text message, or an error descriptor, discriminated by Type.
type InvokeResponseBody struct {
	StatusCode int    `json:"statusCode"`
	Type       string `json:"type"`
	Value      any    `json:"value,omitempty"`
}

// ErrorBody is the value of an error invoke response.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewTextMessageResponse builds an acknowledgment carrying a plain text
// message. The message must not be empty.
func NewTextMessageResponse(message string) (*InvokeResponse, error) {
	if message == "" {
		return nil, ErrEmptyMessage
	}

	return &InvokeResponse{
		Status: http.StatusOK,
		Body: &InvokeResponseBody{
			StatusCode: http.StatusOK,
			Type:       ContentTypeMessage,
			Value:      message,
		},
	}, nil
}

// NewAdaptiveCardResponse builds an acknowledgment carrying an adaptive card.
func NewAdaptiveCardResponse(card *AdaptiveCard) (*InvokeResponse, error) {
	if card == nil {
		return nil, ErrMissingCardContent
	}

	return &InvokeResponse{
		Status: http.StatusOK,
		Body: &InvokeResponseBody{
			StatusCode: http.StatusOK,
			Type:       ContentTypeAdaptiveCard,
			Value:      card,
		},
	}, nil
}

// NewErrorResponse builds an error acknowledgment. Only bad request (400) and
// internal error (500) are valid; any other status code is a construction
// error and never reaches the network.
func NewErrorResponse(statusCode int, message string) (*InvokeResponse, error) {
	if statusCode != http.StatusBadRequest && statusCode != http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidStatusCode, statusCode)
	}

	return &InvokeResponse{
		Status: http.StatusOK,
		Body: &InvokeResponseBody{
			StatusCode: statusCode,
			Type:       ContentTypeError,
			Value: ErrorBody{
				Code:    fmt.Sprintf("%d", statusCode),
				Message: message,
			},
		},
	}, nil
}

// newEmptyResponse builds the empty-body acknowledgment used when no handler
// is registered for a verb, so the platform does not treat the turn as
// unhandled.
func newEmptyResponse() *InvokeResponse {
	return &InvokeResponse{Status: http.StatusOK}
}

// newDefaultResponse builds the fallback text acknowledgment.
func newDefaultResponse() *InvokeResponse {
	return &InvokeResponse{
		Status: http.StatusOK,
		Body: &InvokeResponseBody{
			StatusCode: http.StatusOK,
			Type:       ContentTypeMessage,
			Value:      defaultResponseMessage,
		},
	}
}

// newBadRequestResponse builds the error acknowledgment for a payload that
// failed to decode into the verb's declared type.
func newBadRequestResponse(message string) *InvokeResponse {
	return &InvokeResponse{
		Status: http.StatusOK,
		Body: &InvokeResponseBody{
			StatusCode: http.StatusBadRequest,
			Type:       ContentTypeError,
			Value: ErrorBody{
				Code:    fmt.Sprintf("%d", http.StatusBadRequest),
				Message: message,
			},
		},
	}
}
