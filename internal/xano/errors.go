package xano

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized matches any APIError carrying HTTP 401.
	ErrUnauthorized = errors.New("xano: unauthorized")
	// ErrTransport marks network failures and unreadable responses. Nothing is retried.
	ErrTransport = errors.New("xano: transport failure")
)

const (
	defaultErrorMessage = "API Error"
	defaultErrorCode    = "UNKNOWN"
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Field   string `json:"field,omitempty"`
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("xano %d %s: %s (field %s)", e.Status, e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("xano %d %s: %s", e.Status, e.Code, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// ExtractError builds an APIError from an error body. Missing or non-string
// members fall back to "API Error" / "UNKNOWN"; a body that is not a JSON
// object yields both defaults.
func ExtractError(status int, body []byte) *APIError {
	apiErr := &APIError{
		Code:    defaultErrorCode,
		Message: defaultErrorMessage,
		Status:  status,
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return apiErr
	}

	if msg, ok := fields["message"].(string); ok && msg != "" {
		apiErr.Message = msg
	}
	if code, ok := fields["code"].(string); ok && code != "" {
		apiErr.Code = code
	}
	if field, ok := fields["field"].(string); ok {
		apiErr.Field = field
	}
	return apiErr
}

// AsAPIError unwraps err to the backend error, if any.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
