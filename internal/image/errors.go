package image

import (
	"errors"
	"fmt"
	"strings"
)

var ErrMissingKey = errors.New("image: no api key configured, set HF_API_KEY or HF_API_KEY_PARAM")

// APIError is a non-2xx answer from the inference endpoint.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("inference api returned status %d", e.StatusCode)
	}
	return e.Message
}

// Loading reports whether the backend is still warming the model up.
func (e *APIError) Loading() bool {
	return strings.Contains(e.Message, "loading")
}

// IsLoading reports whether err carries the model-loading signal.
func IsLoading(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Loading()
}
