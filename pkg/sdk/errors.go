package sdk

import (
	"errors"
	"fmt"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("askdex: %s (%d): %s", e.Code, e.StatusCode, e.Message)
}

func asAPIError(err error, target **APIError) bool {
	return errors.As(err, target)
}
