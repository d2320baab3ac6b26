package client

import (
	"errors"
	"fmt"

	"github.com/mrlokans/accounts/internal/policy"
)

// APIError is a non-success response from the accounts server.
type APIError struct {
	Status  int
	Message string
	Fields  policy.FieldErrors
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("accounts server returned HTTP %d", e.Status)
	}
	return fmt.Sprintf("accounts server returned HTTP %d: %s", e.Status, e.Message)
}

// NetworkError means the request never produced an HTTP response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// AsAPIError reports whether err carries an APIError and returns it.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsNetworkError reports whether err is a transport failure.
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}
