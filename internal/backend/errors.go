package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrUnauthorized means the token was rejected (expired, invalid or revoked).
var ErrUnauthorized = errors.New("backend rejected credentials")

// APIError is any other non-2xx answer.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend returned %d", e.Status)
	}
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Body)
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return ErrUnauthorized
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &APIError{Status: resp.StatusCode, Body: string(body)}
}

// IsCanceled reports whether err came from an aborted request. Callers
// treat those as silent no-ops.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
