package gcal

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

// ErrNoCredential is returned when no access token is available.
var ErrNoCredential = errors.New("gcal: no access token")

// APIError is a failed Google Calendar call.
type APIError struct {
	Op     string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gcal: %s failed (%d): %s", e.Op, e.Status, e.Body)
}

// Retryable reports whether the status is a rate limit or a server error.
func (e *APIError) Retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// NotFound reports a 404 status.
func (e *APIError) NotFound() bool {
	return e.Status == http.StatusNotFound
}

// wrapError converts SDK errors into *APIError. Other errors (transport,
// context) are wrapped with op and left non-retryable.
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		body := gerr.Body
		if body == "" {
			body = gerr.Message
		}
		return &APIError{Op: op, Status: gerr.Code, Body: body}
	}
	return fmt.Errorf("gcal: %s: %w", op, err)
}

func isRetryable(err error) bool {
	var aerr *APIError
	return errors.As(err, &aerr) && aerr.Retryable()
}

func isNotFound(err error) bool {
	var aerr *APIError
	return errors.As(err, &aerr) && aerr.NotFound()
}
