package providers

import (
	"errors"
	"fmt"
	"time"
)

// ErrProviderUnavailable is returned when no upstream source is configured.
var ErrProviderUnavailable = errors.New("roster source unavailable")

// StatusError reports a non-success HTTP response from an upstream source.
// Body is kept for logs and never part of the message.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s responded with status %d", e.providerName(), e.StatusCode)
}

func (e *StatusError) providerName() string {
	if e.Provider == "" {
		return "source"
	}
	return e.Provider
}

// RateLimitError captures rate limit responses from upstream sources.
type RateLimitError struct {
	Provider   string
	StatusCode int
	RetryAfter time.Duration
	Remaining  string
	Message    string
}

func (e *RateLimitError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "source rate limited"
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (status=%d)", msg, e.StatusCode)
	}
	return msg
}

// AsRateLimitError attempts to unwrap an error into a RateLimitError.
func AsRateLimitError(err error) (*RateLimitError, bool) {
	var rlErr *RateLimitError
	if errors.As(err, &rlErr) {
		return rlErr, true
	}
	return nil, false
}

// AsStatusError attempts to unwrap an error into a StatusError.
func AsStatusError(err error) (*StatusError, bool) {
	var stErr *StatusError
	if errors.As(err, &stErr) {
		return stErr, true
	}
	return nil, false
}

// errorLogArgs returns the log attributes for a fetch error, adding the
// upstream response body when there is one.
func errorLogArgs(err error) []any {
	args := []any{"err", err}
	if st, ok := AsStatusError(err); ok && st.Body != "" {
		args = append(args, "upstream_body", st.Body)
	}
	return args
}

// LoadError is the human-readable form of a failed roster load.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string {
	return "failed to load roster: " + e.Err.Error()
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
