package jupiter

import (
	"fmt"
	"net/http"
	"strings"
)

// ErrorCategory buckets remote HTTP failures into actionable groups.
type ErrorCategory string

const (
	CategoryBadRequest   ErrorCategory = "bad_request"
	CategoryUnauthorized ErrorCategory = "unauthorized"
	CategoryForbidden    ErrorCategory = "forbidden"
	CategoryNotFound     ErrorCategory = "not_found"
	CategoryRateLimited  ErrorCategory = "rate_limited"
	CategoryUpstream     ErrorCategory = "upstream_failure"
	CategoryHTTP         ErrorCategory = "http_error"
)

// RetryAfterUnknown marks a 429 without a retry-after header. The value is
// never guessed.
const RetryAfterUnknown = "unknown"

// ConfigError signals an invalid client configuration. It is raised at
// construction time and must abort startup, never be retried.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("jupiter client config: %s", e.Reason)
}

// APIError is a classified non-2xx response from the remote service.
// Retry policy is the caller's responsibility.
type APIError struct {
	Category   ErrorCategory
	StatusCode int
	Body       string

	// RetryAfter carries the retry-after header value on 429 responses,
	// or RetryAfterUnknown when the header is absent.
	RetryAfter string

	// Diagnostic headers, empty when the service did not send them.
	APIType            string
	RequestID          string
	RateLimitRemaining string
}

func (e *APIError) Error() string {
	body := strings.TrimSpace(e.Body)
	switch e.Category {
	case CategoryBadRequest:
		return fmt.Sprintf("bad request (400): %s. Check your input parameters", body)
	case CategoryUnauthorized:
		return fmt.Sprintf("unauthorized (401): %s. Check your API key and permissions", body)
	case CategoryForbidden:
		return fmt.Sprintf("forbidden (403): %s. API access denied or rate limited", body)
	case CategoryNotFound:
		return fmt.Sprintf("not found (404): %s. Endpoint or resource not found", body)
	case CategoryRateLimited:
		return fmt.Sprintf("rate limited (429): %s. Retry after %s seconds", body, e.RetryAfter)
	case CategoryUpstream:
		return fmt.Sprintf("upstream failure (%d): %s", e.StatusCode, body)
	default:
		return fmt.Sprintf("http %d: %s", e.StatusCode, body)
	}
}

// DecodeError signals a 2xx payload that does not match the expected
// schema. Treated as a defect signal; the raw payload is kept for logging.
type DecodeError struct {
	Endpoint string
	Payload  []byte
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s response: %v", e.Endpoint, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// AmountError signals a wire amount that is not parseable as the expected
// numeric form. Malformed values are never coerced to zero.
type AmountError struct {
	Field string
	Value string
	Err   error
}

func (e *AmountError) Error() string {
	return fmt.Sprintf("malformed amount in %s: %q: %v", e.Field, e.Value, e.Err)
}

func (e *AmountError) Unwrap() error { return e.Err }

// classify maps a non-2xx status plus response headers into an APIError.
// Absent diagnostic headers are not an error.
func classify(status int, header http.Header, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode:         status,
		Body:               string(body),
		APIType:            header.Get("x-api-type"),
		RequestID:          header.Get("x-request-id"),
		RateLimitRemaining: header.Get("x-rate-limit-remaining"),
	}

	switch status {
	case http.StatusBadRequest:
		apiErr.Category = CategoryBadRequest
	case http.StatusUnauthorized:
		apiErr.Category = CategoryUnauthorized
	case http.StatusForbidden:
		apiErr.Category = CategoryForbidden
	case http.StatusNotFound:
		apiErr.Category = CategoryNotFound
	case http.StatusTooManyRequests:
		apiErr.Category = CategoryRateLimited
		apiErr.RetryAfter = header.Get("retry-after")
		if apiErr.RetryAfter == "" {
			apiErr.RetryAfter = RetryAfterUnknown
		}
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		apiErr.Category = CategoryUpstream
	default:
		apiErr.Category = CategoryHTTP
	}

	return apiErr
}
