// Package scraper downloads bulletin documents.
package scraper

import (
	"errors"
	"fmt"
)

// describe renders "<what>" or "bulletin <url>: <what>", followed by the
// underlying cause when there is one.
func describe(url, what string, err error) string {
	msg := what
	if url != "" {
		msg = fmt.Sprintf("bulletin %s: %s", url, what)
	}
	if err != nil {
		msg += ": " + err.Error()
	}
	return msg
}

// ErrTimeout means the download did not finish before its deadline, or
// the caller gave up on it.
type ErrTimeout struct {
	URL string
	Err error
}

func (e ErrTimeout) Error() string { return describe(e.URL, "download timed out", e.Err) }
func (e ErrTimeout) Unwrap() error { return e.Err }

// ErrConnection means the publisher could not be reached.
type ErrConnection struct {
	URL string
	Err error
}

func (e ErrConnection) Error() string { return describe(e.URL, "publisher unreachable", e.Err) }
func (e ErrConnection) Unwrap() error { return e.Err }

// ErrForbidden is an HTTP 403 from the publisher.
type ErrForbidden struct {
	URL string
	Err error
}

func (e ErrForbidden) Error() string { return describe(e.URL, "access denied by publisher", e.Err) }
func (e ErrForbidden) Unwrap() error { return e.Err }

// ErrNotFound means no bulletin was published for the requested day (HTTP 404).
type ErrNotFound struct {
	URL string
	Err error
}

func (e ErrNotFound) Error() string { return describe(e.URL, "not published", e.Err) }
func (e ErrNotFound) Unwrap() error { return e.Err }

// ErrRateLimited is an HTTP 429 from the publisher.
type ErrRateLimited struct {
	URL string
	Err error
}

func (e ErrRateLimited) Error() string { return describe(e.URL, "throttled by publisher", e.Err) }
func (e ErrRateLimited) Unwrap() error { return e.Err }

// ErrHTTPStatus is any other non-success HTTP response.
type ErrHTTPStatus struct {
	URL        string
	StatusCode int
	Err        error
}

func (e ErrHTTPStatus) Error() string {
	return describe(e.URL, fmt.Sprintf("unexpected status %d", e.StatusCode), e.Err)
}

func (e ErrHTTPStatus) Unwrap() error { return e.Err }

// ErrTooLarge means the document reached the configured body limit, so
// what was received is truncated.
type ErrTooLarge struct {
	URL   string
	Limit int
}

func (e ErrTooLarge) Error() string {
	return describe(e.URL, fmt.Sprintf("document exceeds the %d byte limit", e.Limit), nil)
}

// IsNotFound reports whether err means the bulletin does not exist.
func IsNotFound(err error) bool {
	var notFound ErrNotFound
	return errors.As(err, &notFound)
}

// withURL attaches the document URL to a classified error.
func withURL(err error, url string) error {
	switch e := err.(type) {
	case ErrTimeout:
		e.URL = url
		return e
	case ErrConnection:
		e.URL = url
		return e
	case ErrForbidden:
		e.URL = url
		return e
	case ErrNotFound:
		e.URL = url
		return e
	case ErrRateLimited:
		e.URL = url
		return e
	case ErrHTTPStatus:
		e.URL = url
		return e
	case ErrTooLarge:
		e.URL = url
		return e
	}
	return err
}

// ErrorTypeLabel maps a classified fetch error to a short label used in
// metrics and range summaries.
func ErrorTypeLabel(err error) string {
	if err == nil {
		return "unknown"
	}
	var timeout ErrTimeout
	if errors.As(err, &timeout) {
		return "timeout"
	}
	var conn ErrConnection
	if errors.As(err, &conn) {
		return "connection"
	}
	var forbidden ErrForbidden
	if errors.As(err, &forbidden) {
		return "forbidden"
	}
	var notFound ErrNotFound
	if errors.As(err, &notFound) {
		return "not_found"
	}
	var rateLimited ErrRateLimited
	if errors.As(err, &rateLimited) {
		return "rate_limited"
	}
	var status ErrHTTPStatus
	if errors.As(err, &status) {
		return "http_status"
	}
	var tooLarge ErrTooLarge
	if errors.As(err, &tooLarge) {
		return "too_large"
	}
	return "other"
}
