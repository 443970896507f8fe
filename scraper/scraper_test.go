package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/aluiziolira/go-price-bulletin/config"
	"github.com/jarcoal/httpmock"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.BaseURL = "http://example.test/uploads/"
	cfg.Timeout = 2 * time.Second
	return cfg
}

func newMockedFetcher(t *testing.T, cfg *config.Config) (*Fetcher, *httpmock.MockTransport) {
	t.Helper()
	f, err := NewFetcher(cfg, NewMetrics())
	if err != nil {
		t.Fatalf("new fetcher: %v", err)
	}
	transport := httpmock.NewMockTransport()
	f.collector.WithTransport(transport)
	return f, transport
}

func TestBulletinURL(t *testing.T) {
	f, err := NewFetcher(testConfig(), nil)
	if err != nil {
		t.Fatalf("new fetcher: %v", err)
	}
	day := time.Date(2025, time.March, 7, 0, 0, 0, 0, time.UTC)
	want := "http://example.test/uploads/2025/03/Boletin_diario_20250307.pdf"
	if got := f.BulletinURL(day); got != want {
		t.Fatalf("BulletinURL() = %q, want %q", got, want)
	}
}

func TestNewFetcherRejectsHostlessURL(t *testing.T) {
	cfg := testConfig()
	cfg.BaseURL = "/relative/path"
	if _, err := NewFetcher(cfg, nil); err == nil {
		t.Fatalf("expected error for base url without host")
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		statusCode int
		expected   string
	}{
		{name: "nil", err: nil, statusCode: 0, expected: "unknown"},
		{name: "context timeout", err: context.DeadlineExceeded, statusCode: 0, expected: "timeout"},
		{name: "context canceled", err: context.Canceled, statusCode: 0, expected: "timeout"},
		{name: "net timeout", err: &net.DNSError{IsTimeout: true}, statusCode: 0, expected: "timeout"},
		{name: "connection", err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, statusCode: 0, expected: "connection"},
		{name: "forbidden", err: nil, statusCode: http.StatusForbidden, expected: "forbidden"},
		{name: "not found", err: nil, statusCode: http.StatusNotFound, expected: "not_found"},
		{name: "rate limited", err: nil, statusCode: http.StatusTooManyRequests, expected: "rate_limited"},
		{name: "server error", err: errors.New("Internal Server Error"), statusCode: http.StatusInternalServerError, expected: "http_status"},
		{name: "too large", err: ErrTooLarge{Limit: 10}, statusCode: 0, expected: "too_large"},
		{name: "other", err: errors.New("some other error"), statusCode: 0, expected: "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorTypeLabel(classifyError(tt.err, tt.statusCode)); got != tt.expected {
				t.Fatalf("classifyError(%v, %d) = %q, want %q", tt.err, tt.statusCode, got, tt.expected)
			}
		})
	}
}

func TestFetcherDownloadsDocument(t *testing.T) {
	f, transport := newMockedFetcher(t, testConfig())
	day := time.Date(2025, time.November, 20, 0, 0, 0, 0, time.UTC)
	target := f.BulletinURL(day)
	payload := []byte("%PDF-1.4 fake bulletin")

	resp := httpmock.NewBytesResponse(http.StatusOK, payload)
	resp.Header.Set("Content-Type", "application/pdf")
	transport.RegisterResponder("GET", target, httpmock.ResponderFromResponse(resp))

	body, err := f.Fetch(context.Background(), target)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !bytes.Equal(body, payload) {
		t.Fatalf("body = %q, want %q", body, payload)
	}

	// Repeated downloads of the same URL must not be deduplicated.
	if _, err := f.Fetch(context.Background(), target); err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if requests, failures := f.Stats(); requests != 2 || failures != 0 {
		t.Fatalf("stats = %d/%d, want 2/0", requests, failures)
	}
	if got := testutil.ToFloat64(f.Metrics.RequestsTotal.WithLabelValues("completed")); got != 2 {
		t.Fatalf("completed requests metric = %v, want 2", got)
	}
}

func TestFetcherHTTPStatusClassification(t *testing.T) {
	tests := []struct {
		status   int
		expected string
	}{
		{status: http.StatusTooManyRequests, expected: "rate_limited"},
		{status: http.StatusForbidden, expected: "forbidden"},
		{status: http.StatusNotFound, expected: "not_found"},
		{status: http.StatusBadGateway, expected: "http_status"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.status), func(t *testing.T) {
			f, transport := newMockedFetcher(t, testConfig())
			target := f.BulletinURL(time.Date(2025, time.November, 21, 0, 0, 0, 0, time.UTC))
			transport.RegisterResponder("GET", target, httpmock.NewStringResponder(tt.status, ""))

			_, err := f.Fetch(context.Background(), target)
			if err == nil {
				t.Fatalf("expected error for status %d", tt.status)
			}
			if got := ErrorTypeLabel(err); got != tt.expected {
				t.Fatalf("label = %q, want %q (err=%v)", got, tt.expected, err)
			}
			if tt.status == http.StatusNotFound && !IsNotFound(err) {
				t.Fatalf("IsNotFound() = false for 404")
			}
			if got := testutil.ToFloat64(f.Metrics.ErrorsTotal.WithLabelValues(tt.expected)); got != 1 {
				t.Fatalf("errors metric = %v, want 1", got)
			}
		})
	}
}

func TestFetcherConnectionError(t *testing.T) {
	f, transport := newMockedFetcher(t, testConfig())
	target := f.BulletinURL(time.Date(2025, time.November, 22, 0, 0, 0, 0, time.UTC))
	transport.RegisterResponder("GET", target, httpmock.NewErrorResponder(&net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}))

	_, err := f.Fetch(context.Background(), target)
	if got := ErrorTypeLabel(err); got != "connection" {
		t.Fatalf("label = %q, want connection (err=%v)", got, err)
	}
}

func TestFetcherHonoursCanceledContext(t *testing.T) {
	f, _ := newMockedFetcher(t, testConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Fetch(ctx, f.BulletinURL(time.Now()))
	var timeout ErrTimeout
	if !errors.As(err, &timeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestFetcherTimeoutWhileWaiting(t *testing.T) {
	f, transport := newMockedFetcher(t, testConfig())
	target := f.BulletinURL(time.Date(2025, time.November, 23, 0, 0, 0, 0, time.UTC))
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	transport.RegisterResponder("GET", target, func(req *http.Request) (*http.Response, error) {
		<-release
		return httpmock.NewStringResponse(http.StatusOK, "late"), nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := f.Fetch(ctx, target)
	if got := ErrorTypeLabel(err); got != "timeout" {
		t.Fatalf("label = %q, want timeout (err=%v)", got, err)
	}
}

func TestFetcherErrorsNameTheDocument(t *testing.T) {
	f, transport := newMockedFetcher(t, testConfig())
	target := f.BulletinURL(time.Date(2025, time.November, 24, 0, 0, 0, 0, time.UTC))
	transport.RegisterResponder("GET", target, httpmock.NewStringResponder(http.StatusNotFound, ""))

	_, err := f.Fetch(context.Background(), target)
	var notFound ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if notFound.URL != target {
		t.Fatalf("url = %q, want %q", notFound.URL, target)
	}
	if !strings.Contains(err.Error(), "bulletin "+target+": not published") {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestFetcherRejectsTruncatedDocument(t *testing.T) {
	cfg := testConfig()
	cfg.MaxBodySize = 16
	f, transport := newMockedFetcher(t, cfg)
	target := f.BulletinURL(time.Date(2025, time.November, 25, 0, 0, 0, 0, time.UTC))
	transport.RegisterResponder("GET", target,
		httpmock.NewBytesResponder(http.StatusOK, []byte("%PDF-1.4 "+strings.Repeat("x", 64))))

	_, err := f.Fetch(context.Background(), target)
	var tooLarge ErrTooLarge
	if !errors.As(err, &tooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	if tooLarge.Limit != 16 || tooLarge.URL != target {
		t.Fatalf("unexpected error %+v", tooLarge)
	}
	if got := testutil.ToFloat64(f.Metrics.ErrorsTotal.WithLabelValues("too_large")); got != 1 {
		t.Fatalf("errors metric = %v, want 1", got)
	}
}

func TestFetcherAcceptsDocumentUnderLimit(t *testing.T) {
	cfg := testConfig()
	cfg.MaxBodySize = 64
	f, transport := newMockedFetcher(t, cfg)
	target := f.BulletinURL(time.Date(2025, time.November, 26, 0, 0, 0, 0, time.UTC))
	payload := []byte("%PDF-1.4 small")
	transport.RegisterResponder("GET", target, httpmock.NewBytesResponder(http.StatusOK, payload))

	body, err := f.Fetch(context.Background(), target)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !bytes.Equal(body, payload) {
		t.Fatalf("body = %q", body)
	}
}
