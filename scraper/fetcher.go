package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/aluiziolira/go-price-bulletin/config"
	"github.com/gocolly/colly/v2"
)

// Fetcher wraps a colly collector that downloads bulletin documents.
// Each Fetch runs on a clone of the base collector, so concurrent fetches
// share the HTTP backend but not their callbacks.
type Fetcher struct {
	cfg       *config.Config
	collector *colly.Collector
	Metrics   *Metrics

	requestCount int64
	errorCount   int64
}

// NewFetcher builds a fetcher configured from cfg. A nil metrics value
// disables instrumentation.
func NewFetcher(cfg *config.Config, metrics *Metrics) (*Fetcher, error) {
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("base url must include a host")
	}

	collector := colly.NewCollector(
		colly.AllowedDomains(parsed.Hostname()),
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
		colly.MaxBodySize(cfg.MaxBodySize),
	)

	collector.SetRequestTimeout(cfg.Timeout)
	collector.IgnoreRobotsTxt = !cfg.RespectRobotsTxt
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})

	return &Fetcher{
		cfg:       cfg,
		collector: collector,
		Metrics:   metrics,
	}, nil
}

// BulletinURL returns the document location for day:
// {base}/{YYYY}/{MM}/Boletin_diario_{YYYYMMDD}.pdf.
func (f *Fetcher) BulletinURL(day time.Time) string {
	base := strings.TrimSuffix(f.cfg.BaseURL, "/")
	return fmt.Sprintf("%s/%04d/%02d/Boletin_diario_%s.pdf", base, day.Year(), int(day.Month()), day.Format("20060102"))
}

// Fetch downloads target and returns the response body. Failures are
// returned as classified errors (ErrNotFound, ErrTimeout, ...). The call
// returns as soon as ctx is done; the in-flight request is bounded by the
// collector's request timeout.
func (f *Fetcher) Fetch(ctx context.Context, target string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, f.fail(target, classifyError(err, 0))
	}

	c := f.collector.Clone()

	var (
		body     []byte
		status   int
		fetchErr error
		start    time.Time
		tooLarge bool
	)

	c.OnRequest(func(r *colly.Request) {
		start = time.Now()
		atomic.AddInt64(&f.requestCount, 1)
		f.Metrics.IncRequest("started")
	})

	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = r.Body
		// colly truncates at MaxBodySize without reporting it.
		tooLarge = f.cfg.MaxBodySize > 0 && len(r.Body) >= f.cfg.MaxBodySize
		f.Metrics.IncRequest("completed")
		f.Metrics.ObserveDuration(time.Since(start))
	})

	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = err
		f.Metrics.IncRequest("failed")
	})

	done := make(chan error, 1)
	go func() {
		done <- c.Visit(target)
	}()

	select {
	case <-ctx.Done():
		return nil, f.fail(target, classifyError(ctx.Err(), 0))
	case visitErr := <-done:
		if fetchErr == nil {
			fetchErr = visitErr
		}
		if fetchErr != nil || status >= http.StatusBadRequest {
			return nil, f.fail(target, classifyError(fetchErr, status))
		}
		if tooLarge {
			return nil, f.fail(target, ErrTooLarge{Limit: f.cfg.MaxBodySize})
		}
		return body, nil
	}
}

// Stats returns the number of requests issued and failed so far.
func (f *Fetcher) Stats() (requests, failures int64) {
	return atomic.LoadInt64(&f.requestCount), atomic.LoadInt64(&f.errorCount)
}

func (f *Fetcher) fail(target string, err error) error {
	err = withURL(err, target)
	atomic.AddInt64(&f.errorCount, 1)
	category := ErrorTypeLabel(err)
	f.Metrics.IncError(category)

	if category == "not_found" {
		slog.Warn("bulletin not published",
			slog.String("url", target),
		)
	} else {
		slog.Error("bulletin fetch failed",
			slog.String("url", target),
			slog.String("category", category),
			slog.Any("error", err),
		)
	}
	return err
}

func classifyError(err error, statusCode int) error {
	if err == nil && statusCode == 0 {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrTimeout{Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout{Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ErrConnection{Err: err}
	}

	if statusCode >= http.StatusBadRequest {
		wrapped := err
		if wrapped == nil {
			wrapped = fmt.Errorf("http status %d", statusCode)
		}
		switch statusCode {
		case http.StatusForbidden:
			return ErrForbidden{Err: wrapped}
		case http.StatusNotFound:
			return ErrNotFound{Err: wrapped}
		case http.StatusTooManyRequests:
			return ErrRateLimited{Err: wrapped}
		default:
			return ErrHTTPStatus{StatusCode: statusCode, Err: wrapped}
		}
	}

	if err == nil {
		return nil
	}
	return err
}
