// Package bulletin fetches and parses daily price bulletins, one day at a
// time or over a date range.
package bulletin

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aluiziolira/go-price-bulletin/config"
	"github.com/aluiziolira/go-price-bulletin/models"
	"github.com/aluiziolira/go-price-bulletin/parser"
	"github.com/aluiziolira/go-price-bulletin/scraper"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

// Fetcher downloads the bulletin published for a day.
type Fetcher interface {
	BulletinURL(day time.Time) string
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// TextExtractor converts a downloaded document into plain text.
type TextExtractor interface {
	Extract(data []byte) (string, error)
}

// DayHandler receives the rows of each successful day in range mode. It is
// called from concurrent goroutines.
type DayHandler func(date, source string, records []models.ProductPrice)

// Service ties the fetcher, the text extractor and the table parser.
type Service struct {
	cfg       *config.Config
	fetcher   Fetcher
	extractor TextExtractor
	metrics   *scraper.Metrics
	cache     *expirable.LRU[string, *models.DayBulletin]
	limiter   *rate.Limiter
	now       func() time.Time
}

// NewService builds a Service. metrics may be nil.
func NewService(cfg *config.Config, fetcher Fetcher, extractor TextExtractor, metrics *scraper.Metrics) *Service {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	s := &Service{
		cfg:       cfg,
		fetcher:   fetcher,
		extractor: extractor,
		metrics:   metrics,
		limiter:   rate.NewLimiter(limit, 1),
		now:       time.Now,
	}
	if cfg.CacheSize > 0 {
		s.cache = expirable.NewLRU[string, *models.DayBulletin](cfg.CacheSize, nil, cfg.CacheTTL)
	}
	return s
}

// Today returns the current calendar day.
func (s *Service) Today() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// FetchDay downloads and parses the bulletin for day. Successful results
// are cached per date.
func (s *Service) FetchDay(ctx context.Context, day time.Time) (*models.DayBulletin, error) {
	date := day.Format(DateLayout)
	if s.cache != nil {
		if cached, ok := s.cache.Get(date); ok {
			s.metrics.IncCacheHit()
			return cached, nil
		}
	}

	url := s.fetcher.BulletinURL(day)
	data, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	result, err := s.ParseDocument(data, date, url)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Add(date, result)
	}
	return result, nil
}

// ParseDocument parses an already downloaded document. When date is empty
// the date printed in the document is used instead.
func (s *Service) ParseDocument(data []byte, date, source string) (*models.DayBulletin, error) {
	text, err := s.extractor.Extract(data)
	if err != nil {
		return nil, &DocumentError{Source: source, Err: err}
	}
	return s.ParseText(text, date, source), nil
}

// ParseText parses bulletin text that was already extracted from its
// document.
func (s *Service) ParseText(text, date, source string) *models.DayBulletin {
	records := parser.ParseTable(text)
	if date == "" {
		if found, ok := parser.ExtractDate(text); ok {
			date = found
		}
	}
	s.metrics.ObserveDocument(len(records))

	slog.Debug("bulletin parsed",
		slog.String("date", date),
		slog.String("source", source),
		slog.Int("records", len(records)),
	)

	return &models.DayBulletin{
		Date:          date,
		TotalProducts: len(records),
		Products:      records,
		Source:        source,
	}
}

// FetchRange processes every day in [from, to] in date-ordered batches of
// RangeConcurrency days. A failing day is recorded in its summary and
// never aborts the range. Row data is only passed to handle, which may be
// nil; the result keeps counts.
func (s *Service) FetchRange(ctx context.Context, from, to time.Time, handle DayHandler) (*models.RangeResult, error) {
	if err := ValidateRange(from, to, s.cfg.MaxRangeDays); err != nil {
		return nil, err
	}

	days := daysBetween(from, to)
	result := &models.RangeResult{
		From:      from.Format(DateLayout),
		To:        to.Format(DateLayout),
		TotalDays: len(days),
		Summary:   make([]models.DaySummary, 0, len(days)),
	}

	size := s.cfg.RangeConcurrency
	if size <= 0 {
		size = 1
	}

	for start := 0; start < len(days); start += size {
		if ctx.Err() != nil {
			slog.Warn("range interrupted",
				slog.String("from", result.From),
				slog.String("to", result.To),
				slog.Int("processed_days", result.ProcessedDays),
			)
			break
		}
		end := start + size
		if end > len(days) {
			end = len(days)
		}

		for _, summary := range s.runBatch(ctx, days[start:end], handle) {
			result.Summary = append(result.Summary, summary)
			result.ProcessedDays++
			if summary.Status == models.StatusSuccess {
				result.SuccessfulDays++
				result.TotalProducts += summary.TotalProductCount
			} else {
				result.FailedDays++
			}
		}
	}

	slog.Info("range processed",
		slog.String("from", result.From),
		slog.String("to", result.To),
		slog.Int("successful_days", result.SuccessfulDays),
		slog.Int("failed_days", result.FailedDays),
		slog.Int("products", result.TotalProducts),
	)
	return result, nil
}

// runBatch processes days concurrently and returns their summaries in the
// order of days.
func (s *Service) runBatch(ctx context.Context, days []time.Time, handle DayHandler) []models.DaySummary {
	out := make([]models.DaySummary, len(days))

	var wg sync.WaitGroup
	for i, day := range days {
		wg.Add(1)
		go func(i int, day time.Time) {
			defer wg.Done()
			out[i] = s.processDay(ctx, day, handle)
		}(i, day)
	}
	wg.Wait()

	return out
}

func (s *Service) processDay(ctx context.Context, day time.Time, handle DayHandler) (summary models.DaySummary) {
	date := day.Format(DateLayout)
	url := s.fetcher.BulletinURL(day)
	summary = models.DaySummary{Date: date, SourceURL: url}

	defer func() {
		if r := recover(); r != nil {
			summary.Status = models.StatusError
			summary.TotalProductCount = 0
			summary.Error = fmt.Sprintf("unexpected error: %v", r)
			slog.Error("range day panicked", slog.String("date", date), slog.Any("panic", r))
		}
		s.metrics.IncRangeDay(string(summary.Status))
	}()

	dayCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	if err := s.limiter.Wait(dayCtx); err != nil {
		summary.Status = models.StatusError
		summary.Error = err.Error()
		return summary
	}

	data, err := s.fetcher.Fetch(dayCtx, url)
	if err != nil {
		summary.Status = models.StatusError
		if scraper.IsNotFound(err) {
			summary.Status = models.StatusNotFound
		}
		summary.Error = err.Error()
		return summary
	}

	parsed, err := s.ParseDocument(data, date, url)
	if err != nil {
		summary.Status = models.StatusError
		summary.Error = err.Error()
		return summary
	}

	summary.Status = models.StatusSuccess
	summary.TotalProductCount = parsed.TotalProducts
	if handle != nil {
		handle(date, url, parsed.Products)
	}
	return summary
}
