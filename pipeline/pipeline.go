// Package pipeline validates, de-duplicates and writes exported price rows.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aluiziolira/go-price-bulletin/config"
	"github.com/aluiziolira/go-price-bulletin/models"
	"github.com/aluiziolira/go-price-bulletin/parser"
	lru "github.com/hashicorp/golang-lru/v2"
)

var (
	// ErrPipelineClosed is returned when Process is called after shutdown.
	ErrPipelineClosed = errors.New("pipeline: closed")
	// ErrPipelineCloseTimeout is returned when workers do not drain in time.
	ErrPipelineCloseTimeout = errors.New("pipeline: close timed out")
)

// drainTimeout bounds how long Close waits for workers.
var drainTimeout = 30 * time.Second

// OutputWriter defines the interface for data output.
type OutputWriter interface {
	Write(rows []*models.PriceRow) error
	Close() error
	Validate() error
}

// Pipeline coordinates validation, de-duplication, and output writing.
type Pipeline struct {
	ctx       context.Context
	writer    OutputWriter
	rowCh     chan []*models.PriceRow
	batchSize int

	wg sync.WaitGroup

	seen *lru.Cache[string, struct{}]

	metrics metrics

	mu     sync.Mutex // guards closed/err
	closed bool
	err    error

	closeOnce    sync.Once
	shutdown     chan struct{}
	shutdownOnce sync.Once
}

// NewPipeline builds a pipeline sized from cfg.
func NewPipeline(ctx context.Context, writer OutputWriter, cfg *config.Config) *Pipeline {
	if ctx == nil {
		ctx = context.Background()
	}
	seen, err := lru.New[string, struct{}](cfg.DedupeMaxSize)
	if err != nil {
		// Only returned for a non-positive size, which Validate rejects.
		seen, _ = lru.New[string, struct{}](1)
	}
	return &Pipeline{
		ctx:       ctx,
		writer:    writer,
		rowCh:     make(chan []*models.PriceRow, cfg.PipelineBufferSize),
		batchSize: cfg.BatchSize,
		seen:      seen,
		metrics:   newMetrics(),
		shutdown:  make(chan struct{}),
	}
}

// Start launches worker goroutines. With one worker rows reach the writer
// in submission order; with more, only the rows of a single Process call
// stay in order relative to each other.
func (p *Pipeline) Start(workers int) {
	if workers <= 0 {
		workers = 1
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// Process enqueues rows as one unit: a worker handles all of them before
// taking the next unit.
func (p *Pipeline) Process(rows ...*models.PriceRow) error {
	if len(rows) == 0 {
		return nil
	}

	closed, err := p.state()
	if err != nil {
		return err
	}
	if closed {
		return ErrPipelineClosed
	}

	unit := make([]*models.PriceRow, 0, len(rows))
	for _, row := range rows {
		if row != nil {
			unit = append(unit, row)
		}
	}
	if len(unit) == 0 {
		return nil
	}
	return p.enqueue(unit)
}

// Close waits for workers to finish and prevents more submissions.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
	}
	p.mu.Unlock()

	p.closeOnce.Do(func() {
		close(p.rowCh)
	})

	drained := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
	case <-time.After(drainTimeout):
		p.signalShutdown()
		return ErrPipelineCloseTimeout
	}

	p.signalShutdown()
	return p.Err()
}

// Err returns the first error encountered during processing.
func (p *Pipeline) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// GetMetrics returns a snapshot of the internal counters.
func (p *Pipeline) GetMetrics() map[string]interface{} {
	return p.metrics.snapshot()
}

// StartMetricsReporting emits periodic progress logs.
func (p *Pipeline) StartMetricsReporting(interval time.Duration) {
	if interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				metrics := p.GetMetrics()
				processed := metrics["processed_rows"].(int64)
				validation := metrics["validation_errors"].(map[string]int)
				slog.Debug("pipeline progress",
					slog.Int64("processed", processed),
					slog.Int("validation_kinds", len(validation)),
				)
			case <-p.shutdown:
				return
			}
		}
	}()
}

func (p *Pipeline) worker() {
	defer p.wg.Done()

	batch := make([]*models.PriceRow, 0, p.batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := p.writer.Write(batch); err != nil {
			return err
		}
		batch = batch[:0]
		return nil
	}

	for unit := range p.rowCh {
		for _, row := range unit {
			prepared := p.prepare(row)
			if prepared == nil {
				continue
			}
			batch = append(batch, prepared)
			if len(batch) >= p.batchSize {
				if err := flush(); err != nil {
					p.setErr(fmt.Errorf("write batch: %w", err))
					return
				}
			}
		}
	}

	if err := flush(); err != nil {
		p.setErr(fmt.Errorf("write batch: %w", err))
	}
}

func (p *Pipeline) prepare(row *models.PriceRow) *models.PriceRow {
	if err := parser.ValidateRow(row); err != nil {
		p.metrics.addValidation("invalid_record")
		return nil
	}

	if found, _ := p.seen.ContainsOrAdd(rowKey(row), struct{}{}); found {
		p.metrics.addValidation("duplicate_row")
		return nil
	}

	row.Name = parser.NormalizeSpaces(row.Name)
	row.PreviousDayVariation = parser.NormalizeVariation(row.PreviousDayVariation)

	p.metrics.incrementProcessed()
	return row
}

// rowKey covers every record field, so only exact repeats of a line within
// one bulletin are dropped.
func rowKey(row *models.PriceRow) string {
	return strings.Join([]string{
		row.Date,
		row.Name,
		row.Presentation,
		row.Quantity,
		row.Unit,
		row.ExtraQualityPrice,
		row.FirstQualityPrice,
		row.UnitPrice,
		row.PreviousDayVariation,
	}, "|")
}

func (p *Pipeline) enqueue(unit []*models.PriceRow) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ErrPipelineClosed
		}
	}()

	select {
	case <-p.shutdown:
		return ErrPipelineClosed
	case <-p.ctx.Done():
		return p.ctx.Err()
	case p.rowCh <- unit:
		return nil
	}
}

func (p *Pipeline) setErr(err error) {
	if err == nil {
		return
	}

	p.mu.Lock()
	if p.err != nil {
		p.mu.Unlock()
		return
	}
	p.err = err
	p.closed = true
	p.mu.Unlock()

	p.signalShutdown()
}

func (p *Pipeline) state() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed, p.err
}

func (p *Pipeline) signalShutdown() {
	p.shutdownOnce.Do(func() {
		close(p.shutdown)
	})
}

type metrics struct {
	mu         sync.Mutex
	processed  int64
	validation map[string]int
}

func newMetrics() metrics {
	return metrics{
		validation: make(map[string]int),
	}
}

func (m *metrics) incrementProcessed() {
	m.mu.Lock()
	m.processed++
	m.mu.Unlock()
}

func (m *metrics) addValidation(kind string) {
	m.mu.Lock()
	m.validation[kind]++
	m.mu.Unlock()
}

func (m *metrics) snapshot() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	copyValidation := make(map[string]int, len(m.validation))
	for k, v := range m.validation {
		copyValidation[k] = v
	}

	return map[string]interface{}{
		"processed_rows":    m.processed,
		"validation_errors": copyValidation,
	}
}
