// Package pipeline connects list-row production to detail enrichment through a bounded queue.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/aluiziolira/go-scrape-goodreads/config"
	"github.com/aluiziolira/go-scrape-goodreads/models"
	"github.com/aluiziolira/go-scrape-goodreads/parser"
)

var (
	// ErrPipelineClosed is returned when Process is called after shutdown.
	ErrPipelineClosed = errors.New("pipeline: closed")
	// ErrPipelineCloseTimeout is returned when workers do not drain in time.
	ErrPipelineCloseTimeout = errors.New("pipeline: close timed out")
)

// Enricher fetches the detail fields for a row's detail path.
type Enricher interface {
	FetchDetail(ctx context.Context, path string) (*models.BookDetail, error)
}

type job struct {
	seq int
	row *models.BookRow
}

// Pipeline validates and de-duplicates list rows, then enriches them on a pool of workers.
// Rows returns the enriched rows in submission order regardless of worker count.
type Pipeline struct {
	enricher   Enricher
	skipFailed bool
	jobCh      chan job

	group  *errgroup.Group
	gctx   context.Context
	cancel context.CancelFunc
	drain  time.Duration

	seen *lru.Cache[string, struct{}]
	seq  int

	resultsMu sync.Mutex
	results   []job

	metrics metrics

	mu     sync.Mutex // guards closed
	closed bool

	closeOnce    sync.Once
	shutdown     chan struct{}
	shutdownOnce sync.Once
}

// NewPipeline builds a pipeline whose queue and dedupe window follow cfg.
func NewPipeline(ctx context.Context, enricher Enricher, cfg *config.Config) *Pipeline {
	if ctx == nil {
		ctx = context.Background()
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 1
	}
	dedupeSize := cfg.DedupeMaxSize
	if dedupeSize <= 0 {
		dedupeSize = 1024
	}
	seen, _ := lru.New[string, struct{}](dedupeSize)

	ctx, cancel := context.WithCancel(ctx)
	group, gctx := errgroup.WithContext(ctx)
	return &Pipeline{
		enricher:   enricher,
		skipFailed: cfg.SkipDetailErrors,
		jobCh:      make(chan job, queueSize),
		group:      group,
		gctx:       gctx,
		cancel:     cancel,
		drain:      DrainTimeout(cfg),
		seen:       seen,
		metrics:    newMetrics(),
		shutdown:   make(chan struct{}),
	}
}

// Start launches worker goroutines.
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
		p.group.Go(p.worker)
	}
}

// Process enqueues rows for enrichment. It blocks while the queue is full.
func (p *Pipeline) Process(rows ...*models.BookRow) error {
	for _, row := range rows {
		if row == nil {
			continue
		}
		if p.isClosed() {
			return ErrPipelineClosed
		}
		if !p.prepare(row) {
			continue
		}
		if err := p.enqueue(job{seq: p.nextSeq(), row: row}); err != nil {
			return err
		}
	}
	return nil
}

// DrainTimeout is how long Close waits for queued rows. cfg.DrainTimeout wins when set;
// otherwise every row that can still be queued or in flight gets one full request slot.
func DrainTimeout(cfg *config.Config) time.Duration {
	if cfg.DrainTimeout > 0 {
		return cfg.DrainTimeout
	}
	workers := cfg.DetailWorkers
	if workers <= 0 {
		workers = 1
	}
	pending := cfg.QueueSize + workers
	if pending <= 0 {
		pending = 1
	}
	perRequest := cfg.Timeout + cfg.Delay + cfg.RandomDelay
	if perRequest <= 0 {
		perRequest = time.Second
	}
	return time.Duration(pending) * perRequest
}

// Close stops accepting rows and waits for the workers to drain the queue.
// If they do not finish within the drain timeout their context is cancelled
// and ErrPipelineCloseTimeout is returned.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.closeOnce.Do(func() {
		close(p.jobCh)
	})

	done := make(chan error, 1)
	go func() {
		done <- p.group.Wait()
	}()

	var err error
	select {
	case err = <-done:
	case <-time.After(p.drain):
		err = ErrPipelineCloseTimeout
	}
	p.cancel()
	p.signalShutdown()
	return err
}

// Rows returns the enriched rows in the order they were submitted.
func (p *Pipeline) Rows() []*models.BookRow {
	p.resultsMu.Lock()
	defer p.resultsMu.Unlock()

	sorted := make([]job, len(p.results))
	copy(sorted, p.results)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].seq < sorted[j].seq })

	rows := make([]*models.BookRow, len(sorted))
	for i, j := range sorted {
		rows[i] = j.row
	}
	return rows
}

// GetMetrics returns a snapshot of the internal counters.
func (p *Pipeline) GetMetrics() map[string]interface{} {
	return p.metrics.snapshot()
}

// Stats returns a typed snapshot of the internal counters.
func (p *Pipeline) Stats() Stats {
	return p.metrics.stats()
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
				stats := p.Stats()
				slog.Info("pipeline progress",
					slog.Int("enriched", stats.Enriched),
					slog.Int("detail_failures", stats.DetailFailures),
					slog.Int("queued", len(p.jobCh)),
				)
			case <-p.shutdown:
				return
			}
		}
	}()
}

func (p *Pipeline) worker() error {
	for j := range p.jobCh {
		if err := p.gctx.Err(); err != nil {
			return err
		}

		detail, err := p.enricher.FetchDetail(p.gctx, j.row.DetailPath)
		if err != nil {
			if ctxErr := p.gctx.Err(); ctxErr != nil {
				return ctxErr
			}
			p.metrics.incDetailFailure()
			if !p.skipFailed {
				return fmt.Errorf("row %d (%s): %w", j.row.Rank, j.row.Title, err)
			}
			slog.Warn("skipping row after detail failure",
				slog.Int("rank", j.row.Rank),
				slog.String("path", j.row.DetailPath),
				slog.Any("error", err),
			)
			continue
		}

		for _, field := range detail.Gaps() {
			p.metrics.addGap(field)
		}
		j.row.Enrich(detail)

		p.resultsMu.Lock()
		p.results = append(p.results, j)
		p.resultsMu.Unlock()
		p.metrics.incEnriched()
	}
	return nil
}

func (p *Pipeline) prepare(row *models.BookRow) bool {
	if err := parser.ValidateRow(row); err != nil {
		p.metrics.addValidation("invalid_record")
		return false
	}

	rankKey := "rank:" + strconv.Itoa(row.Rank)
	pathKey := "path:" + row.DetailPath
	if p.seen.Contains(rankKey) || p.seen.Contains(pathKey) {
		p.metrics.addValidation("duplicate_row")
		return false
	}
	p.seen.Add(rankKey, struct{}{})
	p.seen.Add(pathKey, struct{}{})
	return true
}

func (p *Pipeline) nextSeq() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seq++
	return p.seq
}

func (p *Pipeline) enqueue(j job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ErrPipelineClosed
		}
	}()

	select {
	case <-p.shutdown:
		return ErrPipelineClosed
	case <-p.gctx.Done():
		return ErrPipelineClosed
	case p.jobCh <- j:
		return nil
	}
}

func (p *Pipeline) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *Pipeline) signalShutdown() {
	p.shutdownOnce.Do(func() {
		close(p.shutdown)
	})
}

// Stats summarises one pipeline run.
type Stats struct {
	Enriched       int
	Invalid        int
	Duplicates     int
	DetailFailures int
	Gaps           map[string]int
}

type metrics struct {
	mu             sync.Mutex
	enriched       int
	detailFailures int
	validation     map[string]int
	gaps           map[string]int
}

func newMetrics() metrics {
	return metrics{
		validation: make(map[string]int),
		gaps:       make(map[string]int),
	}
}

func (m *metrics) incEnriched() {
	m.mu.Lock()
	m.enriched++
	m.mu.Unlock()
}

func (m *metrics) incDetailFailure() {
	m.mu.Lock()
	m.detailFailures++
	m.mu.Unlock()
}

func (m *metrics) addValidation(kind string) {
	m.mu.Lock()
	m.validation[kind]++
	m.mu.Unlock()
}

func (m *metrics) addGap(field string) {
	m.mu.Lock()
	m.gaps[field]++
	m.mu.Unlock()
}

func (m *metrics) stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	gaps := make(map[string]int, len(m.gaps))
	for k, v := range m.gaps {
		gaps[k] = v
	}
	return Stats{
		Enriched:       m.enriched,
		Invalid:        m.validation["invalid_record"],
		Duplicates:     m.validation["duplicate_row"],
		DetailFailures: m.detailFailures,
		Gaps:           gaps,
	}
}

func (m *metrics) snapshot() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	copyValidation := make(map[string]int, len(m.validation))
	for k, v := range m.validation {
		copyValidation[k] = v
	}
	copyGaps := make(map[string]int, len(m.gaps))
	for k, v := range m.gaps {
		copyGaps[k] = v
	}

	return map[string]interface{}{
		"enriched_rows":     m.enriched,
		"detail_failures":   m.detailFailures,
		"validation_errors": copyValidation,
		"enrichment_gaps":   copyGaps,
	}
}
