package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/epw-ingest-service/internal/domain"
	"github.com/couchcryptid/epw-ingest-service/internal/epw"
	"github.com/couchcryptid/epw-ingest-service/internal/observability"
)

// Source yields spooled weather files and records their final disposition.
type Source interface {
	ExtractBatch(ctx context.Context) ([]domain.RawFile, error)
	MarkProcessed(file domain.RawFile) error
	MarkFailed(file domain.RawFile) error
}

// FileTransformer parses one weather file into record events.
type FileTransformer interface {
	Transform(ctx context.Context, file domain.RawFile) ([]domain.RecordEvent, error)
}

// BatchLoader writes record events to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.RecordEvent) error
}

// Pipeline orchestrates the scan-parse-publish loop.
type Pipeline struct {
	source      Source
	transformer FileTransformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool

	scanInterval     time.Duration
	publishBatchSize int
}

// New creates a Pipeline with the given stages and observability.
func New(s Source, t FileTransformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, scanInterval time.Duration, publishBatchSize int) *Pipeline {
	return &Pipeline{
		source:           s,
		transformer:      t,
		loader:           l,
		logger:           logger,
		metrics:          metrics,
		scanInterval:     scanInterval,
		publishBatchSize: publishBatchSize,
	}
}

// CheckReadiness returns nil once the pipeline has fully processed at least
// one file, or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not processed any files yet")
	}
	return nil
}

// Run executes the ingest loop until the context is cancelled. A file that
// fails to parse is quarantined and the loop moves on; only the scan and
// publish stages, whose failures are transient, trigger backoff and retry.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started",
		"scan_interval", p.scanInterval, "publish_batch_size", p.publishBatchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if !p.processScan(ctx, &backoff, maxBackoff) {
			return nil
		}
	}
}

// processScan runs one spool scan and handles every file it finds.
// Returns false if the pipeline should stop.
func (p *Pipeline) processScan(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	files, err := p.source.ExtractBatch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("spool scan failed", "error", err)
		return p.backoffOrStop(ctx, backoff, maxBackoff)
	}

	if len(files) == 0 {
		return sleepWithContext(ctx, p.scanInterval)
	}

	*backoff = 200 * time.Millisecond

	for _, file := range files {
		if ctx.Err() != nil {
			return false
		}
		if !p.processFile(ctx, file, backoff, maxBackoff) {
			return false
		}
	}
	return true
}

// processFile parses and publishes one spooled file. Parse failures quarantine
// the file; publish failures leave it in place so the next scan retries it.
// Returns false if the pipeline should stop.
func (p *Pipeline) processFile(ctx context.Context, file domain.RawFile, backoff *time.Duration, maxBackoff time.Duration) bool {
	start := time.Now()

	parseStart := time.Now()
	events, err := p.transformer.Transform(ctx, file)
	p.metrics.ParseDuration.Observe(time.Since(parseStart).Seconds())
	if err != nil {
		p.logger.Warn("file failed, quarantining", "error", err, "path", file.Path)
		p.metrics.FilesFailed.WithLabelValues(failureKind(err)).Inc()
		if err := p.source.MarkFailed(file); err != nil {
			p.logger.Error("quarantine failed", "error", err, "path", file.Path)
		}
		return true
	}

	p.metrics.RowsDecoded.Add(float64(len(events)))

	for i := 0; i < len(events); i += p.publishBatchSize {
		end := min(i+p.publishBatchSize, len(events))
		if err := p.loader.LoadBatch(ctx, events[i:end]); err != nil {
			p.logger.Error("publish failed, file left in spool",
				"error", err, "path", file.Path, "published", i)
			return p.backoffOrStop(ctx, backoff, maxBackoff)
		}
		p.metrics.RecordsPublished.Add(float64(end - i))
	}

	if err := p.source.MarkProcessed(file); err != nil {
		p.logger.Error("mark processed failed", "error", err, "path", file.Path)
	}

	p.metrics.FilesProcessed.Inc()
	p.metrics.FileProcessingDuration.Observe(time.Since(start).Seconds())
	p.ready.Store(true)

	p.logger.Info("file processed", "path", file.Path, "records", len(events))
	return true
}

// failureKind maps a transform error to the metric label for files_failed_total.
func failureKind(err error) string {
	var perr *epw.ParseError
	if errors.As(err, &perr) {
		return perr.Kind.String()
	}
	return "other"
}

// backoffOrStop checks for context cancellation, sleeps with the current backoff,
// and advances the backoff. Returns false if the pipeline should stop.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !sleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = nextBackoff(*backoff, maxBackoff)
	return true
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
