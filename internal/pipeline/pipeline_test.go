package pipeline_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/epw-ingest-service/internal/domain"
	"github.com/couchcryptid/epw-ingest-service/internal/epw"
	"github.com/couchcryptid/epw-ingest-service/internal/observability"
	"github.com/couchcryptid/epw-ingest-service/internal/pipeline"
)

const fixture = "../epw/testdata/USA_FL_Tampa_TMY2.epw"

// --- mocks ---

type mockSource struct {
	files     []domain.RawFile
	served    bool
	processed []string
	failed    []string
}

func (m *mockSource) ExtractBatch(_ context.Context) ([]domain.RawFile, error) {
	if m.served {
		return nil, nil
	}
	m.served = true
	return m.files, nil
}

func (m *mockSource) MarkProcessed(file domain.RawFile) error {
	m.processed = append(m.processed, file.Path)
	return nil
}

func (m *mockSource) MarkFailed(file domain.RawFile) error {
	m.failed = append(m.failed, file.Path)
	return nil
}

type mockLoader struct {
	batches [][]domain.RecordEvent
	err     error
}

func (m *mockLoader) LoadBatch(_ context.Context, events []domain.RecordEvent) error {
	if m.err != nil {
		return m.err
	}
	batch := make([]domain.RecordEvent, len(events))
	copy(batch, events)
	m.batches = append(m.batches, batch)
	return nil
}

func (m *mockLoader) loaded() int {
	n := 0
	for _, b := range m.batches {
		n += len(b)
	}
	return n
}

func newTestMetrics() *observability.Metrics {
	// Use a fresh registry to avoid "already registered" panics in tests.
	return observability.NewMetricsForTesting()
}

func newPipeline(src *mockSource, ldr *mockLoader, batchSize int) *pipeline.Pipeline {
	tfm := pipeline.NewTransformer(slog.Default())
	return pipeline.New(src, tfm, ldr, slog.Default(), newTestMetrics(), 10*time.Millisecond, batchSize)
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	src := &mockSource{files: []domain.RawFile{{Path: fixture}}}
	ldr := &mockLoader{}
	p := newPipeline(src, ldr, 500)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))

	assert.Equal(t, 3, ldr.loaded())
	assert.Equal(t, []string{fixture}, src.processed)
	assert.Empty(t, src.failed)
	assert.NoError(t, p.CheckReadiness(context.Background()))

	assert.Equal(t, "722110", ldr.batches[0][0].WMO)
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	src := &mockSource{files: []domain.RawFile{{Path: fixture}}}
	ldr := &mockLoader{}
	p := newPipeline(src, ldr, 500)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, p.Run(ctx))
	assert.Empty(t, ldr.batches)
}

func TestPipeline_Run_ParseFailureQuarantines(t *testing.T) {
	src := &mockSource{files: []domain.RawFile{
		{Path: "no/such/file.epw"},
		{Path: fixture},
	}}
	ldr := &mockLoader{}
	p := newPipeline(src, ldr, 500)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))

	// The bad file is quarantined; the good file still goes through.
	assert.Equal(t, []string{"no/such/file.epw"}, src.failed)
	assert.Equal(t, []string{fixture}, src.processed)
	assert.Equal(t, 3, ldr.loaded())
}

func TestPipeline_Run_PublishFailureLeavesFileInSpool(t *testing.T) {
	src := &mockSource{files: []domain.RawFile{{Path: fixture}}}
	ldr := &mockLoader{err: errors.New("broker unavailable")}
	p := newPipeline(src, ldr, 500)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))

	assert.Empty(t, src.processed)
	assert.Empty(t, src.failed)
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_ChunksPublishBatches(t *testing.T) {
	src := &mockSource{files: []domain.RawFile{{Path: fixture}}}
	ldr := &mockLoader{}
	p := newPipeline(src, ldr, 2)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))

	require.Len(t, ldr.batches, 2)
	assert.Len(t, ldr.batches[0], 2)
	assert.Len(t, ldr.batches[1], 1)
}

func TestWeatherFileTransformer_Transform(t *testing.T) {
	tfm := pipeline.NewTransformer(slog.Default())

	events, err := tfm.Transform(context.Background(), domain.RawFile{Path: fixture})
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "722110", events[0].WMO)
	assert.Equal(t, "TAMPA", events[0].City)
}

func TestWeatherFileTransformer_Transform_BadFile(t *testing.T) {
	tfm := pipeline.NewTransformer(slog.Default())

	_, err := tfm.Transform(context.Background(), domain.RawFile{Path: "no/such/file.epw"})
	var perr *epw.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, epw.KindFileAccess, perr.Kind)
}
