//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	kafkaadapter "github.com/couchcryptid/epw-ingest-service/internal/adapter/kafka"
	"github.com/couchcryptid/epw-ingest-service/internal/adapter/spool"
	"github.com/couchcryptid/epw-ingest-service/internal/config"
	"github.com/couchcryptid/epw-ingest-service/internal/domain"
	"github.com/couchcryptid/epw-ingest-service/internal/observability"
	"github.com/couchcryptid/epw-ingest-service/internal/pipeline"
)

const (
	testSinkTopic = "test-weather-records"
	fixture       = "../epw/testdata/USA_FL_Tampa_TMY2.epw"
)

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("test-cluster"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	cconn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer cconn.Close()

	require.NoError(t, cconn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// spoolFixture copies the test weather file into a fresh spool directory.
func spoolFixture(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	data, err := os.ReadFile(fixture)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tampa.epw"), data, 0o600))
	return dir
}

// TestIngestEndToEnd wires the full pipeline (spool → transformer → Kafka
// writer) against a real broker: the spooled weather file's three rows must
// arrive on the sink topic and the file must move to processed/.
func TestIngestEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	spoolDir := spoolFixture(t)

	// A corrupt file in the same scan must be quarantined, not block the run.
	require.NoError(t, os.WriteFile(filepath.Join(spoolDir, "corrupt.epw"),
		[]byte("BOGUS SECTION,1,2,3\n"), 0o600))

	cfg := &config.Config{
		KafkaBrokers:     []string{broker},
		KafkaSinkTopic:   testSinkTopic,
		SpoolDir:         spoolDir,
		ScanInterval:     100 * time.Millisecond,
		PublishBatchSize: 500,
	}

	source, err := spool.NewScanner(cfg.SpoolDir, discardLogger())
	require.NoError(t, err)

	writer := kafkaadapter.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	p := pipeline.New(source, pipeline.NewTransformer(discardLogger()), writer,
		discardLogger(), observability.NewMetricsForTesting(),
		cfg.ScanInterval, cfg.PublishBatchSize)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	var events []domain.RecordEvent
	var keys []string
	for len(events) < 3 {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := consumer.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err, "read from sink topic")

		var e domain.RecordEvent
		require.NoError(t, json.Unmarshal(msg.Value, &e))
		events = append(events, e)
		keys = append(keys, string(msg.Key))
	}

	pipelineCancel()
	require.NoError(t, <-errCh)

	// Single partition preserves file order: rows arrive oldest hour first.
	assert.Equal(t, "722110-536475600", keys[0])
	assert.Equal(t, "722110-536479200", keys[1])
	assert.Equal(t, "722110-536482800", keys[2])

	first := events[0]
	assert.Equal(t, "722110", first.WMO)
	assert.Equal(t, "TAMPA", first.City)
	require.NotNil(t, first.DryBulbTemperature)
	assert.Equal(t, 20.6, *first.DryBulbTemperature)
	assert.Nil(t, first.ZenithLuminance, "sentinel column must not survive serialization")
	assert.False(t, first.ProcessedAt.IsZero())

	// Dispositions on disk: good file processed, corrupt file quarantined.
	_, err = os.Stat(filepath.Join(spoolDir, "processed", "tampa.epw"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(spoolDir, "failed", "corrupt.epw"))
	assert.NoError(t, err)
}

// TestWriterRoundTrip verifies the Kafka adapter alone: LoadBatch publishes
// record events whose key, headers, and body survive a broker round trip.
func TestWriterRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:   []string{broker},
		KafkaSinkTopic: testSinkTopic,
	}

	dryBulb := 21.5
	event := domain.RecordEvent{
		WMO:                "722110",
		City:               "TAMPA",
		Timestamp:          time.Unix(536475600, 0),
		DryBulbTemperature: &dryBulb,
		ProcessedAt:        time.Now().UTC().Truncate(time.Second),
	}

	writer := kafkaadapter.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	require.NoError(t, writer.LoadBatch(ctx, []domain.RecordEvent{event}))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-roundtrip-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	msg, err := consumer.ReadMessage(readCtx)
	readCancel()
	require.NoError(t, err)

	assert.Equal(t, "722110-536475600", string(msg.Key))

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "722110", headers["wmo"])
	_, err = time.Parse(time.RFC3339, headers["processed_at"])
	assert.NoError(t, err, "processed_at header should be valid RFC3339")

	var got domain.RecordEvent
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, "722110", got.WMO)
	require.NotNil(t, got.DryBulbTemperature)
	assert.Equal(t, 21.5, *got.DryBulbTemperature)
}
