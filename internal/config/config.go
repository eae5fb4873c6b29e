package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// maxPublishBatchSize bounds a single Kafka WriteMessages call.
const maxPublishBatchSize = 1000

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers    []string
	KafkaSinkTopic  string
	SpoolDir        string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// ScanInterval is the idle sleep between spool directory scans.
	ScanInterval time.Duration

	// PublishBatchSize caps how many record events are written per Kafka call.
	// A full station-year is ~8760 records, so files are always chunked.
	PublishBatchSize int
}

// Load reads configuration from environment variables, applying defaults where
// unset. A .env file in the working directory is loaded first when present;
// real environment variables win over .env entries.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	scanInterval, err := parseDuration("SCAN_INTERVAL", "5s")
	if err != nil {
		return nil, err
	}
	batchSize, err := parsePublishBatchSize()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:     parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic:   envOrDefault("KAFKA_SINK_TOPIC", "weather-records"),
		SpoolDir:         envOrDefault("SPOOL_DIR", "spool"),
		HTTPAddr:         envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:         envOrDefault("LOG_LEVEL", "info"),
		LogFormat:        envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:  shutdownTimeout,
		ScanInterval:     scanInterval,
		PublishBatchSize: batchSize,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.SpoolDir == "" {
		return nil, errors.New("SPOOL_DIR is required")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// parseBrokers splits a comma-separated broker list, dropping empty entries.
func parseBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePublishBatchSize() (int, error) {
	raw := envOrDefault("PUBLISH_BATCH_SIZE", "500")
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > maxPublishBatchSize {
		return 0, fmt.Errorf("invalid PUBLISH_BATCH_SIZE: must be 1-%d", maxPublishBatchSize)
	}
	return n, nil
}
