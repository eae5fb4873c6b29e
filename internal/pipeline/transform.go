package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/epw-ingest-service/internal/domain"
	"github.com/couchcryptid/epw-ingest-service/internal/epw"
)

// WeatherFileTransformer implements FileTransformer by parsing the spooled
// EPW file and flattening every decoded row into a record event.
type WeatherFileTransformer struct {
	logger *slog.Logger
}

// NewTransformer creates a WeatherFileTransformer.
func NewTransformer(logger *slog.Logger) *WeatherFileTransformer {
	return &WeatherFileTransformer{logger: logger}
}

func (t *WeatherFileTransformer) Transform(_ context.Context, file domain.RawFile) ([]domain.RecordEvent, error) {
	f, err := epw.Open(file.Path)
	if err != nil {
		return nil, err
	}

	t.logger.Debug("file parsed",
		"path", file.Path, "station", f.Header.Location.WMO, "rows", f.Data.Len())

	events := make([]domain.RecordEvent, f.Data.Len())
	for i := range events {
		events[i] = domain.NewRecordEvent(f, i)
	}
	return events, nil
}
