package spool

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/epw-ingest-service/internal/domain"
)

func newTestScanner(t *testing.T) (*Scanner, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := NewScanner(dir, slog.Default())
	require.NoError(t, err)
	return s, dir
}

func writeFile(t *testing.T, dir, name string, mtime time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("LOCATION,..."), 0o600))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
	return path
}

func TestNewScanner_CreatesSubdirectories(t *testing.T) {
	_, dir := newTestScanner(t)

	for _, sub := range []string{"processed", "failed"} {
		info, err := os.Stat(filepath.Join(dir, sub))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestExtractBatch_OldestFirst(t *testing.T) {
	s, dir := newTestScanner(t)

	base := time.Now().Add(-time.Hour)
	writeFile(t, dir, "newer.epw", base.Add(10*time.Minute))
	writeFile(t, dir, "oldest.epw", base)
	writeFile(t, dir, "middle.epw", base.Add(5*time.Minute))

	files, err := s.ExtractBatch(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, "oldest.epw", filepath.Base(files[0].Path))
	assert.Equal(t, "middle.epw", filepath.Base(files[1].Path))
	assert.Equal(t, "newer.epw", filepath.Base(files[2].Path))
}

func TestExtractBatch_SkipsNonWeatherFiles(t *testing.T) {
	s, dir := newTestScanner(t)

	now := time.Now()
	writeFile(t, dir, "station.epw", now)
	writeFile(t, dir, "notes.txt", now)
	writeFile(t, dir, "UPPER.EPW", now)

	files, err := s.ExtractBatch(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 2)
}

func TestExtractBatch_Empty(t *testing.T) {
	s, _ := newTestScanner(t)

	files, err := s.ExtractBatch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestMarkProcessed(t *testing.T) {
	s, dir := newTestScanner(t)
	path := writeFile(t, dir, "station.epw", time.Now())

	require.NoError(t, s.MarkProcessed(domain.RawFile{Path: path}))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "processed", "station.epw"))
	assert.NoError(t, err)

	// The moved file no longer shows up in scans.
	files, err := s.ExtractBatch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestMarkFailed(t *testing.T) {
	s, dir := newTestScanner(t)
	path := writeFile(t, dir, "corrupt.epw", time.Now())

	require.NoError(t, s.MarkFailed(domain.RawFile{Path: path}))

	_, err := os.Stat(filepath.Join(dir, "failed", "corrupt.epw"))
	assert.NoError(t, err)
}

func TestMark_MissingFile(t *testing.T) {
	s, dir := newTestScanner(t)

	err := s.MarkProcessed(domain.RawFile{Path: filepath.Join(dir, "gone.epw")})
	assert.Error(t, err)
}
