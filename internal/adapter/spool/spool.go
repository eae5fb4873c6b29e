// Package spool implements the pipeline source on a spool directory: weather
// files are dropped in, picked up oldest-first, and moved to processed/ or
// failed/ subdirectories once handled.
package spool

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/couchcryptid/epw-ingest-service/internal/domain"
)

const (
	processedDir = "processed"
	failedDir    = "failed"
)

// Scanner watches a spool directory for *.epw files.
// It implements pipeline.Source.
type Scanner struct {
	dir    string
	logger *slog.Logger
}

// NewScanner creates a Scanner rooted at dir, creating the spool directory and
// its processed/ and failed/ subdirectories if needed.
func NewScanner(dir string, logger *slog.Logger) (*Scanner, error) {
	for _, d := range []string{dir, filepath.Join(dir, processedDir), filepath.Join(dir, failedDir)} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("create spool dir: %w", err)
		}
	}
	return &Scanner{dir: dir, logger: logger}, nil
}

// ExtractBatch lists the spool's pending weather files, oldest first.
func (s *Scanner) ExtractBatch(_ context.Context) ([]domain.RawFile, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read spool dir: %w", err)
	}

	var files []domain.RawFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".epw") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// File vanished between ReadDir and Stat; the next scan settles it.
			s.logger.Warn("stat spool file failed", "name", entry.Name(), "error", err)
			continue
		}
		files = append(files, domain.RawFile{
			Path:    filepath.Join(s.dir, entry.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].ModTime.Before(files[j].ModTime) })
	return files, nil
}

// MarkProcessed moves a handled file into the processed/ subdirectory.
func (s *Scanner) MarkProcessed(file domain.RawFile) error {
	return s.move(file, processedDir)
}

// MarkFailed quarantines a file into the failed/ subdirectory.
func (s *Scanner) MarkFailed(file domain.RawFile) error {
	return s.move(file, failedDir)
}

func (s *Scanner) move(file domain.RawFile, sub string) error {
	dest := filepath.Join(s.dir, sub, filepath.Base(file.Path))
	if err := os.Rename(file.Path, dest); err != nil {
		return fmt.Errorf("move to %s: %w", sub, err)
	}
	return nil
}
