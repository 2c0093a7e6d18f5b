package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/receiptlens/receiptlens/constants"
	"github.com/receiptlens/receiptlens/internal/entity"
	"github.com/receiptlens/receiptlens/internal/repository"
)

// FSIngestor reads from the local filesystem.
type FSIngestor struct {
	Files  repository.FileRepository
	Logger *slog.Logger
}

func NewFSIngestor(files repository.FileRepository, logger *slog.Logger) *FSIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSIngestor{Files: files, Logger: logger}
}

func (i *FSIngestor) IngestPath(ctx context.Context, path string) (IngestionResult, error) {
	var out IngestionResult

	abs, err := filepath.Abs(path)
	if err != nil {
		i.Logger.Error("abs path failed", "path", path, "error", err)
		return out, err
	}

	ext := constants.NormalizeExt(filepath.Ext(abs))
	if ext == "" || !AllowedExt(ext) {
		return out, fmt.Errorf("unsupported or missing extension: %q", ext)
	}

	f, err := os.Open(abs)
	if err != nil {
		i.Logger.Error("open failed", "path", abs, "error", err)
		return out, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return out, err
	}

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		i.Logger.Error("hash failed", "path", abs, "error", err)
		return out, err
	}
	sum := h.Sum(nil)

	row, dedup, err := i.Files.UpsertByHash(ctx, &entity.IngestedFile{
		SourcePath:  abs,
		Filename:    filepath.Base(abs),
		FileExt:     ext,
		FileSize:    int(info.Size()),
		ContentHash: sum,
	})
	if err != nil {
		return out, err
	}

	out = IngestionResult{
		SourcePath:   row.SourcePath,
		FileID:       row.ID.String(),
		Deduplicated: dedup,
		HashHex:      hex.EncodeToString(sum),
		FileExt:      row.FileExt,
		UploadedAt:   row.UploadedAt,
	}
	return out, nil
}

// IngestDirectory walks root, skips hidden entries if requested, and calls
// IngestPath for each matching file. Returns per-file results plus aggregate
// stats; individual file failures never stop the walk.
func (i *FSIngestor) IngestDirectory(ctx context.Context, root string, skipHidden bool) ([]IngestionResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}

	var results []IngestionResult
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			results = append(results, IngestionResult{SourcePath: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}
		ext := constants.NormalizeExt(filepath.Ext(path))
		if !AllowedExt(ext) {
			return nil
		}
		stats.Matched++

		r, err := i.IngestPath(ctx, path)
		if err != nil {
			results = append(results, IngestionResult{SourcePath: path, Err: err.Error()})
			stats.Failed++
			return nil
		}

		results = append(results, r)
		stats.Succeeded++
		if r.Deduplicated {
			stats.Deduplicated++
		}
		return nil
	})

	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}
	return results, stats, nil
}
