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
	"time"

	"github.com/PatrickRutledge/bill-of-lading-automation/constants"
	"github.com/PatrickRutledge/bill-of-lading-automation/internal/common"
	"github.com/PatrickRutledge/bill-of-lading-automation/internal/entity"
	"github.com/PatrickRutledge/bill-of-lading-automation/internal/repository"
)

// FSIngestor reads from the local filesystem.
type FSIngestor struct {
	Documents   repository.DocumentRepository
	AllowedExts map[string]struct{} // lowercased sans '.'; nil -> constants.AllowedExtensions
	logger      *slog.Logger
}

func NewFSIngestor(docs repository.DocumentRepository, logger *slog.Logger) *FSIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSIngestor{Documents: docs, logger: logger}
}

// IngestPath hashes the file and registers it. A file whose content was seen
// before resolves to the existing document and is reported as deduplicated.
func (i *FSIngestor) IngestPath(ctx context.Context, path string) (IngestionResult, error) {
	var out IngestionResult

	abs, err := filepath.Abs(path)
	if err != nil {
		i.logger.Error("failed to resolve path", "path", path, "error", err)
		return out, err
	}

	ext := constants.NormalizeExt(filepath.Ext(abs))
	if ext == "" || !AllowedExt(ext, i.AllowedExts) {
		i.logger.Warn("unsupported or missing extension", "path", abs, "ext", ext)
		return out, fmt.Errorf("%w: unsupported or missing extension %q", common.ErrInvalidInput, ext)
	}

	f, err := os.Open(abs)
	if err != nil {
		i.logger.Error("failed to open file", "path", abs, "error", err)
		return out, err
	}
	defer func(f *os.File) {
		if err := f.Close(); err != nil {
			i.logger.Warn("failed to close file", "path", abs, "error", err)
		}
	}(f)

	h := sha256.New()
	size, err := io.Copy(h, f)
	if err != nil {
		i.logger.Error("failed to hash file", "path", abs, "error", err)
		return out, err
	}
	sum := hex.EncodeToString(h.Sum(nil))

	doc, dedup, err := i.Documents.UpsertByHash(ctx, entity.Document{
		SourcePath:  abs,
		Filename:    filepath.Base(abs),
		FileExt:     ext,
		ContentHash: sum,
		SizeBytes:   size,
		UploadedAt:  time.Now().UTC(),
	})
	if err != nil {
		return out, err
	}
	i.logger.Info("document ingested", "document_id", doc.ID, "path", abs, "deduplicated", dedup)

	out = IngestionResult{
		SourcePath:   doc.SourcePath,
		DocumentID:   doc.ID,
		Deduplicated: dedup,
		HashHex:      sum,
		FileExt:      doc.FileExt,
		SizeBytes:    doc.SizeBytes,
		UploadedAt:   doc.UploadedAt,
	}
	return out, nil
}

// IngestDirectory walks root, skips hidden if requested,
// and calls IngestPath for each file. Returns per-file results + aggregate stats.
func (i *FSIngestor) IngestDirectory(ctx context.Context, root string, skipHidden bool) ([]IngestionResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, fmt.Errorf("%w: root path is required", common.ErrInvalidInput)
	}

	var results []IngestionResult
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			results = append(results, IngestionResult{SourcePath: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}
		if !AllowedExt(filepath.Ext(path), i.AllowedExts) {
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
		if errors.Is(err, fs.ErrNotExist) {
			return results, stats, fmt.Errorf("walk: %w: %w", common.ErrNotFound, err)
		}
		return results, stats, fmt.Errorf("walk: %w", err)
	}
	i.logger.Info("directory ingested", "root", root,
		"scanned", stats.Scanned, "matched", stats.Matched, "succeeded", stats.Succeeded,
		"deduplicated", stats.Deduplicated, "failed", stats.Failed)
	return results, stats, nil
}
