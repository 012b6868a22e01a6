// Package textsource turns stored documents into plain text for the parser.
package textsource

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/PatrickRutledge/bill-of-lading-automation/constants"
)

// Extraction methods reported in ExtractionResult.Method.
const (
	MethodPlainText = "plain-text"
	MethodPDFToText = "pdftotext"
	MethodPDFRows   = "pdf-rows"
	MethodNone      = "none"
)

type Config struct {
	Pdftotext string        // binary name or absolute path; if empty -> "pdftotext"
	Timeout   time.Duration // per-command limit; 0 = none
}

type ExtractionResult struct {
	Text       string
	Pages      int
	SourceType string // constants.PDF | constants.TXT
	Method     string
	Duration   time.Duration
	Warnings   []string
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

type Option func(*Extractor)

// WithRunner replaces the command runner, mostly for tests.
func WithRunner(r Runner) Option {
	return func(e *Extractor) {
		if r != nil {
			e.runner = r
		}
	}
}

func NewExtractor(cfg Config, logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	e := &Extractor{cfg: cfg, runner: ExecRunner{Logger: logger}, logger: logger}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Extract picks a strategy based on file extension. A PDF nothing can read
// yields empty text and warnings rather than an error, so the document still
// gets a (blank) record and a log entry.
func (e *Extractor) Extract(ctx context.Context, path string) (ExtractionResult, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	e.logger.Debug("starting text extraction", "path", path, "ext", ext)

	if _, err := os.Stat(path); err != nil {
		return ExtractionResult{}, fmt.Errorf("stat %s: %w", path, err)
	}

	var (
		res ExtractionResult
		err error
	)
	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		res = e.extractPDF(ctx, path)
	case constants.TXT:
		res, err = readPlainText(path)
	default:
		e.logger.Error("unsupported extension", "extension", ext)
		return ExtractionResult{}, fmt.Errorf("unsupported extension: %q", ext)
	}
	res.Duration = time.Since(start)
	if err == nil {
		e.logger.Info("text extracted",
			"path", path,
			"method", res.Method,
			"pages", res.Pages,
			"chars", len(res.Text),
			"warnings", len(res.Warnings),
			"duration_ms", res.Duration.Milliseconds(),
		)
	}
	return res, err
}

func readPlainText(path string) (ExtractionResult, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return ExtractionResult{}, fmt.Errorf("read %s: %w", path, err)
	}
	return ExtractionResult{
		Text:       string(b),
		Pages:      1,
		SourceType: constants.TXT,
		Method:     MethodPlainText,
	}, nil
}
