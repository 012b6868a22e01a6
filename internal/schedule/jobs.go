package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/PatrickRutledge/bill-of-lading-automation/internal/async"
	"github.com/PatrickRutledge/bill-of-lading-automation/internal/ingest"
	"github.com/PatrickRutledge/bill-of-lading-automation/internal/notify"
	"github.com/PatrickRutledge/bill-of-lading-automation/internal/report"
)

// Enqueuer accepts documents for processing.
type Enqueuer interface {
	Enqueue(ctx context.Context, job async.Job) error
}

// InboxSweep ingests the inbox directory and queues every newly registered
// document. Files already seen are skipped.
type InboxSweep struct {
	Root     string
	Ingestor ingest.Ingestor
	Queue    Enqueuer
	Logger   *slog.Logger
}

func (j *InboxSweep) Name() string { return "inbox_sweep" }

func (j *InboxSweep) Run(ctx context.Context) error {
	logger := j.Logger
	if logger == nil {
		logger = slog.Default()
	}
	results, stats, err := j.Ingestor.IngestDirectory(ctx, j.Root, true)
	if err != nil {
		return fmt.Errorf("sweep %s: %w", j.Root, err)
	}

	queued := 0
	for _, r := range results {
		if r.Err != "" || r.Deduplicated {
			continue
		}
		job := async.Job{DocumentID: r.DocumentID, Path: r.SourcePath, SubmittedAt: time.Now(), TraceID: "sweep-" + r.DocumentID.String()}
		if err := j.Queue.Enqueue(ctx, job); err != nil {
			return fmt.Errorf("enqueue %s: %w", r.SourcePath, err)
		}
		queued++
	}
	logger.Info("sweep.ok", "root", j.Root, "matched", stats.Matched, "deduplicated", stats.Deduplicated,
		"failed", stats.Failed, "queued", queued)
	return nil
}

// DailyReporter produces the daily summary.
type DailyReporter interface {
	Daily(ctx context.Context) (report.Daily, error)
}

// DailyReport logs today's summary and sends it through the notifier.
type DailyReport struct {
	Reports  DailyReporter
	Notifier notify.Notifier
	Logger   *slog.Logger
}

func (j *DailyReport) Name() string { return "daily_report" }

func (j *DailyReport) Run(ctx context.Context) error {
	logger := j.Logger
	if logger == nil {
		logger = slog.Default()
	}
	d, err := j.Reports.Daily(ctx)
	if err != nil {
		return err
	}
	logger.Info("report.daily",
		"date", d.Date.Format(time.DateOnly),
		"total", d.Counts.Total,
		"processed", d.Counts.Processed,
		"rejected", d.Counts.Rejected,
		"success_rate", d.Counts.SuccessRate(),
	)
	if j.Notifier == nil {
		return nil
	}
	if err := j.Notifier.NotifySummary(ctx, notify.Summary{Title: d.Title(), Body: d.String(), Date: d.Date}); err != nil {
		return fmt.Errorf("send daily report: %w", err)
	}
	return nil
}
