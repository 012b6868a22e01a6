package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/PatrickRutledge/bill-of-lading-automation/internal/async"
	"github.com/PatrickRutledge/bill-of-lading-automation/internal/common"
	"github.com/PatrickRutledge/bill-of-lading-automation/internal/ingest"
	"github.com/PatrickRutledge/bill-of-lading-automation/internal/schedule"
	"github.com/PatrickRutledge/bill-of-lading-automation/internal/server"
)

const shutdownTimeout = 30 * time.Second

var (
	serveAddr    string
	serveNoWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the gRPC service, inbox watcher, worker queue and scheduler",
	Long: `Run everything needed to process documents unattended:

  - gRPC bol.v1.BOLService plus the standard health service
  - a watcher that queues new files dropped into the inbox
  - workers that process queued documents
  - cron jobs for the inbox sweep and the daily report

Shut down with Ctrl+C or SIGTERM; queued documents are drained first.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate(); err != nil {
			return err
		}
		if rep := common.CheckPlaceholders(cfg); !rep.OK() {
			for _, e := range rep.Errors {
				logger.Error("config placeholder", "field", e.Field, "message", e.Message)
			}
			return errors.New("configuration still contains placeholders; run bolctl config check")
		}

		a, err := openApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		inbox := cfg.Ingest.InboxDir
		if err := os.MkdirAll(inbox, 0o755); err != nil {
			return fmt.Errorf("create inbox: %w", err)
		}

		queue := async.NewProcessorQueue(a.processor, logger,
			async.WithWorkers(cfg.Ingest.Workers),
			async.WithQueueSize(cfg.Ingest.QueueSize),
			async.WithProcessTimeout(cfg.Ingest.ProcessTimeout),
		)

		sched := schedule.New(logger)
		if _, err := sched.Add(cfg.Schedule.InboxSweep, &schedule.InboxSweep{Root: inbox, Ingestor: a.ingestor, Queue: queue, Logger: logger}); err != nil {
			return err
		}
		if _, err := sched.Add(cfg.Schedule.DailyReport, &schedule.DailyReport{Reports: a.reports, Notifier: a.notifier, Logger: logger}); err != nil {
			return err
		}
		sched.Start()

		addr := serveAddr
		if addr == "" {
			addr = cfg.Server.GRPCAddr
		}
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		svc := server.NewBOLService(a.parser, a.shipments, a.reports, a.ingestor, a.processor, logger)
		srv := server.New(svc, logger)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return srv.Serve(gctx, lis) })
		if !serveNoWatch {
			g.Go(func() error { return watchInbox(gctx, inbox, a.ingestor, queue) })
		}
		err = g.Wait()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if serr := sched.Stop(shutdownCtx); serr != nil {
			logger.Warn("scheduler did not stop cleanly", "error", serr)
		}
		if qerr := queue.Shutdown(shutdownCtx); qerr != nil {
			logger.Warn("queue did not drain", "error", qerr)
		}
		logger.Info("stopped")
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "gRPC listen address (default: server.grpc_addr)")
	serveCmd.Flags().BoolVar(&serveNoWatch, "no-watch", false, "rely on the scheduled sweep instead of watching the inbox")
}

// watchInbox registers files as they appear and queues the new ones.
func watchInbox(ctx context.Context, inbox string, ingestor ingest.Ingestor, queue async.Queue) error {
	paths, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       []string{inbox},
		InitialScan: true,
		Debounce:    cfg.Ingest.Debounce,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("watcher error", "error", err)
		case path, ok := <-paths:
			if !ok {
				return nil
			}
			r, err := ingestor.IngestPath(ctx, path)
			if err != nil {
				logger.Warn("ingest failed", "path", path, "error", err)
				continue
			}
			if r.Deduplicated {
				logger.Debug("already ingested", "path", path, "document_id", r.DocumentID)
				continue
			}
			job := async.Job{DocumentID: r.DocumentID, Path: path, SubmittedAt: time.Now(), TraceID: uuid.NewString()}
			if err := queue.Enqueue(ctx, job); err != nil {
				if errors.Is(err, async.ErrQueueClosed) || ctx.Err() != nil {
					return nil
				}
				logger.Error("enqueue failed", "path", path, "error", err)
			}
		}
	}
}
