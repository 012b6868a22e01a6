package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/PatrickRutledge/bill-of-lading-automation/internal/bol"
	"github.com/PatrickRutledge/bill-of-lading-automation/internal/common"
	"github.com/PatrickRutledge/bill-of-lading-automation/internal/export"
	"github.com/PatrickRutledge/bill-of-lading-automation/internal/ingest"
	"github.com/PatrickRutledge/bill-of-lading-automation/internal/notify"
	"github.com/PatrickRutledge/bill-of-lading-automation/internal/pipeline"
	"github.com/PatrickRutledge/bill-of-lading-automation/internal/report"
	"github.com/PatrickRutledge/bill-of-lading-automation/internal/repository"
	"github.com/PatrickRutledge/bill-of-lading-automation/internal/textsource"
)

// app holds the wired components shared by the commands that need a database.
type app struct {
	db        *repository.DB
	docs      repository.DocumentRepository
	shipments repository.ShipmentRepository
	logs      repository.OrderLogRepository
	parser    *bol.Parser
	notifier  notify.Notifier
	processor *pipeline.Processor
	ingestor  *ingest.FSIngestor
	reports   *report.Service
	exports   *export.Service
}

func openApp(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*app, error) {
	db, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	if err := db.HealthCheck(ctx, cfg.Database.DialTimeout); err != nil {
		db.Close()
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	a := &app{
		db:        db,
		docs:      repository.NewDocumentRepository(db, logger),
		shipments: repository.NewShipmentRepository(db, logger),
		logs:      repository.NewOrderLogRepository(db, logger),
	}
	if a.parser, err = newParser(cfg.Parser, logger); err != nil {
		db.Close()
		return nil, err
	}
	a.notifier = newNotifier(cfg.Mail, logger)

	text := textsource.NewExtractor(textsource.Config{Pdftotext: cfg.TextSource.PDFToText, Timeout: cfg.TextSource.Timeout}, logger)
	a.processor, err = pipeline.NewProcessor(logger, pipeline.Config{
		MinFields:      cfg.Parser.MinFields,
		InsertAttempts: cfg.Database.InsertAttempts,
		RetryDelay:     cfg.Database.RetryDelay,
	}, a.docs, a.shipments, a.logs, text, a.parser, a.notifier)
	if err != nil {
		db.Close()
		return nil, err
	}
	if cfg.Export.LogCSV != "" {
		a.processor.Sink = export.NewCSVLog(cfg.Export.LogCSV)
	}

	a.ingestor = ingest.NewFSIngestor(a.docs, logger)
	a.reports = report.NewService(repository.NewStatsRepository(db, logger), a.logs, a.shipments, logger)
	a.exports = export.NewService(a.shipments, a.logs, logger)
	return a, nil
}

func (a *app) Close() {
	a.db.Close()
}

func newParser(c common.ParserConfig, logger *slog.Logger) (*bol.Parser, error) {
	opts := []bol.Option{
		bol.WithLogger(logger),
		bol.WithStrictDates(c.StrictDates),
		bol.WithUniqueDateSpans(c.UniqueDates),
	}
	if c.ContextWindow > 0 {
		opts = append(opts, bol.WithContextWindow(c.ContextWindow))
	}
	if c.DatePairPolicy == common.PolicyShipmentFirst {
		opts = append(opts, bol.WithDatePairPolicy(bol.ShipmentFirst))
	}
	if c.SitesFile != "" {
		sites, err := bol.LoadSiteRegistryFile(c.SitesFile)
		if err != nil {
			return nil, fmt.Errorf("load sites: %w", err)
		}
		opts = append(opts, bol.WithSiteRegistry(sites))
	}
	return bol.NewParser(opts...)
}

func newNotifier(c common.MailConfig, logger *slog.Logger) notify.Notifier {
	if !c.Enabled {
		return notify.NewLogNotifier(logger)
	}
	return notify.NewSMTPNotifier(c, logger)
}
