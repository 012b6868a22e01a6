// Package pipeline turns registered documents into shipments and order log
// entries.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/PatrickRutledge/bill-of-lading-automation/constants"
	"github.com/PatrickRutledge/bill-of-lading-automation/internal/bol"
	"github.com/PatrickRutledge/bill-of-lading-automation/internal/common"
	"github.com/PatrickRutledge/bill-of-lading-automation/internal/entity"
	"github.com/PatrickRutledge/bill-of-lading-automation/internal/notify"
	"github.com/PatrickRutledge/bill-of-lading-automation/internal/repository"
	"github.com/PatrickRutledge/bill-of-lading-automation/internal/textsource"
)

// Rejection reasons stored in order_log.error_message.
const (
	ReasonNoFields = "no fields extracted"
	ReasonTooFew   = "too few fields extracted"
)

// TextSource yields the text of a stored document.
type TextSource interface {
	Extract(ctx context.Context, path string) (textsource.ExtractionResult, error)
}

// LogSink mirrors order log entries somewhere besides the database.
type LogSink interface {
	Append(e entity.OrderLog) error
}

// Config holds thresholds and retry behavior.
type Config struct {
	MinFields      int           // processed needs at least this many fields; default 1
	InsertAttempts uint          // default 3
	RetryDelay     time.Duration // base delay between insert attempts
	Source         string        // order_log.source, e.g. "inbox"
}

// Outcome is what happened to one document.
type Outcome struct {
	DocumentID uuid.UUID
	Status     constants.LogStatus
	Record     bol.Record
	ShipmentID uuid.UUID
	LogID      uuid.UUID
	Reason     string
	Text       textsource.ExtractionResult
}

type Processor struct {
	Logger    *slog.Logger
	Cfg       Config
	Documents repository.DocumentRepository
	Shipments repository.ShipmentRepository
	Logs      repository.OrderLogRepository
	Text      TextSource
	Parser    *bol.Parser
	Notifier  notify.Notifier
	Sink      LogSink

	schema *jsonschema.Schema
}

func NewProcessor(
	logger *slog.Logger,
	cfg Config,
	docs repository.DocumentRepository,
	shipments repository.ShipmentRepository,
	logs repository.OrderLogRepository,
	text TextSource,
	parser *bol.Parser,
	notifier notify.Notifier,
) (*Processor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MinFields <= 0 {
		cfg.MinFields = 1
	}
	if cfg.InsertAttempts == 0 {
		cfg.InsertAttempts = 3
	}
	if cfg.Source == "" {
		cfg.Source = "inbox"
	}
	if parser == nil {
		var err error
		if parser, err = bol.NewParser(bol.WithLogger(logger)); err != nil {
			return nil, err
		}
	}
	if notifier == nil {
		notifier = notify.NewLogNotifier(logger)
	}
	schema, err := common.CompileSchema(bol.RecordSchema())
	if err != nil {
		return nil, fmt.Errorf("compile record schema: %w", err)
	}
	return &Processor{
		Logger:    logger,
		Cfg:       cfg,
		Documents: docs,
		Shipments: shipments,
		Logs:      logs,
		Text:      text,
		Parser:    parser,
		Notifier:  notifier,
		schema:    schema,
	}, nil
}

// ProcessDocument extracts, parses and stores one document. Every call that
// gets past loading the document appends exactly one order log entry; a
// rejected document also triggers a notification. The returned error is only
// set when the outcome could not be recorded.
func (p *Processor) ProcessDocument(ctx context.Context, documentID uuid.UUID) (Outcome, error) {
	out := Outcome{DocumentID: documentID}
	logger := common.LoggerFromContext(ctx, p.Logger).With("document_id", documentID)

	doc, err := p.Documents.GetByID(ctx, documentID)
	if err != nil {
		logger.Error("processor.load.failed", "err", err)
		return out, fmt.Errorf("load document: %w", err)
	}

	res, err := p.Text.Extract(ctx, doc.SourcePath)
	if err != nil {
		logger.Warn("processor.text.failed", "path", doc.SourcePath, "err", err)
		out.Reason = "text extraction failed: " + err.Error()
	} else {
		out.Text = res
		logger.Info("processor.text.ok",
			"method", res.Method,
			"pages", res.Pages,
			"warnings", len(res.Warnings),
			"elapsed_ms", res.Duration.Milliseconds(),
		)
	}

	out.Record = p.Parser.Parse(res.Text)
	out.Status = constants.LogStatusRejected

	switch {
	case out.Reason != "":
	case out.Record.ExtractedFieldCount == 0:
		out.Reason = ReasonNoFields
	case out.Record.ExtractedFieldCount < p.Cfg.MinFields:
		out.Reason = fmt.Sprintf("%s: %d of %d required", ReasonTooFew, out.Record.ExtractedFieldCount, p.Cfg.MinFields)
	default:
		if err := p.validate(out.Record); err != nil {
			out.Reason = err.Error()
			break
		}
		shipment, err := p.insert(ctx, doc.ID, out.Record)
		if err != nil {
			out.Reason = err.Error()
			break
		}
		out.ShipmentID = shipment.ID
		out.Status = constants.LogStatusProcessed
	}

	entry := entity.OrderLog{
		DocumentID:      &doc.ID,
		Source:          p.Cfg.Source,
		Subject:         doc.Filename,
		AttachmentName:  doc.Filename,
		Status:          out.Status,
		ExtractedFields: out.Record.ExtractedFieldCount,
		LogTimestamp:    time.Now().UTC(),
	}
	if out.Reason != "" {
		reason := out.Reason
		entry.ErrorMessage = &reason
	}
	logged, logErr := p.Logs.Append(ctx, entry)
	if logErr != nil {
		logger.Error("processor.log.failed", "err", logErr)
	} else {
		out.LogID = logged.ID
	}
	if p.Sink != nil {
		if err := p.Sink.Append(entry); err != nil {
			logger.Warn("processor.sink.failed", "err", err)
		}
	}

	if out.Status == constants.LogStatusRejected {
		logger.Warn("processor.rejected", "reason", out.Reason, "extracted_fields", out.Record.ExtractedFieldCount)
		err := p.Notifier.NotifyRejected(ctx, notify.Rejection{
			DocumentID:      doc.ID,
			Subject:         doc.Filename,
			AttachmentName:  doc.Filename,
			AttachmentPath:  doc.SourcePath,
			Reason:          out.Reason,
			ExtractedFields: out.Record.ExtractedFieldCount,
			At:              entry.LogTimestamp,
		})
		if err != nil {
			logger.Error("processor.notify.failed", "err", err)
		}
	} else {
		logger.Info("processor.processed", "shipment_id", out.ShipmentID, "extracted_fields", out.Record.ExtractedFieldCount)
	}

	if logErr != nil {
		return out, fmt.Errorf("append order log: %w", logErr)
	}
	return out, nil
}

func (p *Processor) validate(rec bol.Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if err := common.ValidateJSON(p.schema, b); err != nil {
		return fmt.Errorf("record failed schema validation: %w", err)
	}
	return nil
}

func (p *Processor) insert(ctx context.Context, documentID uuid.UUID, rec bol.Record) (entity.Shipment, error) {
	var shipment entity.Shipment
	err := retry.Do(
		func() error {
			s, err := p.Shipments.Insert(ctx, documentID, rec)
			if err != nil {
				return err
			}
			shipment = s
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(p.Cfg.InsertAttempts),
		retry.Delay(p.Cfg.RetryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		}),
	)
	if err != nil {
		return entity.Shipment{}, fmt.Errorf("insert shipment: %w", err)
	}
	return shipment, nil
}

// Process satisfies the async queue's handler signature.
func (p *Processor) Process(ctx context.Context, documentID uuid.UUID) error {
	_, err := p.ProcessDocument(ctx, documentID)
	return err
}
