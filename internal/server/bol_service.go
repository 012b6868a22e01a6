package server

import (
	"context"
	"log/slog"
	"unicode/utf8"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/PatrickRutledge/bill-of-lading-automation/internal/bol"
	"github.com/PatrickRutledge/bill-of-lading-automation/internal/common"
	"github.com/PatrickRutledge/bill-of-lading-automation/internal/ingest"
	"github.com/PatrickRutledge/bill-of-lading-automation/internal/pipeline"
	"github.com/PatrickRutledge/bill-of-lading-automation/internal/report"
	"github.com/PatrickRutledge/bill-of-lading-automation/internal/repository"
)

const (
	maxListLimit = 500
	maxTextBytes = 4 << 20
)

// DocumentProcessor runs the pipeline for one stored document.
type DocumentProcessor interface {
	ProcessDocument(ctx context.Context, documentID uuid.UUID) (pipeline.Outcome, error)
}

// BOLService implements BOLServer.
type BOLService struct {
	parser    *bol.Parser
	shipments repository.ShipmentRepository
	reports   *report.Service
	ingestor  ingest.Ingestor
	processor DocumentProcessor
	logger    *slog.Logger
}

func NewBOLService(
	parser *bol.Parser,
	shipments repository.ShipmentRepository,
	reports *report.Service,
	ingestor ingest.Ingestor,
	processor DocumentProcessor,
	logger *slog.Logger,
) *BOLService {
	if logger == nil {
		logger = slog.Default()
	}
	return &BOLService{
		parser:    parser,
		shipments: shipments,
		reports:   reports,
		ingestor:  ingestor,
		processor: processor,
		logger:    logger,
	}
}

// ParseText parses {text} without touching the database.
func (s *BOLService) ParseText(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	logger := common.LoggerFromContext(ctx, s.logger)
	v, ok := req.GetFields()["text"]
	if !ok {
		logger.Error("parse request missing text")
		return nil, status.Error(codes.InvalidArgument, "text is required")
	}
	text := v.GetStringValue()
	if len(text) > maxTextBytes {
		return nil, status.Errorf(codes.InvalidArgument, "text exceeds %d bytes", maxTextBytes)
	}
	if !utf8.ValidString(text) {
		return nil, status.Error(codes.InvalidArgument, "text must be valid UTF-8")
	}

	rec := s.parser.Parse(text)
	logger.Info("parsed text", "extracted_fields", rec.ExtractedFieldCount)
	out, err := toStruct(rec)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// ListShipments returns {shipments: [...]}, newest first.
func (s *BOLService) ListShipments(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	logger := common.LoggerFromContext(ctx, s.logger)
	limit, err := intField(req, "limit", repository.DefaultLimit, 1, maxListLimit)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	offset, err := intField(req, "offset", 0, 0, 1<<30)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	ships, err := s.shipments.List(ctx, repository.ListOptions{Limit: limit, Offset: offset})
	if err != nil {
		logger.Error("list shipments failed", "error", err)
		return nil, common.ToStatus(err)
	}

	items := make([]any, 0, len(ships))
	for _, sh := range ships {
		m, err := toMap(sh)
		if err != nil {
			return nil, status.Error(codes.Internal, err.Error())
		}
		items = append(items, m)
	}
	out, err := structpb.NewStruct(map[string]any{"shipments": items})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	logger.Info("listed shipments", "count", len(ships), "limit", limit)
	return out, nil
}

// Stats returns dashboard figures for the last {days} days.
func (s *BOLService) Stats(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	logger := common.LoggerFromContext(ctx, s.logger)
	days, err := intField(req, "days", report.DefaultWindowDays, 1, 3650)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	d, err := s.reports.Dashboard(ctx, days)
	if err != nil {
		logger.Error("stats failed", "error", err)
		return nil, common.ToStatus(err)
	}

	errs := make([]any, 0, len(d.CommonErrors))
	for _, e := range d.CommonErrors {
		errs = append(errs, map[string]any{"message": e.Message, "count": e.Count})
	}
	recent := make([]any, 0, len(d.Recent))
	for _, e := range d.Recent {
		m, err := toMap(e)
		if err != nil {
			return nil, status.Error(codes.Internal, err.Error())
		}
		recent = append(recent, m)
	}
	out, err := structpb.NewStruct(map[string]any{
		"total":            d.Overall.Total,
		"processed":        d.Overall.Processed,
		"rejected":         d.Overall.Rejected,
		"success_rate":     d.Overall.SuccessRate(),
		"window_days":      d.WindowDays,
		"window_total":     d.Window.Total,
		"window_processed": d.Window.Processed,
		"avg_fields":       d.Window.AvgFields,
		"common_errors":    errs,
		"recent":           recent,
	})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}
