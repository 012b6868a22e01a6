package server

import (
	"context"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/PatrickRutledge/bill-of-lading-automation/internal/common"
	"github.com/PatrickRutledge/bill-of-lading-automation/internal/ingest"
)

// IngestFile registers {path} and processes it right away.
func (s *BOLService) IngestFile(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	logger := common.LoggerFromContext(ctx, s.logger)
	path := stringField(req, "path")
	if path == "" {
		logger.Error("ingest request missing path")
		return nil, status.Error(codes.InvalidArgument, "path is required")
	}
	if s.ingestor == nil || s.processor == nil {
		return nil, status.Error(codes.Unimplemented, "ingest is not enabled on this server")
	}

	logger.Info("starting file ingest", "path", path)
	r, err := s.ingestor.IngestPath(ctx, path)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "ingest: %v", err)
	}
	logger.Info("file ingest succeeded", "document_id", r.DocumentID, "deduplicated", r.Deduplicated)

	out, err := structpb.NewStruct(s.processResult(ctx, r))
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// IngestDirectory ingests every document under {root_path} and processes the
// ones that were registered. {skip_hidden} defaults to true.
func (s *BOLService) IngestDirectory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	logger := common.LoggerFromContext(ctx, s.logger)
	root := stringField(req, "root_path")
	if root == "" {
		logger.Error("ingest directory request missing root_path")
		return nil, status.Error(codes.InvalidArgument, "root_path is required")
	}
	if s.ingestor == nil || s.processor == nil {
		return nil, status.Error(codes.Unimplemented, "ingest is not enabled on this server")
	}
	skipHidden := boolField(req, "skip_hidden", true)

	logger.Info("starting directory ingest", "root", root, "skip_hidden", skipHidden)
	results, stats, err := s.ingestor.IngestDirectory(ctx, root, skipHidden)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	logger.Info("directory ingest completed", "scanned", stats.Scanned, "matched", stats.Matched,
		"succeeded", stats.Succeeded, "deduplicated", stats.Deduplicated, "failed", stats.Failed)

	items := make([]any, 0, len(results))
	for _, r := range results {
		items = append(items, s.processResult(ctx, r))
	}
	out, err := structpb.NewStruct(map[string]any{
		"scanned":      stats.Scanned,
		"matched":      stats.Matched,
		"succeeded":    stats.Succeeded,
		"deduplicated": stats.Deduplicated,
		"failed":       stats.Failed,
		"results":      items,
	})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// processResult runs the pipeline for a freshly ingested document. Documents
// seen before are reported but not processed again.
func (s *BOLService) processResult(ctx context.Context, r ingest.IngestionResult) map[string]any {
	item := map[string]any{
		"source_path":  r.SourcePath,
		"deduplicated": r.Deduplicated,
		"error":        r.Err,
	}
	if r.Err != "" {
		return item
	}
	item["document_id"] = r.DocumentID.String()
	item["content_hash_hex"] = r.HashHex
	item["file_ext"] = r.FileExt
	item["uploaded_at"] = r.UploadedAt.UTC().Format(time.RFC3339)
	if r.Deduplicated {
		return item
	}

	out, err := s.processor.ProcessDocument(ctx, r.DocumentID)
	if err != nil {
		common.LoggerFromContext(ctx, s.logger).Error("pipeline.failed", "document_id", r.DocumentID, "err", err)
		item["error"] = err.Error()
	}
	item["status"] = string(out.Status)
	item["extracted_fields"] = out.Record.ExtractedFieldCount
	if out.Reason != "" {
		item["reason"] = out.Reason
	}
	return item
}
