package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/PatrickRutledge/bill-of-lading-automation/constants"
	"github.com/PatrickRutledge/bill-of-lading-automation/internal/entity"
	"github.com/PatrickRutledge/bill-of-lading-automation/internal/repository"
)

const (
	ShipmentsSheet = "Shipments"
	LogSheet       = "Processing Log"
)

// Service is a tiny façade over repositories that produces XLSX bytes for exports.
type Service struct {
	shipments repository.ShipmentRepository
	logs      repository.OrderLogRepository
	logger    *slog.Logger
}

func NewService(shipments repository.ShipmentRepository, logs repository.OrderLogRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{shipments: shipments, logs: logs, logger: logger}
}

// ShipmentsXLSX returns a workbook with the newest shipments on one sheet and
// the processing log on another. limit <= 0 uses repository.DefaultLimit.
func (s *Service) ShipmentsXLSX(ctx context.Context, limit int) ([]byte, error) {
	start := time.Now()

	ships, err := s.shipments.List(ctx, repository.ListOptions{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("query shipments: %w", err)
	}
	logs, err := s.logs.List(ctx, repository.ListOptions{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("query order log: %w", err)
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("failed to close workbook", "error", err)
		}
	}()
	if err := f.SetSheetName("Sheet1", ShipmentsSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(LogSheet); err != nil {
		return nil, err
	}

	if err := writeShipments(f, ships); err != nil {
		return nil, fmt.Errorf("write shipments: %w", err)
	}
	if err := writeLog(f, logs); err != nil {
		return nil, fmt.Errorf("write order log: %w", err)
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"shipments", len(ships),
		"log_entries", len(logs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func shipmentHeaders() []any {
	h := []any{"Shipment ID", "Document ID"}
	for _, f := range constants.AllFields() {
		h = append(h, string(f))
	}
	return append(h, "extracted_fields", "created_at")
}

func writeShipments(f *excelize.File, ships []entity.Shipment) error {
	headers := shipmentHeaders()
	if err := f.SetSheetRow(ShipmentsSheet, "A1", &headers); err != nil {
		return err
	}
	for i, sh := range ships {
		row := []any{sh.ID.String(), sh.DocumentID.String()}
		for _, field := range constants.AllFields() {
			v, ok := sh.Value(field)
			if !ok {
				v = ""
			}
			row = append(row, v)
		}
		row = append(row, sh.ExtractedFieldCount, sh.CreatedAt.UTC().Format(time.DateTime))

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(ShipmentsSheet, cell, &row); err != nil {
			return err
		}
	}

	_ = f.SetColWidth(ShipmentsSheet, "A", "B", 38)
	_ = f.SetColWidth(ShipmentsSheet, "C", "Q", 24)
	return f.SetPanes(ShipmentsSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func writeLog(f *excelize.File, logs []entity.OrderLog) error {
	headers := []any{"Timestamp", "Source", "Subject", "Attachment", "Status", "Error", "Extracted Fields"}
	if err := f.SetSheetRow(LogSheet, "A1", &headers); err != nil {
		return err
	}
	for i, e := range logs {
		msg := ""
		if e.ErrorMessage != nil {
			msg = truncate(*e.ErrorMessage, 240)
		}
		row := []any{
			e.LogTimestamp.UTC().Format(time.DateTime),
			e.Source, e.Subject, e.AttachmentName,
			string(e.Status), msg, e.ExtractedFields,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(LogSheet, cell, &row); err != nil {
			return err
		}
	}
	_ = f.SetColWidth(LogSheet, "A", "A", 20)
	_ = f.SetColWidth(LogSheet, "B", "D", 28)
	_ = f.SetColWidth(LogSheet, "F", "F", 60)
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
