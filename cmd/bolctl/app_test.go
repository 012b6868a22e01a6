package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/PatrickRutledge/bill-of-lading-automation/constants"
	"github.com/PatrickRutledge/bill-of-lading-automation/internal/common"
	"github.com/PatrickRutledge/bill-of-lading-automation/internal/notify"
)

func TestNewParserDatePairPolicy(t *testing.T) {
	text := "11-Jun-2025 00:00 then 12-Jun-2025 00:00"
	tests := []struct {
		policy   string
		delivery string
	}{
		{common.PolicyDeliveryFirst, "11-Jun-2025"},
		{common.PolicyShipmentFirst, "12-Jun-2025"},
	}
	for _, tt := range tests {
		t.Run(tt.policy, func(t *testing.T) {
			p, err := newParser(common.ParserConfig{DatePairPolicy: tt.policy}, nil)
			if err != nil {
				t.Fatal(err)
			}
			rec := p.Parse(text)
			if rec.DeliveryDate == nil || *rec.DeliveryDate != tt.delivery {
				t.Fatalf("delivery_date = %v, want %s", rec.DeliveryDate, tt.delivery)
			}
		})
	}
}

func TestNewParserSitesFile(t *testing.T) {
	if _, err := newParser(common.ParserConfig{SitesFile: filepath.Join(t.TempDir(), "missing.yaml")}, nil); err == nil {
		t.Fatal("expected error for missing sites file")
	}

	path := filepath.Join(t.TempDir(), "sites.yaml")
	doc := "sites:\n  - name: RIVERSIDE MILL\n    city: Dayton\n    state: OH\n    role: origin\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := newParser(common.ParserConfig{SitesFile: path}, nil)
	if err != nil {
		t.Fatal(err)
	}
	rec := p.Parse("Pickup at Riverside Mill dock 4")
	if rec.OriginCity == nil || *rec.OriginCity != "Dayton, OH" {
		t.Fatalf("origin_city = %v, want Dayton, OH", rec.OriginCity)
	}
}

func TestNewNotifier(t *testing.T) {
	if _, ok := newNotifier(common.MailConfig{}, nil).(*notify.LogNotifier); !ok {
		t.Fatal("disabled mail should log")
	}
	if _, ok := newNotifier(common.MailConfig{Enabled: true, SMTPHost: "localhost", SMTPPort: 25}, nil).(*notify.SMTPNotifier); !ok {
		t.Fatal("enabled mail should use SMTP")
	}
}

func TestOpenAppProcessesDirectory(t *testing.T) {
	ctx := context.Background()
	c := &common.Config{
		Database: common.DatabaseConfig{Driver: "sqlite", DSN: "file::memory:"},
		Export:   common.ExportConfig{LogCSV: filepath.Join(t.TempDir(), "order_log.csv")},
	}
	a, err := openApp(ctx, c, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "load.txt"), []byte("Load ID: 08186456 (see attached)\nPieces: 18\nFreight Charges: $1,250.00\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	results, _, err := a.ingestor.IngestDirectory(ctx, dir, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	out, err := a.processor.ProcessDocument(ctx, results[0].DocumentID)
	if err != nil {
		t.Fatal(err)
	}
	if out.Status != constants.LogStatusProcessed {
		t.Fatalf("status = %s, reason %q", out.Status, out.Reason)
	}
	if _, err := os.Stat(c.Export.LogCSV); err != nil {
		t.Fatalf("csv log not written: %v", err)
	}

	b, err := a.exports.ShipmentsXLSX(ctx, defaultExportRows)
	if err != nil {
		t.Fatal(err)
	}
	if len(b) == 0 {
		t.Fatal("empty workbook")
	}
}
