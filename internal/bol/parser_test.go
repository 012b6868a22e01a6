package bol

import (
	"encoding/json"
	"reflect"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/PatrickRutledge/bill-of-lading-automation/constants"
)

const sampleBOL = `BILL OF LADING
Load ID: 08186456
Order: 181688-01
Site:
LITTLE FALLS DISTRIBUTION CENT
Address:
25 BRIDGE STREET
LITTLE FALLS, NY 13365
Carrier:
ACME TRUCKING LLC
Appt Date:
11-Jun-2025 08:00
Ship Date:
12-Jun-2025 06:30
Grade Desc: 42LB KRAFT LINERBOARD
 ROLL STOCK
PO#: 441727
Width: 60
Total: 44,000 lbs
Pieces: 18
Freight Charges: $1,250.00
Deliver to: MONTVILLE, NJ 07045
`

func TestParseSampleDocument(t *testing.T) {
	rec := Parse(sampleBOL)

	wantText := map[constants.Field]string{
		constants.BOLNumber:            "08186456",
		constants.ShipperName:          "LITTLE FALLS DISTRIBUTION CENT",
		constants.ShipperAddress:       "25 BRIDGE STREET, LITTLE FALLS, NY 13365",
		constants.CarrierName:          "ACME TRUCKING LLC",
		constants.DeliveryDate:         "11-Jun-2025",
		constants.ShipmentDate:         "12-Jun-2025",
		constants.OriginCity:           "LITTLE FALLS, NY",
		constants.DestinationCity:      "MONTVILLE, NJ",
		constants.CommodityDescription: "42LB KRAFT LINERBOARD ROLL STOCK",
		constants.ReferenceNumber:      "181688-01",
	}
	for f, want := range wantText {
		if got := rec.Text(f); got != want {
			t.Errorf("%s = %q, want %q", f, got, want)
		}
	}

	if rec.TotalWeight == nil || *rec.TotalWeight != 44000 {
		t.Errorf("total_weight = %v, want 44000", rec.TotalWeight)
	}
	if rec.TotalPieces == nil || *rec.TotalPieces != 18 {
		t.Errorf("total_pieces = %v, want 18", rec.TotalPieces)
	}
	if rec.FreightCharges == nil || *rec.FreightCharges != 1250 {
		t.Errorf("freight_charges = %v, want 1250", rec.FreightCharges)
	}
	if rec.ConsigneeName != nil || rec.ConsigneeAddress != nil {
		t.Errorf("unexpected consignee: %q / %q", rec.Text(constants.ConsigneeName), rec.Text(constants.ConsigneeAddress))
	}
	if rec.ExtractedFieldCount != 13 {
		t.Errorf("extracted_field_count = %d, want 13 (fields %v)", rec.ExtractedFieldCount, rec.Extracted())
	}
	if rec.RawTextExcerpt != sampleBOL {
		t.Error("raw_text_excerpt should hold the whole short document")
	}
}

func TestParseEmptyText(t *testing.T) {
	for _, text := range []string{"", "   \n\t\n"} {
		rec := Parse(text)
		if rec.ExtractedFieldCount != 0 {
			t.Errorf("Parse(%q) count = %d, want 0", text, rec.ExtractedFieldCount)
		}
		for _, f := range constants.AllFields() {
			if v, ok := rec.Value(f); ok {
				t.Errorf("Parse(%q) %s = %v, want absent", text, f, v)
			}
		}
	}
}

func TestParseIsDeterministic(t *testing.T) {
	first := Parse(sampleBOL)
	second := Parse(sampleBOL)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("records differ:\n%+v\n%+v", first, second)
	}
}

func TestParseConcurrentUse(t *testing.T) {
	p, err := NewParser()
	if err != nil {
		t.Fatal(err)
	}
	want := p.Parse(sampleBOL)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := p.Parse(sampleBOL); !reflect.DeepEqual(got, want) {
				t.Errorf("concurrent parse diverged: %+v", got)
			}
		}()
	}
	wg.Wait()
}

func TestExtractedFieldCountMatchesPresentFields(t *testing.T) {
	texts := []string{
		sampleBOL,
		"Load ID: 08186456",
		"Pieces: 12\nFreight Charges: $90.00",
		"SHIPPER\nRIVERSIDE PAPER CO\n10 MILL ROAD\nCONSIGNEE\nACME\nCARRIER\nX",
	}
	for _, text := range texts {
		rec := Parse(text)
		n := 0
		for _, f := range constants.AllFields() {
			if _, ok := rec.Value(f); ok {
				n++
			}
		}
		if rec.ExtractedFieldCount != n {
			t.Errorf("count = %d, present = %d for %q", rec.ExtractedFieldCount, n, text)
		}
	}
}

func TestBOLNumberPrecedence(t *testing.T) {
	rec := Parse("Ref 12345678\nLoad ID: 08186456\n")
	if got := deref(rec.BOLNumber); got != "08186456" {
		t.Errorf("bol_number = %s, want the Load ID", got)
	}
}

func TestNumericBounds(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		weight float64
		pieces int
	}{
		{"weight with unit", "Gross 44,000 lbs", 44000, 0},
		{"weight at bound", "Weight: 100 lbs", 0, 0},
		{"weight above bound", "Weight: 101 lbs", 101, 0},
		{"pieces at upper bound", "Pieces: 10000 total", 0, 0},
		{"pieces below bound", "Pieces: 9999 total", 0, 9999},
		{"zero pieces", "Pieces: 0", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Parse(tt.text)
			switch {
			case tt.weight == 0 && rec.TotalWeight != nil:
				t.Errorf("total_weight = %v, want absent", *rec.TotalWeight)
			case tt.weight != 0 && (rec.TotalWeight == nil || *rec.TotalWeight != tt.weight):
				t.Errorf("total_weight = %v, want %v", rec.TotalWeight, tt.weight)
			}
			switch {
			case tt.pieces == 0 && rec.TotalPieces != nil:
				t.Errorf("total_pieces = %v, want absent", *rec.TotalPieces)
			case tt.pieces != 0 && (rec.TotalPieces == nil || *rec.TotalPieces != tt.pieces):
				t.Errorf("total_pieces = %v, want %v", rec.TotalPieces, tt.pieces)
			}
		})
	}
}

func TestConsigneeLayouts(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		consig  string
		address string
		carrier string
	}{
		{
			name:    "stop list",
			text:    "Stop\nCustomer & Comments\nLine A\nLine B\n1\n250 INDUSTRIAL PARK DRIVE\nMONTVILLE, NJ 07045\nACME INDUSTRIES",
			consig:  "ACME INDUSTRIES",
			address: "250 INDUSTRIAL PARK DRIVE",
		},
		{
			name:    "labeled block",
			text:    "CONSIGNEE\nACME INDUSTRIES\n250 PARK DRIVE\nMONTVILLE NJ\nCARRIER\nFAST FREIGHT INC",
			consig:  "ACME INDUSTRIES",
			address: "250 PARK DRIVE MONTVILLE NJ",
			carrier: "FAST FREIGHT INC",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Parse(tt.text)
			if got := rec.Text(constants.ConsigneeName); got != tt.consig {
				t.Errorf("consignee_name = %q, want %q", got, tt.consig)
			}
			if got := rec.Text(constants.ConsigneeAddress); got != tt.address {
				t.Errorf("consignee_address = %q, want %q", got, tt.address)
			}
			if tt.carrier != "" {
				if got := rec.Text(constants.CarrierName); got != tt.carrier {
					t.Errorf("carrier_name = %q, want %q", got, tt.carrier)
				}
			}
		})
	}
}

func TestShipperBlock(t *testing.T) {
	rec := Parse("SHIPPER\nRIVERSIDE PAPER CO\n10 MILL ROAD\nCONSIGNEE\nACME\nCARRIER\nX")
	if got := rec.Text(constants.ShipperName); got != "RIVERSIDE PAPER CO" {
		t.Errorf("shipper_name = %q", got)
	}
	if got := rec.Text(constants.ShipperAddress); got != "10 MILL ROAD" {
		t.Errorf("shipper_address = %q", got)
	}
}

func TestSiteAddressNeedsKnownOrigin(t *testing.T) {
	rec := Parse("Address:\n9 ELM STREET\nSPRINGFIELD, IL 62701\n")
	if rec.ShipperAddress != nil {
		t.Errorf("shipper_address = %q, want absent without a known origin site", *rec.ShipperAddress)
	}
}

func TestExcerptIsBounded(t *testing.T) {
	rec := Parse(strings.Repeat("é", 5000))
	if n := utf8.RuneCountInString(rec.RawTextExcerpt); n != ExcerptLimit {
		t.Errorf("excerpt has %d characters, want %d", n, ExcerptLimit)
	}
	if rec.ExtractedFieldCount != 0 {
		t.Errorf("count = %d, want 0", rec.ExtractedFieldCount)
	}
}

func TestRecordJSONCarriesEveryKey(t *testing.T) {
	b, err := json.Marshal(Parse("Load ID: 08186456 (see attached)"))
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatal(err)
	}
	for _, f := range constants.AllFields() {
		if _, ok := m[string(f)]; !ok {
			t.Errorf("key %s missing from %s", f, b)
		}
	}
	if m["bol_number"] != "08186456" {
		t.Errorf("bol_number = %v", m["bol_number"])
	}
	if m["carrier_name"] != nil {
		t.Errorf("carrier_name = %v, want null", m["carrier_name"])
	}
	if m["extracted_field_count"] != float64(1) {
		t.Errorf("extracted_field_count = %v, want 1", m["extracted_field_count"])
	}
}

func TestWithValidatorOverride(t *testing.T) {
	p, err := NewParser(WithValidator(constants.CarrierName, func(s string) (any, bool) {
		if strings.Contains(s, "LLC") {
			return nil, false
		}
		return ValidateText(s)
	}))
	if err != nil {
		t.Fatal(err)
	}
	rec := p.Parse("Carrier:\nACME TRUCKING LLC\n")
	if rec.CarrierName != nil && strings.Contains(*rec.CarrierName, "LLC") {
		t.Errorf("carrier_name = %q, override not applied", *rec.CarrierName)
	}
}
