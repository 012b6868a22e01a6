package bol

import (
	"testing"

	"github.com/PatrickRutledge/bill-of-lading-automation/constants"
)

func TestValidateWeight(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"100", 0, false},
		{"101", 101, true},
		{"44,000", 44000, true},
		{"1", 0, false},
		{"12.5", 0, false},
		{"2,500.75", 2500.75, true},
		{"", 0, false},
		{",", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, ok := ValidateWeight(tt.in)
			if ok != tt.ok {
				t.Fatalf("ValidateWeight(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if ok && v.(float64) != tt.want {
				t.Errorf("ValidateWeight(%q) = %v, want %v", tt.in, v, tt.want)
			}
		})
	}
}

func TestValidatePieces(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"0", 0, false},
		{"1", 1, true},
		{"163", 163, true},
		{"9999", 9999, true},
		{"10000", 0, false},
		{"-3", 0, false},
		{"twelve", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, ok := ValidatePieces(tt.in)
			if ok != tt.ok {
				t.Fatalf("ValidatePieces(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if ok && v.(int) != tt.want {
				t.Errorf("ValidatePieces(%q) = %v, want %v", tt.in, v, tt.want)
			}
		})
	}
}

func TestValidateFreight(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"$1,250.00", 1250, true},
		{"0", 0, true},
		{"0.99", 0.99, true},
		{"1250000", 1250000, true},
		{"-5", 0, false},
		{"$", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, ok := ValidateFreight(tt.in)
			if ok != tt.ok {
				t.Fatalf("ValidateFreight(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if ok && v.(float64) != tt.want {
				t.Errorf("ValidateFreight(%q) = %v, want %v", tt.in, v, tt.want)
			}
		})
	}
}

func TestValidateText(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"ACME TRUCKING", true},
		{"  trimmed  ", true},
		{"Address", false},
		{"address:", false},
		{"Carrier:", false},
		{"Ship To", false},
		{"", false},
		{"   ", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, ok := ValidateText(tt.in)
			if ok != tt.ok {
				t.Errorf("ValidateText(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
		})
	}
}

func TestDateValidator(t *testing.T) {
	tests := []struct {
		in     string
		loose  bool
		strict bool
	}{
		{"11-Jun-2025", true, true},
		{"11-JUN-2025", true, true},
		{"06/11/2025", true, true},
		{"6-11-25", true, true},
		{"6/11/202", true, false},
		{"6/11/20255", false, false},
		{"32-Foo-2025", true, false},
		{"2/30/2025", true, false},
		{"13/45/2025", true, false},
		{"June 11", false, false},
		{"", false, false},
	}
	loose, strict := DateValidator(false), DateValidator(true)
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if _, ok := loose(tt.in); ok != tt.loose {
				t.Errorf("loose(%q) = %v, want %v", tt.in, ok, tt.loose)
			}
			if _, ok := strict(tt.in); ok != tt.strict {
				t.Errorf("strict(%q) = %v, want %v", tt.in, ok, tt.strict)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	want := map[constants.Field]Kind{
		constants.BOLNumber:      KindText,
		constants.ShipmentDate:   KindDate,
		constants.DeliveryDate:   KindDate,
		constants.TotalWeight:    KindDecimal,
		constants.FreightCharges: KindDecimal,
		constants.TotalPieces:    KindInteger,
		constants.OriginCity:     KindText,
	}
	for f, k := range want {
		if got := KindOf(f); got != k {
			t.Errorf("KindOf(%s) = %s, want %s", f, got, k)
		}
	}
}
