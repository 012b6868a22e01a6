package bol

import (
	"errors"
	"testing"

	"github.com/PatrickRutledge/bill-of-lading-automation/constants"
)

func TestDefaultRulesCompile(t *testing.T) {
	table, err := Compile(DefaultRules(DefaultSiteRegistry()))
	if err != nil {
		t.Fatalf("default rule table does not compile: %v", err)
	}
	for _, f := range constants.AllFields() {
		if _, ok := disambiguated[f]; ok {
			continue
		}
		if table.Len(f) == 0 {
			t.Errorf("field %s has no rules", f)
		}
	}
	if len(table.dates) == 0 {
		t.Error("no date rules")
	}
	if len(table.cities) == 0 {
		t.Error("no city rules")
	}
}

func TestCompileRejectsMalformedRules(t *testing.T) {
	tests := []struct {
		name  string
		table RuleTable
	}{
		{"bad regex", RuleTable{Fields: map[constants.Field][]Rule{
			constants.BOLNumber: {{Pattern: `Load ID:\s*(\d+`}},
		}}},
		{"empty pattern", RuleTable{Fields: map[constants.Field][]Rule{
			constants.BOLNumber: {{Pattern: "  "}},
		}}},
		{"group out of range", RuleTable{Fields: map[constants.Field][]Rule{
			constants.ConsigneeName: {{Pattern: `Consignee:\s*(\S+)`, Group: 3}},
		}}},
		{"no capture group", RuleTable{Fields: map[constants.Field][]Rule{
			constants.CarrierName: {{Pattern: `Carrier`}},
		}}},
		{"negative group", RuleTable{Fields: map[constants.Field][]Rule{
			constants.CarrierName: {{Pattern: `Carrier:\s*(\S+)`, Group: -1}},
		}}},
		{"unknown field", RuleTable{Fields: map[constants.Field][]Rule{
			constants.Field("hazmat_class"): {{Pattern: `Class\s*(\d)`}},
		}}},
		{"disambiguated field", RuleTable{Fields: map[constants.Field][]Rule{
			constants.ShipmentDate: {{Pattern: `Ship Date:\s*(\S+)`}},
		}}},
		{"bad date rule", RuleTable{Dates: []Rule{{Pattern: `([0-9]{1,2`}}}},
		{"bad city rule", RuleTable{Cities: []Rule{{Pattern: ``}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.table)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errors.Is(err, ErrMalformedRule) {
				t.Errorf("error %v does not wrap ErrMalformedRule", err)
			}
			var re *RuleError
			if !errors.As(err, &re) {
				t.Errorf("error %v is not a *RuleError", err)
			}
		})
	}
}

func TestNewParserReportsMalformedRules(t *testing.T) {
	_, err := NewParser(WithRules(RuleTable{Fields: map[constants.Field][]Rule{
		constants.BOLNumber: {{Pattern: `(`}},
	}}))
	if !errors.Is(err, ErrMalformedRule) {
		t.Fatalf("NewParser error = %v, want ErrMalformedRule", err)
	}
}

func TestTryEvaluateRecoversPanics(t *testing.T) {
	table, err := Compile(RuleTable{Fields: map[constants.Field][]Rule{
		constants.CarrierName: {
			{Pattern: `Carrier:\s*([^\n]+)`, Compose: func(Match) string { panic("boom") }},
			{Pattern: `Carrier:\s*([^\n]+)`},
		},
	}})
	if err != nil {
		t.Fatal(err)
	}

	r := table.fields[constants.CarrierName][0]
	_, ok, err := r.tryEvaluate("Carrier: ACME TRUCKING")
	if ok {
		t.Error("panicking rule reported a match")
	}
	if !errors.Is(err, ErrMalformedRule) {
		t.Errorf("err = %v, want ErrMalformedRule", err)
	}

	e := NewEngine(table, nil, nil)
	v, ok := e.Extract(constants.CarrierName, "Carrier: ACME TRUCKING")
	if !ok || v != "ACME TRUCKING" {
		t.Errorf("Extract = %v, %v; want the next rule's value", v, ok)
	}
}

func TestCascadeSkipsRejectedCandidates(t *testing.T) {
	table, err := Compile(RuleTable{Fields: map[constants.Field][]Rule{
		constants.TotalWeight: {
			{Pattern: `Tare:\s*([0-9,]+)`},
			{Pattern: `Gross:\s*([0-9,]+)`},
		},
		constants.CarrierName: {
			{Pattern: `Carrier:\s*([^\n]+)`, Skip: startsWithFold(1, "load id")},
			{Pattern: `Hauler:\s*([^\n]+)`},
		},
	}})
	if err != nil {
		t.Fatal(err)
	}
	e := NewEngine(table, nil, nil)

	v, ok := e.Extract(constants.TotalWeight, "Tare: 40\nGross: 44,000")
	if !ok || v.(float64) != 44000 {
		t.Errorf("weight = %v, %v; want 44000 from the second rule", v, ok)
	}

	v, ok = e.Extract(constants.CarrierName, "Carrier: Load ID 5\nHauler: ACME")
	if !ok || v != "ACME" {
		t.Errorf("carrier = %v, %v; want ACME", v, ok)
	}

	if _, ok := e.Extract(constants.TotalWeight, "Tare: 40"); ok {
		t.Error("expected absent weight when every candidate is rejected")
	}
}

func TestCascadeFirstValidWins(t *testing.T) {
	table, err := Compile(RuleTable{Fields: map[constants.Field][]Rule{
		constants.ReferenceNumber: {
			{Pattern: `PO#:\s*(\S+)`},
			{Pattern: `Order:\s*(\S+)`},
		},
	}})
	if err != nil {
		t.Fatal(err)
	}
	e := NewEngine(table, nil, nil)
	v, ok := e.Extract(constants.ReferenceNumber, "Order: 181688-01\nPO#: 441727")
	if !ok || v != "441727" {
		t.Errorf("reference = %v, %v; want 441727 (rule order beats text order)", v, ok)
	}
}
