package constants

import (
	"strings"
)

// Field identifies one semantic slot of a shipment record.
type Field string

const (
	BOLNumber            Field = "bol_number"
	ShipperName          Field = "shipper_name"
	ShipperAddress       Field = "shipper_address"
	ConsigneeName        Field = "consignee_name"
	ConsigneeAddress     Field = "consignee_address"
	CarrierName          Field = "carrier_name"
	ShipmentDate         Field = "shipment_date"
	DeliveryDate         Field = "delivery_date"
	OriginCity           Field = "origin_city"
	DestinationCity      Field = "destination_city"
	TotalWeight          Field = "total_weight"
	TotalPieces          Field = "total_pieces"
	FreightCharges       Field = "freight_charges"
	CommodityDescription Field = "commodity_description"
	ReferenceNumber      Field = "reference_number"
)

// The order matches the column order of the shipments table.
var allFields = []Field{
	BOLNumber,
	ShipperName,
	ShipperAddress,
	ConsigneeName,
	ConsigneeAddress,
	CarrierName,
	ShipmentDate,
	DeliveryDate,
	OriginCity,
	DestinationCity,
	TotalWeight,
	TotalPieces,
	FreightCharges,
	CommodityDescription,
	ReferenceNumber,
}

// AllFields returns a copy of the closed field set.
func AllFields() []Field {
	out := make([]Field, len(allFields))
	copy(out, allFields)
	return out
}

func AsStringSlice() []string {
	result := make([]string, len(allFields))
	for i, f := range allFields {
		result[i] = string(f)
	}
	return result
}

// ParseField maps a column or label spelling onto a Field.
func ParseField(input string) (Field, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)
	if normalized == "" {
		return "", false
	}

	synonyms := map[string]Field{
		"bol":         BOLNumber,
		"load_id":     BOLNumber,
		"shipper":     ShipperName,
		"consignee":   ConsigneeName,
		"carrier":     CarrierName,
		"ship_date":   ShipmentDate,
		"weight":      TotalWeight,
		"pieces":      TotalPieces,
		"commodity":   CommodityDescription,
		"reference":   ReferenceNumber,
		"po":          ReferenceNumber,
		"origin":      OriginCity,
		"destination": DestinationCity,
	}
	if f, ok := synonyms[normalized]; ok {
		return f, true
	}

	for _, f := range allFields {
		if normalized == string(f) {
			return f, true
		}
	}
	return "", false
}
