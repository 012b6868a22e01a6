package bol

import "github.com/PatrickRutledge/bill-of-lading-automation/constants"

// ExcerptLimit bounds Record.RawTextExcerpt, in characters.
const ExcerptLimit = 4000

// Record is the structured result of parsing one document. A nil field means
// "not found". Records are built once by Parse and not modified afterwards.
type Record struct {
	BOLNumber            *string  `json:"bol_number"`
	ShipperName          *string  `json:"shipper_name"`
	ShipperAddress       *string  `json:"shipper_address"`
	ConsigneeName        *string  `json:"consignee_name"`
	ConsigneeAddress     *string  `json:"consignee_address"`
	CarrierName          *string  `json:"carrier_name"`
	ShipmentDate         *string  `json:"shipment_date"`
	DeliveryDate         *string  `json:"delivery_date"`
	OriginCity           *string  `json:"origin_city"`
	DestinationCity      *string  `json:"destination_city"`
	TotalWeight          *float64 `json:"total_weight"`
	TotalPieces          *int     `json:"total_pieces"`
	FreightCharges       *float64 `json:"freight_charges"`
	CommodityDescription *string  `json:"commodity_description"`
	ReferenceNumber      *string  `json:"reference_number"`

	RawTextExcerpt      string `json:"raw_text_excerpt"`
	ExtractedFieldCount int    `json:"extracted_field_count"`
}

// Value returns the value of f and whether it was found.
func (r Record) Value(f constants.Field) (any, bool) {
	switch f {
	case constants.TotalWeight:
		return derefFloat(r.TotalWeight)
	case constants.FreightCharges:
		return derefFloat(r.FreightCharges)
	case constants.TotalPieces:
		if r.TotalPieces == nil {
			return nil, false
		}
		return *r.TotalPieces, true
	}
	p := r.textSlot(f)
	if p == nil || *p == nil {
		return nil, false
	}
	return **p, true
}

// Text returns a text or date field's value, "" when absent.
func (r Record) Text(f constants.Field) string {
	p := r.textSlot(f)
	if p == nil || *p == nil {
		return ""
	}
	return **p
}

// Count recomputes the number of found fields.
func (r Record) Count() int {
	n := 0
	for _, f := range constants.AllFields() {
		if _, ok := r.Value(f); ok {
			n++
		}
	}
	return n
}

// Extracted lists the found fields in canonical order.
func (r Record) Extracted() []constants.Field {
	var out []constants.Field
	for _, f := range constants.AllFields() {
		if _, ok := r.Value(f); ok {
			out = append(out, f)
		}
	}
	return out
}

func (r *Record) textSlot(f constants.Field) **string {
	switch f {
	case constants.BOLNumber:
		return &r.BOLNumber
	case constants.ShipperName:
		return &r.ShipperName
	case constants.ShipperAddress:
		return &r.ShipperAddress
	case constants.ConsigneeName:
		return &r.ConsigneeName
	case constants.ConsigneeAddress:
		return &r.ConsigneeAddress
	case constants.CarrierName:
		return &r.CarrierName
	case constants.ShipmentDate:
		return &r.ShipmentDate
	case constants.DeliveryDate:
		return &r.DeliveryDate
	case constants.OriginCity:
		return &r.OriginCity
	case constants.DestinationCity:
		return &r.DestinationCity
	case constants.CommodityDescription:
		return &r.CommodityDescription
	case constants.ReferenceNumber:
		return &r.ReferenceNumber
	}
	return nil
}

// set assigns a validated value. A field that already holds a value is kept.
func (r *Record) set(f constants.Field, v any) bool {
	if _, ok := r.Value(f); ok {
		return false
	}
	switch val := v.(type) {
	case string:
		p := r.textSlot(f)
		if p == nil {
			return false
		}
		*p = &val
	case float64:
		switch f {
		case constants.TotalWeight:
			r.TotalWeight = &val
		case constants.FreightCharges:
			r.FreightCharges = &val
		default:
			return false
		}
	case int:
		if f != constants.TotalPieces {
			return false
		}
		r.TotalPieces = &val
	default:
		return false
	}
	return true
}

func derefFloat(p *float64) (any, bool) {
	if p == nil {
		return nil, false
	}
	return *p, true
}

// Excerpt returns the first ExcerptLimit characters of text.
func Excerpt(text string) string {
	if len(text) <= ExcerptLimit {
		return text
	}
	n := 0
	for i := range text {
		if n == ExcerptLimit {
			return text[:i]
		}
		n++
	}
	return text
}
