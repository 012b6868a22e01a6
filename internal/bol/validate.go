package bol

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PatrickRutledge/bill-of-lading-automation/constants"
)

// Kind is the semantic type a field's value is coerced to.
type Kind int

const (
	KindText Kind = iota
	KindDate
	KindDecimal
	KindInteger
)

func (k Kind) String() string {
	switch k {
	case KindDate:
		return "date"
	case KindDecimal:
		return "decimal"
	case KindInteger:
		return "integer"
	default:
		return "text"
	}
}

// KindOf reports the value kind of a field.
func KindOf(f constants.Field) Kind {
	switch f {
	case constants.ShipmentDate, constants.DeliveryDate:
		return KindDate
	case constants.TotalWeight, constants.FreightCharges:
		return KindDecimal
	case constants.TotalPieces:
		return KindInteger
	default:
		return KindText
	}
}

// Validator coerces a candidate to its field's type and accepts or rejects it.
// Text and date fields yield string, decimals float64, integers int.
type Validator func(candidate string) (any, bool)

const (
	MinWeight = 100   // exclusive
	MaxPieces = 10000 // exclusive
)

var bareLabels = map[string]struct{}{
	"address":     {},
	"bill to":     {},
	"carrier":     {},
	"commodity":   {},
	"consignee":   {},
	"date":        {},
	"description": {},
	"destination": {},
	"from":        {},
	"load id":     {},
	"name":        {},
	"order":       {},
	"origin":      {},
	"po#":         {},
	"ref":         {},
	"reference":   {},
	"ship from":   {},
	"ship to":     {},
	"shipper":     {},
	"site":        {},
	"to":          {},
}

func isBareLabel(s string) bool {
	t := strings.TrimSpace(s)
	t = strings.TrimSpace(strings.TrimSuffix(t, ":"))
	_, ok := bareLabels[strings.ToLower(t)]
	return ok
}

// ValidateText accepts any non-empty value that is not itself a field label.
func ValidateText(candidate string) (any, bool) {
	v := strings.TrimSpace(candidate)
	if v == "" || isBareLabel(v) {
		return nil, false
	}
	return v, true
}

// ValidateWeight accepts a weight strictly above MinWeight.
func ValidateWeight(candidate string) (any, bool) {
	f, ok := parseDecimal(strings.ReplaceAll(candidate, ",", ""))
	if !ok || f <= MinWeight {
		return nil, false
	}
	return f, true
}

// ValidatePieces accepts an integer in (0, MaxPieces).
func ValidatePieces(candidate string) (any, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(candidate))
	if err != nil || n <= 0 || n >= MaxPieces {
		return nil, false
	}
	return n, true
}

// ValidateFreight accepts any non-negative amount, with or without "$".
func ValidateFreight(candidate string) (any, bool) {
	s := strings.NewReplacer("$", "", ",", "").Replace(candidate)
	f, ok := parseDecimal(s)
	if !ok || f < 0 {
		return nil, false
	}
	return f, true
}

func parseDecimal(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

var dateShapes = []*regexp.Regexp{
	regexp.MustCompile(`^\d{1,2}-[A-Za-z]{3}-\d{4}$`),
	regexp.MustCompile(`^\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4}$`),
}

var dateLayouts = []string{
	"2-Jan-2006",
	"1/2/2006",
	"1-2-2006",
	"1/2/06",
	"1-2-06",
}

// DateValidator accepts date-shaped strings. With strict set the value must
// also be a real calendar date.
func DateValidator(strict bool) Validator {
	return func(candidate string) (any, bool) {
		v := strings.TrimSpace(candidate)
		shaped := false
		for _, re := range dateShapes {
			if re.MatchString(v) {
				shaped = true
				break
			}
		}
		if !shaped {
			return nil, false
		}
		if strict && !isCalendarDate(v) {
			return nil, false
		}
		return v, true
	}
}

func isCalendarDate(v string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, v); err == nil {
			return true
		}
	}
	return false
}

// ValidatorFor returns the default validator of a field.
func ValidatorFor(f constants.Field, strictDates bool) Validator {
	switch f {
	case constants.TotalWeight:
		return ValidateWeight
	case constants.TotalPieces:
		return ValidatePieces
	case constants.FreightCharges:
		return ValidateFreight
	case constants.ShipmentDate, constants.DeliveryDate:
		return DateValidator(strictDates)
	default:
		return ValidateText
	}
}
