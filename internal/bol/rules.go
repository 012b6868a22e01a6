package bol

import (
	"regexp"
	"strings"

	"github.com/PatrickRutledge/bill-of-lading-automation/constants"
)

// Date shapes shared by the date rules.
const (
	dayMonYear = `[0-9]{1,2}-[A-Za-z]{3}-[0-9]{4}`
	numDate    = `\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4}`
)

// DefaultRules returns the rule table tuned on the delivery reports and
// shipping manifests seen so far. Specific, labeled layouts come first and
// generic catch-alls last. Sites contribute shipper and consignee name rules.
func DefaultRules(sites *SiteRegistry) RuleTable {
	shipperBlock := []Rule{
		{Name: "site-next-line", Pattern: `Site:\s*\n\s*([^\n]+)`, Multiline: true},
		{Name: "site-inline", Pattern: `Site:\s*([^\n]+)`, Multiline: true},
		{Name: "ship-from", Pattern: `(?:Ship From|Origin).*?\n([^\n]+)`, Multiline: true},
		{Name: "shipper-block", Pattern: `(?:Shipper|From)\s*:?\s*\n?\s*([^\n]+(?:\n[^\n]+)*?)\n(?:Consignee|To|Carrier|Date)`, Multiline: true},
		{Name: "shipper-caps-block", Pattern: `SHIPPER\s*\n\s*([^\n]+(?:\n[^\n]+)*?)\n\s*CONSIGNEE`, Multiline: true},
	}
	consigneeBlock := []Rule{
		{Name: "consignee-block", Pattern: `(?:Consignee|To)\s*:?\s*\n?\s*([^\n]+(?:\n[^\n]+)*?)\n(?:Carrier|Date|Description)`, Multiline: true},
		{Name: "consignee-caps-block", Pattern: `CONSIGNEE\s*\n\s*([^\n]+(?:\n[^\n]+)*?)\n\s*(?:CARRIER|DATE)`, Multiline: true},
	}
	consigneeStops := []Rule{
		{Name: "drive-industries", Pattern: `(\d+\s+[A-Z][A-Z\s]+DRIVE)\s*\n\s*([A-Z\s,]+\d{5})\s*\n\s*([A-Z\s]+INDUSTRIES)`, Multiline: true},
		{Name: "stop-customer", Pattern: `Stop\s*\n\s*Customer & Comments.*?\n.*?\n.*?\n\d+\s*\n\s*([^\n]+)\s*\n\s*([^\n]+)\s*\n\s*([^\n]+)`, Multiline: true},
	}

	var shipperName, shipperAddress, consigneeName, consigneeAddress []Rule

	shipperName = append(shipperName, siteNameRules(sites, RoleOrigin)...)
	for _, r := range shipperBlock {
		r.Compose = firstLine(1)
		r.Skip = startsWithFold(1, "address")
		shipperName = append(shipperName, r)
	}

	shipperAddress = append(shipperAddress, Rule{
		Name:    "site-address",
		Pattern: `Address:\s*\n\s*([^\n]+)\s*\n\s*([^\n]+)`,
		Compose: joinGroups(", ", 1, 2),
		Skip: func(m Match) bool {
			_, ok := sites.Match(m.Text, RoleOrigin)
			return !ok
		},
	})
	for _, r := range shipperBlock {
		r.Compose = remainingLines(1)
		r.Skip = startsWithFold(1, "address")
		shipperAddress = append(shipperAddress, r)
	}

	consigneeName = append(consigneeName, siteNameRules(sites, RoleDestination)...)
	for _, r := range consigneeStops {
		r.Group = 3
		consigneeName = append(consigneeName, r)
	}
	for _, r := range consigneeBlock {
		r.Compose = firstLine(1)
		consigneeName = append(consigneeName, r)
	}

	for _, r := range consigneeStops {
		r.Group = 1
		consigneeAddress = append(consigneeAddress, r)
	}
	for _, r := range consigneeBlock {
		r.Compose = remainingLines(1)
		consigneeAddress = append(consigneeAddress, r)
	}

	carrierLabel := startsWithFold(1, "load id", "carrier:")

	return RuleTable{
		Fields: map[constants.Field][]Rule{
			constants.BOLNumber: {
				{Name: "load-id", Pattern: `Load ID:\s*(\d+)`},
				{Name: "order", Pattern: `Order:\s*([0-9\-]+)`},
				{Name: "long-digit-run", Pattern: `(\d{8,})`},
				{Name: "bol-labeled", Pattern: `(?:BOL|B/L|Bill of Lading)\s*(?:Number|No\.?|#)\s*:?\s*([A-Z0-9\-]+)`},
				{Name: "bol-prefix", Pattern: `BOL\s*(\d+)`},
				{Name: "bl-prefix", Pattern: `B/L\s*([A-Z0-9\-]+)`},
			},
			constants.ShipperName:      shipperName,
			constants.ShipperAddress:   shipperAddress,
			constants.ConsigneeName:    consigneeName,
			constants.ConsigneeAddress: consigneeAddress,
			constants.CarrierName: {
				{Name: "carrier-next-line", Pattern: `Carrier:\s*\n\s*([^\n]+)`, Skip: carrierLabel},
				{Name: "carrier-suffix", Pattern: `([A-Z ,]+(?:LOGISTICS|TRANSPORT|TRUCKING|FREIGHT)[^\n]*)`, Skip: carrierLabel},
				{Name: "carrier-labeled", Pattern: `(?:Carrier|Motor Carrier)\s*:?\s*([^\n]+)`, Skip: carrierLabel},
				{Name: "carrier-caps", Pattern: `CARRIER\s*\n\s*([^\n]+)`, Skip: carrierLabel},
			},
			constants.TotalWeight: {
				{Name: "lbs-thousands", Pattern: `(\d{2,3},\d{3})\s*lbs`},
				{Name: "line-end-digits", Pattern: `(\d{5,6})\s*(?:\n|$)`},
				{Name: "weight-labeled", Pattern: `(?:Total\s*)?Weight\s*:?\s*([0-9,]+(?:\.\d+)?)\s*(?:lbs?|pounds?)?`},
				{Name: "weight-unit", Pattern: `(\d{1,3}(?:,\d{3})*(?:\.\d+)?)\s*(?:lbs?|pounds?)`},
			},
			constants.TotalPieces: {
				{Name: "roll", Pattern: `Roll\s*\n\s*(\d+)`, Multiline: true},
				{Name: "units-grid", Pattern: `Units\s*\n\s*Qty\s*\n\s*Weight\s*\n\s*\d+\s*\n.*?\n.*?\n.*?\n.*?\n.*?\n.*?\n.*?\n.*?\n(\d+)`, Multiline: true},
				{Name: "pieces-labeled", Pattern: `(?:Total\s*)?Pieces\s*:?\s*(\d+)`, Multiline: true},
				{Name: "count-labeled", Pattern: `(?:Total\s*)?Count\s*:?\s*(\d+)`, Multiline: true},
				{Name: "n-pieces", Pattern: `(\d+)\s*pieces?`, Multiline: true},
			},
			constants.FreightCharges: {
				{Name: "charges-labeled", Pattern: `(?:Freight\s*Charges?|Total\s*Charges?)\s*:?\s*\$?([0-9,]+(?:\.\d{2})?)`},
				{Name: "dollar-suffix", Pattern: `\$([0-9,]+(?:\.\d{2})?)\s*(?:freight|total)`},
			},
			constants.CommodityDescription: {
				{Name: "grade-desc", Pattern: `Grade Desc:\s*([^\n]+(?:\n[^\n]+)*?)\n(?:Width|PO#|Part#)`, Multiline: true, Compose: collapseSpace(1)},
				{Name: "part-number", Pattern: `(?:Part#|Part Number):\s*([^\n]+)`, Multiline: true, Compose: collapseSpace(1)},
				{Name: "commodity-labeled", Pattern: `(?:Commodity|Description|Contents)\s*:?\s*([^\n]+)`, Multiline: true, Compose: collapseSpace(1)},
				{Name: "description-caps", Pattern: `DESCRIPTION\s*\n\s*([^\n]+)`, Multiline: true, Compose: collapseSpace(1)},
			},
			constants.ReferenceNumber: {
				{Name: "order", Pattern: `Order:\s*([0-9\-]+)`},
				{Name: "po", Pattern: `PO#:\s*([A-Z0-9\-]+)`},
				{Name: "reference-labeled", Pattern: `(?:Reference|Ref\.?)\s*(?:Number|No\.?|#)\s*:?\s*([A-Z0-9\-]+)`},
				{Name: "ref-prefix", Pattern: `REF\s*([A-Z0-9\-]+)`},
			},
		},
		Dates: []Rule{
			{Name: "dmy-time", Pattern: `(` + dayMonYear + `)\s+[0-9]{2}:[0-9]{2}`},
			{Name: "ship-date-dmy", Pattern: `Ship Date:\s*\n\s*(` + dayMonYear + `)`},
			{Name: "delivery-date-dmy", Pattern: `Delivery Date:\s*\n\s*(` + dayMonYear + `)`},
			{Name: "appt-date-dmy", Pattern: `Appt Date:\s*\n\s*(` + dayMonYear + `)`},
			{Name: "mdy", Pattern: `(\d{1,2}/\d{1,2}/\d{4})`},
			{Name: "ship-date-numeric", Pattern: `(?:Ship(?:ment)?\s*Date|Date\s*Shipped)\s*:?\s*(` + numDate + `)`},
			{Name: "delivery-date-numeric", Pattern: `(?:Delivery\s*Date|Date\s*Delivered)\s*:?\s*(` + numDate + `)`},
		},
		Cities: []Rule{
			{
				Name:    "city-state-zip",
				Pattern: `([A-Z][A-Z ]*),[ \t]*([A-Z]{2})[ \t]+(\d{5})`,
				Compose: func(m Match) string {
					return collapse(m.Group(1)) + ", " + strings.TrimSpace(m.Group(2))
				},
			},
		},
	}
}

// siteNameRules turns every named site of role into a literal name rule.
func siteNameRules(sites *SiteRegistry, role Role) []Rule {
	var out []Rule
	for _, s := range sites.Sites() {
		if s.Role != role || s.Name == "" {
			continue
		}
		name := s.Name
		out = append(out, Rule{
			Name:    "site:" + name,
			Pattern: regexp.QuoteMeta(name),
			Compose: func(Match) string { return name },
		})
	}
	return out
}

func firstLine(g int) func(Match) string {
	return func(m Match) string {
		lines := nonEmptyLines(m.Group(g))
		if len(lines) == 0 {
			return ""
		}
		return lines[0]
	}
}

func remainingLines(g int) func(Match) string {
	return func(m Match) string {
		lines := nonEmptyLines(m.Group(g))
		if len(lines) < 2 {
			return ""
		}
		return strings.Join(lines[1:], " ")
	}
}

func joinGroups(sep string, groups ...int) func(Match) string {
	return func(m Match) string {
		parts := make([]string, 0, len(groups))
		for _, g := range groups {
			if v := strings.TrimSpace(m.Group(g)); v != "" {
				parts = append(parts, v)
			}
		}
		return strings.Join(parts, sep)
	}
}

func collapseSpace(g int) func(Match) string {
	return func(m Match) string { return collapse(m.Group(g)) }
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func startsWithFold(g int, prefixes ...string) func(Match) bool {
	return func(m Match) bool {
		v := lowerASCII(strings.TrimSpace(m.Group(g)))
		for _, p := range prefixes {
			if strings.HasPrefix(v, p) {
				return true
			}
		}
		return false
	}
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
