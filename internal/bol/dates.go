package bol

import (
	"log/slog"
	"strings"
)

// DatePairPolicy decides which of the first two dates found is the delivery
// date and which is the ship date.
type DatePairPolicy func(first, second string) (delivery, shipment string)

// DeliveryFirst matches layouts that print the appointment before the ship date.
func DeliveryFirst(first, second string) (delivery, shipment string) {
	return first, second
}

// ShipmentFirst is the reverse of DeliveryFirst.
func ShipmentFirst(first, second string) (delivery, shipment string) {
	return second, first
}

// DefaultContextWindow is how many bytes on each side of a lone date are
// searched for context keywords.
const DefaultContextWindow = 48

var (
	shipKeywords     = []string{"ship", "departure"}
	deliveryKeywords = []string{"delivery", "arrival", "appt"}
)

// DateCandidate is a validated date and where it was found.
type DateCandidate struct {
	Value      string
	Start, End int
}

// DateResolver splits the dates of a document into delivery and ship date.
type DateResolver struct {
	rules    []*compiledRule
	validate Validator
	policy   DatePairPolicy
	window   int
	unique   bool
	logger   *slog.Logger
}

func newDateResolver(rules []*compiledRule, validate Validator, policy DatePairPolicy, window int, unique bool, logger *slog.Logger) *DateResolver {
	if policy == nil {
		policy = DeliveryFirst
	}
	if window <= 0 {
		window = DefaultContextWindow
	}
	return &DateResolver{rules: rules, validate: validate, policy: policy, window: window, unique: unique, logger: logger}
}

// Candidates returns every accepted date in rule order, then text order
// within a rule. A span captured by several rules appears once per rule
// unless the resolver was built with unique spans.
func (d *DateResolver) Candidates(text string) []DateCandidate {
	var out []DateCandidate
	var seen map[[2]int]struct{}
	if d.unique {
		seen = make(map[[2]int]struct{})
	}
	for _, r := range d.rules {
		found, err := r.tryEvaluateAll(text)
		if err != nil {
			d.logger.Debug("rule.evaluate.failed", "field", "dates", "rule", r.index, "error", err)
			continue
		}
		for _, c := range found {
			key := [2]int{c.Start, c.End}
			if _, dup := seen[key]; dup {
				continue
			}
			v, ok := d.validate(c.Value)
			s, _ := v.(string)
			if !ok || s == "" {
				continue
			}
			if d.unique {
				seen[key] = struct{}{}
			}
			out = append(out, DateCandidate{Value: s, Start: c.Start, End: c.End})
		}
	}
	return out
}

// Resolve returns the delivery and ship dates, nil when absent.
func (d *DateResolver) Resolve(text string) (delivery, shipment *string) {
	dates := d.Candidates(text)
	switch len(dates) {
	case 0:
		return nil, nil
	case 1:
		v := dates[0].Value
		if d.classify(text, dates[0]) == roleShip {
			return nil, &v
		}
		return &v, nil
	default:
		del, ship := d.policy(dates[0].Value, dates[1].Value)
		return &del, &ship
	}
}

type dateRole int

const (
	roleUnknown dateRole = iota
	roleShip
	roleDelivery
)

// classify looks for context keywords around a lone date. Any ship keyword
// in the window wins over delivery keywords; none at all is roleUnknown.
func (d *DateResolver) classify(text string, c DateCandidate) dateRole {
	lo := max(0, c.Start-d.window)
	hi := min(len(text), c.End+d.window)
	window := lowerASCII(text[lo:c.Start]) + " " + lowerASCII(text[c.End:hi])

	switch {
	case containsAny(window, shipKeywords):
		return roleShip
	case containsAny(window, deliveryKeywords):
		return roleDelivery
	default:
		return roleUnknown
	}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// lowerASCII lowercases without changing byte offsets.
func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
