package bol

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PatrickRutledge/bill-of-lading-automation/constants"
)

// ErrMalformedRule marks a defect in a rule table. It is a table authoring bug,
// never a property of the document being parsed.
var ErrMalformedRule = errors.New("malformed rule")

// Match is one successful application of a rule's pattern.
type Match struct {
	Text string
	loc  []int
}

// Group returns capture group i, or "" when the group did not participate.
func (m Match) Group(i int) string {
	start, end := m.Span(i)
	if start < 0 {
		return ""
	}
	return m.Text[start:end]
}

// Span returns the byte offsets of capture group i, or (-1, -1).
func (m Match) Span(i int) (int, int) {
	if i < 0 || 2*i+1 >= len(m.loc) || m.loc[2*i] < 0 {
		return -1, -1
	}
	return m.loc[2*i], m.loc[2*i+1]
}

// Rule is one candidate extraction for a field. Its priority is its index in
// the field's slice.
type Rule struct {
	Name string
	// Pattern is always matched case-insensitively.
	Pattern   string
	Multiline bool
	// Group selects the capture group holding the value; zero selects group 1.
	Group int
	// Compose builds the value from several groups. It takes precedence over Group.
	Compose func(Match) string
	// Skip disqualifies an otherwise matching rule.
	Skip func(Match) bool
}

// RuleTable is the static rule data. Fields holds the cascades for the plain
// fields; Dates and Cities feed the two disambiguators.
type RuleTable struct {
	Fields map[constants.Field][]Rule
	Dates  []Rule
	Cities []Rule
}

// RuleError describes one malformed rule.
type RuleError struct {
	Field   string
	Index   int
	Pattern string
	Err     error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("%s rule %d (%q): %v", e.Field, e.Index, e.Pattern, e.Err)
}

func (e *RuleError) Unwrap() []error {
	return []error{ErrMalformedRule, e.Err}
}

// CompiledTable is a RuleTable with every pattern compiled. It is read-only
// and safe for concurrent use.
type CompiledTable struct {
	fields map[constants.Field][]*compiledRule
	dates  []*compiledRule
	cities []*compiledRule
}

// Len reports how many rules the field's cascade holds.
func (t *CompiledTable) Len(f constants.Field) int {
	return len(t.fields[f])
}

type compiledRule struct {
	Rule
	field string
	index int
	re    *regexp.Regexp
}

// disambiguated fields are resolved from Dates and Cities, never from Fields.
var disambiguated = map[constants.Field]struct{}{
	constants.ShipmentDate:    {},
	constants.DeliveryDate:    {},
	constants.OriginCity:      {},
	constants.DestinationCity: {},
}

// Compile checks and compiles every rule. All defects are reported together.
func Compile(t RuleTable) (*CompiledTable, error) {
	out := &CompiledTable{fields: make(map[constants.Field][]*compiledRule, len(t.Fields))}
	var errs []error

	known := make(map[constants.Field]struct{})
	for _, f := range constants.AllFields() {
		known[f] = struct{}{}
	}

	for field, rules := range t.Fields {
		if _, ok := known[field]; !ok {
			errs = append(errs, &RuleError{Field: string(field), Index: -1, Err: errors.New("unknown field")})
			continue
		}
		if _, ok := disambiguated[field]; ok {
			errs = append(errs, &RuleError{Field: string(field), Index: -1, Err: errors.New("field is resolved by a disambiguator")})
			continue
		}
		for i, r := range rules {
			cr, err := compileRule(string(field), i, r)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			out.fields[field] = append(out.fields[field], cr)
		}
	}
	for i, r := range t.Dates {
		cr, err := compileRule("dates", i, r)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out.dates = append(out.dates, cr)
	}
	for i, r := range t.Cities {
		cr, err := compileRule("cities", i, r)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out.cities = append(out.cities, cr)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

func compileRule(field string, index int, r Rule) (*compiledRule, error) {
	fail := func(err error) error {
		return &RuleError{Field: field, Index: index, Pattern: r.Pattern, Err: err}
	}
	if strings.TrimSpace(r.Pattern) == "" {
		return nil, fail(errors.New("empty pattern"))
	}
	if r.Group < 0 {
		return nil, fail(fmt.Errorf("negative group %d", r.Group))
	}

	flags := "(?i)"
	if r.Multiline {
		flags = "(?im)"
	}
	re, err := regexp.Compile(flags + r.Pattern)
	if err != nil {
		return nil, fail(err)
	}
	if r.Compose == nil {
		g := r.Group
		if g == 0 {
			g = 1
		}
		if g > re.NumSubexp() {
			return nil, fail(fmt.Errorf("group %d out of range, pattern has %d", g, re.NumSubexp()))
		}
	}
	return &compiledRule{Rule: r, field: field, index: index, re: re}, nil
}

func (r *compiledRule) group() int {
	if r.Group == 0 {
		return 1
	}
	return r.Group
}

// candidate builds the trimmed value for one match, honoring Skip.
func (r *compiledRule) candidate(m Match) (string, bool) {
	if r.Skip != nil && r.Skip(m) {
		return "", false
	}
	var v string
	if r.Compose != nil {
		v = r.Compose(m)
	} else {
		v = m.Group(r.group())
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// tryEvaluate applies the rule to text and reports the first match's
// candidate. A fault inside the rule is returned as err and never escapes.
func (r *compiledRule) tryEvaluate(text string) (value string, ok bool, err error) {
	defer func() {
		if p := recover(); p != nil {
			value, ok = "", false
			err = fmt.Errorf("%w: %s rule %d panicked: %v", ErrMalformedRule, r.field, r.index, p)
		}
	}()

	loc := r.re.FindStringSubmatchIndex(text)
	if loc == nil {
		return "", false, nil
	}
	value, ok = r.candidate(Match{Text: text, loc: loc})
	return value, ok, nil
}

// spanned is a candidate together with where it sits in the text.
type spanned struct {
	Value      string
	Start, End int
}

// tryEvaluateAll is tryEvaluate over every non-overlapping match, in text order.
func (r *compiledRule) tryEvaluateAll(text string) (out []spanned, err error) {
	defer func() {
		if p := recover(); p != nil {
			out = nil
			err = fmt.Errorf("%w: %s rule %d panicked: %v", ErrMalformedRule, r.field, r.index, p)
		}
	}()

	for _, loc := range r.re.FindAllStringSubmatchIndex(text, -1) {
		m := Match{Text: text, loc: loc}
		v, ok := r.candidate(m)
		if !ok {
			continue
		}
		start, end := m.Span(r.group())
		if r.Compose != nil || start < 0 {
			start, end = m.Span(0)
		}
		out = append(out, spanned{Value: v, Start: start, End: end})
	}
	return out, nil
}
