package bol

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/PatrickRutledge/bill-of-lading-automation/constants"
)

// Parser turns document text into a Record. A Parser is immutable once built
// and safe for concurrent use.
type Parser struct {
	rules       *RuleTable
	sites       *SiteRegistry
	policy      DatePairPolicy
	strictDates bool
	uniqueDates bool
	window      int
	validators  map[constants.Field]Validator
	logger      *slog.Logger

	engine *Engine
	dates  *DateResolver
	cities *CityResolver
}

type Option func(*Parser)

// WithRules replaces the default rule table.
func WithRules(t RuleTable) Option {
	return func(p *Parser) {
		p.rules = &t
	}
}

// WithSiteRegistry replaces the bundled site registry. It also feeds the
// site-derived rules of the default table.
func WithSiteRegistry(r *SiteRegistry) Option {
	return func(p *Parser) {
		if r != nil {
			p.sites = r
		}
	}
}

func WithDatePairPolicy(policy DatePairPolicy) Option {
	return func(p *Parser) {
		if policy != nil {
			p.policy = policy
		}
	}
}

// WithStrictDates rejects date-shaped strings that are not calendar dates.
func WithStrictDates(strict bool) Option {
	return func(p *Parser) {
		p.strictDates = strict
	}
}

// WithUniqueDateSpans keeps a date captured by several date rules only once.
func WithUniqueDateSpans(unique bool) Option {
	return func(p *Parser) {
		p.uniqueDates = unique
	}
}

// WithContextWindow sets how far around a lone date keywords are searched.
func WithContextWindow(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.window = n
		}
	}
}

// WithValidator overrides the validator of one field. The two date fields
// share one candidate list, so an override of either validates both, with
// DeliveryDate taking precedence when both are set. City fields work the same
// way with OriginCity first.
func WithValidator(f constants.Field, v Validator) Option {
	return func(p *Parser) {
		if v != nil {
			p.validators[f] = v
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewParser compiles the rule table. The only error it returns wraps
// ErrMalformedRule.
func NewParser(opts ...Option) (*Parser, error) {
	p := &Parser{
		policy:     DeliveryFirst,
		window:     DefaultContextWindow,
		validators: map[constants.Field]Validator{},
		logger:     slog.Default(),
	}
	for _, o := range opts {
		o(p)
	}
	if p.sites == nil {
		p.sites = DefaultSiteRegistry()
	}
	if p.rules == nil {
		t := DefaultRules(p.sites)
		p.rules = &t
	}

	table, err := Compile(*p.rules)
	if err != nil {
		return nil, fmt.Errorf("compile rules: %w", err)
	}

	validators := make(map[constants.Field]Validator, len(p.validators))
	for _, f := range constants.AllFields() {
		validators[f] = ValidatorFor(f, p.strictDates)
	}
	for f, v := range p.validators {
		validators[f] = v
	}

	p.engine = NewEngine(table, validators, p.logger)
	dateValidator := p.pairValidator(validators, constants.DeliveryDate, constants.ShipmentDate)
	cityValidator := p.pairValidator(validators, constants.OriginCity, constants.DestinationCity)
	p.dates = newDateResolver(table.dates, dateValidator, p.policy, p.window, p.uniqueDates, p.logger)
	p.cities = &CityResolver{sites: p.sites, rules: table.cities, validate: cityValidator, logger: p.logger}
	return p, nil
}

// pairValidator picks the validator of a disambiguated pair: the override of
// first, else the override of second, else the default of first.
func (p *Parser) pairValidator(validators map[constants.Field]Validator, first, second constants.Field) Validator {
	if v, ok := p.validators[first]; ok {
		return v
	}
	if v, ok := p.validators[second]; ok {
		return v
	}
	return validators[first]
}

// Parse extracts every field from text. It never fails: a field nothing
// matched is simply nil, and empty text yields an empty Record.
func (p *Parser) Parse(text string) Record {
	rec := Record{RawTextExcerpt: Excerpt(text)}

	for _, f := range constants.AllFields() {
		if _, ok := disambiguated[f]; ok {
			continue
		}
		if v, ok := p.engine.Extract(f, text); ok {
			rec.set(f, v)
		}
	}
	rec.DeliveryDate, rec.ShipmentDate = p.dates.Resolve(text)
	rec.OriginCity, rec.DestinationCity = p.cities.Resolve(text)

	rec.ExtractedFieldCount = rec.Count()
	p.logger.Debug("parsed bol fields",
		"extracted_fields", rec.ExtractedFieldCount,
		"fields", rec.Extracted(),
		"text_bytes", len(text),
	)
	return rec
}

// Dates exposes the date resolver, mostly for diagnostics.
func (p *Parser) Dates() *DateResolver {
	return p.dates
}

var defaultParser = sync.OnceValue(func() *Parser {
	p, err := NewParser()
	if err != nil {
		panic(fmt.Sprintf("bol: default rules: %v", err))
	}
	return p
})

// Parse runs the default parser over text.
func Parse(text string) Record {
	return defaultParser().Parse(text)
}
