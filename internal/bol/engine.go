package bol

import (
	"log/slog"

	"github.com/PatrickRutledge/bill-of-lading-automation/constants"
)

// Engine runs a field's cascade: rules in priority order, first validated
// candidate wins.
type Engine struct {
	table      *CompiledTable
	validators map[constants.Field]Validator
	logger     *slog.Logger
}

// NewEngine builds an engine over table. Fields without an entry in
// validators use ValidatorFor.
func NewEngine(table *CompiledTable, validators map[constants.Field]Validator, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	v := make(map[constants.Field]Validator, len(constants.AllFields()))
	for _, f := range constants.AllFields() {
		v[f] = ValidatorFor(f, false)
	}
	for f, fn := range validators {
		if fn != nil {
			v[f] = fn
		}
	}
	return &Engine{table: table, validators: v, logger: logger}
}

// Extract returns the coerced value of field, or false when every rule
// missed or was rejected.
func (e *Engine) Extract(field constants.Field, text string) (any, bool) {
	validate := e.validators[field]
	for _, r := range e.table.fields[field] {
		cand, ok, err := r.tryEvaluate(text)
		if err != nil {
			e.logger.Debug("rule.evaluate.failed", "field", field, "rule", r.index, "error", err)
			continue
		}
		if !ok {
			continue
		}
		v, ok := validate(cand)
		if !ok {
			e.logger.Debug("candidate rejected", "field", field, "rule", r.index, "candidate", truncate(cand, 80))
			continue
		}
		return v, true
	}
	return nil, false
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n] + "...(truncated)"
}
