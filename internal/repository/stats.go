package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/PatrickRutledge/bill-of-lading-automation/constants"
)

// Counts summarizes order_log entries over a window.
type Counts struct {
	Total     int
	Processed int
	Rejected  int
	AvgFields float64
}

// SuccessRate is the processed share in percent, 0 when nothing was logged.
func (c Counts) SuccessRate() float64 {
	if c.Total == 0 {
		return 0
	}
	return float64(c.Processed) / float64(c.Total) * 100
}

// ErrorCount is a distinct rejection message and how often it occurred.
type ErrorCount struct {
	Message string
	Count   int
}

type StatsRepository interface {
	// Counts covers entries logged at or after since; a zero since means all time.
	Counts(ctx context.Context, since time.Time) (Counts, error)
	CommonErrors(ctx context.Context, limit int) ([]ErrorCount, error)
}

type statsRepo struct {
	db     *DB
	logger *slog.Logger
}

func NewStatsRepository(db *DB, logger *slog.Logger) StatsRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &statsRepo{db: db, logger: logger}
}

func (r *statsRepo) Counts(ctx context.Context, since time.Time) (Counts, error) {
	var c Counts
	var err error
	if c.Total, err = r.count(ctx, since, ""); err != nil {
		return Counts{}, err
	}
	if c.Processed, err = r.count(ctx, since, constants.LogStatusProcessed); err != nil {
		return Counts{}, err
	}
	if c.Rejected, err = r.count(ctx, since, constants.LogStatusRejected); err != nil {
		return Counts{}, err
	}

	sel := r.db.builder().Select(entsql.Avg("extracted_fields")).From(entsql.Table(OrderLogTable.Name))
	if !since.IsZero() {
		sel.Where(entsql.GTE("log_timestamp", since.UTC()))
	}
	q, args := sel.Query()
	var avg sql.NullFloat64
	if err := r.db.query(ctx, q, args, func(rows *entsql.Rows) error {
		return rows.Scan(&avg)
	}); err != nil {
		r.logger.Error("failed to average extracted fields", "error", err)
		return Counts{}, err
	}
	c.AvgFields = avg.Float64
	return c, nil
}

func (r *statsRepo) count(ctx context.Context, since time.Time, status constants.LogStatus) (int, error) {
	var preds []*entsql.Predicate
	if !since.IsZero() {
		preds = append(preds, entsql.GTE("log_timestamp", since.UTC()))
	}
	if status != "" {
		preds = append(preds, entsql.EQ("status", string(status)))
	}
	sel := r.db.builder().Select(entsql.Count("*")).From(entsql.Table(OrderLogTable.Name))
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	q, args := sel.Query()
	var n int
	if err := r.db.query(ctx, q, args, func(rows *entsql.Rows) error {
		return rows.Scan(&n)
	}); err != nil {
		r.logger.Error("failed to count order log", "status", status, "error", err)
		return 0, err
	}
	return n, nil
}

func (r *statsRepo) CommonErrors(ctx context.Context, limit int) ([]ErrorCount, error) {
	if limit <= 0 {
		limit = 5
	}
	q, args := r.db.builder().
		Select("error_message", entsql.As(entsql.Count("*"), "error_count")).
		From(entsql.Table(OrderLogTable.Name)).
		Where(entsql.And(
			entsql.EQ("status", string(constants.LogStatusRejected)),
			entsql.NotNull("error_message"),
		)).
		GroupBy("error_message").
		OrderBy(entsql.Desc("error_count"), entsql.Asc("error_message")).
		Limit(limit).
		Query()

	var out []ErrorCount
	err := r.db.query(ctx, q, args, func(rows *entsql.Rows) error {
		var e ErrorCount
		if err := rows.Scan(&e.Message, &e.Count); err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	if err != nil {
		r.logger.Error("failed to group rejection errors", "error", err)
		return nil, err
	}
	return out, nil
}
