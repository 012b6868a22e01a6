package repository

import (
	"context"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/PatrickRutledge/bill-of-lading-automation/constants"
	"github.com/PatrickRutledge/bill-of-lading-automation/internal/entity"
)

type OrderLogRepository interface {
	Append(ctx context.Context, entry entity.OrderLog) (entity.OrderLog, error)
	List(ctx context.Context, opts ListOptions) ([]entity.OrderLog, error)
	Since(ctx context.Context, since time.Time) ([]entity.OrderLog, error)
}

type orderLogRepo struct {
	db     *DB
	logger *slog.Logger
}

func NewOrderLogRepository(db *DB, logger *slog.Logger) OrderLogRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &orderLogRepo{db: db, logger: logger}
}

var orderLogColumns = []string{
	"id", "document_id", "source", "subject", "attachment_name",
	"status", "error_message", "extracted_fields", "log_timestamp",
}

func (r *orderLogRepo) Append(ctx context.Context, e entity.OrderLog) (entity.OrderLog, error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.LogTimestamp.IsZero() {
		e.LogTimestamp = time.Now().UTC()
	}
	q, args := r.db.builder().Insert(OrderLogTable.Name).
		Columns(orderLogColumns...).
		Values(
			e.ID, nullable(e.DocumentID), e.Source, e.Subject, e.AttachmentName,
			string(e.Status), nullable(e.ErrorMessage), e.ExtractedFields, e.LogTimestamp,
		).
		Query()
	if err := r.db.exec(ctx, q, args); err != nil {
		r.logger.Error("failed to append order log", "attachment", e.AttachmentName, "status", e.Status, "error", err)
		return entity.OrderLog{}, err
	}
	return e, nil
}

func (r *orderLogRepo) List(ctx context.Context, opts ListOptions) ([]entity.OrderLog, error) {
	sel := r.db.builder().Select(orderLogColumns...).
		From(entsql.Table(OrderLogTable.Name)).
		OrderBy(entsql.Desc("log_timestamp")).
		Limit(opts.limit())
	if opts.Offset > 0 {
		sel.Offset(opts.Offset)
	}
	return r.scan(ctx, sel)
}

// Since returns entries logged at or after since, oldest first.
func (r *orderLogRepo) Since(ctx context.Context, since time.Time) ([]entity.OrderLog, error) {
	sel := r.db.builder().Select(orderLogColumns...).
		From(entsql.Table(OrderLogTable.Name)).
		Where(entsql.GTE("log_timestamp", since.UTC())).
		OrderBy(entsql.Asc("log_timestamp"))
	return r.scan(ctx, sel)
}

func (r *orderLogRepo) scan(ctx context.Context, sel *entsql.Selector) ([]entity.OrderLog, error) {
	q, args := sel.Query()
	var out []entity.OrderLog
	err := r.db.query(ctx, q, args, func(rows *entsql.Rows) error {
		var (
			e      entity.OrderLog
			status string
		)
		if err := rows.Scan(&e.ID, &e.DocumentID, &e.Source, &e.Subject, &e.AttachmentName,
			&status, &e.ErrorMessage, &e.ExtractedFields, &e.LogTimestamp); err != nil {
			return err
		}
		e.Status = constants.LogStatus(status)
		out = append(out, e)
		return nil
	})
	if err != nil {
		r.logger.Error("failed to list order log", "error", err)
		return nil, err
	}
	return out, nil
}
