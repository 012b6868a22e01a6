package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/PatrickRutledge/bill-of-lading-automation/internal/common"
	"github.com/PatrickRutledge/bill-of-lading-automation/internal/entity"
)

type DocumentRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (entity.Document, error)
	GetByHash(ctx context.Context, hash string) (entity.Document, error)
	Create(ctx context.Context, doc entity.Document) (entity.Document, error)
	UpsertByHash(ctx context.Context, doc entity.Document) (entity.Document, bool, error)
}

type documentRepo struct {
	db     *DB
	logger *slog.Logger
}

func NewDocumentRepository(db *DB, logger *slog.Logger) DocumentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &documentRepo{db: db, logger: logger}
}

var documentColumns = []string{"id", "source_path", "filename", "file_ext", "content_hash", "size_bytes", "uploaded_at"}

func (r *documentRepo) GetByID(ctx context.Context, id uuid.UUID) (entity.Document, error) {
	return r.getOne(ctx, entsql.EQ("id", id))
}

func (r *documentRepo) GetByHash(ctx context.Context, hash string) (entity.Document, error) {
	return r.getOne(ctx, entsql.EQ("content_hash", hash))
}

func (r *documentRepo) getOne(ctx context.Context, p *entsql.Predicate) (entity.Document, error) {
	q, args := r.db.builder().Select(documentColumns...).
		From(entsql.Table(DocumentsTable.Name)).
		Where(p).
		Limit(1).
		Query()

	var (
		doc   entity.Document
		found bool
	)
	err := r.db.query(ctx, q, args, func(rows *entsql.Rows) error {
		found = true
		return rows.Scan(&doc.ID, &doc.SourcePath, &doc.Filename, &doc.FileExt, &doc.ContentHash, &doc.SizeBytes, &doc.UploadedAt)
	})
	if err != nil {
		r.logger.Error("failed to query document", "error", err)
		return entity.Document{}, err
	}
	if !found {
		return entity.Document{}, fmt.Errorf("document: %w", common.ErrNotFound)
	}
	return doc, nil
}

func (r *documentRepo) Create(ctx context.Context, doc entity.Document) (entity.Document, error) {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now().UTC()
	}
	q, args := r.db.builder().Insert(DocumentsTable.Name).
		Columns(documentColumns...).
		Values(doc.ID, doc.SourcePath, doc.Filename, doc.FileExt, doc.ContentHash, doc.SizeBytes, doc.UploadedAt).
		Query()
	if err := r.db.exec(ctx, q, args); err != nil {
		r.logger.Error("failed to create document", "source_path", doc.SourcePath, "error", err)
		return entity.Document{}, err
	}
	return doc, nil
}

// UpsertByHash returns the existing document with the same content hash, or
// creates one. The bool reports whether the document already existed.
func (r *documentRepo) UpsertByHash(ctx context.Context, doc entity.Document) (entity.Document, bool, error) {
	existing, err := r.GetByHash(ctx, doc.ContentHash)
	if err == nil {
		return existing, true, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return entity.Document{}, false, err
	}
	created, err := r.Create(ctx, doc)
	if err != nil {
		r.logger.Error("failed to upsert document by hash", "source_path", doc.SourcePath, "error", err)
		return entity.Document{}, false, err
	}
	return created, false, nil
}
