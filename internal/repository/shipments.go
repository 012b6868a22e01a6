package repository

import (
	"context"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/PatrickRutledge/bill-of-lading-automation/constants"
	"github.com/PatrickRutledge/bill-of-lading-automation/internal/bol"
	"github.com/PatrickRutledge/bill-of-lading-automation/internal/entity"
)

// ListOptions pages through newest-first listings. Limit <= 0 means DefaultLimit.
type ListOptions struct {
	Limit  int
	Offset int
}

const DefaultLimit = 50

func (o ListOptions) limit() int {
	if o.Limit <= 0 {
		return DefaultLimit
	}
	return o.Limit
}

type ShipmentRepository interface {
	Insert(ctx context.Context, documentID uuid.UUID, rec bol.Record) (entity.Shipment, error)
	List(ctx context.Context, opts ListOptions) ([]entity.Shipment, error)
	ListByDocument(ctx context.Context, documentID uuid.UUID) ([]entity.Shipment, error)
}

type shipmentRepo struct {
	db     *DB
	logger *slog.Logger
}

func NewShipmentRepository(db *DB, logger *slog.Logger) ShipmentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &shipmentRepo{db: db, logger: logger}
}

var shipmentColumns = []string{
	"id", "document_id",
	"bol_number", "shipper_name", "shipper_address", "consignee_name", "consignee_address",
	"carrier_name", "shipment_date", "delivery_date", "origin_city", "destination_city",
	"total_weight", "total_pieces", "freight_charges", "commodity_description", "reference_number",
	"raw_text", "extracted_fields", "created_at", "updated_at",
}

func (r *shipmentRepo) Insert(ctx context.Context, documentID uuid.UUID, rec bol.Record) (entity.Shipment, error) {
	now := time.Now().UTC()
	s := entity.Shipment{
		ID:         uuid.New(),
		DocumentID: documentID,
		Record:     rec,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	q, args := r.db.builder().Insert(ShipmentsTable.Name).
		Columns(shipmentColumns...).
		Values(
			s.ID, s.DocumentID,
			nullable(rec.BOLNumber), nullable(rec.ShipperName), nullable(rec.ShipperAddress),
			nullable(rec.ConsigneeName), nullable(rec.ConsigneeAddress),
			nullable(rec.CarrierName), nullable(rec.ShipmentDate), nullable(rec.DeliveryDate),
			nullable(rec.OriginCity), nullable(rec.DestinationCity),
			nullable(rec.TotalWeight), nullable(rec.TotalPieces), nullable(rec.FreightCharges),
			nullable(rec.CommodityDescription), nullable(rec.ReferenceNumber),
			rec.RawTextExcerpt, rec.ExtractedFieldCount, s.CreatedAt, s.UpdatedAt,
		).
		Query()
	if err := r.db.exec(ctx, q, args); err != nil {
		r.logger.Error("failed to insert shipment", "document_id", documentID, "bol_number", rec.Text(constants.BOLNumber), "error", err)
		return entity.Shipment{}, err
	}
	r.logger.Debug("shipment inserted", "shipment_id", s.ID, "document_id", documentID, "extracted_fields", rec.ExtractedFieldCount)
	return s, nil
}

func (r *shipmentRepo) List(ctx context.Context, opts ListOptions) ([]entity.Shipment, error) {
	sel := r.db.builder().Select(shipmentColumns...).
		From(entsql.Table(ShipmentsTable.Name)).
		OrderBy(entsql.Desc("created_at")).
		Limit(opts.limit())
	if opts.Offset > 0 {
		sel.Offset(opts.Offset)
	}
	return r.scan(ctx, sel)
}

func (r *shipmentRepo) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]entity.Shipment, error) {
	sel := r.db.builder().Select(shipmentColumns...).
		From(entsql.Table(ShipmentsTable.Name)).
		Where(entsql.EQ("document_id", documentID)).
		OrderBy(entsql.Desc("created_at"))
	return r.scan(ctx, sel)
}

func (r *shipmentRepo) scan(ctx context.Context, sel *entsql.Selector) ([]entity.Shipment, error) {
	q, args := sel.Query()
	var out []entity.Shipment
	err := r.db.query(ctx, q, args, func(rows *entsql.Rows) error {
		var s entity.Shipment
		rec := &s.Record
		if err := rows.Scan(
			&s.ID, &s.DocumentID,
			&rec.BOLNumber, &rec.ShipperName, &rec.ShipperAddress, &rec.ConsigneeName, &rec.ConsigneeAddress,
			&rec.CarrierName, &rec.ShipmentDate, &rec.DeliveryDate, &rec.OriginCity, &rec.DestinationCity,
			&rec.TotalWeight, &rec.TotalPieces, &rec.FreightCharges, &rec.CommodityDescription, &rec.ReferenceNumber,
			&rec.RawTextExcerpt, &rec.ExtractedFieldCount, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return err
		}
		out = append(out, s)
		return nil
	})
	if err != nil {
		r.logger.Error("failed to list shipments", "error", err)
		return nil, err
	}
	return out, nil
}
