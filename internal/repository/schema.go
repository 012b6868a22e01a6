package repository

import (
	"context"
	"fmt"
	"math"

	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	"github.com/PatrickRutledge/bill-of-lading-automation/internal/common"
)

const textSize = math.MaxInt32

var (
	// DocumentsColumns holds the columns for the "documents" table.
	DocumentsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "source_path", Type: field.TypeString, Size: textSize},
		{Name: "filename", Type: field.TypeString},
		{Name: "file_ext", Type: field.TypeString, Size: 16},
		{Name: "content_hash", Type: field.TypeString, Size: 64},
		{Name: "size_bytes", Type: field.TypeInt64},
		{Name: "uploaded_at", Type: field.TypeTime},
	}
	// DocumentsTable holds the schema information for the "documents" table.
	DocumentsTable = &schema.Table{
		Name:       "documents",
		Columns:    DocumentsColumns,
		PrimaryKey: []*schema.Column{DocumentsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "document_content_hash", Unique: true, Columns: []*schema.Column{DocumentsColumns[4]}},
		},
	}

	// ShipmentsColumns holds the columns for the "shipments" table.
	ShipmentsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "document_id", Type: field.TypeUUID},
		{Name: "bol_number", Type: field.TypeString, Nullable: true},
		{Name: "shipper_name", Type: field.TypeString, Nullable: true},
		{Name: "shipper_address", Type: field.TypeString, Size: textSize, Nullable: true},
		{Name: "consignee_name", Type: field.TypeString, Nullable: true},
		{Name: "consignee_address", Type: field.TypeString, Size: textSize, Nullable: true},
		{Name: "carrier_name", Type: field.TypeString, Nullable: true},
		{Name: "shipment_date", Type: field.TypeString, Size: 32, Nullable: true},
		{Name: "delivery_date", Type: field.TypeString, Size: 32, Nullable: true},
		{Name: "origin_city", Type: field.TypeString, Nullable: true},
		{Name: "destination_city", Type: field.TypeString, Nullable: true},
		{Name: "total_weight", Type: field.TypeFloat64, Nullable: true},
		{Name: "total_pieces", Type: field.TypeInt, Nullable: true},
		{Name: "freight_charges", Type: field.TypeFloat64, Nullable: true},
		{Name: "commodity_description", Type: field.TypeString, Size: textSize, Nullable: true},
		{Name: "reference_number", Type: field.TypeString, Nullable: true},
		{Name: "raw_text", Type: field.TypeString, Size: textSize},
		{Name: "extracted_fields", Type: field.TypeInt},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// ShipmentsTable holds the schema information for the "shipments" table.
	ShipmentsTable = &schema.Table{
		Name:       "shipments",
		Columns:    ShipmentsColumns,
		PrimaryKey: []*schema.Column{ShipmentsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "shipments_documents_shipments",
				Columns:    []*schema.Column{ShipmentsColumns[1]},
				RefColumns: []*schema.Column{DocumentsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "shipment_bol_number", Columns: []*schema.Column{ShipmentsColumns[2]}},
			{Name: "shipment_created_at", Columns: []*schema.Column{ShipmentsColumns[19]}},
		},
	}

	// OrderLogColumns holds the columns for the "order_log" table.
	OrderLogColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "document_id", Type: field.TypeUUID, Nullable: true},
		{Name: "source", Type: field.TypeString},
		{Name: "subject", Type: field.TypeString, Size: textSize},
		{Name: "attachment_name", Type: field.TypeString},
		{Name: "status", Type: field.TypeString, Size: 16},
		{Name: "error_message", Type: field.TypeString, Size: textSize, Nullable: true},
		{Name: "extracted_fields", Type: field.TypeInt},
		{Name: "log_timestamp", Type: field.TypeTime},
	}
	// OrderLogTable holds the schema information for the "order_log" table.
	OrderLogTable = &schema.Table{
		Name:       "order_log",
		Columns:    OrderLogColumns,
		PrimaryKey: []*schema.Column{OrderLogColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "order_log_documents_logs",
				Columns:    []*schema.Column{OrderLogColumns[1]},
				RefColumns: []*schema.Column{DocumentsColumns[0]},
				OnDelete:   schema.SetNull,
			},
		},
		Indexes: []*schema.Index{
			{Name: "orderlog_log_timestamp", Columns: []*schema.Column{OrderLogColumns[8]}},
			{Name: "orderlog_status", Columns: []*schema.Column{OrderLogColumns[5]}},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		DocumentsTable,
		ShipmentsTable,
		OrderLogTable,
	}
)

func init() {
	ShipmentsTable.ForeignKeys[0].RefTable = DocumentsTable
	OrderLogTable.ForeignKeys[0].RefTable = DocumentsTable
}

// Migrate creates or updates the tables.
func (d *DB) Migrate(ctx context.Context) error {
	m, err := schema.NewMigrate(d.drv)
	if err != nil {
		return fmt.Errorf("%w: migrate: %w", common.ErrDatabase, err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		d.logger.Error("failed to migrate schema", "error", err)
		return fmt.Errorf("%w: migrate: %w", common.ErrDatabase, err)
	}
	d.logger.Info("database schema migrated", "tables", len(Tables))
	return nil
}
