package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/PatrickRutledge/bill-of-lading-automation/internal/bol"
)

// Shipment is a persisted bill of lading record.
type Shipment struct {
	ID         uuid.UUID `json:"id"`
	DocumentID uuid.UUID `json:"document_id"`
	bol.Record
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
