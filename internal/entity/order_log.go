package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/PatrickRutledge/bill-of-lading-automation/constants"
)

// OrderLog is one processing outcome. Every processed document gets exactly one.
type OrderLog struct {
	ID              uuid.UUID           `json:"id"`
	DocumentID      *uuid.UUID          `json:"document_id,omitempty"`
	Source          string              `json:"source"`
	Subject         string              `json:"subject"`
	AttachmentName  string              `json:"attachment_name"`
	Status          constants.LogStatus `json:"status"`
	ErrorMessage    *string             `json:"error_message,omitempty"`
	ExtractedFields int                 `json:"extracted_fields"`
	LogTimestamp    time.Time           `json:"log_timestamp"`
}
