// Package notify delivers rejection notices and report summaries.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Rejection describes a document that could not be turned into a shipment.
type Rejection struct {
	DocumentID      uuid.UUID
	Subject         string
	AttachmentName  string
	AttachmentPath  string
	Reason          string
	ExtractedFields int
	At              time.Time
}

// Summary is a rendered report sent to the report recipients.
type Summary struct {
	Title string
	Body  string
	Date  time.Time
}

type Notifier interface {
	NotifyRejected(ctx context.Context, r Rejection) error
	NotifySummary(ctx context.Context, s Summary) error
}

// LogNotifier writes notifications to the log instead of sending them.
type LogNotifier struct {
	Logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{Logger: logger}
}

func (n *LogNotifier) NotifyRejected(ctx context.Context, r Rejection) error {
	n.Logger.WarnContext(ctx, "notify.rejected",
		"document_id", r.DocumentID,
		"subject", RejectionSubject(r.Subject),
		"attachment", r.AttachmentName,
		"reason", r.Reason,
		"extracted_fields", r.ExtractedFields,
	)
	return nil
}

func (n *LogNotifier) NotifySummary(ctx context.Context, s Summary) error {
	n.Logger.InfoContext(ctx, "notify.summary", "title", s.Title, "date", s.Date.Format(time.DateOnly), "body", s.Body)
	return nil
}

// RejectionSubject is the subject line used for rejection notices.
func RejectionSubject(original string) string {
	if original == "" {
		return "Order Rejected"
	}
	return "Order Rejected: " + original
}

const rejectionBody = "Order data could not be inserted into the database. See attached PDF."
