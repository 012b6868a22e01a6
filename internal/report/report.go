// Package report renders processing statistics for operators.
package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/PatrickRutledge/bill-of-lading-automation/constants"
	"github.com/PatrickRutledge/bill-of-lading-automation/internal/entity"
	"github.com/PatrickRutledge/bill-of-lading-automation/internal/repository"
)

const (
	DefaultWindowDays = 7
	recentLimit       = 10
	commonErrorLimit  = 5
)

// Dashboard is a snapshot of overall and recent processing.
type Dashboard struct {
	GeneratedAt  time.Time
	Overall      repository.Counts
	WindowDays   int
	Window       repository.Counts
	Recent       []entity.OrderLog
	CommonErrors []repository.ErrorCount
	Shipments    []entity.Shipment
}

// Daily covers everything logged since local midnight.
type Daily struct {
	Date   time.Time
	Counts repository.Counts
}

type Service struct {
	stats     repository.StatsRepository
	logs      repository.OrderLogRepository
	shipments repository.ShipmentRepository
	now       func() time.Time
	logger    *slog.Logger
}

func NewService(stats repository.StatsRepository, logs repository.OrderLogRepository, shipments repository.ShipmentRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{stats: stats, logs: logs, shipments: shipments, now: time.Now, logger: logger}
}

// Dashboard gathers all-time counts, counts for the last days (default 7),
// recent activity, the most common rejection reasons and the newest shipments.
func (s *Service) Dashboard(ctx context.Context, days int) (Dashboard, error) {
	if days <= 0 {
		days = DefaultWindowDays
	}
	now := s.now()
	d := Dashboard{GeneratedAt: now, WindowDays: days}

	var err error
	if d.Overall, err = s.stats.Counts(ctx, time.Time{}); err != nil {
		return Dashboard{}, fmt.Errorf("overall counts: %w", err)
	}
	if d.Window, err = s.stats.Counts(ctx, now.AddDate(0, 0, -days)); err != nil {
		return Dashboard{}, fmt.Errorf("window counts: %w", err)
	}
	if d.Recent, err = s.logs.List(ctx, repository.ListOptions{Limit: recentLimit}); err != nil {
		return Dashboard{}, fmt.Errorf("recent activity: %w", err)
	}
	if d.CommonErrors, err = s.stats.CommonErrors(ctx, commonErrorLimit); err != nil {
		return Dashboard{}, fmt.Errorf("common errors: %w", err)
	}
	if s.shipments != nil {
		if d.Shipments, err = s.shipments.List(ctx, repository.ListOptions{Limit: recentLimit}); err != nil {
			return Dashboard{}, fmt.Errorf("recent shipments: %w", err)
		}
	}
	s.logger.Debug("report.dashboard.ok", "total", d.Overall.Total, "window_days", days)
	return d, nil
}

func (s *Service) Daily(ctx context.Context) (Daily, error) {
	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	c, err := s.stats.Counts(ctx, midnight)
	if err != nil {
		return Daily{}, fmt.Errorf("daily counts: %w", err)
	}
	return Daily{Date: midnight, Counts: c}, nil
}

// Render writes the dashboard as plain text tables.
func (d Dashboard) Render(w io.Writer) error {
	var b strings.Builder
	b.WriteString("BOL PROCESSING DASHBOARD\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	b.WriteString("OVERALL\n")
	fmt.Fprintf(&b, "Total Documents Processed: %d\n", d.Overall.Total)
	fmt.Fprintf(&b, "Successful: %d\n", d.Overall.Processed)
	fmt.Fprintf(&b, "Failed: %d\n", d.Overall.Rejected)
	fmt.Fprintf(&b, "Success Rate: %.1f%%\n\n", d.Overall.SuccessRate())

	fmt.Fprintf(&b, "LAST %d DAYS\n", d.WindowDays)
	fmt.Fprintf(&b, "Documents Processed: %d\n", d.Window.Total)
	fmt.Fprintf(&b, "Successful: %d\n", d.Window.Processed)
	fmt.Fprintf(&b, "Average Fields Extracted: %.1f\n\n", d.Window.AvgFields)

	fmt.Fprintf(&b, "RECENT ACTIVITY (last %d documents)\n", recentLimit)
	if len(d.Recent) == 0 {
		b.WriteString("No documents processed yet.\n")
	} else {
		t := newTable(&b, "Timestamp", "File", "Status", "Fields", "Error")
		for _, e := range d.Recent {
			msg := ""
			if e.ErrorMessage != nil {
				msg = clip(*e.ErrorMessage, 50)
			}
			t.Append([]string{
				e.LogTimestamp.Local().Format("2006-01-02 15:04"),
				clip(e.AttachmentName, 24),
				statusLabel(e.Status),
				strconv.Itoa(e.ExtractedFields),
				msg,
			})
		}
		t.Render()
	}

	if len(d.CommonErrors) > 0 {
		b.WriteString("\nCOMMON ERRORS\n")
		for _, e := range d.CommonErrors {
			fmt.Fprintf(&b, "(%dx) %s\n", e.Count, clip(e.Message, 100))
		}
	}

	if len(d.Shipments) > 0 {
		b.WriteString("\nRECENT SHIPMENTS\n")
		t := newTable(&b, "BOL #", "Shipper", "Consignee", "Carrier", "Weight", "Pieces", "Date")
		for _, s := range d.Shipments {
			weight := ""
			if s.TotalWeight != nil {
				weight = strconv.FormatFloat(*s.TotalWeight, 'f', 0, 64)
			}
			pieces := ""
			if s.TotalPieces != nil {
				pieces = strconv.Itoa(*s.TotalPieces)
			}
			t.Append([]string{
				s.Text(constants.BOLNumber),
				clip(s.Text(constants.ShipperName), 19),
				clip(s.Text(constants.ConsigneeName), 19),
				clip(s.Text(constants.CarrierName), 14),
				weight,
				pieces,
				s.CreatedAt.Local().Format("01/02 15:04"),
			})
		}
		t.Render()
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Render writes the daily summary.
func (d Daily) Render(w io.Writer) error {
	_, err := io.WriteString(w, d.String())
	return err
}

func (d Daily) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Daily BOL Processing Report - %s\n\n", d.Date.Format(time.DateOnly))
	fmt.Fprintf(&b, "Total Documents: %d\n", d.Counts.Total)
	fmt.Fprintf(&b, "Successful: %d\n", d.Counts.Processed)
	fmt.Fprintf(&b, "Failed: %d\n", d.Counts.Rejected)
	fmt.Fprintf(&b, "Average Fields Extracted: %.1f\n\n", d.Counts.AvgFields)
	fmt.Fprintf(&b, "Success Rate: %.1f%%\n", d.Counts.SuccessRate())
	return b.String()
}

// Title is the subject used when the daily report is mailed.
func (d Daily) Title() string {
	return "Daily BOL Processing Report - " + d.Date.Format(time.DateOnly)
}

func newTable(w io.Writer, headers ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(headers)
	t.SetAutoFormatHeaders(false)
	t.SetAutoWrapText(false)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	t.SetBorder(false)
	return t
}

func statusLabel(s constants.LogStatus) string {
	if s == constants.LogStatusProcessed {
		return "OK"
	}
	return "REJECTED"
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
