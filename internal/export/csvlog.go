package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/PatrickRutledge/bill-of-lading-automation/internal/entity"
)

var csvHeader = []string{"source", "subject", "attachment_name", "status", "log_timestamp", "error_message", "extracted_fields"}

// CSVLog appends order log entries to a CSV file, writing the header when
// the file is created. Safe for concurrent use.
type CSVLog struct {
	path string
	mu   sync.Mutex
}

func NewCSVLog(path string) *CSVLog {
	return &CSVLog{path: path}
}

func (l *CSVLog) Path() string { return l.path }

func (l *CSVLog) Append(e entity.OrderLog) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, err := os.Stat(l.path)
	fresh := errors.Is(err, fs.ErrNotExist)

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log csv: %w", err)
	}
	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write(csvHeader); err != nil {
			_ = f.Close()
			return fmt.Errorf("write log csv header: %w", err)
		}
	}
	msg := ""
	if e.ErrorMessage != nil {
		msg = *e.ErrorMessage
	}
	rec := []string{
		e.Source, e.Subject, e.AttachmentName, string(e.Status),
		e.LogTimestamp.Format(time.DateTime), msg, strconv.Itoa(e.ExtractedFields),
	}
	if err := w.Write(rec); err != nil {
		_ = f.Close()
		return fmt.Errorf("write log csv: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("flush log csv: %w", err)
	}
	return f.Close()
}
