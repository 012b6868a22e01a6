package textsource

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/PatrickRutledge/bill-of-lading-automation/constants"
)

func (e *Extractor) extractPDF(ctx context.Context, path string) ExtractionResult {
	res := ExtractionResult{SourceType: constants.PDF, Method: MethodNone}

	pages, err := countPages(path)
	if err != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("page count: %v", err))
	}

	text, formFeedPages, warns, err := e.pdfToText(ctx, path)
	res.Warnings = append(res.Warnings, warns...)
	if err == nil && strings.TrimSpace(text) != "" {
		res.Text, res.Method = text, MethodPDFToText
		if pages == 0 {
			pages = formFeedPages
		}
	} else {
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: %v", e.cfg.Pdftotext, err))
		}
		rows, rowPages, rerr := readPDFRows(path)
		switch {
		case rerr != nil:
			res.Warnings = append(res.Warnings, fmt.Sprintf("pdf reader: %v", rerr))
			e.logger.Warn("textsource.pdf.unreadable", "path", path, "warnings", res.Warnings)
		case strings.TrimSpace(rows) == "":
			res.Warnings = append(res.Warnings, "pdf has no text layer")
		default:
			res.Text, res.Method = rows, MethodPDFRows
		}
		if pages == 0 {
			pages = rowPages
		}
	}
	res.Pages = pages
	return res
}

func (e *Extractor) pdfToText(ctx context.Context, path string) (text string, pages int, warnings []string, err error) {
	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		if s := strings.TrimSpace(string(errb)); s != "" {
			warnings = append(warnings, s)
		}
		return "", 0, warnings, err
	}
	text = string(out)
	// form feed separates pages
	pages = 1 + strings.Count(strings.TrimRight(text, "\f"), "\f")
	return text, pages, nil, nil
}

func countPages(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return api.PageCount(f, nil)
}

// readPDFRows is the pure-Go fallback: words of each text row joined by
// spaces, one row per line.
func readPDFRows(path string) (text string, pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, pages, err = "", 0, fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	data, err := os.ReadFile(path)
	if err != nil {
		return "", 0, err
	}
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, err
	}

	var b strings.Builder
	pages = r.NumPage()
	for i := 1; i <= pages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return "", pages, fmt.Errorf("page %d: %w", i, err)
		}
		for _, row := range rows {
			words := make([]string, 0, len(row.Content))
			for _, w := range row.Content {
				words = append(words, w.S)
			}
			b.WriteString(strings.Join(words, " "))
			b.WriteString("\n")
		}
		if i < pages {
			b.WriteString("\f")
		}
	}
	return b.String(), pages, nil
}
