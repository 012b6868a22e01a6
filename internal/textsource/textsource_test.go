package textsource

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type stubRunner struct {
	stdout, stderr string
	err            error
	calls          [][]string
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.calls = append(s.calls, append([]string{name}, args...))
	return []byte(s.stdout), []byte(s.stderr), s.err
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtractPlainText(t *testing.T) {
	body := "Load ID: 08186456\r\nCarrier:\nACME\n"
	path := writeFile(t, "bol.TXT", body)

	runner := &stubRunner{}
	res, err := NewExtractor(Config{}, nil, WithRunner(runner)).Extract(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if res.Text != body {
		t.Errorf("text = %q, want verbatim file contents", res.Text)
	}
	if res.Method != MethodPlainText || res.Pages != 1 {
		t.Errorf("method = %s, pages = %d", res.Method, res.Pages)
	}
	if len(runner.calls) != 0 {
		t.Errorf("text files should not shell out, got %v", runner.calls)
	}
}

func TestExtractPDFWithPdftotext(t *testing.T) {
	path := writeFile(t, "bol.pdf", "%PDF-1.4 stub")
	runner := &stubRunner{stdout: "page one\fpage two\f"}

	e := NewExtractor(Config{Pdftotext: "/opt/bin/pdftotext"}, nil, WithRunner(runner))
	res, err := e.Extract(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if res.Method != MethodPDFToText {
		t.Errorf("method = %s, want %s", res.Method, MethodPDFToText)
	}
	if !strings.HasPrefix(res.Text, "page one") {
		t.Errorf("text = %q", res.Text)
	}
	if res.Pages != 2 {
		t.Errorf("pages = %d, want 2 from form feeds", res.Pages)
	}
	if len(runner.calls) != 1 || runner.calls[0][0] != "/opt/bin/pdftotext" {
		t.Fatalf("calls = %v", runner.calls)
	}
	args := strings.Join(runner.calls[0][1:], " ")
	if !strings.Contains(args, "-layout") || !strings.HasSuffix(args, path+" -") {
		t.Errorf("args = %s", args)
	}
}

func TestExtractUnreadablePDF(t *testing.T) {
	path := writeFile(t, "scan.pdf", "this is not a pdf")
	runner := &stubRunner{stderr: "Syntax Error: Couldn't find trailer dictionary", err: errors.New("exit status 1")}

	res, err := NewExtractor(Config{}, nil, WithRunner(runner)).Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("unreadable pdf should not be an error, got %v", err)
	}
	if res.Text != "" {
		t.Errorf("text = %q, want empty", res.Text)
	}
	if res.Method != MethodNone {
		t.Errorf("method = %s, want %s", res.Method, MethodNone)
	}
	if len(res.Warnings) < 2 {
		t.Errorf("warnings = %v, want the tool and reader failures", res.Warnings)
	}
}

func TestExtractErrors(t *testing.T) {
	e := NewExtractor(Config{}, nil, WithRunner(&stubRunner{}))

	if _, err := e.Extract(context.Background(), filepath.Join(t.TempDir(), "missing.pdf")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: err = %v", err)
	}
	path := writeFile(t, "photo.heic", "x")
	if _, err := e.Extract(context.Background(), path); err == nil || !strings.Contains(err.Error(), "unsupported extension") {
		t.Errorf("unsupported extension: err = %v", err)
	}
}
