package notify

import (
	"context"
	"errors"
	"net/smtp"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PatrickRutledge/bill-of-lading-automation/internal/common"
)

type sentMail struct {
	addr string
	from string
	to   []string
	msg  string
}

func testMailConfig() common.MailConfig {
	return common.MailConfig{
		Enabled:      true,
		SMTPHost:     "smtp.example.com",
		SMTPPort:     587,
		Username:     "bot@example.com",
		Password:     "secret",
		From:         "bot@example.com",
		RejectionTo:  "ops@example.com",
		SendAttempts: 3,
		RetryDelay:   time.Millisecond,
	}
}

func TestRejectionCarriesAttachment(t *testing.T) {
	pdf := filepath.Join(t.TempDir(), "load-08186456.pdf")
	if err := os.WriteFile(pdf, []byte("%PDF-1.4 test"), 0o644); err != nil {
		t.Fatal(err)
	}

	var got []sentMail
	n := NewSMTPNotifier(testMailConfig(), nil, WithSendFunc(func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		got = append(got, sentMail{addr, from, to, string(msg)})
		return nil
	}))

	err := n.NotifyRejected(context.Background(), Rejection{
		Subject:        "BOL 08186456",
		AttachmentPath: pdf,
		Reason:         "no fields extracted",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("sent %d messages, want 1", len(got))
	}
	m := got[0]
	if m.addr != "smtp.example.com:587" || m.from != "bot@example.com" || len(m.to) != 1 || m.to[0] != "ops@example.com" {
		t.Errorf("envelope = %+v", m)
	}
	for _, want := range []string{
		"Subject: Order Rejected: BOL 08186456",
		"Order data could not be inserted into the database. See attached PDF.",
		"Reason: no fields extracted",
		`filename=load-08186456.pdf`,
		"Content-Type: application/pdf",
		"JVBERi0xLjQgdGVzdA==",
	} {
		if !strings.Contains(m.msg, want) {
			t.Errorf("message missing %q:\n%s", want, m.msg)
		}
	}
}

func TestSendRetries(t *testing.T) {
	calls := 0
	n := NewSMTPNotifier(testMailConfig(), nil, WithSendFunc(func(string, smtp.Auth, string, []string, []byte) error {
		calls++
		if calls < 3 {
			return errors.New("421 try again later")
		}
		return nil
	}))
	if err := n.NotifySummary(context.Background(), Summary{Title: "Daily report", Body: "ok"}); err != nil {
		t.Fatalf("err = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestSendGivesUp(t *testing.T) {
	calls := 0
	n := NewSMTPNotifier(testMailConfig(), nil, WithSendFunc(func(string, smtp.Auth, string, []string, []byte) error {
		calls++
		return errors.New("535 authentication failed")
	}))
	err := n.NotifyRejected(context.Background(), Rejection{Subject: "x"})
	if err == nil || !strings.Contains(err.Error(), "535") {
		t.Fatalf("err = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestSummaryFallsBackToRejectionAddress(t *testing.T) {
	var to []string
	n := NewSMTPNotifier(testMailConfig(), nil, WithSendFunc(func(_ string, _ smtp.Auth, _ string, rcpt []string, _ []byte) error {
		to = rcpt
		return nil
	}))
	if err := n.NotifySummary(context.Background(), Summary{Title: "Daily", Body: "b"}); err != nil {
		t.Fatal(err)
	}
	if len(to) != 1 || to[0] != "ops@example.com" {
		t.Errorf("to = %v", to)
	}
}

func TestMissingRecipient(t *testing.T) {
	cfg := testMailConfig()
	cfg.RejectionTo = ""
	n := NewSMTPNotifier(cfg, nil, WithSendFunc(func(string, smtp.Auth, string, []string, []byte) error {
		t.Error("send should not be called")
		return nil
	}))
	if err := n.NotifyRejected(context.Background(), Rejection{}); !errors.Is(err, common.ErrConfig) {
		t.Errorf("err = %v, want ErrConfig", err)
	}
}

func TestHeaderInjectionRejected(t *testing.T) {
	n := NewSMTPNotifier(testMailConfig(), nil, WithSendFunc(func(string, smtp.Auth, string, []string, []byte) error { return nil }))
	if err := n.NotifyRejected(context.Background(), Rejection{Subject: "x\r\nBcc: evil@example.com"}); err == nil {
		t.Error("expected an error for a subject with line breaks")
	}
}

func TestLogNotifier(t *testing.T) {
	n := NewLogNotifier(nil)
	if err := n.NotifyRejected(context.Background(), Rejection{Subject: "s"}); err != nil {
		t.Error(err)
	}
	if err := n.NotifySummary(context.Background(), Summary{Title: "t"}); err != nil {
		t.Error(err)
	}
	if got := RejectionSubject(""); got != "Order Rejected" {
		t.Errorf("RejectionSubject(\"\") = %q", got)
	}
}
