package notify

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/PatrickRutledge/bill-of-lading-automation/internal/common"
)

// SendFunc matches smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifier mails rejections, with the original document attached, and
// report summaries.
type SMTPNotifier struct {
	cfg    common.MailConfig
	send   SendFunc
	now    func() time.Time
	logger *slog.Logger
}

type SMTPOption func(*SMTPNotifier)

// WithSendFunc replaces smtp.SendMail, mainly for tests.
func WithSendFunc(f SendFunc) SMTPOption {
	return func(n *SMTPNotifier) { n.send = f }
}

func NewSMTPNotifier(cfg common.MailConfig, logger *slog.Logger, opts ...SMTPOption) *SMTPNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SendAttempts == 0 {
		cfg.SendAttempts = 3
	}
	n := &SMTPNotifier{cfg: cfg, send: smtp.SendMail, now: time.Now, logger: logger}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *SMTPNotifier) NotifyRejected(ctx context.Context, r Rejection) error {
	var attachment []byte
	if r.AttachmentPath != "" {
		b, err := os.ReadFile(r.AttachmentPath)
		if err != nil {
			n.logger.Warn("failed to read rejection attachment, sending without it", "path", r.AttachmentPath, "error", err)
		} else {
			attachment = b
		}
	}
	name := r.AttachmentName
	if name == "" && r.AttachmentPath != "" {
		name = filepath.Base(r.AttachmentPath)
	}

	body := rejectionBody
	if r.Reason != "" {
		body += "\n\nReason: " + r.Reason
	}
	msg, err := n.buildMessage(n.cfg.RejectionTo, RejectionSubject(r.Subject), body, name, attachment)
	if err != nil {
		return err
	}
	return n.deliver(ctx, n.cfg.RejectionTo, msg)
}

func (n *SMTPNotifier) NotifySummary(ctx context.Context, s Summary) error {
	to := n.cfg.ReportTo
	if to == "" {
		to = n.cfg.RejectionTo
	}
	msg, err := n.buildMessage(to, s.Title, s.Body, "", nil)
	if err != nil {
		return err
	}
	return n.deliver(ctx, to, msg)
}

func (n *SMTPNotifier) deliver(ctx context.Context, to string, msg []byte) error {
	if to == "" {
		return fmt.Errorf("%w: no recipient configured", common.ErrConfig)
	}
	addr := net.JoinHostPort(n.cfg.SMTPHost, strconv.Itoa(n.cfg.SMTPPort))
	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.SMTPHost)
	}

	err := retry.Do(
		func() error {
			return n.send(addr, auth, n.cfg.From, []string{to}, msg)
		},
		retry.Context(ctx),
		retry.Attempts(n.cfg.SendAttempts),
		retry.Delay(n.cfg.RetryDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(attempt uint, err error) {
			n.logger.Warn("notify.smtp.retry", "attempt", attempt+1, "to", to, "error", err)
		}),
	)
	if err != nil {
		n.logger.Error("notify.smtp.failed", "to", to, "error", err)
		return fmt.Errorf("send mail: %w", err)
	}
	n.logger.Info("notify.smtp.sent", "to", to)
	return nil
}

// buildMessage renders a multipart/mixed message with a text part and an
// optional PDF attachment.
func (n *SMTPNotifier) buildMessage(to, subject, body, attachmentName string, attachment []byte) ([]byte, error) {
	if strings.ContainsAny(to+subject, "\r\n") {
		return nil, errors.New("header values must not contain line breaks")
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	hdr := func(k, v string) { fmt.Fprintf(&buf, "%s: %s\r\n", k, v) }
	hdr("From", n.cfg.From)
	hdr("To", to)
	hdr("Subject", mime.QEncoding.Encode("utf-8", subject))
	hdr("Date", n.now().Format(time.RFC1123Z))
	hdr("MIME-Version", "1.0")
	hdr("Content-Type", `multipart/mixed; boundary="`+mw.Boundary()+`"`)
	buf.WriteString("\r\n")

	text, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"text/plain; charset=utf-8"},
		"Content-Transfer-Encoding": {"8bit"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := text.Write([]byte(body + "\r\n")); err != nil {
		return nil, err
	}

	if len(attachment) > 0 {
		part, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {mime.FormatMediaType("application/pdf", map[string]string{"name": attachmentName})},
			"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": attachmentName})},
			"Content-Transfer-Encoding": {"base64"},
		})
		if err != nil {
			return nil, err
		}
		enc := base64.StdEncoding.EncodeToString(attachment)
		for len(enc) > 76 {
			if _, err := part.Write([]byte(enc[:76] + "\r\n")); err != nil {
				return nil, err
			}
			enc = enc[76:]
		}
		if _, err := part.Write([]byte(enc + "\r\n")); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
