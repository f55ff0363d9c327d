package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"circulation-service/internal/util"
)

// EmailSender delivers a message to a single recipient. Implementations must
// treat delivery as best-effort: callers log failures and move on.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPSender sends mail through a plain SMTP relay
type SMTPSender struct {
	addr string
	from string
}

// NewSMTPSender creates an SMTP-backed sender
func NewSMTPSender(addr, from string) *SMTPSender {
	return &SMTPSender{addr: addr, from: from}
}

// Send delivers one message
func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("\r\n")
	msg.WriteString(body)

	if err := smtp.SendMail(s.addr, nil, s.from, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("smtp send to %s failed: %w", to, err)
	}
	return nil
}

// LogSender writes notifications to the log instead of sending them. Used
// when no SMTP relay is configured.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a log-only sender
func NewLogSender() *LogSender {
	return &LogSender{logger: util.GetLogger()}
}

// Send logs the message
func (l *LogSender) Send(ctx context.Context, to, subject, body string) error {
	l.logger.Info("Notification (not sent, no SMTP configured)",
		zap.String("to", to),
		zap.String("subject", subject))
	return nil
}
