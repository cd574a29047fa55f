package mailer

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// MemorySender records every email instead of delivering it. Fail, when set,
// is consulted before recording; a non-nil result is returned as the send error.
type MemorySender struct {
	Fail func(email *Email) error

	mu     sync.Mutex
	outbox []Email
}

func (m *MemorySender) Send(_ context.Context, email *Email) error {
	if err := email.validate(); err != nil {
		return err
	}
	if m.Fail != nil {
		if err := m.Fail(email); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outbox = append(m.outbox, *email)
	return nil
}

// Outbox returns a copy of the recorded emails in send order.
func (m *MemorySender) Outbox() []Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Email, len(m.outbox))
	copy(out, m.outbox)
	return out
}

// LogSender logs email envelopes instead of delivering them. Used for local
// runs with MAIL_TRANSPORT=log. Bodies are never logged, only their sizes.
type LogSender struct {
	logger *zap.SugaredLogger
}

func NewLogSender(logger *zap.SugaredLogger) *LogSender {
	return &LogSender{logger: logger}
}

func (l *LogSender) Send(_ context.Context, email *Email) error {
	if err := email.validate(); err != nil {
		return err
	}
	l.logger.Infow("email not sent (log transport)",
		"from", email.From,
		"to", email.To,
		"subject", email.Subject,
		"html_bytes", len(email.HTML),
		"text_bytes", len(email.Text),
	)
	return nil
}
