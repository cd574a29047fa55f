package mailer

import (
	"context"
	"fmt"
	"net/mail"
)

// Sender delivers a fully prepared Email. Implementations block until the
// relay accepts or rejects the message.
type Sender interface {
	Send(ctx context.Context, email *Email) error
}

// Email represents a message ready for sending. At least one of HTML or
// Text must be set; when both are set a multipart/alternative body is built.
type Email struct {
	From    string
	To      []string
	Subject string
	HTML    string
	Text    string
}

// Address formats a display name and address as "Name <addr>".
func Address(name, addr string) string {
	if name == "" {
		return addr
	}
	return (&mail.Address{Name: name, Address: addr}).String()
}

func (e *Email) validate() error {
	if e.From == "" {
		return ErrNoSender
	}
	if len(e.To) == 0 {
		return ErrNoRecipient
	}
	if e.Subject == "" {
		return ErrNoSubject
	}
	if e.HTML == "" && e.Text == "" {
		return ErrNoContent
	}
	return nil
}

// envelope returns the bare addresses used for MAIL FROM / RCPT TO.
func (e *Email) envelope() (string, []string, error) {
	from, err := mail.ParseAddress(e.From)
	if err != nil {
		return "", nil, fmt.Errorf("%w: from %q: %v", ErrInvalidAddress, e.From, err)
	}
	to := make([]string, 0, len(e.To))
	for _, raw := range e.To {
		a, err := mail.ParseAddress(raw)
		if err != nil {
			return "", nil, fmt.Errorf("%w: to %q: %v", ErrInvalidAddress, raw, err)
		}
		to = append(to, a.Address)
	}
	return from.Address, to, nil
}
