// Package notify composes the Coinova transactional emails and hands them to a mailer.Sender.
package notify

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"time"

	"github.com/ovaphlow/pitchfork/service-coinova/pkg/mailer"
)

//go:embed templates/*
var templateFS embed.FS

const (
	WelcomeSubject       = "Welcome to Coinova!"
	SupportNoticeSubject = "New Contact Form Submission"
	ContactAckSubject    = "Thank You for Contacting Coinova!"
)

// Config holds the addresses and branding used in outgoing mail.
type Config struct {
	FromName     string // display name, e.g. "Coinova"
	FromAddress  string // mail account the relay authenticates as
	SupportEmail string // destination for contact-form notices
	LogoURL      string // optional; omitted from the welcome email when empty
}

// Notifier renders and sends the welcome, support-notice and contact
// acknowledgement emails. Each method performs exactly one Send.
type Notifier struct {
	sender   mailer.Sender
	renderer *mailer.Renderer
	cfg      Config
	now      func() time.Time
}

// New builds a Notifier over the embedded templates.
func New(sender mailer.Sender, cfg Config) (*Notifier, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}
	r, err := mailer.NewRenderer(sub)
	if err != nil {
		return nil, err
	}
	return &Notifier{sender: sender, renderer: r, cfg: cfg, now: time.Now}, nil
}

type pageData struct {
	Brand   string
	Name    string
	LogoURL string
	Year    int
}

type noticeData struct {
	Name    string
	Email   string
	Message string
}

// SendWelcome sends the HTML welcome email to a new subscriber.
func (n *Notifier) SendWelcome(ctx context.Context, name, email string) error {
	html, err := n.renderer.HTML("welcome.html", n.page(name))
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, &mailer.Email{
		From:    n.from(),
		To:      []string{email},
		Subject: WelcomeSubject,
		HTML:    html,
	})
}

// SendSupportNotice sends the plain-text contact-form notice to the support address.
func (n *Notifier) SendSupportNotice(ctx context.Context, name, email, message string) error {
	text, err := n.renderer.Text("support_notice.txt", noticeData{Name: name, Email: email, Message: message})
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, &mailer.Email{
		From:    n.from(),
		To:      []string{n.cfg.SupportEmail},
		Subject: SupportNoticeSubject,
		Text:    text,
	})
}

// SendContactAck sends the HTML acknowledgement to whoever submitted the contact form.
func (n *Notifier) SendContactAck(ctx context.Context, name, email string) error {
	html, err := n.renderer.HTML("contact_ack.html", n.page(name))
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, &mailer.Email{
		From:    n.from(),
		To:      []string{email},
		Subject: ContactAckSubject,
		HTML:    html,
	})
}

func (n *Notifier) from() string {
	return mailer.Address(n.cfg.FromName, n.cfg.FromAddress)
}

func (n *Notifier) page(name string) pageData {
	brand := n.cfg.FromName
	if brand == "" {
		brand = "Coinova"
	}
	return pageData{Brand: brand, Name: name, LogoURL: n.cfg.LogoURL, Year: n.now().Year()}
}
