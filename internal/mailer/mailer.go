package mailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"
)

// Enquiry is one submitted contact form.
type Enquiry struct {
	Name    string
	Email   string
	Phone   string
	Message string
	// Recipient overrides the configured destination address when set.
	Recipient string
}

// Service relays contact-form enquiries by email.
type Service interface {
	SendEnquiry(ctx context.Context, enq Enquiry) error
}

// SMTPConfig carries the relay connection settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

// SMTPService sends enquiries through an SMTP relay.
type SMTPService struct {
	cfg SMTPConfig
}

func NewSMTPService(cfg SMTPConfig) *SMTPService {
	return &SMTPService{cfg: cfg}
}

func (s *SMTPService) SendEnquiry(ctx context.Context, enq Enquiry) error {
	to := strings.TrimSpace(enq.Recipient)
	if to == "" {
		to = s.cfg.To
	}
	if to == "" {
		return fmt.Errorf("no recipient configured for contact form")
	}

	msg := mail.NewMsg()
	if err := msg.FromFormat("VM Financial Solutions", s.cfg.From); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	if err := msg.ReplyTo(enq.Email); err != nil {
		return fmt.Errorf("set reply-to: %w", err)
	}
	msg.Subject(fmt.Sprintf("New enquiry from %s", enq.Name))
	msg.SetUserAgent("finsite-contact-form")

	html, err := renderHTMLBody(enq)
	if err != nil {
		return fmt.Errorf("render email body: %w", err)
	}
	msg.SetBodyString(mail.TypeTextPlain, renderTextBody(enq))
	msg.AddAlternativeString(mail.TypeTextHTML, html)

	client, err := mail.NewClient(s.cfg.Host,
		mail.WithPort(s.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.Username),
		mail.WithPassword(s.cfg.Password),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send enquiry: %w", err)
	}
	return nil
}

var _ Service = (*SMTPService)(nil)
