package utils

import (
	"fmt"
	"html"

	"seva-kendra/config"
	"seva-kendra/models"

	"github.com/keighl/postmark"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// Sender delivers a single message
type Sender interface {
	Send(toEmail, subject, htmlContent string) error
}

// EmailService composes the account notifications
type EmailService struct {
	sender Sender
}

// NewEmailService selects the provider configured in cfg. Without a
// provider mail is dropped and logged at debug level.
func NewEmailService(cfg config.EmailConfig) (*EmailService, error) {
	switch cfg.Provider {
	case "":
		return &EmailService{sender: noopSender{}}, nil
	case "postmark", "sendgrid":
		if cfg.APIKey == "" || cfg.Sender == "" {
			return nil, fmt.Errorf("EMAIL_API_KEY and EMAIL_SENDER are required for %s", cfg.Provider)
		}
	default:
		return nil, fmt.Errorf("unsupported email provider %q", cfg.Provider)
	}

	if cfg.Provider == "postmark" {
		return &EmailService{sender: &postmarkSender{
			client: postmark.NewClient(cfg.APIKey, ""),
			from:   cfg.Sender,
		}}, nil
	}
	return &EmailService{sender: &sendgridSender{
		client: sendgrid.NewSendClient(cfg.APIKey),
		from:   mail.NewEmail("Hindu Seva Kendra", cfg.Sender),
	}}, nil
}

// NewEmailServiceWithSender wraps an existing sender
func NewEmailServiceWithSender(s Sender) *EmailService {
	return &EmailService{sender: s}
}

// SendWelcomeEmail greets a newly registered account
func (es *EmailService) SendWelcomeEmail(user *models.User) error {
	subject := "Welcome to Hindu Seva Kendra"
	body := fmt.Sprintf("<strong>Namaste %s,</strong><br><br>Your account has been created.", html.EscapeString(user.Name))
	if user.IsVendor() {
		body += "<br>Your vendor application is pending review. We will email you once it has been verified."
	}
	return es.sender.Send(user.Email, subject, body)
}

// SendVendorDecisionEmail tells a vendor the outcome of their application
func (es *EmailService) SendVendorDecisionEmail(user *models.User, vendor *models.Vendor) error {
	var subject, body string
	switch vendor.VerificationStatus {
	case models.VendorStatusApproved:
		subject = "Your vendor application has been approved"
		body = fmt.Sprintf(
			"<strong>Dear %s,</strong><br><br>Your application for <strong>%s</strong> has been approved. You can now receive service requests.",
			html.EscapeString(user.Name), html.EscapeString(vendor.ServiceType),
		)
	case models.VendorStatusRejected:
		subject = "Your vendor application was not approved"
		body = fmt.Sprintf(
			"<strong>Dear %s,</strong><br><br>Your application for <strong>%s</strong> was not approved.",
			html.EscapeString(user.Name), html.EscapeString(vendor.ServiceType),
		)
		if vendor.RejectionReason != "" {
			body += fmt.Sprintf("<br>Reason: %s", html.EscapeString(vendor.RejectionReason))
		}
	default:
		return fmt.Errorf("no notification for vendor status %q", vendor.VerificationStatus)
	}
	return es.sender.Send(user.Email, subject, body)
}

type postmarkSender struct {
	client *postmark.Client
	from   string
}

func (p *postmarkSender) Send(toEmail, subject, htmlContent string) error {
	_, err := p.client.SendEmail(postmark.Email{
		From:     p.from,
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlContent,
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

type sendgridSender struct {
	client *sendgrid.Client
	from   *mail.Email
}

func (s *sendgridSender) Send(toEmail, subject, htmlContent string) error {
	msg := mail.NewSingleEmail(s.from, subject, mail.NewEmail("", toEmail), "", htmlContent)
	resp, err := s.client.Send(msg)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("failed to send email: sendgrid status %d", resp.StatusCode)
	}
	return nil
}

type noopSender struct{}

func (noopSender) Send(toEmail, subject, _ string) error {
	zap.L().Debug("Email delivery disabled, dropping message",
		zap.String("to", toEmail),
		zap.String("subject", subject),
	)
	return nil
}
