package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"time"

	"github.com/hrx-hr/hrx-backend-go/internal/config"
	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templateFS embed.FS

const maxRetries = 3

// Template names, also used as metric labels.
const (
	TemplateCredentials   = "credentials"
	TemplatePasswordReset = "password_reset"
	TemplatePayslip       = "payslip"
)

type EmailService interface {
	// Configured reports whether messages actually leave the process.
	Configured() bool
	SendCredentials(ctx context.Context, msg CredentialsMail) error
	SendPasswordReset(ctx context.Context, msg PasswordResetMail) error
	SendPayslip(ctx context.Context, msg PayslipMail) error
}

// Sender delivers composed messages. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type CredentialsMail struct {
	To           string
	Name         string
	CompanyName  string
	LoginID      string
	TempPassword string
	LoginURL     string
}

type PasswordResetMail struct {
	To        string
	Name      string
	Token     string
	ExpiresAt time.Time
}

type PayslipLine struct {
	Name   string
	Amount string
}

type PayslipMail struct {
	To              string
	Name            string
	CompanyName     string
	Period          string // e.g. "March 2025"
	PayableDays     int
	WorkedDays      int
	LeaveDays       int
	Earnings        []PayslipLine
	Deductions      []PayslipLine
	Gross           string
	TotalDeductions string
	Net             string

	// Attachment is an optional workbook added as AttachmentName.
	Attachment     []byte
	AttachmentName string
}

type emailServiceImpl struct {
	from      string
	sender    Sender
	templates *template.Template
	backoff   time.Duration
	onSend    func(template string, err error)
}

// NewEmailService returns a service that logs and skips delivery when SMTP is not configured.
// onSend may be nil.
func NewEmailService(cfg config.SMTPConfig, onSend func(template string, err error)) (EmailService, error) {
	var sender Sender
	if cfg.Enabled() {
		sender = gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	}
	return newEmailService(cfg.From, sender, time.Second, onSend)
}

func newEmailService(from string, sender Sender, backoff time.Duration, onSend func(string, error)) (*emailServiceImpl, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}
	return &emailServiceImpl{
		from:      from,
		sender:    sender,
		templates: tmpl,
		backoff:   backoff,
		onSend:    onSend,
	}, nil
}

func (s *emailServiceImpl) Configured() bool { return s.sender != nil }

func (s *emailServiceImpl) SendCredentials(ctx context.Context, msg CredentialsMail) error {
	body, err := s.render(TemplateCredentials, msg)
	if err != nil {
		return err
	}
	m := s.newMessage(msg.To, fmt.Sprintf("Your %s HRX account", msg.CompanyName), body)
	return s.send(ctx, TemplateCredentials, m)
}

func (s *emailServiceImpl) SendPasswordReset(ctx context.Context, msg PasswordResetMail) error {
	body, err := s.render(TemplatePasswordReset, struct {
		Name      string
		Token     string
		ExpiresAt string
	}{msg.Name, msg.Token, msg.ExpiresAt.UTC().Format("2006-01-02 15:04 MST")})
	if err != nil {
		return err
	}
	m := s.newMessage(msg.To, "Reset your HRX password", body)
	return s.send(ctx, TemplatePasswordReset, m)
}

func (s *emailServiceImpl) SendPayslip(ctx context.Context, msg PayslipMail) error {
	body, err := s.render(TemplatePayslip, msg)
	if err != nil {
		return err
	}
	m := s.newMessage(msg.To, fmt.Sprintf("Payslip for %s - %s", msg.Period, msg.CompanyName), body)
	if len(msg.Attachment) > 0 {
		data := msg.Attachment
		m.Attach(msg.AttachmentName, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		}))
	}
	return s.send(ctx, TemplatePayslip, m)
}

func (s *emailServiceImpl) render(name string, data any) (string, error) {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, name+".html", data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return body.String(), nil
}

func (s *emailServiceImpl) newMessage(to, subject, htmlBody string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)
	return m
}

func (s *emailServiceImpl) send(ctx context.Context, name string, m *gomail.Message) error {
	to := m.GetHeader("To")
	subject := m.GetHeader("Subject")
	if s.sender == nil {
		slog.Warn("SMTP not configured, skipping email send", "to", to, "subject", subject)
		return nil
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := s.sender.DialAndSend(m)
		if err == nil {
			slog.Info("Email sent successfully", "to", to, "subject", subject, "attempt", attempt)
			s.report(name, nil)
			return nil
		}

		lastErr = err
		slog.Error("Failed to send email",
			"to", to,
			"subject", subject,
			"attempt", attempt,
			"max_retries", maxRetries,
			"error", err,
		)

		// Exponential backoff: backoff, 2*backoff, ...
		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				s.report(name, ctx.Err())
				return ctx.Err()
			case <-time.After(s.backoff << (attempt - 1)):
			}
		}
	}

	err := fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, lastErr)
	s.report(name, err)
	return err
}

func (s *emailServiceImpl) report(name string, err error) {
	if s.onSend != nil {
		s.onSend(name, err)
	}
}
