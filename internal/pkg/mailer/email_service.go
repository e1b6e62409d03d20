package mailer

import (
	"fmt"
	"html"

	"notekeeper-be/internal/pkg/logger"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendWelcome(toEmail, fullName string) error
}

// Sender abstracts the SMTP transport so tests can capture messages.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailService struct {
	sender      Sender
	senderEmail string
	senderName  string
	logger      logger.ILogger
}

// NewEmailService returns a no-op service when host is empty.
func NewEmailService(host string, port int, username, password, senderName string, log logger.ILogger) IEmailService {
	if host == "" {
		return NewNoopEmailService(log)
	}
	return NewEmailServiceWithSender(gomail.NewDialer(host, port, username, password), username, senderName, log)
}

func NewEmailServiceWithSender(sender Sender, senderEmail, senderName string, log logger.ILogger) IEmailService {
	return &emailService{
		sender:      sender,
		senderEmail: senderEmail,
		senderName:  senderName,
		logger:      log,
	}
}

func (s *emailService) SendWelcome(toEmail, fullName string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Welcome to your notes")

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Hi %s,</h2>
			<p>Your account is ready. Sign in with <strong>%s</strong> to start writing notes.</p>
		</div>
	`, html.EscapeString(fullName), html.EscapeString(toEmail))
	m.SetBody("text/html", body)

	if err := s.sender.DialAndSend(m); err != nil {
		s.logger.Error("mailer", "failed to send welcome email", map[string]interface{}{
			"to":    toEmail,
			"error": err,
		})
		return err
	}

	s.logger.Info("mailer", "welcome email sent", map[string]interface{}{"to": toEmail})
	return nil
}

type noopEmailService struct {
	logger logger.ILogger
}

func NewNoopEmailService(log logger.ILogger) IEmailService {
	return &noopEmailService{logger: log}
}

func (s *noopEmailService) SendWelcome(toEmail, _ string) error {
	s.logger.Debug("mailer", "smtp disabled, welcome email skipped", map[string]interface{}{"to": toEmail})
	return nil
}
