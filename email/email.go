// Package email sends outbound notification mail. Delivery is strictly
// best-effort: one attempt on the primary transport, one on the fallback,
// then the failure is logged and dropped. Nothing in here may fail a sale
// operation.
package email

import (
	"fmt"
	"log"
	"os"
)

// Sender is a single mail transport.
type Sender interface {
	Send(to, subject, html string) (messageID string, err error)
}

// Service tries the primary transport first and the fallback second.
// There is no retry or backoff beyond that.
type Service struct {
	primary  Sender
	fallback Sender
}

// NewService builds a service from explicit transports. fallback may be
// nil.
func NewService(primary, fallback Sender) *Service {
	return &Service{primary: primary, fallback: fallback}
}

// NewFromEnv wires transports from the environment: SendGrid as primary
// when SENDGRID_API_KEY is set, SMTP when SMTP_HOST is set, whichever is
// missing becomes the fallback. With neither configured mail is logged to
// the console (development mode).
func NewFromEnv() *Service {
	fromEmail := getenvDefault("FROM_EMAIL", "noreply@mpgrupo.pt")
	fromName := getenvDefault("FROM_NAME", "MP Grupo CRM")

	var sendgrid, smtp Sender
	if key := os.Getenv("SENDGRID_API_KEY"); key != "" {
		sendgrid = NewSendGridSender(key, fromEmail, fromName)
	}
	if host := os.Getenv("SMTP_HOST"); host != "" {
		smtp = NewSMTPSender(SMTPConfig{
			Host:      host,
			Port:      getenvDefault("SMTP_PORT", "465"),
			Username:  os.Getenv("SMTP_USER"),
			Password:  os.Getenv("SMTP_PASS"),
			FromEmail: fromEmail,
			FromName:  fromName,
		})
	}

	switch {
	case sendgrid != nil && smtp != nil:
		return NewService(sendgrid, smtp)
	case sendgrid != nil:
		return NewService(sendgrid, nil)
	case smtp != nil:
		return NewService(smtp, nil)
	default:
		log.Println("email: no transport configured, mail will be logged to console")
		return NewService(consoleSender{}, nil)
	}
}

// Send attempts delivery through the primary transport, then the
// fallback. Returns the message id of the transport that accepted it.
func (s *Service) Send(to, subject, html string) (string, error) {
	messageID, primaryErr := s.primary.Send(to, subject, html)
	if primaryErr == nil {
		return messageID, nil
	}
	log.Printf("email: primary transport failed for %s: %v", to, primaryErr)

	if s.fallback == nil {
		return "", primaryErr
	}

	messageID, fallbackErr := s.fallback.Send(to, subject, html)
	if fallbackErr == nil {
		log.Printf("email: sent to %s via fallback transport", to)
		return messageID, nil
	}
	log.Printf("email: fallback transport failed for %s: %v", to, fallbackErr)
	return "", fmt.Errorf("primary: %v; fallback: %v", primaryErr, fallbackErr)
}

// consoleSender logs mail instead of sending it (development mode).
type consoleSender struct{}

func (consoleSender) Send(to, subject, html string) (string, error) {
	log.Printf("email [console]: to=%s subject=%q (%d bytes)", to, subject, len(html))
	return "console", nil
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
