// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package email sends portal mail over SMTP.
package email

import (
	"context"
	"fmt"
	"strings"

	"codeberg.org/waap/waap/internal/config"
	"codeberg.org/waap/waap/internal/i18n"
	"github.com/wneessen/go-mail"
)

// Subject lines for the three portal mails.
const (
	LoginSubject    = "Your WAAP Login Link"
	DeletionSubject = "WAAP Job Posting Deletion Link"
	ContactSubject  = "New Contact Message: %s"
)

// Service sends email via SMTP using go-mail.
type Service struct {
	cfg     *config.SMTPConfig
	baseURL string
}

// NewService creates a new email service.
func NewService(cfg *config.SMTPConfig, baseURL string) (*Service, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("SMTP from address is required")
	}

	return &Service{
		cfg:     cfg,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// SendLoginLink mails a one-time login link. The token is only ever
// exposed through this mail, never displayed in-app.
func (s *Service) SendLoginLink(ctx context.Context, toEmail, token string) error {
	loginURL := fmt.Sprintf("%s/login/verify/%s", s.baseURL, token)

	body := i18n.TData(ctx, "email_login_body", map[string]any{
		"LoginURL": loginURL,
	})

	return s.send(toEmail, LoginSubject, body, "")
}

// SendDeletionLink mails a deletion-confirmation link for a posting.
func (s *Service) SendDeletionLink(ctx context.Context, toEmail, jobTitle, token string) error {
	deleteURL := fmt.Sprintf("%s/job-postings/delete/%s", s.baseURL, token)

	body := i18n.TData(ctx, "email_deletion_body", map[string]any{
		"JobTitle":  jobTitle,
		"DeleteURL": deleteURL,
	})

	return s.send(toEmail, DeletionSubject, body, "")
}

// SendContactMessage relays a visitor message to a posting owner. The
// sender's address goes into Reply-To so answers route back to them
// while the visible From stays the portal address.
func (s *Service) SendContactMessage(ctx context.Context, toEmail, jobTitle, senderName, senderEmail, message string) error {
	subject := fmt.Sprintf(ContactSubject, jobTitle)

	body := i18n.TData(ctx, "email_contact_body", map[string]any{
		"JobTitle":   jobTitle,
		"SenderName": senderName,
		"Message":    message,
	})

	return s.send(toEmail, subject, body, senderEmail)
}

// send delivers one message via SMTP.
func (s *Service) send(to, subject, body, replyTo string) error {
	msg := mail.NewMsg()

	if s.cfg.FromName != "" {
		if err := msg.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	}

	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting to address: %w", err)
	}

	if replyTo != "" {
		if err := msg.ReplyTo(replyTo); err != nil {
			return fmt.Errorf("setting reply-to address: %w", err)
		}
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	// Build client options
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
	}

	// Configure TLS based on config and port
	if s.cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		// Use implicit TLS (SSL) for port 465, STARTTLS for others
		if s.cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	// Add authentication if credentials are provided
	if s.cfg.Username != "" && s.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := client.DialAndSend(msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}
