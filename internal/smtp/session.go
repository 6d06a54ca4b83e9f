package smtp

import (
	"context"
	"io"
	"log/slog"

	"github.com/emersion/go-smtp"
	"github.com/rpsms/sms-organizer-backend/internal/services"
)

// Session implements the go-smtp Session interface
type Session struct {
	backend    *Backend
	from       string
	recipients []string
}

// NewSession creates a new SMTP session
func NewSession(backend *Backend) *Session {
	return &Session{
		backend:    backend,
		recipients: make([]string, 0),
	}
}

// AuthPlain handles PLAIN authentication (not required for receiving)
func (s *Session) AuthPlain(username, password string) error {
	return nil
}

// Mail handles the MAIL FROM command
func (s *Session) Mail(from string, opts *smtp.MailOptions) error {
	s.from = from
	if s.backend.logger != nil {
		s.backend.logger.Debug("MAIL FROM", slog.String("from", from))
	}
	return nil
}

// Rcpt handles the RCPT TO command. The gateway delivers every message
// into the single local store, so any recipient is accepted.
func (s *Session) Rcpt(to string, opts *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	if s.backend.logger != nil {
		s.backend.logger.Debug("RCPT TO", slog.String("to", to))
	}
	return nil
}

// Data handles the DATA command - receives the gateway email content
func (s *Session) Data(r io.Reader) error {
	if len(s.recipients) == 0 {
		return &smtp.SMTPError{
			Code:         503,
			EnhancedCode: smtp.EnhancedCode{5, 5, 1},
			Message:      "No recipients specified",
		}
	}

	parsed, err := ParseSMS(r)
	if err != nil {
		if s.backend.logger != nil {
			s.backend.logger.Error("failed to parse gateway message", slog.Any("error", err))
		}
		return &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 6, 0},
			Message:      "Failed to parse message",
		}
	}

	// Fall back to the envelope sender when the From header yields nothing.
	if parsed.SenderNumber == "" {
		_, parsed.SenderNumber = parseFromHeader(s.from)
	}

	if parsed.SenderNumber == "" || parsed.Body == "" {
		return &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 6, 0},
			Message:      "Message has no sender or body",
		}
	}

	msg, err := s.backend.intake.Receive(context.Background(), services.IncomingMessage{
		Address:     parsed.SenderNumber,
		Body:        parsed.Body,
		ContactName: parsed.SenderName,
	})
	if err != nil {
		if s.backend.logger != nil {
			s.backend.logger.Error("failed to store gateway message",
				slog.String("sender", parsed.SenderNumber),
				slog.Any("error", err))
		}
		return &smtp.SMTPError{
			Code:         451,
			EnhancedCode: smtp.EnhancedCode{4, 3, 0},
			Message:      "Temporary error",
		}
	}

	if s.backend.logger != nil {
		s.backend.logger.Info("gateway message received",
			slog.String("sender", parsed.SenderNumber),
			slog.Uint64("message_id", uint64(msg.ID)),
			slog.String("folder", msg.Folder))
	}
	return nil
}

// Reset resets the session state
func (s *Session) Reset() {
	s.from = ""
	s.recipients = make([]string, 0)
}

// Logout handles the end of the session
func (s *Session) Logout() error {
	return nil
}
