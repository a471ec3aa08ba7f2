// Package delivery routes passcodes to the email or SMS channel.
package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/social-feed-api/internal/domain"
)

const sendTimeout = 10 * time.Second

type emailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

// Router sends each passcode over the channel named by the method. It makes
// one attempt and never retries.
type Router struct {
	email emailSender
	sms   smsSender
}

func NewRouter(email emailSender, sms smsSender) *Router {
	return &Router{email: email, sms: sms}
}

func (r *Router) Send(ctx context.Context, method domain.VerificationMethod, destination, code string) error {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	switch method {
	case domain.MethodEmail:
		return r.email.SendEmail(ctx, destination, "Your verification code", emailBody(code))
	case domain.MethodPhone:
		return r.sms.SendSMS(ctx, destination, smsBody(code))
	}
	return fmt.Errorf("unsupported delivery method %q", method)
}

// LogSender writes the passcode to the log instead of sending it.
// For local development only.
type LogSender struct {
	log *slog.Logger
}

func NewLogSender(log *slog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, method domain.VerificationMethod, destination, code string) error {
	s.log.InfoContext(ctx, "passcode delivery (dev only)",
		"method", method, "destination", destination, "code", code)
	return nil
}

func emailBody(code string) string {
	return fmt.Sprintf("Your verification code is %s.\nIt expires shortly. If you did not request it, ignore this email.", code)
}

func smsBody(code string) string {
	return fmt.Sprintf("Your verification code is %s", code)
}
