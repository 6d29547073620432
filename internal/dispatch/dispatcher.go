// Package dispatch provides the outbound notification channel implementation.
// Real email/SMS providers live behind this boundary; the default dispatcher
// writes to the log so the delivery flags stay meaningful in development.
package dispatch

import (
	"context"
	"log"
	"os"

	"backend/internal/model"

	"github.com/google/uuid"
)

// LogDispatcher records channel attempts to the process log. DRY_RUN-style
// stand-in for the provider integration; it reports every attempt as sent.
type LogDispatcher struct {
	emailFrom string
	smsFrom   string
}

func NewLogDispatcher() *LogDispatcher {
	return &LogDispatcher{
		emailFrom: os.Getenv("NOTIFY_EMAIL_FROM"),
		smsFrom:   os.Getenv("NOTIFY_SMS_FROM"),
	}
}

func (d *LogDispatcher) SendEmail(ctx context.Context, userID uuid.UUID, n *model.Notification) (bool, error) {
	log.Printf("dispatch: email to user %s from %q: %s", userID, d.emailFrom, n.Title)
	return true, nil
}

func (d *LogDispatcher) SendSms(ctx context.Context, userID uuid.UUID, n *model.Notification) (bool, error) {
	log.Printf("dispatch: sms to user %s from %q: %s", userID, d.smsFrom, n.Title)
	return true, nil
}
