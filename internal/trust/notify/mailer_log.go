package notify

import (
	"context"
	"log/slog"
)

// LogMailer is the fallback used when SMTP is unconfigured: notifications
// land in the service log instead of an inbox.
type LogMailer struct {
	Logger *slog.Logger
}

func (m *LogMailer) Send(ctx context.Context, subject, body string) error {
	log := m.Logger
	if log == nil {
		log = slog.Default()
	}
	log.Info("notification (no SMTP configured)", "subject", subject, "body", body)
	return nil
}
