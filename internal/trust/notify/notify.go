// Package notify delivers best-effort event notifications to the
// administrator. Delivery failures are logged and discarded; nothing in
// this package may surface an error into a verification flow.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ratewatch/ratewatch/pkg/idx"
)

// eventTimeFormat is the fixed human-readable timestamp layout used in
// notification bodies.
const eventTimeFormat = "02.01.2006 15:04:05 MST"

// Event describes something an administrator should hear about.
type Event struct {
	ID          idx.ID
	Subject     string
	Description string
	OccurredAt  time.Time
}

// VerificationSucceeded builds the event sent when a user completes email
// verification.
func VerificationSucceeded(email string, at time.Time, loc *time.Location) Event {
	if loc == nil {
		loc = time.UTC
	}
	local := at.In(loc)
	return Event{
		ID:          idx.NewAt(at),
		Subject:     "RateWatch: user verified",
		Description: fmt.Sprintf("User %s completed email verification at %s.", email, local.Format(eventTimeFormat)),
		OccurredAt:  at,
	}
}

// Mailer sends a single message to the configured recipient.
type Mailer interface {
	Send(ctx context.Context, subject, body string) error
}

// Dispatcher fans events out to the mailer on a bounded timeout.
type Dispatcher struct {
	Mailer  Mailer
	Logger  *slog.Logger
	Timeout time.Duration
}

// Dispatch sends the event. It never returns an error; failures are logged
// with the event ID so they can be traced, then dropped. Callers on a
// success path should invoke it in its own goroutine.
func (d *Dispatcher) Dispatch(event Event) {
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}

	timeout := d.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := d.Mailer.Send(ctx, event.Subject, event.Description); err != nil {
		log.Warn("notification delivery failed",
			"event_id", event.ID.String(),
			"subject", event.Subject,
			"err", err,
		)
		return
	}

	log.Info("notification delivered", "event_id", event.ID.String(), "subject", event.Subject)
}
