package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avstrong/afrotour/internal/logger"
)

// EmailStub pretends to hand events to an email provider. Every accepted
// event is logged and reported as delivered; nothing leaves the process.
type EmailStub struct {
	l      *logger.Logger
	delays map[Kind]time.Duration
}

type EmailStubConfig struct {
	L                 *logger.Logger
	BookingDelay      time.Duration
	PaymentEmailDelay time.Duration
}

func NewEmailStub(conf EmailStubConfig) *EmailStub {
	return &EmailStub{
		l: conf.L,
		delays: map[Kind]time.Duration{
			KindBookingConfirmation: conf.BookingDelay,
			KindPaymentConfirmation: conf.PaymentEmailDelay,
		},
	}
}

// Notify returns the message id assigned to the event.
func (s *EmailStub) Notify(ctx context.Context, event Event) (string, error) {
	if err := event.Validate(); err != nil {
		return "", err
	}

	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("send %s to %s: %w", event.Kind, event.To, ctx.Err())
	case <-time.After(s.delays[event.Kind]):
	}

	s.l.LogInfo(
		"Sending %s email to %s: id %s, subject %q, booking %s, destination %s, date %s, package %s, travelers %d, total %d",
		event.Kind,
		event.To,
		event.ID,
		event.Subject,
		event.Booking.ID,
		event.Booking.Destination,
		event.Booking.Date,
		event.Booking.PackageType,
		event.Booking.Travelers,
		event.Booking.Total,
	)

	return event.ID, nil
}
