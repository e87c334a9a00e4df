package notify

import (
	"fmt"
	"net/mail"

	"github.com/avstrong/afrotour/internal/catalog"
)

type Kind string

const (
	// KindBookingConfirmation is sent from the confirmation view.
	KindBookingConfirmation Kind = "booking_confirmation"
	// KindPaymentConfirmation is sent by checkout once payment succeeds.
	KindPaymentConfirmation Kind = "payment_confirmation"
)

type Booking struct {
	ID          string         `json:"id"`
	Destination string         `json:"destination"`
	Date        string         `json:"date"`
	PackageType string         `json:"packageType"`
	Travelers   int            `json:"travelers"`
	Total       int            `json:"total"`
	Guide       *catalog.Guide `json:"guide,omitempty"`
}

// Event is the single notification schema for both confirmation emails.
type Event struct {
	ID      string  `json:"id"`
	Kind    Kind    `json:"kind"`
	To      string  `json:"to"`
	Subject string  `json:"subject"`
	Booking Booking `json:"booking"`
}

func NewBookingConfirmation(to string, b Booking) Event {
	return Event{
		Kind:    KindBookingConfirmation,
		To:      to,
		Subject: fmt.Sprintf("Booking Confirmation - %s", b.ID),
		Booking: b,
	}
}

func NewPaymentConfirmation(to string, b Booking) Event {
	return Event{
		Kind:    KindPaymentConfirmation,
		To:      to,
		Subject: "Your AfroTour Nexus Booking Confirmation",
		Booking: b,
	}
}

func (e Event) Validate() error {
	if e.Kind != KindBookingConfirmation && e.Kind != KindPaymentConfirmation {
		return fmt.Errorf("kind %q: %w", e.Kind, ErrUnknownKind)
	}

	if _, err := mail.ParseAddress(e.To); err != nil {
		return fmt.Errorf("recipient %q: %w", e.To, ErrInvalidRecipient)
	}

	if e.Booking.ID == "" {
		return ErrMissingBookingID
	}

	return nil
}
