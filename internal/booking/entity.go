package booking

import (
	"time"

	"github.com/avstrong/afrotour/internal/catalog"
	"github.com/avstrong/afrotour/internal/payment"
	"github.com/avstrong/afrotour/internal/pricing"
)

const (
	dateLayout        = "2006-01-02"
	displayDateLayout = "January 2, 2006"
)

type CheckoutInput struct {
	Destination string          `json:"destination"`
	Package     pricing.Tier    `json:"package"`
	Date        string          `json:"date"`
	Travelers   int             `json:"travelers"`
	GuestEmail  string          `json:"guestEmail"`
	Payment     payment.Request `json:"payment"`
}

type Confirmation struct {
	BookingID     string            `json:"bookingId"`
	Destination   string            `json:"destination"`
	Country       string            `json:"country"`
	Date          string            `json:"date"`
	FormattedDate string            `json:"formattedDate"`
	Package       pricing.Tier      `json:"package"`
	PackageName   string            `json:"packageName"`
	Travelers     int               `json:"travelers"`
	Total         int               `json:"total"`
	Breakdown     pricing.Breakdown `json:"breakdown"`
	Guide         catalog.Guide     `json:"guide"`
	GuestEmail    string            `json:"guestEmail,omitempty"`
	// EmailSent reports whether checkout delivered the payment confirmation.
	EmailSent bool      `json:"emailSent"`
	CreatedAt time.Time `json:"createdAt"`
}

type CheckoutResult struct {
	Confirmation *Confirmation
	// Replayed is set when the idempotency key matched an earlier checkout.
	Replayed bool
}

// ViewInput is the confirmation view query. Total is accepted for
// compatibility but the view always recomputes it.
type ViewInput struct {
	BookingID   string
	Destination string
	Package     pricing.Tier
	Date        string
	Travelers   int
	Total       int
	GuestEmail  string
}

type View struct {
	Confirmation *Confirmation `json:"confirmation"`
	Recipient    string        `json:"recipient,omitempty"`
	// EmailSent is true when this call delivered an email.
	EmailSent  bool `json:"emailSent"`
	EmailsSent int  `json:"emailsSent"`
}

type DashboardStatus string

const (
	StatusUpcoming  DashboardStatus = "upcoming"
	StatusCompleted DashboardStatus = "completed"
	StatusCancelled DashboardStatus = "cancelled"
)

func ParseDashboardStatus(value string) (DashboardStatus, error) {
	switch s := DashboardStatus(value); s {
	case StatusUpcoming, StatusCompleted, StatusCancelled:
		return s, nil
	case "", "all":
		return "", nil
	default:
		return "", ErrUnknownStatus
	}
}

type DashboardBooking struct {
	ID          string          `json:"id"`
	Destination string          `json:"destination"`
	Date        string          `json:"date"`
	Status      DashboardStatus `json:"status"`
	Guests      int             `json:"guests"`
	Duration    string          `json:"duration"`
	Image       string          `json:"image"`
	Price       int             `json:"price"`
	Guide       string          `json:"guide"`
}
