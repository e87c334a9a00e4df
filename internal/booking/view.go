package booking

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avstrong/afrotour/internal/pricing"
)

// Query parameters of the confirmation view.
const (
	paramDestination = "destination"
	paramPackage     = "package"
	paramDate        = "date"
	paramTravelers   = "travelers"
	paramTotal       = "total"
	paramBookingID   = "bookingId"
	paramGuestEmail  = "guestEmail"
)

// Query encodes the confirmation the way the confirmation view reads it.
func (c *Confirmation) Query() url.Values {
	q := url.Values{}
	q.Set(paramDestination, c.Destination)
	q.Set(paramPackage, c.Package.String())
	q.Set(paramDate, c.Date)
	q.Set(paramTravelers, strconv.Itoa(c.Travelers))
	q.Set(paramTotal, strconv.Itoa(c.Total))
	q.Set(paramBookingID, c.BookingID)

	if c.GuestEmail != "" {
		q.Set(paramGuestEmail, c.GuestEmail)
	}

	return q
}

func ParseViewQuery(q url.Values) (*ViewInput, error) {
	inputErr := newInputError()

	//nolint:exhaustruct
	input := &ViewInput{
		BookingID:   strings.TrimSpace(q.Get(paramBookingID)),
		Destination: strings.TrimSpace(q.Get(paramDestination)),
		Date:        strings.TrimSpace(q.Get(paramDate)),
		GuestEmail:  strings.TrimSpace(q.Get(paramGuestEmail)),
	}

	tier, err := pricing.ParseTier(q.Get(paramPackage))
	if err != nil {
		inputErr.addError(paramPackage, "unknown package")
	}

	input.Package = tier

	if input.Travelers, err = strconv.Atoi(q.Get(paramTravelers)); err != nil {
		inputErr.addError(paramTravelers, "travelers must be a number")
	}

	if raw := q.Get(paramTotal); raw != "" {
		if input.Total, err = strconv.Atoi(raw); err != nil {
			inputErr.addError(paramTotal, "total must be a number")
		}
	}

	if inputErr.fieldsCount() > 0 {
		return nil, inputErr
	}

	return input, nil
}

func (v *ViewInput) validate() error {
	inputErr := newInputError()

	if strings.TrimSpace(v.BookingID) == "" {
		inputErr.addError(paramBookingID, "provide bookingId")
	}

	if strings.TrimSpace(v.Destination) == "" {
		inputErr.addError(paramDestination, "provide destination")
	}

	if !v.Package.Valid() {
		inputErr.addError(paramPackage, "unknown package")
	}

	if _, err := time.Parse(dateLayout, v.Date); err != nil {
		inputErr.addError(paramDate, "date must be in YYYY-MM-DD format")
	}

	if err := pricing.ValidateTravelers(v.Travelers); err != nil {
		inputErr.addError(paramTravelers, fmt.Sprintf("travelers must be between %d and %d", pricing.MinTravelers, pricing.MaxTravelers))
	}

	if inputErr.fieldsCount() > 0 {
		return inputErr
	}

	return nil
}
