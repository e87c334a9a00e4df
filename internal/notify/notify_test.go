package notify

import (
	"bytes"
	"context"
	"log"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avstrong/afrotour/internal/catalog"
	"github.com/avstrong/afrotour/internal/logger"
)

func kigaliBooking() Booking {
	guide := catalog.GuideFor("Kigali")

	return Booking{
		ID:          "ATN-123456",
		Destination: "Kigali",
		Date:        "June 1, 2025",
		PackageType: "diamond",
		Travelers:   2,
		Total:       2100,
		Guide:       &guide,
	}
}

func TestNewBookingConfirmation(t *testing.T) {
	e := NewBookingConfirmation("guest@example.com", kigaliBooking())

	assert.Equal(t, KindBookingConfirmation, e.Kind)
	assert.Equal(t, "Booking Confirmation - ATN-123456", e.Subject)
	require.NoError(t, e.Validate())
}

func TestNewPaymentConfirmation(t *testing.T) {
	b := kigaliBooking()
	b.Guide = nil

	e := NewPaymentConfirmation("guest@example.com", b)

	assert.Equal(t, KindPaymentConfirmation, e.Kind)
	require.NoError(t, e.Validate())
}

func TestEvent_Validate(t *testing.T) {
	tests := []struct {
		name    string
		event   Event
		wantErr error
	}{
		{name: "unknown kind", event: Event{Kind: "sms", To: "a@b.co", Booking: Booking{ID: "ATN-1"}}, wantErr: ErrUnknownKind},
		{name: "bad recipient", event: NewBookingConfirmation("nobody", kigaliBooking()), wantErr: ErrInvalidRecipient},
		{name: "no booking id", event: NewPaymentConfirmation("a@b.co", Booking{}), wantErr: ErrMissingBookingID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.event.Validate(), tt.wantErr)
		})
	}
}

func TestEmailStub_Notify(t *testing.T) {
	var buf bytes.Buffer

	stub := NewEmailStub(EmailStubConfig{L: logger.New(log.New(&buf, "", 0))})

	id, err := stub.Notify(context.Background(), NewBookingConfirmation("guest@example.com", kigaliBooking()))
	require.NoError(t, err)

	_, err = uuid.Parse(id)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "booking_confirmation email to guest@example.com")
	assert.Contains(t, buf.String(), "ATN-123456")
}

func TestEmailStub_NotifyKeepsGivenID(t *testing.T) {
	stub := NewEmailStub(EmailStubConfig{L: logger.Discard()})

	e := NewPaymentConfirmation("guest@example.com", kigaliBooking())
	e.ID = "msg-1"

	id, err := stub.Notify(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, "msg-1", id)
}

func TestEmailStub_NotifyRejectsInvalidEvent(t *testing.T) {
	stub := NewEmailStub(EmailStubConfig{L: logger.Discard()})

	_, err := stub.Notify(context.Background(), NewPaymentConfirmation("", kigaliBooking()))
	require.ErrorIs(t, err, ErrInvalidRecipient)
}

func TestEmailStub_NotifyContextCanceled(t *testing.T) {
	stub := NewEmailStub(EmailStubConfig{L: logger.Discard(), BookingDelay: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := stub.Notify(ctx, NewBookingConfirmation("guest@example.com", kigaliBooking()))
	require.ErrorIs(t, err, context.Canceled)
}
