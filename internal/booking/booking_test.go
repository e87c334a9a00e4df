package booking_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avstrong/afrotour/internal/auth"
	"github.com/avstrong/afrotour/internal/booking"
	"github.com/avstrong/afrotour/internal/catalog"
	"github.com/avstrong/afrotour/internal/logger"
	"github.com/avstrong/afrotour/internal/notify"
	"github.com/avstrong/afrotour/internal/payment"
	"github.com/avstrong/afrotour/internal/pricing"
	"github.com/avstrong/afrotour/internal/storage/memory"
)

type fixedID string

func (f fixedID) GetID(context.Context) (string, error) {
	return string(f), nil
}

type fakePayments struct {
	mu    sync.Mutex
	ok    bool
	err   error
	calls []payment.Request
}

func (f *fakePayments) Process(_ context.Context, req payment.Request) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, req)

	return f.ok, f.err
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
	err    error
}

func (r *recordingNotifier) Notify(_ context.Context, e notify.Event) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return "", r.err
	}

	r.events = append(r.events, e)

	return "msg", nil
}

func (r *recordingNotifier) count(kind notify.Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int

	for _, e := range r.events {
		if e.Kind == kind {
			n++
		}
	}

	return n
}

type staticUser struct {
	user *auth.User
}

func (s staticUser) CurrentUser(context.Context) (*auth.User, error) {
	if s.user == nil {
		return nil, auth.ErrInvalidSession
	}

	return s.user, nil
}

type fixture struct {
	manager  *booking.Manager
	payments *fakePayments
	notifier *recordingNotifier
	db       *memory.DB
}

func newFixture(user *auth.User) *fixture {
	f := &fixture{
		payments: &fakePayments{ok: true},
		notifier: &recordingNotifier{},
		db:       memory.New(memory.Config{L: logger.Discard()}),
	}

	f.manager = booking.New(booking.Conf{
		L:            logger.Discard(),
		Storage:      f.db,
		IDGenerator:  fixedID("ATN-123456"),
		Payments:     f.payments,
		Notifier:     f.notifier,
		Users:        staticUser{user: user},
		Destinations: catalog.Default(),
	})

	return f
}

func kigaliCheckout() *booking.CheckoutInput {
	return &booking.CheckoutInput{
		Destination: "Kigali",
		Package:     pricing.Standard,
		Date:        "2025-06-01",
		Travelers:   2,
		GuestEmail:  "guest@example.com",
		Payment:     payment.Request{Method: payment.MethodWallet},
	}
}

func TestManager_KigaliGuestCheckout(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()

	res, err := f.manager.Checkout(ctx, kigaliCheckout())
	require.NoError(t, err)

	c := res.Confirmation
	assert.Equal(t, "ATN-123456", c.BookingID)
	assert.Equal(t, 2100, c.Total)
	assert.Equal(t, 600, c.Breakdown.AccommodationCost)
	assert.Equal(t, "John Mutabazi", c.Guide.Name)
	assert.Equal(t, "June 1, 2025", c.FormattedDate)
	assert.True(t, c.EmailSent)

	require.Len(t, f.payments.calls, 1)
	assert.Equal(t, 2100, f.payments.calls[0].Amount)
	assert.Equal(t, "USD", f.payments.calls[0].Currency)

	require.Equal(t, 1, f.notifier.count(notify.KindPaymentConfirmation))
	assert.Equal(t, "guest@example.com", f.notifier.events[0].To)

	q := c.Query()
	assert.Equal(t, "diamond", q.Get("package"))
	assert.Equal(t, "2100", q.Get("total"))
	assert.Equal(t, "guest@example.com", q.Get("guestEmail"))

	view, err := booking.ParseViewQuery(q)
	require.NoError(t, err)

	// checkout already emailed, so the view does not
	v, err := f.manager.View(ctx, view)
	require.NoError(t, err)
	assert.False(t, v.EmailSent)
	assert.Equal(t, 1, v.EmailsSent)
	assert.Zero(t, f.notifier.count(notify.KindBookingConfirmation))

	for i := 1; i <= 3; i++ {
		v, err = f.manager.Resend(ctx, view)
		require.NoError(t, err)
		assert.True(t, v.EmailSent)
		assert.Equal(t, 1+i, v.EmailsSent)
	}

	assert.Equal(t, 3, f.notifier.count(notify.KindBookingConfirmation))
}

func TestManager_ViewSendsAutomaticallyOnce(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()

	input := &booking.ViewInput{
		BookingID:   "ATN-654321",
		Destination: "Kigali",
		Package:     pricing.Standard,
		Date:        "2025-06-01",
		Travelers:   2,
		GuestEmail:  "guest@example.com",
	}

	v, err := f.manager.View(ctx, input)
	require.NoError(t, err)
	assert.True(t, v.EmailSent)
	assert.Equal(t, "guest@example.com", v.Recipient)
	assert.Equal(t, "John Mutabazi", v.Confirmation.Guide.Name)
	assert.Equal(t, 2100, v.Confirmation.Total)

	v, err = f.manager.View(ctx, input)
	require.NoError(t, err)
	assert.False(t, v.EmailSent)

	require.Equal(t, 1, f.notifier.count(notify.KindBookingConfirmation))
	assert.Equal(t, "Booking Confirmation - ATN-654321", f.notifier.events[0].Subject)
	assert.Equal(t, "June 1, 2025", f.notifier.events[0].Booking.Date)
}

func TestManager_ViewConcurrentSendsOnce(t *testing.T) {
	f := newFixture(nil)

	input := &booking.ViewInput{
		BookingID:   "ATN-111111",
		Destination: "Accra",
		Package:     pricing.Premium,
		Date:        "2025-07-10",
		Travelers:   1,
		GuestEmail:  "guest@example.com",
	}

	var wg sync.WaitGroup

	for range 10 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := f.manager.View(context.Background(), input)
			assert.NoError(t, err)
		}()
	}

	wg.Wait()

	assert.Equal(t, 1, f.notifier.count(notify.KindBookingConfirmation))
}

func TestManager_ViewWithoutRecipientSkipsEmail(t *testing.T) {
	f := newFixture(nil)

	v, err := f.manager.View(context.Background(), &booking.ViewInput{
		BookingID:   "ATN-222222",
		Destination: "Somewhere New",
		Package:     pricing.Standard,
		Date:        "2025-06-01",
		Travelers:   1,
	})
	require.NoError(t, err)
	assert.False(t, v.EmailSent)
	assert.Empty(t, v.Recipient)
	assert.Equal(t, "Local Guide", v.Confirmation.Guide.Name)
	assert.Empty(t, f.notifier.events)

	_, err = f.manager.Resend(context.Background(), &booking.ViewInput{
		BookingID:   "ATN-222222",
		Destination: "Kigali",
		Package:     pricing.Standard,
		Date:        "2025-06-01",
		Travelers:   1,
	})
	require.NotNil(t, booking.IsInputError(err))
}

func TestManager_SignedInUserReceivesEmail(t *testing.T) {
	f := newFixture(&auth.User{ID: "u-1", Email: "member@example.com"})

	input := kigaliCheckout()
	input.GuestEmail = ""

	res, err := f.manager.Checkout(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, res.Confirmation.EmailSent)
	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, "member@example.com", f.notifier.events[0].To)
}

func TestManager_CheckoutValidation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(in *booking.CheckoutInput)
		field  string
	}{
		{name: "missing date", modify: func(in *booking.CheckoutInput) { in.Date = " " }, field: "date"},
		{name: "bad date", modify: func(in *booking.CheckoutInput) { in.Date = "01/06/2025" }, field: "date"},
		{name: "zero travelers", modify: func(in *booking.CheckoutInput) { in.Travelers = 0 }, field: "travelers"},
		{name: "eleven travelers", modify: func(in *booking.CheckoutInput) { in.Travelers = 11 }, field: "travelers"},
		{name: "unknown destination", modify: func(in *booking.CheckoutInput) { in.Destination = "Atlantis" }, field: "destination"},
		{name: "no package", modify: func(in *booking.CheckoutInput) { in.Package = 0 }, field: "package"},
		{name: "guest without email", modify: func(in *booking.CheckoutInput) { in.GuestEmail = "" }, field: "guestEmail"},
		{name: "bad guest email", modify: func(in *booking.CheckoutInput) { in.GuestEmail = "nope" }, field: "guestEmail"},
		{name: "card without details", modify: func(in *booking.CheckoutInput) { in.Payment = payment.Request{} }, field: "payment.card"},
		{name: "unknown method", modify: func(in *booking.CheckoutInput) { in.Payment.Method = "crypto" }, field: "payment.method"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(nil)

			input := kigaliCheckout()
			tt.modify(input)

			_, err := f.manager.Checkout(context.Background(), input)

			inputErr := booking.IsInputError(err)
			require.NotNil(t, inputErr)
			assert.Contains(t, inputErr.Fields(), tt.field)
			assert.Empty(t, f.payments.calls)
		})
	}
}

func TestManager_CheckoutMissingDateMessage(t *testing.T) {
	f := newFixture(nil)

	input := kigaliCheckout()
	input.Date = ""

	_, err := f.manager.Checkout(context.Background(), input)

	inputErr := booking.IsInputError(err)
	require.NotNil(t, inputErr)
	assert.Equal(t, []string{"Please select a travel date"}, inputErr.Fields()["date"])
}

func TestManager_PaymentFailureKeepsDraft(t *testing.T) {
	f := newFixture(nil)
	f.payments.ok = false
	f.payments.err = errors.New("card declined")

	_, err := f.manager.Checkout(context.Background(), kigaliCheckout())
	require.ErrorIs(t, err, booking.ErrPaymentFailed)

	paymentErr := booking.IsPaymentError(err)
	require.NotNil(t, paymentErr)
	assert.Equal(t, booking.StateFailed, paymentErr.Draft.State)
	assert.Equal(t, "Kigali", paymentErr.Draft.Destination)
	assert.Equal(t, "2025-06-01", paymentErr.Draft.Date)
	assert.Equal(t, 2, paymentErr.Draft.Travelers)
	assert.Empty(t, f.notifier.events)

	f.payments.ok = true
	f.payments.err = nil

	res, err := f.manager.Checkout(context.Background(), kigaliCheckout())
	require.NoError(t, err)
	assert.Equal(t, "ATN-123456", res.Confirmation.BookingID)
}

func TestManager_EmailFailureDoesNotFailCheckout(t *testing.T) {
	f := newFixture(nil)
	f.notifier.err = errors.New("smtp down")

	res, err := f.manager.Checkout(context.Background(), kigaliCheckout())
	require.NoError(t, err)
	assert.False(t, res.Confirmation.EmailSent)

	sent, err := f.db.EmailsSent(context.Background(), "ATN-123456")
	require.NoError(t, err)
	assert.Zero(t, sent)
}

func TestManager_IdempotentCheckout(t *testing.T) {
	f := newFixture(nil)
	ctx := booking.NewContextWithIdempotencyKey(context.Background(), "checkout-1")

	first, err := f.manager.Checkout(ctx, kigaliCheckout())
	require.NoError(t, err)
	assert.False(t, first.Replayed)

	second, err := f.manager.Checkout(ctx, kigaliCheckout())
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.Confirmation.BookingID, second.Confirmation.BookingID)

	assert.Len(t, f.payments.calls, 1)
	assert.Equal(t, 1, f.notifier.count(notify.KindPaymentConfirmation))

	_, err = f.manager.Checkout(context.Background(), kigaliCheckout())
	require.NoError(t, err)
	assert.Len(t, f.payments.calls, 2)
}

func TestManager_ConcurrentSameKeyCheckoutChargesOnce(t *testing.T) {
	f := newFixture(nil)
	ctx := booking.NewContextWithIdempotencyKey(context.Background(), "checkout-1")

	const callers = 8

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		fresh    int
		rejected int
	)

	for range callers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			res, err := f.manager.Checkout(ctx, kigaliCheckout())

			mu.Lock()
			defer mu.Unlock()

			switch {
			case errors.Is(err, booking.ErrCheckoutInProgress):
				rejected++
			case err != nil:
				t.Errorf("unexpected checkout error: %v", err)
			case !res.Replayed:
				fresh++
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, 1, fresh)
	assert.Len(t, f.payments.calls, 1)
	assert.Equal(t, 1, f.notifier.count(notify.KindPaymentConfirmation))
	assert.Less(t, rejected, callers)

	replay, err := f.manager.Checkout(ctx, kigaliCheckout())
	require.NoError(t, err)
	assert.True(t, replay.Replayed)
}

func TestManager_FailedPaymentFreesIdempotencyKey(t *testing.T) {
	f := newFixture(nil)
	f.payments.ok = false
	ctx := booking.NewContextWithIdempotencyKey(context.Background(), "checkout-1")

	_, err := f.manager.Checkout(ctx, kigaliCheckout())
	require.NotNil(t, booking.IsPaymentError(err))

	f.payments.ok = true

	res, err := f.manager.Checkout(ctx, kigaliCheckout())
	require.NoError(t, err)
	assert.False(t, res.Replayed)
	assert.Len(t, f.payments.calls, 2)
}

func TestManager_DashboardBookings(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()

	trxCtx, err := f.db.BeginTransaction(ctx, "")
	require.NoError(t, err)
	require.NoError(t, f.db.SaveDashboardBookings(trxCtx, []*booking.DashboardBooking{
		{ID: "1", Status: booking.StatusUpcoming},
		{ID: "2", Status: booking.StatusCompleted},
	}))
	require.NoError(t, f.db.CommitTransaction(trxCtx))

	all, err := f.manager.DashboardBookings(ctx, "all")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	upcoming, err := f.manager.DashboardBookings(ctx, "Upcoming")
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, "1", upcoming[0].ID)

	_, err = f.manager.DashboardBookings(ctx, "lost")
	require.NotNil(t, booking.IsInputError(err))
}
