package booking

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/avstrong/afrotour/internal/auth"
	"github.com/avstrong/afrotour/internal/catalog"
	"github.com/avstrong/afrotour/internal/logger"
	"github.com/avstrong/afrotour/internal/notify"
	"github.com/avstrong/afrotour/internal/payment"
	"github.com/avstrong/afrotour/internal/pricing"
)

const currency = "USD"

type idGenerator interface {
	GetID(ctx context.Context) (string, error)
}

type paymentProcessor interface {
	Process(ctx context.Context, req payment.Request) (bool, error)
}

type notifier interface {
	Notify(ctx context.Context, event notify.Event) (string, error)
}

type userResolver interface {
	CurrentUser(ctx context.Context) (*auth.User, error)
}

type destinationFinder interface {
	FindByName(name string) (catalog.Destination, error)
}

type storageReader interface {
	GetConfirmationByIdempotencyKey(ctx context.Context) (*Confirmation, error)
	ReserveIdempotencyKey(ctx context.Context) (bool, error)
	EmailsSent(ctx context.Context, bookingID string) (int, error)
	GetDashboardBookings(ctx context.Context, status DashboardStatus) ([]*DashboardBooking, error)
}

type storageWriter interface {
	BeginTransaction(ctx context.Context, level string) (context.Context, error)
	CommitTransaction(ctx context.Context) error
	RollbackTransaction(ctx context.Context) error
	ReleaseIdempotencyKey(ctx context.Context) error
	SaveConfirmation(ctx context.Context, confirmation *Confirmation) error
	RecordEmail(ctx context.Context, bookingID string) (int, error)
}

type storage interface {
	storageReader
	storageWriter
}

// Conf lists the collaborators of a Manager. Users may be nil when
// sign-in is not offered.
type Conf struct {
	L            *logger.Logger
	Storage      storage
	IDGenerator  idGenerator
	Payments     paymentProcessor
	Notifier     notifier
	Users        userResolver
	Destinations destinationFinder
}

type Manager struct {
	l            *logger.Logger
	storage      storage
	idGenerator  idGenerator
	payments     paymentProcessor
	notifier     notifier
	users        userResolver
	destinations destinationFinder

	// serializes the automatic email per booking
	viewLocks *bookingLocks
}

func New(conf Conf) *Manager {
	//nolint:exhaustruct
	return &Manager{
		l:            conf.L,
		storage:      conf.Storage,
		idGenerator:  conf.IDGenerator,
		payments:     conf.Payments,
		notifier:     conf.Notifier,
		users:        conf.Users,
		destinations: conf.Destinations,
		viewLocks:    newBookingLocks(),
	}
}

func (m *Manager) currentUser(ctx context.Context) *auth.User {
	if m.users == nil {
		return nil
	}

	u, err := m.users.CurrentUser(ctx)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidSession) {
			m.l.LogWarnf("Could not resolve current user: %v", err)
		}

		return nil
	}

	return u
}

// resolveRecipient prefers the guest address over the signed-in user.
// An empty result means no email is attempted.
func resolveRecipient(guestEmail string, user *auth.User) string {
	if email := strings.TrimSpace(guestEmail); email != "" {
		return email
	}

	if user != nil {
		return user.Email
	}

	return ""
}

func (m *Manager) validateCheckout(input *CheckoutInput, user *auth.User) (catalog.Destination, error) {
	inputErr := newInputError()

	dest, err := m.destinations.FindByName(input.Destination)
	if err != nil {
		inputErr.addError("destination", "choose a known destination")
	}

	if !input.Package.Valid() {
		inputErr.addError("package", "choose a package")
	}

	input.Date = strings.TrimSpace(input.Date)
	if input.Date == "" {
		inputErr.addError("date", ErrSelectDate.Error())
	} else if _, err := time.Parse(dateLayout, input.Date); err != nil {
		inputErr.addError("date", "date must be in YYYY-MM-DD format")
	}

	if err := pricing.ValidateTravelers(input.Travelers); err != nil {
		inputErr.addError("travelers", fmt.Sprintf("travelers must be between %d and %d", pricing.MinTravelers, pricing.MaxTravelers))
	}

	input.GuestEmail = strings.TrimSpace(input.GuestEmail)
	if input.GuestEmail == "" && user == nil {
		inputErr.addError("guestEmail", "provide an email for the booking confirmation")
	} else if input.GuestEmail != "" {
		if _, err := mail.ParseAddress(input.GuestEmail); err != nil {
			inputErr.addError("guestEmail", "provide valid email")
		}
	}

	method, err := payment.ParseMethod(string(input.Payment.Method))
	if err != nil {
		inputErr.addError("payment.method", "choose card, wallet or cash")
	} else {
		input.Payment.Method = method

		if err := input.Payment.Validate(); err != nil {
			inputErr.addError("payment.card", "provide all card details")
		}
	}

	if inputErr.fieldsCount() > 0 {
		return catalog.Destination{}, inputErr
	}

	return dest, nil
}

func newConfirmation(id string, dest catalog.Destination, tier pricing.Tier, date string, travelers int) *Confirmation {
	breakdown := pricing.Calculate(tier, travelers)

	var packageName string
	if p, err := pricing.PackageFor(tier); err == nil {
		packageName = p.Name
	}

	return &Confirmation{
		BookingID:     id,
		Destination:   dest.Name,
		Country:       dest.Country,
		Date:          date,
		FormattedDate: FormatDate(date),
		Package:       tier,
		PackageName:   packageName,
		Travelers:     travelers,
		Total:         breakdown.Total,
		Breakdown:     breakdown,
		Guide:         catalog.GuideFor(dest.Name),
		CreatedAt:     time.Now().UTC(),
	}
}

// FormatDate renders 2025-06-01 as June 1, 2025. Unparsable input is
// returned unchanged.
func FormatDate(date string) string {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return date
	}

	return t.Format(displayDateLayout)
}

func (c *Confirmation) notification() notify.Booking {
	guide := c.Guide

	return notify.Booking{
		ID:          c.BookingID,
		Destination: c.Destination,
		Date:        c.FormattedDate,
		PackageType: c.Package.String(),
		Travelers:   c.Travelers,
		Total:       c.Total,
		Guide:       &guide,
	}
}

// send delivers one event and records it in the ledger. Delivery problems
// are logged and reported as false.
func (m *Manager) send(ctx context.Context, event notify.Event) (int, bool) {
	messageID, err := m.notifier.Notify(ctx, event)
	if err != nil {
		m.l.LogErrorf("Could not send %s for booking %s: %v", event.Kind, event.Booking.ID, err)

		return 0, false
	}

	count, err := m.storage.RecordEmail(ctx, event.Booking.ID)
	if err != nil {
		m.l.LogErrorf("Could not record email %s for booking %s: %v", messageID, event.Booking.ID, err)
	}

	trace.SpanFromContext(ctx).AddEvent("email sent")

	return count, true
}

// Checkout charges the draft through the payment stub, assigns a booking id
// and sends the payment confirmation. With an idempotency key in ctx a
// repeated call returns the first confirmation untouched.
//
//nolint:funlen,cyclop // it's linear simple code
func (m *Manager) Checkout(ctx context.Context, input *CheckoutInput) (*CheckoutResult, error) {
	span := trace.SpanFromContext(ctx)
	user := m.currentUser(ctx)

	dest, err := m.validateCheckout(input, user)
	if err != nil {
		return nil, err
	}

	idempotencyKey, keyed := IdempotencyKeyFromContext(ctx)
	if keyed {
		stored, err := m.claimIdempotencyKey(ctx)
		if err != nil {
			return nil, err
		}

		if stored != nil {
			m.l.LogInfo("Checkout %s replayed for idempotency key %s", stored.BookingID, idempotencyKey)
			span.AddEvent("checkout replayed")

			return &CheckoutResult{Confirmation: stored, Replayed: true}, nil
		}

		// no-op once the confirmation is committed
		defer func() {
			if err := m.storage.ReleaseIdempotencyKey(ctx); err != nil {
				m.l.LogErrorf("Could not release idempotency key %s: %v", idempotencyKey, err)
			}
		}()
	}

	draft := NewDraft(dest.Name)
	if err := draft.Select(input.Package, input.Date, input.Travelers); err != nil {
		return nil, fmt.Errorf("select draft: %w", err)
	}

	if err := draft.Submit(); err != nil {
		return nil, fmt.Errorf("submit draft: %w", err)
	}

	span.AddEvent("payment started")

	quote := draft.Quote()

	ok, err := m.payments.Process(ctx, payment.Request{
		Method:   input.Payment.Method,
		Amount:   quote.Total,
		Currency: currency,
		Card:     input.Payment.Card,
	})
	if err != nil || !ok {
		if failErr := draft.Fail(); failErr != nil {
			return nil, fmt.Errorf("fail draft: %w", failErr)
		}

		m.l.LogWarnf("Payment for %s failed: ok %v, err %v", dest.Name, ok, err)

		return nil, newPaymentError(draft, err)
	}

	if err := draft.Confirm(); err != nil {
		return nil, fmt.Errorf("confirm draft: %w", err)
	}

	id, err := m.idGenerator.GetID(ctx)
	if err != nil {
		return nil, ErrNextID
	}

	confirmation := newConfirmation(id, dest, draft.Package, draft.Date, draft.Travelers)
	confirmation.GuestEmail = input.GuestEmail

	if recipient := resolveRecipient(input.GuestEmail, user); recipient != "" {
		_, confirmation.EmailSent = m.send(ctx, notify.NewPaymentConfirmation(recipient, confirmation.notification()))
	}

	m.l.LogInfo("Booking %s confirmed: %s, %s, %d travelers, total %d", id, dest.Name, draft.Date, draft.Travelers, quote.Total)

	if keyed {
		// the payment already went through, so the caller gets the
		// confirmation even when it cannot be remembered
		if err := m.remember(ctx, confirmation); err != nil {
			m.l.LogErrorf("Could not store confirmation %s: %v", id, err)
		}
	}

	return &CheckoutResult{Confirmation: confirmation, Replayed: false}, nil
}

// claimIdempotencyKey returns the confirmation already bound to the key in
// ctx. Otherwise it claims the key so that only one checkout charges for it.
func (m *Manager) claimIdempotencyKey(ctx context.Context) (*Confirmation, error) {
	stored, err := m.storedConfirmation(ctx)
	if stored != nil || err != nil {
		return stored, err
	}

	claimed, err := m.storage.ReserveIdempotencyKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("reserve idempotency key: %w", err)
	}

	if claimed {
		return nil, nil //nolint:nilnil
	}

	stored, err = m.storedConfirmation(ctx)
	if stored != nil || err != nil {
		return stored, err
	}

	return nil, ErrCheckoutInProgress
}

func (m *Manager) storedConfirmation(ctx context.Context) (*Confirmation, error) {
	stored, err := m.storage.GetConfirmationByIdempotencyKey(ctx)
	if errors.Is(err, ErrRecordNotFound) {
		return nil, nil //nolint:nilnil
	}

	if err != nil {
		return nil, fmt.Errorf("get confirmation by idempotency key: %w", err)
	}

	return stored, nil
}

func (m *Manager) remember(ctx context.Context, confirmation *Confirmation) (err error) {
	ctx, err = m.storage.BeginTransaction(ctx, "READ COMMITTED")
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			if err = m.storage.RollbackTransaction(ctx); err != nil {
				m.l.LogErrorf("Could not rollback checkout transaction after panic %v", p)
			}

			m.l.LogInfo("Transaction has been roll backed after panic")

			panic(p)
		}

		if err != nil {
			if rbErr := m.storage.RollbackTransaction(ctx); rbErr != nil {
				m.l.LogErrorf("Could not rollback checkout transaction after error %v", rbErr.Error())
			}

			m.l.LogInfo("Transaction has been roll backed after error")

			return
		}

		if err = m.storage.CommitTransaction(ctx); err != nil {
			m.l.LogErrorf("Could not commit checkout transaction, err %v", err.Error())
		}
	}()

	if err = m.storage.SaveConfirmation(ctx, confirmation); err != nil {
		return fmt.Errorf("save confirmation to storage: %w", err)
	}

	return nil
}

// View rebuilds the confirmation from its query and sends the booking
// confirmation when no email has gone out for this booking yet.
func (m *Manager) View(ctx context.Context, input *ViewInput) (*View, error) {
	view, err := m.buildView(ctx, input)
	if err != nil {
		return nil, err
	}

	unlock := m.viewLocks.lock(view.Confirmation.BookingID)
	defer unlock()

	sent, err := m.storage.EmailsSent(ctx, view.Confirmation.BookingID)
	if err != nil {
		return nil, fmt.Errorf("get sent emails for %s: %w", view.Confirmation.BookingID, err)
	}

	view.EmailsSent = sent

	if sent > 0 || view.Recipient == "" {
		return view, nil
	}

	count, ok := m.send(ctx, notify.NewBookingConfirmation(view.Recipient, view.Confirmation.notification()))
	if ok {
		view.EmailSent = true
		view.EmailsSent = count
	}

	return view, nil
}

// Resend always sends, however many emails went out before.
func (m *Manager) Resend(ctx context.Context, input *ViewInput) (*View, error) {
	view, err := m.buildView(ctx, input)
	if err != nil {
		return nil, err
	}

	if view.Recipient == "" {
		inputErr := newInputError()
		inputErr.addError("guestEmail", "no email address is known for this booking")

		return nil, inputErr
	}

	event := notify.NewBookingConfirmation(view.Recipient, view.Confirmation.notification())

	messageID, err := m.notifier.Notify(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("resend confirmation for %s: %w", view.Confirmation.BookingID, err)
	}

	count, err := m.storage.RecordEmail(ctx, view.Confirmation.BookingID)
	if err != nil {
		return nil, fmt.Errorf("record email %s: %w", messageID, err)
	}

	view.EmailSent = true
	view.EmailsSent = count

	return view, nil
}

func (m *Manager) buildView(ctx context.Context, input *ViewInput) (*View, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	dest, err := m.destinations.FindByName(input.Destination)
	if err != nil {
		dest = catalog.Destination{Name: input.Destination} //nolint:exhaustruct
	}

	confirmation := newConfirmation(input.BookingID, dest, input.Package, input.Date, input.Travelers)
	confirmation.GuestEmail = strings.TrimSpace(input.GuestEmail)

	if input.Total != 0 && input.Total != confirmation.Total {
		m.l.LogWarnf("Booking %s: total %d in query differs from computed %d", input.BookingID, input.Total, confirmation.Total)
	}

	//nolint:exhaustruct
	return &View{
		Confirmation: confirmation,
		Recipient:    resolveRecipient(input.GuestEmail, m.currentUser(ctx)),
	}, nil
}

// DashboardBookings lists the account bookings, optionally by status.
func (m *Manager) DashboardBookings(ctx context.Context, status string) ([]*DashboardBooking, error) {
	s, err := ParseDashboardStatus(strings.ToLower(strings.TrimSpace(status)))
	if err != nil {
		inputErr := newInputError()
		inputErr.addError("status", "status must be all, upcoming, completed or cancelled")

		return nil, inputErr
	}

	bookings, err := m.storage.GetDashboardBookings(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("get dashboard bookings: %w", err)
	}

	return bookings, nil
}
