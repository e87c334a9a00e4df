package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/avstrong/afrotour/internal/auth"
	"github.com/avstrong/afrotour/internal/booking"
	"github.com/avstrong/afrotour/internal/logger"
)

const defaultLedgerTTL = 24 * time.Hour

type Config struct {
	L *logger.Logger
	// LedgerTTL is how long an email count outlives the last email sent for
	// its booking. Zero means one day.
	LedgerTTL time.Duration
	Now       func() time.Time
}

type transaction struct {
	id                        string
	confirmationModifications map[string]*booking.Confirmation
	dashboardModifications    map[string]*booking.DashboardBooking
}

type ledgerEntry struct {
	sent     int
	lastSent time.Time
}

// DB keeps everything in process memory. Nothing survives a restart.
type DB struct {
	mu                          sync.Mutex
	l                           *logger.Logger
	now                         func() time.Time
	ledgerTTL                   time.Duration
	ledgerPrunedAt              time.Time
	confirmationIdempotencyKeys map[string]*booking.Confirmation
	reservedIdempotencyKeys     map[string]struct{}
	emailLedger                 map[string]ledgerEntry
	dashboardBookings           map[string]*booking.DashboardBooking
	sessions                    map[string]auth.Session
	transactions                map[string]*transaction
	nextTrxID                   int64
}

func New(conf Config) *DB {
	now := conf.Now
	if now == nil {
		now = time.Now
	}

	ttl := conf.LedgerTTL
	if ttl <= 0 {
		ttl = defaultLedgerTTL
	}

	//nolint:exhaustruct
	return &DB{
		l:                           conf.L,
		now:                         now,
		ledgerTTL:                   ttl,
		ledgerPrunedAt:              now(),
		confirmationIdempotencyKeys: make(map[string]*booking.Confirmation),
		reservedIdempotencyKeys:     make(map[string]struct{}),
		emailLedger:                 make(map[string]ledgerEntry),
		dashboardBookings:           make(map[string]*booking.DashboardBooking),
		sessions:                    make(map[string]auth.Session),
		transactions:                make(map[string]*transaction),
	}
}

func (db *DB) BeginTransaction(ctx context.Context, _ string) (context.Context, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	trxID := fmt.Sprintf("trx-%d", db.nextTrxID)
	db.nextTrxID++

	db.transactions[trxID] = &transaction{
		id:                        trxID,
		confirmationModifications: make(map[string]*booking.Confirmation),
		dashboardModifications:    make(map[string]*booking.DashboardBooking),
	}

	return withTransactionID(ctx, trxID), nil
}

// trx must be called with db.mu held.
func (db *DB) trx(ctx context.Context) (*transaction, error) {
	trxID, ok := transactionIDFromContext(ctx)
	if !ok {
		return nil, ErrTransactionIDNotFoundInCtx
	}

	trx, exists := db.transactions[trxID]
	if !exists {
		return nil, fmt.Errorf("transaction %s not found: %w", trxID, ErrTransactionNotFound)
	}

	return trx, nil
}

// CommitTransaction applies staged writes. Saved confirmations are bound to
// the idempotency key in ctx, so a transaction holding any needs one.
func (db *DB) CommitTransaction(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	trx, err := db.trx(ctx)
	if err != nil {
		return err
	}

	if len(trx.confirmationModifications) > 0 {
		idempotencyKey, ok := booking.IdempotencyKeyFromContext(ctx)
		if !ok {
			return booking.ErrIdempotencyKey
		}

		for _, c := range trx.confirmationModifications {
			db.confirmationIdempotencyKeys[idempotencyKey] = c
		}

		delete(db.reservedIdempotencyKeys, idempotencyKey)
	}

	for id, b := range trx.dashboardModifications {
		db.dashboardBookings[id] = b
	}

	delete(db.transactions, trx.id)

	return nil
}

// RollbackTransaction drops the staged writes. Nothing was applied before
// commit, so there is nothing to undo.
func (db *DB) RollbackTransaction(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	trx, err := db.trx(ctx)
	if err != nil {
		return err
	}

	delete(db.transactions, trx.id)

	return nil
}

func (db *DB) SaveConfirmation(ctx context.Context, confirmation *booking.Confirmation) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	trx, err := db.trx(ctx)
	if err != nil {
		return err
	}

	if _, ok := trx.confirmationModifications[confirmation.BookingID]; ok {
		return nil
	}

	c := *confirmation
	trx.confirmationModifications[c.BookingID] = &c

	return nil
}

func (db *DB) GetConfirmationByIdempotencyKey(ctx context.Context) (*booking.Confirmation, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	key, ok := booking.IdempotencyKeyFromContext(ctx)
	if !ok {
		return nil, booking.ErrIdempotencyKey
	}

	c, exists := db.confirmationIdempotencyKeys[key]
	if !exists {
		return nil, booking.ErrRecordNotFound
	}

	out := *c

	return &out, nil
}

// ReserveIdempotencyKey claims the key in ctx for one checkout in flight. It
// reports false when the key is already claimed or already bound to a
// confirmation.
func (db *DB) ReserveIdempotencyKey(ctx context.Context) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	key, ok := booking.IdempotencyKeyFromContext(ctx)
	if !ok {
		return false, booking.ErrIdempotencyKey
	}

	if _, bound := db.confirmationIdempotencyKeys[key]; bound {
		return false, nil
	}

	if _, reserved := db.reservedIdempotencyKeys[key]; reserved {
		return false, nil
	}

	db.reservedIdempotencyKeys[key] = struct{}{}

	return true, nil
}

// ReleaseIdempotencyKey gives up a claim that never reached commit.
func (db *DB) ReleaseIdempotencyKey(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	key, ok := booking.IdempotencyKeyFromContext(ctx)
	if !ok {
		return booking.ErrIdempotencyKey
	}

	delete(db.reservedIdempotencyKeys, key)

	return nil
}

// RecordEmail counts one more delivered email for a booking.
func (db *DB) RecordEmail(_ context.Context, bookingID string) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	now := db.now()
	db.pruneLedger(now)

	entry := db.emailLedger[bookingID]
	if db.expired(entry, now) {
		entry = ledgerEntry{}
	}

	entry.sent++
	entry.lastSent = now
	db.emailLedger[bookingID] = entry

	return entry.sent, nil
}

func (db *DB) EmailsSent(_ context.Context, bookingID string) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	entry, ok := db.emailLedger[bookingID]
	if !ok || db.expired(entry, db.now()) {
		return 0, nil
	}

	return entry.sent, nil
}

func (db *DB) expired(entry ledgerEntry, now time.Time) bool {
	return now.Sub(entry.lastSent) >= db.ledgerTTL
}

// pruneLedger sweeps expired entries at most once per TTL. Must be called
// with db.mu held.
func (db *DB) pruneLedger(now time.Time) {
	if now.Sub(db.ledgerPrunedAt) < db.ledgerTTL {
		return
	}

	for id, entry := range db.emailLedger {
		if db.expired(entry, now) {
			delete(db.emailLedger, id)
		}
	}

	db.ledgerPrunedAt = now
}

func (db *DB) SaveDashboardBookings(ctx context.Context, bookings []*booking.DashboardBooking) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	trx, err := db.trx(ctx)
	if err != nil {
		return err
	}

	for _, b := range bookings {
		if _, ok := trx.dashboardModifications[b.ID]; ok {
			continue
		}

		stored := *b
		trx.dashboardModifications[b.ID] = &stored
	}

	return nil
}

// GetDashboardBookings returns bookings ordered by id. An empty status
// matches all of them.
func (db *DB) GetDashboardBookings(_ context.Context, status booking.DashboardStatus) ([]*booking.DashboardBooking, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := make([]*booking.DashboardBooking, 0, len(db.dashboardBookings))

	for _, b := range db.dashboardBookings {
		if status != "" && b.Status != status {
			continue
		}

		out := *b
		result = append(result, &out)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result, nil
}

func (db *DB) SaveSession(_ context.Context, s *auth.Session) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	stored := *s
	if s.User != nil {
		u := *s.User
		stored.User = &u
	}

	db.sessions[s.ID] = stored

	return nil
}

func (db *DB) GetSession(_ context.Context, id string) (*auth.Session, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	s, ok := db.sessions[id]
	if !ok {
		return nil, auth.ErrSessionNotFound
	}

	if s.User != nil {
		u := *s.User
		s.User = &u
	}

	return &s, nil
}

func (db *DB) DeleteSession(_ context.Context, id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.sessions[id]; !ok {
		return auth.ErrSessionNotFound
	}

	delete(db.sessions, id)

	return nil
}
