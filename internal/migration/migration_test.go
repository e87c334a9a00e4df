package migration

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avstrong/afrotour/internal/booking"
	"github.com/avstrong/afrotour/internal/logger"
	"github.com/avstrong/afrotour/internal/storage/memory"
)

func TestUp_SeedsDashboardBookings(t *testing.T) {
	db := memory.New(memory.Config{L: logger.Discard()})

	require.NoError(t, Up(context.Background(), logger.Discard(), db))

	all, err := db.GetDashboardBookings(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Kigali, Rwanda", all[0].Destination)
	assert.Equal(t, "David Nkosi", all[2].Guide)

	upcoming, err := db.GetDashboardBookings(context.Background(), booking.StatusUpcoming)
	require.NoError(t, err)
	assert.Len(t, upcoming, 2)
}

type failingStorage struct {
	*memory.DB
	rolledBack bool
}

func (f *failingStorage) SaveDashboardBookings(context.Context, []*booking.DashboardBooking) error {
	return errors.New("disk full")
}

func (f *failingStorage) RollbackTransaction(ctx context.Context) error {
	f.rolledBack = true

	return f.DB.RollbackTransaction(ctx)
}

func TestUp_RollsBackOnError(t *testing.T) {
	s := &failingStorage{DB: memory.New(memory.Config{L: logger.Discard()})}

	require.Error(t, Up(context.Background(), logger.Discard(), s))
	assert.True(t, s.rolledBack)
}
