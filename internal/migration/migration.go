package migration

import (
	"context"
	"fmt"

	"github.com/avstrong/afrotour/internal/booking"
	"github.com/avstrong/afrotour/internal/logger"
)

type storage interface {
	BeginTransaction(ctx context.Context, level string) (context.Context, error)
	CommitTransaction(ctx context.Context) error
	RollbackTransaction(ctx context.Context) error
	SaveDashboardBookings(ctx context.Context, bookings []*booking.DashboardBooking) error
}

// DemoBookings are shown on every account dashboard.
func DemoBookings() []*booking.DashboardBooking {
	return []*booking.DashboardBooking{
		{
			ID:          "1",
			Destination: "Kigali, Rwanda",
			Date:        "2025-04-15",
			Status:      booking.StatusUpcoming,
			Guests:      2,
			Duration:    "5 days",
			Image:       "/images/kigali.jpg",
			Price:       1200,
			Guide:       "John Mutabazi",
		},
		{
			ID:          "2",
			Destination: "Lagos, Nigeria",
			Date:        "2025-05-20",
			Status:      booking.StatusUpcoming,
			Guests:      1,
			Duration:    "7 days",
			Image:       "/images/lagos.jpg",
			Price:       1500,
			Guide:       "Chioma Okafor",
		},
		{
			ID:          "3",
			Destination: "Cape Town, South Africa",
			Date:        "2024-12-10",
			Status:      booking.StatusCompleted,
			Guests:      3,
			Duration:    "10 days",
			Image:       "/images/cape-town.jpg",
			Price:       2200,
			Guide:       "David Nkosi",
		},
	}
}

func Up(ctx context.Context, l *logger.Logger, storage storage) (err error) {
	ctx, err = storage.BeginTransaction(ctx, "")
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			if err = storage.RollbackTransaction(ctx); err != nil {
				l.LogErrorf("Could not rollback migration transaction after panic %v", p)
			}

			l.LogInfo("Migration transaction has been roll backed after panic")

			panic(p)
		}

		if err != nil {
			if rbErr := storage.RollbackTransaction(ctx); rbErr != nil {
				l.LogErrorf("Could not rollback migration transaction after error %v", rbErr.Error())
			}

			l.LogInfo("Migration transaction has been roll backed after error")

			return
		}

		if err = storage.CommitTransaction(ctx); err != nil {
			l.LogErrorf("Could not commit migration transaction, err %v", err.Error())
		}

		l.LogInfo("Migration transaction has been committed")
	}()

	if err = storage.SaveDashboardBookings(ctx, DemoBookings()); err != nil {
		return fmt.Errorf("save dashboard bookings to storage: %w", err)
	}

	return nil
}
