package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/avstrong/afrotour/internal/auth"
	"github.com/avstrong/afrotour/internal/booking"
	"github.com/avstrong/afrotour/internal/catalog"
	"github.com/avstrong/afrotour/internal/config"
	"github.com/avstrong/afrotour/internal/idgen/random"
	"github.com/avstrong/afrotour/internal/logger"
	"github.com/avstrong/afrotour/internal/migration"
	"github.com/avstrong/afrotour/internal/notify"
	"github.com/avstrong/afrotour/internal/payment"
	"github.com/avstrong/afrotour/internal/storage/memory"
	"github.com/avstrong/afrotour/internal/transport/web"
)

// identityProvider falls back to the mock when the provider is not
// configured. The config loader has already warned about it.
func identityProvider(cfg *config.Config) auth.IdentityProvider {
	if cfg.MockAuth() {
		return auth.NewMockProvider()
	}

	//nolint:exhaustruct
	return auth.NewRemoteProvider(auth.RemoteConf{
		URL:    cfg.AuthProviderURL,
		APIKey: cfg.AuthProviderKey,
	})
}

func Run(l *logger.Logger) error {
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGHUP,
	)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	for _, w := range cfg.Warnings {
		l.LogWarnf("%s", w)
	}

	storage := memory.New(memory.Config{L: l})
	if err := migration.Up(ctx, l, storage); err != nil {
		return fmt.Errorf("up demo migration: %w", err)
	}

	l.LogInfo("Demo migration has been applied")

	destinations := catalog.Default()
	gateway := auth.NewGateway(l, identityProvider(cfg), storage)

	bookManager := booking.New(booking.Conf{
		L:           l,
		Storage:     storage,
		IDGenerator: random.New(),
		Payments:    payment.NewStub(l, cfg.PaymentDelay),
		Notifier: notify.NewEmailStub(notify.EmailStubConfig{
			L:                 l,
			BookingDelay:      cfg.EmailDelay,
			PaymentEmailDelay: cfg.PaymentEmailDelay,
		}),
		Users:        gateway,
		Destinations: destinations,
	})

	webConf := web.Conf{
		L:                 l,
		ServerLogger:      log.Default(),
		Host:              cfg.Host,
		Port:              cfg.Port,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		LivenessEndpoint:  cfg.LivenessEndpoint,
		AllowedOrigins:    cfg.AllowedOrigins,
		AuthRateRPS:       cfg.AuthRateRPS,
		AuthRateBurst:     cfg.AuthRateBurst,
	}

	srv, err := web.New(ctx, webConf, web.Deps{
		Bookings: bookManager,
		Catalog:  destinations,
		Auth:     gateway,
		Tokens:   auth.NewTokenIssuer(cfg.SessionSecret, cfg.SessionTTL),
	})
	if err != nil {
		return fmt.Errorf("init http server: %w", err)
	}

	//nolint:contextcheck
	go func() {
		<-ctx.Done()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second*4) //nolint:gomnd
		defer cancel()

		if err := srv.Srv().Shutdown(ctx); err != nil {
			l.LogErrorf("Failed to stop http server: %v", err.Error())
		}
	}()

	l.LogInfo("Application is running on %v:%v...", webConf.Host, webConf.Port)

	if err := srv.Srv().ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		l.LogErrorf("Failed to run http server: %v", err.Error())

		cancel()
	}

	l.LogInfo("Application stopped gracefully")

	return nil
}
