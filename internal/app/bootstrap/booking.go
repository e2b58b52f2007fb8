package bootstrap

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/salon-booking/internal/booking"
	"github.com/wolfman30/salon-booking/internal/catalog"
	appconfig "github.com/wolfman30/salon-booking/internal/config"
	"github.com/wolfman30/salon-booking/internal/notify"
	"github.com/wolfman30/salon-booking/internal/scheduling"
	"github.com/wolfman30/salon-booking/internal/wizard"
	"github.com/wolfman30/salon-booking/pkg/logging"
)

// BuildCatalog returns the Postgres catalog when db is set, otherwise the
// built-in demo catalog.
func BuildCatalog(db *pgxpool.Pool, logger *logging.Logger) catalog.Repository {
	if db == nil {
		if logger != nil {
			logger.Warn("DATABASE_URL not set, serving demo catalog")
		}
		return catalog.NewDemoRepository()
	}
	return catalog.NewPostgresRepository(db)
}

// BuildSessionStore keeps sessions in Redis when a client is available so
// several API instances can serve the same visitor.
func BuildSessionStore(client *redis.Client, cfg *appconfig.Config) wizard.Store {
	if client == nil {
		return wizard.NewMemoryStore(cfg.SessionTTL)
	}
	return wizard.NewRedisStore(client, cfg.SessionTTL)
}

// BuildSubmitGuard returns a Redis lock shared across instances, or an
// in-process guard when Redis is disabled.
func BuildSubmitGuard(client *redis.Client, cfg *appconfig.Config, logger *logging.Logger) booking.Guard {
	if client == nil {
		return booking.NewLocalGuard()
	}
	return wizard.NewRedisGuard(client, cfg.SubmitLockTTL, logger)
}

// BuildEmailSender picks the provider named by EMAIL_PROVIDER. With no
// provider named, SendGrid is used when an API key is present and the stub
// otherwise. sesClient is only consulted for "ses".
func BuildEmailSender(cfg *appconfig.Config, sesClient notify.SESAPI, logger *logging.Logger) (notify.EmailSender, error) {
	if logger == nil {
		logger = logging.Default()
	}
	provider := cfg.EmailProvider
	if provider == "" && cfg.SendGridAPIKey != "" {
		provider = "sendgrid"
	}

	switch provider {
	case "sendgrid":
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
		if sender == nil {
			return nil, fmt.Errorf("bootstrap: EMAIL_PROVIDER=sendgrid requires SENDGRID_API_KEY")
		}
		return sender, nil
	case "ses":
		if sesClient == nil {
			return nil, fmt.Errorf("bootstrap: EMAIL_PROVIDER=ses requires an SES client")
		}
		if strings.TrimSpace(cfg.SESFromEmail) == "" {
			return nil, fmt.Errorf("bootstrap: EMAIL_PROVIDER=ses requires SES_FROM_EMAIL")
		}
		return notify.NewSESSender(sesClient, notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger), nil
	case "", "stub", "none":
		return notify.NewStubEmailSender(logger), nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown EMAIL_PROVIDER %q", provider)
	}
}

// BuildAdapter returns the booking platform adapter named by BOOKING_ADAPTER.
func BuildAdapter(cfg *appconfig.Config, email notify.EmailSender, logger *logging.Logger) (booking.Adapter, error) {
	switch cfg.BookingAdapter {
	case "", "scheduling":
		if strings.TrimSpace(cfg.SchedulingBaseURL) == "" {
			return nil, fmt.Errorf("bootstrap: BOOKING_ADAPTER=scheduling requires SCHEDULING_BASE_URL")
		}
		client := scheduling.NewClient(scheduling.Config{
			BaseURL:    cfg.SchedulingBaseURL,
			APIKey:     cfg.SchedulingAPIKey,
			BusinessID: cfg.SchedulingBusinessID,
			Timeout:    cfg.SchedulingTimeout,
		}, logger)
		return scheduling.NewAdapter(client, logger), nil
	case "manual":
		if strings.TrimSpace(cfg.SalonNotifyEmail) == "" {
			return nil, fmt.Errorf("bootstrap: BOOKING_ADAPTER=manual requires SALON_NOTIFY_EMAIL")
		}
		return booking.NewManualHandoffAdapter(notify.NewHandoffSender(email), booking.ManualHandoffConfig{
			SalonName: cfg.SalonName,
			Email:     cfg.SalonNotifyEmail,
		}, logger), nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown BOOKING_ADAPTER %q", cfg.BookingAdapter)
	}
}
