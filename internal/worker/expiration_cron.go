package worker

// expiration_cron.go
// Background goroutine that periodically releases the stock held by PENDING
// web orders whose reservation window has lapsed.

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// OrderExpirer is implemented by the web-order service. Declared here so the
// cron does not depend on the service package.
type OrderExpirer interface {
	ExpireOverdueOrders(ctx context.Context) (int, error)
}

// StartExpirationCron launches a goroutine that ticks every interval and
// expires overdue orders. It respects the context for graceful shutdown.
// A non-positive interval falls back to one minute.
func StartExpirationCron(ctx context.Context, expirer OrderExpirer, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Info().Dur("interval", interval).Msg("expiration_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("expiration_cron: shutting down")
				return
			case <-ticker.C:
				expired, err := expirer.ExpireOverdueOrders(ctx)
				if err != nil {
					log.Error().Err(err).Msg("expiration_cron: sweep failed")
					continue
				}
				if expired > 0 {
					log.Info().Int("expired", expired).Msg("expiration_cron: orders expired")
				}
			}
		}
	}()
}
