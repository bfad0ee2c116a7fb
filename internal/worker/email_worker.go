package worker

// email_worker.go
// Processes order-confirmation email jobs from QueueOrderEmail.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"nexopos/internal/infra"

	"github.com/rs/zerolog/log"
)

// OrderEmailPayload is the job envelope sent to QueueOrderEmail.
type OrderEmailPayload struct {
	ToEmail       string `json:"to_email"`
	CustomerName  string `json:"customer_name"`
	OrderNumber   string `json:"order_number"`
	ShopName      string `json:"shop_name"`
	FinalTotal    string `json:"final_total"`
	ReservedUntil string `json:"reserved_until"`
}

// EmailWorker sends order confirmations via SMTP. Sends go through a
// circuit breaker so a dead relay fast-fails instead of blocking workers on
// SMTP timeouts.
type EmailWorker struct {
	mailer *infra.Mailer
	cb     *infra.CircuitBreaker
}

func NewEmailWorker(mailer *infra.Mailer, cb *infra.CircuitBreaker) *EmailWorker {
	return &EmailWorker{mailer: mailer, cb: cb}
}

// Process sends the confirmation email. Errors bubble up so the pool can
// retry and eventually dead-letter the job.
func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload OrderEmailPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return nil // malformed jobs are not retryable
	}
	if payload.ToEmail == "" {
		log.Warn().Str("order", payload.OrderNumber).Msg("email_worker: empty to_email, skipping")
		return nil
	}
	if w.mailer == nil {
		return errors.New("email_worker: no mailer configured")
	}

	subject := fmt.Sprintf("%s — order %s received", payload.ShopName, payload.OrderNumber)
	body := fmt.Sprintf(
		"Hi %s,\n\nwe received your order %s for a total of $%s.\n"+
			"Your items are reserved until %s. Please complete the payment before then.\n\n%s",
		payload.CustomerName, payload.OrderNumber, payload.FinalTotal,
		payload.ReservedUntil, payload.ShopName)

	send := func() error {
		return w.mailer.SendOrderConfirmation(payload.ToEmail, subject, body)
	}
	var err error
	if w.cb != nil {
		err = w.cb.Execute(send)
	} else {
		err = send()
	}
	if err != nil {
		log.Error().Err(err).Str("to", payload.ToEmail).Msg("email_worker: failed to send email")
		return err
	}
	log.Info().Str("to", payload.ToEmail).Str("order", payload.OrderNumber).Msg("email_worker: confirmation sent")
	return nil
}
