package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeRFQSubmitted notifies staff of a new buyer quote request.
	TaskTypeRFQSubmitted = "notify:rfq_submitted"
	// TaskTypeOrderConfirmed notifies the buyer that their order was confirmed.
	TaskTypeOrderConfirmed = "notify:order_confirmed"
)

// RFQSubmittedPayload describes a new RFQ for the staff notification.
type RFQSubmittedPayload struct {
	RFQID       string `json:"rfq_id"`
	RFQNo       string `json:"rfq_no"`
	CompanyName string `json:"company_name"`
	Email       string `json:"email"`
	Destination string `json:"destination_country"`
	LineCount   int    `json:"line_count"`
}

// OrderConfirmedPayload describes a confirmed order for the buyer notification.
type OrderConfirmedPayload struct {
	OrderID       string  `json:"order_id"`
	OrderNo       string  `json:"order_no"`
	CustomerEmail string  `json:"customer_email"`
	TotalAmount   float64 `json:"total_amount"`
	Currency      string  `json:"currency"`
}

// NewRFQSubmittedTask constructs an Asynq task for staff notification.
func NewRFQSubmittedTask(payload RFQSubmittedPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeRFQSubmitted, data), nil
}

// NewOrderConfirmedTask constructs an Asynq task for buyer notification.
func NewOrderConfirmedTask(payload OrderConfirmedPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeOrderConfirmed, data), nil
}

// Mailer delivers rendered notifications. The SMTP implementation lives
// outside this core; the worker only needs the send contract.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// HandleRFQSubmittedTask processes TaskTypeRFQSubmitted tasks.
func HandleRFQSubmittedTask(logger *slog.Logger, mailer Mailer, staffInbox string) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload RFQSubmittedPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		subject := fmt.Sprintf("New RFQ %s from %s", payload.RFQNo, payload.CompanyName)
		body := fmt.Sprintf("RFQ %s: %d line item(s), destination %s, contact %s",
			payload.RFQNo, payload.LineCount, payload.Destination, payload.Email)
		if err := mailer.Send(ctx, staffInbox, subject, body); err != nil {
			logger.Warn("rfq notification send failed", slog.String("rfq_no", payload.RFQNo), slog.Any("error", err))
			return err
		}
		return nil
	}
}

// HandleOrderConfirmedTask processes TaskTypeOrderConfirmed tasks.
func HandleOrderConfirmedTask(logger *slog.Logger, mailer Mailer) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload OrderConfirmedPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if payload.CustomerEmail == "" {
			return nil
		}
		subject := fmt.Sprintf("Order %s confirmed", payload.OrderNo)
		body := fmt.Sprintf("Your order %s totalling %.2f %s has been confirmed.",
			payload.OrderNo, payload.TotalAmount, payload.Currency)
		if err := mailer.Send(ctx, payload.CustomerEmail, subject, body); err != nil {
			logger.Warn("order notification send failed", slog.String("order_no", payload.OrderNo), slog.Any("error", err))
			return err
		}
		return nil
	}
}

// LogMailer is the default Mailer used until an SMTP relay is wired in.
// It records the outbound message and reports success.
type LogMailer struct {
	Logger *slog.Logger
}

// Send implements Mailer.
func (m LogMailer) Send(_ context.Context, to, subject, _ string) error {
	m.Logger.Info("outbound notification", slog.String("to", to), slog.String("subject", subject))
	return nil
}
