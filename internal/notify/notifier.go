// Package notify decouples domain services from the notification queue.
// Dispatch is fire-and-forget: a slow or failing channel never blocks or
// fails the caller-visible operation.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/meridian-agro/meridian/jobs"
)

// Notifier is the outbound notification port consumed by domain services.
type Notifier interface {
	RFQSubmitted(ctx context.Context, payload jobs.RFQSubmittedPayload)
	OrderConfirmed(ctx context.Context, payload jobs.OrderConfirmedPayload)
}

// Queue enqueues notification tasks on Asynq. Enqueue failures are
// logged, never returned.
type Queue struct {
	client *jobs.Client
	logger *slog.Logger
}

// NewQueue returns an Asynq-backed Notifier.
func NewQueue(client *jobs.Client, logger *slog.Logger) *Queue {
	return &Queue{client: client, logger: logger}
}

// RFQSubmitted enqueues the staff notification for a new RFQ.
func (q *Queue) RFQSubmitted(ctx context.Context, payload jobs.RFQSubmittedPayload) {
	task, err := jobs.NewRFQSubmittedTask(payload)
	if err != nil {
		q.logger.Warn("build rfq notification", slog.Any("error", err))
		return
	}
	q.enqueue(ctx, task, payload.RFQNo)
}

// OrderConfirmed enqueues the buyer notification for a confirmed order.
func (q *Queue) OrderConfirmed(ctx context.Context, payload jobs.OrderConfirmedPayload) {
	task, err := jobs.NewOrderConfirmedTask(payload)
	if err != nil {
		q.logger.Warn("build order notification", slog.Any("error", err))
		return
	}
	q.enqueue(ctx, task, payload.OrderNo)
}

func (q *Queue) enqueue(ctx context.Context, task *asynq.Task, ref string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := q.client.Enqueue(ctx, task); err != nil {
		q.logger.Warn("notification enqueue failed", slog.String("ref", ref), slog.Any("error", err))
	}
}

// Nop is a Notifier that does nothing. Used in tests and when the queue
// is not configured.
type Nop struct{}

// RFQSubmitted implements Notifier.
func (Nop) RFQSubmitted(context.Context, jobs.RFQSubmittedPayload) {}

// OrderConfirmed implements Notifier.
func (Nop) OrderConfirmed(context.Context, jobs.OrderConfirmedPayload) {}
