// Package tasks defines the background jobs exchanged between the API and
// the worker over Redis: order confirmation email delivery and payment
// intent expiry.
package tasks

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// Task type names.
const (
	TypeOrderCreated  = "order:created"
	TypePaymentExpire = "payment:expire"
)

// OrderCreatedPayload carries what the confirmation email needs.
type OrderCreatedPayload struct {
	OrderID  string `json:"orderId"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Total    int64  `json:"total"`
	Currency string `json:"currency"`
}

// PaymentExpirePayload identifies the order whose pending payment should be
// swept once the intent TTL elapses.
type PaymentExpirePayload struct {
	OrderID string `json:"orderId"`
}

// Enqueuer submits tasks to the queue. A nil Client disables enqueueing so
// the API keeps serving checkouts when the queue is down or unconfigured.
type Enqueuer struct {
	Client *asynq.Client
	Log    zerolog.Logger
}

// OrderCreated queues the confirmation email for a new order.
func (e *Enqueuer) OrderCreated(ctx context.Context, p OrderCreatedPayload) {
	if e == nil || e.Client == nil {
		return
	}
	payload, err := json.Marshal(p)
	if err != nil {
		e.Log.Error().Err(err).Msg("marshal order created task")
		return
	}
	task := asynq.NewTask(TypeOrderCreated, payload)
	if _, err := e.Client.EnqueueContext(ctx, task, asynq.MaxRetry(5)); err != nil {
		e.Log.Error().Err(err).Str("order_id", p.OrderID).Msg("enqueue order created task")
	}
}

// PaymentExpire schedules the pending-payment sweep after the given delay.
func (e *Enqueuer) PaymentExpire(ctx context.Context, p PaymentExpirePayload, delay time.Duration) {
	if e == nil || e.Client == nil {
		return
	}
	payload, err := json.Marshal(p)
	if err != nil {
		e.Log.Error().Err(err).Msg("marshal payment expire task")
		return
	}
	task := asynq.NewTask(TypePaymentExpire, payload)
	if _, err := e.Client.EnqueueContext(ctx, task, asynq.ProcessIn(delay), asynq.MaxRetry(3)); err != nil {
		e.Log.Error().Err(err).Str("order_id", p.OrderID).Msg("enqueue payment expire task")
	}
}
