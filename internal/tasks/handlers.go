package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/noven-dev/backend-wholesale/internal/common"
	"github.com/noven-dev/backend-wholesale/internal/db"
	"github.com/noven-dev/backend-wholesale/internal/promo"
)

// Handler processes queued tasks on the worker.
type Handler struct {
	Q     *db.Store
	Email common.EmailSender
	Log   zerolog.Logger
}

// Register attaches the task handlers to the mux.
func (h *Handler) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeOrderCreated, h.HandleOrderCreated)
	mux.HandleFunc(TypePaymentExpire, h.HandlePaymentExpire)
}

// HandleOrderCreated sends the order confirmation email.
func (h *Handler) HandleOrderCreated(ctx context.Context, t *asynq.Task) error {
	var p OrderCreatedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("decode order created payload: %w", err)
	}
	if h.Email == nil || p.Email == "" {
		h.Log.Warn().Str("order_id", p.OrderID).Msg("no email sender configured, skipping confirmation")
		return nil
	}
	subject := fmt.Sprintf("Order confirmation %s", p.OrderID)
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>We received your order <strong>%s</strong> for %s %s. We will email again once payment is confirmed.</p>",
		p.Name, p.OrderID, p.Currency, promo.FormatMoney(p.Total),
	)
	if err := h.Email.Send(p.Email, subject, body); err != nil {
		return fmt.Errorf("send confirmation email: %w", err)
	}
	h.Log.Info().Str("order_id", p.OrderID).Msg("order confirmation sent")
	return nil
}

// HandlePaymentExpire marks a still-pending payment as expired and cancels
// the order. Orders that were paid in the meantime are left alone.
func (h *Handler) HandlePaymentExpire(ctx context.Context, t *asynq.Task) error {
	var p PaymentExpirePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("decode payment expire payload: %w", err)
	}
	if h.Q == nil {
		return errors.New("task handler store not configured")
	}
	orderID, err := db.ToUUID(p.OrderID)
	if err != nil {
		return fmt.Errorf("parse order id: %w", err)
	}
	payment, err := h.Q.GetLatestPaymentByOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}
	if payment.Status != db.PaymentStatusPending {
		return nil
	}
	if err := h.Q.UpdatePaymentStatus(ctx, payment.ID, db.PaymentStatusExpired); err != nil {
		return err
	}
	if err := h.Q.UpdateOrderStatus(ctx, orderID, db.OrderStatusCancelled); err != nil {
		return err
	}
	h.Log.Info().Str("order_id", p.OrderID).Msg("pending payment expired, order cancelled")
	return nil
}
