// Package payment opens card intents against the authoritative order total
// and settles orders from provider confirmations. The amount charged is
// always the server-recomputed total stored on the order; any amount a
// client submits is checked against it and logged when it disagrees.
// Confirmations must present the token issued with the intent before any
// payment or order status changes.
package payment

import (
	"context"
	"crypto/hmac"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/noven-dev/backend-wholesale/internal/db"
	"github.com/noven-dev/backend-wholesale/internal/obs"
	"github.com/noven-dev/backend-wholesale/internal/tasks"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("order not found")
	ErrAlreadyPaid      = errors.New("order already paid")
	ErrNotPayable       = errors.New("order not awaiting payment")
	ErrInvalidSignature = errors.New("confirmation token rejected")
)

type queryProvider interface {
	GetOrderByID(ctx context.Context, id pgtype.UUID) (db.Order, error)
	GetLatestPaymentByOrder(ctx context.Context, orderID pgtype.UUID) (db.Payment, error)
	CreatePayment(ctx context.Context, arg db.CreatePaymentParams) (db.Payment, error)
	UpdatePaymentStatus(ctx context.Context, id pgtype.UUID, status string) error
	UpdateOrderStatus(ctx context.Context, id pgtype.UUID, status string) error
}

// Service coordinates payment intents and settlement.
type Service struct {
	Q               queryProvider
	Provider        Provider
	Log             zerolog.Logger
	IntentTTL       time.Duration
	CallbackBaseURL string
	Tasks           *tasks.Enqueuer
	Now             func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) ttl() time.Duration {
	if s.IntentTTL > 0 {
		return s.IntentTTL
	}
	return 15 * time.Minute
}

// CreateIntent opens a payment intent for the order, reusing a pending
// unexpired one when present. clientAmount is advisory: the intent is always
// opened for the order's stored total, and a disagreement is logged.
func (s *Service) CreateIntent(ctx context.Context, orderID string, clientAmount int64) (db.Payment, error) {
	var zero db.Payment
	if s == nil || s.Q == nil || s.Provider == nil {
		return zero, errors.New("payment service not configured")
	}
	ctx, span := otel.Tracer("payment.Service").Start(ctx, "PaymentService.CreateIntent")
	defer span.End()

	providerName := providerLabel(s.Provider)
	result := "error"
	defer func() {
		span.SetAttributes(
			attribute.String("payment.provider", providerName),
			attribute.String("payment.intent.result", result),
		)
		if obs.PaymentIntentTotal != nil {
			obs.PaymentIntentTotal.WithLabelValues(providerName, result).Inc()
		}
	}()

	orderUUID, err := db.ToUUID(orderID)
	if err != nil {
		return zero, fmt.Errorf("%w: invalid order id: %v", ErrInvalidInput, err)
	}
	span.SetAttributes(attribute.String("order.id", orderID))

	order, err := s.Q.GetOrderByID(ctx, orderUUID)
	if errors.Is(err, pgx.ErrNoRows) {
		return zero, ErrNotFound
	}
	if err != nil {
		return zero, err
	}
	switch order.Status {
	case db.OrderStatusPendingPayment:
	case db.OrderStatusPaid:
		return zero, ErrAlreadyPaid
	default:
		return zero, ErrNotPayable
	}
	if clientAmount > 0 && clientAmount != order.PricingTotal {
		s.Log.Warn().
			Str("order_id", orderID).
			Int64("client_amount", clientAmount).
			Int64("server_amount", order.PricingTotal).
			Msg("client amount disagrees with stored order total")
		if obs.PricingMismatchTotal != nil {
			obs.PricingMismatchTotal.WithLabelValues("payment").Inc()
		}
	}

	existing, err := s.Q.GetLatestPaymentByOrder(ctx, orderUUID)
	if err == nil {
		if existing.Status == db.PaymentStatusPaid {
			return zero, ErrAlreadyPaid
		}
		if existing.Status == db.PaymentStatusPending &&
			(!existing.ExpiresAt.Valid || existing.ExpiresAt.Time.After(s.now())) {
			if existing.Provider.Valid {
				providerName = existing.Provider.String
			}
			result = "reused"
			return existing, nil
		}
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return zero, err
	}

	resp, err := s.Provider.CreateIntent(ctx, IntentRequest{
		OrderID:         orderID,
		Amount:          order.PricingTotal,
		Currency:        order.Currency,
		ExpiresAtSec:    int(s.ttl().Seconds()),
		CallbackBaseURL: s.CallbackBaseURL,
	})
	if err != nil {
		span.RecordError(err)
		return zero, err
	}
	if resp.Provider != "" {
		providerName = resp.Provider
	}

	expiresAt := pgtype.Timestamptz{Time: s.now().Add(s.ttl()), Valid: true}
	if resp.ExpiresAt > 0 {
		expiresAt.Time = time.Unix(resp.ExpiresAt, 0)
	}
	payment, err := s.Q.CreatePayment(ctx, db.CreatePaymentParams{
		OrderID:     orderUUID,
		Provider:    pgtype.Text{String: providerName, Valid: providerName != ""},
		Status:      db.PaymentStatusPending,
		Amount:      order.PricingTotal,
		IntentToken: pgtype.Text{String: resp.Token, Valid: strings.TrimSpace(resp.Token) != ""},
		RedirectURL: pgtype.Text{String: resp.RedirectURL, Valid: strings.TrimSpace(resp.RedirectURL) != ""},
		ExpiresAt:   expiresAt,
	})
	if err != nil {
		return zero, err
	}
	result = "created"
	s.Tasks.PaymentExpire(ctx, tasks.PaymentExpirePayload{OrderID: orderID}, s.ttl())
	return payment, nil
}

// Confirm settles the latest payment from a provider callback. The callback
// must carry the intent token issued for the order; a bad or missing token
// is rejected before any state changes. Only success and failure signals are
// accepted.
func (s *Service) Confirm(ctx context.Context, orderID, signal, token string) (string, error) {
	if s == nil || s.Q == nil {
		return "", errors.New("payment service not configured")
	}
	orderUUID, err := db.ToUUID(orderID)
	if err != nil {
		return "", fmt.Errorf("%w: invalid order id: %v", ErrInvalidInput, err)
	}
	payment, err := s.Q.GetLatestPaymentByOrder(ctx, orderUUID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if !s.verifyConfirmation(payment, orderID, token) {
		s.Log.Warn().
			Str("order_id", orderID).
			Msg("payment confirmation carried a bad token")
		return "", ErrInvalidSignature
	}
	if payment.Status == db.PaymentStatusPaid {
		return db.PaymentStatusPaid, nil
	}

	var paymentStatus, orderStatus string
	switch strings.ToLower(strings.TrimSpace(signal)) {
	case "success", "paid", "settlement":
		paymentStatus, orderStatus = db.PaymentStatusPaid, db.OrderStatusPaid
	case "failure", "failed", "deny":
		paymentStatus, orderStatus = db.PaymentStatusFailed, db.OrderStatusCancelled
	default:
		return "", fmt.Errorf("%w: unrecognised payment signal %q", ErrInvalidInput, signal)
	}
	if err := s.Q.UpdatePaymentStatus(ctx, payment.ID, paymentStatus); err != nil {
		return "", err
	}
	if err := s.Q.UpdateOrderStatus(ctx, orderUUID, orderStatus); err != nil {
		return "", err
	}
	s.Log.Info().
		Str("order_id", orderID).
		Str("status", paymentStatus).
		Msg("payment settled")
	return paymentStatus, nil
}

// verifyConfirmation checks the callback token through the provider's own
// verification when it offers one, falling back to a constant-time match
// against the stored intent token.
func (s *Service) verifyConfirmation(payment db.Payment, orderID, token string) bool {
	if strings.TrimSpace(token) == "" {
		return false
	}
	if v, ok := s.Provider.(ConfirmationVerifier); ok {
		return v.VerifyConfirmation(orderID, payment.Amount, token)
	}
	return payment.IntentToken.Valid && hmac.Equal([]byte(payment.IntentToken.String), []byte(token))
}

// Status returns the best-known payment status for an order, falling back
// to the order row when no intent was ever opened.
func (s *Service) Status(ctx context.Context, orderID string) (string, error) {
	if s == nil || s.Q == nil {
		return "", errors.New("payment service not configured")
	}
	orderUUID, err := db.ToUUID(orderID)
	if err != nil {
		return "", fmt.Errorf("%w: invalid order id: %v", ErrInvalidInput, err)
	}
	payment, err := s.Q.GetLatestPaymentByOrder(ctx, orderUUID)
	if err == nil {
		return payment.Status, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}
	order, err := s.Q.GetOrderByID(ctx, orderUUID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	switch order.Status {
	case db.OrderStatusPaid:
		return db.PaymentStatusPaid, nil
	case db.OrderStatusCancelled:
		return db.PaymentStatusFailed, nil
	default:
		return db.PaymentStatusPending, nil
	}
}

func providerLabel(p Provider) string {
	type named interface{ Name() string }
	if n, ok := p.(named); ok && n.Name() != "" {
		return n.Name()
	}
	return "unknown"
}
