package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const paymentColumns = `id, order_id, provider, status, amount, intent_token,
	redirect_url, expires_at, created_at, updated_at`

func scanPayment(row pgx.Row) (Payment, error) {
	var p Payment
	err := row.Scan(&p.ID, &p.OrderID, &p.Provider, &p.Status, &p.Amount,
		&p.IntentToken, &p.RedirectURL, &p.ExpiresAt, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// CreatePaymentParams carries a new payment intent record.
type CreatePaymentParams struct {
	OrderID     pgtype.UUID
	Provider    pgtype.Text
	Status      string
	Amount      int64
	IntentToken pgtype.Text
	RedirectURL pgtype.Text
	ExpiresAt   pgtype.Timestamptz
}

// CreatePayment inserts a payment intent row.
func (s *Store) CreatePayment(ctx context.Context, arg CreatePaymentParams) (Payment, error) {
	return scanPayment(s.db.QueryRow(ctx,
		`INSERT INTO payments (order_id, provider, status, amount, intent_token, redirect_url, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+paymentColumns,
		arg.OrderID, arg.Provider, arg.Status, arg.Amount, arg.IntentToken,
		arg.RedirectURL, arg.ExpiresAt))
}

// GetLatestPaymentByOrder returns the most recent payment for the order.
func (s *Store) GetLatestPaymentByOrder(ctx context.Context, orderID pgtype.UUID) (Payment, error) {
	return scanPayment(s.db.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE order_id = $1
		 ORDER BY created_at DESC LIMIT 1`, orderID))
}

// UpdatePaymentStatus transitions a payment.
func (s *Store) UpdatePaymentStatus(ctx context.Context, id pgtype.UUID, status string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE payments SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	return err
}
