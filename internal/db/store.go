// Package db provides hand-written pgx queries for the wholesale storefront
// schema. The Store mirrors a generated-queries API: construct with New and
// rebind to a transaction with WithTx.
package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// DBTX abstracts a pgx pool or transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store executes queries against the provided connection.
type Store struct {
	db DBTX
}

// New constructs a Store bound to the given pool or transaction.
func New(db DBTX) *Store {
	return &Store{db: db}
}

// WithTx returns a Store bound to the transaction.
func (s *Store) WithTx(tx pgx.Tx) *Store {
	return &Store{db: tx}
}

// Product is a catalogue row. Price columns are scanned as numeric text and
// parsed into minor units at the catalog boundary; promotional offers are
// raw JSONB decoded into tagged variants there too.
type Product struct {
	ID            pgtype.UUID
	Slug          string
	Title         string
	Description   pgtype.Text
	Price         string
	PromoPrice    pgtype.Text
	PromoActive   bool
	SellingFormat string
	Moq           int32
	Stock         int32
	PalletPrice   pgtype.Text
	PalletMoq     int32
	PalletStock   int32
	Offers        []byte
	CreatedAt     pgtype.Timestamptz
	UpdatedAt     pgtype.Timestamptz
}

// Cart is a guest shopping cart row.
type Cart struct {
	ID        pgtype.UUID
	AnonID    pgtype.Text
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
	ExpiresAt pgtype.Timestamptz
}

// CartItem snapshots display fields at add time; pricing is recomputed from
// the live product row on every quote.
type CartItem struct {
	ID            pgtype.UUID
	CartID        pgtype.UUID
	ProductID     pgtype.UUID
	Title         string
	Slug          string
	SellingFormat string
	Qty           int32
	UnitPrice     int64
	Subtotal      int64
	CreatedAt     pgtype.Timestamptz
	UpdatedAt     pgtype.Timestamptz
}

// Order is a placed order with its authoritative server-computed totals.
type Order struct {
	ID                pgtype.UUID
	CartID            pgtype.UUID
	CustomerName      string
	CustomerEmail     string
	Status            string
	Currency          string
	PricingSubtotal   int64
	PricingShipping   int64
	PricingFee        int64
	PricingTotal      int64
	FulfilmentUnits   int32
	AppliedPromotions []byte
	ShippingAddress   []byte
	CreatedAt         pgtype.Timestamptz
	UpdatedAt         pgtype.Timestamptz
}

// OrderItem carries both the paid quantity and the free units granted by
// BOGOFF offers so fulfilment picks the right number.
type OrderItem struct {
	ID            pgtype.UUID
	OrderID       pgtype.UUID
	ProductID     pgtype.UUID
	Title         string
	Slug          string
	SellingFormat string
	Qty           int32
	FreeQty       int32
	UnitPrice     int64
	Subtotal      int64
}

// Payment tracks a payment intent opened with the provider.
type Payment struct {
	ID          pgtype.UUID
	OrderID     pgtype.UUID
	Provider    pgtype.Text
	Status      string
	Amount      int64
	IntentToken pgtype.Text
	RedirectURL pgtype.Text
	ExpiresAt   pgtype.Timestamptz
	CreatedAt   pgtype.Timestamptz
	UpdatedAt   pgtype.Timestamptz
}

// Order status values.
const (
	OrderStatusPendingPayment = "PENDING_PAYMENT"
	OrderStatusPaid           = "PAID"
	OrderStatusCancelled      = "CANCELLED"
)

// Payment status values.
const (
	PaymentStatusPending = "PENDING"
	PaymentStatusPaid    = "PAID"
	PaymentStatusFailed  = "FAILED"
	PaymentStatusExpired = "EXPIRED"
)
