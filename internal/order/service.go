// Package order exposes read access to placed orders. Totals are returned
// exactly as persisted at checkout; nothing here re-prices.
package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	"github.com/noven-dev/backend-wholesale/internal/db"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("order not found")
)

type queryProvider interface {
	GetOrderByID(ctx context.Context, id pgtype.UUID) (db.Order, error)
	ListOrderItems(ctx context.Context, orderID pgtype.UUID) ([]db.OrderItem, error)
	ListOrdersByEmail(ctx context.Context, email string, limit, offset int32) ([]db.Order, error)
}

// Service reads orders and their lines.
type Service struct {
	Q   queryProvider
	Log zerolog.Logger
}

// Item is an order line as stored at checkout. FreeUnits counts the extra
// units granted by buy-get-free offers; fulfilment ships Qty plus FreeUnits.
type Item struct {
	ID            string `json:"id"`
	ProductID     string `json:"productId"`
	Title         string `json:"title"`
	Slug          string `json:"slug"`
	SellingFormat string `json:"sellingFormat"`
	Qty           int32  `json:"qty"`
	FreeUnits     int32  `json:"freeUnits"`
	UnitPrice     int64  `json:"unitPrice"`
	Subtotal      int64  `json:"subtotal"`
}

// Pricing mirrors the totals persisted at checkout.
type Pricing struct {
	Subtotal          int64    `json:"subtotal"`
	Shipping          int64    `json:"shipping"`
	TransactionFee    int64    `json:"transactionFee"`
	Total             int64    `json:"total"`
	FulfilmentCount   int32    `json:"fulfilmentCount"`
	AppliedPromotions []string `json:"appliedPromotions"`
}

// View is the full order representation returned to clients.
type View struct {
	ID              string          `json:"id"`
	Status          string          `json:"status"`
	Currency        string          `json:"currency"`
	CustomerName    string          `json:"customerName"`
	CustomerEmail   string          `json:"customerEmail"`
	Pricing         Pricing         `json:"pricing"`
	ShippingAddress json.RawMessage `json:"shippingAddress,omitempty"`
	Items           []Item          `json:"items"`
	CreatedAt       string          `json:"createdAt"`
}

// Get loads an order with its lines.
func (s *Service) Get(ctx context.Context, orderID string) (View, error) {
	var zero View
	id, err := db.ToUUID(orderID)
	if err != nil {
		return zero, fmt.Errorf("%w: invalid order id: %v", ErrInvalidInput, err)
	}
	o, err := s.Q.GetOrderByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return zero, ErrNotFound
	}
	if err != nil {
		return zero, err
	}
	items, err := s.Q.ListOrderItems(ctx, id)
	if err != nil {
		return zero, err
	}
	view := toView(s.Log, o)
	view.Items = make([]Item, 0, len(items))
	for _, it := range items {
		view.Items = append(view.Items, Item{
			ID:            db.UUIDString(it.ID),
			ProductID:     db.UUIDString(it.ProductID),
			Title:         it.Title,
			Slug:          it.Slug,
			SellingFormat: it.SellingFormat,
			Qty:           it.Qty,
			FreeUnits:     it.FreeQty,
			UnitPrice:     it.UnitPrice,
			Subtotal:      it.Subtotal,
		})
	}
	return view, nil
}

// ListByEmail returns a customer's orders without lines, newest first.
func (s *Service) ListByEmail(ctx context.Context, email string, limit, offset int32) ([]View, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email required", ErrInvalidInput)
	}
	orders, err := s.Q.ListOrdersByEmail(ctx, email, limit, offset)
	if err != nil {
		return nil, err
	}
	views := make([]View, 0, len(orders))
	for _, o := range orders {
		views = append(views, toView(s.Log, o))
	}
	return views, nil
}

func toView(log zerolog.Logger, o db.Order) View {
	promotions := []string{}
	if len(o.AppliedPromotions) > 0 {
		if err := json.Unmarshal(o.AppliedPromotions, &promotions); err != nil {
			log.Warn().Err(err).Str("order_id", db.UUIDString(o.ID)).
				Msg("stored promotions are not valid JSON")
			promotions = []string{}
		}
	}
	view := View{
		ID:            db.UUIDString(o.ID),
		Status:        o.Status,
		Currency:      o.Currency,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		Pricing: Pricing{
			Subtotal:          o.PricingSubtotal,
			Shipping:          o.PricingShipping,
			TransactionFee:    o.PricingFee,
			Total:             o.PricingTotal,
			FulfilmentCount:   o.FulfilmentUnits,
			AppliedPromotions: promotions,
		},
		Items: []Item{},
	}
	if len(o.ShippingAddress) > 0 {
		view.ShippingAddress = json.RawMessage(o.ShippingAddress)
	}
	if o.CreatedAt.Valid {
		view.CreatedAt = o.CreatedAt.Time.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return view
}
