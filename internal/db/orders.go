package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, cart_id, customer_name, customer_email, status, currency,
	pricing_subtotal, pricing_shipping, pricing_fee, pricing_total,
	fulfilment_units, applied_promotions, shipping_address, created_at, updated_at`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.CartID, &o.CustomerName, &o.CustomerEmail, &o.Status,
		&o.Currency, &o.PricingSubtotal, &o.PricingShipping, &o.PricingFee,
		&o.PricingTotal, &o.FulfilmentUnits, &o.AppliedPromotions,
		&o.ShippingAddress, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

// CreateOrderParams carries the authoritative totals computed at checkout.
type CreateOrderParams struct {
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
}

// CreateOrder inserts an order row.
func (s *Store) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	return scanOrder(s.db.QueryRow(ctx,
		`INSERT INTO orders (cart_id, customer_name, customer_email, status, currency,
			pricing_subtotal, pricing_shipping, pricing_fee, pricing_total,
			fulfilment_units, applied_promotions, shipping_address)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING `+orderColumns,
		arg.CartID, arg.CustomerName, arg.CustomerEmail, arg.Status, arg.Currency,
		arg.PricingSubtotal, arg.PricingShipping, arg.PricingFee, arg.PricingTotal,
		arg.FulfilmentUnits, arg.AppliedPromotions, arg.ShippingAddress))
}

// GetOrderByID loads an order by primary key.
func (s *Store) GetOrderByID(ctx context.Context, id pgtype.UUID) (Order, error) {
	return scanOrder(s.db.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
}

// ListOrdersByEmail returns the customer's orders, newest first.
func (s *Store) ListOrdersByEmail(ctx context.Context, email string, limit, offset int32) ([]Order, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE customer_email = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, email, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// UpdateOrderStatus transitions an order.
func (s *Store) UpdateOrderStatus(ctx context.Context, id pgtype.UUID, status string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	return err
}

const orderItemColumns = `id, order_id, product_id, title, slug, selling_format,
	qty, free_qty, unit_price, subtotal`

// CreateOrderItemParams carries a priced order line.
type CreateOrderItemParams struct {
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

// CreateOrderItem inserts an order line.
func (s *Store) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO order_items (order_id, product_id, title, slug, selling_format,
			qty, free_qty, unit_price, subtotal)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		arg.OrderID, arg.ProductID, arg.Title, arg.Slug, arg.SellingFormat,
		arg.Qty, arg.FreeQty, arg.UnitPrice, arg.Subtotal)
	return err
}

// ListOrderItems returns the lines of an order.
func (s *Store) ListOrderItems(ctx context.Context, orderID pgtype.UUID) ([]OrderItem, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+orderItemColumns+` FROM order_items WHERE order_id = $1 ORDER BY title`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Title, &it.Slug,
			&it.SellingFormat, &it.Qty, &it.FreeQty, &it.UnitPrice, &it.Subtotal); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
