package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const cartColumns = `id, anon_id, created_at, updated_at, expires_at`

func scanCart(row pgx.Row) (Cart, error) {
	var c Cart
	err := row.Scan(&c.ID, &c.AnonID, &c.CreatedAt, &c.UpdatedAt, &c.ExpiresAt)
	return c, err
}

// CreateCart inserts a new guest cart.
func (s *Store) CreateCart(ctx context.Context, anonID pgtype.Text, expiresAt pgtype.Timestamptz) (Cart, error) {
	return scanCart(s.db.QueryRow(ctx,
		`INSERT INTO carts (anon_id, expires_at) VALUES ($1, $2) RETURNING `+cartColumns,
		anonID, expiresAt))
}

// GetCartByID loads a cart by primary key.
func (s *Store) GetCartByID(ctx context.Context, id pgtype.UUID) (Cart, error) {
	return scanCart(s.db.QueryRow(ctx,
		`SELECT `+cartColumns+` FROM carts WHERE id = $1`, id))
}

// GetActiveCartByAnon returns the newest unexpired cart for the anonymous id.
func (s *Store) GetActiveCartByAnon(ctx context.Context, anonID pgtype.Text) (Cart, error) {
	return scanCart(s.db.QueryRow(ctx,
		`SELECT `+cartColumns+` FROM carts
		 WHERE anon_id = $1 AND expires_at > now()
		 ORDER BY created_at DESC LIMIT 1`, anonID))
}

// TouchCart extends the cart's expiry.
func (s *Store) TouchCart(ctx context.Context, id pgtype.UUID, expiresAt pgtype.Timestamptz) error {
	_, err := s.db.Exec(ctx,
		`UPDATE carts SET expires_at = $2, updated_at = now() WHERE id = $1`, id, expiresAt)
	return err
}

const cartItemColumns = `id, cart_id, product_id, title, slug, selling_format,
	qty, unit_price, subtotal, created_at, updated_at`

func scanCartItem(row pgx.Row) (CartItem, error) {
	var it CartItem
	err := row.Scan(&it.ID, &it.CartID, &it.ProductID, &it.Title, &it.Slug,
		&it.SellingFormat, &it.Qty, &it.UnitPrice, &it.Subtotal, &it.CreatedAt, &it.UpdatedAt)
	return it, err
}

// ListCartItems returns the items of a cart in insertion order.
func (s *Store) ListCartItems(ctx context.Context, cartID pgtype.UUID) ([]CartItem, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+cartItemColumns+` FROM cart_items WHERE cart_id = $1 ORDER BY created_at`, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CartItem
	for rows.Next() {
		it, err := scanCartItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// GetCartItemByID loads a single cart item.
func (s *Store) GetCartItemByID(ctx context.Context, id pgtype.UUID) (CartItem, error) {
	return scanCartItem(s.db.QueryRow(ctx,
		`SELECT `+cartItemColumns+` FROM cart_items WHERE id = $1`, id))
}

// FindCartItemParams identifies an item by cart, product and selling format.
// The same product can sit in a cart twice, once per selling format.
type FindCartItemParams struct {
	CartID        pgtype.UUID
	ProductID     pgtype.UUID
	SellingFormat string
}

// FindCartItem locates an existing line for the product and selling format.
func (s *Store) FindCartItem(ctx context.Context, arg FindCartItemParams) (CartItem, error) {
	return scanCartItem(s.db.QueryRow(ctx,
		`SELECT `+cartItemColumns+` FROM cart_items
		 WHERE cart_id = $1 AND product_id = $2 AND selling_format = $3`,
		arg.CartID, arg.ProductID, arg.SellingFormat))
}

// CreateCartItemParams carries the fields for inserting a cart line.
type CreateCartItemParams struct {
	CartID        pgtype.UUID
	ProductID     pgtype.UUID
	Title         string
	Slug          string
	SellingFormat string
	Qty           int32
	UnitPrice     int64
	Subtotal      int64
}

// CreateCartItem inserts a new cart line.
func (s *Store) CreateCartItem(ctx context.Context, arg CreateCartItemParams) (CartItem, error) {
	return scanCartItem(s.db.QueryRow(ctx,
		`INSERT INTO cart_items (cart_id, product_id, title, slug, selling_format, qty, unit_price, subtotal)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+cartItemColumns,
		arg.CartID, arg.ProductID, arg.Title, arg.Slug, arg.SellingFormat,
		arg.Qty, arg.UnitPrice, arg.Subtotal))
}

// UpdateCartItemQty replaces the quantity and display subtotal of a line.
func (s *Store) UpdateCartItemQty(ctx context.Context, id pgtype.UUID, qty int32, subtotal int64) error {
	_, err := s.db.Exec(ctx,
		`UPDATE cart_items SET qty = $2, subtotal = $3, updated_at = now() WHERE id = $1`,
		id, qty, subtotal)
	return err
}

// DeleteCartItem removes a line scoped to its cart.
func (s *Store) DeleteCartItem(ctx context.Context, id, cartID pgtype.UUID) error {
	_, err := s.db.Exec(ctx,
		`DELETE FROM cart_items WHERE id = $1 AND cart_id = $2`, id, cartID)
	return err
}
