package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const productColumns = `id, slug, title, description, price::text, promo_price::text,
	promo_active, selling_format, moq, stock, pallet_price::text, pallet_moq,
	pallet_stock, promotional_offers, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(
		&p.ID, &p.Slug, &p.Title, &p.Description, &p.Price, &p.PromoPrice,
		&p.PromoActive, &p.SellingFormat, &p.Moq, &p.Stock, &p.PalletPrice,
		&p.PalletMoq, &p.PalletStock, &p.Offers, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// ListProducts returns a page of catalogue rows ordered by title.
func (s *Store) ListProducts(ctx context.Context, limit, offset int32) ([]Product, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY title LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// CountProducts returns the catalogue size.
func (s *Store) CountProducts(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRow(ctx, `SELECT count(*) FROM products`).Scan(&count)
	return count, err
}

// GetProductBySlug loads a single product by its slug.
func (s *Store) GetProductBySlug(ctx context.Context, slug string) (Product, error) {
	return scanProduct(s.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE slug = $1`, slug))
}

// GetProductByID loads a single product by primary key.
func (s *Store) GetProductByID(ctx context.Context, id pgtype.UUID) (Product, error) {
	return scanProduct(s.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id))
}

// CreateProductParams carries the fields for inserting a catalogue row.
type CreateProductParams struct {
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
}

// CreateProduct inserts a catalogue row. Used by the seeder tool.
func (s *Store) CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error) {
	return scanProduct(s.db.QueryRow(ctx,
		`INSERT INTO products (slug, title, description, price, promo_price, promo_active,
			selling_format, moq, stock, pallet_price, pallet_moq, pallet_stock, promotional_offers)
		 VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6, $7, $8, $9, $10::numeric, $11, $12, $13)
		 RETURNING `+productColumns,
		arg.Slug, arg.Title, arg.Description, arg.Price, arg.PromoPrice, arg.PromoActive,
		arg.SellingFormat, arg.Moq, arg.Stock, arg.PalletPrice, arg.PalletMoq,
		arg.PalletStock, arg.Offers))
}
