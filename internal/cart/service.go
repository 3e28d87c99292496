// Package cart manages guest shopping carts. Lines snapshot title and price
// for display only; every quote re-prices the cart from the live product
// rows through the promotional engine so the preview always matches what
// checkout will charge.
package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	"github.com/noven-dev/backend-wholesale/internal/catalog"
	"github.com/noven-dev/backend-wholesale/internal/db"
	"github.com/noven-dev/backend-wholesale/internal/pricing"
	"github.com/noven-dev/backend-wholesale/internal/promo"
	"github.com/noven-dev/backend-wholesale/internal/shipping"
)

// ErrNotFound indicates the requested cart or item could not be located.
var ErrNotFound = errors.New("cart not found")

// ErrInvalidInput is returned when the provided payload is invalid.
var ErrInvalidInput = errors.New("invalid input")

type queryProvider interface {
	CreateCart(ctx context.Context, anonID pgtype.Text, expiresAt pgtype.Timestamptz) (db.Cart, error)
	GetCartByID(ctx context.Context, id pgtype.UUID) (db.Cart, error)
	GetActiveCartByAnon(ctx context.Context, anonID pgtype.Text) (db.Cart, error)
	TouchCart(ctx context.Context, id pgtype.UUID, expiresAt pgtype.Timestamptz) error
	ListCartItems(ctx context.Context, cartID pgtype.UUID) ([]db.CartItem, error)
	GetCartItemByID(ctx context.Context, id pgtype.UUID) (db.CartItem, error)
	FindCartItem(ctx context.Context, arg db.FindCartItemParams) (db.CartItem, error)
	CreateCartItem(ctx context.Context, arg db.CreateCartItemParams) (db.CartItem, error)
	UpdateCartItemQty(ctx context.Context, id pgtype.UUID, qty int32, subtotal int64) error
	DeleteCartItem(ctx context.Context, id, cartID pgtype.UUID) error
	GetProductByID(ctx context.Context, id pgtype.UUID) (db.Product, error)
}

// Service encapsulates cart domain operations.
type Service struct {
	Q        queryProvider
	Log      zerolog.Logger
	TTL      time.Duration
	Now      func() time.Time
	Fees     pricing.FeeSchedule
	Shipping shipping.Client
}

func (s *Service) ttl() time.Duration {
	if s == nil || s.TTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return s.TTL
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// EnsureCart loads or creates a cart for the anonymous identifier.
func (s *Service) EnsureCart(ctx context.Context, anonID string) (db.Cart, error) {
	if s == nil || s.Q == nil {
		return db.Cart{}, errors.New("cart service not configured")
	}
	if anonID == "" {
		return db.Cart{}, fmt.Errorf("anon id required: %w", ErrInvalidInput)
	}
	expires := pgtype.Timestamptz{Time: s.now().Add(s.ttl()), Valid: true}
	anon := pgtype.Text{String: anonID, Valid: true}

	cart, err := s.Q.GetActiveCartByAnon(ctx, anon)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return s.Q.CreateCart(ctx, anon, expires)
		}
		return db.Cart{}, err
	}
	_ = s.Q.TouchCart(ctx, cart.ID, expires)
	return cart, nil
}

// AddItem inserts or increments a cart line, enforcing the selling format
// and its minimum order quantity.
func (s *Service) AddItem(ctx context.Context, cartID, productID, format string, qty int) error {
	if s == nil || s.Q == nil {
		return errors.New("cart service not configured")
	}
	if qty <= 0 {
		return fmt.Errorf("qty must be positive: %w", ErrInvalidInput)
	}
	cID, err := db.ToUUID(cartID)
	if err != nil {
		return fmt.Errorf("parse cart id: %w", ErrInvalidInput)
	}
	pID, err := db.ToUUID(productID)
	if err != nil {
		return fmt.Errorf("parse product id: %w", ErrInvalidInput)
	}
	product, err := s.Q.GetProductByID(ctx, pID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("product not found: %w", ErrInvalidInput)
		}
		return err
	}

	expires := pgtype.Timestamptz{Time: s.now().Add(s.ttl()), Valid: true}
	item, err := s.Q.FindCartItem(ctx, db.FindCartItemParams{
		CartID:        cID,
		ProductID:     pID,
		SellingFormat: format,
	})
	if err == nil {
		newQty := int(item.Qty) + qty
		if err := validateLine(product, format, newQty); err != nil {
			return err
		}
		newSubtotal := int64(newQty) * item.UnitPrice
		if err := s.Q.UpdateCartItemQty(ctx, item.ID, int32(newQty), newSubtotal); err != nil {
			return err
		}
		_ = s.Q.TouchCart(ctx, cID, expires)
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	if err := validateLine(product, format, qty); err != nil {
		return err
	}
	unitPrice := snapshotPrice(product, format)
	if _, err := s.Q.CreateCartItem(ctx, db.CreateCartItemParams{
		CartID:        cID,
		ProductID:     pID,
		Title:         product.Title,
		Slug:          product.Slug,
		SellingFormat: format,
		Qty:           int32(qty),
		UnitPrice:     unitPrice,
		Subtotal:      int64(qty) * unitPrice,
	}); err != nil {
		return err
	}
	_ = s.Q.TouchCart(ctx, cID, expires)
	return nil
}

// UpdateQty replaces the quantity for a cart line, re-checking the minimum
// order quantity and stock for the line's selling format.
func (s *Service) UpdateQty(ctx context.Context, itemID string, qty int) error {
	if s == nil || s.Q == nil {
		return errors.New("cart service not configured")
	}
	if qty <= 0 {
		return fmt.Errorf("qty must be positive: %w", ErrInvalidInput)
	}
	id, err := db.ToUUID(itemID)
	if err != nil {
		return fmt.Errorf("parse item id: %w", ErrInvalidInput)
	}
	item, err := s.Q.GetCartItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	product, err := s.Q.GetProductByID(ctx, item.ProductID)
	if err != nil {
		return err
	}
	if err := validateLine(product, item.SellingFormat, qty); err != nil {
		return err
	}
	if err := s.Q.UpdateCartItemQty(ctx, item.ID, int32(qty), int64(qty)*item.UnitPrice); err != nil {
		return err
	}
	expires := pgtype.Timestamptz{Time: s.now().Add(s.ttl()), Valid: true}
	_ = s.Q.TouchCart(ctx, item.CartID, expires)
	return nil
}

// RemoveItem deletes a cart line.
func (s *Service) RemoveItem(ctx context.Context, cartID, itemID string) error {
	if s == nil || s.Q == nil {
		return errors.New("cart service not configured")
	}
	cID, err := db.ToUUID(cartID)
	if err != nil {
		return fmt.Errorf("parse cart id: %w", ErrInvalidInput)
	}
	iID, err := db.ToUUID(itemID)
	if err != nil {
		return fmt.Errorf("parse item id: %w", ErrInvalidInput)
	}
	if err := s.Q.DeleteCartItem(ctx, iID, cID); err != nil {
		return err
	}
	expires := pgtype.Timestamptz{Time: s.now().Add(s.ttl()), Valid: true}
	_ = s.Q.TouchCart(ctx, cID, expires)
	return nil
}

// QuoteItem is one re-priced cart line in a quote.
type QuoteItem struct {
	ID             string   `json:"id"`
	ProductID      string   `json:"productId"`
	Title          string   `json:"title"`
	Slug           string   `json:"slug"`
	SellingFormat  string   `json:"sellingFormat"`
	Qty            int      `json:"qty"`
	FreeUnits      int      `json:"freeUnits,omitempty"`
	OriginalPrice  int64    `json:"originalPrice"`
	EffectivePrice int64    `json:"effectivePrice"`
	LineTotal      int64    `json:"lineTotal"`
	AppliedOffers  []string `json:"appliedOffers"`
}

// Quote is the full re-priced cart: every line plus the aggregate summary.
type Quote struct {
	Items   []QuoteItem     `json:"items"`
	Summary pricing.Summary `json:"summary"`
}

// Quote re-prices the whole cart from live product rows. Checkout runs the
// same computation inside its transaction; the two must agree to the penny.
func (s *Service) Quote(ctx context.Context, cartID string) (Quote, error) {
	if s == nil || s.Q == nil {
		return Quote{}, errors.New("cart service not configured")
	}
	cID, err := db.ToUUID(cartID)
	if err != nil {
		return Quote{}, fmt.Errorf("parse cart id: %w", ErrInvalidInput)
	}
	cart, err := s.Q.GetCartByID(ctx, cID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Quote{}, ErrNotFound
		}
		return Quote{}, err
	}
	if cart.ExpiresAt.Valid && cart.ExpiresAt.Time.Before(s.now()) {
		return Quote{}, ErrNotFound
	}
	items, err := s.Q.ListCartItems(ctx, cID)
	if err != nil {
		return Quote{}, err
	}
	return s.quoteItems(ctx, items)
}

func (s *Service) quoteItems(ctx context.Context, items []db.CartItem) (Quote, error) {
	quote := Quote{Items: make([]QuoteItem, 0, len(items))}
	lines := make([]pricing.Line, 0, len(items))
	var units, pallets int
	for _, item := range items {
		product, err := s.Q.GetProductByID(ctx, item.ProductID)
		if err != nil {
			return Quote{}, fmt.Errorf("load product for line: %w", err)
		}
		priced := catalog.PriceLine(s.Log, product, int(item.Qty), item.SellingFormat)
		line := pricing.Line{
			Qty:           priced.Qty,
			SellingFormat: pricing.SellingFormat(priced.Format),
			UnitPrice:     priced.UnitPrice,
			PalletPrice:   priced.PalletPrice,
			Offers:        priced.Offers,
			PromoPrice:    priced.PromoPrice,
			PromoActive:   priced.PromoActive,
		}
		lines = append(lines, line)

		qi := QuoteItem{
			ID:            db.UUIDString(item.ID),
			ProductID:     db.UUIDString(item.ProductID),
			Title:         item.Title,
			Slug:          item.Slug,
			SellingFormat: item.SellingFormat,
			Qty:           int(item.Qty),
			AppliedOffers: []string{},
		}
		if line.SellingFormat == pricing.FormatPallets {
			pallets += qi.Qty
			qi.OriginalPrice = priced.PalletPrice
			qi.EffectivePrice = priced.PalletPrice
			qi.LineTotal = priced.PalletPrice * int64(qi.Qty)
		} else {
			units += qi.Qty
			res := promo.Calculate(priced.UnitPrice, priced.Qty, priced.Offers, priced.PromoPrice, priced.PromoActive)
			qi.OriginalPrice = res.OriginalPrice
			qi.EffectivePrice = res.EffectivePrice
			qi.LineTotal = res.TotalCost
			qi.AppliedOffers = res.AppliedOffers
			if res.Bogoff != nil {
				qi.FreeUnits = res.Bogoff.FreeUnits
			}
		}
		quote.Items = append(quote.Items, qi)
	}

	// The rate request must match what checkout sends for the same lines:
	// unit quantities only, pallets counted separately.
	shippingCost := pricing.Money(0)
	if s.Shipping != nil && len(items) > 0 {
		rates, err := s.Shipping.Rates(ctx, shipping.RateReq{ItemCount: units, Pallets: pallets})
		if err != nil {
			s.Log.Warn().Err(err).Msg("shipping quote failed, defaulting to zero")
		} else {
			shippingCost = shipping.Pick(rates)
		}
	}
	quote.Summary = pricing.Compute(lines, shippingCost, s.Fees)
	return quote, nil
}
