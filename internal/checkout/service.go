// Package checkout turns a cart into an order. The totals written on the
// order are recomputed here, server side, from the live product rows; any
// client-supplied total is advisory and only checked for drift.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/noven-dev/backend-wholesale/internal/catalog"
	"github.com/noven-dev/backend-wholesale/internal/db"
	"github.com/noven-dev/backend-wholesale/internal/obs"
	"github.com/noven-dev/backend-wholesale/internal/pricing"
	"github.com/noven-dev/backend-wholesale/internal/promo"
	"github.com/noven-dev/backend-wholesale/internal/shipping"
	"github.com/noven-dev/backend-wholesale/internal/tasks"
)

// ErrCartEmpty is returned when checking out a cart with no lines.
var ErrCartEmpty = errors.New("cart is empty")

// ErrNotFound indicates the cart could not be located.
var ErrNotFound = errors.New("cart not found")

var validate = validator.New()

// Addr is the delivery address captured at checkout.
type Addr struct {
	Country      string `json:"country"`
	City         string `json:"city"`
	Postcode     string `json:"postcode"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
}

// Customer identifies the guest buyer.
type Customer struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone,omitempty"`
}

// Input is the checkout request payload. ClientTotal is the storefront's
// advisory figure; the charge is always the server recomputation.
type Input struct {
	CartID      string   `json:"cartId" validate:"required"`
	Customer    Customer `json:"customer" validate:"required"`
	Address     Addr     `json:"address"`
	ClientTotal *int64   `json:"clientTotal,omitempty"`
}

// Output reports the created order and its authoritative pricing.
type Output struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
	Pricing struct {
		Subtotal            int64    `json:"subtotal"`
		Shipping            int64    `json:"shipping"`
		TransactionFee      int64    `json:"transactionFee"`
		Total               int64    `json:"total"`
		FulfilmentCount     int      `json:"fulfilmentCount"`
		AppliedPromotions   []string `json:"appliedPromotions"`
		FreeShippingApplied bool     `json:"freeShippingApplied"`
	} `json:"pricing"`
	Currency string `json:"currency"`
}

// Service orchestrates order creation.
type Service struct {
	Pool     *pgxpool.Pool
	Q        *db.Store
	Log      zerolog.Logger
	Fees     pricing.FeeSchedule
	Currency string
	Shipping shipping.Client
	Tasks    *tasks.Enqueuer
	Now      func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Create prices the cart inside a transaction and persists the order with
// its items, including BOGOFF free units for fulfilment.
func (s *Service) Create(ctx context.Context, in Input) (Output, error) {
	if s == nil || s.Q == nil || s.Pool == nil {
		return Output{}, errors.New("checkout service not configured")
	}
	if err := validate.Struct(in); err != nil {
		return Output{}, fmt.Errorf("invalid checkout payload: %w", err)
	}
	cID, err := db.ToUUID(in.CartID)
	if err != nil {
		return Output{}, fmt.Errorf("invalid cart id: %w", err)
	}

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return Output{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	qtx := s.Q.WithTx(tx)

	cart, err := qtx.GetCartByID(ctx, cID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Output{}, ErrNotFound
		}
		return Output{}, err
	}
	// Same rule as the cart quote: an expired cart reads as gone.
	if cartExpired(cart, s.now()) {
		return Output{}, ErrNotFound
	}
	items, err := qtx.ListCartItems(ctx, cID)
	if err != nil {
		return Output{}, err
	}
	if len(items) == 0 {
		return Output{}, ErrCartEmpty
	}

	products := make(map[string]db.Product, len(items))
	for _, item := range items {
		key := db.UUIDString(item.ProductID)
		if _, ok := products[key]; ok {
			continue
		}
		product, err := qtx.GetProductByID(ctx, item.ProductID)
		if err != nil {
			return Output{}, fmt.Errorf("load product for order line: %w", err)
		}
		products[key] = product
	}

	priced := PriceCart(s.Log, items, products)
	shippingCost := s.quoteShipping(ctx, priced)
	summary := pricing.Compute(priced.Lines, shippingCost, s.Fees)
	s.checkClientTotal(in, summary)

	order, err := qtx.CreateOrder(ctx, db.CreateOrderParams{
		CartID:            cID,
		CustomerName:      in.Customer.Name,
		CustomerEmail:     in.Customer.Email,
		Status:            db.OrderStatusPendingPayment,
		Currency:          s.Currency,
		PricingSubtotal:   summary.Subtotal,
		PricingShipping:   summary.Shipping,
		PricingFee:        summary.TransactionFee,
		PricingTotal:      summary.Total,
		FulfilmentUnits:   int32(summary.FulfilmentCount),
		AppliedPromotions: toJSON(summary.AppliedPromotions),
		ShippingAddress:   toJSON(in.Address),
	})
	if err != nil {
		return Output{}, err
	}
	for _, item := range priced.Items {
		item.OrderID = order.ID
		if err := qtx.CreateOrderItem(ctx, item); err != nil {
			return Output{}, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return Output{}, err
	}

	if obs.CheckoutTotal != nil {
		obs.CheckoutTotal.WithLabelValues("created").Inc()
	}
	if summary.FreeShippingApplied && obs.FreeShippingAppliedTotal != nil {
		obs.FreeShippingAppliedTotal.Inc()
	}
	s.Tasks.OrderCreated(ctx, tasks.OrderCreatedPayload{
		OrderID:  db.UUIDString(order.ID),
		Name:     in.Customer.Name,
		Email:    in.Customer.Email,
		Total:    summary.Total,
		Currency: s.Currency,
	})

	var out Output
	out.OrderID = db.UUIDString(order.ID)
	out.Status = order.Status
	out.Currency = s.Currency
	out.Pricing.Subtotal = summary.Subtotal
	out.Pricing.Shipping = summary.Shipping
	out.Pricing.TransactionFee = summary.TransactionFee
	out.Pricing.Total = summary.Total
	out.Pricing.FulfilmentCount = summary.FulfilmentCount
	out.Pricing.AppliedPromotions = summary.AppliedPromotions
	out.Pricing.FreeShippingApplied = summary.FreeShippingApplied
	return out, nil
}

// PricedCart pairs the aggregate pricing lines with the order item rows that
// will be written, one per cart line, free units included.
type PricedCart struct {
	Lines   []pricing.Line
	Items   []db.CreateOrderItemParams
	Pallets int
	Units   int
}

// PriceCart re-prices every cart line from its live product row. It is the
// same computation the cart quote runs, kept pure so the two cannot drift.
func PriceCart(log zerolog.Logger, items []db.CartItem, products map[string]db.Product) PricedCart {
	out := PricedCart{
		Lines: make([]pricing.Line, 0, len(items)),
		Items: make([]db.CreateOrderItemParams, 0, len(items)),
	}
	for _, item := range items {
		product := products[db.UUIDString(item.ProductID)]
		priced := catalog.PriceLine(log, product, int(item.Qty), item.SellingFormat)
		out.Lines = append(out.Lines, pricing.Line{
			Qty:           priced.Qty,
			SellingFormat: pricing.SellingFormat(priced.Format),
			UnitPrice:     priced.UnitPrice,
			PalletPrice:   priced.PalletPrice,
			Offers:        priced.Offers,
			PromoPrice:    priced.PromoPrice,
			PromoActive:   priced.PromoActive,
		})

		row := db.CreateOrderItemParams{
			ProductID:     item.ProductID,
			Title:         product.Title,
			Slug:          product.Slug,
			SellingFormat: item.SellingFormat,
			Qty:           item.Qty,
		}
		if pricing.SellingFormat(item.SellingFormat) == pricing.FormatPallets {
			out.Pallets += int(item.Qty)
			row.UnitPrice = priced.PalletPrice
			row.Subtotal = priced.PalletPrice * int64(item.Qty)
		} else {
			out.Units += int(item.Qty)
			res := promo.Calculate(priced.UnitPrice, priced.Qty, priced.Offers, priced.PromoPrice, priced.PromoActive)
			row.UnitPrice = res.EffectivePrice
			row.Subtotal = res.TotalCost
			if res.Bogoff != nil {
				row.FreeQty = int32(res.Bogoff.FreeUnits)
			}
		}
		out.Items = append(out.Items, row)
	}
	return out
}

func cartExpired(cart db.Cart, now time.Time) bool {
	return cart.ExpiresAt.Valid && cart.ExpiresAt.Time.Before(now)
}

func (s *Service) quoteShipping(ctx context.Context, priced PricedCart) pricing.Money {
	if s.Shipping == nil {
		return 0
	}
	rates, err := s.Shipping.Rates(ctx, shipping.RateReq{ItemCount: priced.Units, Pallets: priced.Pallets})
	if err != nil {
		s.Log.Warn().Err(err).Msg("shipping quote failed at checkout, defaulting to zero")
		return 0
	}
	return shipping.Pick(rates)
}

// checkClientTotal compares the storefront's advisory total against the
// server recomputation. A mismatch never blocks the order; the server value
// governs and the event is logged and counted for investigation.
func (s *Service) checkClientTotal(in Input, summary pricing.Summary) {
	if in.ClientTotal == nil || *in.ClientTotal == summary.Total {
		return
	}
	s.Log.Warn().
		Str("cart_id", in.CartID).
		Int64("client_total", *in.ClientTotal).
		Int64("server_total", summary.Total).
		Msg("client total disagrees with server recomputation")
	if obs.PricingMismatchTotal != nil {
		obs.PricingMismatchTotal.WithLabelValues("checkout").Inc()
	}
}

func toJSON(v any) []byte {
	if v == nil {
		return nil
	}
	b, _ := json.Marshal(v)
	return b
}
