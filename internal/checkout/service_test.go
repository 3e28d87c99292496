package checkout

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noven-dev/backend-wholesale/internal/db"
	"github.com/noven-dev/backend-wholesale/internal/pricing"
)

func pgUUID() pgtype.UUID {
	return pgtype.UUID{Bytes: uuid.New(), Valid: true}
}

func TestPriceCartEndToEnd(t *testing.T) {
	// base 2.00, MOQ 12, buy 3 get 1 free, qty 12
	productID := pgUUID()
	product := db.Product{
		ID:            productID,
		Slug:          "crisps-case",
		Title:         "Crisps (case of 24)",
		Price:         "2.00",
		SellingFormat: "units",
		Moq:           12,
		Stock:         500,
		Offers:        []byte(`[{"type":"buy_x_get_free","buy":3,"getFree":1}]`),
	}
	items := []db.CartItem{{
		ID:            pgUUID(),
		ProductID:     productID,
		Title:         product.Title,
		Slug:          product.Slug,
		SellingFormat: "units",
		Qty:           12,
		UnitPrice:     200,
	}}
	products := map[string]db.Product{db.UUIDString(productID): product}

	priced := PriceCart(zerolog.Nop(), items, products)
	require.Len(t, priced.Items, 1)
	require.Equal(t, int32(12), priced.Items[0].Qty)
	require.Equal(t, int32(4), priced.Items[0].FreeQty)
	require.Equal(t, int64(200), priced.Items[0].UnitPrice)
	require.Equal(t, int64(2400), priced.Items[0].Subtotal)

	summary := pricing.Compute(priced.Lines, 0, pricing.DefaultFees)
	require.Equal(t, pricing.Money(2400), summary.Subtotal)
	require.Equal(t, 16, summary.FulfilmentCount)
	require.Equal(t, pricing.Money(182), summary.TransactionFee)
	require.Equal(t, pricing.Money(2582), summary.Total)
	require.Contains(t, summary.AppliedPromotions, "Buy 3 get 1 free")
}

func TestPriceCartPalletLine(t *testing.T) {
	productID := pgUUID()
	product := db.Product{
		ID:            productID,
		Slug:          "flour-pallet",
		Title:         "Bakers flour",
		Price:         "1.20",
		SellingFormat: "both",
		PalletPrice:   pgtype.Text{String: "150.00", Valid: true},
		PalletMoq:     1,
		PalletStock:   8,
		Offers:        []byte(`[{"type":"percentage","discountPercent":50}]`),
	}
	items := []db.CartItem{{
		ID:            pgUUID(),
		ProductID:     productID,
		SellingFormat: "pallets",
		Qty:           2,
	}}
	products := map[string]db.Product{db.UUIDString(productID): product}

	priced := PriceCart(zerolog.Nop(), items, products)
	require.Equal(t, 2, priced.Pallets)
	require.Equal(t, int64(15000), priced.Items[0].UnitPrice)
	require.Equal(t, int64(30000), priced.Items[0].Subtotal)
	require.Equal(t, int32(0), priced.Items[0].FreeQty)

	// percentage offer must not leak into the pallet line
	summary := pricing.Compute(priced.Lines, 0, pricing.DefaultFees)
	require.Equal(t, pricing.Money(30000), summary.Subtotal)
	require.Empty(t, summary.AppliedPromotions)
}

func TestPriceCartMatchesQuotePath(t *testing.T) {
	// identical inputs have to produce identical totals on every run
	productID := pgUUID()
	product := db.Product{
		ID:            productID,
		Slug:          "tea-bags",
		Title:         "Tea bags",
		Price:         "5.00",
		SellingFormat: "units",
		Moq:           1,
		Stock:         100,
		PromoPrice:    pgtype.Text{String: "4.00", Valid: true},
		PromoActive:   true,
	}
	items := []db.CartItem{{ID: pgUUID(), ProductID: productID, SellingFormat: "units", Qty: 10}}
	products := map[string]db.Product{db.UUIDString(productID): product}

	first := pricing.Compute(PriceCart(zerolog.Nop(), items, products).Lines, 800, pricing.DefaultFees)
	second := pricing.Compute(PriceCart(zerolog.Nop(), items, products).Lines, 800, pricing.DefaultFees)
	require.Equal(t, first, second)
	require.Equal(t, pricing.Money(4000), first.Subtotal)
	require.Contains(t, first.AppliedPromotions, "Promo price")
}

func TestExpiredCartReadsAsGone(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	stale := db.Cart{ExpiresAt: pgtype.Timestamptz{Time: now.Add(-time.Minute), Valid: true}}
	require.True(t, cartExpired(stale, now))

	fresh := db.Cart{ExpiresAt: pgtype.Timestamptz{Time: now.Add(time.Hour), Valid: true}}
	require.False(t, cartExpired(fresh, now))

	// A cart with no expiry never expires.
	require.False(t, cartExpired(db.Cart{}, now))
}

func TestValidateInput(t *testing.T) {
	err := validate.Struct(Input{CartID: "", Customer: Customer{Name: "Sam", Email: "sam@example.com"}})
	require.Error(t, err)

	err = validate.Struct(Input{CartID: "abc", Customer: Customer{Name: "Sam", Email: "not-an-email"}})
	require.Error(t, err)

	err = validate.Struct(Input{CartID: "abc", Customer: Customer{Name: "Sam", Email: "sam@example.com"}})
	require.NoError(t, err)
}
