package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noven-dev/backend-wholesale/internal/promo"
)

func TestComputeEmptyCart(t *testing.T) {
	s := Compute(nil, 500, DefaultFees)
	require.Equal(t, Money(0), s.Subtotal)
	require.Equal(t, Money(500), s.Shipping)
	require.Equal(t, Money(500*550/10000+50), s.TransactionFee)
	require.Equal(t, 0, s.ItemCount)
	require.Empty(t, s.AppliedPromotions)
}

func TestComputeUnitLines(t *testing.T) {
	lines := []Line{
		{Qty: 2, SellingFormat: FormatUnits, UnitPrice: 1000},
		{Qty: 3, SellingFormat: FormatUnits, UnitPrice: 500},
	}
	s := Compute(lines, 0, DefaultFees)
	require.Equal(t, Money(3500), s.Subtotal)
	require.Equal(t, 5, s.ItemCount)
	require.Equal(t, 5, s.FulfilmentCount)
}

func TestComputePalletLinesBypassPromotions(t *testing.T) {
	lines := []Line{{
		Qty:           2,
		SellingFormat: FormatPallets,
		UnitPrice:     100,
		PalletPrice:   25000,
		Offers:        []promo.Offer{{Kind: promo.KindPercentage, PercentBps: 5000}},
	}}
	s := Compute(lines, 0, DefaultFees)
	require.Equal(t, Money(50000), s.Subtotal)
	require.Empty(t, s.AppliedPromotions)
}

func TestComputeFulfilmentCountIncludesFreeUnits(t *testing.T) {
	lines := []Line{{
		Qty:           6,
		SellingFormat: FormatUnits,
		UnitPrice:     500,
		Offers:        []promo.Offer{{Kind: promo.KindBuyGetFree, Buy: 2, GetFree: 1}},
	}}
	s := Compute(lines, 0, DefaultFees)
	require.Equal(t, 6, s.ItemCount)
	require.Equal(t, 9, s.FulfilmentCount)
	require.Equal(t, Money(3000), s.Subtotal)
}

func TestComputeFreeShippingThreshold(t *testing.T) {
	offers := []promo.Offer{{Kind: promo.KindFreeShipping, MinSpend: 10000}}
	below := Compute([]Line{{Qty: 4, SellingFormat: FormatUnits, UnitPrice: 2000, Offers: offers}}, 800, DefaultFees)
	require.False(t, below.FreeShippingApplied)
	require.Equal(t, Money(800), below.Shipping)

	above := Compute([]Line{{Qty: 6, SellingFormat: FormatUnits, UnitPrice: 2000, Offers: offers}}, 800, DefaultFees)
	require.True(t, above.FreeShippingApplied)
	require.Equal(t, Money(0), above.Shipping)
	require.Contains(t, above.AppliedPromotions, "Free Shipping")
}

func TestComputeFreeShippingLabelNotDuplicated(t *testing.T) {
	offers := []promo.Offer{{Kind: promo.KindFreeShipping, MinSpend: 10000}}
	lines := []Line{
		{Qty: 6, SellingFormat: FormatUnits, UnitPrice: 2000, Offers: offers},
		{Qty: 6, SellingFormat: FormatUnits, UnitPrice: 2000, Offers: offers},
	}
	first := Compute(lines, 800, DefaultFees)
	second := Compute(lines, 800, DefaultFees)
	count := 0
	for _, label := range second.AppliedPromotions {
		if label == "Free Shipping" {
			count++
		}
	}
	require.Equal(t, 1, count)
	require.Equal(t, first, second)
}

func TestComputePromotionLabelsDeduplicated(t *testing.T) {
	offers := []promo.Offer{{Kind: promo.KindPercentage, PercentBps: 1000}}
	lines := []Line{
		{Qty: 1, SellingFormat: FormatUnits, UnitPrice: 1000, Offers: offers},
		{Qty: 1, SellingFormat: FormatUnits, UnitPrice: 2000, Offers: offers},
	}
	s := Compute(lines, 0, DefaultFees)
	require.Equal(t, []string{"10% off"}, s.AppliedPromotions)
}

func TestComputeEndToEndScenario(t *testing.T) {
	// basePrice 2.00, MOQ 12, buy 3 get 1 free, qty 12, free shipping.
	lines := []Line{{
		Qty:           12,
		SellingFormat: FormatUnits,
		UnitPrice:     200,
		Offers:        []promo.Offer{{Kind: promo.KindBuyGetFree, Buy: 3, GetFree: 1}},
	}}
	s := Compute(lines, 0, DefaultFees)
	require.Equal(t, 16, s.FulfilmentCount)
	require.Equal(t, Money(2400), s.Subtotal)
	require.Contains(t, s.AppliedPromotions, "Buy 3 get 1 free")
	// fee = 24.00 * 0.055 + 0.50 = 1.82, total 25.82
	require.Equal(t, Money(182), s.TransactionFee)
	require.Equal(t, Money(2582), s.Total)
}
