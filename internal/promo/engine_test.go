package promo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCalculateNoOfferIdentity(t *testing.T) {
	res := Calculate(1000, 3, nil, 0, false)
	require.Equal(t, Money(1000), res.EffectivePrice)
	require.Equal(t, Money(1000), res.OriginalPrice)
	require.Equal(t, 3, res.TotalQty)
	require.Equal(t, Money(3000), res.TotalCost)
	require.Empty(t, res.AppliedOffers)
	require.Nil(t, res.Bogoff)
}

func TestCalculateZeroQuantity(t *testing.T) {
	offers := []Offer{{Kind: KindPercentage, PercentBps: 2000}}
	res := Calculate(1000, 0, offers, 0, false)
	require.Equal(t, Money(0), res.TotalCost)
	require.Equal(t, 0, res.TotalQty)
	require.Empty(t, res.AppliedOffers)
}

func TestCalculateNegativeInputsCoerced(t *testing.T) {
	res := Calculate(-500, -2, nil, 0, false)
	require.Equal(t, Money(0), res.EffectivePrice)
	require.Equal(t, 0, res.TotalQty)
	require.Equal(t, Money(0), res.TotalCost)
}

func TestCalculatePercentageOff(t *testing.T) {
	offers := []Offer{{Kind: KindPercentage, PercentBps: 2000}}
	res := Calculate(1000, 2, offers, 0, false)
	require.Equal(t, Money(800), res.EffectivePrice)
	require.Equal(t, Money(1600), res.TotalCost)
	require.Equal(t, []string{"20% off"}, res.AppliedOffers)
}

func TestCalculateFixedAmountClampedAtZero(t *testing.T) {
	offers := []Offer{{Kind: KindFixedAmount, Amount: 1500}}
	res := Calculate(1000, 2, offers, 0, false)
	require.Equal(t, Money(0), res.EffectivePrice)
	require.Equal(t, Money(0), res.TotalCost)
	require.Equal(t, []string{"15.00 off per unit"}, res.AppliedOffers)
}

func TestCalculateBestDiscountWins(t *testing.T) {
	offers := []Offer{
		{Kind: KindPercentage, PercentBps: 1000},
		{Kind: KindPercentage, PercentBps: 2000},
	}
	res := Calculate(1000, 1, offers, 0, false)
	// 20% wins outright; the discounts never compound.
	require.Equal(t, Money(800), res.EffectivePrice)
	require.Equal(t, []string{"10% off", "20% off"}, res.AppliedOffers)
}

func TestCalculateWeakerOfferAfterStrongerNotRecorded(t *testing.T) {
	offers := []Offer{
		{Kind: KindPercentage, PercentBps: 2000},
		{Kind: KindPercentage, PercentBps: 1000},
	}
	res := Calculate(1000, 1, offers, 0, false)
	require.Equal(t, Money(800), res.EffectivePrice)
	require.Equal(t, []string{"20% off"}, res.AppliedOffers)
}

func TestCalculateMinimumQuantityGate(t *testing.T) {
	offers := []Offer{{Kind: KindPercentage, PercentBps: 2000, MinQty: 10}}

	below := Calculate(1000, 9, offers, 0, false)
	require.Equal(t, Money(1000), below.EffectivePrice)
	require.Empty(t, below.AppliedOffers)

	at := Calculate(1000, 10, offers, 0, false)
	require.Equal(t, Money(800), at.EffectivePrice)
	require.Equal(t, []string{"20% off"}, at.AppliedOffers)
}

func TestCalculateBogoff(t *testing.T) {
	offers := []Offer{{Kind: KindBuyGetFree, Buy: 2, GetFree: 1}}
	res := Calculate(500, 6, offers, 0, false)
	require.Equal(t, 9, res.TotalQty)
	require.Equal(t, Money(3000), res.TotalCost)
	require.Equal(t, []string{"Buy 2 get 1 free"}, res.AppliedOffers)
	require.NotNil(t, res.Bogoff)
	require.Equal(t, 3, res.Bogoff.FreeUnits)
	require.Equal(t, 2, res.Bogoff.Buy)
	require.Equal(t, 1, res.Bogoff.GetFree)
}

func TestCalculateBogoffBelowBuyCount(t *testing.T) {
	offers := []Offer{{Kind: KindBuyGetFree, Buy: 3, GetFree: 1}}
	res := Calculate(500, 2, offers, 0, false)
	require.Equal(t, 2, res.TotalQty)
	require.Nil(t, res.Bogoff)
	require.Empty(t, res.AppliedOffers)
}

func TestCalculateLegacyPromoPrice(t *testing.T) {
	res := Calculate(1000, 1, nil, 500, true)
	require.Equal(t, Money(500), res.EffectivePrice)
	require.Equal(t, Money(1000), res.OriginalPrice)
	require.Equal(t, []string{LegacyPromoLabel}, res.AppliedOffers)

	inactive := Calculate(1000, 1, nil, 500, false)
	require.Equal(t, Money(1000), inactive.EffectivePrice)

	aboveBase := Calculate(1000, 1, nil, 1200, true)
	require.Equal(t, Money(1000), aboveBase.EffectivePrice)
	require.Empty(t, aboveBase.AppliedOffers)
}

func TestCalculateLegacyPromoCompetesWithOffers(t *testing.T) {
	offers := []Offer{{Kind: KindPercentage, PercentBps: 6000}}
	res := Calculate(1000, 1, offers, 500, true)
	// 60% off beats the 5.00 promo price.
	require.Equal(t, Money(400), res.EffectivePrice)
	require.Equal(t, []string{LegacyPromoLabel, "60% off"}, res.AppliedOffers)
}

func TestCalculateCostNeverExceedsOriginal(t *testing.T) {
	offers := []Offer{
		{Kind: KindPercentage, PercentBps: 2500, MinQty: 5},
		{Kind: KindFixedAmount, Amount: 30},
		{Kind: KindBuyGetFree, Buy: 4, GetFree: 2},
		{Kind: KindFreeShipping, MinSpend: 5000},
	}
	for qty := 0; qty <= 25; qty++ {
		res := Calculate(799, qty, offers, 650, true)
		require.GreaterOrEqual(t, res.TotalCost, Money(0))
		require.LessOrEqual(t, res.TotalCost, Money(799)*Money(qty))
		require.GreaterOrEqual(t, res.TotalQty, qty)
	}
}

func TestFreeShippingThreshold(t *testing.T) {
	offers := []Offer{
		{Kind: KindFreeShipping, MinSpend: 10000},
		{Kind: KindFreeShipping, MinSpend: 8000, MinQty: 5},
		{Kind: KindPercentage, PercentBps: 1000},
	}

	threshold, ok := FreeShippingThreshold(offers, 2)
	require.True(t, ok)
	require.Equal(t, Money(10000), threshold)

	threshold, ok = FreeShippingThreshold(offers, 5)
	require.True(t, ok)
	require.Equal(t, Money(8000), threshold)

	_, ok = FreeShippingThreshold([]Offer{{Kind: KindPercentage, PercentBps: 1000}}, 5)
	require.False(t, ok)
}

func TestCalculateFreeShippingDoesNotTouchUnitPrice(t *testing.T) {
	offers := []Offer{{Kind: KindFreeShipping, MinSpend: 100}}
	res := Calculate(1000, 2, offers, 0, false)
	require.Equal(t, Money(1000), res.EffectivePrice)
	require.Equal(t, Money(2000), res.TotalCost)
	require.Empty(t, res.AppliedOffers)
}
