package promo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	require.Equal(t, Money(250), ParseMoney("2.50"))
	require.Equal(t, Money(200), ParseMoney("2"))
	require.Equal(t, Money(1999), ParseMoney("19.99"))
	require.Equal(t, Money(0), ParseMoney(""))
	require.Equal(t, Money(0), ParseMoney("not-a-number"))
	require.Equal(t, Money(0), ParseMoney("-3.00"))
}

func TestFormatMoney(t *testing.T) {
	require.Equal(t, "2.50", FormatMoney(250))
	require.Equal(t, "0.00", FormatMoney(0))
	require.Equal(t, "25.82", FormatMoney(2582))
}

func TestDecodeOffers(t *testing.T) {
	data := []byte(`[
		{"type":"percentage","discountPercent":20},
		{"type":"fixed_amount","discountAmount":"0.25","minimumQuantity":10},
		{"type":"buy_x_get_free","buy":3,"getFree":1},
		{"type":"free_shipping","minimumOrderValue":"100.00"}
	]`)
	offers, err := DecodeOffers(data)
	require.NoError(t, err)
	require.Len(t, offers, 4)

	require.Equal(t, KindPercentage, offers[0].Kind)
	require.Equal(t, int32(2000), offers[0].PercentBps)

	require.Equal(t, KindFixedAmount, offers[1].Kind)
	require.Equal(t, Money(25), offers[1].Amount)
	require.Equal(t, 10, offers[1].MinQty)

	require.Equal(t, KindBuyGetFree, offers[2].Kind)
	require.Equal(t, 3, offers[2].Buy)
	require.Equal(t, 1, offers[2].GetFree)

	require.Equal(t, KindFreeShipping, offers[3].Kind)
	require.Equal(t, Money(10000), offers[3].MinSpend)
}

func TestDecodeOffersSkipsInvalidRecords(t *testing.T) {
	data := []byte(`[
		{"type":"percentage","discountPercent":10},
		{"type":"mystery_discount"},
		{"type":"buy_x_get_free","buy":0,"getFree":1}
	]`)
	offers, err := DecodeOffers(data)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidOffer)
	require.Len(t, offers, 1)
	require.Equal(t, KindPercentage, offers[0].Kind)
}

func TestDecodeOffersEmpty(t *testing.T) {
	offers, err := DecodeOffers(nil)
	require.NoError(t, err)
	require.Nil(t, offers)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := []Offer{
		{Kind: KindPercentage, PercentBps: 1250},
		{Kind: KindFixedAmount, Amount: 25, MinQty: 6},
		{Kind: KindBuyGetFree, Buy: 2, GetFree: 1},
		{Kind: KindFreeShipping, MinSpend: 10000},
	}
	data, err := EncodeOffers(in)
	require.NoError(t, err)
	out, err := DecodeOffers(data)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestDisplayLabels(t *testing.T) {
	require.Equal(t, "20% off", Offer{Kind: KindPercentage, PercentBps: 2000}.DisplayLabel())
	require.Equal(t, "12.5% off", Offer{Kind: KindPercentage, PercentBps: 1250}.DisplayLabel())
	require.Equal(t, "0.25 off per unit", Offer{Kind: KindFixedAmount, Amount: 25}.DisplayLabel())
	require.Equal(t, "Buy 3 get 1 free", Offer{Kind: KindBuyGetFree, Buy: 3, GetFree: 1}.DisplayLabel())
	require.Equal(t, "Free Shipping", Offer{Kind: KindFreeShipping}.DisplayLabel())
	require.Equal(t, "Summer deal", Offer{Kind: KindPercentage, PercentBps: 1000, Label: "Summer deal"}.DisplayLabel())
}
