// Package shipping quotes delivery rates for cart and checkout. The live
// carrier integration sits behind Client; the storefront only needs one
// selected rate to feed into pricing.
package shipping

import "context"

// RateReq describes a shipping rate request.
type RateReq struct {
	Postcode  string
	ItemCount int
	Pallets   int
}

// Rate describes a returned shipping rate option. Price is in minor units.
type Rate struct {
	Service string `json:"service"`
	Price   int64  `json:"price"`
	ETD     string `json:"etd"`
}

// Client defines the behaviour required to quote shipping rates.
type Client interface {
	Rates(ctx context.Context, r RateReq) ([]Rate, error)
}

// FlatRateClient quotes a single flat rate regardless of destination. Pallet
// lines add a per-pallet surcharge since they ship on their own freight.
type FlatRateClient struct {
	Rate          int64
	PalletPerUnit int64
}

// Rates returns the standard flat rate for the request.
func (c FlatRateClient) Rates(ctx context.Context, r RateReq) ([]Rate, error) {
	_ = ctx
	price := c.Rate
	if r.Pallets > 0 {
		price += int64(r.Pallets) * c.PalletPerUnit
	}
	return []Rate{{Service: "STANDARD", Price: price, ETD: "2-3"}}, nil
}

// Pick returns the cheapest rate, or zero when the provider returned none.
func Pick(rates []Rate) int64 {
	if len(rates) == 0 {
		return 0
	}
	best := rates[0].Price
	for _, rate := range rates[1:] {
		if rate.Price < best {
			best = rate.Price
		}
	}
	return best
}
