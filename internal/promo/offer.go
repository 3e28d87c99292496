// Package promo implements the promotional pricing engine for the
// storefront: a closed taxonomy of offer kinds and a pure calculator that
// turns a base price, a quantity, and a set of offers into the effective
// unit price, fulfilment quantity, and billable cost. The same code path
// prices the cart preview and the authoritative charge.
package promo

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Offer kinds. The set is closed; DecodeOffers rejects anything else.
const (
	KindPercentage   = "percentage"
	KindFixedAmount  = "fixed_amount"
	KindBuyGetFree   = "buy_x_get_free"
	KindFreeShipping = "free_shipping"
)

// LegacyPromoLabel is recorded when the single promo-price override applies.
const LegacyPromoLabel = "Promo price"

// Offer is one promotion rule attached to a product. Fields beyond Kind are
// kind-specific: PercentBps for percentage offers, Amount for fixed-amount
// offers, Buy/GetFree for BOGOFF offers, MinSpend for free-shipping offers.
type Offer struct {
	Kind       string
	Label      string
	PercentBps int32
	Amount     Money
	Buy        int
	GetFree    int
	MinQty     int
	MinSpend   Money
}

// Qualifies reports whether the requested quantity meets the offer's
// minimum-quantity threshold. Thresholds are inclusive.
func (o Offer) Qualifies(qty int) bool {
	return o.MinQty <= 0 || qty >= o.MinQty
}

// DisplayLabel returns the human-readable label recorded in applied-offer
// lists. An explicit Label on the offer wins; otherwise one is generated
// from the offer parameters.
func (o Offer) DisplayLabel() string {
	if o.Label != "" {
		return o.Label
	}
	switch o.Kind {
	case KindPercentage:
		return decimal.New(int64(o.PercentBps), -2).String() + "% off"
	case KindFixedAmount:
		return FormatMoney(o.Amount) + " off per unit"
	case KindBuyGetFree:
		return fmt.Sprintf("Buy %d get %d free", o.Buy, o.GetFree)
	case KindFreeShipping:
		return "Free Shipping"
	default:
		return ""
	}
}
