package pricing

import (
	"github.com/noven-dev/backend-wholesale/internal/promo"
)

// Money represents a monetary value stored in minor units.
type Money = int64

// SellingFormat distinguishes per-unit lines from pallet (bulk) lines.
type SellingFormat string

const (
	// FormatUnits prices the line per individual unit and applies promotions.
	FormatUnits SellingFormat = "units"
	// FormatPallets prices the line flat per pallet; promotions do not apply.
	FormatPallets SellingFormat = "pallets"
)

// Line describes one cart line for aggregate pricing.
type Line struct {
	Qty           int
	SellingFormat SellingFormat
	UnitPrice     Money
	PalletPrice   Money
	Offers        []promo.Offer
	PromoPrice    Money
	PromoActive   bool
}

// Summary aggregates computed pricing components for a whole cart.
//
// ItemCount sums paid quantities (the cart badge number); FulfilmentCount
// additionally includes BOGOFF free units and is what the warehouse picks.
// The two must never be conflated.
type Summary struct {
	Subtotal            Money
	Shipping            Money
	TransactionFee      Money
	Total               Money
	ItemCount           int
	FulfilmentCount     int
	AppliedPromotions   []string
	FreeShippingApplied bool
}

// Compute prices every line and folds the results into cart totals. Pallet
// lines bypass the promotional engine entirely; unit lines run through
// promo.Calculate. Free-shipping offers are resolved here against the full
// subtotal since no single line can know the order total. Identical inputs
// always produce an identical Summary, which is what lets the storefront
// preview and the authoritative charge share one code path.
func Compute(lines []Line, shipping Money, fees FeeSchedule) Summary {
	s := Summary{AppliedPromotions: []string{}}
	var (
		freeShipMin Money
		freeShipOk  bool
	)
	seen := map[string]bool{}
	record := func(label string) {
		if label == "" || seen[label] {
			return
		}
		seen[label] = true
		s.AppliedPromotions = append(s.AppliedPromotions, label)
	}

	for _, line := range lines {
		if line.Qty <= 0 {
			continue
		}
		if line.SellingFormat == FormatPallets {
			price := line.PalletPrice
			if price < 0 {
				price = 0
			}
			s.Subtotal += Money(line.Qty) * price
			s.ItemCount += line.Qty
			s.FulfilmentCount += line.Qty
			continue
		}
		res := promo.Calculate(line.UnitPrice, line.Qty, line.Offers, line.PromoPrice, line.PromoActive)
		s.Subtotal += res.TotalCost
		s.ItemCount += line.Qty
		s.FulfilmentCount += res.TotalQty
		for _, label := range res.AppliedOffers {
			record(label)
		}
		if threshold, ok := promo.FreeShippingThreshold(line.Offers, line.Qty); ok {
			if !freeShipOk || threshold < freeShipMin {
				freeShipMin = threshold
				freeShipOk = true
			}
		}
	}

	if shipping < 0 {
		shipping = 0
	}
	s.Shipping = shipping
	if freeShipOk && s.Subtotal >= freeShipMin {
		s.FreeShippingApplied = true
		s.Shipping = 0
		record("Free Shipping")
	}
	s.TransactionFee = fees.Fee(s.Subtotal + s.Shipping)
	s.Total = s.Subtotal + s.Shipping + s.TransactionFee
	return s
}
