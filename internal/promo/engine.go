package promo

// BogoffDetail records how many free units a buy-X-get-Y-free offer granted
// and from which rule, so fulfilment picks the right count and the UI can
// explain the surplus.
type BogoffDetail struct {
	FreeUnits int
	Buy       int
	GetFree   int
	Label     string
}

// Result is the calculator output. It is ephemeral and recomputed on every
// call; nothing here is persisted.
//
// TotalCost is always EffectivePrice times the paid quantity. TotalQty can
// exceed the paid quantity when a BOGOFF offer grants free units; those
// units are fulfilled but never billed.
type Result struct {
	EffectivePrice Money
	OriginalPrice  Money
	TotalQty       int
	TotalCost      Money
	AppliedOffers  []string
	Bogoff         *BogoffDetail
}

// Calculate prices one line. basePrice is the listed unit price in minor
// units, qty the paid quantity the customer requested. Offers are evaluated
// in order; price-reducing offers combine as best-single-discount-wins (the
// minimum of the competing effective prices), never multiplicatively.
// promoPrice/promoActive are the legacy single promo-price override, which
// participates under the same rule.
//
// Negative inputs coerce to zero rather than erroring so one bad line never
// aborts pricing the rest of the cart.
func Calculate(basePrice Money, qty int, offers []Offer, promoPrice Money, promoActive bool) Result {
	if basePrice < 0 {
		basePrice = 0
	}
	if qty < 0 {
		qty = 0
	}
	res := Result{
		EffectivePrice: basePrice,
		OriginalPrice:  basePrice,
		TotalQty:       qty,
		AppliedOffers:  []string{},
	}

	if promoActive && promoPrice > 0 && promoPrice < basePrice {
		res.EffectivePrice = promoPrice
		res.AppliedOffers = append(res.AppliedOffers, LegacyPromoLabel)
	}

	for _, offer := range offers {
		if qty == 0 || !offer.Qualifies(qty) {
			continue
		}
		switch offer.Kind {
		case KindPercentage:
			if offer.PercentBps <= 0 {
				continue
			}
			candidate := basePrice - (basePrice*Money(offer.PercentBps))/10000
			if candidate < 0 {
				candidate = 0
			}
			if candidate < res.EffectivePrice {
				res.EffectivePrice = candidate
				res.AppliedOffers = append(res.AppliedOffers, offer.DisplayLabel())
			}
		case KindFixedAmount:
			if offer.Amount <= 0 {
				continue
			}
			candidate := basePrice - offer.Amount
			if candidate < 0 {
				candidate = 0
			}
			if candidate < res.EffectivePrice {
				res.EffectivePrice = candidate
				res.AppliedOffers = append(res.AppliedOffers, offer.DisplayLabel())
			}
		case KindBuyGetFree:
			if offer.Buy <= 0 || offer.GetFree <= 0 {
				continue
			}
			free := (qty / offer.Buy) * offer.GetFree
			if free <= 0 {
				continue
			}
			res.TotalQty = qty + free
			label := offer.DisplayLabel()
			res.AppliedOffers = append(res.AppliedOffers, label)
			res.Bogoff = &BogoffDetail{
				FreeUnits: free,
				Buy:       offer.Buy,
				GetFree:   offer.GetFree,
				Label:     label,
			}
		case KindFreeShipping:
			// Resolved order-level by the cart aggregator; a single line
			// cannot know the running subtotal.
		}
	}

	res.TotalCost = res.EffectivePrice * Money(qty)
	return res
}

// FreeShippingThreshold returns the lowest minimum-order-value among the
// qualifying free-shipping offers, and whether any were present. The cart
// aggregator checks the returned threshold against the order subtotal.
func FreeShippingThreshold(offers []Offer, qty int) (Money, bool) {
	var (
		min   Money
		found bool
	)
	for _, offer := range offers {
		if offer.Kind != KindFreeShipping || !offer.Qualifies(qty) {
			continue
		}
		if !found || offer.MinSpend < min {
			min = offer.MinSpend
			found = true
		}
	}
	return min, found
}
