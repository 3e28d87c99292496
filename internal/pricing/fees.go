package pricing

// FeeSchedule describes the card-processing transaction fee applied on top
// of subtotal plus shipping. The same schedule is used for the storefront
// preview and the authoritative charge.
type FeeSchedule struct {
	RateBps int   // proportional part in basis points
	Fixed   Money // fixed part in minor units
}

// DefaultFees is the platform schedule: 5.5% plus 0.50.
var DefaultFees = FeeSchedule{RateBps: 550, Fixed: 50}

// Fee computes the transaction fee for the given payable amount. A zero or
// negative amount carries no fee: an empty cart is never charged the fixed
// part.
func (f FeeSchedule) Fee(amount Money) Money {
	if amount <= 0 {
		return 0
	}
	return (amount*Money(f.RateBps))/10000 + f.Fixed
}

// ChargeTotal returns the final amount to charge for the given subtotal and
// shipping cost, fee included.
func (f FeeSchedule) ChargeTotal(subtotal, shipping Money) Money {
	if subtotal < 0 {
		subtotal = 0
	}
	if shipping < 0 {
		shipping = 0
	}
	return subtotal + shipping + f.Fee(subtotal+shipping)
}
