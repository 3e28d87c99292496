package promo

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidOffer wraps per-record validation failures from DecodeOffers.
var ErrInvalidOffer = errors.New("invalid promotional offer")

var validate = validator.New()

// Record is the JSON shape of one promotional offer as stored on the product
// row and exchanged with the storefront. Monetary fields travel as decimal
// strings; percentages as plain numbers (20 means 20% off).
type Record struct {
	Type            string  `json:"type" validate:"required,oneof=percentage fixed_amount buy_x_get_free free_shipping"`
	Label           string  `json:"label,omitempty"`
	DiscountPercent float64 `json:"discountPercent,omitempty" validate:"gte=0,lte=100"`
	DiscountAmount  string  `json:"discountAmount,omitempty"`
	Buy             int     `json:"buy,omitempty" validate:"gte=0"`
	GetFree         int     `json:"getFree,omitempty" validate:"gte=0"`
	MinimumQuantity int     `json:"minimumQuantity,omitempty" validate:"gte=0"`
	MinimumOrder    string  `json:"minimumOrderValue,omitempty"`
}

// ToOffer converts the wire record into the tagged variant the engine
// evaluates. Kind-specific parameters are checked here so the engine can
// assume well-formed offers.
func (r Record) ToOffer() (Offer, error) {
	if err := validate.Struct(r); err != nil {
		return Offer{}, fmt.Errorf("%w: %v", ErrInvalidOffer, err)
	}
	offer := Offer{
		Kind:   r.Type,
		Label:  r.Label,
		MinQty: r.MinimumQuantity,
	}
	switch r.Type {
	case KindPercentage:
		if r.DiscountPercent <= 0 {
			return Offer{}, fmt.Errorf("%w: percentage offer requires discountPercent", ErrInvalidOffer)
		}
		offer.PercentBps = int32(math.Round(r.DiscountPercent * 100))
	case KindFixedAmount:
		offer.Amount = ParseMoney(r.DiscountAmount)
		if offer.Amount <= 0 {
			return Offer{}, fmt.Errorf("%w: fixed_amount offer requires discountAmount", ErrInvalidOffer)
		}
	case KindBuyGetFree:
		if r.Buy <= 0 || r.GetFree <= 0 {
			return Offer{}, fmt.Errorf("%w: buy_x_get_free offer requires buy and getFree", ErrInvalidOffer)
		}
		offer.Buy = r.Buy
		offer.GetFree = r.GetFree
	case KindFreeShipping:
		offer.MinSpend = ParseMoney(r.MinimumOrder)
	}
	return offer, nil
}

// DecodeOffers parses the promotional_offers JSONB payload into engine
// offers. Invalid records are skipped rather than failing the product; the
// joined error reports what was dropped so the caller can log it.
func DecodeOffers(data []byte) ([]Offer, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOffer, err)
	}
	offers := make([]Offer, 0, len(records))
	var errs []error
	for i, rec := range records {
		offer, err := rec.ToOffer()
		if err != nil {
			errs = append(errs, fmt.Errorf("offer %d: %w", i, err))
			continue
		}
		offers = append(offers, offer)
	}
	return offers, errors.Join(errs...)
}

// EncodeOffers serialises engine offers back into the stored JSON shape.
// Used by the seeder and by admin tooling.
func EncodeOffers(offers []Offer) ([]byte, error) {
	records := make([]Record, 0, len(offers))
	for _, offer := range offers {
		rec := Record{
			Type:            offer.Kind,
			Label:           offer.Label,
			Buy:             offer.Buy,
			GetFree:         offer.GetFree,
			MinimumQuantity: offer.MinQty,
		}
		if offer.PercentBps > 0 {
			rec.DiscountPercent = float64(offer.PercentBps) / 100
		}
		if offer.Amount > 0 {
			rec.DiscountAmount = FormatMoney(offer.Amount)
		}
		if offer.MinSpend > 0 {
			rec.MinimumOrder = FormatMoney(offer.MinSpend)
		}
		records = append(records, rec)
	}
	return json.Marshal(records)
}
