package cart

import (
	"fmt"

	"github.com/noven-dev/backend-wholesale/internal/db"
	"github.com/noven-dev/backend-wholesale/internal/pricing"
	"github.com/noven-dev/backend-wholesale/internal/promo"
)

// validateLine checks selling format, minimum order quantity, and stock for
// a requested line. Unit and pallet formats carry independent MOQ and stock.
func validateLine(p db.Product, format string, qty int) error {
	switch pricing.SellingFormat(format) {
	case pricing.FormatUnits:
		if p.SellingFormat == string(pricing.FormatPallets) {
			return fmt.Errorf("product sold in pallets only: %w", ErrInvalidInput)
		}
		if moq := int(p.Moq); moq > 0 && qty < moq {
			return fmt.Errorf("minimum order quantity is %d: %w", moq, ErrInvalidInput)
		}
		if qty > int(p.Stock) {
			return fmt.Errorf("insufficient stock: %w", ErrInvalidInput)
		}
	case pricing.FormatPallets:
		if !p.PalletPrice.Valid {
			return fmt.Errorf("product not sold in pallets: %w", ErrInvalidInput)
		}
		if moq := int(p.PalletMoq); moq > 0 && qty < moq {
			return fmt.Errorf("minimum pallet order is %d: %w", moq, ErrInvalidInput)
		}
		if qty > int(p.PalletStock) {
			return fmt.Errorf("insufficient pallet stock: %w", ErrInvalidInput)
		}
	default:
		return fmt.Errorf("unknown selling format %q: %w", format, ErrInvalidInput)
	}
	return nil
}

// snapshotPrice picks the display price stored on the cart line. Quotes and
// checkout ignore it and re-price from the product row.
func snapshotPrice(p db.Product, format string) int64 {
	if pricing.SellingFormat(format) == pricing.FormatPallets {
		if p.PalletPrice.Valid {
			return promo.ParseMoney(p.PalletPrice.String)
		}
		return 0
	}
	return promo.ParseMoney(p.Price)
}
