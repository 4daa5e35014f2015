package accounting

// Discount bounds for the bulk promotion.
const (
	discountStep     = 50
	discountPerStep  = 5
	discountCap      = 50
	discountMinItems = 2
	discountMinSpend = 50
)

// Discount computes the promotional discount for a basket: buying at
// least two items for at least 50 earns 5 off per full 50 of
// subtotal, capped at 50. Amounts are in the smallest currency unit.
func Discount(subtotal int64, itemCount int) int64 {
	if itemCount < discountMinItems || subtotal < discountMinSpend {
		return 0
	}

	discount := (subtotal / discountStep) * discountPerStep
	if discount > discountCap {
		discount = discountCap
	}
	return discount
}
