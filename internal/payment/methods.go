package payment

import (
	"fmt"

	"shop-bot/internal/models"
)

// Payment methods offered in the purchase flow. Each maps to exactly
// one contact column on a log row.
const (
	MethodCashApp = "Cash App"
	MethodPayPal  = "PayPal"
	MethodVenmo   = "Venmo"
	MethodStripe  = "Stripe"
	MethodCrypto  = "Crypto"
	MethodLimited = "Limited Items"
)

// Methods lists every accepted payment method.
var Methods = []string{
	MethodCashApp,
	MethodPayPal,
	MethodVenmo,
	MethodStripe,
	MethodCrypto,
	MethodLimited,
}

func ValidMethod(method string) bool {
	for _, m := range Methods {
		if m == method {
			return true
		}
	}
	return false
}

// ApplyInfo populates the single payment contact field keyed by the
// method on a log row.
func ApplyInfo(log *models.PurchaseLog, method, info string) error {
	switch method {
	case MethodCashApp:
		log.CashAppTag = info
	case MethodPayPal:
		log.PayPalEmail = info
	case MethodVenmo:
		log.VenmoUsername = info
	case MethodStripe:
		log.StripeEmail = info
	case MethodCrypto:
		log.CryptoAddress = info
	case MethodLimited:
		log.LimitedItems = info
	default:
		return fmt.Errorf("unknown payment method: %s", method)
	}
	return nil
}
