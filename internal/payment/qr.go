package payment

import (
	"fmt"

	"shop-bot/internal/config"

	"github.com/skip2/go-qrcode"
)

// QRGenerator renders the configured payment address for a method as
// a QR PNG the front-end attaches to the purchase ticket.
type QRGenerator struct {
	addresses map[string]string
}

func NewQRGenerator(cfg config.ShopConfig) *QRGenerator {
	return &QRGenerator{addresses: cfg.PaymentAddresses}
}

func (q *QRGenerator) GeneratePaymentQR(method string) ([]byte, error) {
	address, ok := q.addresses[method]
	if !ok || address == "" {
		return nil, fmt.Errorf("no payment address configured for %s", method)
	}
	return qrcode.Encode(address, qrcode.Medium, 256)
}
