package payment

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"shop-bot/internal/config"
)

var amountPattern = regexp.MustCompile(`\$[0-9][0-9,]*(?:\.[0-9]{2})?`)

// ReceiptVerifier checks a Cash App web receipt: right host, payment
// addressed to the shop's cashtag, and pulls the amount off the page.
// Verification failing never blocks a purchase; staff fall back to
// eyeballing the receipt.
type ReceiptVerifier struct {
	Client    *http.Client
	Host      string
	Recipient string
}

func NewReceiptVerifier(cfg config.ExternalConfig, shop config.ShopConfig) *ReceiptVerifier {
	return &ReceiptVerifier{
		Client:    &http.Client{Timeout: 10 * time.Second},
		Host:      cfg.ReceiptHost,
		Recipient: shop.PaymentAddresses[MethodCashApp],
	}
}

// Verify fetches the receipt page and returns (amountText, ok). Any
// failure mode returns a human-readable reason in place of the amount.
func (v *ReceiptVerifier) Verify(ctx context.Context, rawURL string) (string, bool) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host != v.Host {
		return "Invalid URL. Please provide a valid Cash App web receipt.", false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "Could not fetch the Cash App web receipt.", false
	}

	resp, err := v.Client.Do(req)
	if err != nil {
		return "Timed out reading Cash App web receipt.", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "Could not fetch the Cash App web receipt.", false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "Could not read the Cash App web receipt.", false
	}
	page := string(body)

	if v.Recipient != "" && !strings.Contains(page, fmt.Sprintf("Payment to %s", v.Recipient)) {
		return "Receipt is not a payment to the shop.", false
	}

	amount := amountPattern.FindString(page)
	if amount == "" {
		return "Could not find an amount on the receipt.", false
	}
	return amount, true
}
