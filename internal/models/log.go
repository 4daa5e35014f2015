package models

import (
	"time"

	"github.com/uptrace/bun"
)

// PurchaseLog is one immutable ledger row: a single unit of a single
// item sold to a customer. The item's name and price are snapshotted
// at sale time so later stock edits never rewrite history. Exactly one
// payment contact field is set, matching the method the customer chose.
type PurchaseLog struct {
	bun.BaseModel `bun:"table:logs"`

	ID        string `bun:"id,pk" json:"id"`
	UserID    int64  `bun:"user_id,notnull" json:"user_id"`
	Username  string `bun:"username,notnull" json:"username"`
	ItemSet   string `bun:"item_set,nullzero" json:"item_set,omitempty"`
	ItemName  string `bun:"item_name,notnull" json:"item_name"`
	ItemPrice int64  `bun:"item_price,notnull" json:"item_price"`

	CashAppTag    string `bun:"cash_app_tag,nullzero" json:"cash_app_tag,omitempty"`
	PayPalEmail   string `bun:"paypal_email,nullzero" json:"paypal_email,omitempty"`
	VenmoUsername string `bun:"venmo_username,nullzero" json:"venmo_username,omitempty"`
	StripeEmail   string `bun:"stripe_email,nullzero" json:"stripe_email,omitempty"`
	CryptoAddress string `bun:"crypto_address,nullzero" json:"crypto_address,omitempty"`
	LimitedItems  string `bun:"limited_items,nullzero" json:"limited_items,omitempty"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// CustomerSummary is the derived lifetime view of a customer. Always
// recomputed from the full log history, never stored.
type CustomerSummary struct {
	UserID       int64 `json:"user_id"`
	TotalSpent   int64 `json:"total_spent"`
	Transactions int   `json:"transactions"`
}
