package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Ticket categories. Purchase tickets carry a payment payload; the
// rest are plain conversations.
const (
	CategoryPurchase   = "Purchase"
	CategorySupport    = "Support"
	CategoryExclusive  = "Exclusive"
	CategorySell       = "Sell"
	CategoryScamReport = "Scam Report"
	CategoryMiddleman  = "Middleman"
	CategoryDHC        = "DHC"
)

// Categories lists every valid ticket category.
var Categories = []string{
	CategoryPurchase,
	CategorySupport,
	CategoryExclusive,
	CategorySell,
	CategoryScamReport,
	CategoryMiddleman,
	CategoryDHC,
}

func ValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Ticket correlates a conversation channel to a user, category and
// open/closed state. At most one open ticket may exist per
// (user_id, category) pair. For Purchase tickets the payment payload
// (method, reserved item ids, subtotal/total computed at selection
// time) is captured at creation and consumed when the ticket closes.
type Ticket struct {
	bun.BaseModel `bun:"table:tickets"`

	ID        string    `bun:"id,pk" json:"id"`
	ChannelID int64     `bun:"channel_id,notnull,unique" json:"channel_id"`
	UserID    int64     `bun:"user_id,notnull" json:"user_id"`
	Username  string    `bun:"username,notnull" json:"username"`
	Category  string    `bun:"category,notnull" json:"category"`
	Open      bool      `bun:"open,notnull" json:"open"`
	Number    int       `bun:"number,notnull" json:"number"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`

	PaymentMethod string   `bun:"payment_method,nullzero" json:"payment_method,omitempty"`
	ItemIDs       []string `bun:"item_ids,nullzero" json:"item_ids,omitempty"`
	Subtotal      int64    `bun:"subtotal,nullzero" json:"subtotal,omitempty"`
	Total         int64    `bun:"total,nullzero" json:"total,omitempty"`
}

// Actor is the validated identity the command front-end supplies with
// every request: who acted and which roles they hold. The core never
// inspects anything beyond role membership.
type Actor struct {
	UserID   int64   `json:"user_id"`
	Username string  `json:"username"`
	RoleIDs  []int64 `json:"role_ids"`
}

// HasRole reports flat role membership.
func (a Actor) HasRole(roleID int64) bool {
	for _, id := range a.RoleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the actor holds at least one of the
// given roles.
func (a Actor) HasAnyRole(roleIDs []int64) bool {
	for _, id := range roleIDs {
		if a.HasRole(id) {
			return true
		}
	}
	return false
}
