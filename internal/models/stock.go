package models

import (
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// StockItem is one purchasable item. Items optionally belong to a
// named set; the set plus name forms the display name staff and
// customers see.
type StockItem struct {
	bun.BaseModel `bun:"table:stock"`

	ID        string    `bun:"id,pk" json:"id"`
	Set       string    `bun:"item_set,nullzero" json:"set,omitempty"`
	Name      string    `bun:"name,notnull" json:"name"`
	Price     int64     `bun:"price,notnull" json:"price"`
	Quantity  int       `bun:"quantity,notnull" json:"quantity"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// DisplayName joins the set and item name for display.
func (i StockItem) DisplayName() string {
	return strings.TrimSpace(i.Set + " " + i.Name)
}

func (i StockItem) InStock() bool {
	return i.Quantity >= 1
}

// StockEntry is an autocomplete row: an item reference with its
// availability marked rather than hidden.
type StockEntry struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	Price      int64  `json:"price"`
	Quantity   int    `json:"quantity"`
	OutOfStock bool   `json:"out_of_stock"`
}

// StockSet groups a set's items for the shop listing, with the price
// of buying the whole set.
type StockSet struct {
	Name     string      `json:"name"`
	SetPrice int64       `json:"set_price"`
	Items    []StockItem `json:"items"`
}
