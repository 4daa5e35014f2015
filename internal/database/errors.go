package database

import "errors"

// Sentinel errors for the ledger-mutating operations. Services wrap
// these with context; the API layer maps them to status codes.
var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrItemNotFound     = errors.New("stock item not found")
	ErrItemExists       = errors.New("stock item already exists")
	ErrOutOfStock       = errors.New("item out of stock")
	ErrTicketNotFound   = errors.New("ticket not found")
	ErrDuplicateTicket  = errors.New("open ticket already exists")
)
