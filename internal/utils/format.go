package utils

import (
	"fmt"
	"strings"
)

// FormatPrice renders an amount in the smallest currency unit as
// "$1,234" for chat display.
func FormatPrice(amount int64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	digits := fmt.Sprintf("%d", amount)
	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)

	formatted := "$" + strings.Join(groups, ",")
	if negative {
		return "-" + formatted
	}
	return formatted
}

// TicketChannelName builds the conversation channel name for a
// ticket: a status prefix, the first five characters of the username
// and a zero-padded sequence number.
func TicketChannelName(open bool, username string, number int) string {
	status := "ticket"
	if !open {
		status = "closed"
	}

	// Truncate by runes; usernames are not ASCII-only and a byte
	// slice could split a multibyte character.
	short := []rune(username)
	if len(short) > 5 {
		short = short[:5]
	}

	return fmt.Sprintf("%s-%s-%04d", status, string(short), number)
}
