package token

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind discriminates the two persistent button tokens attached to
// ticket panels.
type Kind int

const (
	// KindDelete identifies the delete button on a closed ticket.
	KindDelete Kind = iota
	// KindToggle identifies the open/close toggle button.
	KindToggle
)

// Token is the decoded form of a ticket button custom id. Delete
// tokens carry the ticket category; toggle tokens carry the open flag
// the button would transition AWAY from.
type Token struct {
	Kind      Kind
	Category  string
	Open      bool
	ChannelID int64
}

// Encode renders the token in the legacy wire format the deployed
// panels already carry. The format is fixed: changing it would orphan
// every live button.
//
//	delete: category:<category>:channel:<id>
//	toggle: open:<True|False>:channel:<id>
func (t Token) Encode() string {
	switch t.Kind {
	case KindToggle:
		return fmt.Sprintf("open:%s:channel:%d", pythonBool(t.Open), t.ChannelID)
	default:
		return fmt.Sprintf("category:%s:channel:%d", t.Category, t.ChannelID)
	}
}

// Decode parses a button custom id back into a token. The category
// segment may itself contain no colons; channel ids are numeric.
func Decode(s string) (Token, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 4 || parts[2] != "channel" {
		return Token{}, fmt.Errorf("malformed ticket token: %q", s)
	}

	channelID, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil {
		return Token{}, fmt.Errorf("malformed channel id in ticket token %q: %w", s, err)
	}

	switch parts[0] {
	case "category":
		return Token{Kind: KindDelete, Category: parts[1], ChannelID: channelID}, nil
	case "open":
		open, err := parsePythonBool(parts[1])
		if err != nil {
			return Token{}, fmt.Errorf("malformed ticket token %q: %w", s, err)
		}
		return Token{Kind: KindToggle, Open: open, ChannelID: channelID}, nil
	default:
		return Token{}, fmt.Errorf("unknown ticket token prefix: %q", s)
	}
}

// The deployed buttons encode booleans the way the legacy bot printed
// them, with a leading capital.
func pythonBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func parsePythonBool(s string) (bool, error) {
	switch s {
	case "True":
		return true, nil
	case "False":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean segment: %q", s)
	}
}
