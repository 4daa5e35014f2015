package token_test

import (
	"testing"

	"shop-bot/internal/tickets/token"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDelete(t *testing.T) {
	tok := token.Token{Kind: token.KindDelete, Category: "Purchase", ChannelID: 123456789}
	assert.Equal(t, "category:Purchase:channel:123456789", tok.Encode())
}

func TestEncodeToggle(t *testing.T) {
	open := token.Token{Kind: token.KindToggle, Open: true, ChannelID: 42}
	assert.Equal(t, "open:True:channel:42", open.Encode())

	closed := token.Token{Kind: token.KindToggle, Open: false, ChannelID: 42}
	assert.Equal(t, "open:False:channel:42", closed.Encode())
}

func TestDecodeRoundTrip(t *testing.T) {
	tokens := []token.Token{
		{Kind: token.KindDelete, Category: "Support", ChannelID: 987654321},
		{Kind: token.KindToggle, Open: true, ChannelID: 1},
		{Kind: token.KindToggle, Open: false, ChannelID: 999999999999},
	}

	for _, tok := range tokens {
		decoded, err := token.Decode(tok.Encode())
		assert.NoError(t, err)
		assert.Equal(t, tok, decoded)
	}
}

func TestDecodeMalformed(t *testing.T) {
	bad := []string{
		"",
		"category:Purchase",
		"category:Purchase:channel:notanumber",
		"open:Maybe:channel:42",
		"open:true:channel:42",
		"banana:Purchase:channel:42",
		"category:Purchase:guild:42",
	}

	for _, s := range bad {
		_, err := token.Decode(s)
		assert.Error(t, err, "input %q", s)
	}
}
