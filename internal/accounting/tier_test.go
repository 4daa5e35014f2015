package accounting_test

import (
	"testing"

	"shop-bot/internal/accounting"

	"github.com/stretchr/testify/assert"
)

func TestTierBoundaries(t *testing.T) {
	tests := []struct {
		spent int64
		want  accounting.TierLevel
	}{
		{0, accounting.TierNone},
		{99, accounting.TierNone},
		{100, accounting.Tier1},
		{249, accounting.Tier1},
		{250, accounting.Tier2},
		{499, accounting.Tier2},
		{500, accounting.Tier3},
		{999, accounting.Tier3},
		{1000, accounting.Tier4},
		{1499, accounting.Tier4},
		{1500, accounting.Tier5},
		{1999, accounting.Tier5},
		{1000000, accounting.Tier5},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, accounting.Tier(tt.spent), "spent=%d", tt.spent)
	}
}

func TestTierMonotonic(t *testing.T) {
	prev := accounting.TierNone
	for spent := int64(0); spent <= 2000; spent += 10 {
		tier := accounting.Tier(spent)
		assert.GreaterOrEqual(t, int(tier), int(prev), "tier regressed at spent=%d", spent)
		prev = tier
	}
}

func TestTierString(t *testing.T) {
	assert.Equal(t, "None", accounting.TierNone.String())
	assert.Equal(t, "Tier 3", accounting.Tier3.String())
}
