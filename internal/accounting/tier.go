package accounting

import "fmt"

// TierLevel is a loyalty level unlocked by cumulative lifetime spend.
type TierLevel int

const (
	TierNone TierLevel = iota
	Tier1
	Tier2
	Tier3
	Tier4
	Tier5
)

// tierThresholds maps each tier to the minimum lifetime spend that
// unlocks it, in the smallest currency unit. Thresholds are cumulative
// and monotonic.
var tierThresholds = []struct {
	level     TierLevel
	threshold int64
}{
	{Tier1, 100},
	{Tier2, 250},
	{Tier3, 500},
	{Tier4, 1000},
	{Tier5, 1500},
}

// Tier returns the highest tier whose threshold the given lifetime
// spend meets, or TierNone below the first threshold.
func Tier(totalSpent int64) TierLevel {
	tier := TierNone
	for _, t := range tierThresholds {
		if totalSpent >= t.threshold {
			tier = t.level
		}
	}
	return tier
}

func (t TierLevel) String() string {
	if t == TierNone {
		return "None"
	}
	return fmt.Sprintf("Tier %d", int(t))
}
