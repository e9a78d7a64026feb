// Package tier names the sequential natural-language search strategies.
package tier

// Tier identifies which strategy produced a search result.
type Tier string

// Resolution tier constants, in attempt order.
const (
	// Direct matches the raw query as one literal substring.
	Direct Tier = "direct"
	// Enhanced matches patterns expanded from oracle keywords.
	Enhanced Tier = "enhanced"
	// Fallback matches locally generated patterns after an oracle failure.
	Fallback Tier = "fallback"
)

// IsValid checks if the tier is one of the supported values.
func (t Tier) IsValid() bool {
	return t == Direct || t == Enhanced || t == Fallback
}

// String returns the wire form of the tier.
func (t Tier) String() string { return string(t) }
