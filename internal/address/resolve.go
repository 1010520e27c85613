// Package address resolves free-text Taiwanese street addresses into
// (region, sub-region, remainder) against a fixed gazetteer. The same
// resolver backs both the batch parsers and the serve mutation endpoint.
package address

import "strings"

// Resolution is the outcome of resolving one address string. Region and
// SubRegion are empty when neither a match nor a fallback was available.
type Resolution struct {
	Region    string
	SubRegion string
	Remainder string
}

// Resolve parses an address of the form <region><sub-region><street> with no
// separators between the tokens. The longest gazetteer entry that is a
// literal prefix of the address wins; the sub-region is then matched
// immediately after it as 1-4 non-suffix runes followed by a single
// administrative-unit suffix rune (greedy, first suffix wins). When no region
// prefix is recognized the caller-supplied fallbacks are returned unchanged.
func Resolve(addr, fallbackRegion, fallbackSubRegion string) Resolution {
	remaining := strings.TrimSpace(addr)
	if remaining == "" {
		return Resolution{Region: fallbackRegion, SubRegion: fallbackSubRegion}
	}

	var region string
	var matched RegionEntry
	for _, entry := range gazetteer {
		if strings.HasPrefix(remaining, entry.Name) && len(entry.Name) > len(matched.Name) {
			matched = entry
		}
	}
	if matched.Name != "" {
		region = matched.Canonical
		remaining = remaining[len(matched.Name):]
	}

	var subRegion string
	if region != "" && remaining != "" {
		if token := matchSubRegion(remaining); token != "" {
			subRegion = token
			remaining = remaining[len(token):]
		}
	}

	if region == "" && fallbackRegion != "" {
		region = fallbackRegion
	}
	if subRegion == "" && fallbackSubRegion != "" {
		subRegion = fallbackSubRegion
	}

	return Resolution{
		Region:    region,
		SubRegion: subRegion,
		Remainder: strings.TrimSpace(remaining),
	}
}

// matchSubRegion returns the leading sub-region token of s, or "" when the
// first 1-4 runes do not terminate in a unit suffix. The match does not
// backtrack: a suffix rune inside the name range ends the token immediately.
func matchSubRegion(s string) string {
	runes := []rune(s)
	for i := 0; i < len(runes) && i < 5; i++ {
		if isSubRegionSuffix(runes[i]) {
			if i == 0 {
				return ""
			}
			return string(runes[:i+1])
		}
	}
	return ""
}

// NormalizeRegion canonicalizes alternate glyphs in a region name (台 → 臺)
// and collapses renamed divisions to their current name (桃園縣 → 桃園市).
// Normalizing an already-canonical name is a no-op.
func NormalizeRegion(name string) string {
	if name == "" {
		return ""
	}
	name = strings.ReplaceAll(name, "台", "臺")
	for _, entry := range gazetteer {
		if entry.Name == name {
			return entry.Canonical
		}
	}
	return name
}

// NormalizeSubRegion trims surrounding whitespace from a sub-region name.
func NormalizeSubRegion(name string) string {
	return strings.TrimSpace(name)
}

// EnsureUnitSuffix appends 區 to a bare district name that lacks any
// administrative-unit suffix. Sources that publish only the district stem
// (e.g. 內湖 instead of 內湖區) go through this before resolution.
func EnsureUnitSuffix(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	runes := []rune(name)
	if isSubRegionSuffix(runes[len(runes)-1]) {
		return name
	}
	return name + "區"
}
