package symbols

import "strings"

// ParseList parses a comma-separated ticker list into a clean, deduplicated
// symbol slice. Whitespace is trimmed and symbols are upper-cased.
func ParseList(list string) []string {
	parts := strings.Split(list, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.ToUpper(strings.TrimSpace(p))
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return dedup(out)
}

// ForMarket returns the universe for a market name ("india" or "usa").
func ForMarket(market string) []string {
	switch strings.ToLower(market) {
	case "usa":
		return GetUniverse(UniverseUSA)
	case "india":
		return GetUniverse(UniverseIndia)
	default:
		return nil
	}
}
