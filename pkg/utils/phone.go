package utils

import "strings"

const countryCodePrefix = "966"

// NormalizePhone reduces a raw phone string to the digit-only join key used
// to correlate inbound and outbound messages. A local leading zero is
// rewritten to the country-code form, so "0501234567" and "966501234567"
// produce the same key. It is total (always returns a digit string, possibly
// empty) and idempotent.
//
// Numbers entered with an incomplete country code are not repaired; matching
// them is a data-quality assumption carried over from the message logs.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if strings.HasPrefix(digits, "0") {
		return countryCodePrefix + strings.TrimLeft(digits, "0")
	}
	return digits
}

// PhoneVariants returns every raw spelling worth matching against the
// message logs for one phone number: the original input, its digit-only
// form, the normalized key, and the local zero-prefixed form.
func PhoneVariants(raw string) []string {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	candidates := []string{strings.TrimSpace(raw), digits.String()}
	normalized := NormalizePhone(raw)
	candidates = append(candidates, normalized)
	if strings.HasPrefix(normalized, countryCodePrefix) {
		candidates = append(candidates, "0"+strings.TrimPrefix(normalized, countryCodePrefix))
	}

	seen := make(map[string]struct{}, len(candidates))
	variants := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		if _, ok := seen[candidate]; ok {
			continue
		}
		seen[candidate] = struct{}{}
		variants = append(variants, candidate)
	}
	return variants
}
