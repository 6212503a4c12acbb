package handlers

import "strconv"

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

func parsePositiveInt(raw string, fallback int) int {
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func parseNonNegativeInt(raw string, fallback int) int {
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

// parseOptionalLimit distinguishes "no limit given" (nil) from an explicit
// limit; the conversation list returns everything when the limit is absent.
func parseOptionalLimit(raw string) *int {
	if raw == "" {
		return nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return nil
	}
	return &value
}
