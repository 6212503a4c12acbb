package utils

import (
	"testing"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"0501234567", "966501234567"},
		{"966501234567", "966501234567"},
		{"+966 50 123 4567", "966501234567"},
		{"(050) 123-4567", "966501234567"},
		{"", ""},
		{"abc", ""},
	}

	for _, tc := range cases {
		if got := NormalizePhone(tc.input); got != tc.expected {
			t.Errorf("NormalizePhone(%q) = %q, expected %q", tc.input, got, tc.expected)
		}
	}
}

func TestNormalizePhoneIdempotent(t *testing.T) {
	inputs := []string{"0501234567", "966501234567", "+1 (555) 010-9999", "", "00501234567"}
	for _, input := range inputs {
		once := NormalizePhone(input)
		twice := NormalizePhone(once)
		if once != twice {
			t.Errorf("NormalizePhone not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}

func TestPhoneVariants(t *testing.T) {
	variants := PhoneVariants("+966501234567")

	expected := map[string]bool{
		"+966501234567": false,
		"966501234567":  false,
		"0501234567":    false,
	}
	for _, v := range variants {
		if _, ok := expected[v]; !ok {
			t.Errorf("unexpected variant %q", v)
			continue
		}
		expected[v] = true
	}
	for v, found := range expected {
		if !found {
			t.Errorf("missing variant %q", v)
		}
	}
}

func TestPhoneVariantsDeduplicates(t *testing.T) {
	variants := PhoneVariants("966501234567")
	seen := make(map[string]int)
	for _, v := range variants {
		seen[v]++
		if seen[v] > 1 {
			t.Errorf("variant %q appears more than once", v)
		}
	}
}

func TestPhoneVariantsEmptyInput(t *testing.T) {
	if variants := PhoneVariants(""); len(variants) != 0 {
		t.Errorf("expected no variants for empty input, got %v", variants)
	}
}
