package config

import "testing"

func TestBoolEnvOrDefault(t *testing.T) {
	t.Setenv("BOOL_TEST", "")
	if got := boolEnvOrDefault("BOOL_TEST", true); !got {
		t.Fatalf("expected default true when unset")
	}

	cases := []struct {
		val      string
		expected bool
	}{
		{"true", true},
		{"TRUE", true},
		{"1", true},
		{"yes", true},
		{"false", false},
		{"FALSE", false},
		{"0", false},
		{"no", false},
		{"maybe", true}, // falls back to default on unknown
	}

	for _, tc := range cases {
		t.Setenv("BOOL_TEST", tc.val)
		if got := boolEnvOrDefault("BOOL_TEST", true); got != tc.expected {
			t.Fatalf("expected %v for %s, got %v", tc.expected, tc.val, got)
		}
	}
}

func TestFloatEnvOrDefault(t *testing.T) {
	cases := []struct {
		val      string
		expected float64
	}{
		{"", 1.5},
		{"2.25", 2.25},
		{" 3 ", 3},
		{"0", 1.5},
		{"-1", 1.5},
		{"NaN", 1.5},
		{"+Inf", 1.5},
		{"abc", 1.5},
	}
	for _, tc := range cases {
		t.Setenv("FLOAT_TEST", tc.val)
		if got := floatEnvOrDefault("FLOAT_TEST", 1.5); got != tc.expected {
			t.Fatalf("expected %v for %q, got %v", tc.expected, tc.val, got)
		}
	}
}

func TestIntEnvOrDefaultRejectsNonPositive(t *testing.T) {
	t.Setenv("INT_TEST", "-4")
	if got := intEnvOrDefault("INT_TEST", 7); got != 7 {
		t.Fatalf("expected default for negative value, got %d", got)
	}
	t.Setenv("INT_TEST", "12")
	if got := intEnvOrDefault("INT_TEST", 7); got != 12 {
		t.Fatalf("expected 12, got %d", got)
	}
}
