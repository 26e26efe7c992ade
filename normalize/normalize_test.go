package normalize

import "testing"

func TestAmount(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"$125,880", 125880},
		{"$ 4,709,055", 4709055},
		{"$ 0", 0},
		{"0", 0},
		{"---", 0},
		{"-------", 0},
		{"", 0},
		{"  $ 1,612,140  ", 1612140},
		{"garbage", 0},
		{"$-50", 0},
	}

	for _, tt := range tests {
		if got := Amount(tt.in); got != tt.want {
			t.Errorf("Amount(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestAmountRoundTrip(t *testing.T) {
	values := []int64{0, 1, 999, 1000, 125880, 4709055, 1234567890}
	for _, n := range values {
		if got := Amount(DenormalizeAmount(n)); got != n {
			t.Errorf("Amount(DenormalizeAmount(%d)) = %d, want %d", n, got, n)
		}
	}
}

func TestDenormalizeAmount(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "$ 0"},
		{999, "$ 999"},
		{1000, "$ 1,000"},
		{125880, "$ 125,880"},
		{4709055, "$ 4,709,055"},
	}

	for _, tt := range tests {
		if got := DenormalizeAmount(tt.in); got != tt.want {
			t.Errorf("DenormalizeAmount(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRUT(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12.696.942-2", "12696942-2"},
		{"10,409,306-k", "10409306-K"},
		{"11 119 228-6", "11119228-6"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := RUT(tt.in); got != tt.want {
			t.Errorf("RUT(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"21/10/2025", "2025-10-21"},
		{"01/01/2024", "2024-01-01"},
		{"29/02/2024", "2024-02-29"},
		{"31/02/2025", ""}, // impossible calendar day
		{"2025-10-21", ""},
		{"", ""},
		{"garbage", ""},
	}

	for _, tt := range tests {
		if got := Date(tt.in); got != tt.want {
			t.Errorf("Date(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
