package textutil

import "testing"

func TestPhonesMatch(t *testing.T) {
	cases := []struct {
		name string
		a, b string
		want bool
	}{
		{"international vs local suffix", "+44 7700 900123", "07700900123", true},
		{"identical", "+40700000001", "+40700000001", true},
		{"too short", "12345", "912345", false},
		{"unrelated numbers", "+40700000001", "+40799999999", false},
		{"empty", "", "+40700000001", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PhonesMatch(tc.a, tc.b); got != tc.want {
				t.Errorf("PhonesMatch(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestDigitsOnly(t *testing.T) {
	if got := DigitsOnly("+44 (7700) 900-123"); got != "447700900123" {
		t.Errorf("DigitsOnly = %q", got)
	}
}
