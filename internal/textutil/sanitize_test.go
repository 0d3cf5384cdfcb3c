package textutil

import "testing"

func TestSanitizeToken(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"The History Of Lighthouses", "the_history_of_lighthouses"},
		{"a/b:c", "a_b_c"},
		{"  spaced  ", "spaced"},
		{"___", "unknown"},
		{"", "unknown"},
		{"Already-safe_42", "already-safe_42"},
	}

	for _, tc := range cases {
		if got := SanitizeToken(tc.in); got != tc.want {
			t.Errorf("SanitizeToken(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
