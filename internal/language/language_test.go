package language

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"en", "en", true},
		{"ENG", "en", true},
		{" English ", "en", true},
		{"deu", "de", true},
		{"german", "de", true},
		{"klingon", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		got, ok := Normalize(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("Normalize(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("fr"); got != "French" {
		t.Fatalf("DisplayName(fr) = %q", got)
	}
	if got := DisplayName("xx"); got != "XX" {
		t.Fatalf("DisplayName(xx) = %q", got)
	}
	if got := DisplayName(""); got != "Unknown" {
		t.Fatalf("DisplayName(\"\") = %q", got)
	}
}

func TestSupportedIncludesEnglish(t *testing.T) {
	for _, code := range Supported() {
		if code == "en" {
			return
		}
	}
	t.Fatal("Supported() missing en")
}
