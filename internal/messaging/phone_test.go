package messaging

import "testing"

func TestNormalizeE164(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"+15551230001", "+15551230001"},
		{"  +1 (555) 123-0001 ", "+15551230001"},
		{"15551230001", "+15551230001"},
		{"whatsapp:+15551230001", "+15551230001"},
		{"", ""},
		{"   ", ""},
		{"no digits", ""},
	}
	for _, tc := range cases {
		if got := NormalizeE164(tc.in); got != tc.want {
			t.Fatalf("NormalizeE164(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
