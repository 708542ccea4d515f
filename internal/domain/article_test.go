package domain

import "testing"

func TestNormalizeCategory(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"tech", CategoryTech},
		{"world", CategoryWorld},
		{"society", CategorySociety},
		{"policy", CategoryPolicy},
		{"finance", CategoryUnknown},
		{"Tech", CategoryUnknown},
		{"", CategoryUnknown},
	}

	for _, tc := range cases {
		if got := NormalizeCategory(tc.in); got != tc.want {
			t.Errorf("NormalizeCategory(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
