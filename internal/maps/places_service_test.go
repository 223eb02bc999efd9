package maps

import "testing"

func TestContainsAny(t *testing.T) {
	cases := []struct {
		name     string
		keywords []string
		want     bool
	}{
		{"Louvre Museum Gift Shop", []string{"gift shop"}, true},
		{"Louvre Museum", []string{"gift shop", ""}, false},
		{"Cafe de Flore", nil, false},
	}
	for _, tc := range cases {
		if got := containsAny(tc.name, tc.keywords); got != tc.want {
			t.Fatalf("containsAny(%q, %v) = %v, want %v", tc.name, tc.keywords, got, tc.want)
		}
	}
}
