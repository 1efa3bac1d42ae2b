package assignment

import "testing"

func TestCategorySlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Women's Wear", "womens-wear"},
		{"Watches", "watches"},
		{"Home & Decor", "home-decor"},
		{"  Kurta Sets  ", "kurta-sets"},
		{"T-Shirts", "t-shirts"},
		{"Bags---Purses", "bags-purses"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := CategorySlug(tt.in); got != tt.want {
			t.Errorf("CategorySlug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
