package models

import (
	"testing"
	"time"
)

func TestDeriveMajorCategory(t *testing.T) {
	tests := []struct {
		brand string
		want  string
	}{
		{"Gucci", MajorCategoryLuxury},
		{"", MajorCategoryAffordable},
		{"   ", MajorCategoryAffordable},
		{" Rolex ", MajorCategoryLuxury},
	}
	for _, tt := range tests {
		p := Product{Brand: tt.brand}
		if got := DeriveMajorCategory(&p); got != tt.want {
			t.Errorf("DeriveMajorCategory(brand=%q) = %q, want %q", tt.brand, got, tt.want)
		}
	}
}

func TestHasDiscount(t *testing.T) {
	tests := []struct {
		name string
		p    Product
		want bool
	}{
		{"percentage discount", Product{Discount: 10}, true},
		{"original price higher", Product{Price: 80, OriginalPrice: 100}, true},
		{"original price equal", Product{Price: 100, OriginalPrice: 100}, false},
		{"no discount", Product{Price: 100}, false},
	}
	for _, tt := range tests {
		if got := tt.p.HasDiscount(); got != tt.want {
			t.Errorf("%s: HasDiscount() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestAddedAt(t *testing.T) {
	dateAdded := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	createdAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	both := Product{DateAdded: dateAdded, CreatedAt: createdAt}
	if got := both.AddedAt(); !got.Equal(dateAdded) {
		t.Errorf("AddedAt() = %v, want dateAdded %v", got, dateAdded)
	}

	onlyCreated := Product{CreatedAt: createdAt}
	if got := onlyCreated.AddedAt(); !got.Equal(createdAt) {
		t.Errorf("AddedAt() = %v, want createdAt %v", got, createdAt)
	}

	neither := Product{}
	if !neither.AddedAt().IsZero() {
		t.Error("AddedAt() must be zero when no date is set")
	}
}
