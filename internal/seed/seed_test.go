package seed

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/stylekart/stylekart-api/internal/assignment"
	"github.com/stylekart/stylekart-api/internal/models"
)

const sampleSeed = `
shops:
  - slug: under-999
    name: Under ₹999
    route: /under-999
    majorCategory: AFFORDABLE
    shopType: PRICE_BASED
    criteria:
      priceMax: 999
    hasSidebar: true
  - slug: luxury-shop
    name: Luxury Collection
    route: /luxury/shop
    majorCategory: LUXURY
    shopType: BRAND_BASED
    criteria: {}
    defaultSort: newest
    uiTheme: luxury
  - slug: featured-brands
    name: Featured Brands
    route: /featured-brands
    majorCategory: AFFORDABLE
    shopType: BRAND_BASED
    criteria:
      priceMax: 5000
      brandMatch: [Nike, Adidas]
`

func TestParse(t *testing.T) {
	shops, err := Parse([]byte(sampleSeed))
	if err != nil {
		t.Fatal(err)
	}
	if len(shops) != 3 {
		t.Fatalf("parsed %d shops, want 3", len(shops))
	}

	under := shops[0]
	if under.Slug != "under-999" || under.MajorCategory != models.MajorCategoryAffordable {
		t.Errorf("unexpected first shop: %+v", under)
	}
	if under.Criteria.PriceMax == nil || *under.Criteria.PriceMax != 999 {
		t.Errorf("priceMax = %v, want 999", under.Criteria.PriceMax)
	}
	if under.Criteria.PriceMin != nil {
		t.Error("unset criteria fields must stay nil")
	}
	if under.DefaultSort != "popular" {
		t.Errorf("defaultSort default = %q, want popular", under.DefaultSort)
	}
	if !under.HasSidebar {
		t.Error("hasSidebar must be parsed")
	}

	luxury := shops[1]
	if !luxury.Criteria.IsEmpty() {
		t.Errorf("luxury-shop criteria must be empty, got %+v", luxury.Criteria)
	}
	if luxury.UITheme != "luxury" || luxury.DefaultSort != "newest" {
		t.Errorf("unexpected luxury shop: %+v", luxury)
	}

	brands := shops[2]
	if len(brands.Criteria.BrandMatch) != 2 || brands.Criteria.BrandMatch[0] != "Nike" {
		t.Errorf("brandMatch = %v", brands.Criteria.BrandMatch)
	}
}

func TestParseRejectsIncompleteShop(t *testing.T) {
	_, err := Parse([]byte("shops:\n  - slug: broken\n"))
	if err == nil {
		t.Fatal("shops without majorCategory/shopType must be rejected")
	}
}

type memShopStore struct {
	created  []string
	existing map[string]bool
}

func (s *memShopStore) FindByMajorCategory(context.Context, string) ([]models.Shop, error) {
	return nil, nil
}

func (s *memShopStore) FindBySlug(_ context.Context, slug string) (*models.Shop, error) {
	if s.existing[slug] {
		return &models.Shop{Slug: slug}, nil
	}
	return nil, nil
}

func (s *memShopStore) Create(_ context.Context, shop *models.Shop) error {
	if s.existing[shop.Slug] {
		return fmt.Errorf("shop %q: %w", shop.Slug, assignment.ErrDuplicateSlug)
	}
	s.existing[shop.Slug] = true
	s.created = append(s.created, shop.Slug)
	return nil
}

func TestApplySkipsExistingShops(t *testing.T) {
	defs, err := Parse([]byte(sampleSeed))
	if err != nil {
		t.Fatal(err)
	}

	store := &memShopStore{existing: map[string]bool{"luxury-shop": true}}
	if err := Apply(context.Background(), store, defs, zerolog.Nop()); err != nil {
		t.Fatal(err)
	}

	if len(store.created) != 2 {
		t.Fatalf("created %v, want the 2 missing shops only", store.created)
	}
	for _, slug := range store.created {
		if slug == "luxury-shop" {
			t.Error("existing shops must not be recreated")
		}
	}

	// Second run is a no-op.
	store.created = nil
	if err := Apply(context.Background(), store, defs, zerolog.Nop()); err != nil {
		t.Fatal(err)
	}
	if len(store.created) != 0 {
		t.Errorf("second apply created %v, want none", store.created)
	}
}
