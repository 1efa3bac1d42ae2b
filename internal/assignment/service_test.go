package assignment

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stylekart/stylekart-api/internal/models"
)

type fakeProductStore struct {
	products map[primitive.ObjectID]*models.Product
	order    []primitive.ObjectID

	failAssignFor map[primitive.ObjectID]bool
}

func newFakeProductStore(products ...*models.Product) *fakeProductStore {
	s := &fakeProductStore{
		products:      map[primitive.ObjectID]*models.Product{},
		failAssignFor: map[primitive.ObjectID]bool{},
	}
	for _, p := range products {
		if p.ID.IsZero() {
			p.ID = primitive.NewObjectID()
		}
		s.products[p.ID] = p
		s.order = append(s.order, p.ID)
	}
	return s
}

func (s *fakeProductStore) FindActive(_ context.Context) ([]models.Product, error) {
	out := []models.Product{}
	for _, id := range s.order {
		if s.products[id].IsActive {
			out = append(out, *s.products[id])
		}
	}
	return out, nil
}

func (s *fakeProductStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (s *fakeProductStore) SetMajorCategory(_ context.Context, id primitive.ObjectID, majorCategory string) error {
	p, ok := s.products[id]
	if !ok {
		return errors.New("product not found")
	}
	p.MajorCategory = majorCategory
	return nil
}

func (s *fakeProductStore) SetAssignedShops(_ context.Context, id primitive.ObjectID, slugs []string) error {
	if s.failAssignFor[id] {
		return errors.New("simulated write failure")
	}
	p, ok := s.products[id]
	if !ok {
		return errors.New("product not found")
	}
	p.AssignedShops = slugs
	return nil
}

type fakeShopStore struct {
	shops []*models.Shop

	// raceOnSlug simulates a concurrent creation: the first Create for this
	// slug inserts a competing record and reports a duplicate.
	raceOnSlug string
}

func newFakeShopStore(shops ...*models.Shop) *fakeShopStore {
	return &fakeShopStore{shops: shops}
}

func (s *fakeShopStore) FindByMajorCategory(_ context.Context, majorCategory string) ([]models.Shop, error) {
	out := []models.Shop{}
	for _, shop := range s.shops {
		if shop.MajorCategory == majorCategory {
			out = append(out, *shop)
		}
	}
	return out, nil
}

func (s *fakeShopStore) FindBySlug(_ context.Context, slug string) (*models.Shop, error) {
	for _, shop := range s.shops {
		if shop.Slug == slug {
			copied := *shop
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeShopStore) Create(_ context.Context, shop *models.Shop) error {
	if s.raceOnSlug == shop.Slug {
		s.raceOnSlug = ""
		winner := *shop
		winner.Name = "winner"
		s.shops = append(s.shops, &winner)
		return fmt.Errorf("shop %q: %w", shop.Slug, ErrDuplicateSlug)
	}
	for _, existing := range s.shops {
		if existing.Slug == shop.Slug {
			return fmt.Errorf("shop %q: %w", shop.Slug, ErrDuplicateSlug)
		}
	}
	copied := *shop
	s.shops = append(s.shops, &copied)
	return nil
}

func newTestService(products *fakeProductStore, shops *fakeShopStore) *Service {
	return NewService(products, shops, zerolog.Nop())
}

func sorted(slugs []string) []string {
	out := append([]string{}, slugs...)
	sort.Strings(out)
	return out
}

func assertSlugs(t *testing.T, got, want []string) {
	t.Helper()
	g, w := sorted(got), sorted(want)
	if len(g) != len(w) {
		t.Fatalf("assigned shops = %v, want %v", got, want)
	}
	for i := range g {
		if g[i] != w[i] {
			t.Fatalf("assigned shops = %v, want %v", got, want)
		}
	}
}

func affordableShopSet() *fakeShopStore {
	return newFakeShopStore(
		&models.Shop{Slug: "affordable", MajorCategory: models.MajorCategoryAffordable,
			ShopType: models.ShopTypePriceBased, Criteria: models.Criteria{PriceMax: f64(2000)}},
		&models.Shop{Slug: "under-999", MajorCategory: models.MajorCategoryAffordable,
			ShopType: models.ShopTypePriceBased, Criteria: models.Criteria{PriceMax: f64(999)}},
	)
}

func TestAssignAffordablePriceTiers(t *testing.T) {
	p := &models.Product{Name: "Basic Tee", Price: 850, IsActive: true}
	products := newFakeProductStore(p)
	svc := newTestService(products, affordableShopSet())

	slugs, err := svc.AssignProductToShops(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}

	assertSlugs(t, slugs, []string{"affordable", "under-999"})
	assertSlugs(t, products.products[p.ID].AssignedShops, []string{"affordable", "under-999"})
	if p.MajorCategory != models.MajorCategoryAffordable {
		t.Errorf("majorCategory = %q, want AFFORDABLE", p.MajorCategory)
	}
}

func TestAssignLuxuryProvisionsCategoryShop(t *testing.T) {
	p := &models.Product{Name: "Chrono", Brand: "Gucci", Category: "Watches", Price: 90000, IsActive: true}
	products := newFakeProductStore(p)
	shops := newFakeShopStore() // no luxury-shop, no category shop yet
	svc := newTestService(products, shops)

	slugs, err := svc.AssignProductToShops(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}

	luxuryShop, _ := shops.FindBySlug(context.Background(), SlugLuxuryShop)
	if luxuryShop == nil {
		t.Fatal("luxury-shop must be auto-created")
	}

	categoryShop, _ := shops.FindBySlug(context.Background(), "luxury-watches")
	if categoryShop == nil {
		t.Fatal("luxury-watches must be auto-created")
	}
	if categoryShop.ShopType != models.ShopTypeCategoryBased {
		t.Errorf("shopType = %q, want CATEGORY_BASED", categoryShop.ShopType)
	}
	if categoryShop.ParentShopSlug != SlugLuxuryShop {
		t.Errorf("parentShopSlug = %q, want luxury-shop", categoryShop.ParentShopSlug)
	}
	if categoryShop.Criteria.CategoryMatch != "watches" {
		t.Errorf("categoryMatch = %q, want watches", categoryShop.Criteria.CategoryMatch)
	}

	assertSlugs(t, slugs, []string{"luxury-shop", "luxury-watches"})
	if p.MajorCategory != models.MajorCategoryLuxury {
		t.Errorf("majorCategory = %q, want LUXURY", p.MajorCategory)
	}
}

func TestAssignBrandForcesLuxuryCorrection(t *testing.T) {
	p := &models.Product{Name: "Scarf", Brand: "Hermes", MajorCategory: models.MajorCategoryAffordable, IsActive: true}
	products := newFakeProductStore(p)
	svc := newTestService(products, newFakeShopStore())

	slugs, err := svc.AssignProductToShops(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}

	if products.products[p.ID].MajorCategory != models.MajorCategoryLuxury {
		t.Error("misclassified branded product must be corrected to LUXURY and persisted")
	}
	if !contains(slugs, SlugLuxuryShop) {
		t.Errorf("branded product must always land in luxury-shop, got %v", slugs)
	}
}

func TestAssignDiscountedFreshProduct(t *testing.T) {
	now := time.Now()
	p := &models.Product{
		Name: "Puffer", Price: 1500, Discount: 15,
		DateAdded: now.AddDate(0, 0, -3), IsActive: true,
	}
	products := newFakeProductStore(p)
	shops := newFakeShopStore(
		&models.Shop{Slug: "affordable", MajorCategory: models.MajorCategoryAffordable,
			ShopType: models.ShopTypePriceBased, Criteria: models.Criteria{PriceMax: f64(2000)}},
		&models.Shop{Slug: "deals", MajorCategory: models.MajorCategoryAffordable,
			ShopType: models.ShopTypeDiscountBased, Criteria: models.Criteria{PriceMax: f64(2000), HasDiscount: b(true)}},
	)
	svc := newTestService(products, shops)

	slugs, err := svc.AssignProductToShops(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}

	assertSlugs(t, slugs, []string{"affordable", "deals", "offers", "fresh-arrival", "todays-deal"})
}

func TestAssignMinReviewsExcludesButHardRulesStillApply(t *testing.T) {
	p := &models.Product{Name: "Mug", Price: 450, Reviews: 5, Rating: 4.8, IsTrending: true, IsActive: true}
	products := newFakeProductStore(p)
	shops := newFakeShopStore(
		&models.Shop{Slug: "community-picks", MajorCategory: models.MajorCategoryAffordable,
			ShopType: models.ShopTypePerformanceBased, Criteria: models.Criteria{MinReviews: i(10)}},
	)
	svc := newTestService(products, shops)

	slugs, err := svc.AssignProductToShops(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}

	if contains(slugs, "community-picks") {
		t.Errorf("product with 5 reviews must not match minReviews 10, got %v", slugs)
	}
	// Hard rules are independent of criteria: price tiers and trending.
	assertSlugs(t, slugs, []string{"affordable", "under-999", "best-sellers", "trending"})
}

func TestAssignTrendingAlwaysIncluded(t *testing.T) {
	luxury := &models.Product{Name: "Belt", Brand: "LV", IsTrending: true, IsActive: true}
	products := newFakeProductStore(luxury)
	svc := newTestService(products, newFakeShopStore())

	slugs, err := svc.AssignProductToShops(context.Background(), luxury)
	if err != nil {
		t.Fatal(err)
	}
	if !contains(slugs, SlugTrending) {
		t.Errorf("trending product must include trending shop regardless of major category, got %v", slugs)
	}
}

func TestAssignIsIdempotent(t *testing.T) {
	p := &models.Product{Name: "Basic Tee", Price: 850, IsActive: true}
	products := newFakeProductStore(p)
	svc := newTestService(products, affordableShopSet())

	first, err := svc.AssignProductToShops(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.AssignProductToShops(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	assertSlugs(t, second, first)
}

func TestAssignOverwritesStaleAssignments(t *testing.T) {
	p := &models.Product{Name: "Basic Tee", Price: 850, IsActive: true,
		AssignedShops: []string{"some-old-shop"}}
	products := newFakeProductStore(p)
	svc := newTestService(products, affordableShopSet())

	slugs, err := svc.AssignProductToShops(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if contains(slugs, "some-old-shop") {
		t.Errorf("assignment must fully replace the previous set, got %v", slugs)
	}
}

func TestEnsureCategoryShopIdempotent(t *testing.T) {
	p := &models.Product{Name: "Chrono", Brand: "Rolex", Category: "Watches", IsActive: true}
	products := newFakeProductStore(p)
	shops := newFakeShopStore()
	svc := newTestService(products, shops)

	first, err := svc.EnsureCategoryShop(context.Background(), p, models.MajorCategoryLuxury)
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.EnsureCategoryShop(context.Background(), p, models.MajorCategoryLuxury)
	if err != nil {
		t.Fatal(err)
	}
	if first == nil || second == nil || first.Slug != second.Slug {
		t.Fatalf("repeated provisioning must return the same shop, got %v and %v", first, second)
	}

	count := 0
	for _, shop := range shops.shops {
		if shop.Slug == "luxury-watches" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("luxury-watches created %d times, want 1", count)
	}
}

func TestEnsureCategoryShopSurvivesCreateRace(t *testing.T) {
	p := &models.Product{Name: "Chrono", Brand: "Rolex", Category: "Watches", IsActive: true}
	products := newFakeProductStore(p)
	shops := newFakeShopStore(
		&models.Shop{Slug: SlugLuxuryShop, MajorCategory: models.MajorCategoryLuxury, ShopType: models.ShopTypeBrandBased},
	)
	shops.raceOnSlug = "luxury-watches"
	svc := newTestService(products, shops)

	shop, err := svc.EnsureCategoryShop(context.Background(), p, models.MajorCategoryLuxury)
	if err != nil {
		t.Fatalf("losing the creation race must not fail the caller: %v", err)
	}
	if shop == nil || shop.Slug != "luxury-watches" {
		t.Fatalf("race loser must resolve to the existing shop, got %v", shop)
	}
	if shop.Name != "winner" {
		t.Errorf("race loser must return the record that won, got %q", shop.Name)
	}
}

func TestEnsureCategoryShopNoOpForAffordable(t *testing.T) {
	p := &models.Product{Name: "Tee", Category: "T-Shirts", IsActive: true}
	products := newFakeProductStore(p)
	shops := newFakeShopStore()
	svc := newTestService(products, shops)

	shop, err := svc.EnsureCategoryShop(context.Background(), p, models.MajorCategoryAffordable)
	if err != nil {
		t.Fatal(err)
	}
	if shop != nil {
		t.Errorf("affordable products must not provision category shops, got %v", shop)
	}
	if len(shops.shops) != 0 {
		t.Errorf("no shops should be created, got %d", len(shops.shops))
	}
}

func TestReassignAllIsolatesFailures(t *testing.T) {
	ps := make([]*models.Product, 5)
	for idx := range ps {
		ps[idx] = &models.Product{
			ID:       primitive.NewObjectID(),
			Name:     fmt.Sprintf("Product %d", idx+1),
			Price:    500,
			IsActive: true,
		}
	}
	products := newFakeProductStore(ps...)
	products.failAssignFor[ps[2].ID] = true
	svc := newTestService(products, affordableShopSet())

	count, err := svc.ReassignAllProducts(context.Background())
	if err != nil {
		t.Fatalf("bulk reassignment must not fail on per-product errors: %v", err)
	}
	if count != 4 {
		t.Errorf("reassigned count = %d, want 4", count)
	}

	for idx, p := range ps {
		stored := products.products[p.ID]
		if idx == 2 {
			if len(stored.AssignedShops) != 0 {
				t.Errorf("failed product must keep its previous assignment, got %v", stored.AssignedShops)
			}
			continue
		}
		if len(stored.AssignedShops) == 0 {
			t.Errorf("product %d must be reassigned", idx+1)
		}
	}
}

func TestReassignAllSkipsInactive(t *testing.T) {
	active := &models.Product{Name: "Live", Price: 100, IsActive: true}
	inactive := &models.Product{Name: "Gone", Price: 100, IsActive: false}
	products := newFakeProductStore(active, inactive)
	svc := newTestService(products, affordableShopSet())

	count, err := svc.ReassignAllProducts(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("reassigned count = %d, want 1", count)
	}
	if len(products.products[inactive.ID].AssignedShops) != 0 {
		t.Error("inactive products must be left alone")
	}
}

func TestReassignProductUnknownIDIsNoOp(t *testing.T) {
	products := newFakeProductStore()
	svc := newTestService(products, newFakeShopStore())

	if err := svc.ReassignProduct(context.Background(), primitive.NewObjectID()); err != nil {
		t.Errorf("unknown product id must be a no-op, got %v", err)
	}
}

func contains(slugs []string, slug string) bool {
	for _, s := range slugs {
		if s == slug {
			return true
		}
	}
	return false
}
