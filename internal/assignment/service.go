package assignment

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stylekart/stylekart-api/internal/metrics"
	"github.com/stylekart/stylekart-api/internal/models"
)

// ErrDuplicateSlug is returned (wrapped) by ShopStore.Create when another
// shop with the same slug already exists. The service recovers from it by
// re-fetching the existing record.
var ErrDuplicateSlug = errors.New("shop slug already exists")

// Well-known storefront slugs used by the supplementary inclusion rules.
const (
	SlugLuxuryShop   = "luxury-shop"
	SlugAffordable   = "affordable"
	SlugUnder999     = "under-999"
	SlugOffers       = "offers"
	SlugFreshArrival = "fresh-arrival"
	SlugTodaysDeal   = "todays-deal"
	SlugBestSellers  = "best-sellers"
	SlugTrending     = "trending"
)

const (
	affordablePriceCap   = 2000
	under999PriceCap     = 999
	bestSellerPriceCap   = 5000
	bestSellerMinRating  = 4
	bestSellerMinReviews = 5
	freshArrivalMaxDays  = 7
)

// ProductStore is the product persistence surface the engine needs.
// Lookups return (nil, nil) when no document matches.
type ProductStore interface {
	FindActive(ctx context.Context) ([]models.Product, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	SetMajorCategory(ctx context.Context, id primitive.ObjectID, majorCategory string) error
	SetAssignedShops(ctx context.Context, id primitive.ObjectID, slugs []string) error
}

// ShopStore is the shop persistence surface the engine needs. FindBySlug
// returns (nil, nil) when the slug is unknown; Create must report a
// uniqueness conflict with an error matching ErrDuplicateSlug.
type ShopStore interface {
	FindByMajorCategory(ctx context.Context, majorCategory string) ([]models.Shop, error)
	FindBySlug(ctx context.Context, slug string) (*models.Shop, error)
	Create(ctx context.Context, shop *models.Shop) error
}

// Service is the product-to-shop assignment engine: it classifies products
// into a major category, provisions per-category luxury shops on demand,
// evaluates every candidate shop's criteria and persists the resulting
// shop-slug set onto the product.
type Service struct {
	products ProductStore
	shops    ShopStore
	log      zerolog.Logger
	now      func() time.Time
}

func NewService(products ProductStore, shops ShopStore, log zerolog.Logger) *Service {
	return &Service{
		products: products,
		shops:    shops,
		log:      log,
		now:      time.Now,
	}
}

// AssignProductToShops computes and persists the set of shop slugs the
// product belongs to. The product's majorCategory is normalized (and the
// correction persisted) before any matching happens; assignedShops is fully
// replaced, never merged. Database errors propagate to the caller.
func (s *Service) AssignProductToShops(ctx context.Context, p *models.Product) ([]string, error) {
	majorCategory, err := s.normalizeMajorCategory(ctx, p)
	if err != nil {
		return nil, err
	}

	if _, err := s.EnsureCategoryShop(ctx, p, majorCategory); err != nil {
		return nil, err
	}

	shops, err := s.shops.FindByMajorCategory(ctx, majorCategory)
	if err != nil {
		return nil, err
	}

	now := s.now()
	slugs := make([]string, 0, len(shops))
	seen := make(map[string]bool)
	add := func(slug string) {
		if !seen[slug] {
			seen[slug] = true
			slugs = append(slugs, slug)
		}
	}

	for i := range shops {
		if Matches(p, shops[i].Criteria, now) {
			add(shops[i].Slug)
		}
	}

	// Supplementary hard rules: unconditional inclusions that bypass
	// criteria matching.
	switch majorCategory {
	case models.MajorCategoryAffordable:
		hasDiscount := p.HasDiscount()
		fresh := false
		if date := p.AddedAt(); !date.IsZero() {
			fresh = now.Sub(date).Hours()/24 <= freshArrivalMaxDays
		}

		if p.Price <= affordablePriceCap {
			add(SlugAffordable)
		}
		if p.Price <= under999PriceCap {
			add(SlugUnder999)
		}
		if hasDiscount && p.Price <= affordablePriceCap {
			add(SlugOffers)
		}
		if fresh && p.Price <= affordablePriceCap {
			add(SlugFreshArrival)
		}
		if hasDiscount && fresh && p.Price <= affordablePriceCap {
			add(SlugTodaysDeal)
		}
		if p.Price <= bestSellerPriceCap && p.Rating >= bestSellerMinRating && p.Reviews >= bestSellerMinReviews {
			add(SlugBestSellers)
		}

	case models.MajorCategoryLuxury:
		// Every branded product belongs to luxury-shop, criteria or not.
		if p.HasBrand() {
			add(SlugLuxuryShop)
		}
		// Safety check: recreate luxury-shop if it has gone missing.
		luxuryShop, err := s.shops.FindBySlug(ctx, SlugLuxuryShop)
		if err != nil {
			return nil, err
		}
		if luxuryShop == nil {
			s.log.Warn().Msg("luxury-shop does not exist, creating it")
			if _, _, err := s.ensureShop(ctx, luxuryShopDefinition()); err != nil {
				return nil, err
			}
		}
	}

	if p.IsTrending {
		add(SlugTrending)
	}

	if err := s.products.SetAssignedShops(ctx, p.ID, slugs); err != nil {
		return nil, err
	}
	p.AssignedShops = slugs

	return slugs, nil
}

// normalizeMajorCategory is the classification phase: a non-blank brand
// forces LUXURY (correcting any prior misclassification), an unset value is
// derived from brand presence. Corrections are persisted immediately so the
// matching phase and concurrent readers see the normalized value.
func (s *Service) normalizeMajorCategory(ctx context.Context, p *models.Product) (string, error) {
	hasBrand := p.HasBrand()

	switch {
	case hasBrand && p.MajorCategory != models.MajorCategoryLuxury:
		p.MajorCategory = models.MajorCategoryLuxury
	case p.MajorCategory == "":
		p.MajorCategory = models.DeriveMajorCategory(p)
	default:
		return p.MajorCategory, nil
	}

	if err := s.products.SetMajorCategory(ctx, p.ID, p.MajorCategory); err != nil {
		return "", err
	}
	return p.MajorCategory, nil
}

// EnsureCategoryShop guarantees a per-category luxury storefront exists for
// the product's category, creating it (and the umbrella luxury-shop) on
// demand. It is a no-op for non-luxury products or products without a
// category. Idempotent; concurrent creations of the same slug resolve to the
// existing shop.
func (s *Service) EnsureCategoryShop(ctx context.Context, p *models.Product, majorCategory string) (*models.Shop, error) {
	if majorCategory != models.MajorCategoryLuxury || p.Category == "" {
		return nil, nil
	}

	categorySlug := CategorySlug(p.Category)
	shopSlug := "luxury-" + categorySlug

	shop, err := s.shops.FindBySlug(ctx, shopSlug)
	if err != nil {
		return nil, err
	}
	if shop != nil {
		return shop, nil
	}

	// The umbrella shop must exist before any category shop references it.
	parent, err := s.shops.FindBySlug(ctx, SlugLuxuryShop)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		s.log.Warn().Msg("parent shop luxury-shop does not exist, creating it first")
		if _, _, err := s.ensureShop(ctx, luxuryShopDefinition()); err != nil {
			return nil, err
		}
	}

	categoryForMatch := normalizeCategoryForMatch(p.Category)
	shop, created, err := s.ensureShop(ctx, &models.Shop{
		Slug:           shopSlug,
		Name:           "Luxury " + p.Category,
		Route:          "/luxury/shop/" + categorySlug,
		MajorCategory:  models.MajorCategoryLuxury,
		ShopType:       models.ShopTypeCategoryBased,
		ParentShopSlug: SlugLuxuryShop,
		Criteria:       models.Criteria{CategoryMatch: categoryForMatch},
		DefaultSort:    "newest",
		UITheme:        "luxury",
	})
	if err != nil {
		return nil, err
	}
	if created {
		metrics.ShopsProvisioned.Inc()
		s.log.Info().Str("slug", shopSlug).Str("category", p.Category).Msg("created category shop")
	}
	return shop, nil
}

// ensureShop creates the shop or, on a slug conflict, re-fetches and returns
// the record that won the race. Callers never need to distinguish which
// happened beyond the created flag.
func (s *Service) ensureShop(ctx context.Context, shop *models.Shop) (*models.Shop, bool, error) {
	err := s.shops.Create(ctx, shop)
	if err == nil {
		return shop, true, nil
	}
	if !errors.Is(err, ErrDuplicateSlug) {
		return nil, false, err
	}

	existing, ferr := s.shops.FindBySlug(ctx, shop.Slug)
	if ferr != nil {
		return nil, false, ferr
	}
	if existing == nil {
		// Lost the race and the winner vanished; surface the original error.
		return nil, false, err
	}
	return existing, false, nil
}

// ReassignProduct recomputes the shop assignment for a single product, e.g.
// after a review changed its rating. Unknown ids are a no-op.
func (s *Service) ReassignProduct(ctx context.Context, id primitive.ObjectID) error {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return nil
	}
	_, err = s.AssignProductToShops(ctx, p)
	return err
}

// ReassignAllProducts sweeps every active product through the orchestrator.
// Per-product failures are logged and counted but never abort the batch; the
// return value is the number of products reassigned successfully.
func (s *Service) ReassignAllProducts(ctx context.Context) (int, error) {
	products, err := s.products.FindActive(ctx)
	if err != nil {
		return 0, err
	}

	reassigned := 0
	failed := 0
	for i := range products {
		p := &products[i]

		if p.MajorCategory == "" {
			p.MajorCategory = models.DeriveMajorCategory(p)
			if err := s.products.SetMajorCategory(ctx, p.ID, p.MajorCategory); err != nil {
				failed++
				metrics.ReassignmentErrors.Inc()
				s.log.Error().Err(err).
					Str("productId", p.ID.Hex()).
					Str("name", p.Name).
					Msg("failed to set major category")
				continue
			}
		}

		if _, err := s.AssignProductToShops(ctx, p); err != nil {
			failed++
			metrics.ReassignmentErrors.Inc()
			s.log.Error().Err(err).
				Str("productId", p.ID.Hex()).
				Str("name", p.Name).
				Msg("failed to reassign product")
			continue
		}
		reassigned++
		metrics.ProductsReassigned.Inc()
	}

	s.log.Info().Int("reassigned", reassigned).Int("failed", failed).Msg("product reassignment completed")
	return reassigned, nil
}

func luxuryShopDefinition() *models.Shop {
	return &models.Shop{
		Slug:          SlugLuxuryShop,
		Name:          "Luxury Collection",
		Route:         "/luxury/shop",
		MajorCategory: models.MajorCategoryLuxury,
		ShopType:      models.ShopTypeBrandBased,
		DefaultSort:   "newest",
		UITheme:       "luxury",
	}
}

// normalizeCategoryForMatch lowercases and strips apostrophes so the
// provisioned shop's categoryMatch lines up with the fuzzy matcher.
func normalizeCategoryForMatch(category string) string {
	s := strings.ToLower(category)
	s = strings.ReplaceAll(s, "'", "")
	return strings.TrimSpace(s)
}
