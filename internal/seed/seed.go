package seed

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/stylekart/stylekart-api/internal/assignment"
	"github.com/stylekart/stylekart-api/internal/models"
)

type criteriaSpec struct {
	PriceMin       *float64 `yaml:"priceMin"`
	PriceMax       *float64 `yaml:"priceMax"`
	MinRating      *float64 `yaml:"minRating"`
	MinReviews     *int     `yaml:"minReviews"`
	HasDiscount    *bool    `yaml:"hasDiscount"`
	DaysSinceAdded *int     `yaml:"daysSinceAdded"`
	CategoryMatch  string   `yaml:"categoryMatch"`
	BrandMatch     []string `yaml:"brandMatch"`
	IsTrending     *bool    `yaml:"isTrending"`
}

type shopSpec struct {
	Slug           string       `yaml:"slug"`
	Name           string       `yaml:"name"`
	Route          string       `yaml:"route"`
	MajorCategory  string       `yaml:"majorCategory"`
	ShopType       string       `yaml:"shopType"`
	ParentShopSlug string       `yaml:"parentShopSlug"`
	Criteria       criteriaSpec `yaml:"criteria"`
	DefaultSort    string       `yaml:"defaultSort"`
	HasSidebar     bool         `yaml:"hasSidebar"`
	HasBottomBar   bool         `yaml:"hasBottomBar"`
	UITheme        string       `yaml:"uiTheme"`
}

type seedFile struct {
	Shops []shopSpec `yaml:"shops"`
}

// Load parses a storefront seed file.
func Load(path string) ([]models.Shop, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(raw)
}

// Parse decodes seed YAML into shop definitions.
func Parse(raw []byte) ([]models.Shop, error) {
	var f seedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	shops := make([]models.Shop, 0, len(f.Shops))
	for _, sp := range f.Shops {
		if sp.Slug == "" || sp.MajorCategory == "" || sp.ShopType == "" {
			return nil, fmt.Errorf("seed shop %q: slug, majorCategory and shopType are required", sp.Slug)
		}
		defaultSort := sp.DefaultSort
		if defaultSort == "" {
			defaultSort = "popular"
		}
		uiTheme := sp.UITheme
		if uiTheme == "" {
			uiTheme = "default"
		}
		shops = append(shops, models.Shop{
			Slug:           sp.Slug,
			Name:           sp.Name,
			Route:          sp.Route,
			MajorCategory:  sp.MajorCategory,
			ShopType:       sp.ShopType,
			ParentShopSlug: sp.ParentShopSlug,
			Criteria: models.Criteria{
				PriceMin:       sp.Criteria.PriceMin,
				PriceMax:       sp.Criteria.PriceMax,
				MinRating:      sp.Criteria.MinRating,
				MinReviews:     sp.Criteria.MinReviews,
				HasDiscount:    sp.Criteria.HasDiscount,
				DaysSinceAdded: sp.Criteria.DaysSinceAdded,
				CategoryMatch:  sp.Criteria.CategoryMatch,
				BrandMatch:     sp.Criteria.BrandMatch,
				IsTrending:     sp.Criteria.IsTrending,
			},
			DefaultSort:  defaultSort,
			HasSidebar:   sp.HasSidebar,
			HasBottomBar: sp.HasBottomBar,
			UITheme:      uiTheme,
		})
	}
	return shops, nil
}

// Apply inserts any seed shop that does not exist yet. Existing shops are
// left untouched so admin edits survive restarts.
func Apply(ctx context.Context, shops assignment.ShopStore, defs []models.Shop, log zerolog.Logger) error {
	created := 0
	for i := range defs {
		def := defs[i]
		err := shops.Create(ctx, &def)
		if errors.Is(err, assignment.ErrDuplicateSlug) {
			continue
		}
		if err != nil {
			return fmt.Errorf("seed shop %q: %w", def.Slug, err)
		}
		created++
	}
	if created > 0 {
		log.Info().Int("created", created).Msg("seeded storefronts")
	}
	return nil
}
