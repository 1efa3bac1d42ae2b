package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Shop types. Descriptive only; matching is driven entirely by Criteria.
const (
	ShopTypePriceBased       = "PRICE_BASED"
	ShopTypePerformanceBased = "PERFORMANCE_BASED"
	ShopTypeDiscountBased    = "DISCOUNT_BASED"
	ShopTypeTimeBased        = "TIME_BASED"
	ShopTypeTrendingBased    = "TRENDING_BASED"
	ShopTypeCategoryBased    = "CATEGORY_BASED"
	ShopTypeBrandBased       = "BRAND_BASED"
	ShopTypeEditorial        = "EDITORIAL"
)

// Criteria is a shop's declarative matching rule-set. Every field is
// optional; an absent field means the corresponding check is skipped, and a
// fully empty Criteria matches every product. Optional scalars are pointers
// so that "not set" and "set to zero/false" stay distinguishable.
type Criteria struct {
	PriceMin       *float64 `json:"priceMin,omitempty" bson:"priceMin,omitempty"`
	PriceMax       *float64 `json:"priceMax,omitempty" bson:"priceMax,omitempty"`
	MinRating      *float64 `json:"minRating,omitempty" bson:"minRating,omitempty"`
	MinReviews     *int     `json:"minReviews,omitempty" bson:"minReviews,omitempty"`
	HasDiscount    *bool    `json:"hasDiscount,omitempty" bson:"hasDiscount,omitempty"`
	DaysSinceAdded *int     `json:"daysSinceAdded,omitempty" bson:"daysSinceAdded,omitempty"`
	CategoryMatch  string   `json:"categoryMatch,omitempty" bson:"categoryMatch,omitempty"`
	BrandMatch     []string `json:"brandMatch,omitempty" bson:"brandMatch,omitempty"`
	IsTrending     *bool    `json:"isTrending,omitempty" bson:"isTrending,omitempty"`
}

// IsEmpty reports whether no rule is set at all.
func (c Criteria) IsEmpty() bool {
	return c.PriceMin == nil &&
		c.PriceMax == nil &&
		c.MinRating == nil &&
		c.MinReviews == nil &&
		c.HasDiscount == nil &&
		c.DaysSinceAdded == nil &&
		c.CategoryMatch == "" &&
		len(c.BrandMatch) == 0 &&
		c.IsTrending == nil
}

// Shop is a virtual, rule-defined storefront. The slug is the stable
// identifier used everywhere; products reference shops by slug only.
type Shop struct {
	ID             primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Slug           string             `json:"slug" bson:"slug"`
	Name           string             `json:"name" bson:"name"`
	Route          string             `json:"route" bson:"route"`
	MajorCategory  string             `json:"majorCategory" bson:"majorCategory"`
	ShopType       string             `json:"shopType" bson:"shopType"`
	ParentShopSlug string             `json:"parentShopSlug,omitempty" bson:"parentShopSlug,omitempty"`
	Criteria       Criteria           `json:"criteria" bson:"criteria"`
	DefaultSort    string             `json:"defaultSort" bson:"defaultSort"`
	HasSidebar     bool               `json:"hasSidebar" bson:"hasSidebar"`
	HasBottomBar   bool               `json:"hasBottomBar" bson:"hasBottomBar"`
	UITheme        string             `json:"uiTheme" bson:"uiTheme"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`
}
