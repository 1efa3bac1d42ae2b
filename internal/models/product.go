package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Major category values. A product's major category gates which shops it can
// ever join: branded products are LUXURY, everything else is AFFORDABLE.
const (
	MajorCategoryLuxury     = "LUXURY"
	MajorCategoryAffordable = "AFFORDABLE"
)

type Product struct {
	ID            primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name          string             `json:"name" bson:"name"`
	Description   string             `json:"description" bson:"description"`
	Price         float64            `json:"price" bson:"price"`
	OriginalPrice float64            `json:"originalPrice,omitempty" bson:"originalPrice,omitempty"`
	Discount      float64            `json:"discount" bson:"discount"`
	Category      string             `json:"category" bson:"category"`
	Subcategory   string             `json:"subcategory,omitempty" bson:"subcategory,omitempty"`
	ProductType   string             `json:"productType,omitempty" bson:"productType,omitempty"`
	Brand         string             `json:"brand,omitempty" bson:"brand,omitempty"`
	Stock         int                `json:"stock" bson:"stock"`
	ImageURL      string             `json:"imageUrl" bson:"imageUrl"`
	Rating        float64            `json:"rating" bson:"rating"`
	Reviews       int                `json:"reviews" bson:"reviews"`
	IsTrending    bool               `json:"isTrending" bson:"isTrending"`
	IsActive      bool               `json:"isActive" bson:"isActive"`
	MajorCategory string             `json:"majorCategory,omitempty" bson:"majorCategory,omitempty"`
	AssignedShops []string           `json:"assignedShops" bson:"assignedShops"`
	MerchantID    primitive.ObjectID `json:"merchantId,omitempty" bson:"merchantId,omitempty"`
	MerchantName  string             `json:"merchantName,omitempty" bson:"merchantName,omitempty"`
	DateAdded     time.Time          `json:"dateAdded,omitempty" bson:"dateAdded,omitempty"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// HasBrand reports whether the product carries a non-blank brand.
func (p *Product) HasBrand() bool {
	return strings.TrimSpace(p.Brand) != ""
}

// HasDiscount reports whether the product is discounted, either via an
// explicit discount percentage or an original price above the selling price.
func (p *Product) HasDiscount() bool {
	return p.Discount > 0 || (p.OriginalPrice > 0 && p.OriginalPrice > p.Price)
}

// AddedAt returns the product's creation date, preferring dateAdded over
// createdAt. The zero time means neither field is populated.
func (p *Product) AddedAt() time.Time {
	if !p.DateAdded.IsZero() {
		return p.DateAdded
	}
	return p.CreatedAt
}

// DeriveMajorCategory classifies a product from brand presence alone.
func DeriveMajorCategory(p *Product) string {
	if p.HasBrand() {
		return MajorCategoryLuxury
	}
	return MajorCategoryAffordable
}
