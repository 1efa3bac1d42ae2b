package assignment

import (
	"strings"
	"time"

	"github.com/stylekart/stylekart-api/internal/models"
)

// Matches reports whether a product satisfies a shop's criteria at the given
// reference time. It is a pure predicate: every present rule must pass, and
// an empty criteria accepts every product. Missing product fields count as
// zero, with two exceptions: products with no reviews are never excluded by
// minRating, and products with no creation date skip the daysSinceAdded
// check entirely.
func Matches(p *models.Product, c models.Criteria, now time.Time) bool {
	if c.IsEmpty() {
		return true
	}

	if c.PriceMin != nil && p.Price < *c.PriceMin {
		return false
	}
	if c.PriceMax != nil && p.Price > *c.PriceMax {
		return false
	}

	// Rating floor applies only once the product has reviews; new products
	// without any reviews stay eligible.
	if c.MinRating != nil && p.Reviews > 0 && p.Rating < *c.MinRating {
		return false
	}

	if c.MinReviews != nil && p.Reviews < *c.MinReviews {
		return false
	}

	if c.HasDiscount != nil && *c.HasDiscount && !p.HasDiscount() {
		return false
	}

	if c.DaysSinceAdded != nil && *c.DaysSinceAdded > 0 {
		if date := p.AddedAt(); !date.IsZero() {
			days := now.Sub(date).Hours() / 24
			if days > float64(*c.DaysSinceAdded) {
				return false
			}
		}
		// No date on the product means the age check is skipped, not failed.
	}

	if c.CategoryMatch != "" && !matchesCategory(p, c.CategoryMatch) {
		return false
	}

	if len(c.BrandMatch) > 0 {
		brand := strings.ToLower(p.Brand)
		found := false
		for _, b := range c.BrandMatch {
			b = strings.ToLower(b)
			if strings.Contains(brand, b) || strings.Contains(b, brand) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if c.IsTrending != nil && p.IsTrending != *c.IsTrending {
		return false
	}

	return true
}

// matchesCategory implements the fuzzy category rule. The criteria string is
// checked against the product's category, productType and name: first as a
// direct substring of the combined text, then with singular/plural folding
// (one trailing "s" stripped from either side), and finally word by word so
// that multi-word criteria like "winter jackets" match products whose fields
// contain each word individually.
func matchesCategory(p *models.Product, categoryMatch string) bool {
	cm := strings.ToLower(categoryMatch)
	words := splitWords(cm)

	category := strings.ToLower(p.Category)
	productType := strings.ToLower(p.ProductType)
	name := strings.ToLower(p.Name)
	combined := category + " " + productType + " " + name

	if strings.Contains(combined, cm) {
		return true
	}

	// Singular/plural fold: strip a single trailing "s" from both sides.
	cmBase := strings.TrimSuffix(cm, "s")
	combinedBase := strings.TrimSuffix(combined, "s")
	if cmBase == combinedBase ||
		strings.Contains(combined, cmBase) ||
		strings.Contains(cm, lastWord(combinedBase)) {
		return true
	}

	if len(words) > 0 {
		for _, w := range words {
			wBase := strings.TrimSuffix(w, "s")
			if !strings.Contains(category, w) && !strings.Contains(category, wBase) &&
				!strings.Contains(productType, w) && !strings.Contains(productType, wBase) &&
				!strings.Contains(name, w) && !strings.Contains(name, wBase) {
				return false
			}
		}
		return true
	}

	return false
}

// splitWords splits on whitespace and hyphens, dropping empty tokens.
func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '-'
	})
}

func lastWord(s string) string {
	fields := strings.Split(s, " ")
	return fields[len(fields)-1]
}
