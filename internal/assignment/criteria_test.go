package assignment

import (
	"testing"
	"time"

	"github.com/stylekart/stylekart-api/internal/models"
)

func f64(v float64) *float64 { return &v }
func i(v int) *int           { return &v }
func b(v bool) *bool         { return &v }

func TestMatchesEmptyCriteria(t *testing.T) {
	now := time.Now()
	products := []models.Product{
		{},
		{Name: "Anything", Price: 99999, Rating: 1, Reviews: 3},
		{Brand: "Gucci", IsTrending: true},
	}
	for _, p := range products {
		if !Matches(&p, models.Criteria{}, now) {
			t.Errorf("empty criteria must match every product, rejected %+v", p)
		}
	}
}

func TestMatchesPriceBounds(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name     string
		price    float64
		criteria models.Criteria
		want     bool
	}{
		{"below min", 100, models.Criteria{PriceMin: f64(200)}, false},
		{"at min", 200, models.Criteria{PriceMin: f64(200)}, true},
		{"above max", 2500, models.Criteria{PriceMax: f64(2000)}, false},
		{"at max", 2000, models.Criteria{PriceMax: f64(2000)}, true},
		{"within range", 500, models.Criteria{PriceMin: f64(100), PriceMax: f64(999)}, true},
		{"zero price below min", 0, models.Criteria{PriceMin: f64(1)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := models.Product{Price: tt.price}
			if got := Matches(&p, tt.criteria, now); got != tt.want {
				t.Errorf("price %v vs %+v: got %v, want %v", tt.price, tt.criteria, got, tt.want)
			}
		})
	}
}

func TestMatchesRatingExemption(t *testing.T) {
	now := time.Now()
	criteria := models.Criteria{MinRating: f64(4)}

	// Zero reviews: rating floor never applies, whatever the rating is.
	noReviews := models.Product{Rating: 0, Reviews: 0}
	if !Matches(&noReviews, criteria, now) {
		t.Error("product with zero reviews must pass minRating")
	}

	lowRated := models.Product{Rating: 2.5, Reviews: 10}
	if Matches(&lowRated, criteria, now) {
		t.Error("reviewed product below minRating must fail")
	}

	wellRated := models.Product{Rating: 4.5, Reviews: 10}
	if !Matches(&wellRated, criteria, now) {
		t.Error("reviewed product above minRating must pass")
	}
}

func TestMatchesMinReviews(t *testing.T) {
	now := time.Now()
	criteria := models.Criteria{MinReviews: i(10)}

	if Matches(&models.Product{Reviews: 5}, criteria, now) {
		t.Error("5 reviews must fail minReviews 10")
	}
	if !Matches(&models.Product{Reviews: 10}, criteria, now) {
		t.Error("10 reviews must pass minReviews 10")
	}
}

func TestMatchesHasDiscount(t *testing.T) {
	now := time.Now()
	criteria := models.Criteria{HasDiscount: b(true)}

	tests := []struct {
		name string
		p    models.Product
		want bool
	}{
		{"explicit discount", models.Product{Discount: 15, Price: 100}, true},
		{"original price above selling", models.Product{Price: 80, OriginalPrice: 100}, true},
		{"no discount at all", models.Product{Price: 100}, false},
		{"original price equals selling", models.Product{Price: 100, OriginalPrice: 100}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(&tt.p, criteria, now); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	// hasDiscount: false imposes no requirement.
	if !Matches(&models.Product{Price: 100}, models.Criteria{HasDiscount: b(false)}, now) {
		t.Error("hasDiscount=false must not exclude undiscounted products")
	}
}

func TestMatchesDaysSinceAdded(t *testing.T) {
	now := time.Now()
	criteria := models.Criteria{DaysSinceAdded: i(7)}

	recent := models.Product{DateAdded: now.AddDate(0, 0, -3)}
	if !Matches(&recent, criteria, now) {
		t.Error("3-day-old product must pass daysSinceAdded 7")
	}

	stale := models.Product{DateAdded: now.AddDate(0, 0, -10)}
	if Matches(&stale, criteria, now) {
		t.Error("10-day-old product must fail daysSinceAdded 7")
	}

	// dateAdded takes precedence over createdAt.
	mixed := models.Product{DateAdded: now.AddDate(0, 0, -3), CreatedAt: now.AddDate(0, 0, -30)}
	if !Matches(&mixed, criteria, now) {
		t.Error("dateAdded must take precedence over createdAt")
	}

	viaCreatedAt := models.Product{CreatedAt: now.AddDate(0, 0, -10)}
	if Matches(&viaCreatedAt, criteria, now) {
		t.Error("createdAt must be used when dateAdded is absent")
	}

	// Neither date set: the check is skipped, not failed.
	undated := models.Product{}
	if !Matches(&undated, criteria, now) {
		t.Error("product without any date must pass daysSinceAdded")
	}
}

func TestMatchesCategoryFuzzy(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name          string
		categoryMatch string
		p             models.Product
		want          bool
	}{
		{
			"direct substring in category",
			"watches",
			models.Product{Category: "Watches"},
			true,
		},
		{
			"plural criteria vs singular productType",
			"sweatshirts",
			models.Product{ProductType: "Sweatshirt"},
			true,
		},
		{
			"plural criteria vs singular word inside name",
			"sweatshirts",
			models.Product{Name: "Men's Sweatshirt Hoodie"},
			true,
		},
		{
			"hyphenated criteria matched word by word",
			"kurta-sets",
			models.Product{Category: "Kurta", Name: "Festive Kurta Set"},
			true,
		},
		{
			"multi-word criteria across fields",
			"winter jackets",
			models.Product{Category: "Jackets", Name: "Winter Parka"},
			true,
		},
		{
			"multi-word criteria with a missing word",
			"winter jackets",
			models.Product{Category: "Jackets", Name: "Summer Windbreaker"},
			false,
		},
		{
			"unrelated single word",
			"fragrances",
			models.Product{Category: "Footwear", ProductType: "Sneaker", Name: "Runner Pro"},
			false,
		},
		{
			"criteria singular vs product plural",
			"watch",
			models.Product{Category: "Watches"},
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := models.Criteria{CategoryMatch: tt.categoryMatch}
			if got := Matches(&tt.p, c, now); got != tt.want {
				t.Errorf("categoryMatch %q vs %+v: got %v, want %v", tt.categoryMatch, tt.p, got, tt.want)
			}
		})
	}
}

func TestMatchesBrand(t *testing.T) {
	now := time.Now()
	criteria := models.Criteria{BrandMatch: []string{"Nike", "Adidas"}}

	tests := []struct {
		name  string
		brand string
		want  bool
	}{
		{"exact match different case", "nike", true},
		{"product brand contains listed brand", "Nike Sportswear", true},
		{"listed brand contains product brand", "Adi", true},
		{"no overlap", "Puma", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := models.Product{Brand: tt.brand}
			if got := Matches(&p, criteria, now); got != tt.want {
				t.Errorf("brand %q: got %v, want %v", tt.brand, got, tt.want)
			}
		})
	}
}

func TestMatchesTrending(t *testing.T) {
	now := time.Now()

	if Matches(&models.Product{IsTrending: false}, models.Criteria{IsTrending: b(true)}, now) {
		t.Error("non-trending product must fail isTrending=true")
	}
	if !Matches(&models.Product{IsTrending: true}, models.Criteria{IsTrending: b(true)}, now) {
		t.Error("trending product must pass isTrending=true")
	}
	if Matches(&models.Product{IsTrending: true}, models.Criteria{IsTrending: b(false)}, now) {
		t.Error("trending product must fail isTrending=false")
	}
}

func TestMatchesCombinedRules(t *testing.T) {
	now := time.Now()

	// All present rules must pass together.
	criteria := models.Criteria{
		PriceMax:    f64(2000),
		HasDiscount: b(true),
	}

	p := models.Product{Price: 1500, Discount: 15}
	if !Matches(&p, criteria, now) {
		t.Error("product satisfying every rule must match")
	}

	p.Discount = 0
	if Matches(&p, criteria, now) {
		t.Error("one failing rule must reject the product")
	}
}
