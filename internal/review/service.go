// Package review keeps a product's denormalized rating and review count in
// step with its submitted reviews. Rating changes feed the shop-assignment
// criteria, so callers reassign the product after recalculating.
package review

import (
	"context"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stylekart/stylekart-api/internal/models"
	"github.com/stylekart/stylekart-api/internal/store"
)

type Service struct {
	reviews  *store.ReviewStore
	products *store.ProductStore
}

func NewService(reviews *store.ReviewStore, products *store.ProductStore) *Service {
	return &Service{reviews: reviews, products: products}
}

// Add stores the review and recalculates the product's rating stats.
func (s *Service) Add(ctx context.Context, r *models.Review) error {
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	r.CreatedAt = time.Now()

	if err := s.reviews.Insert(ctx, r); err != nil {
		return err
	}
	return s.Recalculate(ctx, r.ProductID)
}

// Recalculate rewrites the product's rating (rounded to one decimal) and
// review count from the reviews collection.
func (s *Service) Recalculate(ctx context.Context, productID primitive.ObjectID) error {
	avg, count, err := s.reviews.RatingStats(ctx, productID)
	if err != nil {
		return err
	}
	if count == 0 {
		return s.products.SetRating(ctx, productID, 0, 0)
	}
	rounded := math.Round(avg*10) / 10
	return s.products.SetRating(ctx, productID, rounded, count)
}

// List returns a product's reviews, newest first.
func (s *Service) List(ctx context.Context, productID primitive.ObjectID) ([]models.Review, error) {
	return s.reviews.FindByProduct(ctx, productID)
}
