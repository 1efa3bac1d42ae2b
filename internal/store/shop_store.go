package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stylekart/stylekart-api/internal/assignment"
	"github.com/stylekart/stylekart-api/internal/models"
)

// ShopStore persists shops in the "shops" collection. It implements
// assignment.ShopStore; uniqueness conflicts on the slug index are mapped to
// assignment.ErrDuplicateSlug so the provisioner can recover from races.
type ShopStore struct {
	coll *mongo.Collection
}

func NewShopStore(db *mongo.Database) *ShopStore {
	return &ShopStore{coll: db.Collection("shops")}
}

// FindAll returns every shop, oldest first.
func (s *ShopStore) FindAll(ctx context.Context) ([]models.Shop, error) {
	cursor, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var shops []models.Shop
	if err := cursor.All(ctx, &shops); err != nil {
		return nil, err
	}
	return shops, nil
}

func (s *ShopStore) FindByMajorCategory(ctx context.Context, majorCategory string) ([]models.Shop, error) {
	cursor, err := s.coll.Find(ctx, bson.M{"majorCategory": majorCategory})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var shops []models.Shop
	if err := cursor.All(ctx, &shops); err != nil {
		return nil, err
	}
	return shops, nil
}

// FindBySlug returns (nil, nil) when the slug is unknown.
func (s *ShopStore) FindBySlug(ctx context.Context, slug string) (*models.Shop, error) {
	var shop models.Shop
	err := s.coll.FindOne(ctx, bson.M{"slug": slug}).Decode(&shop)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

func (s *ShopStore) Create(ctx context.Context, shop *models.Shop) error {
	if shop.ID.IsZero() {
		shop.ID = primitive.NewObjectID()
	}
	if shop.CreatedAt.IsZero() {
		shop.CreatedAt = time.Now()
	}
	shop.UpdatedAt = time.Now()

	_, err := s.coll.InsertOne(ctx, shop)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("shop %q: %w", shop.Slug, assignment.ErrDuplicateSlug)
	}
	return err
}

// Update applies a partial update to the shop with the given slug and
// returns the updated document, or (nil, nil) if the slug is unknown.
func (s *ShopStore) Update(ctx context.Context, slug string, update bson.M) (*models.Shop, error) {
	update["updatedAt"] = time.Now()

	result := s.coll.FindOneAndUpdate(
		ctx,
		bson.M{"slug": slug},
		bson.M{"$set": update},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var shop models.Shop
	err := result.Decode(&shop)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

// Delete removes the shop and returns it, or (nil, nil) if absent.
func (s *ShopStore) Delete(ctx context.Context, slug string) (*models.Shop, error) {
	result := s.coll.FindOneAndDelete(ctx, bson.M{"slug": slug})

	var shop models.Shop
	err := result.Decode(&shop)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &shop, nil
}
