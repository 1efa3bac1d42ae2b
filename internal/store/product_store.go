package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stylekart/stylekart-api/internal/models"
)

// ProductStore persists products in the "products" collection. It implements
// assignment.ProductStore.
type ProductStore struct {
	coll *mongo.Collection
}

func NewProductStore(db *mongo.Database) *ProductStore {
	return &ProductStore{coll: db.Collection("products")}
}

// FindActive returns every product flagged active.
func (s *ProductStore) FindActive(ctx context.Context) ([]models.Product, error) {
	cursor, err := s.coll.Find(ctx, bson.M{"isActive": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// FindByID returns (nil, nil) when the product does not exist.
func (s *ProductStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var p models.Product
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ProductStore) SetMajorCategory(ctx context.Context, id primitive.ObjectID, majorCategory string) error {
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"majorCategory": majorCategory, "updatedAt": time.Now()},
	})
	return err
}

// SetAssignedShops fully replaces the product's assigned shop list.
func (s *ProductStore) SetAssignedShops(ctx context.Context, id primitive.ObjectID, slugs []string) error {
	if slugs == nil {
		slugs = []string{}
	}
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"assignedShops": slugs, "updatedAt": time.Now()},
	})
	return err
}

// Insert stores a new product.
func (s *ProductStore) Insert(ctx context.Context, p *models.Product) error {
	_, err := s.coll.InsertOne(ctx, p)
	return err
}

// FindPage returns active products matching the filter, newest first.
func (s *ProductStore) FindPage(ctx context.Context, filter bson.M, page, limit int64) ([]models.Product, error) {
	if filter == nil {
		filter = bson.M{}
	}
	filter["isActive"] = true

	opts := options.Find().
		SetLimit(limit).
		SetSkip((page - 1) * limit).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Search matches active products by name or description, case-insensitive.
func (s *ProductStore) Search(ctx context.Context, query string) ([]models.Product, error) {
	filter := bson.M{
		"$and": []bson.M{
			{"isActive": true},
			{
				"$or": []bson.M{
					{"name": bson.M{"$regex": query, "$options": "i"}},
					{"description": bson.M{"$regex": query, "$options": "i"}},
				},
			},
		},
	}

	cursor, err := s.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Update applies a partial update and returns the updated document, or
// (nil, nil) when the id is unknown.
func (s *ProductStore) Update(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.Product, error) {
	update["updatedAt"] = time.Now()

	result := s.coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": update},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var p models.Product
	err := result.Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindAllPage lists products for admin views, including inactive ones.
func (s *ProductStore) FindAllPage(ctx context.Context, page, limit int64) ([]models.Product, error) {
	opts := options.Find().
		SetLimit(limit).
		SetSkip((page - 1) * limit).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// AssignmentCounts returns how many active products each shop slug holds.
func (s *ProductStore) AssignmentCounts(ctx context.Context) (map[string]int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"isActive": true}}},
		{{Key: "$unwind", Value: "$assignedShops"}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$assignedShops",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Slug  string `bson:"_id"`
		Count int    `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Slug] = row.Count
	}
	return counts, nil
}

// SetRating updates the denormalized rating and review count.
func (s *ProductStore) SetRating(ctx context.Context, id primitive.ObjectID, rating float64, reviews int) error {
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"rating": rating, "reviews": reviews, "updatedAt": time.Now()},
	})
	return err
}
