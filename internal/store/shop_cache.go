package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/stylekart/stylekart-api/internal/models"
)

const shopCacheTTL = 5 * time.Minute

// CachedShopStore wraps a ShopStore with a Redis cache for the hot
// FindByMajorCategory lookup, which the assignment engine performs once per
// product. Writes invalidate the cache; cache failures degrade to the
// underlying store rather than failing the caller.
type CachedShopStore struct {
	*ShopStore
	rdb *redis.Client
	log zerolog.Logger
}

func NewCachedShopStore(inner *ShopStore, rdb *redis.Client, log zerolog.Logger) *CachedShopStore {
	return &CachedShopStore{ShopStore: inner, rdb: rdb, log: log}
}

// NewRedisClient builds a client from a redis:// URL and verifies it with a
// ping.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}

func shopCacheKey(majorCategory string) string {
	return "shops:major:" + majorCategory
}

func (s *CachedShopStore) FindByMajorCategory(ctx context.Context, majorCategory string) ([]models.Shop, error) {
	key := shopCacheKey(majorCategory)

	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var shops []models.Shop
		if uerr := json.Unmarshal(raw, &shops); uerr == nil {
			return shops, nil
		}
		// Corrupt entry; drop it and fall through to the store.
		s.rdb.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Msg("shop cache read failed")
	}

	shops, err := s.ShopStore.FindByMajorCategory(ctx, majorCategory)
	if err != nil {
		return nil, err
	}

	if raw, merr := json.Marshal(shops); merr == nil {
		if serr := s.rdb.Set(ctx, key, raw, shopCacheTTL).Err(); serr != nil {
			s.log.Warn().Err(serr).Msg("shop cache write failed")
		}
	}
	return shops, nil
}

func (s *CachedShopStore) Create(ctx context.Context, shop *models.Shop) error {
	err := s.ShopStore.Create(ctx, shop)
	if err == nil {
		s.invalidate(ctx, shop.MajorCategory)
	}
	return err
}

func (s *CachedShopStore) Update(ctx context.Context, slug string, update bson.M) (*models.Shop, error) {
	shop, err := s.ShopStore.Update(ctx, slug, update)
	if err == nil && shop != nil {
		s.invalidateAll(ctx)
	}
	return shop, err
}

func (s *CachedShopStore) Delete(ctx context.Context, slug string) (*models.Shop, error) {
	shop, err := s.ShopStore.Delete(ctx, slug)
	if err == nil && shop != nil {
		s.invalidate(ctx, shop.MajorCategory)
	}
	return shop, err
}

func (s *CachedShopStore) invalidate(ctx context.Context, majorCategory string) {
	if err := s.rdb.Del(ctx, shopCacheKey(majorCategory)).Err(); err != nil {
		s.log.Warn().Err(err).Msg("shop cache invalidation failed")
	}
}

// invalidateAll drops both major-category keys; an update may have moved the
// shop between categories.
func (s *CachedShopStore) invalidateAll(ctx context.Context) {
	keys := []string{
		shopCacheKey(models.MajorCategoryAffordable),
		shopCacheKey(models.MajorCategoryLuxury),
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		s.log.Warn().Err(err).Msg("shop cache invalidation failed")
	}
}
