package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/sangkips/pscafe-console/internal/domain/entity"
)

const (
	categoriesKey  = "catalog:categories"
	itemsKeyPrefix = "catalog:items:"
)

type RedisCatalogCache struct {
	client *redis.Client
}

func NewRedisCatalogCache(addr string, password string, db int) *RedisCatalogCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisCatalogCache{client: client}
}

// NewRedisCatalogCacheWithClient wraps an existing client.
func NewRedisCatalogCacheWithClient(client *redis.Client) *RedisCatalogCache {
	return &RedisCatalogCache{client: client}
}

func (c *RedisCatalogCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCatalogCache) Close() error {
	return c.client.Close()
}

func (c *RedisCatalogCache) GetCategories(ctx context.Context) ([]entity.Category, bool, error) {
	var out []entity.Category
	ok, err := c.get(ctx, categoriesKey, &out)
	return out, ok, err
}

func (c *RedisCatalogCache) SetCategories(ctx context.Context, categories []entity.Category, ttl time.Duration) error {
	return c.set(ctx, categoriesKey, categories, ttl)
}

func (c *RedisCatalogCache) GetItems(ctx context.Context, categoryID entity.ID) ([]entity.CatalogItem, bool, error) {
	var out []entity.CatalogItem
	ok, err := c.get(ctx, itemsKeyPrefix+categoryID.String(), &out)
	return out, ok, err
}

func (c *RedisCatalogCache) SetItems(ctx context.Context, categoryID entity.ID, items []entity.CatalogItem, ttl time.Duration) error {
	return c.set(ctx, itemsKeyPrefix+categoryID.String(), items, ttl)
}

func (c *RedisCatalogCache) get(ctx context.Context, key string, out any) (bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(val, out); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCatalogCache) set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}
