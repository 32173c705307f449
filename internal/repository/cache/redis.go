package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Pesokrava/product_catalog/internal/domain"
	"github.com/Pesokrava/product_catalog/internal/usecase/product"
)

// RedisCache caches product projections keyed by identity.
type RedisCache struct {
	client     *redis.Client
	productTTL time.Duration
}

// NewRedisCache creates a new Redis cache instance
func NewRedisCache(client *redis.Client, productTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     client,
		productTTL: productTTL,
	}
}

func (c *RedisCache) productKey(id uuid.UUID) string {
	return fmt.Sprintf("product:%s", id.String())
}

// GetProduct retrieves a cached projection; a miss is domain.ErrNotFound.
func (c *RedisCache) GetProduct(ctx context.Context, id uuid.UUID) (*product.ProductDTO, error) {
	val, err := c.client.Get(ctx, c.productKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var dto product.ProductDTO
	if err := json.Unmarshal([]byte(val), &dto); err != nil {
		return nil, err
	}

	return &dto, nil
}

// SetProduct stores a projection with the configured TTL.
func (c *RedisCache) SetProduct(ctx context.Context, dto *product.ProductDTO) error {
	data, err := json.Marshal(dto)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, c.productKey(dto.ID), data, c.productTTL).Err()
}

// InvalidateProduct removes a cached projection.
func (c *RedisCache) InvalidateProduct(ctx context.Context, id uuid.UUID) error {
	return c.client.Del(ctx, c.productKey(id)).Err()
}
