package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/skyticket/config"
	"github.com/Domenick1991/skyticket/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisCache keeps search results warm. Entries may lag behind inventory
// changes, which is fine for display: seat availability is re-checked
// authoritatively when an order is created.
type RedisCache struct {
	client    *redis.Client
	searchTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, searchTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:    redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		searchTTL: searchTTL,
	}
}

func (c *RedisCache) GetSearch(ctx context.Context, q domain.FlightSearch) ([]domain.Flight, error) {
	data, err := c.client.Get(ctx, searchKey(q)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var flights []domain.Flight
	if err := json.Unmarshal(data, &flights); err != nil {
		return nil, err
	}
	return flights, nil
}

func (c *RedisCache) SetSearch(ctx context.Context, q domain.FlightSearch, flights []domain.Flight) error {
	payload, err := json.Marshal(flights)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, searchKey(q), payload, c.searchTTL).Err()
}

func searchKey(q domain.FlightSearch) string {
	return fmt.Sprintf("cache:search:%s:%s:%s:%s",
		strings.ToLower(q.DepartCity), strings.ToLower(q.ArriveCity),
		q.DepartDate.Format("2006-01-02"), q.SortBy)
}
