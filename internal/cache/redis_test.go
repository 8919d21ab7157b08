package cache

import (
	"testing"
	"time"

	"github.com/Domenick1991/skyticket/config"
	"github.com/Domenick1991/skyticket/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestNewRedisCache(t *testing.T) {
	c := NewRedisCache(config.RedisConfig{Addr: "localhost:6379"}, time.Minute)
	assert.NotNil(t, c)
	assert.NotNil(t, c.client)
}

func TestSearchKey(t *testing.T) {
	q := domain.FlightSearch{
		DepartCity: "Moscow",
		ArriveCity: "Sochi",
		DepartDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		SortBy:     "price",
	}

	assert.Equal(t, "cache:search:moscow:sochi:2026-03-10:price", searchKey(q))

	// Case differences in cities collapse to the same cache entry.
	upper := q
	upper.DepartCity = "MOSCOW"
	assert.Equal(t, searchKey(q), searchKey(upper))
}
