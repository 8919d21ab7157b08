package repository

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	pool := &pgxpool.Pool{}

	assert.NotNil(t, NewFlightRepository(pool))
	assert.NotNil(t, NewInventoryRepository(pool))
	assert.NotNil(t, NewOrderRepository(pool))
	assert.NotNil(t, NewUserRepository(pool))
	assert.NotNil(t, NewRevenueRepository(pool))
}
