package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	raw := `
http:
  address: ":8080"
database:
  host: localhost
  port: 5432
  user: skyticket
  password: secret
  name: skyticket
  ssl_mode: disable
redis:
  addr: localhost:6379
kafka:
  brokers:
    - localhost:9092
  order_events_topic: order_events
  notifications_topic: notifications
  group_id: skyticket-worker
booking:
  payment_window_minutes: 30
  search_cache_ttl_seconds: 60
worker:
  expiration_sweep_minutes: 2
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "order_events", cfg.Kafka.OrderEventsTopic)
	assert.Equal(t, 30, cfg.Booking.PaymentWindowMinutes)
	assert.Equal(t, 2, cfg.Worker.ExpirationSweepMinutes)
	assert.Equal(t,
		"host=localhost port=5432 user=skyticket password=secret dbname=skyticket sslmode=disable",
		cfg.Database.DSN())
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http:\n  address: \":8080\"\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 15, cfg.Booking.PaymentWindowMinutes)
	assert.Equal(t, 1, cfg.Worker.ExpirationSweepMinutes)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
