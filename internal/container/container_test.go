package container

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"

	"tradefeed/crawler/internal/config"
	"tradefeed/crawler/internal/domain"
	"tradefeed/crawler/internal/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	t.Chdir(t.TempDir())
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Storage.DataDir = filepath.Join(t.TempDir(), "data")
	return cfg
}

func TestNewWithFileStore(t *testing.T) {
	cfg := testConfig(t)

	c, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer c.Close()

	assert.IsType(t, &store.FileStore{}, c.Store)
	assert.NotNil(t, c.Service)
	assert.DirExists(t, cfg.Storage.DataDir)
}

func TestNewWithRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Storage.Backend = "redis"
	cfg.Redis.Host = mr.Host()
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	cfg.Redis.Port = port

	c, err := New(context.Background(), cfg)
	require.NoError(t, err)

	assert.IsType(t, &store.RedisStore{}, c.Store)
	_, err = c.Store.Load(context.Background(), store.KeyCompanies)
	assert.ErrorIs(t, err, domain.ErrMissingPrerequisite)
	assert.NoError(t, c.Close())
}

func TestNewFailsWithoutRedis(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Backend = "redis"
	cfg.Redis.Host = "127.0.0.1"
	cfg.Redis.Port = 1

	_, err := New(context.Background(), cfg)
	assert.ErrorContains(t, err, "failed to connect to Redis")
}
