package shared_test

import (
	"testing"
	"time"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yearn/ySync/internal/module/shared"
)

func newUnconnectedRedisClient(t *testing.T) *shared.RedisClient {
	t.Helper()
	k := koanf.New(".")
	require.NoError(t, k.Load(confmap.Provider(map[string]interface{}{
		"redis.url":               "redis://127.0.0.1:6379",
		"redis.retry-count":       3,
		"redis.keeplive-interval": 30 * time.Second,
	}, "."), nil))
	return shared.NewRedisClient(k, zerolog.New(nil))
}

// The scheduler holds its per-chain refresh locks through this client and can
// run its first pass before Connect has been called. Lock and cleanup calls
// must degrade to no-ops instead of dereferencing the nil connection.
func TestRedisLocksBeforeConnect(t *testing.T) {
	client := newUnconnectedRedisClient(t)

	assert.NotPanics(t, func() {
		assert.False(t, client.AcquireLock("sync_refresh_1_lock", time.Minute))
	})
	assert.NotPanics(t, func() {
		client.ReleaseLock("sync_refresh_1_lock")
	})
}

func TestRedisDeleteHelpersBeforeConnect(t *testing.T) {
	client := newUnconnectedRedisClient(t)

	assert.NoError(t, client.DeleteKeysByPrefix("source:payload:"))
	assert.NoError(t, client.DeleteKeyBatch([]string{"source:payload:vaults:1"}))
	assert.NoError(t, client.InvalidateSourcePayloads())
}
