package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yearn/ySync/internal/module/sync/service"
)

func testSnapshot(t *testing.T, chainID int) *service.Snapshot {
	t.Helper()
	vault := mustAddress(t, vaultAddr)
	token := mustAddress(t, tokenAddr)
	return &service.Snapshot{
		ChainID: chainID,
		Vaults: map[service.Address]*service.VaultRecord{
			vault: {
				Address:           vault,
				Name:              "DAI",
				Token:             service.VaultTokenRef{Address: token},
				HasValidIcon:      true,
				HasValidTokenIcon: true,
			},
		},
		Tokens: map[service.Address]*service.TokenRecord{
			token: {Address: token, Symbol: "DAI", HasValidTokenIcon: true},
		},
	}
}

func TestAggregateStorePublish(t *testing.T) {
	store := service.NewAggregateStore()

	_, _, ok := store.Snapshot(1)
	assert.False(t, ok)
	assert.Equal(t, uint64(0), store.Revision())

	generation := store.BeginRefresh(1)
	require.True(t, store.Publish(1, generation, testSnapshot(t, 1)))

	snapshot, revision, ok := store.Snapshot(1)
	require.True(t, ok)
	assert.Equal(t, uint64(1), revision)
	assert.False(t, snapshot.UpdatedAt.IsZero())
}

func TestAggregateStoreDiscardsStaleGeneration(t *testing.T) {
	store := service.NewAggregateStore()

	stale := store.BeginRefresh(1)
	current := store.BeginRefresh(1)

	fresh := testSnapshot(t, 1)
	require.True(t, store.Publish(1, current, fresh))

	old := testSnapshot(t, 1)
	old.Vaults[mustAddress(t, vaultAddr)].Name = "stale"
	assert.False(t, store.Publish(1, stale, old))

	snapshot, _, ok := store.Snapshot(1)
	require.True(t, ok)
	assert.Equal(t, "DAI", snapshot.Vaults[mustAddress(t, vaultAddr)].Name)
}

func TestAggregateStoreRefreshError(t *testing.T) {
	store := service.NewAggregateStore()

	generation := store.BeginRefresh(1)
	require.True(t, store.Publish(1, generation, testSnapshot(t, 1)))

	store.SetRefreshError(1, assert.AnError)
	assert.NotEmpty(t, store.LastError(1))

	// the previous snapshot stays published
	_, _, ok := store.Snapshot(1)
	assert.True(t, ok)

	generation = store.BeginRefresh(1)
	require.True(t, store.Publish(1, generation, testSnapshot(t, 1)))
	assert.Empty(t, store.LastError(1))
}

func TestAggregateStoreRevisionPerChain(t *testing.T) {
	store := service.NewAggregateStore()

	require.True(t, store.Publish(1, store.BeginRefresh(1), testSnapshot(t, 1)))
	require.True(t, store.Publish(250, store.BeginRefresh(250), testSnapshot(t, 250)))

	// revision is global across chains
	_, revision, _ := store.Snapshot(250)
	assert.Equal(t, uint64(2), revision)
}

func TestMarkIconInvalid(t *testing.T) {
	store := service.NewAggregateStore()
	require.True(t, store.Publish(1, store.BeginRefresh(1), testSnapshot(t, 1)))

	vault := mustAddress(t, vaultAddr)
	before, revisionBefore, _ := store.Snapshot(1)

	require.True(t, store.MarkIconInvalid(1, vault, false))

	after, revisionAfter, _ := store.Snapshot(1)
	assert.False(t, after.Vaults[vault].HasValidIcon)
	assert.True(t, after.Vaults[vault].HasAnomalies())
	assert.Greater(t, revisionAfter, revisionBefore)

	// copy-on-write: a reader holding the old snapshot sees the old flag
	assert.True(t, before.Vaults[vault].HasValidIcon)

	assert.False(t, store.MarkIconInvalid(1, mustAddress(t, ledgerAddr), false))
	assert.False(t, store.MarkIconInvalid(42, vault, false))
}

func TestMarkTokenIconInvalidPureToken(t *testing.T) {
	store := service.NewAggregateStore()
	require.True(t, store.Publish(1, store.BeginRefresh(1), testSnapshot(t, 1)))

	token := mustAddress(t, tokenAddr)
	require.True(t, store.MarkTokenIconInvalid(1, token, false, true))

	snapshot, _, _ := store.Snapshot(1)
	assert.False(t, snapshot.Tokens[token].HasValidTokenIcon)
}

func TestMarkTokenIconInvalidViaVault(t *testing.T) {
	store := service.NewAggregateStore()
	require.True(t, store.Publish(1, store.BeginRefresh(1), testSnapshot(t, 1)))

	vault := mustAddress(t, vaultAddr)
	token := mustAddress(t, tokenAddr)
	require.True(t, store.MarkTokenIconInvalid(1, vault, false, false))

	snapshot, _, _ := store.Snapshot(1)
	assert.False(t, snapshot.Vaults[vault].HasValidTokenIcon)
	// the underlying token is listed independently and follows along
	assert.False(t, snapshot.Tokens[token].HasValidTokenIcon)
}
