package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yearn/ySync/internal/database/schema"
	"github.com/yearn/ySync/internal/module/shared"
	"github.com/yearn/ySync/internal/module/sync/service"
)

// fakeSources implements every fetcher interface with canned data so a full
// refresh cycle runs without the network.
type fakeSources struct {
	vaults        []service.APIVault
	deployed      []service.LedgerContract
	incoming      []service.LedgerContract
	vaultFiles    []service.RepoContent
	protocolFiles []service.RepoContent
	partnerFiles  []service.RepoContent
	strategies    []service.StrategyMeta
	tokens        []service.TokenMeta
	protocols     []service.ProtocolMeta
	exporter      []service.NetworkPartners

	vaultsErr     error
	onFetchVaults func()
}

func (f *fakeSources) FetchVaults(ctx context.Context, chainID int) ([]service.APIVault, error) {
	if f.onFetchVaults != nil {
		f.onFetchVaults()
	}
	return f.vaults, f.vaultsErr
}

func (f *fakeSources) FetchDeployed(ctx context.Context) ([]service.LedgerContract, error) {
	return f.deployed, nil
}

func (f *fakeSources) FetchIncoming(ctx context.Context) ([]service.LedgerContract, error) {
	return f.incoming, nil
}

func (f *fakeSources) ListVaultMetaFiles(ctx context.Context, chainID int) ([]service.RepoContent, error) {
	return f.vaultFiles, nil
}

func (f *fakeSources) ListProtocolMetaFiles(ctx context.Context, chainID int) ([]service.RepoContent, error) {
	return f.protocolFiles, nil
}

func (f *fakeSources) ListPartnerFiles(ctx context.Context, chainID int) ([]service.RepoContent, error) {
	return f.partnerFiles, nil
}

func (f *fakeSources) FetchStrategies(ctx context.Context, chainID int) ([]service.StrategyMeta, error) {
	return f.strategies, nil
}

func (f *fakeSources) FetchTokens(ctx context.Context, chainID int) ([]service.TokenMeta, error) {
	return f.tokens, nil
}

func (f *fakeSources) FetchProtocols(ctx context.Context, chainID int) ([]service.ProtocolMeta, error) {
	return f.protocols, nil
}

func (f *fakeSources) FetchExporterPartners(ctx context.Context) ([]service.NetworkPartners, error) {
	return f.exporter, nil
}

// fakeRefreshRuns keeps the audit trail in memory, answering queries the way
// the persisted repository does.
type fakeRefreshRuns struct {
	runs []schema.RefreshRun
}

func (f *fakeRefreshRuns) Save(run schema.RefreshRun) error {
	f.runs = append(f.runs, run)
	return nil
}

func (f *fakeRefreshRuns) Latest(chainID int) (*schema.RefreshRun, error) {
	for i := len(f.runs) - 1; i >= 0; i-- {
		if f.runs[i].ChainID == chainID {
			run := f.runs[i]
			return &run, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRefreshRuns) LatestSuccess(chainID int) (*schema.RefreshRun, error) {
	for i := len(f.runs) - 1; i >= 0; i-- {
		if f.runs[i].ChainID == chainID && f.runs[i].Success && !f.runs[i].Superseded {
			run := f.runs[i]
			return &run, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRefreshRuns) DeleteOlderThan(cutoff time.Time) error {
	return nil
}

func setupSyncService(sources *fakeSources) (service.SyncService, *service.AggregateStore) {
	cfg := shared.SetupCfg()
	store := service.NewAggregateStore()
	syncService := service.NewSyncService(cfg, zerolog.New(nil), store, sources, sources, sources, sources, sources, nil, nil, nil, nil)
	return syncService, store
}

func setupAuditedSyncService(sources *fakeSources, runs *fakeRefreshRuns) (service.SyncService, *service.AggregateStore) {
	cfg := shared.SetupCfg()
	store := service.NewAggregateStore()
	syncService := service.NewSyncService(cfg, zerolog.New(nil), store, sources, sources, sources, sources, sources, runs, nil, nil, nil)
	return syncService, store
}

func defaultSources() *fakeSources {
	return &fakeSources{
		vaults: []service.APIVault{
			{
				Address: vaultAddr,
				Name:    "DAI yVault",
				TVL:     service.APIVaultTVL{Price: 1.0},
				Details: service.APIVaultDetail{DepositLimit: "1000000"},
			},
		},
		deployed:     []service.LedgerContract{{Address: vaultAddr, ContractName: "DAI yVault"}},
		vaultFiles:   []service.RepoContent{{Name: vaultAddr + ".json"}},
		partnerFiles: []service.RepoContent{{Name: "abracadabra.json"}},
		tokens:       []service.TokenMeta{{Address: tokenAddr, Symbol: "DAI", Price: 1.0}},
		protocols:    []service.ProtocolMeta{{Name: "Compound"}},
		exporter: []service.NetworkPartners{
			{Network: "MAINNET", ChainID: 1, Partners: []string{"abracadabra", "alchemix"}},
		},
	}
}

func TestRefreshPublishesSnapshot(t *testing.T) {
	syncService, store := setupSyncService(defaultSources())

	require.NoError(t, syncService.Refresh(context.Background(), 1))

	snapshot, revision, ok := store.Snapshot(1)
	require.True(t, ok)
	assert.Equal(t, uint64(1), revision)
	assert.Len(t, snapshot.Vaults, 1)
	assert.Len(t, snapshot.Tokens, 1)
	assert.Len(t, snapshot.Protocols, 1)
	assert.Len(t, snapshot.Partners, 2)
	assert.Empty(t, store.LastError(1))

	vault := snapshot.Vaults[mustAddress(t, vaultAddr)]
	require.NotNil(t, vault)
	assert.True(t, vault.LedgerIntegration.Deployed)
	assert.True(t, vault.HasYearnMetaFile)
}

func TestRefreshAllOrNothing(t *testing.T) {
	sources := defaultSources()
	sources.vaultsErr = errors.New("vault listing unavailable")
	syncService, store := setupSyncService(sources)

	err := syncService.Refresh(context.Background(), 1)
	require.Error(t, err)

	// no partial snapshot appears
	_, _, ok := store.Snapshot(1)
	assert.False(t, ok)
	assert.NotEmpty(t, store.LastError(1))

	// a later successful refresh clears the failure
	sources.vaultsErr = nil
	require.NoError(t, syncService.Refresh(context.Background(), 1))
	_, _, ok = store.Snapshot(1)
	assert.True(t, ok)
	assert.Empty(t, store.LastError(1))
}

func TestRefreshFailureKeepsPreviousSnapshot(t *testing.T) {
	sources := defaultSources()
	syncService, store := setupSyncService(sources)

	require.NoError(t, syncService.Refresh(context.Background(), 1))
	_, revisionBefore, _ := store.Snapshot(1)

	sources.vaultsErr = errors.New("vault listing unavailable")
	require.Error(t, syncService.Refresh(context.Background(), 1))

	snapshot, revisionAfter, ok := store.Snapshot(1)
	require.True(t, ok)
	assert.Equal(t, revisionBefore, revisionAfter)
	assert.Len(t, snapshot.Vaults, 1)
	assert.NotEmpty(t, store.LastError(1))
}

func TestRefreshSupersededIsDiscarded(t *testing.T) {
	sources := defaultSources()
	syncService, store := setupSyncService(sources)

	// a competing refresh starts while this one is still fetching
	sources.onFetchVaults = func() {
		store.BeginRefresh(1)
	}

	require.NoError(t, syncService.Refresh(context.Background(), 1))

	_, _, ok := store.Snapshot(1)
	assert.False(t, ok)
}

func TestForceRefreshWithoutCachePublishes(t *testing.T) {
	syncService, store := setupSyncService(defaultSources())

	require.NoError(t, syncService.ForceRefresh(context.Background(), 1))

	_, revision, ok := store.Snapshot(1)
	require.True(t, ok)
	assert.Equal(t, uint64(1), revision)
}

func TestLastRunsTrackPublishedSuccess(t *testing.T) {
	runs := &fakeRefreshRuns{}
	syncService, _ := setupAuditedSyncService(defaultSources(), runs)

	require.NoError(t, syncService.Refresh(context.Background(), 1))

	latest, lastSuccess := syncService.LastRuns(1)
	require.NotNil(t, latest)
	require.NotNil(t, lastSuccess)
	assert.True(t, latest.Success)
	assert.False(t, latest.Superseded)
	assert.Equal(t, latest.ID, lastSuccess.ID)
}

func TestLastRunsIgnoreSupersededRuns(t *testing.T) {
	runs := &fakeRefreshRuns{}
	sources := defaultSources()
	syncService, store := setupAuditedSyncService(sources, runs)

	// a competing refresh supersedes this one before it publishes
	sources.onFetchVaults = func() {
		store.BeginRefresh(1)
	}
	require.NoError(t, syncService.Refresh(context.Background(), 1))

	latest, lastSuccess := syncService.LastRuns(1)
	require.NotNil(t, latest)
	assert.True(t, latest.Superseded)
	assert.Nil(t, lastSuccess)
}

func TestLastRunsWithoutAuditRepository(t *testing.T) {
	syncService, _ := setupSyncService(defaultSources())

	latest, lastSuccess := syncService.LastRuns(1)
	assert.Nil(t, latest)
	assert.Nil(t, lastSuccess)
}

func TestRefreshSkipsLedgerOffMainnet(t *testing.T) {
	sources := defaultSources()
	syncService, store := setupSyncService(sources)

	require.NoError(t, syncService.Refresh(context.Background(), 250))

	snapshot, _, ok := store.Snapshot(250)
	require.True(t, ok)
	vault := snapshot.Vaults[mustAddress(t, vaultAddr)]
	require.NotNil(t, vault)
	assert.True(t, vault.LedgerIntegration.Deployed)
	assert.True(t, vault.LedgerIntegration.Incoming)
}

func TestRefreshSkipsPartnersOnDisabledChain(t *testing.T) {
	sources := defaultSources()
	syncService, store := setupSyncService(sources)

	// 10 is not in the configured partner networks
	require.NoError(t, syncService.Refresh(context.Background(), 10))

	snapshot, _, ok := store.Snapshot(10)
	require.True(t, ok)
	assert.Empty(t, snapshot.Partners)
}
