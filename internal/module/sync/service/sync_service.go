package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/yearn/ySync/internal/database/schema"
	"github.com/yearn/ySync/internal/module/shared"
	"github.com/yearn/ySync/internal/module/sync/repository"
)

const (
	defaultRefreshTimeout = 45 * time.Second
	mainnetChainID        = 1
)

// SyncService runs one full refresh cycle: concurrent fan-out to every
// source, then a synchronous reconciliation pass, then an atomic snapshot
// publish guarded by the refresh generation.
type SyncService interface {
	Refresh(ctx context.Context, chainID int) error
	ForceRefresh(ctx context.Context, chainID int) error
	LastRuns(chainID int) (latest, lastSuccess *schema.RefreshRun)
	Store() *AggregateStore
}

type syncService struct {
	config      *koanf.Koanf
	logger      zerolog.Logger
	store       *AggregateStore
	vaultList   VaultListService
	ledger      LedgerService
	github      GithubService
	meta        MetaService
	partners    PartnerService
	refreshRuns repository.RefreshRunRepository
	slackQueue  repository.SlackNotificationRepository
	amqp        *shared.Amqp
	redisClient *shared.RedisClient
}

func NewSyncService(
	cfg *koanf.Koanf,
	logger zerolog.Logger,
	store *AggregateStore,
	vaultList VaultListService,
	ledger LedgerService,
	github GithubService,
	meta MetaService,
	partners PartnerService,
	refreshRuns repository.RefreshRunRepository,
	slackQueue repository.SlackNotificationRepository,
	amqp *shared.Amqp,
	redisClient *shared.RedisClient,
) SyncService {
	return &syncService{
		config:      cfg,
		logger:      logger,
		store:       store,
		vaultList:   vaultList,
		ledger:      ledger,
		github:      github,
		meta:        meta,
		partners:    partners,
		refreshRuns: refreshRuns,
		slackQueue:  slackQueue,
		amqp:        amqp,
		redisClient: redisClient,
	}
}

func (s *syncService) Store() *AggregateStore {
	return s.store
}

// Refresh is all-or-nothing: any single source failure aborts the cycle and
// leaves the previous snapshot in place. A refresh superseded by a newer
// one for the same chain is reconciled but never published.
func (s *syncService) Refresh(ctx context.Context, chainID int) error {
	started := time.Now()
	generation := s.store.BeginRefresh(chainID)

	timeout := s.config.Duration("sync.refresh-timeout")
	if timeout <= 0 {
		timeout = defaultRefreshTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		vaults        []APIVault
		deployed      []LedgerContract
		incoming      []LedgerContract
		vaultFiles    []RepoContent
		protocolFiles []RepoContent
		partnerFiles  []RepoContent
		strategies    []StrategyMeta
		tokens        []TokenMeta
		protocols     []ProtocolMeta
		exporter      []NetworkPartners
	)

	partnerNetworks := s.partnerNetworks()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() (err error) {
		vaults, err = s.vaultList.FetchVaults(groupCtx, chainID)
		return err
	})
	group.Go(func() (err error) {
		vaultFiles, err = s.github.ListVaultMetaFiles(groupCtx, chainID)
		return err
	})
	group.Go(func() (err error) {
		protocolFiles, err = s.github.ListProtocolMetaFiles(groupCtx, chainID)
		return err
	})
	group.Go(func() (err error) {
		strategies, err = s.meta.FetchStrategies(groupCtx, chainID)
		return err
	})
	group.Go(func() (err error) {
		tokens, err = s.meta.FetchTokens(groupCtx, chainID)
		return err
	})
	group.Go(func() (err error) {
		protocols, err = s.meta.FetchProtocols(groupCtx, chainID)
		return err
	})
	if chainID == mainnetChainID {
		group.Go(func() (err error) {
			deployed, err = s.ledger.FetchDeployed(groupCtx)
			return err
		})
		group.Go(func() (err error) {
			incoming, err = s.ledger.FetchIncoming(groupCtx)
			return err
		})
	}
	if partnerNetworks[chainID] {
		group.Go(func() (err error) {
			partnerFiles, err = s.github.ListPartnerFiles(groupCtx, chainID)
			return err
		})
		group.Go(func() (err error) {
			exporter, err = s.partners.FetchExporterPartners(groupCtx)
			return err
		})
	}

	if err := group.Wait(); err != nil {
		s.store.SetRefreshError(chainID, err)
		s.recordRun(chainID, generation, nil, false, false, err, time.Since(started))
		s.notifyFailure(chainID, err)
		return fmt.Errorf("refresh chain %d: %w", chainID, err)
	}

	snapshot := &Snapshot{
		ChainID:    chainID,
		Vaults:     ReconcileVaults(s.logger, chainID, vaults, deployed, incoming, vaultFiles, strategies),
		Tokens:     ReconcileTokens(s.logger, tokens),
		Protocols:  ReconcileProtocols(protocols, protocolFiles),
		Strategies: ReconcileStrategies(s.logger, strategies),
		Partners:   ReconcilePartners(chainID, exporter, partnerFiles, partnerNetworks),
	}

	published := s.store.Publish(chainID, generation, snapshot)
	if !published {
		s.logger.Info().Msgf("Discarding superseded refresh for chain %d (generation %d)", chainID, generation)
	}
	s.recordRun(chainID, generation, snapshot, true, !published, nil, time.Since(started))
	if published {
		s.logger.Info().Msgf("Published snapshot for chain %d: %d vaults, %d tokens, %d protocols", chainID, len(snapshot.Vaults), len(snapshot.Tokens), len(snapshot.Protocols))
		s.publishRefreshEvent(chainID, snapshot)
	}
	return nil
}

// ForceRefresh drops the cached source payloads before refreshing so every
// fetch hits its origin instead of a possibly stale cache entry.
func (s *syncService) ForceRefresh(ctx context.Context, chainID int) error {
	if s.redisClient != nil {
		if err := s.redisClient.InvalidateSourcePayloads(); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to invalidate cached source payloads")
		}
	}
	return s.Refresh(ctx, chainID)
}

// LastRuns returns the most recent refresh run and the most recent run whose
// snapshot was actually published, nil when the audit table has no matching
// row or auditing is disabled.
func (s *syncService) LastRuns(chainID int) (*schema.RefreshRun, *schema.RefreshRun) {
	if s.refreshRuns == nil {
		return nil, nil
	}
	latest, err := s.refreshRuns.Latest(chainID)
	if err != nil {
		latest = nil
	}
	lastSuccess, err := s.refreshRuns.LatestSuccess(chainID)
	if err != nil {
		lastSuccess = nil
	}
	return latest, lastSuccess
}

func (s *syncService) partnerNetworks() map[int]bool {
	networks := make(map[int]bool)
	for _, chainID := range s.config.Ints("sync.partner-networks") {
		networks[chainID] = true
	}
	return networks
}

func (s *syncService) recordRun(chainID int, generation uint64, snapshot *Snapshot, success, superseded bool, runErr error, duration time.Duration) {
	if s.refreshRuns == nil {
		return
	}
	run := schema.RefreshRun{
		ID:         uuid.NewString(),
		ChainID:    chainID,
		Generation: generation,
		Revision:   s.store.Revision(),
		Success:    success,
		Superseded: superseded,
		DurationMs: duration.Milliseconds(),
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	if snapshot != nil {
		run.Counts = snapshotCounts(snapshot)
	}
	if err := s.refreshRuns.Save(run); err != nil {
		s.logger.Error().Err(err).Msgf("Failed to save refresh run for chain %d", chainID)
	}
}

func (s *syncService) notifyFailure(chainID int, runErr error) {
	if s.slackQueue == nil {
		return
	}
	notification := schema.SlackNotifications{
		Source:  "refresh",
		ChainID: chainID,
		Message: fmt.Sprintf("Refresh failed for chain %d: %v", chainID, runErr),
	}
	if err := s.slackQueue.Enqueue(notification); err != nil {
		s.logger.Error().Err(err).Msg("Failed to enqueue slack notification")
	}
}

func (s *syncService) publishRefreshEvent(chainID int, snapshot *Snapshot) {
	if s.amqp == nil || s.amqp.Channel == nil {
		return
	}
	event := map[string]interface{}{
		"chainID":  chainID,
		"revision": s.store.Revision(),
		"counts":   snapshotCounts(snapshot),
	}
	body, err := json.Marshal(event)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to marshal refresh event")
		return
	}
	if err := s.amqp.Publish("refresh.completed", body); err != nil {
		s.logger.Error().Err(err).Msg("Failed to publish refresh event")
	}
}

func snapshotCounts(snapshot *Snapshot) schema.JSONMap {
	anomalies := 0
	for _, vault := range snapshot.Vaults {
		if vault.HasAnomalies() {
			anomalies++
		}
	}
	return schema.JSONMap{
		"vaults":         strconv.Itoa(len(snapshot.Vaults)),
		"tokens":         strconv.Itoa(len(snapshot.Tokens)),
		"protocols":      strconv.Itoa(len(snapshot.Protocols)),
		"strategies":     strconv.Itoa(len(snapshot.Strategies)),
		"partners":       strconv.Itoa(len(snapshot.Partners)),
		"vaultAnomalies": strconv.Itoa(anomalies),
	}
}
