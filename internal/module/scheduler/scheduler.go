package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"

	"github.com/yearn/ySync/internal/module/shared"
	"github.com/yearn/ySync/internal/module/sync/repository"
	"github.com/yearn/ySync/internal/module/sync/service"
	"github.com/yearn/ySync/utils/config"
)

// Scheduler struct to hold services, repositories and logger
type Scheduler struct {
	SyncService                 service.SyncService
	RefreshRunRepository        repository.RefreshRunRepository
	SlackNotificationRepository repository.SlackNotificationRepository
	redisClient                 *shared.RedisClient
	cfg                         *koanf.Koanf
	Logger                      zerolog.Logger
}

// NewScheduler creates a new Scheduler
func NewScheduler(syncService service.SyncService, refreshRunRepository repository.RefreshRunRepository, slackNotificationRepository repository.SlackNotificationRepository, redisClient *shared.RedisClient, cfg *koanf.Koanf, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		SyncService:                 syncService,
		RefreshRunRepository:        refreshRunRepository,
		SlackNotificationRepository: slackNotificationRepository,
		redisClient:                 redisClient,
		cfg:                         cfg,
		Logger:                      logger,
	}
}

func (s *Scheduler) chainIDs() []int {
	var chains []config.Chain
	if err := s.cfg.Unmarshal("chains", &chains); err != nil {
		s.Logger.Error().Err(err).Msg("Failed to unmarshal chains config")
		return nil
	}
	ids := make([]int, 0, len(chains))
	for _, chain := range chains {
		ids = append(ids, chain.ChainID)
	}
	return ids
}

func (s *Scheduler) refreshAllChains() {
	for _, chainID := range s.chainIDs() {
		redisLockKey := fmt.Sprintf("sync_refresh_%d_lock", chainID)
		if s.redisClient.AcquireLock(redisLockKey, 1*time.Minute) {
			if err := s.SyncService.Refresh(context.Background(), chainID); err != nil {
				s.Logger.Error().Err(err).Msgf("Failed to refresh chain %d", chainID)
			} else {
				s.Logger.Info().Msgf("Refreshed chain %d", chainID)
			}
			s.redisClient.ReleaseLock(redisLockKey)
		}
	}
}

// StartRefreshLoop refreshes every configured chain on an interval, with an
// initial pass at startup so a snapshot is available shortly after boot.
func (s *Scheduler) StartRefreshLoop() {
	s.refreshAllChains()

	interval := s.cfg.Duration("sync.refresh-interval")
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		s.refreshAllChains()
	}
}

func (s *Scheduler) StartProcessSlackNotifications() {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for range ticker.C {
		redisLockKey := "sync_process_slack_notifications_lock"
		if s.redisClient.AcquireLock(redisLockKey, 1*time.Minute) {
			if err := s.processSlackNotifications(); err != nil {
				s.Logger.Error().Err(err).Msg("Failed to process slack notifications")
			}
			s.redisClient.ReleaseLock(redisLockKey)
		}
	}
}

func (s *Scheduler) processSlackNotifications() error {
	notifications, err := s.SlackNotificationRepository.PendingNotifications(20)
	if err != nil {
		return err
	}
	if len(notifications) == 0 {
		return nil
	}

	processed := make([]uint64, 0, len(notifications))
	for _, notification := range notifications {
		alertKey := fmt.Sprintf("slack_notifications:%s:%d", notification.Source, notification.ChainID)
		if err := shared.SendSlackAlert(alertKey, notification.Message, s.Logger, s.redisClient); err != nil {
			s.Logger.Error().Err(err).Msgf("Failed to send slack notification %d", notification.ID)
			continue
		}
		processed = append(processed, notification.ID)
	}
	return s.SlackNotificationRepository.MarkProcessed(processed)
}

func (s *Scheduler) StartProcessDeleteOldData() {
	ticker := time.NewTicker(8 * time.Hour)
	defer ticker.Stop()
	for range ticker.C {
		redisLockKey := "sync_delete_old_data_lock"
		if s.redisClient.AcquireLock(redisLockKey, 1*time.Minute) {
			cutoff := time.Now().AddDate(0, 0, -30)
			if err := s.RefreshRunRepository.DeleteOlderThan(cutoff); err != nil {
				s.Logger.Error().Err(err).Msg("Failed to delete old refresh runs")
			} else {
				s.Logger.Info().Msg("Deleted old refresh runs")
			}
			s.redisClient.ReleaseLock(redisLockKey)
		}
	}
}
