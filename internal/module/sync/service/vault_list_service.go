package service

import (
	"context"
	"fmt"

	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"

	"github.com/yearn/ySync/internal/module/shared"
)

// VaultListService fetches the primary vault listing. This source is
// authoritative for vault existence.
type VaultListService interface {
	FetchVaults(ctx context.Context, chainID int) ([]APIVault, error)
}

type vaultListService struct {
	config      *koanf.Koanf
	redisClient *shared.RedisClient
	logger      zerolog.Logger
}

func NewVaultListService(cfg *koanf.Koanf, redisClient *shared.RedisClient, logger zerolog.Logger) VaultListService {
	return &vaultListService{
		config:      cfg,
		redisClient: redisClient,
		logger:      logger,
	}
}

func (s *vaultListService) FetchVaults(ctx context.Context, chainID int) ([]APIVault, error) {
	url := fmt.Sprintf("%s/v1/chains/%d/vaults/all?classification=all&strategiesDetails=withDetails&strategiesRisk=withRisk",
		s.config.String("sync.api-base"), chainID)

	var vaults []APIVault
	cacheKey := fmt.Sprintf("source:vaults:%d", chainID)
	if err := fetchJSON(ctx, s.config, s.redisClient, s.logger, cacheKey, url, &vaults); err != nil {
		return nil, err
	}
	return vaults, nil
}
