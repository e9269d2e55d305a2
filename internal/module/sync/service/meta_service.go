package service

import (
	"context"
	"fmt"

	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"

	"github.com/yearn/ySync/internal/module/shared"
)

// MetaService fetches the strategy, token and protocol metadata sources,
// each with its localization maps included.
type MetaService interface {
	FetchStrategies(ctx context.Context, chainID int) ([]StrategyMeta, error)
	FetchTokens(ctx context.Context, chainID int) ([]TokenMeta, error)
	FetchProtocols(ctx context.Context, chainID int) ([]ProtocolMeta, error)
}

type metaService struct {
	config      *koanf.Koanf
	redisClient *shared.RedisClient
	logger      zerolog.Logger
}

func NewMetaService(cfg *koanf.Koanf, redisClient *shared.RedisClient, logger zerolog.Logger) MetaService {
	return &metaService{
		config:      cfg,
		redisClient: redisClient,
		logger:      logger,
	}
}

func (s *metaService) FetchStrategies(ctx context.Context, chainID int) ([]StrategyMeta, error) {
	var strategies []StrategyMeta
	if err := s.fetchMeta(ctx, chainID, "strategies", &strategies); err != nil {
		return nil, err
	}
	return strategies, nil
}

func (s *metaService) FetchTokens(ctx context.Context, chainID int) ([]TokenMeta, error) {
	var tokens []TokenMeta
	if err := s.fetchMeta(ctx, chainID, "tokens", &tokens); err != nil {
		return nil, err
	}
	return tokens, nil
}

func (s *metaService) FetchProtocols(ctx context.Context, chainID int) ([]ProtocolMeta, error) {
	var protocols []ProtocolMeta
	if err := s.fetchMeta(ctx, chainID, "protocols", &protocols); err != nil {
		return nil, err
	}
	return protocols, nil
}

func (s *metaService) fetchMeta(ctx context.Context, chainID int, kind string, out interface{}) error {
	url := fmt.Sprintf("%s/api/%d/%s/all?loc=all", s.config.String("sync.meta-base"), chainID, kind)
	cacheKey := fmt.Sprintf("source:meta:%s:%d", kind, chainID)
	return fetchJSON(ctx, s.config, s.redisClient, s.logger, cacheKey, url, out)
}
