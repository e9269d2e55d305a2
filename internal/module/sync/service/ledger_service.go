package service

import (
	"context"

	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"

	"github.com/yearn/ySync/internal/module/shared"
)

// LedgerService fetches the two ledger-plugin integration files: the list
// of contracts deployed in the released plugin and the list pending on the
// fork branch.
type LedgerService interface {
	FetchDeployed(ctx context.Context) ([]LedgerContract, error)
	FetchIncoming(ctx context.Context) ([]LedgerContract, error)
}

type ledgerService struct {
	config      *koanf.Koanf
	redisClient *shared.RedisClient
	logger      zerolog.Logger
}

func NewLedgerService(cfg *koanf.Koanf, redisClient *shared.RedisClient, logger zerolog.Logger) LedgerService {
	return &ledgerService{
		config:      cfg,
		redisClient: redisClient,
		logger:      logger,
	}
}

func (s *ledgerService) FetchDeployed(ctx context.Context) ([]LedgerContract, error) {
	return s.fetchContracts(ctx, "source:ledger:deployed", s.config.String("sync.ledger.deployed-url"))
}

func (s *ledgerService) FetchIncoming(ctx context.Context) ([]LedgerContract, error) {
	return s.fetchContracts(ctx, "source:ledger:incoming", s.config.String("sync.ledger.incoming-url"))
}

func (s *ledgerService) fetchContracts(ctx context.Context, cacheKey, url string) ([]LedgerContract, error) {
	var payload struct {
		Contracts []LedgerContract `json:"contracts"`
	}
	if err := fetchJSON(ctx, s.config, s.redisClient, s.logger, cacheKey, url, &payload); err != nil {
		return nil, err
	}
	return payload.Contracts, nil
}
