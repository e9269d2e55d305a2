package service

import (
	"context"

	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"

	"github.com/yearn/ySync/internal/module/shared"
)

// PartnerService fetches the exporter partner registry. The registry is a
// remote script, so a format drift upstream degrades the parse to fewer
// partners instead of failing the refresh; a zero-result parse is logged as
// a parse-confidence signal rather than swallowed.
type PartnerService interface {
	FetchExporterPartners(ctx context.Context) ([]NetworkPartners, error)
}

type partnerService struct {
	config      *koanf.Koanf
	redisClient *shared.RedisClient
	logger      zerolog.Logger
}

func NewPartnerService(cfg *koanf.Koanf, redisClient *shared.RedisClient, logger zerolog.Logger) PartnerService {
	return &partnerService{
		config:      cfg,
		redisClient: redisClient,
		logger:      logger,
	}
}

func (s *partnerService) FetchExporterPartners(ctx context.Context) ([]NetworkPartners, error) {
	url := s.config.String("sync.exporter-url")
	body, err := fetchRaw(ctx, s.config, s.redisClient, s.logger, "source:exporter:partners", url)
	if err != nil {
		return nil, err
	}

	parsed := ParseExporterPartners(string(body))
	total := 0
	for _, section := range parsed {
		total += len(section.Partners)
	}
	if total == 0 {
		s.logger.Warn().Msgf("Exporter partner parse yielded no partners from %s, continuing with empty contribution", url)
		return nil, nil
	}
	return parsed, nil
}
