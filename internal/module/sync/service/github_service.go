package service

import (
	"context"
	"fmt"

	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"

	"github.com/yearn/ySync/internal/module/shared"
)

// GithubService lists the per-chain meta-file directories of the companion
// content repository. Only the file names matter; presence or absence of a
// file is itself a tracked signal.
type GithubService interface {
	ListVaultMetaFiles(ctx context.Context, chainID int) ([]RepoContent, error)
	ListProtocolMetaFiles(ctx context.Context, chainID int) ([]RepoContent, error)
	ListPartnerFiles(ctx context.Context, chainID int) ([]RepoContent, error)
}

type githubService struct {
	config      *koanf.Koanf
	redisClient *shared.RedisClient
	logger      zerolog.Logger
}

func NewGithubService(cfg *koanf.Koanf, redisClient *shared.RedisClient, logger zerolog.Logger) GithubService {
	return &githubService{
		config:      cfg,
		redisClient: redisClient,
		logger:      logger,
	}
}

func (s *githubService) ListVaultMetaFiles(ctx context.Context, chainID int) ([]RepoContent, error) {
	return s.listContents(ctx, "vault-meta", s.config.String("sync.github.vault-meta-path"), chainID)
}

func (s *githubService) ListProtocolMetaFiles(ctx context.Context, chainID int) ([]RepoContent, error) {
	return s.listContents(ctx, "protocol-meta", s.config.String("sync.github.protocol-meta-path"), chainID)
}

func (s *githubService) ListPartnerFiles(ctx context.Context, chainID int) ([]RepoContent, error) {
	return s.listContents(ctx, "partners", s.config.String("sync.github.partners-path"), chainID)
}

func (s *githubService) listContents(ctx context.Context, kind, path string, chainID int) ([]RepoContent, error) {
	url := fmt.Sprintf("%s/repos/%s/contents/%s/%d",
		s.config.String("sync.github.api-base"), s.config.String("sync.github.repo"), path, chainID)

	var contents []RepoContent
	cacheKey := fmt.Sprintf("source:github:%s:%d", kind, chainID)
	if err := fetchJSON(ctx, s.config, s.redisClient, s.logger, cacheKey, url, &contents); err != nil {
		return nil, err
	}
	return contents, nil
}
