package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"

	"github.com/yearn/ySync/internal/module/shared"
)

// ErrSourceFetch wraps any individual source failure. One failed source
// aborts the whole refresh; the previous snapshot stays visible.
var ErrSourceFetch = errors.New("source fetch failed")

const defaultSourceCacheTTL = 5 * time.Minute

// fetchRaw gets one source payload, going through the redis payload cache
// when a client is available so that refreshes retriggered within the TTL
// window see identical inputs.
func fetchRaw(ctx context.Context, cfg *koanf.Koanf, redisClient *shared.RedisClient, logger zerolog.Logger, cacheKey, url string) ([]byte, error) {
	if redisClient != nil && redisClient.Client != nil {
		if cached, err := redisClient.GetSourcePayload(ctx, cacheKey); err == nil && len(cached) > 0 {
			return cached, nil
		}
	}

	timeoutSecond := cfg.Int("sync.fetch-timeout")
	body, statusCode, err := shared.DoRequest(ctx, http.DefaultClient, url, map[string]string{"accept": "application/json"}, timeoutSecond)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceFetch, url, err)
	}
	if statusCode != http.StatusOK {
		if redisClient != nil && redisClient.Client != nil {
			shared.HandleErrorWithThrottling(redisClient, logger, cacheKey, fmt.Sprintf("url: %s, status code: %d", url, statusCode))
		}
		return nil, fmt.Errorf("%w: %s: status code %d", ErrSourceFetch, url, statusCode)
	}

	if redisClient != nil && redisClient.Client != nil {
		ttl := cfg.Duration("sync.source-cache-ttl")
		if ttl <= 0 {
			ttl = defaultSourceCacheTTL
		}
		if err := redisClient.SetSourcePayload(ctx, cacheKey, body, ttl); err != nil {
			logger.Debug().Err(err).Msgf("Failed to cache source payload for %s", cacheKey)
		}
	}
	return body, nil
}

func fetchJSON(ctx context.Context, cfg *koanf.Koanf, redisClient *shared.RedisClient, logger zerolog.Logger, cacheKey, url string, out interface{}) error {
	body, err := fetchRaw(ctx, cfg, redisClient, logger, cacheKey, url)
	if err != nil {
		return err
	}
	if err := shared.ParseJSONResponse(body, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSourceFetch, url, err)
	}
	return nil
}
