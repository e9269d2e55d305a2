package shared

import (
	"context"
	"time"

	"github.com/knadh/koanf/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type RedisClient struct {
	Client           *redis.Client
	url              string
	options          *redis.Options
	retryCount       int
	keepliveInterval time.Duration
	logger           zerolog.Logger
}

const (
	redisSourcePayloadPrefix = "source:payload:"
	batchSize                = 1000
	maxRetries               = 3
)

func NewRedisClient(cfg *koanf.Koanf, logger zerolog.Logger) *RedisClient {
	url := cfg.String("redis.url")
	opts, err := redis.ParseURL(url)
	if err != nil {
		logger.Panic().Err(err)
	}

	return &RedisClient{
		Client:           nil,
		options:          opts,
		logger:           logger,
		url:              url,
		retryCount:       cfg.Int("redis.retry-count"),
		keepliveInterval: cfg.Duration("redis.keeplive-interval"),
	}
}

func (r *RedisClient) keeplive() {
	for {
		if r.Client != nil {
			for i := 1; i <= r.retryCount; i++ {
				_, err := r.Client.Ping(context.Background()).Result()
				if err == nil || err == redis.Nil {
					break
				}
				if i == r.retryCount {
					r.Close()
					r.logger.Panic().Msgf("Failed to connect to Redis: %v. Retrying in %v...\n", err, i)
					return
				}
				r.logger.Warn().Msgf("Failed to connect to Redis: %v. Retrying in %v...\n", err, i)
				r.Client = redis.NewClient(r.options)
			}
		} else {
			r.Client = redis.NewClient(r.options)
		}

		time.Sleep(r.keepliveInterval)
	}
}

func (r *RedisClient) Connect() {
	r.Client = redis.NewClient(r.options)
	go r.keeplive()
}

func (r *RedisClient) Close() error {
	return r.Client.Close()
}

func (r *RedisClient) DeleteKeysByPrefix(prefix string) error {
	if r.Client == nil {
		return nil
	}
	ctx := context.Background()
	iter := r.Client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= batchSize {
			if err := r.DeleteKeyBatch(keys); err != nil {
				return err
			}
			keys = keys[:0]
		}
	}

	if len(keys) > 0 {
		if err := r.DeleteKeyBatch(keys); err != nil {
			return err
		}
	}

	return iter.Err()
}

func (r *RedisClient) DeleteKeyBatch(keys []string) error {
	if r.Client == nil {
		return nil
	}
	ctx := context.Background()

	for i := 0; i < len(keys); i += batchSize {
		end := i + batchSize
		if end > len(keys) {
			end = len(keys)
		}
		batch := keys[i:end]

		for retries := 0; retries < maxRetries; retries++ {
			pipe := r.Client.Pipeline()
			for _, key := range batch {
				pipe.Del(ctx, key)
			}
			_, err := pipe.Exec(ctx)
			if err != nil {
				if retries == maxRetries-1 {
					return err
				}
				continue
			}
			break
		}
	}

	return nil
}

// InvalidateSourcePayloads drops every cached source payload so the next
// fetch of each source hits its origin.
func (r *RedisClient) InvalidateSourcePayloads() error {
	return r.DeleteKeysByPrefix(redisSourcePayloadPrefix)
}

// AcquireLock is a no-op returning false until Connect has run.
func (r *RedisClient) AcquireLock(lockKey string, ttl time.Duration) bool {
	if r.Client == nil {
		r.logger.Debug().Msg("Redis not connected, cannot acquire lock, key: " + lockKey)
		return false
	}
	ctx := context.Background()
	ok, err := r.Client.SetNX(ctx, lockKey, "locked", ttl).Result()
	if err != nil {
		r.logger.Debug().Msg("Failed to acquire lock, key: " + lockKey)
		return false
	}
	if !ok {
		r.logger.Debug().Msg("Task already locked by another instance, key: " + lockKey)
		return false
	}
	return true
}

func (r *RedisClient) ReleaseLock(lockKey string) {
	if r.Client == nil {
		return
	}
	ctx := context.Background()
	r.Client.Del(ctx, lockKey)
}

// GetSourcePayload returns a cached raw source payload, redis.Nil when the
// key expired or was never set.
func (r *RedisClient) GetSourcePayload(ctx context.Context, key string) ([]byte, error) {
	return r.Client.Get(ctx, redisSourcePayloadPrefix+key).Bytes()
}

func (r *RedisClient) SetSourcePayload(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	return r.Client.Set(ctx, redisSourcePayloadPrefix+key, payload, ttl).Err()
}
