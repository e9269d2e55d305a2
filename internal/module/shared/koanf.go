package shared

import (
	"log"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/yearn/ySync/utils/config"
)

func unmarshalChains(k *koanf.Koanf) []config.Chain {
	var chains []config.Chain
	err := k.Unmarshal("networks", &chains)
	if err != nil {
		log.Fatalf("Unmarshal chains error: %v", err)
	}
	k.Set("chains", chains)
	return chains
}

func NewKoanfInstance() *koanf.Koanf {
	k := koanf.New(".")

	defaultValues := map[string]interface{}{
		"app.name":                "ysync",
		"app.host:":               ":8080",
		"app.idle-timeout":        50 * time.Second,
		"app.print-routes":        false,
		"app.prefork":             false,
		"app.production":          false,
		"redis.keeplive-interval": 30 * time.Second,
		"redis.retry-count":       3,
		"amqp.keeplive-interval":  30 * time.Second,
		"amqp.retry-count":        3,
		"sync.fetch-timeout":      30,
		"sync.refresh-timeout":    45 * time.Second,
		"sync.source-cache-ttl":   5 * time.Minute,
		"sync.api-base":           "https://ydaemon.yearn.fi",
		"sync.meta-base":          "https://meta.yearn.fi",
		"sync.exporter-url":       "https://yearn-exporter.s3.amazonaws.com/partners.txt",
		"sync.github.api-base":    "https://api.github.com",
		"sync.github.repo":        "yearn/ydaemon",
	}

	if err := k.Load(confmap.Provider(defaultValues, "."), nil); err != nil {
		log.Fatalf("error loading default values: %v", err)
	}

	if err := k.Load(file.Provider("config/default.yaml"), yaml.Parser()); err != nil {
		log.Panicf("Error loading defautl config: %v", err)
	}
	log.Println("Load local config!")

	// Env vars override file config, ysync_redis_url becomes redis.url.
	if err := k.Load(env.ProviderWithValue("ysync_", ".", func(s string, v string) (string, interface{}) {
		key := strings.Replace(strings.TrimPrefix(s, "ysync_"), "_", ".", -1)

		if strings.Contains(v, " ") {
			return key, strings.Split(v, " ")
		}

		return key, v
	}), nil); err != nil {
		log.Panicf("Error loading env: %v", err)
	}

	unmarshalChains(k)
	return k
}
