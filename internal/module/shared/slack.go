package shared

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

type SlackPayload struct {
	Channel   string `json:"channel"`
	Username  string `json:"username"`
	Text      string `json:"text"`
	IconEmoji string `json:"icon_emoji"`
}

const (
	RedisErrorCountPrefix   = "error_count:"
	RedisErrorCountDuration = 10 * time.Minute
	RedisErrorThreshold     = 5
)

// Webhook settings are injected once at startup from config so that tests
// and local runs never hit a real channel.
var (
	slackWebhookURL string
	slackChannel    = "#ysync-alert"
	slackUsername   = "ysync-bot"
)

func ConfigureSlack(webhookURL, channel, username string) {
	slackWebhookURL = webhookURL
	if channel != "" {
		slackChannel = channel
	}
	if username != "" {
		slackUsername = username
	}
}

func SendSlackAlert(alertedKey string, message string, logger zerolog.Logger, redisClient *RedisClient) error {
	if slackWebhookURL == "" {
		logger.Debug().Msg("Slack webhook not configured, skipping alert")
		return nil
	}

	ctx := context.Background()
	// Skip when an alert for this key is already outstanding.
	if counterValue, err := redisClient.Client.Get(ctx, alertedKey).Result(); err == nil && counterValue != "1" {
		return nil
	}
	payload := SlackPayload{
		Channel:  slackChannel,
		Username: slackUsername,
		Text:     message,
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to marshal Slack payload")
		return err
	}

	req, err := http.NewRequest("POST", slackWebhookURL, bytes.NewBuffer(payloadBytes))
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create Slack request")
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to send Slack request")
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Error().Msgf("Slack request failed with status code: %d", resp.StatusCode)
		return err
	}

	logger.Info().Msg("Slack notification sent successfully")
	return nil
}

// HandleErrorWithThrottling counts repeated failures per source key and only
// alerts once the threshold is crossed, so a flapping upstream does not spam
// the channel.
func HandleErrorWithThrottling(redisClient *RedisClient, logger zerolog.Logger, key string, errorMsg string) {
	ctx := context.Background()
	errorCountKey := RedisErrorCountPrefix + key
	alertedKey := errorCountKey + ":alerted"
	lockKey := errorCountKey + ":lock"

	lockAcquired, err := redisClient.Client.SetNX(ctx, lockKey, "1", time.Second*10).Result()
	if err != nil {
		return
	}
	if !lockAcquired {
		return
	}
	defer redisClient.Client.Del(ctx, lockKey)

	if _, err := redisClient.Client.Get(ctx, alertedKey).Result(); err == nil {
		return
	}

	count, err := redisClient.Client.Incr(ctx, errorCountKey).Result()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to increase error count")
		return
	}

	if count == 1 {
		redisClient.Client.Expire(ctx, errorCountKey, RedisErrorCountDuration)
	}

	if count >= RedisErrorThreshold {
		redisClient.Client.Set(ctx, alertedKey, "1", RedisErrorCountDuration)
		SendSlackAlert(key, fmt.Sprintf("Error threshold reached for %s: %s", key, errorMsg), logger, redisClient)
		redisClient.Client.Del(ctx, errorCountKey)
	}
}
