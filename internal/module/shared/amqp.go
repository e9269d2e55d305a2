package shared

import (
	"time"

	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
	amqplib "github.com/streadway/amqp"
)

type Amqp struct {
	Conn             *amqplib.Connection
	Channel          *amqplib.Channel
	Exchange         string
	ExchangeType     string
	url              string
	logger           zerolog.Logger
	keepliveInterval time.Duration
	retryCount       int
}

func NewRabbitMQ(cfg *koanf.Koanf, logger zerolog.Logger) *Amqp {
	amqp := Amqp{
		Exchange:         cfg.String("amqp.exchange"),
		ExchangeType:     cfg.String("amqp.exchange-type"),
		url:              cfg.String("amqp.url"),
		logger:           logger,
		retryCount:       cfg.Int("amqp.retry-count"),
		keepliveInterval: cfg.Duration("amqp.keeplive-interval"),
	}

	return &amqp
}

func (a *Amqp) keeplive() {
	var err error
	for {
		for i := 1; i <= a.retryCount; i++ {
			if a.Conn == nil || a.Conn.IsClosed() {
				a.Conn, err = amqplib.Dial(a.url)
				if err != nil {
					if i == a.retryCount {
						a.Close()
						a.logger.Panic().Msgf("Failed to connect to Amqp: %v. Retrying in %v...\n", err, i)
						return
					} else {
						a.logger.Warn().Msgf("Failed to connect to Amqp: %v. Retrying in %v...\n", err, i)
					}
				}
			}

			if a.Conn != nil && a.Channel != nil {
				break
			}

			a.Channel, err = a.Conn.Channel()
			if err != nil {
				a.logger.Warn().Msgf("Failed to create Channel to Amqp: %v. Retrying in %v...\n", err, i)
			} else {
				err = a.Channel.ExchangeDeclare(
					a.Exchange,
					a.ExchangeType,
					true,
					false,
					false,
					false,
					nil,
				)
				if err != nil {
					a.logger.Warn().Msgf("Failed to create Exchange to Amqp: %v. Retrying in %v...\n", err, i)
				}
				break
			}
		}

		time.Sleep(a.keepliveInterval)
	}
}

func (a *Amqp) Connect() {
	var err error
	a.Conn, err = amqplib.Dial(a.url)
	if err != nil {
		a.logger.Error().Msgf("Failed to connect to Amqp: %s\n", err)
		return
	}

	a.Channel, err = a.Conn.Channel()
	if err != nil {
		a.logger.Error().Msgf("Failed to create Amqp channel: %s\n", err)
		return
	}

	err = a.Channel.ExchangeDeclare(
		a.Exchange,
		a.ExchangeType,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		a.logger.Error().Msgf("Failed to declare Amqp exchange: %s\n", err)
		return
	}

	go a.keeplive()
}

// Publish sends one persistent JSON message to the configured exchange.
func (a *Amqp) Publish(routingKey string, body []byte) error {
	return a.Channel.Publish(
		a.Exchange,
		routingKey,
		false,
		false,
		amqplib.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqplib.Persistent,
			Body:         body,
		},
	)
}

// Close releases the connection and channel, pair with defer after Connect.
func (a *Amqp) Close() {
	a.Conn.Close()
	a.Channel.Close()
}
