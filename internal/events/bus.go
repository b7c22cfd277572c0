// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"github.com/tomtom215/assesslink/internal/config"
	"github.com/tomtom215/assesslink/internal/logging"
	"github.com/tomtom215/assesslink/internal/metrics"
)

const metadataCorrelationID = "correlation_id"

// Config holds bus settings.
type Config struct {
	Buffer        int64
	Retries       int
	RetryInterval time.Duration
	CloseTimeout  time.Duration
}

// ConfigFrom converts the application config section.
func ConfigFrom(cfg *config.EventsConfig) Config {
	return Config{
		Buffer:        int64(cfg.Buffer),
		Retries:       cfg.Retries,
		RetryInterval: cfg.RetryInterval,
		CloseTimeout:  cfg.RouterCloseWait,
	}
}

// Bus is an in-process publisher plus the router that runs subscribers.
type Bus struct {
	pubsub *gochannel.GoChannel
	router *message.Router
	logger watermill.LoggerAdapter
}

// NewBus builds the gochannel pub/sub and a router with recovery and retry
// middleware. Register handlers with Subscribe before calling Run.
func NewBus(cfg Config) (*Bus, error) {
	if cfg.CloseTimeout <= 0 {
		cfg.CloseTimeout = 10 * time.Second
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 100 * time.Millisecond
	}
	logger := NewZerologAdapter(logging.WithComponent("events"))

	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: cfg.Buffer,
	}, logger)

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	retry := middleware.Retry{
		MaxRetries:      cfg.Retries,
		InitialInterval: cfg.RetryInterval,
		MaxInterval:     cfg.RetryInterval * 10,
		Multiplier:      2.0,
		Logger:          logger,
	}

	// Outermost first: give up after retries, then recover panics, then retry.
	router.AddMiddleware(dropAfterRetries(logger), middleware.Recoverer, retry.Middleware)

	return &Bus{pubsub: pubsub, router: router, logger: logger}, nil
}

// dropAfterRetries acks a message whose handler failed every retry.
// gochannel would otherwise redeliver a nacked message indefinitely.
func dropAfterRetries(logger watermill.LoggerAdapter) message.HandlerMiddleware {
	return func(h message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			out, err := h(msg)
			if err != nil {
				topic := message.SubscribeTopicFromCtx(msg.Context())
				logger.Error("Dropping event after retries", err, watermill.LogFields{
					"message_uuid": msg.UUID,
					"topic":        topic,
				})
				metrics.RecordEventDropped(topic)
				return nil, nil
			}
			return out, nil
		}
	}
}

// Publish encodes payload as JSON and publishes it to topic.
func (b *Bus) Publish(ctx context.Context, topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		metrics.RecordEventPublished(topic, err)
		return fmt.Errorf("encode %s event: %w", topic, err)
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		msg.Metadata.Set(metadataCorrelationID, id)
	}
	err = b.pubsub.Publish(topic, msg)
	metrics.RecordEventPublished(topic, err)
	if err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Subscribe registers handler for topic under a unique name. The handler
// receives a context carrying the publisher's correlation id.
func Subscribe[T any](b *Bus, name, topic string, handler func(ctx context.Context, event T) error) {
	b.router.AddConsumerHandler(name, topic, b.pubsub, func(msg *message.Message) error {
		var event T
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			// Malformed payloads will not improve on retry.
			b.logger.Error("Discarding undecodable event", err, watermill.LogFields{"handler": name})
			return nil
		}
		ctx := msg.Context()
		if id := msg.Metadata.Get(metadataCorrelationID); id != "" {
			ctx = logging.ContextWithCorrelationID(ctx, id)
		}
		return handler(ctx, event)
	})
}

// Run starts the router and blocks until ctx is done or Close is called.
func (b *Bus) Run(ctx context.Context) error {
	return b.router.Run(ctx)
}

// Running is closed once every handler is subscribed.
func (b *Bus) Running() chan struct{} {
	return b.router.Running()
}

// IsRunning reports whether the router is processing messages.
func (b *Bus) IsRunning() bool {
	return b.router.IsRunning()
}

// Close stops the router, then the pub/sub.
func (b *Bus) Close() error {
	rerr := b.router.Close()
	perr := b.pubsub.Close()
	if rerr != nil {
		return rerr
	}
	return perr
}
