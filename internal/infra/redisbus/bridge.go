// Package redisbus relays realtime events between panel replicas over a
// Redis pub/sub channel.
package redisbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"signage-panel/internal/logger"
	"signage-panel/internal/metrics"
	"signage-panel/internal/realtime"

	"github.com/redis/go-redis/v9"
)

const DefaultChannel = "painel:events"

const (
	defaultRetryMin = 500 * time.Millisecond
	defaultRetryMax = 30 * time.Second
)

var errSubscriptionClosed = errors.New("subscription closed")

// Bridge publishes events to Redis and hands every event received on the
// channel, including its own, to the local publisher. When Redis cannot be
// reached the event is still delivered locally.
type Bridge struct {
	client  *redis.Client
	channel string
	local   realtime.Publisher
	logger  *slog.Logger

	retryMin time.Duration
	retryMax time.Duration
}

func New(client *redis.Client, channel string, local realtime.Publisher, l *slog.Logger) *Bridge {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Bridge{
		client:   client,
		channel:  channel,
		local:    local,
		logger:   logger.Or(l),
		retryMin: defaultRetryMin,
		retryMax: defaultRetryMax,
	}
}

// NewFromURL connects using a redis:// URL.
func NewFromURL(url, channel string, local realtime.Publisher, l *slog.Logger) (*Bridge, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return New(redis.NewClient(opts), channel, local, l), nil
}

func (b *Bridge) Close() error {
	return b.client.Close()
}

func (b *Bridge) Publish(ctx context.Context, ev realtime.Event) {
	data, err := json.Marshal(ev)
	if err == nil {
		err = b.client.Publish(ctx, b.channel, data).Err()
	}
	if err != nil {
		metrics.RecordEvent(ev.Type, "bridge_failed")
		b.logger.Warn("redis publish failed, delivering locally",
			"event", "redis_publish_failed", "module", "redisbus", "type", ev.Type, "error", err.Error())
		b.local.Publish(ctx, ev)
	}
}

// Run relays channel messages to the local publisher until ctx is done. A
// failed or dropped subscription is retried with a doubling backoff. While
// Redis is unreachable, Publish delivers locally. Run only returns once ctx
// is done, and then always with nil.
func (b *Bridge) Run(ctx context.Context) error {
	wait := b.retryMin
	for {
		subscribed, err := b.relay(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if subscribed {
			wait = b.retryMin
		}
		b.logger.Warn("redis subscription failed, retrying",
			"event", "redis_subscribe_failed", "module", "redisbus", "channel", b.channel,
			"retry_in", wait.String(), "error", err.Error())

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
		wait = min(wait*2, b.retryMax)
	}
}

// relay subscribes once and forwards messages until ctx is done or the
// subscription ends. subscribed reports whether Redis confirmed the
// subscription.
func (b *Bridge) relay(ctx context.Context) (subscribed bool, err error) {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return false, fmt.Errorf("subscribe %s: %w", b.channel, err)
	}
	b.logger.Info("redis bridge subscribed", "event", "redis_subscribed", "module", "redisbus", "channel", b.channel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return true, ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return true, errSubscriptionClosed
			}
			var ev realtime.Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				b.logger.Warn("discarding malformed event", "event", "redis_event_malformed", "module", "redisbus", "error", err.Error())
				continue
			}
			b.local.Publish(ctx, ev)
		}
	}
}
