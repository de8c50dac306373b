// Package realtime broadcasts cache invalidation messages between API
// instances over a Redis pub/sub channel.
package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Message names published on the channel.
const (
	MessageDepartmentRules = "department_rules"
)

type Client struct {
	rdb     *goredis.Client
	channel string
}

// NewClient connects and pings Redis.
func NewClient(ctx context.Context, addr, password string, db int, channel string) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	slog.Info("Redis connected", "addr", addr, "channel", channel)
	return &Client{rdb: rdb, channel: channel}, nil
}

// Publish sends message to every subscribed instance, including this one.
func (c *Client) Publish(ctx context.Context, message string) error {
	if err := c.rdb.Publish(ctx, c.channel, message).Err(); err != nil {
		return fmt.Errorf("failed to publish %s: %w", message, err)
	}
	return nil
}

// Subscribe calls handler for every message until ctx is cancelled.
func (c *Client) Subscribe(ctx context.Context, handler func(message string)) {
	sub := c.rdb.Subscribe(ctx, c.channel)
	defer sub.Close()

	ch := sub.Channel()
	slog.Info("Realtime subscriber started", "channel", c.channel)
	for {
		select {
		case <-ctx.Done():
			slog.Info("Realtime subscriber stopped", "channel", c.channel)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			handler(msg.Payload)
		}
	}
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
