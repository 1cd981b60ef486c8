// Package presence tracks which clients are currently online in each room.
// It is advisory data for room listings and member views; authorization never
// consults it.
package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/banterhq/banter/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

type Registry struct {
	client    *redis.Client
	keyPrefix string
}

func NewRegistry(cfg *config.Config) (*Registry, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddress(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.Db,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
		PoolSize:     cfg.Redis.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Registry{client: client, keyPrefix: "presence:room:"}, nil
}

func (r *Registry) roomKey(roomID string) string {
	return r.keyPrefix + roomID
}

func (r *Registry) MarkOnline(ctx context.Context, roomID, clientID string) error {
	return r.client.SAdd(ctx, r.roomKey(roomID), clientID).Err()
}

func (r *Registry) MarkOffline(ctx context.Context, roomID, clientID string) error {
	return r.client.SRem(ctx, r.roomKey(roomID), clientID).Err()
}

func (r *Registry) OnlineCount(ctx context.Context, roomID string) (int64, error) {
	return r.client.SCard(ctx, r.roomKey(roomID)).Result()
}

func (r *Registry) OnlineClients(ctx context.Context, roomID string) ([]string, error) {
	return r.client.SMembers(ctx, r.roomKey(roomID)).Result()
}

func (r *Registry) Close() error {
	return r.client.Close()
}
