package recorder

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "dreamcatcher:recording:"
	redisBufferTTL = 10 * time.Minute
)

// RedisBuffer хранит куски записи в списке Redis
type RedisBuffer struct {
	client redis.Cmdable
	key    string
}

func NewRedisBuffer(client redis.Cmdable, ownerID string) *RedisBuffer {
	return &RedisBuffer{client: client, key: redisKeyPrefix + ownerID}
}

func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func (b *RedisBuffer) Append(ctx context.Context, chunk []byte) error {
	pipe := b.client.TxPipeline()
	pipe.RPush(ctx, b.key, chunk)
	pipe.Expire(ctx, b.key, redisBufferTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (b *RedisBuffer) Bytes(ctx context.Context) ([]byte, error) {
	chunks, err := b.client.LRange(ctx, b.key, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	for _, c := range chunks {
		buf.WriteString(c)
	}
	return buf.Bytes(), nil
}

func (b *RedisBuffer) Reset(ctx context.Context) error {
	return b.client.Del(ctx, b.key).Err()
}
