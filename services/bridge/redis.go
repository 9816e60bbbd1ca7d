package bridge

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis mirrors fields with one pipeline per message: HSET of every field,
// then a PUBLISH of "name:value" per field on the channel named key.
type Redis struct {
	client *redis.Client
}

// RedisDialer returns a Dialer that connects to addr and checks it with PING.
func RedisDialer(addr, password string, db int) Dialer {
	return func(ctx context.Context) (Store, error) {
		c := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		})
		if err := c.Ping(ctx).Err(); err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return &Redis{client: c}, nil
	}
}

func (r *Redis) Mirror(ctx context.Context, key string, fields []Field) error {
	pipe := r.client.Pipeline()
	args := make([]any, 0, 2*len(fields))
	for _, f := range fields {
		args = append(args, f.Name, f.Value)
	}
	pipe.HSet(ctx, key, args...)
	for _, f := range fields {
		pipe.Publish(ctx, key, f.Name+":"+f.Value)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *Redis) Close() error { return r.client.Close() }
