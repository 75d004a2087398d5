package data

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
)

const streamMints = "castforge.mints"

func MustRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	return redis.NewClient(opt)
}

// PublishMint appends a mint event to the shared stream so other services
// (feeds, analytics) can follow completed creations.
func PublishMint(ctx context.Context, rdb *redis.Client, payload map[string]interface{}) error {
	_, err := rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: streamMints,
		Values: payload,
	}).Result()
	return err
}
