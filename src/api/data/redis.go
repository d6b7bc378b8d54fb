package data

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
)

const streamFeed = "safesync.feed"

func MustRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	return redis.NewClient(opt)
}

// PublishFeedEvent signals feed consumers that a team's feed changed. The
// dashboard holds a live subscription on this stream and refetches on every
// event rather than diffing.
func PublishFeedEvent(ctx context.Context, rdb *redis.Client, payload map[string]interface{}) error {
	_, err := rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: streamFeed,
		Values: payload,
	}).Result()
	return err
}
