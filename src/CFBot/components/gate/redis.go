package gate

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keySeen     = "castforge:seen:"
	keyCooldown = "castforge:cooldown:"
	keyReply    = "castforge:reply:"

	// seenTTL bounds key growth in a shared store; long enough that a cast is
	// never reprocessed within any realistic redelivery window.
	seenTTL = 24 * time.Hour
	opWait  = 3 * time.Second
)

// Redis is the gate for multi-instance deployments: all instances share one
// seen-set and cooldown space.
type Redis struct {
	rdb    *redis.Client
	window time.Duration
}

func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb, window: DefaultCooldown}
}

func (g *Redis) MarkSeen(hash string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), opWait)
	defer cancel()
	ok, err := g.rdb.SetNX(ctx, keySeen+hash, 1, seenTTL).Result()
	if err != nil {
		// Fail open: a missed dedup is better than a dropped mention.
		log.Printf("gate: redis MarkSeen %s: %v", hash, err)
		return true
	}
	return ok
}

func (g *Redis) Seen(hash string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), opWait)
	defer cancel()
	n, err := g.rdb.Exists(ctx, keySeen+hash).Result()
	if err != nil {
		log.Printf("gate: redis Seen %s: %v", hash, err)
		return false
	}
	return n > 0
}

func (g *Redis) ClearSeen(hash string) {
	ctx, cancel := context.WithTimeout(context.Background(), opWait)
	defer cancel()
	g.rdb.Del(ctx, keySeen+hash)
}

func (g *Redis) CooldownActive(hash string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), opWait)
	defer cancel()
	n, err := g.rdb.Exists(ctx, keyCooldown+hash).Result()
	if err != nil {
		log.Printf("gate: redis CooldownActive %s: %v", hash, err)
		return false
	}
	return n > 0
}

func (g *Redis) MarkCooldown(hash string) {
	ctx, cancel := context.WithTimeout(context.Background(), opWait)
	defer cancel()
	g.rdb.Set(ctx, keyCooldown+hash, 1, g.window)
}

func (g *Redis) ClearCooldown(hash string) {
	ctx, cancel := context.WithTimeout(context.Background(), opWait)
	defer cancel()
	g.rdb.Del(ctx, keyCooldown+hash)
}

func (g *Redis) RecordReply(hash string) {
	if hash == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), opWait)
	defer cancel()
	g.rdb.Set(ctx, keyReply+hash, time.Now().UnixMilli(), entryMaxAge)
}

func (g *Redis) RepliedRecently(hash string, within time.Duration) bool {
	ctx, cancel := context.WithTimeout(context.Background(), opWait)
	defer cancel()
	ms, err := g.rdb.Get(ctx, keyReply+hash).Int64()
	if err != nil {
		return false
	}
	return time.Since(time.UnixMilli(ms)) < within
}
