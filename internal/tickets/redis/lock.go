package redis

import (
	"context"
	"fmt"
	"time"

	"shop-bot/internal/config"

	"github.com/go-redis/redis/v8"
)

// Redis guards ticket creation so two near-simultaneous requests from
// the same user cannot both open a ticket in the same category before
// either row lands in the database.
type Redis struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedis(client *redis.Client, cfg config.RedisConfig) *Redis {
	return &Redis{
		Client: client,
		TTL:    cfg.TicketLockTTL,
	}
}

func guardKey(userID int64, category string) string {
	return fmt.Sprintf("ticket_guard:%d:%s", userID, category)
}

// AcquireGuard takes the creation guard for a (user, category) pair.
// Returns false when another creation currently holds it. The TTL
// bounds how long a crashed creation can block the pair.
func (r *Redis) AcquireGuard(userID int64, category, ticketID string) (bool, error) {
	ok, err := r.Client.SetNX(context.Background(), guardKey(userID, category), ticketID, r.TTL).Result()
	return ok, err
}

// ReleaseGuard drops the guard, but only if this creation still owns
// it. An expired guard taken over by another creation is left alone.
func (r *Redis) ReleaseGuard(userID int64, category, ticketID string) error {
	ctx := context.Background()
	key := guardKey(userID, category)
	val, err := r.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}
	if val == ticketID {
		_, err := r.Client.Del(ctx, key).Result()
		return err
	}
	return nil
}
