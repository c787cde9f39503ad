package redis

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// Redis holds a per-tour reservation lock. Only one request may run the
// capacity check and insert for a tour at a time; requests for different
// tours never contend with one another.
type Redis struct {
	Client  *redis.Client
	LockTTL time.Duration
	Logger  *log.Logger
}

const (
	acquireWait    = 2 * time.Second
	acquireBackoff = 25 * time.Millisecond
)

func NewRedis(client *redis.Client, lockTTL time.Duration) *Redis {
	if lockTTL <= 0 {
		lockTTL = 10 * time.Second
	}
	return &Redis{
		Client:  client,
		LockTTL: lockTTL,
		Logger:  log.Default(),
	}
}

func lockKey(tourID string) string {
	return "tour_lock:" + tourID
}

// LockTour acquires the reservation lock for a tour, retrying with a short
// backoff until acquireWait elapses. The owner token guards against one
// request released by another. The TTL bounds the hold so a crashed holder
// cannot wedge the tour.
func (r *Redis) LockTour(ctx context.Context, tourID, ownerID string) (bool, error) {
	deadline := time.Now().Add(acquireWait)
	for {
		ok, err := r.Client.SetNX(ctx, lockKey(tourID), ownerID, r.LockTTL).Result()
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
		if time.Now().After(deadline) {
			r.Logger.Printf("REDIS: gave up acquiring lock for tour %s", tourID)
			return false, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(acquireBackoff):
		}
	}
}

// UnlockTour releases the lock if the caller still owns it.
func (r *Redis) UnlockTour(ctx context.Context, tourID, ownerID string) error {
	key := lockKey(tourID)
	val, err := r.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil // expired or already released
	}
	if err != nil {
		return err
	}
	if val == ownerID {
		_, err := r.Client.Del(ctx, key).Result()
		return err
	}
	return fmt.Errorf("lock for tour %s held by another owner", tourID)
}
