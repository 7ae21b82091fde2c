package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dodam-health/glucoquest/internal/domain"
	"github.com/redis/go-redis/v9"
)

const profileTTL = 24 * time.Hour

// Redis is a profile cache backed by a Redis instance, for deployments
// with more than one service replica.
type Redis struct {
	client *redis.Client
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(host, port string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", host, port),
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &Redis{client: client}, nil
}

func (r *Redis) Get(ctx context.Context, subjectID uint) (*domain.Principal, bool) {
	key := profileKey(subjectID)
	result := r.client.Get(ctx, key)
	if result.Err() != nil {
		return nil, false
	}
	var p domain.Principal
	if err := json.Unmarshal([]byte(result.Val()), &p); err != nil {
		return nil, false
	}
	return &p, true
}

func (r *Redis) Set(ctx context.Context, subjectID uint, p *domain.Principal) {
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	r.client.Set(ctx, profileKey(subjectID), data, profileTTL)
}

// Close closes the Redis connection.
func (r *Redis) Close() error {
	return r.client.Close()
}

func profileKey(subjectID uint) string {
	return fmt.Sprintf("subject:%d:profile", subjectID)
}
