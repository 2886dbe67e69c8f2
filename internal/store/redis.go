package store

import (
	"context"
	"fmt"
	"time"

	"notesnexus-backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// presenceTTL bounds how long a stale "online" record can linger if a final
// offline write never lands (crashed client, dropped connection).
const presenceTTL = 24 * time.Hour

// RedisPresenceStore implements PresenceStore on a Redis hash per user.
type RedisPresenceStore struct {
	client *redis.Client
}

// RedisConfig configures the presence Redis connection.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

// NewRedisPresenceStore connects and pings the Redis server.
func NewRedisPresenceStore(cfg RedisConfig) (*RedisPresenceStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("redis connection test failed: %w", err)
	}

	return &RedisPresenceStore{client: client}, nil
}

func (s *RedisPresenceStore) Close() error {
	return s.client.Close()
}

func presenceKey(userID string) string {
	return "presence:" + userID
}

func (s *RedisPresenceStore) SetPresence(ctx context.Context, userID string, online bool, lastSeen time.Time) error {
	key := presenceKey(userID)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"is_online": online,
		"last_seen": lastSeen.UTC().Format(time.RFC3339Nano),
	})
	pipe.Expire(ctx, key, presenceTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisPresenceStore) GetPresence(ctx context.Context, userID string) (models.Presence, error) {
	p := models.Presence{UserID: userID}

	fields, err := s.client.HGetAll(ctx, presenceKey(userID)).Result()
	if err != nil {
		return p, err
	}
	if len(fields) == 0 {
		// Never recorded; report offline with a zero last-seen.
		return p, nil
	}

	p.IsOnline = fields["is_online"] == "1" || fields["is_online"] == "true"
	if raw, ok := fields["last_seen"]; ok {
		if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			p.LastSeen = ts
		}
	}
	return p, nil
}
