package purchases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	purchasesKeyPrefix = "purchased-courses:"
	loggedInKeyPrefix  = "logged-in:"
)

// RedisStore is a Redis-backed Store. Purchase lists are stored as JSON
// string arrays, matching the format the browser client kept in local
// storage.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed purchase store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) PurchasedCourses(ctx context.Context, userID string) ([]string, error) {
	raw, err := s.client.Get(ctx, purchasesKeyPrefix+userID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get purchases: %w", err)
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("decode purchases: %w", err)
	}
	return ids, nil
}

func (s *RedisStore) AddPurchase(ctx context.Context, userID, courseID string) error {
	ids, err := s.PurchasedCourses(ctx, userID)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if id == courseID {
			return nil
		}
	}
	ids = append(ids, courseID)

	raw, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode purchases: %w", err)
	}
	if err := s.client.Set(ctx, purchasesKeyPrefix+userID, string(raw), 0).Err(); err != nil {
		return fmt.Errorf("set purchases: %w", err)
	}
	return nil
}

func (s *RedisStore) SetLoggedIn(ctx context.Context, userID string, loggedIn bool) error {
	if !loggedIn {
		return s.client.Del(ctx, loggedInKeyPrefix+userID).Err()
	}
	return s.client.Set(ctx, loggedInKeyPrefix+userID, "true", 0).Err()
}

func (s *RedisStore) IsLoggedIn(ctx context.Context, userID string) (bool, error) {
	raw, err := s.client.Get(ctx, loggedInKeyPrefix+userID).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get login flag: %w", err)
	}
	return raw == "true", nil
}

func (s *RedisStore) ClearUser(ctx context.Context, userID string) error {
	return s.client.Del(ctx, purchasesKeyPrefix+userID, loggedInKeyPrefix+userID).Err()
}
