package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const activeUsersKey = "active_users"

// RedisClient mirrors the process-wide presence set so the active-user list
// survives across relay instances sharing one Redis.
type RedisClient struct {
	client *redis.Client
}

func NewRedisClient(ctx context.Context, redisURL string) (*RedisClient, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisClient{client: client}, nil
}

// AddActiveUser adds a user to the active users set.
func (r *RedisClient) AddActiveUser(ctx context.Context, username string) error {
	return r.client.SAdd(ctx, activeUsersKey, username).Err()
}

// RemoveActiveUser removes a user from the active users set.
func (r *RedisClient) RemoveActiveUser(ctx context.Context, username string) error {
	return r.client.SRem(ctx, activeUsersKey, username).Err()
}

// GetActiveUsers retrieves all active users.
func (r *RedisClient) GetActiveUsers(ctx context.Context) ([]string, error) {
	return r.client.SMembers(ctx, activeUsersKey).Result()
}

// IsUserActive reports whether the user is in the active users set.
func (r *RedisClient) IsUserActive(ctx context.Context, username string) (bool, error) {
	return r.client.SIsMember(ctx, activeUsersKey, username).Result()
}

func roomKey(roomID string) string {
	return "room:" + roomID
}

// AddRoomMember records the member in the shared room hash, keyed by
// connection identity with the display name as the value.
func (r *RedisClient) AddRoomMember(ctx context.Context, roomID, memberID, name string) error {
	return r.client.HSet(ctx, roomKey(roomID), memberID, name).Err()
}

// RemoveRoomMember drops the member from the shared room hash and returns
// the remaining member count across all instances. Redis removes a hash the
// moment its last field is deleted, so room teardown is automatic.
func (r *RedisClient) RemoveRoomMember(ctx context.Context, roomID, memberID string) (int, error) {
	if err := r.client.HDel(ctx, roomKey(roomID), memberID).Err(); err != nil {
		return 0, err
	}
	n, err := r.client.HLen(ctx, roomKey(roomID)).Result()
	return int(n), err
}

// RoomMembers returns the display names of every member in the shared room
// hash, across all instances.
func (r *RedisClient) RoomMembers(ctx context.Context, roomID string) ([]string, error) {
	return r.client.HVals(ctx, roomKey(roomID)).Result()
}

// Close closes the Redis connection.
func (r *RedisClient) Close() error {
	return r.client.Close()
}
