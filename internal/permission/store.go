package permission

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"smskit/internal/constants"
)

// Grant is the persisted permission state.
type Grant struct {
	Granted bool
	// Rationale mirrors the OS flag that is raised once the user has refused.
	Rationale bool
}

type Store interface {
	Get(ctx context.Context, permission string) (Grant, error)
	Set(ctx context.Context, permission string, grant Grant) error
}

type MemoryStore struct {
	mu     sync.RWMutex
	grants map[string]Grant
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{grants: make(map[string]Grant)}
}

func (s *MemoryStore) Get(_ context.Context, permission string) (Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grants[permission], nil
}

func (s *MemoryStore) Set(_ context.Context, permission string, grant Grant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grants[permission] = grant
	return nil
}

// RedisStore keeps each flag under smskit:permission:<name>:granted and
// smskit:permission:<name>:rationale as "1" or "0".
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func grantedKey(permission string) string {
	return constants.PermissionKeyPrefix + permission + ":granted"
}

func rationaleKey(permission string) string {
	return constants.PermissionKeyPrefix + permission + ":rationale"
}

func (s *RedisStore) Get(ctx context.Context, permission string) (Grant, error) {
	values, err := s.client.MGet(ctx, grantedKey(permission), rationaleKey(permission)).Result()
	if err != nil {
		return Grant{}, fmt.Errorf("failed to read permission %s: %w", permission, err)
	}

	return Grant{
		Granted:   flagValue(values[0]),
		Rationale: flagValue(values[1]),
	}, nil
}

func (s *RedisStore) Set(ctx context.Context, permission string, grant Grant) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, grantedKey(permission), flagString(grant.Granted), 0)
		pipe.Set(ctx, rationaleKey(permission), flagString(grant.Rationale), 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write permission %s: %w", permission, err)
	}
	return nil
}

func flagValue(v interface{}) bool {
	s, ok := v.(string)
	return ok && s == "1"
}

func flagString(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
