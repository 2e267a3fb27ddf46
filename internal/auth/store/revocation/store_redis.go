package revocation

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "certifly:revoked:"

// RedisTRL shares revocations across instances. Each entry is a marker key
// whose TTL is the credential's remaining lifetime.
type RedisTRL struct {
	client *redis.Client
}

func NewRedisTRL(client *redis.Client) *RedisTRL {
	return &RedisTRL{client: client}
}

// RevokeToken sets the marker if absent and otherwise only extends its TTL
// (EXPIRE ... GT, Redis 7+).
func (t *RedisTRL) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return nil
	}
	if err := validateTTL(ttl); err != nil {
		return err
	}
	key := redisKeyPrefix + jti
	_, err := t.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.SetNX(ctx, key, 1, ttl)
		p.ExpireGT(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("revoke %s: %w", jti, err)
	}
	return nil
}

func (t *RedisTRL) IsRevoked(ctx context.Context, jti string) (bool, error) {
	defer observeCheck("redis", time.Now())

	if jti == "" {
		return false, nil
	}
	n, err := t.client.Exists(ctx, redisKeyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("look up revocation %s: %w", jti, err)
	}
	return n == 1, nil
}
