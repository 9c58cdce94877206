package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/walletgate/siwn/core"
	"github.com/walletgate/siwn/ports"
)

// RedisNonceStore is the production NonceStore. Expiry is delegated to redis
// key TTLs and single-use consumption to the atomicity of GETDEL.
type RedisNonceStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisNonceStore creates a redis-backed nonce store.
func NewRedisNonceStore(client *redis.Client) *RedisNonceStore {
	return &RedisNonceStore{
		client: client,
		prefix: "siwn:nonce:",
		ttl:    core.NonceTTL,
	}
}

func (s *RedisNonceStore) key(address, nonce string) string {
	return s.prefix + address + ":" + nonce
}

// Issue generates a nonce and stores it under (address, nonce) with the
// nonce TTL.
func (s *RedisNonceStore) Issue(ctx context.Context, address string) (string, error) {
	nonce, err := core.GenerateNonce()
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, s.key(address, nonce), "1", s.ttl).Err(); err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrStoreUnavailable, err)
	}
	return nonce, nil
}

// Consume atomically fetches and deletes the record. Expired keys are gone
// from redis already, so a hit is always a live nonce.
func (s *RedisNonceStore) Consume(ctx context.Context, address, nonce string) (bool, error) {
	err := s.client.GetDel(ctx, s.key(address, nonce)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", core.ErrStoreUnavailable, err)
	}
	return true, nil
}

var _ ports.NonceStore = (*RedisNonceStore)(nil)
