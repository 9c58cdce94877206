package store

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/walletgate/siwn/core"
	"github.com/walletgate/siwn/ports"
)

// walletCacheTTL bounds staleness of cached mappings. Mappings are immutable
// once created, so the TTL only limits memory, not correctness.
const walletCacheTTL = 5 * time.Minute

// CachedWalletRepository layers a redis read cache over another
// WalletRepository. Cache failures are logged and fall through to the inner
// repository; the cache is never authoritative.
type CachedWalletRepository struct {
	inner  ports.WalletRepository
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewCachedWalletRepository wraps inner with a redis read cache.
func NewCachedWalletRepository(inner ports.WalletRepository, client *redis.Client) *CachedWalletRepository {
	return &CachedWalletRepository{
		inner:  inner,
		client: client,
		prefix: "siwn:wallet:",
		ttl:    walletCacheTTL,
	}
}

func (r *CachedWalletRepository) FindByAddress(ctx context.Context, address string) (*core.WalletLink, error) {
	raw, err := r.client.Get(ctx, r.prefix+address).Bytes()
	if err == nil {
		var link core.WalletLink
		if err := json.Unmarshal(raw, &link); err == nil {
			return &link, nil
		}
		log.Printf("siwn: dropping undecodable wallet cache entry for %s", address)
	} else if !errors.Is(err, redis.Nil) {
		log.Printf("siwn: wallet cache read failed for %s: %v", address, err)
	}

	link, err := r.inner.FindByAddress(ctx, address)
	if err != nil || link == nil {
		return link, err
	}
	r.fill(ctx, link)
	return link, nil
}

func (r *CachedWalletRepository) Create(ctx context.Context, link *core.WalletLink) error {
	if err := r.inner.Create(ctx, link); err != nil {
		return err
	}
	r.fill(ctx, link)
	return nil
}

// fill writes a cache entry best-effort.
func (r *CachedWalletRepository) fill(ctx context.Context, link *core.WalletLink) {
	raw, err := json.Marshal(link)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, r.prefix+link.Address, raw, r.ttl).Err(); err != nil {
		log.Printf("siwn: wallet cache write failed for %s: %v", link.Address, err)
	}
}

var _ ports.WalletRepository = (*CachedWalletRepository)(nil)
