package store

import (
	"context"
	"sync"
	"time"

	"github.com/walletgate/siwn/core"
	"github.com/walletgate/siwn/ports"
)

// MemoryNonceStore is an in-memory NonceStore for tests and single-node
// development. Expired entries are rejected on read; stale ones are dropped
// opportunistically on Issue.
type MemoryNonceStore struct {
	mu     sync.Mutex
	nonces map[nonceKey]time.Time
	ttl    time.Duration
}

type nonceKey struct {
	address string
	nonce   string
}

// NewMemoryNonceStore creates a memory store. A non-positive ttl falls back
// to the standard nonce TTL.
func NewMemoryNonceStore(ttl time.Duration) *MemoryNonceStore {
	if ttl <= 0 {
		ttl = core.NonceTTL
	}
	return &MemoryNonceStore{
		nonces: make(map[nonceKey]time.Time),
		ttl:    ttl,
	}
}

// Issue generates a nonce for address and records it with the store TTL.
func (s *MemoryNonceStore) Issue(ctx context.Context, address string) (string, error) {
	nonce, err := core.GenerateNonce()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for key, expires := range s.nonces {
		if now.After(expires) {
			delete(s.nonces, key)
		}
	}
	s.nonces[nonceKey{address, nonce}] = now.Add(s.ttl)
	return nonce, nil
}

// Consume deletes the matching record under the store lock, so concurrent
// calls for the same pair yield exactly one true.
func (s *MemoryNonceStore) Consume(ctx context.Context, address, nonce string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := nonceKey{address, nonce}
	expires, ok := s.nonces[key]
	if !ok {
		return false, nil
	}
	delete(s.nonces, key)
	if time.Now().After(expires) {
		return false, nil
	}
	return true, nil
}

// MemoryWalletRepository is an in-memory WalletRepository for tests and
// single-node development.
type MemoryWalletRepository struct {
	mu    sync.Mutex
	links map[string]core.WalletLink
}

func NewMemoryWalletRepository() *MemoryWalletRepository {
	return &MemoryWalletRepository{links: make(map[string]core.WalletLink)}
}

func (r *MemoryWalletRepository) FindByAddress(ctx context.Context, address string) (*core.WalletLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	link, ok := r.links[address]
	if !ok {
		return nil, nil
	}
	return &link, nil
}

func (r *MemoryWalletRepository) Create(ctx context.Context, link *core.WalletLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.links[link.Address]; ok {
		return core.ErrAlreadyExists
	}
	r.links[link.Address] = *link
	return nil
}

var (
	_ ports.NonceStore       = (*MemoryNonceStore)(nil)
	_ ports.WalletRepository = (*MemoryWalletRepository)(nil)
)
