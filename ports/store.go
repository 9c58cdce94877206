package ports

import (
	"context"

	"github.com/walletgate/siwn/core"
)

// NonceStore issues ephemeral single-use challenge tokens keyed by address.
// The store is the concurrency-control authority: two concurrent Consume
// calls for the same (address, nonce) must race so at most one succeeds.
type NonceStore interface {
	// Issue generates a random token and stores it with the nonce TTL.
	Issue(ctx context.Context, address string) (string, error)

	// Consume atomically deletes the matching unexpired record and reports
	// whether one was deleted. Expired records never match.
	Consume(ctx context.Context, address, nonce string) (bool, error)
}

// WalletRepository persists the wallet-to-account mappings.
type WalletRepository interface {
	// FindByAddress returns the mapping for address, or nil if none exists.
	FindByAddress(ctx context.Context, address string) (*core.WalletLink, error)

	// Create inserts a new mapping. If another request created the mapping
	// first, Create returns core.ErrAlreadyExists and leaves it untouched.
	Create(ctx context.Context, link *core.WalletLink) error
}
