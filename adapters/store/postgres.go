package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/walletgate/siwn/core"
	"github.com/walletgate/siwn/ports"
)

// PostgresStore implements both NonceStore and WalletRepository on the
// service's two tables:
//
//	CREATE TABLE siwn_nonces (
//	    address    text        NOT NULL,
//	    nonce      text        NOT NULL,
//	    created_at timestamptz NOT NULL DEFAULT now(),
//	    expires_at timestamptz NOT NULL,
//	    PRIMARY KEY (address, nonce)
//	);
//
//	CREATE TABLE siwn_wallets (
//	    address    text        PRIMARY KEY,
//	    account_id text        NOT NULL,
//	    provider   text        NOT NULL,
//	    created_at timestamptz NOT NULL DEFAULT now()
//	);
//
// Rows in siwn_nonces past expires_at are dead weight only; a periodic
// external job may sweep them.
type PostgresStore struct {
	pool *pgxpool.Pool
	ttl  time.Duration
}

// NewPostgresStore creates a store on an existing connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, ttl: core.NonceTTL}
}

// Issue generates a nonce and inserts its record with the nonce TTL.
func (s *PostgresStore) Issue(ctx context.Context, address string) (string, error) {
	nonce, err := core.GenerateNonce()
	if err != nil {
		return "", err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO siwn_nonces (address, nonce, expires_at) VALUES ($1, $2, $3)`,
		address, nonce, time.Now().Add(s.ttl))
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrStoreUnavailable, err)
	}
	return nonce, nil
}

// Consume deletes exactly the matching unexpired row. The single DELETE makes
// match-and-delete atomic, so concurrent consumers of the same nonce race for
// one row and at most one sees an affected count of 1.
func (s *PostgresStore) Consume(ctx context.Context, address, nonce string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM siwn_nonces WHERE address = $1 AND nonce = $2 AND expires_at > now()`,
		address, nonce)
	if err != nil {
		return false, fmt.Errorf("%w: %v", core.ErrStoreUnavailable, err)
	}
	return tag.RowsAffected() == 1, nil
}

// FindByAddress returns the wallet mapping for address, or nil if none exists.
func (s *PostgresStore) FindByAddress(ctx context.Context, address string) (*core.WalletLink, error) {
	link := core.WalletLink{Address: address}
	err := s.pool.QueryRow(ctx,
		`SELECT account_id, provider, created_at FROM siwn_wallets WHERE address = $1`,
		address).Scan(&link.AccountID, &link.Provider, &link.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet mapping: %w", err)
	}
	return &link, nil
}

// Create inserts the mapping, keeping the first writer on conflict.
func (s *PostgresStore) Create(ctx context.Context, link *core.WalletLink) error {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO siwn_wallets (address, account_id, provider) VALUES ($1, $2, $3)
		 ON CONFLICT (address) DO NOTHING`,
		link.Address, link.AccountID, link.Provider)
	if err != nil {
		return fmt.Errorf("failed to store wallet mapping: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrAlreadyExists
	}
	return nil
}

var (
	_ ports.NonceStore       = (*PostgresStore)(nil)
	_ ports.WalletRepository = (*PostgresStore)(nil)
)
