package core

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// ProviderNeo is the provider tag recorded on wallet mappings created by this service.
const ProviderNeo = "neo"

// NonceTTL is how long an issued challenge nonce stays consumable.
const NonceTTL = 5 * time.Minute

// WalletLink binds a wallet address to an identity-store account. The address
// is unique across links; once created a link is immutable.
type WalletLink struct {
	AccountID string    `json:"account_id"`
	Address   string    `json:"address"`
	Provider  string    `json:"provider"`
	CreatedAt time.Time `json:"created_at"`
}

// Identity is the authenticated user returned to the client after login.
type Identity struct {
	AccountID string `json:"id"`
	Address   string `json:"address"`
	Provider  string `json:"provider"`
}

// Session is the token pair minted by the identity store after a verified login.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
}

// Principal identifies the holder of a verified access token.
type Principal struct {
	AccountID string
	Address   string
}

// GenerateNonce returns a cryptographically random 32-byte hex token.
func GenerateNonce() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
