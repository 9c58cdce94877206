// Package identity holds the IdentityProvider adapters: an in-process
// provider minting its own JWT sessions for development and tests, and a
// client for an external GoTrue-style identity store.
package identity

import (
	"context"
	"crypto/ecdsa"
	"crypto/subtle"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/walletgate/siwn/core"
	"github.com/walletgate/siwn/ports"
)

const (
	defaultAccessTTL  = time.Hour
	defaultRefreshTTL = 5 * 24 * time.Hour
)

// LocalProvider keeps accounts in memory and signs ES256 session tokens with
// its own key. Suitable for development and tests only; accounts do not
// survive a restart.
type LocalProvider struct {
	signKey    *ecdsa.PrivateKey
	accessTTL  time.Duration
	refreshTTL time.Duration

	mu       sync.Mutex
	accounts map[string]localAccount // keyed by address
}

type localAccount struct {
	id         string
	credential string
}

// NewLocalProvider creates a provider signing with the given key.
func NewLocalProvider(signKey *ecdsa.PrivateKey) *LocalProvider {
	return &LocalProvider{
		signKey:    signKey,
		accessTTL:  defaultAccessTTL,
		refreshTTL: defaultRefreshTTL,
		accounts:   make(map[string]localAccount),
	}
}

// CreateAccount registers a new account for the address.
func (p *LocalProvider) CreateAccount(ctx context.Context, address, credential string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.accounts[address]; ok {
		return "", fmt.Errorf("%w: account already exists for address", core.ErrIdentityStore)
	}
	account := localAccount{id: uuid.New().String(), credential: credential}
	p.accounts[address] = account
	return account.id, nil
}

// Authenticate checks the derived credential and mints a session token pair.
func (p *LocalProvider) Authenticate(ctx context.Context, address, credential string) (*core.Session, error) {
	p.mu.Lock()
	account, ok := p.accounts[address]
	p.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: unknown account", core.ErrIdentityStore)
	}
	if subtle.ConstantTimeCompare([]byte(account.credential), []byte(credential)) != 1 {
		return nil, fmt.Errorf("%w: credential rejected", core.ErrIdentityStore)
	}

	now := time.Now()
	accessExpiry := now.Add(p.accessTTL)

	accessToken, err := p.signToken(AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.id,
			ID:        uuid.New().String(),
			Audience:  jwt.ClaimStrings{audienceAccess},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(accessExpiry),
		},
		Address: address,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrIdentityStore, err)
	}

	refreshToken, err := p.signToken(RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.id,
			ID:        uuid.New().String(),
			Audience:  jwt.ClaimStrings{audienceRefresh},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.refreshTTL)),
		},
		Address: address,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrIdentityStore, err)
	}

	return &core.Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    accessExpiry.Unix(),
	}, nil
}

func (p *LocalProvider) signToken(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	signed, err := token.SignedString(p.signKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyAccessToken parses and validates an access token minted by this
// provider and returns the principal it identifies.
func (p *LocalProvider) VerifyAccessToken(ctx context.Context, tokenStr string) (*core.Principal, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodECDSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return &p.signKey.PublicKey, nil
	}, jwt.WithAudience(audienceAccess))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid claims")
	}
	return &core.Principal{AccountID: claims.Subject, Address: claims.Address}, nil
}

var (
	_ ports.IdentityProvider = (*LocalProvider)(nil)
	_ ports.TokenVerifier    = (*LocalProvider)(nil)
)
