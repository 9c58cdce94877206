package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/walletgate/siwn/core"
	"github.com/walletgate/siwn/internal/neo"
	"github.com/walletgate/siwn/ports"
)

// AuthService sequences the full verify-then-authenticate flow: domain check,
// message validation, key-to-address match, signature verification, single-use
// nonce consumption, then identity resolution and session issuance through the
// external identity store. Every check is terminal; nothing is retried.
type AuthService struct {
	allowedDomains []string
	secret         string

	nonces   ports.NonceStore
	wallets  ports.WalletRepository
	identity ports.IdentityProvider
	eventPub ports.EventPublisher // optional

	now func() time.Time
}

// NewAuthService creates the orchestrator. eventPub may be nil; publishing is
// best effort and never fails a login.
func NewAuthService(
	allowedDomains []string,
	secret string,
	nonces ports.NonceStore,
	wallets ports.WalletRepository,
	identity ports.IdentityProvider,
	eventPub ports.EventPublisher,
) *AuthService {
	return &AuthService{
		allowedDomains: allowedDomains,
		secret:         secret,
		nonces:         nonces,
		wallets:        wallets,
		identity:       identity,
		eventPub:       eventPub,
		now:            time.Now,
	}
}

// IssueNonce creates a single-use challenge nonce for the address.
func (s *AuthService) IssueNonce(ctx context.Context, address string) (string, error) {
	return s.nonces.Issue(ctx, address)
}

// Login runs the verification pipeline over a signed challenge message and,
// on success, resolves the wallet to an account and mints a session.
func (s *AuthService) Login(ctx context.Context, rawMessage, signature, publicKey string) (*core.Identity, *core.Session, error) {
	if s.secret == "" || len(s.allowedDomains) == 0 {
		return nil, nil, core.ErrConfigurationMissing
	}

	msg, err := core.ParseChallengeMessage(rawMessage)
	if err != nil {
		return nil, nil, err
	}

	if !core.IsAllowedDomain(msg.Domain, s.allowedDomains) {
		return nil, nil, fmt.Errorf("%w: %q", core.ErrDomainRejected, msg.Domain)
	}

	if err := msg.Validate(s.now(), "", ""); err != nil {
		return nil, nil, err
	}

	derived, err := neo.AddressFromPublicKey(publicKey)
	if err != nil {
		return nil, nil, err
	}
	if derived != msg.Address {
		return nil, nil, fmt.Errorf("%w: derived %s, claimed %s", core.ErrKeyAddressMismatch, derived, msg.Address)
	}

	if !neo.VerifySignature(rawMessage, signature, publicKey) {
		return nil, nil, core.ErrInvalidSignature
	}

	consumed, err := s.nonces.Consume(ctx, msg.Address, msg.Nonce)
	if err != nil {
		return nil, nil, err
	}
	if !consumed {
		return nil, nil, core.ErrInvalidOrExpiredNonce
	}

	identity, created, err := s.resolveIdentity(ctx, msg.Address)
	if err != nil {
		return nil, nil, err
	}

	session, err := s.identity.Authenticate(ctx, msg.Address, s.deriveCredential(msg.Address))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: session issuance: %v", core.ErrIdentityStore, err)
	}

	if s.eventPub != nil {
		if err := s.eventPub.PublishLogin(ctx, identity.Address, identity.AccountID, created); err != nil {
			log.Printf("siwn: failed to publish login event: %v", err)
		}
	}

	return identity, session, nil
}

// resolveIdentity looks up the wallet mapping and lazily creates the account
// and mapping on first login. Reports whether a new mapping was created.
func (s *AuthService) resolveIdentity(ctx context.Context, address string) (*core.Identity, bool, error) {
	link, err := s.wallets.FindByAddress(ctx, address)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", core.ErrIdentityStore, err)
	}
	if link != nil {
		return &core.Identity{AccountID: link.AccountID, Address: link.Address, Provider: link.Provider}, false, nil
	}

	accountID, err := s.identity.CreateAccount(ctx, address, s.deriveCredential(address))
	if err != nil {
		return nil, false, fmt.Errorf("%w: account creation: %v", core.ErrIdentityStore, err)
	}

	link = &core.WalletLink{
		AccountID: accountID,
		Address:   address,
		Provider:  core.ProviderNeo,
		CreatedAt: s.now(),
	}
	err = s.wallets.Create(ctx, link)
	if errors.Is(err, core.ErrAlreadyExists) {
		// Lost the race to a concurrent first login; the existing mapping wins.
		link, err = s.wallets.FindByAddress(ctx, address)
		if err != nil || link == nil {
			return nil, false, fmt.Errorf("%w: wallet mapping lookup after conflict: %v", core.ErrIdentityStore, err)
		}
		return &core.Identity{AccountID: link.AccountID, Address: link.Address, Provider: link.Provider}, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", core.ErrIdentityStore, err)
	}

	return &core.Identity{AccountID: link.AccountID, Address: link.Address, Provider: link.Provider}, true, nil
}

// deriveCredential derives the per-address identity-store credential from the
// process secret. The client never sees or supplies it.
func (s *AuthService) deriveCredential(address string) string {
	mac := hmac.New(sha256.New, []byte(s.secret))
	mac.Write([]byte(address))
	return hex.EncodeToString(mac.Sum(nil))
}
