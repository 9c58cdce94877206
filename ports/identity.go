package ports

import (
	"context"

	"github.com/walletgate/siwn/core"
)

// IdentityProvider is the narrow contract to the external identity store.
// The credential is derived server-side from the wallet address and the
// process secret; it is never transmitted to or accepted from the client.
type IdentityProvider interface {
	// CreateAccount registers a new account for the address with the derived
	// credential and returns its account id.
	CreateAccount(ctx context.Context, address, credential string) (string, error)

	// Authenticate signs the account in with the derived credential and
	// returns a fresh session token pair.
	Authenticate(ctx context.Context, address, credential string) (*core.Session, error)
}

// TokenVerifier validates access tokens for protected routes. Implemented by
// identity providers that can verify the tokens they mint.
type TokenVerifier interface {
	VerifyAccessToken(ctx context.Context, token string) (*core.Principal, error)
}
