package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/walletgate/siwn/core"
	"github.com/walletgate/siwn/ports"
)

// GoTrueProvider talks to a GoTrue-compatible identity store over its REST
// API: accounts are created through the admin endpoint with the derived
// credential as password, sessions through the password grant. Wallet
// accounts carry a synthetic email derived from the address since the store
// requires one.
type GoTrueProvider struct {
	baseURL    string
	serviceKey string
	client     *http.Client
}

// NewGoTrueProvider creates a provider for the store at baseURL,
// authenticating admin calls with serviceKey.
func NewGoTrueProvider(baseURL, serviceKey string) *GoTrueProvider {
	return &GoTrueProvider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func accountEmail(address string) string {
	return strings.ToLower(address) + "@wallet.invalid"
}

// CreateAccount registers a confirmed user with the derived credential.
func (p *GoTrueProvider) CreateAccount(ctx context.Context, address, credential string) (string, error) {
	body := map[string]any{
		"email":         accountEmail(address),
		"password":      credential,
		"email_confirm": true,
		"user_metadata": map[string]string{
			"address":  address,
			"provider": core.ProviderNeo,
		},
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := p.do(ctx, http.MethodPost, "/admin/users", body, &created); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", fmt.Errorf("%w: create returned no account id", core.ErrIdentityStore)
	}
	return created.ID, nil
}

// Authenticate runs the password grant and returns the resulting session.
func (p *GoTrueProvider) Authenticate(ctx context.Context, address, credential string) (*core.Session, error) {
	body := map[string]any{
		"email":    accountEmail(address),
		"password": credential,
	}

	var granted struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int64  `json:"expires_in"`
		ExpiresAt    int64  `json:"expires_at"`
	}
	if err := p.do(ctx, http.MethodPost, "/token?grant_type=password", body, &granted); err != nil {
		return nil, err
	}
	if granted.AccessToken == "" || granted.RefreshToken == "" {
		return nil, fmt.Errorf("%w: grant returned no tokens", core.ErrIdentityStore)
	}

	expiresAt := granted.ExpiresAt
	if expiresAt == 0 {
		expiresAt = time.Now().Add(time.Duration(granted.ExpiresIn) * time.Second).Unix()
	}
	return &core.Session{
		AccessToken:  granted.AccessToken,
		RefreshToken: granted.RefreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}

func (p *GoTrueProvider) do(ctx context.Context, method, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrIdentityStore, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrIdentityStore, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.serviceKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrIdentityStore, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Bound the body read; error payloads are small.
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: %s %s returned %d: %s", core.ErrIdentityStore, method, path, resp.StatusCode, detail)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", core.ErrIdentityStore, err)
	}
	return nil
}

var _ ports.IdentityProvider = (*GoTrueProvider)(nil)
