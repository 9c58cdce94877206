package http

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walletgate/siwn/adapters/identity"
	"github.com/walletgate/siwn/adapters/store"
	"github.com/walletgate/siwn/core"
	"github.com/walletgate/siwn/internal/neo"
	"github.com/walletgate/siwn/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testWallet struct {
	key     *ecdsa.PrivateKey
	pubHex  string
	address string
}

func newTestWallet(t *testing.T) *testWallet {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	pubHex := hex.EncodeToString(elliptic.MarshalCompressed(elliptic.P256(), key.X, key.Y))
	address, err := neo.AddressFromPublicKey(pubHex)
	require.NoError(t, err)

	return &testWallet{key: key, pubHex: pubHex, address: address}
}

func (w *testWallet) sign(t *testing.T, message string) string {
	t.Helper()
	digest := sha256.Sum256(neo.Wrap(message))
	r, s, err := ecdsa.Sign(rand.Reader, w.key, digest[:])
	require.NoError(t, err)

	sig := make([]byte, 64)
	r.FillBytes(sig[:32])
	s.FillBytes(sig[32:])
	return hex.EncodeToString(sig)
}

func (w *testWallet) challenge(nonce string) string {
	now := time.Now().UTC().Truncate(time.Second)
	expiration := now.Add(10 * time.Minute)
	msg := &core.ChallengeMessage{
		Domain:         "app.example.com",
		Address:        w.address,
		Statement:      "Sign in with your Neo account.",
		URI:            "https://app.example.com",
		Version:        "1",
		ChainID:        860833102,
		Nonce:          nonce,
		IssuedAt:       now,
		ExpirationTime: &expiration,
	}
	return msg.Build()
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	provider := identity.NewLocalProvider(key)
	svc := service.NewAuthService(
		[]string{"app.example.com"},
		"test-secret",
		store.NewMemoryNonceStore(0),
		store.NewMemoryWalletRepository(),
		provider,
		nil,
	)
	return SetupRouter(svc, provider)
}

func doJSON(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func fetchNonce(t *testing.T, router *gin.Engine, address string) string {
	t.Helper()
	rec := doJSON(router, http.MethodGet, "/auth/nonce?address="+address, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Nonce string `json:"nonce"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Nonce)
	return body.Nonce
}

func TestNonceRequiresAddress(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(router, http.MethodGet, "/auth/nonce", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Address is required"}`, rec.Body.String())
}

func TestNonceIssuesFreshNonces(t *testing.T) {
	router := newTestRouter(t)

	first := fetchNonce(t, router, "NWxZhS89HjdRw2ZushLjEZTdd51ErUFx6a")
	second := fetchNonce(t, router, "NWxZhS89HjdRw2ZushLjEZTdd51ErUFx6a")
	assert.NotEqual(t, first, second)
}

func TestLoginHappyPath(t *testing.T) {
	router := newTestRouter(t)
	wallet := newTestWallet(t)

	message := wallet.challenge(fetchNonce(t, router, wallet.address))
	rec := doJSON(router, http.MethodPost, "/auth/login", gin.H{
		"message":   message,
		"signature": wallet.sign(t, message),
		"publicKey": wallet.pubHex,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		User struct {
			ID       string `json:"id"`
			Address  string `json:"address"`
			Provider string `json:"provider"`
		} `json:"user"`
		Session struct {
			AccessToken  string `json:"access_token"`
			RefreshToken string `json:"refresh_token"`
			ExpiresAt    int64  `json:"expires_at"`
		} `json:"session"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.User.ID)
	assert.Equal(t, wallet.address, body.User.Address)
	assert.Equal(t, core.ProviderNeo, body.User.Provider)
	assert.NotEmpty(t, body.Session.AccessToken)
	assert.NotEmpty(t, body.Session.RefreshToken)

	// The minted access token opens the protected surface.
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+body.Session.AccessToken)
	meRec := httptest.NewRecorder()
	router.ServeHTTP(meRec, req)
	require.Equal(t, http.StatusOK, meRec.Code)

	var me struct {
		ID      string `json:"id"`
		Address string `json:"address"`
	}
	require.NoError(t, json.Unmarshal(meRec.Body.Bytes(), &me))
	assert.Equal(t, body.User.ID, me.ID)
	assert.Equal(t, wallet.address, me.Address)
}

func TestLoginRejectsMissingFields(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(router, http.MethodPost, "/auth/login", gin.H{"message": "only"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid request"}`, rec.Body.String())
}

func TestLoginRejectsGarbageMessage(t *testing.T) {
	router := newTestRouter(t)
	wallet := newTestWallet(t)

	rec := doJSON(router, http.MethodPost, "/auth/login", gin.H{
		"message":   "not a challenge message",
		"signature": wallet.sign(t, "not a challenge message"),
		"publicKey": wallet.pubHex,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid challenge message"}`, rec.Body.String())
}

// Signature, replay and expiry failures all collapse to the same 401 payload
// so the response gives an attacker nothing to triangulate with.
func TestLoginFailuresAreUniform(t *testing.T) {
	router := newTestRouter(t)
	wallet := newTestWallet(t)
	intruder := newTestWallet(t)

	message := wallet.challenge(fetchNonce(t, router, wallet.address))

	rec := doJSON(router, http.MethodPost, "/auth/login", gin.H{
		"message":   message,
		"signature": intruder.sign(t, message),
		"publicKey": wallet.pubHex,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Authentication failed"}`, rec.Body.String())

	// Spend the nonce, then replay the exact same request.
	payload := gin.H{
		"message":   message,
		"signature": wallet.sign(t, message),
		"publicKey": wallet.pubHex,
	}
	rec = doJSON(router, http.MethodPost, "/auth/login", payload)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(router, http.MethodPost, "/auth/login", payload)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Authentication failed"}`, rec.Body.String())
}

func TestLoginRejectsForeignKey(t *testing.T) {
	router := newTestRouter(t)
	wallet := newTestWallet(t)
	intruder := newTestWallet(t)

	// Challenge claims the victim's address, signed end-to-end by the intruder.
	message := wallet.challenge(fetchNonce(t, router, wallet.address))
	rec := doJSON(router, http.MethodPost, "/auth/login", gin.H{
		"message":   message,
		"signature": intruder.sign(t, message),
		"publicKey": intruder.pubHex,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Public key does not match address"}`, rec.Body.String())
}

func TestMeRequiresBearerToken(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
