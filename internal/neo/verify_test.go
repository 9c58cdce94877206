package neo

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// signMessage reproduces the wallet's signing behavior for tests: ECDSA over
// SHA256 of the wrapped pre-image, serialized as r || s.
func signMessage(t *testing.T, key *ecdsa.PrivateKey, message string) string {
	t.Helper()
	digest := sha256.Sum256(Wrap(message))
	r, s, err := ecdsa.Sign(rand.Reader, key, digest[:])
	require.NoError(t, err)

	sig := make([]byte, 64)
	r.FillBytes(sig[:32])
	s.FillBytes(sig[32:])
	return hex.EncodeToString(sig)
}

func testKey(t *testing.T) (*ecdsa.PrivateKey, string) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	pub := elliptic.MarshalCompressed(elliptic.P256(), key.X, key.Y)
	return key, hex.EncodeToString(pub)
}

func TestVerifySignature(t *testing.T) {
	key, pubHex := testKey(t)
	message := "example.com wants you to sign in with your Neo account:"
	sigHex := signMessage(t, key, message)

	assert.True(t, VerifySignature(message, sigHex, pubHex))
}

func TestVerifySignatureRejectsMutations(t *testing.T) {
	key, pubHex := testKey(t)
	message := "mutation check"
	sigHex := signMessage(t, key, message)
	require.True(t, VerifySignature(message, sigHex, pubHex))

	assert.False(t, VerifySignature(message+" ", sigHex, pubHex), "mutated message")

	flipped := []byte(sigHex)
	if flipped[10] == '0' {
		flipped[10] = '1'
	} else {
		flipped[10] = '0'
	}
	assert.False(t, VerifySignature(message, string(flipped), pubHex), "mutated signature")

	_, otherPub := testKey(t)
	assert.False(t, VerifySignature(message, sigHex, otherPub), "wrong key")
}

// Structurally invalid input folds to false, it never panics or errors.
func TestVerifySignatureFoldsInvalidInput(t *testing.T) {
	key, pubHex := testKey(t)
	message := "bad input check"
	sigHex := signMessage(t, key, message)

	assert.False(t, VerifySignature(message, "not-hex", pubHex))
	assert.False(t, VerifySignature(message, sigHex[:40], pubHex))
	assert.False(t, VerifySignature(message, sigHex, "not-hex"))
	assert.False(t, VerifySignature(message, sigHex, "02ffff"))
	// 33 bytes of 0xff is length-valid but not a curve point.
	assert.False(t, VerifySignature(message, sigHex, "02"+
		"ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"))
}
