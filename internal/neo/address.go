// Package neo implements the wallet-side cryptography of Sign-In With Neo:
// address derivation from a compressed public key, the signing pre-image
// envelope the wallet extension wraps messages in, and ECDSA verification
// against that envelope.
package neo

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/ripemd160"
)

// ErrInvalidPublicKey is returned for malformed hex or a wrong-length key.
var ErrInvalidPublicKey = errors.New("invalid public key")

// addressVersion is the N3 address version byte; it makes every encoded
// address start with 'N'.
const addressVersion = 0x35

// checkSigSuffix is SYSCALL System.Crypto.CheckSig, the tail of every
// single-key verification script.
var checkSigSuffix = []byte{0x41, 0x56, 0xe7, 0xb3, 0x27}

const compressedKeySize = 33

// AddressFromPublicKey derives the wallet address owned by a compressed
// 33-byte public key: the key is wrapped into its verification script, the
// script is hashed with SHA256 then RIPEMD160, and the result is
// base58check-encoded under the N3 version byte.
func AddressFromPublicKey(publicKeyHex string) (string, error) {
	key, err := hex.DecodeString(publicKeyHex)
	if err != nil {
		return "", fmt.Errorf("%w: not valid hex", ErrInvalidPublicKey)
	}
	if len(key) != compressedKeySize {
		return "", fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidPublicKey, compressedKeySize, len(key))
	}
	if key[0] != 0x02 && key[0] != 0x03 {
		return "", fmt.Errorf("%w: not a compressed point", ErrInvalidPublicKey)
	}

	scriptHash := hash160(verificationScript(key))
	return base58CheckEncode(addressVersion, scriptHash), nil
}

// verificationScript builds PUSHDATA1 33 <key> SYSCALL CheckSig.
func verificationScript(key []byte) []byte {
	script := make([]byte, 0, 2+compressedKeySize+len(checkSigSuffix))
	script = append(script, 0x0c, 0x21)
	script = append(script, key...)
	return append(script, checkSigSuffix...)
}

func hash160(data []byte) []byte {
	sha := sha256.Sum256(data)
	rip := ripemd160.New()
	rip.Write(sha[:])
	return rip.Sum(nil)
}

func base58CheckEncode(version byte, payload []byte) string {
	data := make([]byte, 0, 1+len(payload)+4)
	data = append(data, version)
	data = append(data, payload...)
	first := sha256.Sum256(data)
	second := sha256.Sum256(first[:])
	return base58.Encode(append(data, second[:4]...))
}
