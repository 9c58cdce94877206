package neo

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"math/big"
)

const signatureSize = 64 // r || s, 32 bytes each

// VerifySignature checks signatureHex against the wrapped pre-image of
// message and the given compressed public key. The curve is P-256 and the
// signed digest is SHA256 of the pre-image.
//
// Verification is a boolean gate, not an error channel: structurally invalid
// input (bad hex, wrong lengths, a key that is not a curve point) is logged
// and folded into false so callers cannot distinguish failure reasons.
func VerifySignature(message, signatureHex, publicKeyHex string) bool {
	sig, err := hex.DecodeString(signatureHex)
	if err != nil {
		log.Printf("siwn: signature is not valid hex: %v", err)
		return false
	}
	if len(sig) != signatureSize {
		log.Printf("siwn: signature length %d, expected %d", len(sig), signatureSize)
		return false
	}

	key, err := hex.DecodeString(publicKeyHex)
	if err != nil {
		log.Printf("siwn: public key is not valid hex: %v", err)
		return false
	}
	if len(key) != compressedKeySize {
		log.Printf("siwn: public key length %d, expected %d", len(key), compressedKeySize)
		return false
	}

	curve := elliptic.P256()
	x, y := elliptic.UnmarshalCompressed(curve, key)
	if x == nil {
		log.Printf("siwn: public key is not a point on P-256")
		return false
	}
	pub := &ecdsa.PublicKey{Curve: curve, X: x, Y: y}

	digest := sha256.Sum256(Wrap(message))
	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:])
	return ecdsa.Verify(pub, digest[:], r, s)
}
