package neo

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// The wallet extension does not sign raw text. It embeds the message bytes as
// the script of a zeroed pseudo-transaction, then signs the network-prefixed
// hash of that envelope exactly as it would sign a real transaction. This
// file reproduces that wrapping byte for byte; any deviation breaks
// verification against the wallet.

// envelopeHeaderHex is the fixed 49-byte header of the pseudo-transaction:
// zeroed version, nonce, system fee, network fee and valid-until-block, a
// single zeroed signer with empty witness scope, and empty attribute and
// witness lists.
const envelopeHeaderHex = "00000000000000000000000000000000000000000000000000" +
	"010000000000000000000000000000000000000000000000"

// networkMagic is zero: the pseudo-transaction is bound to no real network.
const networkMagic uint32 = 0

var envelopeHeader = mustHex(envelopeHeaderHex)

// Wrap produces the exact byte sequence the wallet signs for a message:
// a 4-byte little-endian network magic of zero followed by the SHA256 digest
// of the pseudo-transaction envelope (header, var-int message length,
// message bytes).
func Wrap(message string) []byte {
	body := []byte(message)

	envelope := make([]byte, 0, len(envelopeHeader)+9+len(body))
	envelope = append(envelope, envelopeHeader...)
	envelope = AppendVarInt(envelope, uint64(len(body)))
	envelope = append(envelope, body...)

	digest := sha256.Sum256(envelope)

	out := make([]byte, 4, 4+sha256.Size)
	binary.LittleEndian.PutUint32(out, networkMagic)
	return append(out, digest[:]...)
}

// AppendVarInt appends n in the platform's variable-length integer encoding:
// a single byte below 0xFD, otherwise a marker byte followed by a 2-, 4- or
// 8-byte little-endian value.
func AppendVarInt(dst []byte, n uint64) []byte {
	switch {
	case n < 0xfd:
		return append(dst, byte(n))
	case n <= 0xffff:
		dst = append(dst, 0xfd)
		return binary.LittleEndian.AppendUint16(dst, uint16(n))
	case n <= 0xffffffff:
		dst = append(dst, 0xfe)
		return binary.LittleEndian.AppendUint32(dst, uint32(n))
	default:
		dst = append(dst, 0xff)
		return binary.LittleEndian.AppendUint64(dst, n)
	}
}

func mustHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}
