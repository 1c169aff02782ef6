// Package blobid converts Walrus blob identifiers between their on-chain
// numeric form (a u256 stored in Sui object fields and event payloads) and
// the URL-safe base64 text form used by the client-facing APIs.
package blobid

import (
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
)

const rawLen = 32

// EncodedLen is the length of every textual blob id: 32 bytes encoded with
// the URL-safe base64 alphabet and the single trailing pad character
// stripped.
const EncodedLen = 43

// ErrOutOfRange is returned when a numeric blob id does not fit in 32 bytes.
var ErrOutOfRange = errors.New("blob id out of range")

// EncodeNum converts the on-chain numeric form of a blob id to its textual
// form. The number is serialized as 32 little-endian bytes, so the output is
// always exactly EncodedLen characters regardless of leading zero bytes.
func EncodeNum(n *big.Int) (string, error) {
	if n == nil {
		return "", fmt.Errorf("%w: nil", ErrOutOfRange)
	}
	if n.Sign() < 0 || n.BitLen() > 8*rawLen {
		return "", fmt.Errorf("%w: value does not fit in %d bytes", ErrOutOfRange, rawLen)
	}
	var buf [rawLen]byte
	n.FillBytes(buf[:])
	reverse(buf[:])
	return base64.RawURLEncoding.EncodeToString(buf[:]), nil
}

// DecodeNum is the inverse of EncodeNum. It accepts the unpadded textual
// form and restores the numeric blob id.
func DecodeNum(s string) (*big.Int, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode blob id: %w", err)
	}
	if len(raw) != rawLen {
		return nil, fmt.Errorf("decode blob id: got %d bytes, want %d", len(raw), rawLen)
	}
	reverse(raw)
	return new(big.Int).SetBytes(raw), nil
}

// EncodeDecimal converts a decimal string, as carried in Sui object fields
// and event payloads, to the textual blob id form.
func EncodeDecimal(s string) (string, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return "", fmt.Errorf("parse blob id %q: not a decimal number", s)
	}
	return EncodeNum(n)
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
