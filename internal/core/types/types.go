package types

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// AddressSize is the size of an account address in bytes.
const AddressSize = 20

// HashSize is the size of a state key or digest in bytes.
const HashSize = 32

// Address is a 160-bit account identifier, derived from a public key
// as RIPEMD160(SHA256(publicKey)). The zero address is never a valid
// party to a trade.
type Address [AddressSize]byte

// Hash is a 256-bit digest used for state keys, merkle nodes and
// typed-data digests.
type Hash [HashSize]byte

// ZeroAddress is the all-zero address.
var ZeroAddress Address

// ErrBadAddress is returned when parsing a malformed address string.
var ErrBadAddress = errors.New("malformed address")

// ErrBadHash is returned when parsing a malformed hash string.
var ErrBadHash = errors.New("malformed hash")

// IsZero reports whether the address is the zero address.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAddress parses a hex address with or without a 0x prefix.
func ParseAddress(s string) (Address, error) {
	var a Address
	s = strings.TrimPrefix(s, "0x")
	if len(s) != AddressSize*2 {
		return a, fmt.Errorf("%w: %q", ErrBadAddress, s)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return a, fmt.Errorf("%w: %q", ErrBadAddress, s)
	}
	copy(a[:], b)
	return a, nil
}

// IsZero reports whether the hash is all zeros.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// MarshalText implements encoding.TextMarshaler.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := ParseHash(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// ParseHash parses a 64-character hex hash.
func ParseHash(s string) (Hash, error) {
	var h Hash
	s = strings.TrimPrefix(s, "0x")
	if len(s) != HashSize*2 {
		return h, fmt.Errorf("%w: %q", ErrBadHash, s)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("%w: %q", ErrBadHash, s)
	}
	copy(h[:], b)
	return h, nil
}
