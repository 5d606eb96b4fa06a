// Package domain holds the ledger's identifier primitives. Parsing happens at
// trust boundaries so services only ever see well-formed values.
package domain

import (
	"encoding/hex"
	"strconv"
	"strings"

	dErrors "trustledger/pkg/domain-errors"
)

// AddressSize is the fixed size of a caller/controller address in bytes.
// Addresses are derived from signing keys by the signer package and are
// assumed unforgeable by the execution substrate.
const AddressSize = 20

// HashSize is the fixed size of a credential content hash in bytes.
const HashSize = 32

// Address is a fixed-size account address derived from a signing key.
type Address [AddressSize]byte

// ZeroAddress is the null address; it is never a valid controller or caller.
var ZeroAddress = Address{}

// ParseAddress decodes a 0x-prefixed hex address.
func ParseAddress(s string) (Address, error) {
	raw, err := decodeHex(s, AddressSize)
	if err != nil {
		return Address{}, dErrors.Wrap(err, dErrors.CodeInvalidArgument, "malformed address")
	}
	var a Address
	copy(a[:], raw)
	return a, nil
}

// IsZero reports whether the address is the null address.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// MarshalText lets addresses round-trip through JSON as hex strings.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Hash is a credential content hash (Keccak-256 of the canonical form).
type Hash [HashSize]byte

// ParseHash decodes a 0x-prefixed hex credential hash.
func ParseHash(s string) (Hash, error) {
	raw, err := decodeHex(s, HashSize)
	if err != nil {
		return Hash{}, dErrors.Wrap(err, dErrors.CodeInvalidArgument, "malformed credential hash")
	}
	var h Hash
	copy(h[:], raw)
	return h, nil
}

func (h Hash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := ParseHash(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// NamespaceID identifies a trust domain. IDs are allocated 1, 2, 3, … in
// registration order; 0 is never assigned.
type NamespaceID uint64

// ParseNamespaceID parses a positive decimal namespace id.
func ParseNamespaceID(s string) (NamespaceID, error) {
	n, err := parsePositive(s)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInvalidArgument, "malformed namespace id")
	}
	return NamespaceID(n), nil
}

func (id NamespaceID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// IdentityID identifies a registered identity. IDs come from one global
// sequence shared across all namespaces; 0 means "no identity".
type IdentityID uint64

// NoIdentity is the reserved "not registered" identity id.
const NoIdentity IdentityID = 0

// ParseIdentityID parses a positive decimal identity id.
func ParseIdentityID(s string) (IdentityID, error) {
	n, err := parsePositive(s)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInvalidArgument, "malformed identity id")
	}
	return IdentityID(n), nil
}

func (id IdentityID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Vote bounds for reputation ratings, inclusive.
const (
	MinVote = 0
	MaxVote = 10
)

// Vote is a single controller-cast rating in [MinVote, MaxVote].
type Vote uint8

// Valid reports whether the vote is within bounds.
func (v Vote) Valid() bool {
	return v <= MaxVote
}

func decodeHex(s string, want int) ([]byte, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(s), "0x")
	raw, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, err
	}
	if len(raw) != want {
		return nil, strconv.ErrSyntax
	}
	return raw, nil
}

func parsePositive(s string) (uint64, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, strconv.ErrRange
	}
	return n, nil
}
