package signer

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/sha3"

	id "trustledger/pkg/domain"
)

// CompactSignatureSize is the length of a recoverable compact signature:
// one recovery-code byte followed by R and S.
const CompactSignatureSize = 65

// Secp256k1 recovers signers from compact recoverable ECDSA signatures over
// the secp256k1 curve. Addresses are the last 20 bytes of the Keccak-256
// digest of the uncompressed public key, so they are bound to the signing key.
type Secp256k1 struct{}

// NewSecp256k1 returns the production Recoverer.
func NewSecp256k1() *Secp256k1 {
	return &Secp256k1{}
}

func (s *Secp256k1) RecoverSigner(digest id.Hash, signature []byte) (id.Address, error) {
	if len(signature) != CompactSignatureSize {
		return id.Address{}, fmt.Errorf("%w: expected %d bytes, got %d",
			ErrInvalidSignature, CompactSignatureSize, len(signature))
	}
	pub, _, err := ecdsa.RecoverCompact(signature, digest[:])
	if err != nil {
		return id.Address{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return AddressOf(pub), nil
}

// AddressOf derives the ledger address of a public key.
func AddressOf(pub *secp256k1.PublicKey) id.Address {
	keccak := sha3.NewLegacyKeccak256()
	// Skip the 0x04 uncompressed-point prefix.
	keccak.Write(pub.SerializeUncompressed()[1:])
	sum := keccak.Sum(nil)

	var addr id.Address
	copy(addr[:], sum[len(sum)-id.AddressSize:])
	return addr
}

// Sign produces a compact recoverable signature over digest. It lives here so
// tests and off-ledger issuers share one signature layout with RecoverSigner;
// the ledger itself never signs.
func Sign(priv *secp256k1.PrivateKey, digest id.Hash) []byte {
	return ecdsa.SignCompact(priv, digest[:], false)
}

var _ Recoverer = (*Secp256k1)(nil)
