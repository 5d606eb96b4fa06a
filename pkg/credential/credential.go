// Package credential defines the canonical serializable form of an
// off-ledger credential and its content hash. The ledger never stores or
// inspects a credential's payload; issuers and verifiers only need to agree
// on the hash, so the canonical byte layout lives here where both sides can
// import it.
package credential

import (
	"encoding/binary"
	"time"

	"golang.org/x/crypto/sha3"

	id "trustledger/pkg/domain"
)

// Credential is the caller-constructed assertion. Only its Hash and the
// issuer's signature over that hash are ever examined on the ledger side.
type Credential struct {
	Namespace     id.NamespaceID
	Issuer        id.Address
	Subject       string
	IssuedAt      time.Time
	ExpiresAt     time.Time
	PayloadDigest id.Hash
}

// CanonicalBytes returns the deterministic serialization hashed by Hash.
// Layout: namespace (8 bytes BE) || issuer (20) || issuedAt unix (8 BE) ||
// expiresAt unix (8 BE) || payload digest (32) || subject (length-prefixed).
// Fixed-width fields come first so no delimiter ambiguity is possible.
func (c Credential) CanonicalBytes() []byte {
	subject := []byte(c.Subject)
	buf := make([]byte, 0, 8+id.AddressSize+8+8+id.HashSize+8+len(subject))

	buf = binary.BigEndian.AppendUint64(buf, uint64(c.Namespace))
	buf = append(buf, c.Issuer[:]...)
	buf = binary.BigEndian.AppendUint64(buf, uint64(c.IssuedAt.Unix()))
	buf = binary.BigEndian.AppendUint64(buf, uint64(c.ExpiresAt.Unix()))
	buf = append(buf, c.PayloadDigest[:]...)
	buf = binary.BigEndian.AppendUint64(buf, uint64(len(subject)))
	buf = append(buf, subject...)
	return buf
}

// Hash computes the Keccak-256 content hash of the canonical form. This is
// the value H that gets signed, verified, and revoked.
func (c Credential) Hash() id.Hash {
	return DigestBytes(c.CanonicalBytes())
}

// DigestBytes hashes arbitrary payload bytes into a ledger hash. Issuers use
// it for the payload digest field as well.
func DigestBytes(payload []byte) id.Hash {
	keccak := sha3.NewLegacyKeccak256()
	keccak.Write(payload)

	var h id.Hash
	copy(h[:], keccak.Sum(nil))
	return h
}
