// Package signer is the asymmetric-signature capability boundary. The ledger
// never verifies signatures itself; it asks a Recoverer who signed a digest
// and compares addresses. Keeping this behind an interface lets the
// verification protocol run against a fake in tests.
package signer

import (
	"errors"

	id "trustledger/pkg/domain"
)

// ErrInvalidSignature is returned when a signature cannot yield any signer.
// Callers in the verification path fold it into a plain false.
var ErrInvalidSignature = errors.New("invalid signature")

// Recoverer recovers the address that produced a signature over a digest.
//
//go:generate mockgen -package mocks -destination mocks/recoverer.go trustledger/internal/signer Recoverer
type Recoverer interface {
	RecoverSigner(digest id.Hash, signature []byte) (id.Address, error)
}
