// Package testutil holds small helpers shared by the integration tests.
package testutil

import (
	id "trustledger/pkg/domain"
)

// Addr builds a deterministic non-zero address for tests.
func Addr(b byte) id.Address {
	var a id.Address
	a[id.AddressSize-1] = b
	return a
}

// CredentialHash builds a deterministic credential hash for tests.
func CredentialHash(b byte) id.Hash {
	var h id.Hash
	h[id.HashSize-1] = b
	return h
}
