// Package models holds the persisted record types of the trust ledger.
// Namespaces and identities are immutable once created; revocation markers
// and scores are the only state that grows afterwards.
package models

import (
	"time"

	id "trustledger/pkg/domain"
)

// Namespace is an isolated trust domain with a single controller.
type Namespace struct {
	ID         id.NamespaceID
	Controller id.Address
	CreatedAt  time.Time
}

// VerificationMethod is one key entry of an identity document. The ledger
// stores it verbatim for resolution; the verification protocol itself only
// relies on the owner address.
type VerificationMethod struct {
	ID                string `json:"id"`
	KeyType           string `json:"key_type"`
	Controller        string `json:"controller"`
	PublicKeyMaterial string `json:"public_key_material"`
}

// ServiceRef is a service endpoint entry of an identity document.
type ServiceRef struct {
	ID          string `json:"id"`
	ServiceType string `json:"service_type"`
	Endpoint    string `json:"endpoint"`
}

// IdentityDocument is the caller-supplied portion of an identity record.
type IdentityDocument struct {
	VerificationMethods []VerificationMethod `json:"verification_methods"`
	AuthenticationRefs  []string             `json:"authentication_refs"`
	ServiceRefs         []ServiceRef         `json:"service_refs"`
}

// Identity is a registered member of a namespace. The ID comes from one
// global sequence shared across all namespaces so a credential hash can
// reference its issuer without namespace context.
type Identity struct {
	ID        id.IdentityID
	Namespace id.NamespaceID
	Owner     id.Address
	Document  IdentityDocument
	CreatedAt time.Time
}

// Score is the running reputation aggregate for one identity in one
// namespace. ScaledAverage is TotalScore*100/NumberOfRatings (integer
// division), a value in [0, 1000] standing for [0.00, 10.00].
type Score struct {
	Namespace       id.NamespaceID
	Identity        id.IdentityID
	TotalScore      uint64
	NumberOfRatings uint64
}

// ScaledAverage returns the integer-scaled average rating, (0) when unrated
// to avoid division by zero.
func (s Score) ScaledAverage() uint64 {
	if s.NumberOfRatings == 0 {
		return 0
	}
	return s.TotalScore * 100 / s.NumberOfRatings
}

// VoteCast pairs an identity with a single rating inside a batch.
type VoteCast struct {
	Identity id.IdentityID
	Vote     id.Vote
}
