// Package events defines the structured notifications every successful
// mutation emits for external indexers. Publishers only ever see committed
// state: services publish after their writes land, never on a rolled-back
// attempt.
package events

import (
	"context"
	"time"

	id "trustledger/pkg/domain"
)

// Type names the mutation that produced an event.
type Type string

const (
	TypeNamespaceRegistered Type = "namespace.registered"
	TypeIdentityRegistered  Type = "identity.registered"
	TypeCredentialRevoked   Type = "credential.revoked"
	TypeProviderRated       Type = "provider.rated"
	TypeSystemPaused        Type = "system.paused"
	TypeSystemUnpaused      Type = "system.unpaused"
)

// Event is one committed-mutation notification. Fields beyond Type are set
// per event kind; zero values mean "not applicable".
type Event struct {
	ID        string         `json:"id"`
	Type      Type           `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Namespace id.NamespaceID `json:"namespace_id,omitempty"`
	Identity  id.IdentityID  `json:"identity_id,omitempty"`
	// Controller is set on namespace registration.
	Controller id.Address `json:"controller,omitempty"`
	// Owner is set on identity registration.
	Owner id.Address `json:"owner,omitempty"`
	// Hash is set on credential revocation.
	Hash id.Hash `json:"credential_hash,omitempty"`
	// Vote fields carry the cast vote and post-commit running totals.
	Vote            id.Vote `json:"vote,omitempty"`
	TotalScore      uint64  `json:"total_score,omitempty"`
	NumberOfRatings uint64  `json:"number_of_ratings,omitempty"`
}

// Publisher delivers committed events to observers. Delivery failures must
// not abort the already-committed mutation; implementations log and move on.
type Publisher interface {
	Publish(ctx context.Context, event Event)
	Close() error
}

// Nop drops every event. Used where no observer is wired.
type Nop struct{}

func (Nop) Publish(context.Context, Event) {}
func (Nop) Close() error                   { return nil }
