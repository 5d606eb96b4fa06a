// Package store persists the ledger's four collections (namespaces,
// identities, revocations, scores), the two monotonic id counters, and the
// global pause flag. Implementations must apply each method atomically:
// either every write a method performs becomes visible, or none do.
package store

import (
	"context"

	"trustledger/internal/ledger/models"
	id "trustledger/pkg/domain"
)

// Store is the persistence boundary of the ledger. Methods return
// sentinel.ErrNotFound / sentinel.ErrConflict facts; services translate them
// into domain error codes.
type Store interface {
	// CreateNamespace allocates the next namespace id (1, 2, 3, …) and
	// stores the record. Never idempotent: repeated controllers get new ids.
	CreateNamespace(ctx context.Context, controller id.Address) (models.Namespace, error)
	// GetNamespace returns sentinel.ErrNotFound for unknown ids.
	GetNamespace(ctx context.Context, nsID id.NamespaceID) (models.Namespace, error)

	// CreateIdentity allocates the next value of the global identity
	// counter, stores the record, and writes the (namespace, owner) index
	// entry, all atomically. Returns sentinel.ErrConflict when the owner
	// already holds an identity in the namespace.
	CreateIdentity(ctx context.Context, nsID id.NamespaceID, owner id.Address, doc models.IdentityDocument) (models.Identity, error)
	// GetIdentity returns sentinel.ErrNotFound for unknown ids.
	GetIdentity(ctx context.Context, identityID id.IdentityID) (models.Identity, error)
	// ResolveIdentity returns the identity id owned by owner within the
	// namespace, or domain.NoIdentity (and no error) when there is none.
	ResolveIdentity(ctx context.Context, nsID id.NamespaceID, owner id.Address) (id.IdentityID, error)

	// MarkRevoked sets the one-way revocation flag for (identity, hash).
	// Marking an already-revoked hash succeeds; the flag is never cleared.
	MarkRevoked(ctx context.Context, identityID id.IdentityID, hash id.Hash) error
	// IsRevoked reports the flag; unknown pairs are simply false.
	IsRevoked(ctx context.Context, identityID id.IdentityID, hash id.Hash) (bool, error)

	// AddVotes applies a whole batch of votes atomically and returns the
	// updated running score per vote, in batch order.
	AddVotes(ctx context.Context, nsID id.NamespaceID, votes []models.VoteCast) ([]models.Score, error)
	// GetScore returns the zero-valued Score (not an error) when the
	// identity has never been rated in the namespace.
	GetScore(ctx context.Context, nsID id.NamespaceID, identityID id.IdentityID) (models.Score, error)

	// Paused reads the global pause flag; SetPaused flips it.
	Paused(ctx context.Context) (bool, error)
	SetPaused(ctx context.Context, paused bool) error
}
