package store

import (
	"context"
	"sync"

	"trustledger/internal/ledger/models"
	id "trustledger/pkg/domain"
	"trustledger/pkg/platform/sentinel"
	"trustledger/pkg/requestcontext"
)

type ownerKey struct {
	ns    id.NamespaceID
	owner id.Address
}

type revocationKey struct {
	identity id.IdentityID
	hash     id.Hash
}

type scoreKey struct {
	ns       id.NamespaceID
	identity id.IdentityID
}

// InMemory is the mutex-guarded in-process Store. It is the reference
// implementation for unit tests and single-node deployments; readers always
// observe fully committed state because every method holds the lock for its
// whole read or write.
type InMemory struct {
	mu sync.RWMutex

	namespaceSeq uint64
	identitySeq  uint64

	namespaces  map[id.NamespaceID]models.Namespace
	identities  map[id.IdentityID]models.Identity
	ownerIndex  map[ownerKey]id.IdentityID
	revocations map[revocationKey]bool
	scores      map[scoreKey]models.Score

	paused bool
}

// NewInMemory returns an empty store: counters at 0, pause flag off.
func NewInMemory() *InMemory {
	return &InMemory{
		namespaces:  make(map[id.NamespaceID]models.Namespace),
		identities:  make(map[id.IdentityID]models.Identity),
		ownerIndex:  make(map[ownerKey]id.IdentityID),
		revocations: make(map[revocationKey]bool),
		scores:      make(map[scoreKey]models.Score),
	}
}

func (s *InMemory) CreateNamespace(ctx context.Context, controller id.Address) (models.Namespace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.namespaceSeq++
	ns := models.Namespace{
		ID:         id.NamespaceID(s.namespaceSeq),
		Controller: controller,
		CreatedAt:  requestcontext.Now(ctx),
	}
	s.namespaces[ns.ID] = ns
	return ns, nil
}

func (s *InMemory) GetNamespace(_ context.Context, nsID id.NamespaceID) (models.Namespace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ns, ok := s.namespaces[nsID]
	if !ok {
		return models.Namespace{}, sentinel.ErrNotFound
	}
	return ns, nil
}

func (s *InMemory) CreateIdentity(ctx context.Context, nsID id.NamespaceID, owner id.Address, doc models.IdentityDocument) (models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := ownerKey{ns: nsID, owner: owner}
	if _, taken := s.ownerIndex[key]; taken {
		return models.Identity{}, sentinel.ErrConflict
	}

	s.identitySeq++
	identity := models.Identity{
		ID:        id.IdentityID(s.identitySeq),
		Namespace: nsID,
		Owner:     owner,
		Document:  doc,
		CreatedAt: requestcontext.Now(ctx),
	}
	s.identities[identity.ID] = identity
	s.ownerIndex[key] = identity.ID
	return identity, nil
}

func (s *InMemory) GetIdentity(_ context.Context, identityID id.IdentityID) (models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	identity, ok := s.identities[identityID]
	if !ok {
		return models.Identity{}, sentinel.ErrNotFound
	}
	return identity, nil
}

func (s *InMemory) ResolveIdentity(_ context.Context, nsID id.NamespaceID, owner id.Address) (id.IdentityID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.ownerIndex[ownerKey{ns: nsID, owner: owner}], nil
}

func (s *InMemory) MarkRevoked(_ context.Context, identityID id.IdentityID, hash id.Hash) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.revocations[revocationKey{identity: identityID, hash: hash}] = true
	return nil
}

func (s *InMemory) IsRevoked(_ context.Context, identityID id.IdentityID, hash id.Hash) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.revocations[revocationKey{identity: identityID, hash: hash}], nil
}

func (s *InMemory) AddVotes(_ context.Context, nsID id.NamespaceID, votes []models.VoteCast) ([]models.Score, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := make([]models.Score, 0, len(votes))
	for _, v := range votes {
		key := scoreKey{ns: nsID, identity: v.Identity}
		score, ok := s.scores[key]
		if !ok {
			score = models.Score{Namespace: nsID, Identity: v.Identity}
		}
		score.TotalScore += uint64(v.Vote)
		score.NumberOfRatings++
		s.scores[key] = score
		updated = append(updated, score)
	}
	return updated, nil
}

func (s *InMemory) GetScore(_ context.Context, nsID id.NamespaceID, identityID id.IdentityID) (models.Score, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	score, ok := s.scores[scoreKey{ns: nsID, identity: identityID}]
	if !ok {
		return models.Score{Namespace: nsID, Identity: identityID}, nil
	}
	return score, nil
}

func (s *InMemory) Paused(_ context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.paused, nil
}

func (s *InMemory) SetPaused(_ context.Context, paused bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.paused = paused
	return nil
}

var _ Store = (*InMemory)(nil)
