package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"trustledger/internal/events"
	"trustledger/internal/ledger/models"
	id "trustledger/pkg/domain"
	dErrors "trustledger/pkg/domain-errors"
	"trustledger/pkg/platform/sentinel"
	"trustledger/pkg/requestcontext"
)

// RegisterIdentity creates an identity for the calling address inside the
// namespace. Ids come from one global monotonic sequence shared across all
// namespaces, so a credential hash can name its issuer without namespace
// context. An address holds at most one identity per namespace but may
// register in any number of namespaces.
func (s *Service) RegisterIdentity(ctx context.Context, nsID id.NamespaceID, doc models.IdentityDocument) (id.IdentityID, error) {
	release, err := s.guard.enter(ctx)
	if err != nil {
		return 0, err
	}
	defer release()

	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		return 0, dErrors.New(dErrors.CodeUnauthorized, "caller address required")
	}

	if _, err := s.store.GetNamespace(ctx, nsID); err != nil {
		return 0, wrapStoreErr(err, "namespace does not exist")
	}

	identity, err := s.store.CreateIdentity(ctx, nsID, caller, doc)
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return 0, dErrors.New(dErrors.CodeAlreadyExists, "address already owns an identity in this namespace")
		}
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register identity")
	}

	s.events.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.TypeIdentityRegistered,
		Timestamp: requestcontext.Now(ctx),
		Namespace: nsID,
		Identity:  identity.ID,
		Owner:     caller,
	})
	if s.metrics != nil {
		s.metrics.IdentitiesRegistered.Inc()
	}
	s.logger.InfoContext(ctx, "identity registered",
		"request_id", requestcontext.RequestID(ctx),
		"namespace_id", nsID,
		"identity_id", identity.ID,
	)
	return identity.ID, nil
}

// ResolveIdentityID looks up the identity the address owns in the namespace.
// Returns domain.NoIdentity (0) for "not registered"; it never fails on an
// unknown namespace, mirroring the pure-lookup contract.
func (s *Service) ResolveIdentityID(ctx context.Context, nsID id.NamespaceID, owner id.Address) (id.IdentityID, error) {
	identityID, err := s.store.ResolveIdentity(ctx, nsID, owner)
	if err != nil {
		return id.NoIdentity, dErrors.Wrap(err, dErrors.CodeInternal, "store failure")
	}
	return identityID, nil
}

// GetIdentity resolves a stored identity record by its global id.
func (s *Service) GetIdentity(ctx context.Context, identityID id.IdentityID) (models.Identity, error) {
	identity, err := s.store.GetIdentity(ctx, identityID)
	if err != nil {
		return models.Identity{}, wrapStoreErr(err, "identity does not exist")
	}
	return identity, nil
}
