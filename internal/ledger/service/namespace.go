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

// RegisterNamespace allocates a new trust domain controlled by controller.
// Repeated calls with the same controller create distinct namespaces; a
// single party may run several domains.
func (s *Service) RegisterNamespace(ctx context.Context, controller id.Address) (id.NamespaceID, error) {
	release, err := s.guard.enter(ctx)
	if err != nil {
		return 0, err
	}
	defer release()

	if controller.IsZero() {
		return 0, dErrors.New(dErrors.CodeInvalidArgument, "controller address is the zero address")
	}

	ns, err := s.store.CreateNamespace(ctx, controller)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register namespace")
	}

	s.events.Publish(ctx, events.Event{
		ID:         uuid.NewString(),
		Type:       events.TypeNamespaceRegistered,
		Timestamp:  requestcontext.Now(ctx),
		Namespace:  ns.ID,
		Controller: controller,
	})
	if s.metrics != nil {
		s.metrics.NamespacesRegistered.Inc()
	}
	s.logger.InfoContext(ctx, "namespace registered",
		"request_id", requestcontext.RequestID(ctx),
		"namespace_id", ns.ID,
	)
	return ns.ID, nil
}

// GetNamespace resolves a namespace record.
func (s *Service) GetNamespace(ctx context.Context, nsID id.NamespaceID) (models.Namespace, error) {
	ns, err := s.store.GetNamespace(ctx, nsID)
	if err != nil {
		return models.Namespace{}, wrapStoreErr(err, "namespace does not exist")
	}
	return ns, nil
}

func wrapStoreErr(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, notFoundMsg)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "store failure")
}
