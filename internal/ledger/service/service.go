// Package service implements the ledger's operation surface: namespace and
// identity registration, credential verification and revocation, reputation
// voting, and the administrative pause switch. Every mutating operation runs
// under the access guard so it executes alone and either commits completely
// or leaves no trace.
package service

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"trustledger/internal/events"
	"trustledger/internal/ledger/metrics"
	"trustledger/internal/ledger/store"
	"trustledger/internal/signer"
	id "trustledger/pkg/domain"
)

// RevocationMirror is an optional fast-path copy of revocation flags (see
// internal/ledger/revcache). A positive answer is authoritative because the
// flag is one-way; a negative answer falls through to the store.
type RevocationMirror interface {
	Mark(ctx context.Context, identityID id.IdentityID, hash id.Hash) error
	IsRevoked(ctx context.Context, identityID id.IdentityID, hash id.Hash) (bool, error)
}

// Service owns the ledger state handle and the collaborators around it.
type Service struct {
	store     store.Store
	recoverer signer.Recoverer
	guard     *guard
	events    events.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	mirror    RevocationMirror
	tracer    trace.Tracer
}

type serviceConfig struct {
	events  events.Publisher
	metrics *metrics.Metrics
	logger  *slog.Logger
	mirror  RevocationMirror
}

// Option configures optional collaborators.
type Option func(*serviceConfig)

// WithEvents wires a notification publisher. Defaults to dropping events.
func WithEvents(pub events.Publisher) Option {
	return func(c *serviceConfig) { c.events = pub }
}

// WithMetrics wires prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *serviceConfig) { c.metrics = m }
}

// WithLogger wires structured logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) { c.logger = logger }
}

// WithRevocationMirror wires the shared revocation fast path.
func WithRevocationMirror(m RevocationMirror) Option {
	return func(c *serviceConfig) { c.mirror = m }
}

// New builds the service. owner is the single administrative address allowed
// to pause and unpause the system.
func New(st store.Store, recoverer signer.Recoverer, owner id.Address, opts ...Option) *Service {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.events == nil {
		cfg.events = events.Nop{}
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return &Service{
		store:     st,
		recoverer: recoverer,
		guard:     newGuard(owner),
		events:    cfg.events,
		metrics:   cfg.metrics,
		logger:    cfg.logger,
		mirror:    cfg.mirror,
		tracer:    otel.Tracer("trustledger/ledger"),
	}
}

// Restore loads durable guard state (the pause flag) after a restart.
func (s *Service) Restore(ctx context.Context) error {
	paused, err := s.store.Paused(ctx)
	if err != nil {
		return err
	}
	s.guard.setPaused(paused)
	return nil
}
