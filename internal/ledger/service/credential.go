package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"trustledger/internal/events"
	id "trustledger/pkg/domain"
	dErrors "trustledger/pkg/domain-errors"
	"trustledger/pkg/requestcontext"
)

// Verification probe outcomes, used as the metrics result label.
const (
	verifyValid          = "valid"
	verifyUnknownIssuer  = "unknown_issuer"
	verifyRevoked        = "revoked"
	verifyExpired        = "expired"
	verifySignerMismatch = "signer_mismatch"
)

// Verify answers whether a credential is currently valid: its claimed issuer
// is registered in the namespace, the hash is not revoked for that issuer,
// the expiration has not passed, and the signature recovers to the claimed
// issuer. All four conditions are independently necessary.
//
// Verify is a side-effect-free probe safe for untrusted callers: every
// protocol failure collapses to a plain false. The error return carries only
// infrastructure faults (store or cache unreachable), never a verdict.
func (s *Service) Verify(ctx context.Context, nsID id.NamespaceID, hash id.Hash, claimedIssuer id.Address, signature []byte, expiresAt time.Time) (bool, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "ledger.Verify", trace.WithAttributes(
		attribute.Int64("namespace_id", int64(nsID)),
	))
	defer span.End()

	result, err := s.verify(ctx, nsID, hash, claimedIssuer, signature, expiresAt)
	if err != nil {
		span.RecordError(err)
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "verification probe failed")
	}

	span.SetAttributes(attribute.String("result", result))
	if s.metrics != nil {
		s.metrics.ObserveVerify(start, result)
	}
	return result == verifyValid, nil
}

// verify runs the four checks cheapest-first and names the first one that
// fails. The ordering matters only for cost: index lookups before the
// signature recovery.
func (s *Service) verify(ctx context.Context, nsID id.NamespaceID, hash id.Hash, claimedIssuer id.Address, signature []byte, expiresAt time.Time) (string, error) {
	issuerID, err := s.store.ResolveIdentity(ctx, nsID, claimedIssuer)
	if err != nil {
		return "", err
	}
	if issuerID == id.NoIdentity {
		return verifyUnknownIssuer, nil
	}

	revoked, err := s.isRevoked(ctx, issuerID, hash)
	if err != nil {
		return "", err
	}
	if revoked {
		return verifyRevoked, nil
	}

	if requestcontext.Now(ctx).After(expiresAt) {
		return verifyExpired, nil
	}

	// A malformed signature recovers to nobody, which is just another way
	// of not being the claimed issuer.
	signer, err := s.recoverer.RecoverSigner(hash, signature)
	if err != nil || signer != claimedIssuer {
		return verifySignerMismatch, nil
	}
	return verifyValid, nil
}

// isRevoked consults the mirror first; a positive entry is authoritative
// because the flag is one-way. Mirror faults degrade to the store.
func (s *Service) isRevoked(ctx context.Context, issuerID id.IdentityID, hash id.Hash) (bool, error) {
	if s.mirror != nil {
		revoked, err := s.mirror.IsRevoked(ctx, issuerID, hash)
		if err == nil && revoked {
			return true, nil
		}
		if err != nil {
			s.logger.WarnContext(ctx, "revocation mirror lookup failed, falling back to store",
				"error", err,
			)
		}
	}
	return s.store.IsRevoked(ctx, issuerID, hash)
}

// Revoke marks the credential hash revoked for the issuer. The caller must
// be the issuer and must present the same authenticity proof verification
// demands (unexpired, signature recovering to the issuer), so no third party
// can revoke a credential by guessing its hash. Revoking an already-revoked
// hash is a state no-op that still emits CredentialRevoked.
func (s *Service) Revoke(ctx context.Context, nsID id.NamespaceID, hash id.Hash, issuer id.Address, signature []byte, expiresAt time.Time) error {
	ctx, span := s.tracer.Start(ctx, "ledger.Revoke", trace.WithAttributes(
		attribute.Int64("namespace_id", int64(nsID)),
	))
	defer span.End()

	opCtx, release, err := s.guard.enterBarrier(ctx)
	if err != nil {
		return err
	}
	defer release()

	issuerID, err := s.store.ResolveIdentity(opCtx, nsID, issuer)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "store failure")
	}
	if issuerID == id.NoIdentity {
		return dErrors.New(dErrors.CodeNotFound, "issuer is not registered in this namespace")
	}

	if requestcontext.Now(ctx).After(expiresAt) {
		return dErrors.New(dErrors.CodeUnauthorized, "credential proof has expired")
	}
	recovered, err := s.recoverer.RecoverSigner(hash, signature)
	if err != nil || recovered != issuer {
		return dErrors.New(dErrors.CodeUnauthorized, "signature does not recover to the issuer")
	}
	if requestcontext.Caller(ctx) != issuer {
		return dErrors.New(dErrors.CodeUnauthorized, "caller is not the credential issuer")
	}

	if err := s.store.MarkRevoked(opCtx, issuerID, hash); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record revocation")
	}
	if s.mirror != nil {
		if err := s.mirror.Mark(opCtx, issuerID, hash); err != nil {
			// The store is the source of truth; a stale mirror only costs a
			// fallthrough lookup.
			s.logger.WarnContext(opCtx, "revocation mirror update failed", "error", err)
		}
	}

	s.events.Publish(opCtx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.TypeCredentialRevoked,
		Timestamp: requestcontext.Now(ctx),
		Namespace: nsID,
		Identity:  issuerID,
		Hash:      hash,
	})
	if s.metrics != nil {
		s.metrics.CredentialsRevoked.Inc()
	}
	s.logger.InfoContext(ctx, "credential revoked",
		"request_id", requestcontext.RequestID(ctx),
		"namespace_id", nsID,
		"identity_id", issuerID,
		"credential_hash", hash.String(),
	)
	return nil
}
