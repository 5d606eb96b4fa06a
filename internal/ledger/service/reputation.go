package service

import (
	"context"

	"github.com/google/uuid"

	"trustledger/internal/events"
	"trustledger/internal/ledger/models"
	id "trustledger/pkg/domain"
	dErrors "trustledger/pkg/domain-errors"
	"trustledger/pkg/requestcontext"
)

// VoteProviders applies a batch of reputation votes on identities in the
// namespace. Only the namespace controller may vote. The batch is all or
// nothing: a length mismatch or a single out-of-range vote rejects every
// entry, and no score moves.
func (s *Service) VoteProviders(ctx context.Context, nsID id.NamespaceID, identityIDs []id.IdentityID, votes []id.Vote) error {
	opCtx, release, err := s.guard.enterBarrier(ctx)
	if err != nil {
		return err
	}
	defer release()

	if len(identityIDs) == 0 {
		return dErrors.New(dErrors.CodeInvalidArgument, "empty vote batch")
	}
	if len(identityIDs) != len(votes) {
		return dErrors.New(dErrors.CodeInvalidArgument, "identity and vote lists differ in length")
	}
	for _, v := range votes {
		if !v.Valid() {
			return dErrors.Newf(dErrors.CodeInvalidArgument, "vote %d is outside [%d, %d]", v, id.MinVote, id.MaxVote)
		}
	}

	ns, err := s.store.GetNamespace(opCtx, nsID)
	if err != nil {
		return wrapStoreErr(err, "namespace does not exist")
	}
	if requestcontext.Caller(ctx) != ns.Controller {
		return dErrors.New(dErrors.CodeUnauthorized, "caller is not the namespace controller")
	}

	casts := make([]models.VoteCast, len(votes))
	for i := range votes {
		casts[i] = models.VoteCast{Identity: identityIDs[i], Vote: votes[i]}
	}
	updated, err := s.store.AddVotes(opCtx, nsID, casts)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to apply votes")
	}

	now := requestcontext.Now(ctx)
	for i, score := range updated {
		s.events.Publish(opCtx, events.Event{
			ID:              uuid.NewString(),
			Type:            events.TypeProviderRated,
			Timestamp:       now,
			Namespace:       nsID,
			Identity:        casts[i].Identity,
			Vote:            casts[i].Vote,
			TotalScore:      score.TotalScore,
			NumberOfRatings: score.NumberOfRatings,
		})
	}
	if s.metrics != nil {
		s.metrics.VotesCast.Add(float64(len(casts)))
	}
	s.logger.InfoContext(ctx, "providers rated",
		"request_id", requestcontext.RequestID(ctx),
		"namespace_id", nsID,
		"votes", len(casts),
	)
	return nil
}

// GetProviderScore returns the scaled average (totalScore*100/ratings,
// integer division) and the number of ratings for an identity. Unrated
// identities read as (0, 0); there is no division by zero.
func (s *Service) GetProviderScore(ctx context.Context, nsID id.NamespaceID, identityID id.IdentityID) (scaledAverage, totalVotes uint64, err error) {
	score, err := s.store.GetScore(ctx, nsID, identityID)
	if err != nil {
		return 0, 0, dErrors.Wrap(err, dErrors.CodeInternal, "store failure")
	}
	return score.ScaledAverage(), score.NumberOfRatings, nil
}
