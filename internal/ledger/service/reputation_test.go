package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trustledger/internal/events"
	"trustledger/internal/ledger/models"
	id "trustledger/pkg/domain"
	dErrors "trustledger/pkg/domain-errors"
)

// registerProvider sets up a namespace with the given controller and one
// identity inside it, returning both ids.
func registerProvider(t *testing.T, svc *Service, controller, owner id.Address) (id.NamespaceID, id.IdentityID) {
	t.Helper()
	nsID, err := svc.RegisterNamespace(context.Background(), controller)
	require.NoError(t, err)
	identityID, err := svc.RegisterIdentity(callerCtx(owner), nsID, models.IdentityDocument{})
	require.NoError(t, err)
	return nsID, identityID
}

func TestVoteProviders_ScaledAverage(t *testing.T) {
	svc, _ := newTestService(t, staticRecoverer{})
	controller := testAddr(1)
	nsID, providerID := registerProvider(t, svc, controller, testAddr(2))

	require.NoError(t, svc.VoteProviders(callerCtx(controller), nsID, []id.IdentityID{providerID}, []id.Vote{7}))
	require.NoError(t, svc.VoteProviders(callerCtx(controller), nsID, []id.IdentityID{providerID}, []id.Vote{8}))

	avg, count, err := svc.GetProviderScore(context.Background(), nsID, providerID)
	require.NoError(t, err)
	assert.Equal(t, uint64(750), avg, "integer average scaled by 100")
	assert.Equal(t, uint64(2), count)
}

func TestVoteProviders_BatchUpdatesEveryPair(t *testing.T) {
	svc, sink := newTestService(t, staticRecoverer{})
	controller := testAddr(1)
	nsID, first := registerProvider(t, svc, controller, testAddr(2))
	second, err := svc.RegisterIdentity(callerCtx(testAddr(3)), nsID, models.IdentityDocument{})
	require.NoError(t, err)

	err = svc.VoteProviders(callerCtx(controller), nsID, []id.IdentityID{first, second, first}, []id.Vote{10, 4, 0})
	require.NoError(t, err)

	avg, count, err := svc.GetProviderScore(context.Background(), nsID, first)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), avg)
	assert.Equal(t, uint64(2), count, "the same provider may appear more than once in a batch")

	avg, count, err = svc.GetProviderScore(context.Background(), nsID, second)
	require.NoError(t, err)
	assert.Equal(t, uint64(400), avg)
	assert.Equal(t, uint64(1), count)

	rated := sink.OfType(events.TypeProviderRated)
	require.Len(t, rated, 3)
	assert.Equal(t, uint64(10), rated[0].TotalScore)
	assert.Equal(t, uint64(1), rated[0].NumberOfRatings)
	assert.Equal(t, uint64(10), rated[2].TotalScore, "running totals reflect earlier pairs in the batch")
	assert.Equal(t, uint64(2), rated[2].NumberOfRatings)
}

func TestVoteProviders_RejectsWholeBatch(t *testing.T) {
	svc, sink := newTestService(t, staticRecoverer{})
	controller := testAddr(1)
	nsID, providerID := registerProvider(t, svc, controller, testAddr(2))

	t.Run("vote above the maximum", func(t *testing.T) {
		err := svc.VoteProviders(callerCtx(controller), nsID, []id.IdentityID{providerID, providerID}, []id.Vote{3, 11})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidArgument))
	})

	t.Run("mismatched lengths", func(t *testing.T) {
		err := svc.VoteProviders(callerCtx(controller), nsID, []id.IdentityID{providerID}, []id.Vote{3, 4})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidArgument))
	})

	t.Run("empty batch", func(t *testing.T) {
		err := svc.VoteProviders(callerCtx(controller), nsID, nil, nil)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidArgument))
	})

	// None of the rejected batches touched the score.
	avg, count, err := svc.GetProviderScore(context.Background(), nsID, providerID)
	require.NoError(t, err)
	assert.Zero(t, avg)
	assert.Zero(t, count)
	assert.Empty(t, sink.OfType(events.TypeProviderRated))
}

func TestVoteProviders_OnlyControllerMayVote(t *testing.T) {
	svc, _ := newTestService(t, staticRecoverer{})
	nsID, providerID := registerProvider(t, svc, testAddr(1), testAddr(2))

	err := svc.VoteProviders(callerCtx(testAddr(9)), nsID, []id.IdentityID{providerID}, []id.Vote{5})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestVoteProviders_UnknownNamespace(t *testing.T) {
	svc, _ := newTestService(t, staticRecoverer{})

	err := svc.VoteProviders(callerCtx(testAddr(1)), id.NamespaceID(42), []id.IdentityID{1}, []id.Vote{5})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestGetProviderScore_UnratedIsZero(t *testing.T) {
	svc, _ := newTestService(t, staticRecoverer{})
	nsID, providerID := registerProvider(t, svc, testAddr(1), testAddr(2))

	avg, count, err := svc.GetProviderScore(context.Background(), nsID, providerID)
	require.NoError(t, err)
	assert.Zero(t, avg)
	assert.Zero(t, count)
}

func TestScores_AreNamespaceScoped(t *testing.T) {
	svc, _ := newTestService(t, staticRecoverer{})
	controller := testAddr(1)
	nsA, providerA := registerProvider(t, svc, controller, testAddr(2))
	nsB, err := svc.RegisterNamespace(context.Background(), controller)
	require.NoError(t, err)

	require.NoError(t, svc.VoteProviders(callerCtx(controller), nsA, []id.IdentityID{providerA}, []id.Vote{9}))

	avg, count, err := svc.GetProviderScore(context.Background(), nsB, providerA)
	require.NoError(t, err)
	assert.Zero(t, avg)
	assert.Zero(t, count)
}
