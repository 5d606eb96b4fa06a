package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trustledger/internal/events"
	id "trustledger/pkg/domain"
	dErrors "trustledger/pkg/domain-errors"
)

func TestRegisterNamespace_SequentialIDs(t *testing.T) {
	svc, sink := newTestService(t, staticRecoverer{})
	ctx := context.Background()

	for want := uint64(1); want <= 3; want++ {
		nsID, err := svc.RegisterNamespace(ctx, testAddr(1))
		require.NoError(t, err)
		assert.Equal(t, id.NamespaceID(want), nsID)
	}

	registered := sink.OfType(events.TypeNamespaceRegistered)
	require.Len(t, registered, 3)
	assert.Equal(t, id.NamespaceID(1), registered[0].Namespace)
	assert.Equal(t, testAddr(1), registered[0].Controller)
}

func TestRegisterNamespace_RepeatedControllerGetsDistinctID(t *testing.T) {
	svc, _ := newTestService(t, staticRecoverer{})
	ctx := context.Background()

	first, err := svc.RegisterNamespace(ctx, testAddr(7))
	require.NoError(t, err)
	second, err := svc.RegisterNamespace(ctx, testAddr(7))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestRegisterNamespace_ZeroControllerRejected(t *testing.T) {
	svc, sink := newTestService(t, staticRecoverer{})

	_, err := svc.RegisterNamespace(context.Background(), id.ZeroAddress)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidArgument))
	assert.Empty(t, sink.Events(), "no event on a rolled-back attempt")
}

func TestGetNamespace(t *testing.T) {
	svc, _ := newTestService(t, staticRecoverer{})
	ctx := context.Background()

	nsID, err := svc.RegisterNamespace(ctx, testAddr(3))
	require.NoError(t, err)

	ns, err := svc.GetNamespace(ctx, nsID)
	require.NoError(t, err)
	assert.Equal(t, testAddr(3), ns.Controller)

	_, err = svc.GetNamespace(ctx, id.NamespaceID(99))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}
