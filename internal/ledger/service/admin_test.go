package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trustledger/internal/events"
	"trustledger/internal/ledger/models"
	"trustledger/internal/ledger/store"
	"trustledger/internal/signer"
	id "trustledger/pkg/domain"
	dErrors "trustledger/pkg/domain-errors"
)

func TestPause_BlocksEveryMutation(t *testing.T) {
	key := newIssuerKey(t)
	svc, _ := newTestService(t, signer.NewSecp256k1())
	controller := testAddr(1)
	nsID, providerID := registerProvider(t, svc, controller, key.addr)

	hash := testHash(1)
	expires := time.Now().Add(time.Hour)
	sig := key.sign(hash)

	require.NoError(t, svc.Pause(callerCtx(testOwner)))
	require.True(t, svc.Paused())

	mutations := map[string]func() error{
		"register namespace": func() error {
			_, err := svc.RegisterNamespace(callerCtx(controller), controller)
			return err
		},
		"register identity": func() error {
			_, err := svc.RegisterIdentity(callerCtx(testAddr(7)), nsID, models.IdentityDocument{})
			return err
		},
		"revoke": func() error {
			return svc.Revoke(callerCtx(key.addr), nsID, hash, key.addr, sig, expires)
		},
		"vote": func() error {
			return svc.VoteProviders(callerCtx(controller), nsID, []id.IdentityID{providerID}, []id.Vote{5})
		},
	}
	for name, mutate := range mutations {
		t.Run(name+" while paused", func(t *testing.T) {
			assert.True(t, dErrors.HasCode(mutate(), dErrors.CodeSystemPaused))
		})
	}

	require.NoError(t, svc.Unpause(callerCtx(testOwner)))
	require.False(t, svc.Paused())

	for name, mutate := range mutations {
		t.Run(name+" after unpause", func(t *testing.T) {
			assert.NoError(t, mutate())
		})
	}
}

func TestPause_ReadsKeepWorking(t *testing.T) {
	key := newIssuerKey(t)
	svc, _ := newTestService(t, signer.NewSecp256k1())
	nsID, identityID := registerIssuer(t, svc, key.addr)

	require.NoError(t, svc.Pause(callerCtx(testOwner)))

	_, err := svc.GetNamespace(context.Background(), nsID)
	assert.NoError(t, err)
	_, err = svc.GetIdentity(context.Background(), identityID)
	assert.NoError(t, err)
	_, _, err = svc.GetProviderScore(context.Background(), nsID, identityID)
	assert.NoError(t, err)

	hash := testHash(1)
	valid, err := svc.Verify(context.Background(), nsID, hash, key.addr, key.sign(hash), time.Now().Add(time.Hour))
	assert.NoError(t, err)
	assert.True(t, valid, "verification is a probe, not a mutation")
}

func TestPause_OwnerOnly(t *testing.T) {
	svc, sink := newTestService(t, staticRecoverer{})

	err := svc.Pause(callerCtx(testAddr(9)))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	assert.False(t, svc.Paused())

	require.NoError(t, svc.Pause(callerCtx(testOwner)))
	err = svc.Unpause(callerCtx(testAddr(9)))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	assert.True(t, svc.Paused(), "non-owner cannot flip the switch either way")

	assert.Len(t, sink.OfType(events.TypeSystemPaused), 1)
	assert.Empty(t, sink.OfType(events.TypeSystemUnpaused))
}

func TestPause_OwnerExemptFromPauseCheck(t *testing.T) {
	svc, sink := newTestService(t, staticRecoverer{})

	require.NoError(t, svc.Pause(callerCtx(testOwner)))
	require.NoError(t, svc.Pause(callerCtx(testOwner)), "pausing twice is allowed")
	require.NoError(t, svc.Unpause(callerCtx(testOwner)))

	assert.Len(t, sink.OfType(events.TypeSystemPaused), 2)
	assert.Len(t, sink.OfType(events.TypeSystemUnpaused), 1)
}

// TestRestore_LoadsPersistedPauseFlag simulates a restart: a second service
// over the same store picks up the persisted switch position.
func TestRestore_LoadsPersistedPauseFlag(t *testing.T) {
	st := store.NewInMemory()
	first := New(st, staticRecoverer{}, testOwner)
	require.NoError(t, first.Pause(callerCtx(testOwner)))

	second := New(st, staticRecoverer{}, testOwner)
	require.False(t, second.Paused(), "the in-memory flag starts clear")
	require.NoError(t, second.Restore(context.Background()))
	assert.True(t, second.Paused())

	_, err := second.RegisterNamespace(callerCtx(testAddr(1)), testAddr(1))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeSystemPaused))
}
