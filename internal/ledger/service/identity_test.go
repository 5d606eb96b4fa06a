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

func TestRegisterIdentity_GlobalSequenceAcrossNamespaces(t *testing.T) {
	svc, sink := newTestService(t, staticRecoverer{})
	ctx := context.Background()

	nsA, err := svc.RegisterNamespace(ctx, testAddr(1))
	require.NoError(t, err)
	nsB, err := svc.RegisterNamespace(ctx, testAddr(2))
	require.NoError(t, err)

	first, err := svc.RegisterIdentity(callerCtx(testAddr(10)), nsA, models.IdentityDocument{})
	require.NoError(t, err)
	second, err := svc.RegisterIdentity(callerCtx(testAddr(11)), nsB, models.IdentityDocument{})
	require.NoError(t, err)

	assert.Equal(t, id.IdentityID(1), first)
	assert.Equal(t, id.IdentityID(2), second, "identity ids share one sequence across namespaces")

	registered := sink.OfType(events.TypeIdentityRegistered)
	require.Len(t, registered, 2)
	assert.Equal(t, testAddr(10), registered[0].Owner)
}

func TestRegisterIdentity_OneIdentityPerAddressPerNamespace(t *testing.T) {
	svc, _ := newTestService(t, staticRecoverer{})
	ctx := context.Background()

	nsA, err := svc.RegisterNamespace(ctx, testAddr(1))
	require.NoError(t, err)
	nsB, err := svc.RegisterNamespace(ctx, testAddr(1))
	require.NoError(t, err)

	_, err = svc.RegisterIdentity(callerCtx(testAddr(10)), nsA, models.IdentityDocument{})
	require.NoError(t, err)

	_, err = svc.RegisterIdentity(callerCtx(testAddr(10)), nsA, models.IdentityDocument{})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeAlreadyExists))

	// The same address is free to register in a different namespace.
	_, err = svc.RegisterIdentity(callerCtx(testAddr(10)), nsB, models.IdentityDocument{})
	assert.NoError(t, err)
}

func TestRegisterIdentity_UnknownNamespace(t *testing.T) {
	svc, sink := newTestService(t, staticRecoverer{})

	_, err := svc.RegisterIdentity(callerCtx(testAddr(10)), id.NamespaceID(42), models.IdentityDocument{})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	assert.Empty(t, sink.OfType(events.TypeIdentityRegistered))
}

func TestRegisterIdentity_RequiresCaller(t *testing.T) {
	svc, _ := newTestService(t, staticRecoverer{})
	ctx := context.Background()

	nsID, err := svc.RegisterNamespace(ctx, testAddr(1))
	require.NoError(t, err)

	_, err = svc.RegisterIdentity(ctx, nsID, models.IdentityDocument{})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestResolveIdentityID(t *testing.T) {
	svc, _ := newTestService(t, staticRecoverer{})
	ctx := context.Background()

	nsID, err := svc.RegisterNamespace(ctx, testAddr(1))
	require.NoError(t, err)
	identityID, err := svc.RegisterIdentity(callerCtx(testAddr(10)), nsID, models.IdentityDocument{})
	require.NoError(t, err)

	t.Run("registered address resolves", func(t *testing.T) {
		got, err := svc.ResolveIdentityID(ctx, nsID, testAddr(10))
		require.NoError(t, err)
		assert.Equal(t, identityID, got)
	})

	t.Run("unregistered address resolves to zero", func(t *testing.T) {
		got, err := svc.ResolveIdentityID(ctx, nsID, testAddr(99))
		require.NoError(t, err)
		assert.Equal(t, id.NoIdentity, got)
	})

	t.Run("unknown namespace resolves to zero, never fails", func(t *testing.T) {
		got, err := svc.ResolveIdentityID(ctx, id.NamespaceID(1234), testAddr(10))
		require.NoError(t, err)
		assert.Equal(t, id.NoIdentity, got)
	})
}

func TestGetIdentity_ReturnsStoredDocument(t *testing.T) {
	svc, _ := newTestService(t, staticRecoverer{})
	ctx := context.Background()

	nsID, err := svc.RegisterNamespace(ctx, testAddr(1))
	require.NoError(t, err)

	doc := models.IdentityDocument{
		VerificationMethods: []models.VerificationMethod{{
			ID:      "did:tl:1#key-1",
			KeyType: "EcdsaSecp256k1RecoveryMethod2020",
		}},
		AuthenticationRefs: []string{"did:tl:1#key-1"},
		ServiceRefs: []models.ServiceRef{{
			ID:          "did:tl:1#resolver",
			ServiceType: "CredentialResolver",
			Endpoint:    "https://resolver.example",
		}},
	}
	identityID, err := svc.RegisterIdentity(callerCtx(testAddr(10)), nsID, doc)
	require.NoError(t, err)

	identity, err := svc.GetIdentity(ctx, identityID)
	require.NoError(t, err)
	assert.Equal(t, doc, identity.Document)
	assert.Equal(t, nsID, identity.Namespace)

	_, err = svc.GetIdentity(ctx, id.IdentityID(404))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}
