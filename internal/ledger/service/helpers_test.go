package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/require"

	"trustledger/internal/events"
	"trustledger/internal/ledger/models"
	"trustledger/internal/ledger/store"
	"trustledger/internal/signer"
	id "trustledger/pkg/domain"
	"trustledger/pkg/requestcontext"
)

var testOwner = testAddr(0xEE)

func testAddr(b byte) id.Address {
	var a id.Address
	a[id.AddressSize-1] = b
	return a
}

func testHash(b byte) id.Hash {
	var h id.Hash
	h[id.HashSize-1] = b
	return h
}

// newTestService wires a service over the in-memory store with a recording
// event sink and a silent logger.
func newTestService(t *testing.T, recoverer signer.Recoverer, opts ...Option) (*Service, *events.Memory) {
	t.Helper()
	sink := events.NewMemory()
	opts = append([]Option{
		WithEvents(sink),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)
	return New(store.NewInMemory(), recoverer, testOwner, opts...), sink
}

// staticRecoverer always recovers the same signer, whatever the input.
type staticRecoverer struct {
	addr id.Address
	err  error
}

func (r staticRecoverer) RecoverSigner(id.Hash, []byte) (id.Address, error) {
	return r.addr, r.err
}

// issuerKey bundles a real secp256k1 key with its derived ledger address.
type issuerKey struct {
	priv *secp256k1.PrivateKey
	addr id.Address
}

func newIssuerKey(t *testing.T) issuerKey {
	t.Helper()
	priv, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)
	return issuerKey{priv: priv, addr: signer.AddressOf(priv.PubKey())}
}

func (k issuerKey) sign(h id.Hash) []byte {
	return signer.Sign(k.priv, h)
}

func callerCtx(addr id.Address) context.Context {
	return requestcontext.WithCaller(context.Background(), addr)
}

func atTime(ctx context.Context, t time.Time) context.Context {
	return requestcontext.WithTime(ctx, t)
}

// registerIssuer creates a namespace and registers the issuer's address in
// it, returning the namespace and identity ids.
func registerIssuer(t *testing.T, svc *Service, issuer id.Address) (id.NamespaceID, id.IdentityID) {
	t.Helper()
	nsID, err := svc.RegisterNamespace(context.Background(), testAddr(1))
	require.NoError(t, err)
	identityID, err := svc.RegisterIdentity(callerCtx(issuer), nsID, models.IdentityDocument{})
	require.NoError(t, err)
	return nsID, identityID
}
