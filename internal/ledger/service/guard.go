package service

import (
	"context"
	"sync"
	"sync/atomic"

	id "trustledger/pkg/domain"
	dErrors "trustledger/pkg/domain-errors"
)

type inOperationKey struct{}

// guard is the cross-cutting access policy: a single administrative owner, a
// global pause switch, a single-writer lock serializing mutations, and a
// reentrancy barrier.
//
// The barrier is a call-scope marker carried in the context. Guarded
// operations derive a marked context and hand it to every collaborator they
// call out to (signer, store, publisher); if any of those re-invokes a
// mutating entry point with that context, the nested call is refused with
// ReentrancyBlocked before it can touch the lock or the state. Unrelated
// concurrent callers carry unmarked contexts and simply queue on the lock.
type guard struct {
	owner  id.Address
	mu     sync.Mutex
	paused atomic.Bool
}

func newGuard(owner id.Address) *guard {
	return &guard{owner: owner}
}

func (g *guard) setPaused(paused bool) {
	g.paused.Store(paused)
}

func (g *guard) isPaused() bool {
	return g.paused.Load()
}

// enter begins a plain mutating operation: refuse nested calls, serialize,
// enforce the pause switch. The returned release must be called exactly once.
func (g *guard) enter(ctx context.Context) (release func(), err error) {
	if inOperation(ctx) {
		return nil, dErrors.New(dErrors.CodeReentrancyBlocked, "operation re-entered before completion")
	}
	g.mu.Lock()
	if g.paused.Load() {
		g.mu.Unlock()
		return nil, dErrors.New(dErrors.CodeSystemPaused, "system is paused")
	}
	return g.mu.Unlock, nil
}

// enterBarrier begins a barrier-wrapped operation (revoke, voteProviders):
// like enter, but the returned context is marked so nested guarded calls
// made during the operation are refused.
func (g *guard) enterBarrier(ctx context.Context) (opCtx context.Context, release func(), err error) {
	releasePlain, err := g.enter(ctx)
	if err != nil {
		return nil, nil, err
	}
	return context.WithValue(ctx, inOperationKey{}, true), releasePlain, nil
}

// enterAdmin begins pause/unpause: owner-only, serialized, reentrancy
// checked, but deliberately exempt from the pause switch so the system can
// always be unpaused.
func (g *guard) enterAdmin(ctx context.Context, caller id.Address) (release func(), err error) {
	if inOperation(ctx) {
		return nil, dErrors.New(dErrors.CodeReentrancyBlocked, "operation re-entered before completion")
	}
	if caller != g.owner {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller is not the system owner")
	}
	g.mu.Lock()
	return g.mu.Unlock, nil
}

func inOperation(ctx context.Context) bool {
	flagged, _ := ctx.Value(inOperationKey{}).(bool)
	return flagged
}
