package guard

import (
	"context"
	"slices"
	"sync"

	"hireflow/internal/domain/auth"
	"hireflow/internal/session"
)

type Phase int

const (
	Resolving Phase = iota
	Authorized
	Unauthorized
)

func (p Phase) String() string {
	switch p {
	case Resolving:
		return "resolving"
	case Authorized:
		return "authorized"
	case Unauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

// Decision is what a guarded view does: wait, render, or redirect.
type Decision struct {
	Phase    Phase
	Redirect string
	Session  auth.Session
}

// Decide maps a session snapshot to a decision for a view that accepts the
// given roles. No roles means any signed-in user.
func Decide(snap session.Snapshot, allowed ...auth.Role) Decision {
	if !snap.Resolved {
		return Decision{Phase: Resolving}
	}
	if !snap.Authenticated {
		return Decision{Phase: Unauthorized, Redirect: auth.LoginPath}
	}
	if len(allowed) > 0 && !slices.Contains(allowed, snap.Session.Role) {
		return Decision{Phase: Unauthorized, Redirect: auth.HomeFor(snap.Session.Role), Session: snap.Session}
	}
	return Decision{Phase: Authorized, Session: snap.Session}
}

type Source interface {
	Snapshot() session.Snapshot
	Ready() <-chan struct{}
}

// Gate guards one view. Once resolved its decision only changes when the
// session generation does, that is on login or logout.
type Gate struct {
	source  Source
	allowed []auth.Role

	mu         sync.Mutex
	decided    bool
	generation uint64
	decision   Decision
}

func NewGate(source Source, allowed ...auth.Role) *Gate {
	return &Gate{source: source, allowed: append([]auth.Role(nil), allowed...)}
}

func (g *Gate) Decision() Decision {
	snap := g.source.Snapshot()
	g.mu.Lock()
	defer g.mu.Unlock()
	if !snap.Resolved {
		if g.decided {
			return g.decision
		}
		return Decision{Phase: Resolving}
	}
	if g.decided && g.generation == snap.Generation {
		return g.decision
	}
	g.decision = Decide(snap, g.allowed...)
	g.generation = snap.Generation
	g.decided = true
	return g.decision
}

// Wait blocks until the session has been resolved and returns the decision.
func (g *Gate) Wait(ctx context.Context) (Decision, error) {
	select {
	case <-g.source.Ready():
		return g.Decision(), nil
	case <-ctx.Done():
		return Decision{Phase: Resolving}, ctx.Err()
	}
}

type decisionKey struct{}

// WithDecision stores an authorized decision for the guarded handler.
func WithDecision(ctx context.Context, decision Decision) context.Context {
	return context.WithValue(ctx, decisionKey{}, decision)
}

func DecisionFromContext(ctx context.Context) (Decision, bool) {
	decision, ok := ctx.Value(decisionKey{}).(Decision)
	return decision, ok
}
