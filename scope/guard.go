// Package scope resolves tenant/org scopes and runs the host authorization
// policy in front of every activity command and query.
package scope

import (
	"context"

	"github.com/goliatone/go-activities/pkg/types"
	goerrors "github.com/goliatone/go-errors"
)

// Guard enforces resolved scopes and authorization policies for commands and
// queries. Callers can swap custom guards in tests.
type Guard interface {
	Enforce(ctx context.Context, check types.PolicyCheck) (types.ScopeFilter, error)
}

type guard struct {
	resolver types.ScopeResolver
	policy   types.AuthorizationPolicy
}

// NewGuard builds a Guard from the supplied resolver and policy. Nil
// dependencies are treated as no-ops.
func NewGuard(resolver types.ScopeResolver, policy types.AuthorizationPolicy) Guard {
	return guard{
		resolver: resolver,
		policy:   policy,
	}
}

// Ensure returns a non-nil guard so constructors can accept nil guards.
func Ensure(g Guard) Guard {
	if g == nil {
		return guard{}
	}
	return g
}

// NopGuard returns a guard that leaves scopes unchanged and never blocks.
func NopGuard() Guard {
	return guard{}
}

// Enforce resolves the requested scope and authorizes the action against it.
// Policy rejections surface as permission denied errors; rich errors returned
// by the policy are kept as they are.
func (g guard) Enforce(ctx context.Context, check types.PolicyCheck) (types.ScopeFilter, error) {
	scope := check.Scope
	if g.resolver != nil {
		resolved, err := g.resolver.ResolveScope(ctx, check.Actor, check.Scope)
		if err != nil {
			return types.ScopeFilter{}, err
		}
		scope = resolved
	}
	if g.policy != nil && check.Action != "" {
		check.Scope = scope
		if err := g.policy.Authorize(ctx, check); err != nil {
			var rich *goerrors.Error
			if goerrors.As(err, &rich) {
				return types.ScopeFilter{}, err
			}
			return types.ScopeFilter{}, types.PermissionDeniedError(err)
		}
	}
	return scope, nil
}
