package types

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// PolicyAction names the operations the scope guard authorizes. Hosts map them
// onto their own ACL systems.
type PolicyAction string

const (
	PolicyActionActivityRead  PolicyAction = "activities:read"
	PolicyActionActivityWrite PolicyAction = "activities:write"
	PolicyActionReplyWrite    PolicyAction = "activities:reply"
	PolicyActionShareWrite    PolicyAction = "activities:share"
)

// PolicyCheck captures the authorization context for a single command/query.
// TargetID is the activity the operation applies to, when there is one.
type PolicyCheck struct {
	Actor    ActorRef
	Scope    ScopeFilter
	Action   PolicyAction
	TargetID uuid.UUID
	Subject  SubjectRef
}

// ScopeResolver resolves requested scopes into canonical tenant/org values
// based on the actor and host application rules.
type ScopeResolver interface {
	ResolveScope(ctx context.Context, actor ActorRef, requested ScopeFilter) (ScopeFilter, error)
}

// ScopeResolverFunc adapts bare functions to ScopeResolver.
type ScopeResolverFunc func(ctx context.Context, actor ActorRef, requested ScopeFilter) (ScopeFilter, error)

// ResolveScope implements ScopeResolver.
func (f ScopeResolverFunc) ResolveScope(ctx context.Context, actor ActorRef, requested ScopeFilter) (ScopeFilter, error) {
	return f(ctx, actor, requested)
}

// AuthorizationPolicy governs whether an actor can access the requested scope
// for the supplied action.
type AuthorizationPolicy interface {
	Authorize(ctx context.Context, check PolicyCheck) error
}

// AuthorizationPolicyFunc adapts bare functions to AuthorizationPolicy.
type AuthorizationPolicyFunc func(ctx context.Context, check PolicyCheck) error

// Authorize implements AuthorizationPolicy.
func (f AuthorizationPolicyFunc) Authorize(ctx context.Context, check PolicyCheck) error {
	return f(ctx, check)
}

var (
	// ErrUnauthorizedScope indicates the configured policy rejected the scope.
	ErrUnauthorizedScope = errors.New("go-activities: actor not authorized for scope")
)

// IsRead reports whether the action only reads activities. Reads are the
// only actions an anonymous viewer may perform.
func (a PolicyAction) IsRead() bool {
	return a == PolicyActionActivityRead
}

// RequireActorPolicy rejects every non-read action issued without an actor.
type RequireActorPolicy struct{}

// Authorize implements AuthorizationPolicy.
func (RequireActorPolicy) Authorize(_ context.Context, check PolicyCheck) error {
	if check.Action.IsRead() || !check.Actor.IsAnonymous() {
		return nil
	}
	return ErrActorRequired
}

// ChainPolicies runs the policies in order and stops at the first rejection.
// Nil entries are skipped.
func ChainPolicies(policies ...AuthorizationPolicy) AuthorizationPolicy {
	chain := make([]AuthorizationPolicy, 0, len(policies))
	for _, policy := range policies {
		if policy != nil {
			chain = append(chain, policy)
		}
	}
	return AuthorizationPolicyFunc(func(ctx context.Context, check PolicyCheck) error {
		for _, policy := range chain {
			if err := policy.Authorize(ctx, check); err != nil {
				return err
			}
		}
		return nil
	})
}
