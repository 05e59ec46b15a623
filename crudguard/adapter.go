// Package crudguard runs the activity scope guard in front of go-crud
// operations. Read operations accept anonymous viewers; every other operation
// requires an authenticated actor.
package crudguard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-activities/pkg/authctx"
	"github.com/goliatone/go-activities/pkg/types"
	"github.com/goliatone/go-activities/scope"
	"github.com/goliatone/go-crud"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

const (
	textCodeScopeDenied          = "SCOPE_DENIED"
	textCodeScopeEnforcementFail = "SCOPE_ENFORCEMENT_FAILED"
	textCodeMissingPolicy        = "SCOPE_POLICY_MISSING"
	textCodeMissingContext       = "CONTEXT_MISSING"
	textCodeInvalidScope         = "SCOPE_INVALID"
)

// ScopeExtractor derives the requested scope from the crud context, for
// example from query parameters. The resolved actor scope is passed in.
type ScopeExtractor func(ctx crud.Context, actorScope types.ScopeFilter) (types.ScopeFilter, error)

// Config drives Adapter construction.
type Config struct {
	Guard          scope.Guard
	Logger         types.Logger
	PolicyMap      map[crud.CrudOperation]types.PolicyAction
	ScopeExtractor ScopeExtractor
	FallbackAction types.PolicyAction
}

// Adapter turns go-crud operations into scope guard checks.
type Adapter struct {
	guard          scope.Guard
	logger         types.Logger
	scopeExtractor ScopeExtractor
	policyMap      map[crud.CrudOperation]types.PolicyAction
	fallbackAction types.PolicyAction
}

// GuardInput captures per-request parameters supplied by transports.
type GuardInput struct {
	Context   crud.Context
	Operation crud.CrudOperation
	TargetID  uuid.UUID
	Subject   types.SubjectRef
	Scope     types.ScopeFilter
}

// GuardResult reports the resolved actor and scope.
type GuardResult struct {
	Actor     types.ActorRef
	Scope     types.ScopeFilter
	Operation crud.CrudOperation
	Action    types.PolicyAction
}

// DefaultScopeExtractor keeps the scope carried by the actor.
func DefaultScopeExtractor(_ crud.Context, actorScope types.ScopeFilter) (types.ScopeFilter, error) {
	return actorScope, nil
}

// QueryScopeExtractor narrows the actor scope with tenant_id and org_id query
// parameters. Malformed values are rejected; the guard decides whether the
// actor may reach the requested scope.
func QueryScopeExtractor(ctx crud.Context, actorScope types.ScopeFilter) (types.ScopeFilter, error) {
	requested := actorScope.Clone()
	for key, dst := range map[string]*uuid.UUID{
		"tenant_id": &requested.TenantID,
		"org_id":    &requested.OrgID,
	} {
		raw := strings.TrimSpace(ctx.Query(key))
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return types.ScopeFilter{}, goerrors.Wrap(err, goerrors.CategoryValidation, fmt.Sprintf("go-activities: invalid %s", key)).
				WithCode(goerrors.CodeBadRequest).
				WithTextCode(textCodeInvalidScope)
		}
		*dst = id
	}
	return requested, nil
}

// NewAdapter constructs a guard adapter and validates the supplied config.
func NewAdapter(cfg Config) (*Adapter, error) {
	if cfg.Guard == nil {
		return nil, goerrors.New("go-activities: scope guard is required", goerrors.CategoryInternal).
			WithCode(goerrors.CodeInternal).
			WithTextCode(textCodeScopeEnforcementFail)
	}
	if len(cfg.PolicyMap) == 0 && cfg.FallbackAction == "" {
		return nil, goerrors.New("go-activities: policy map or fallback action must be provided", goerrors.CategoryInternal).
			WithCode(goerrors.CodeInternal).
			WithTextCode(textCodeMissingPolicy)
	}

	scopeExtractor := cfg.ScopeExtractor
	if scopeExtractor == nil {
		scopeExtractor = DefaultScopeExtractor
	}
	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}

	return &Adapter{
		guard:          cfg.Guard,
		logger:         logger,
		scopeExtractor: scopeExtractor,
		policyMap:      clonePolicyMap(cfg.PolicyMap),
		fallbackAction: cfg.FallbackAction,
	}, nil
}

// Enforce resolves the actor (or the anonymous viewer for reads), derives the
// requested scope and runs the scope guard with the mapped PolicyAction.
func (a *Adapter) Enforce(in GuardInput) (GuardResult, error) {
	if in.Context == nil {
		return GuardResult{}, goerrors.New("go-activities: crudguard requires a context", goerrors.CategoryInternal).
			WithCode(goerrors.CodeInternal).
			WithTextCode(textCodeMissingContext)
	}

	ctx := in.Context.UserContext()
	var (
		actor      types.ActorRef
		actorScope types.ScopeFilter
		err        error
	)
	if isRead(in.Operation) {
		actor, actorScope, err = authctx.ResolveViewer(ctx)
	} else {
		actor, actorScope, err = authctx.ResolveActor(ctx)
	}
	if err != nil {
		return GuardResult{}, err
	}

	requested, err := a.scopeExtractor(in.Context, actorScope)
	if err != nil {
		return GuardResult{}, err
	}
	requested = mergeScopeFilters(requested, in.Scope)

	action, err := a.actionForOperation(in.Operation)
	if err != nil {
		return GuardResult{}, err
	}

	resolved, err := a.guard.Enforce(ctx, types.PolicyCheck{
		Actor:    actor,
		Scope:    requested,
		Action:   action,
		TargetID: in.TargetID,
		Subject:  in.Subject,
	})
	if err != nil {
		a.logger.Debug("crudguard: request rejected", "operation", string(in.Operation), "action", string(action))
		return GuardResult{}, wrapGuardError(err, action)
	}

	return GuardResult{
		Actor:     actor,
		Scope:     resolved,
		Operation: in.Operation,
		Action:    action,
	}, nil
}

func (a *Adapter) actionForOperation(op crud.CrudOperation) (types.PolicyAction, error) {
	if act, ok := a.policyMap[op]; ok && act != "" {
		return act, nil
	}
	if a.fallbackAction != "" {
		return a.fallbackAction, nil
	}
	return "", goerrors.New(fmt.Sprintf("go-activities: no policy action configured for %s", op), goerrors.CategoryInternal).
		WithCode(goerrors.CodeInternal).
		WithTextCode(textCodeMissingPolicy)
}

func isRead(op crud.CrudOperation) bool {
	return op == crud.OpRead || op == crud.OpList
}

func mergeScopeFilters(base, override types.ScopeFilter) types.ScopeFilter {
	result := base.Clone()
	if override.TenantID != uuid.Nil {
		result.TenantID = override.TenantID
	}
	if override.OrgID != uuid.Nil {
		result.OrgID = override.OrgID
	}
	for k, v := range override.Labels {
		if v == uuid.Nil {
			continue
		}
		if result.Labels == nil {
			result.Labels = make(map[string]uuid.UUID, len(override.Labels))
		}
		result.Labels[k] = v
	}
	return result
}

// wrapGuardError keeps permission denials as forbidden errors and reports
// anything else as an internal failure.
func wrapGuardError(err error, action types.PolicyAction) error {
	if errors.Is(err, types.ErrUnauthorizedScope) || types.IsPermissionDenied(err) {
		return goerrors.Wrap(err, goerrors.CategoryAuthz, "go-activities: scope guard rejected the request").
			WithCode(goerrors.CodeForbidden).
			WithTextCode(textCodeScopeDenied)
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, fmt.Sprintf("go-activities: scope guard failed for action %s", action)).
		WithCode(goerrors.CodeInternal).
		WithTextCode(textCodeScopeEnforcementFail)
}
