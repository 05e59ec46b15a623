// Package authctx turns go-auth request metadata into the actor references and
// scopes consumed by activity commands and queries. Mutations require an
// authenticated actor; feed reads fall back to the anonymous viewer.
package authctx

import (
	"context"

	"github.com/goliatone/go-activities/pkg/types"
	auth "github.com/goliatone/go-auth"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

const (
	textCodeActorMissing = "ACTOR_CONTEXT_MISSING"
	textCodeActorInvalid = "ACTOR_CONTEXT_INVALID"
)

// ResolveActorContext returns the actor metadata stored by go-auth middleware
// or rebuilds it from JWT claims when no actor was stored.
func ResolveActorContext(ctx context.Context) (*auth.ActorContext, error) {
	if ctx == nil {
		return nil, actorMissing("go-activities: missing request context")
	}
	if actor, ok := auth.ActorFromContext(ctx); ok && actor != nil {
		return actor, nil
	}
	if claims, ok := auth.GetClaims(ctx); ok && claims != nil {
		if actor := auth.ActorContextFromClaims(claims); actor != nil {
			return actor, nil
		}
	}
	return nil, actorMissing("go-activities: auth actor context not found on request")
}

// ResolveActorContextFromRouter checks the router context first, then the
// request context.
func ResolveActorContextFromRouter(ctx router.Context) (*auth.ActorContext, error) {
	if ctx == nil {
		return nil, actorMissing("go-activities: missing router context")
	}
	if actor, ok := auth.ActorFromRouterContext(ctx); ok && actor != nil {
		return actor, nil
	}
	return ResolveActorContext(ctx.Context())
}

// ResolveActor returns the authenticated actor and its scope. It fails when
// the request carries no usable actor.
func ResolveActor(ctx context.Context) (types.ActorRef, types.ScopeFilter, error) {
	actorCtx, err := ResolveActorContext(ctx)
	if err != nil {
		return types.ActorRef{}, types.ScopeFilter{}, err
	}
	ref, err := ActorRefFromActorContext(actorCtx)
	if err != nil {
		return types.ActorRef{}, types.ScopeFilter{}, err
	}
	return ref, ScopeFromActorContext(actorCtx), nil
}

// ResolveViewer returns the viewer of a read request. Requests without actor
// metadata are served as the anonymous viewer; malformed metadata is still an
// error.
func ResolveViewer(ctx context.Context) (types.ActorRef, types.ScopeFilter, error) {
	actorCtx, err := ResolveActorContext(ctx)
	if err != nil {
		return types.Anonymous(), types.ScopeFilter{}, nil
	}
	ref, err := ActorRefFromActorContext(actorCtx)
	if err != nil {
		return types.Anonymous(), types.ScopeFilter{}, err
	}
	return ref, ScopeFromActorContext(actorCtx), nil
}

// ResolveViewerFromRouter mirrors ResolveViewer for router transports.
func ResolveViewerFromRouter(ctx router.Context) (types.ActorRef, types.ScopeFilter, error) {
	if ctx == nil {
		return types.Anonymous(), types.ScopeFilter{}, nil
	}
	if actor, ok := auth.ActorFromRouterContext(ctx); ok && actor != nil {
		ref, err := ActorRefFromActorContext(actor)
		if err != nil {
			return types.Anonymous(), types.ScopeFilter{}, err
		}
		return ref, ScopeFromActorContext(actor), nil
	}
	return ResolveViewer(ctx.Context())
}

// ActorRefFromActorContext converts the auth middleware payload into an
// ActorRef.
func ActorRefFromActorContext(actor *auth.ActorContext) (types.ActorRef, error) {
	if actor == nil {
		return types.ActorRef{}, actorInvalid(nil, "go-activities: actor context is nil")
	}
	if actor.ActorID == "" {
		return types.ActorRef{}, actorInvalid(nil, "go-activities: actor context missing actor_id")
	}
	actorID, err := uuid.Parse(actor.ActorID)
	if err != nil {
		return types.ActorRef{}, actorInvalid(err, "go-activities: invalid actor_id on auth context")
	}

	ref := types.ActorRef{
		ID:   actorID,
		Type: actor.Role,
	}
	if ref.Type == "" && actor.Subject != "" {
		ref.Type = actor.Subject
	}
	return ref, nil
}

// ScopeFromActorContext builds a ScopeFilter from the tenant/org identifiers
// stored by go-auth middleware.
func ScopeFromActorContext(actor *auth.ActorContext) types.ScopeFilter {
	if actor == nil {
		return types.ScopeFilter{}
	}
	return types.ScopeFilter{
		TenantID: parseUUID(actor.TenantID),
		OrgID:    parseUUID(actor.OrganizationID),
	}
}

func actorMissing(msg string) error {
	return errors.New(msg, errors.CategoryAuth).
		WithCode(errors.CodeUnauthorized).
		WithTextCode(textCodeActorMissing)
}

func actorInvalid(cause error, msg string) error {
	if cause != nil {
		return errors.Wrap(cause, errors.CategoryAuth, msg).
			WithCode(errors.CodeUnauthorized).
			WithTextCode(textCodeActorInvalid)
	}
	return errors.New(msg, errors.CategoryAuth).
		WithCode(errors.CodeUnauthorized).
		WithTextCode(textCodeActorInvalid)
}

func parseUUID(raw string) uuid.UUID {
	if raw == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}
