package command

import (
	"context"
	"strings"

	"github.com/goliatone/go-activities/pkg/types"
	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/google/uuid"
)

const (
	FeatureReplies = "activities.replies"
	FeatureSharing = "activities.sharing"
)

// KindFeature narrows a feature key to one subject kind, for example
// "activities.sharing.post". Hosts disable sharing of a single kind by
// turning that key off.
func KindFeature(feature, kind string) string {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind == "" {
		return feature
	}
	return feature + "." + kind
}

// featureCheck evaluates gate keys for one actor. Every key must be enabled.
type featureCheck struct {
	gate   featuregate.FeatureGate
	scope  types.ScopeFilter
	userID uuid.UUID
}

func (f featureCheck) require(ctx context.Context, keys ...string) error {
	if f.gate == nil {
		return nil
	}
	var opts []featuregate.ResolveOption
	if set := featureScopeSet(f.scope, f.userID); set != nil {
		opts = append(opts, featuregate.WithScopeSet(*set))
	}
	seen := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if _, dup := seen[key]; dup || key == "" {
			continue
		}
		seen[key] = struct{}{}
		enabled, err := f.gate.Enabled(ctx, key, opts...)
		if err != nil {
			return err
		}
		if !enabled {
			return types.FeatureDisabledError(key)
		}
	}
	return nil
}

func featureScopeSet(scope types.ScopeFilter, userID uuid.UUID) *featuregate.ScopeSet {
	set := featuregate.ScopeSet{System: true}
	if scope.TenantID != uuid.Nil {
		set.TenantID = scope.TenantID.String()
	}
	if scope.OrgID != uuid.Nil {
		set.OrgID = scope.OrgID.String()
	}
	if userID != uuid.Nil {
		set.UserID = userID.String()
	}
	if set.TenantID == "" && set.OrgID == "" && set.UserID == "" {
		return nil
	}
	return &set
}
