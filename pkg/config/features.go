package config

import (
	"context"
	"strings"

	"github.com/goliatone/go-activities/command"
	featuregate "github.com/goliatone/go-featuregate/gate"
)

// StaticGate answers feature checks from a fixed table. Unknown keys are
// enabled.
type StaticGate map[string]bool

var _ featuregate.FeatureGate = StaticGate(nil)

// Enabled implements featuregate.FeatureGate.
func (g StaticGate) Enabled(_ context.Context, key string, _ ...featuregate.ResolveOption) (bool, error) {
	enabled, ok := g[strings.TrimSpace(key)]
	if !ok {
		return true, nil
	}
	return enabled, nil
}

// Gate exposes the toggles as a feature gate.
func (f FeaturesConfig) Gate() StaticGate {
	return StaticGate{
		command.FeatureReplies: f.Replies,
		command.FeatureSharing: f.Sharing,
	}
}
