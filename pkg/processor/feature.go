package processor

import "mercator-hq/forge/pkg/engine"

// FeatureKey expands a short configuration name into the engine's full
// feature key. It is a plain prefix with no escaping.
func FeatureKey(name string) string {
	return engine.FeatureNamespace + name
}
