package engine

import (
	"math"
	"sort"
)

// FeatureNamespace prefixes every feature key understood by the engine.
const FeatureNamespace = "http://mercator.dev/forge/feature/"

// MaxNestingDepthLimit is the largest accepted maxNestingDepth, matching the
// YAML decoder's own nesting limit.
const MaxNestingDepthLimit = 10000

// Full feature keys.
const (
	FeatureLineNumbering   = FeatureNamespace + "lineNumbering"
	FeatureStripWhitespace = FeatureNamespace + "stripWhitespace"
	FeatureMaxNestingDepth = FeatureNamespace + "maxNestingDepth"
	FeatureStrictPaths     = FeatureNamespace + "strictPaths"
	FeatureTiming          = FeatureNamespace + "timing"
	FeatureRecoveryPolicy  = FeatureNamespace + "recoveryPolicy"
)

// Whitespace handling modes for FeatureStripWhitespace.
const (
	StripNone      = "none"
	StripIgnorable = "ignorable"
	StripAll       = "all"
)

// Recovery policies for FeatureRecoveryPolicy.
const (
	RecoveryRecover = "recover"
	RecoveryFail    = "fail"
)

// Feature describes a configuration property known to the engine.
type Feature struct {
	// Key is the full namespaced key.
	Key string

	// Kind is the value kind stored for this feature.
	Kind Kind

	// Default is returned when the feature was never set.
	Default Value

	// Allowed restricts string features to an enumerated domain.
	// Empty means any string is accepted.
	Allowed []string

	// Min and Max bound number features when Max > Min.
	Min, Max float64

	// Integer restricts number features to whole values.
	Integer bool

	// Description is a one-line summary shown by the CLI.
	Description string
}

func (f Feature) allows(v Value) bool {
	switch v.kind {
	case KindString:
		if len(f.Allowed) == 0 {
			return true
		}
		for _, a := range f.Allowed {
			if a == v.s {
				return true
			}
		}
		return false
	case KindNumber:
		if math.IsNaN(v.n) || math.IsInf(v.n, 0) {
			return false
		}
		if f.Integer && v.n != math.Trunc(v.n) {
			return false
		}
		if f.Max > f.Min && (v.n < f.Min || v.n > f.Max) {
			return false
		}
	}
	return true
}

var features = map[string]Feature{
	FeatureLineNumbering: {
		Key:         FeatureLineNumbering,
		Kind:        KindBool,
		Default:     BoolValue(false),
		Description: "retain line and column numbers in parsed documents",
	},
	FeatureStripWhitespace: {
		Key:         FeatureStripWhitespace,
		Kind:        KindString,
		Default:     StringValue(StripIgnorable),
		Allowed:     []string{StripNone, StripIgnorable, StripAll},
		Description: "whitespace handling for scalar text in parsed documents",
	},
	FeatureMaxNestingDepth: {
		Key:         FeatureMaxNestingDepth,
		Kind:        KindNumber,
		Default:     NumberValue(64),
		Min:         1,
		Max:         MaxNestingDepthLimit,
		Integer:     true,
		Description: "maximum nesting depth accepted by the document parser (1-10000)",
	},
	FeatureStrictPaths: {
		Key:         FeatureStrictPaths,
		Kind:        KindBool,
		Default:     BoolValue(false),
		Description: "fail transformations whose rules address missing paths",
	},
	FeatureTiming: {
		Key:         FeatureTiming,
		Kind:        KindBool,
		Default:     BoolValue(false),
		Description: "log compile and parse durations",
	},
	FeatureRecoveryPolicy: {
		Key:         FeatureRecoveryPolicy,
		Kind:        KindString,
		Default:     StringValue(RecoveryRecover),
		Allowed:     []string{RecoveryRecover, RecoveryFail},
		Description: "whether recoverable transformation warnings become errors",
	},
}

// LookupFeature returns the feature registered under the full key.
func LookupFeature(key string) (Feature, bool) {
	f, ok := features[key]
	return f, ok
}

// Features returns every registered feature sorted by key.
func Features() []Feature {
	out := make([]Feature, 0, len(features))
	for _, f := range features {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
