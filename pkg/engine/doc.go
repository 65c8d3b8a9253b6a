// Package engine provides the processing engine shared by every artifact a
// processor produces.
//
// An Engine owns a typed configuration store keyed by namespaced feature
// URIs. Only registered features can be written, and values are coerced to
// the feature's kind:
//
//	e, err := engine.New(engine.Options{})
//	err = e.SetProperty(engine.FeatureLineNumbering, engine.BoolValue(true))
//	v, err := e.Property(engine.FeatureLineNumbering)
//
// # Configuration Sources
//
// A configuration source is YAML with a "features" mapping of short names:
//
//	features:
//	  lineNumbering: true
//	  maxNestingDepth: 32
//
// # Licenses
//
// A license source activates a professional or enterprise edition:
//
//	licensee: Example Corp
//	edition: EE
//	expires: 2027-01-01T00:00:00Z
//
// Engines are compared by pointer. Two engines built from identical sources
// are still different engines.
package engine
