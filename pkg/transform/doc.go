// Package transform is the transformation-compilation collaborator of the
// processor.
//
// A program is a YAML list of rules applied in order to a document tree:
//
//	name: tag-owner
//	params:
//	  owner: platform
//	rules:
//	  - set:    {path: metadata.owner, value: $owner}
//	  - delete: {path: spec.debug}
//	  - rename: {path: spec.old, to: new}
//	  - copy:   {from: metadata.name, to: spec.name}
//
// Paths are dotted; numeric segments index sequences. A "$name" scalar in a
// set value is replaced by the static parameter of that name at compile
// time, and "$$" yields a literal dollar sign.
//
// # Engine Binding
//
// A compiled Program is bound to the engine that compiled it and only
// applies to documents bound to the same engine:
//
//	prog, err := compiler.Compile(eng, src, transform.Options{})
//	out, err := prog.Apply(doc) // *IncompatibleEngineError if doc.Engine() != eng
package transform
