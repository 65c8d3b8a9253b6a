// Package source resolves caller input into StreamSource values consumed by
// the engine, the document parser and the transformation compiler.
//
// Files, paths, open streams and in-memory text are all normalized the same
// way: the content is read synchronously into memory and tagged with a
// system ID when one is known.
//
//	src, err := source.Resolve(source.Path("catalog.yaml"))
//	src, err := source.Resolve(os.Stdin)
//	src, err := source.Resolve("name: inline")
package source
