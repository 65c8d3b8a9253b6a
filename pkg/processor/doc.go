// Package processor is the entry point of Mercator Forge. A Processor owns a
// single engine, mediates its configuration and is the only factory for
// compiled programs and parsed documents.
//
// # Identity
//
// Every artifact keeps a back-reference to the engine that produced it.
// Two processors are Equal exactly when they wrap the same engine, and an
// artifact belongs to a processor when Owns reports true. Programs refuse to
// run against documents from another engine.
//
// # Usage
//
//	p, err := processor.New(
//	    processor.WithConfigSource(source.Path("engine.yaml")),
//	    processor.WithLicense(source.Path("license.yaml")),
//	)
//	if err != nil {
//	    return err
//	}
//
//	if _, err := p.SetConfig(map[string]any{"lineNumbering": true}); err != nil {
//	    return err
//	}
//
//	prog, err := p.Compile(source.Path("program.yaml"), transform.Options{})
//	doc, err := p.Parse(source.Path("input.yaml"), document.Options{})
//	out, err := p.Transform(prog, doc)
//
// Default returns a process-wide processor built with engine defaults.
//
// # Concurrency
//
// Compile, Parse, GetConfig and Transform may be called from many goroutines
// at once. SetConfig and SetFeature must not run concurrently with any other
// use of the same processor.
package processor
