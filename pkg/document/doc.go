// Package document is the document-parsing collaborator of the processor.
//
// It turns a resolved source into a Document: a YAML node tree bound to the
// engine that produced it. Documents never change engines, and the tree is
// only handed out as a copy.
//
//	p := document.NewParser()
//	doc, err := p.Parse(eng, src, document.Options{})
//	out, err := doc.Marshal()
package document
