package document

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"mercator-hq/forge/pkg/engine"
)

// Document is a parsed document tree bound to the engine that produced it.
// The binding is fixed at construction.
type Document struct {
	engine   *engine.Engine
	root     *yaml.Node
	systemID string
}

// New binds a tree to an engine. It is used by the parser and by
// transformations producing result trees; root must be a mapping,
// sequence or scalar node.
func New(e *engine.Engine, root *yaml.Node, systemID string) *Document {
	return &Document{
		engine:   e,
		root:     root,
		systemID: systemID,
	}
}

// Engine returns the engine the document is bound to.
func (d *Document) Engine() *engine.Engine {
	if d == nil {
		return nil
	}
	return d.engine
}

// SystemID returns the identifier of the document's source.
func (d *Document) SystemID() string { return d.systemID }

// Root returns a deep copy of the document's root node.
func (d *Document) Root() *yaml.Node { return Clone(d.root) }

// Marshal renders the document as YAML.
func (d *Document) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d.root); err != nil {
		return nil, fmt.Errorf("failed to encode document %q: %w", d.systemID, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode document %q: %w", d.systemID, err)
	}
	return buf.Bytes(), nil
}

// Clone deep-copies a node tree. Every node is copied once, so aliases in
// the copy refer to the copied anchor and the cost stays linear in the
// number of nodes however often an anchor is referenced.
func Clone(n *yaml.Node) *yaml.Node {
	return cloneNode(n, make(map[*yaml.Node]*yaml.Node))
}

func cloneNode(n *yaml.Node, seen map[*yaml.Node]*yaml.Node) *yaml.Node {
	if n == nil {
		return nil
	}
	if c, ok := seen[n]; ok {
		return c
	}
	c := new(yaml.Node)
	*c = *n
	seen[n] = c
	c.Alias = cloneNode(n.Alias, seen)
	if len(n.Content) > 0 {
		c.Content = make([]*yaml.Node, len(n.Content))
		for i, child := range n.Content {
			c.Content[i] = cloneNode(child, seen)
		}
	}
	return c
}
