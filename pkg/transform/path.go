package transform

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	errPathMissing      = errors.New("path not found")
	errPathConflict     = errors.New("path conflict")
	errAliasWrite       = errors.New("cannot write through an alias")
	errAnchorReferenced = errors.New("anchor is still referenced")
	errExpansion        = errors.New("value too large once aliases are expanded")
)

// maxDetachedNodes bounds the size of a written value after alias expansion.
const maxDetachedNodes = 100000

// Path is a dotted address into a document tree. Segments select mapping
// keys, or sequence elements when numeric.
type Path []string

// parsePath splits a dotted path. Empty paths and empty segments are invalid.
func parsePath(s string) (Path, error) {
	if s == "" {
		return nil, errors.New("path is empty")
	}
	segs := strings.Split(s, ".")
	for i, seg := range segs {
		if seg == "" {
			return nil, fmt.Errorf("path %q has an empty segment at position %d", s, i+1)
		}
	}
	return Path(segs), nil
}

// String joins the path back into dotted form.
func (p Path) String() string { return strings.Join(p, ".") }

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

// mappingIndex returns the Content index of key in a mapping node, or -1.
func mappingIndex(m *yaml.Node, key string) int {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return i
		}
	}
	return -1
}

// sequenceIndex parses seg as an index into s, or returns -1.
func sequenceIndex(s *yaml.Node, seg string) int {
	idx, err := strconv.Atoi(seg)
	if err != nil || idx < 0 || idx >= len(s.Content) {
		return -1
	}
	return idx
}

// child returns the node addressed by seg under n, following aliases.
func child(n *yaml.Node, seg string) *yaml.Node {
	return directChild(resolveAlias(n), seg)
}

// directChild returns the node addressed by seg under n without following
// aliases.
func directChild(n *yaml.Node, seg string) *yaml.Node {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case yaml.MappingNode:
		if i := mappingIndex(n, seg); i >= 0 {
			return n.Content[i+1]
		}
	case yaml.SequenceNode:
		if i := sequenceIndex(n, seg); i >= 0 {
			return n.Content[i]
		}
	}
	return nil
}

// lookup returns the node at p, or nil.
func lookup(root *yaml.Node, p Path) *yaml.Node {
	n := root
	for _, seg := range p {
		n = child(n, seg)
		if n == nil {
			return nil
		}
	}
	return resolveAlias(n)
}

// setPath stores value at p, creating intermediate mappings as needed. A
// null intermediate is replaced by a new mapping. Writes never pass through
// an alias, since the change would land in the shared anchor.
func setPath(root *yaml.Node, p Path, value *yaml.Node) error {
	n := root
	for i, seg := range p {
		if n.Kind == yaml.AliasNode {
			return fmt.Errorf("%w at %s", errAliasWrite, Path(p[:i]))
		}
		last := i == len(p)-1

		var slot **yaml.Node
		switch n.Kind {
		case yaml.MappingNode:
			idx := mappingIndex(n, seg)
			if idx < 0 {
				next := value
				if !last {
					next = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
				}
				n.Content = append(n.Content, strNode(seg), next)
				n = next
				continue
			}
			slot = &n.Content[idx+1]
		case yaml.SequenceNode:
			idx := sequenceIndex(n, seg)
			if idx < 0 {
				return fmt.Errorf("%w: index %q out of range at %s", errPathMissing, seg, Path(p[:i+1]))
			}
			slot = &n.Content[idx]
		default:
			return fmt.Errorf("%w: cannot descend into scalar at %s", errPathConflict, Path(p[:i]))
		}

		if last {
			if err := checkDetach(root, *slot); err != nil {
				return err
			}
			*slot = value
			return nil
		}
		if isNull(*slot) {
			if err := checkDetach(root, *slot); err != nil {
				return err
			}
			*slot = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		}
		n = *slot
	}
	return nil
}

// writableParent returns the container holding the last segment of p. It
// fails with errAliasWrite when the walk crosses an alias.
func writableParent(root *yaml.Node, p Path) (*yaml.Node, error) {
	n := root
	for i, seg := range p[:len(p)-1] {
		if n.Kind == yaml.AliasNode {
			return nil, fmt.Errorf("%w at %s", errAliasWrite, Path(p[:i]))
		}
		n = directChild(n, seg)
		if n == nil {
			return nil, errPathMissing
		}
	}
	if n.Kind == yaml.AliasNode {
		return nil, fmt.Errorf("%w at %s", errAliasWrite, Path(p[:len(p)-1]))
	}
	return n, nil
}

// deletePath removes the entry at p.
func deletePath(root *yaml.Node, p Path) error {
	parent, err := writableParent(root, p)
	if err != nil {
		return err
	}
	seg := p[len(p)-1]
	switch parent.Kind {
	case yaml.MappingNode:
		if i := mappingIndex(parent, seg); i >= 0 {
			if err := checkDetach(root, parent.Content[i+1]); err != nil {
				return err
			}
			parent.Content = append(parent.Content[:i], parent.Content[i+2:]...)
			return nil
		}
	case yaml.SequenceNode:
		if i := sequenceIndex(parent, seg); i >= 0 {
			if err := checkDetach(root, parent.Content[i]); err != nil {
				return err
			}
			parent.Content = append(parent.Content[:i], parent.Content[i+1:]...)
			return nil
		}
	}
	return errPathMissing
}

// renamePath renames the mapping key at p to newKey.
func renamePath(root *yaml.Node, p Path, newKey string) error {
	parent, err := writableParent(root, p)
	if err != nil {
		return err
	}
	if parent.Kind != yaml.MappingNode {
		return errPathMissing
	}
	i := mappingIndex(parent, p[len(p)-1])
	if i < 0 {
		return errPathMissing
	}
	if p[len(p)-1] == newKey {
		return nil
	}
	if mappingIndex(parent, newKey) >= 0 {
		return fmt.Errorf("%w: key %q already exists", errPathConflict, newKey)
	}
	parent.Content[i].Value = newKey
	return nil
}

// checkDetach fails when removing the subtree at removed would leave an
// alias elsewhere in root without its anchor.
func checkDetach(root, removed *yaml.Node) error {
	anchors := make(map[*yaml.Node]bool)
	walkNodes(removed, nil, func(n *yaml.Node) {
		if n.Anchor != "" {
			anchors[n] = true
		}
	})
	if len(anchors) == 0 {
		return nil
	}

	var name string
	walkNodes(root, removed, func(n *yaml.Node) {
		if name == "" && n.Kind == yaml.AliasNode && anchors[n.Alias] {
			name = n.Alias.Anchor
		}
	})
	if name != "" {
		return fmt.Errorf("%w: &%s", errAnchorReferenced, name)
	}
	return nil
}

// walkNodes visits n and its descendants without following aliases,
// skipping the subtree rooted at skip.
func walkNodes(n, skip *yaml.Node, visit func(*yaml.Node)) {
	if n == nil || n == skip {
		return
	}
	visit(n)
	for _, c := range n.Content {
		walkNodes(c, skip, visit)
	}
}

// detach deep-copies n with aliases expanded and anchors dropped, so the copy
// can be placed anywhere in a tree without sharing nodes with its source.
func detach(n *yaml.Node) (*yaml.Node, error) {
	budget := maxDetachedNodes
	var cp func(*yaml.Node) (*yaml.Node, error)
	cp = func(n *yaml.Node) (*yaml.Node, error) {
		n = resolveAlias(n)
		if n == nil {
			return nil, nil
		}
		if budget--; budget < 0 {
			return nil, fmt.Errorf("%w (limit %d nodes)", errExpansion, maxDetachedNodes)
		}
		c := *n
		c.Anchor = ""
		c.Alias = nil
		c.Content = nil
		if len(n.Content) > 0 {
			c.Content = make([]*yaml.Node, len(n.Content))
			for i, child := range n.Content {
				cc, err := cp(child)
				if err != nil {
					return nil, err
				}
				c.Content[i] = cc
			}
		}
		return &c, nil
	}
	return cp(n)
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}

func strNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}
