/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: tree.go
Description: Shared path regrouping for the schema generators. Rebuilds the nested
record/message/object structure each target dialect needs from the inference engine's
flat, dot-separated field paths.
*/

package generators

import (
	"strings"

	"github.com/kleascm/streamschema/pkg/schema"
)

// fieldNode is one node of the regrouped field tree. A node may carry a leaf
// field (the path ended here), child nodes (deeper paths passed through
// here), or both — when both exist the children define a nested structure
// and win over the leaf's scalar type. Array markers ([]) stay embedded in
// segment names; the dialects sanitize them away.
type fieldNode struct {
	name     string
	leaf     *schema.SchemaField
	children map[string]*fieldNode
	order    []string
}

// newFieldNode creates an empty node
func newFieldNode(name string) *fieldNode {
	return &fieldNode{name: name, children: make(map[string]*fieldNode)}
}

// child returns the named child node, creating it on first use and keeping
// insertion order (fields arrive sorted by path, so traversal stays
// deterministic).
func (n *fieldNode) child(name string) *fieldNode {
	if c, ok := n.children[name]; ok {
		return c
	}
	c := newFieldNode(name)
	n.children[name] = c
	n.order = append(n.order, name)
	return c
}

// hasChildren reports whether the node defines nested structure
func (n *fieldNode) hasChildren() bool { return len(n.order) > 0 }

// walk visits children in insertion order
func (n *fieldNode) walk(fn func(child *fieldNode)) {
	for _, name := range n.order {
		fn(n.children[name])
	}
}

// groupFields partitions the flat field list into a tree keyed by path
// segment. Entries without a dot become direct leaves of the root; dotted
// entries are regrouped segment by segment.
func groupFields(fields []schema.SchemaField) *fieldNode {
	root := newFieldNode("")
	for i := range fields {
		field := &fields[i]
		node := root
		for _, segment := range strings.Split(field.Path, ".") {
			node = node.child(segment)
		}
		node.leaf = field
	}
	return root
}
