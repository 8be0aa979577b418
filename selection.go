package storefront

import (
	"bytes"
	"fmt"
	"io"
)

// Node is one field of a selection tree: the hierarchical description of
// which fields a query or mutation retrieves. A tree is built once per
// request by a FieldSelector and is not shared or mutated after dispatch.
//
// Children keep insertion order, so building the same tree twice with the
// same selector yields the same document.
type Node struct {
	name     string
	on       string // type condition, set for inline fragments
	args     []argument
	children []*Node
}

type argument struct {
	name  string
	value any
}

// newRoot returns the unnamed root of a selection tree. Only its children
// are rendered.
func newRoot() *Node {
	return &Node{}
}

// Field returns the child selecting name, appending a new child if the
// field is not selected yet. Selecting the same field twice therefore
// yields a single node, which keeps composition idempotent.
func (n *Node) Field(name string) *Node {
	for _, c := range n.children {
		if c.on == "" && c.name == name {
			return c
		}
	}
	c := &Node{name: name}
	n.children = append(n.children, c)
	return c
}

// Fields selects one scalar child per name and returns n for chaining.
func (n *Node) Fields(names ...string) *Node {
	for _, name := range names {
		n.Field(name)
	}
	return n
}

// Arg sets the argument name to value, replacing any previous value so a
// selector and the composer can both set it without duplicating it in the
// rendered document.
func (n *Node) Arg(name string, value any) *Node {
	for i, a := range n.args {
		if a.name == name {
			n.args[i].value = value
			return n
		}
	}
	n.args = append(n.args, argument{name: name, value: value})
	return n
}

// On returns the inline fragment child with the given type condition,
// appending it if absent. Used to specialize a node(id:) lookup by type.
func (n *Node) On(typeName string) *Node {
	for _, c := range n.children {
		if c.on == typeName {
			return c
		}
	}
	c := &Node{on: typeName}
	n.children = append(n.children, c)
	return c
}

// Entity returns the node on which entity fields should be selected: the
// child named field for plain attachments, or the typed inline fragment
// beneath a node(id:) lookup when id is non-empty.
func (n *Node) Entity(field string, id ID, typeName string) *Node {
	c := n.Field(field)
	if id == "" {
		return c
	}
	c.Arg("id", id)
	return c.On(typeName)
}

// ConnectionField selects the paged field beneath n together with the
// plumbing the pagination engine requires (page info and edge cursors),
// and returns the edge node on which per-entity fields should be selected.
func (n *Node) ConnectionField(field string) *Node {
	c := n.Field(field)
	c.Field("pageInfo").Fields("hasNextPage", "endCursor")
	edges := c.Field("edges")
	edges.Field("cursor")
	return edges.Field("node")
}

// lookup descends the tree along the given field path. It returns nil as
// soon as a segment is not selected.
func (n *Node) lookup(path ...string) *Node {
	cur := n
	for _, name := range path {
		var next *Node
		for _, c := range cur.children {
			if c.on == "" && c.name == name {
				next = c
				break
			}
		}
		if next == nil {
			return nil
		}
		cur = next
	}
	return cur
}

// clone deep-copies n. The pagination engine grafts cloned subtrees into
// page queries so later pages select exactly what the first page selected.
func (n *Node) clone() *Node {
	c := &Node{name: n.name, on: n.on}
	c.args = append(c.args, n.args...)
	for _, child := range n.children {
		c.children = append(c.children, child.clone())
	}
	return c
}

// graft attaches a clone of src's selection beneath n's child named name.
func (n *Node) graft(name string, src *Node) *Node {
	c := n.Field(name)
	for _, child := range src.children {
		c.children = append(c.children, child.clone())
	}
	c.args = append(c.args, src.args...)
	return c
}

// A FieldSelector declares which fields a request selects. The composer
// hands it the node the selection attaches to and the attachment field
// name; for entity lookups it also passes the identifier, in which case
// the selector is expected to target the generic node(id:) root field and
// specialize by type (see Node.Entity).
//
// Field legality is not validated here; an unknown field surfaces as a
// server error at dispatch.
type FieldSelector interface {
	Select(parent *Node, field string, id ID)
}

// SelectorFunc adapts a function to the FieldSelector interface.
type SelectorFunc func(parent *Node, field string, id ID)

// Select calls f.
func (f SelectorFunc) Select(parent *Node, field string, id ID) {
	f(parent, field, id)
}

type operationType uint8

const (
	queryOperation operationType = iota
	mutationOperation
)

// constructOperation renders the selection tree rooted at root as a
// minified GraphQL document. Queries use the shorthand form; mutations
// carry the operation type keyword.
func constructOperation(op operationType, root *Node) (string, error) {
	var buf bytes.Buffer
	if op == mutationOperation {
		_, _ = io.WriteString(&buf, "mutation")
	}
	if err := writeSelectionSet(&buf, root.children); err != nil {
		return "", fmt.Errorf("failed to write selection set: %w", err)
	}
	return buf.String(), nil
}

func writeSelectionSet(buf *bytes.Buffer, selections []*Node) error {
	buf.WriteByte('{')
	for i, n := range selections {
		if i != 0 {
			buf.WriteByte(',')
		}
		if err := writeSelection(buf, n); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func writeSelection(buf *bytes.Buffer, n *Node) error {
	if n.on != "" {
		_, _ = io.WriteString(buf, "... on ")
		_, _ = io.WriteString(buf, n.on)
	} else {
		_, _ = io.WriteString(buf, n.name)
	}
	if len(n.args) > 0 {
		buf.WriteByte('(')
		for i, a := range n.args {
			if i != 0 {
				buf.WriteByte(',')
			}
			_, _ = io.WriteString(buf, a.name)
			buf.WriteByte(':')
			if err := writeArgumentValue(buf, a.value); err != nil {
				return fmt.Errorf(
					"failed to write argument `%s`: %w",
					a.name,
					err,
				)
			}
		}
		buf.WriteByte(')')
	}
	if len(n.children) > 0 {
		return writeSelectionSet(buf, n.children)
	}
	return nil
}
