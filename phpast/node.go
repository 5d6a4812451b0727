// Package phpast models the php-ast node format: kind tags, flag bitmasks,
// line numbers and ordered children, plus the builders, walkers and dumpers
// used to produce and compare such trees.
package phpast

import (
	"fmt"
	"math"
)

type (
	// Value is anything a child slot can hold: a *Node, a String, an Int or
	// a Float. An absent child is a nil Value.
	Value interface {
		isValue()
	}

	// String is a string scalar
	String string

	// Int is an integer scalar
	Int int64

	// Float is a floating point scalar
	Float float64

	// Child is one child slot. List kinds leave Name empty.
	Child struct {
		Name  string
		Value Value
	}

	// Decl holds the attributes only declarations carry
	Decl struct {
		Name       string
		EndLineno  int
		DocComment string
	}

	// Node is an immutable php-ast node. Construct it with NewNode, NewList
	// or NewDecl.
	Node struct {
		Kind   Kind
		Flags  Flags
		Lineno int

		children []Child
		decl     *Decl
	}
)

// Reserved names of anonymous declarations
const (
	ClosureName        = "{closure}"
	AnonymousClassName = "class@anonymous"
)

func (String) isValue() {}
func (Int) isValue()    {}
func (Float) isValue()  {}
func (*Node) isValue()  {}

// IsAbsent reports whether v holds nothing, including a typed nil *Node
func IsAbsent(v Value) bool {
	if v == nil {
		return true
	}
	n, ok := v.(*Node)
	return ok && n == nil
}

func normalizeValue(v Value) Value {
	if IsAbsent(v) {
		return nil
	}
	return v
}

// NewNode builds a structured node. values are matched positionally with the
// kind's child names; passing the wrong number of values is a programming error.
func NewNode(kind Kind, flags Flags, lineno int, values ...Value) *Node {
	names := kind.ChildNames()
	if names == nil || kind.IsList() {
		panic(fmt.Sprintf("phpast: %s is not a structured kind", kind))
	}
	if len(names) != len(values) {
		panic(fmt.Sprintf("phpast: %s takes %d children, got %d", kind, len(names), len(values)))
	}
	children := make([]Child, len(values))
	for i, v := range values {
		children[i] = Child{Name: names[i], Value: normalizeValue(v)}
	}
	return &Node{Kind: kind, Flags: flags, Lineno: lineno, children: children}
}

// NewList builds a list node holding elems in order
func NewList(kind Kind, flags Flags, lineno int, elems []Value) *Node {
	if !kind.IsList() {
		panic(fmt.Sprintf("phpast: %s is not a list kind", kind))
	}
	children := make([]Child, len(elems))
	for i, v := range elems {
		children[i] = Child{Value: normalizeValue(v)}
	}
	return &Node{Kind: kind, Flags: flags, Lineno: lineno, children: children}
}

// NewDecl builds a declaration node
func NewDecl(kind Kind, flags Flags, lineno int, decl Decl, values ...Value) *Node {
	if !kind.IsDecl() {
		panic(fmt.Sprintf("phpast: %s is not a declaration kind", kind))
	}
	n := NewNode(kind, flags, lineno, values...)
	n.decl = &decl
	return n
}

// NewUnhandled builds the stub emitted for a source construct without a
// conversion rule
func NewUnhandled(sourceKind string, lineno int) *Node {
	return NewNode(KindUnhandled, 0, lineno, String(sourceKind))
}

// IsList reports whether the node holds an ordered sequence of children
func (n *Node) IsList() bool {
	return n.Kind.IsList()
}

// Children returns a copy of the node's child slots
func (n *Node) Children() []Child {
	return append([]Child(nil), n.children...)
}

// Len returns the number of child slots
func (n *Node) Len() int {
	return len(n.children)
}

// Child returns the value of a named slot, nil when absent or unknown
func (n *Node) Child(name string) Value {
	for _, c := range n.children {
		if c.Name == name {
			return c.Value
		}
	}
	return nil
}

// ChildNode returns a named slot holding a node, nil otherwise
func (n *Node) ChildNode(name string) *Node {
	child, _ := n.Child(name).(*Node)
	return child
}

// Elems returns the values of a list node in order
func (n *Node) Elems() []Value {
	elems := make([]Value, len(n.children))
	for i, c := range n.children {
		elems[i] = c.Value
	}
	return elems
}

// Elem returns the i-th value of a list node
func (n *Node) Elem(i int) Value {
	return n.children[i].Value
}

// ElemNode returns the i-th value of a list node when it is a node
func (n *Node) ElemNode(i int) *Node {
	child, _ := n.children[i].Value.(*Node)
	return child
}

// Decl returns the declaration attributes, false for non declarations
func (n *Node) Decl() (Decl, bool) {
	if n.decl == nil {
		return Decl{}, false
	}
	return *n.decl, true
}

// Name returns the declared name, empty for non declarations
func (n *Node) Name() string {
	if n.decl == nil {
		return ""
	}
	return n.decl.Name
}

// Walk visits v and its descendants depth first, children in order. fn
// returning false skips the node's children.
func Walk(v Value, fn func(n *Node) bool) {
	n, ok := v.(*Node)
	if !ok || n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		Walk(c.Value, fn)
	}
}

// Find returns every node below v (v included) with the given kind
func Find(v Value, kind Kind) []*Node {
	var found []*Node
	Walk(v, func(n *Node) bool {
		if n.Kind == kind {
			found = append(found, n)
		}
		return true
	})
	return found
}

// Equal reports whether two values are structurally identical: kind, flags,
// lineno, declaration attributes and every child
func Equal(a, b Value) bool {
	if IsAbsent(a) || IsAbsent(b) {
		return IsAbsent(a) && IsAbsent(b)
	}
	switch x := a.(type) {
	case String:
		y, ok := b.(String)
		return ok && x == y
	case Int:
		y, ok := b.(Int)
		return ok && x == y
	case Float:
		y, ok := b.(Float)
		return ok && (x == y || (math.IsNaN(float64(x)) && math.IsNaN(float64(y))))
	case *Node:
		y, ok := b.(*Node)
		if !ok || x.Kind != y.Kind || x.Flags != y.Flags || x.Lineno != y.Lineno {
			return false
		}
		if (x.decl == nil) != (y.decl == nil) || (x.decl != nil && *x.decl != *y.decl) {
			return false
		}
		if len(x.children) != len(y.children) {
			return false
		}
		for i := range x.children {
			if x.children[i].Name != y.children[i].Name || !Equal(x.children[i].Value, y.children[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}
