package phpast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func variable(name string, line int) *Node {
	return NewNode(KindVar, 0, line, String(name))
}

func TestNewNodeFillsSlotsInOrder(t *testing.T) {
	n := NewNode(KindAssign, 0, 3, variable("a", 3), Int(1))

	assert.Equal(t, KindAssign, n.Kind)
	assert.Equal(t, 3, n.Lineno)
	require.Equal(t, 2, n.Len())
	children := n.Children()
	assert.Equal(t, "var", children[0].Name)
	assert.Equal(t, "expr", children[1].Name)
	assert.Equal(t, Int(1), n.Child("expr"))
	assert.Equal(t, "a", string(n.ChildNode("var").Child("name").(String)))
	assert.Nil(t, n.Child("missing"))
}

func TestNewNodeRejectsWrongArity(t *testing.T) {
	assert.Panics(t, func() { NewNode(KindAssign, 0, 1, variable("a", 1)) })
	assert.Panics(t, func() { NewNode(KindStmtList, 0, 1) })
}

func TestNewListKeepsHoles(t *testing.T) {
	var hole *Node
	list := NewList(KindArray, ArraySyntaxList, 1, []Value{nil, variable("b", 1), hole})

	require.Equal(t, 3, list.Len())
	assert.True(t, list.IsList())
	assert.Nil(t, list.Elem(0))
	assert.NotNil(t, list.ElemNode(1))
	assert.Nil(t, list.Elem(2), "typed nil is stored as absent")
	assert.Panics(t, func() { NewList(KindAssign, 0, 1, nil) })
}

func TestIsAbsent(t *testing.T) {
	var typed *Node
	assert.True(t, IsAbsent(nil))
	assert.True(t, IsAbsent(typed))
	assert.False(t, IsAbsent(String("")))
	assert.False(t, IsAbsent(Int(0)))
}

func TestDeclAttributes(t *testing.T) {
	fn := NewDecl(KindFuncDecl, FuncReturnsRef, 2, Decl{Name: "f", EndLineno: 4, DocComment: "/** f */"},
		NewList(KindParamList, 0, 2, nil), nil, NewList(KindStmtList, 0, 4, nil), nil)

	decl, ok := fn.Decl()
	require.True(t, ok)
	assert.Equal(t, "f", fn.Name())
	assert.Equal(t, 4, decl.EndLineno)
	assert.Equal(t, "/** f */", decl.DocComment)

	_, ok = variable("a", 1).Decl()
	assert.False(t, ok)
	assert.Empty(t, variable("a", 1).Name())
	assert.Panics(t, func() { NewDecl(KindVar, 0, 1, Decl{}, String("a")) })
}

func TestWalkAndFind(t *testing.T) {
	tree := NewList(KindStmtList, 0, 1, []Value{
		NewNode(KindAssign, 0, 1, variable("a", 1), variable("b", 1)),
		NewNode(KindEcho, 0, 2, variable("c", 2)),
	})

	vars := Find(tree, KindVar)
	require.Len(t, vars, 3)
	assert.Equal(t, String("c"), vars[2].Child("name"))

	visited := 0
	Walk(tree, func(n *Node) bool {
		visited++
		return n.Kind != KindAssign
	})
	assert.Equal(t, 4, visited, "children of the assignment are skipped")
}

func TestEqual(t *testing.T) {
	a := NewNode(KindBinaryOp, BinaryAdd, 1, variable("a", 1), Int(2))
	b := NewNode(KindBinaryOp, BinaryAdd, 1, variable("a", 1), Int(2))

	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, NewNode(KindBinaryOp, BinarySub, 1, variable("a", 1), Int(2))))
	assert.False(t, Equal(a, NewNode(KindBinaryOp, BinaryAdd, 2, variable("a", 1), Int(2))))
	assert.False(t, Equal(a, NewNode(KindBinaryOp, BinaryAdd, 1, variable("a", 1), Float(2))))
	assert.True(t, Equal(nil, (*Node)(nil)))
	assert.False(t, Equal(a, nil))

	f1 := NewDecl(KindClass, 0, 1, Decl{Name: "A", EndLineno: 2}, nil, nil, nil)
	f2 := NewDecl(KindClass, 0, 1, Decl{Name: "B", EndLineno: 2}, nil, nil, nil)
	assert.False(t, Equal(f1, f2))
}

func TestNewUnhandled(t *testing.T) {
	stub := NewUnhandled("match_expression", 7)
	assert.Equal(t, KindUnhandled, stub.Kind)
	assert.Equal(t, 7, stub.Lineno)
	assert.Equal(t, String("match_expression"), stub.Child("kind"))
}
