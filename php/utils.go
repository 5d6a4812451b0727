package php

import (
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
)

// Language returns the tree-sitter PHP language
func Language() *tree_sitter.Language {
	return tree_sitter.NewLanguage(tree_sitter_php.LanguagePHP())
}

// ParsePHP parses PHP source code and returns a tree-sitter tree
func ParsePHP(source []byte) *tree_sitter.Tree {
	parser := tree_sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(Language())
	tree := parser.Parse(source, nil)
	return tree
}

// Assert checks a caller contract and panics when it does not hold
func Assert(msg string, condition bool) {
	if condition {
		return
	}
	panic(fmt.Sprintf("assertion failed: %s", msg))
}

// IterateChildren iterates over all children of a node and calls fn for each
func IterateChildren(node *tree_sitter.Node, fn func(child *tree_sitter.Node)) {
	cursor := node.Walk()
	defer cursor.Close()
	children := node.Children(cursor)
	for i := range children {
		fn(&children[i])
	}
}

// IterateChildrenWhile iterates over all children of a node while fn returns true
func IterateChildrenWhile(node *tree_sitter.Node, fn func(child *tree_sitter.Node) bool) {
	cursor := node.Walk()
	defer cursor.Close()
	children := node.Children(cursor)
	for i := range children {
		if !fn(&children[i]) {
			return
		}
	}
}

// namedChildren returns the named children of a node, skipping comments and
// inline HTML that tree-sitter attaches anywhere as extras
func namedChildren(node *tree_sitter.Node) []*tree_sitter.Node {
	var out []*tree_sitter.Node
	IterateChildren(node, func(child *tree_sitter.Node) {
		if child.IsNamed() && !child.IsExtra() {
			out = append(out, child)
		}
	})
	return out
}

// firstNamedChild returns the first named non-extra child, nil when there is none
func firstNamedChild(node *tree_sitter.Node) *tree_sitter.Node {
	var found *tree_sitter.Node
	IterateChildrenWhile(node, func(child *tree_sitter.Node) bool {
		if child.IsNamed() && !child.IsExtra() {
			found = child
			return false
		}
		return true
	})
	return found
}

// namedChildrenOfKind returns the named children with the given kind
func namedChildrenOfKind(node *tree_sitter.Node, kind string) []*tree_sitter.Node {
	var out []*tree_sitter.Node
	for _, child := range namedChildren(node) {
		if child.Kind() == kind {
			out = append(out, child)
		}
	}
	return out
}

// hasChildToken reports whether the node has an anonymous child with the given kind
func hasChildToken(node *tree_sitter.Node, token string) bool {
	found := false
	IterateChildrenWhile(node, func(child *tree_sitter.Node) bool {
		if !child.IsNamed() && child.Kind() == token {
			found = true
			return false
		}
		return true
	})
	return found
}

// field returns the child bound to a field name, nil when absent or when
// the parser only inserted a zero-width placeholder for it
func field(node *tree_sitter.Node, name string) *tree_sitter.Node {
	child := node.ChildByFieldName(name)
	if child == nil || child.IsMissing() {
		return nil
	}
	return child
}

func text(ctx *ConversionContext, node *tree_sitter.Node) string {
	return node.Utf8Text(ctx.Source)
}
