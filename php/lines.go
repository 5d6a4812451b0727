package php

import (
	"github.com/heshanpadmasiri/phpast/phpast"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// startLine returns the 1-based line a node starts on
func startLine(node *tree_sitter.Node) int {
	return int(node.StartPosition().Row) + 1
}

// endLine returns the 1-based line a node ends on
func endLine(node *tree_sitter.Node) int {
	return int(node.EndPosition().Row) + 1
}

// lineOrFallback returns the start line of node, or fallback when node is nil
func lineOrFallback(node *tree_sitter.Node, fallback int) int {
	if node == nil {
		return fallback
	}
	return startLine(node)
}

// lineOf returns the line of a converted value. Scalars and absent values
// carry no position and resolve to fallback.
func lineOf(v phpast.Value, fallback int) int {
	if n, ok := v.(*phpast.Node); ok && n != nil && n.Lineno > 0 {
		return n.Lineno
	}
	return fallback
}

// firstLine returns the line of the first value that has one
func firstLine(values []phpast.Value, fallback int) int {
	for _, v := range values {
		if n, ok := v.(*phpast.Node); ok && n != nil && n.Lineno > 0 {
			return n.Lineno
		}
	}
	return fallback
}
