package php

import (
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// RecoveryMarkers counts the parser's error-recovery nodes in a tree
type RecoveryMarkers struct {
	Errors  int // ERROR nodes
	Missing int // zero-width MISSING tokens
}

// Total is the number of markers of either kind
func (m RecoveryMarkers) Total() int {
	return m.Errors + m.Missing
}

// CountRecoveryMarkers finds the ERROR and MISSING nodes of a parsed tree
func CountRecoveryMarkers(tree *tree_sitter.Tree, source []byte) RecoveryMarkers {
	var markers RecoveryMarkers
	root := tree.RootNode()

	query, err := tree_sitter.NewQuery(Language(), "(ERROR) @error")
	if err != nil {
		// This is a programming error - the query syntax is invalid
		panic(fmt.Sprintf("Invalid tree-sitter query: %v", err))
	}
	defer query.Close()

	cursor := tree_sitter.NewQueryCursor()
	defer cursor.Close()

	matches := cursor.Matches(query, root, source)
	for match := matches.Next(); match != nil; match = matches.Next() {
		markers.Errors += len(match.Captures)
	}

	var visit func(node *tree_sitter.Node)
	visit = func(node *tree_sitter.Node) {
		if node.IsMissing() {
			markers.Missing++
		}
		IterateChildren(node, visit)
	}
	visit(root)
	return markers
}
