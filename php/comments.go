package php

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// docComment returns the last documentation comment in the run of comments
// directly preceding node, empty when there is none
func docComment(ctx *ConversionContext, node *tree_sitter.Node) string {
	for prev := node.PrevSibling(); prev != nil && prev.Kind() == "comment"; prev = prev.PrevSibling() {
		if body := text(ctx, prev); isDocComment(body) {
			return body
		}
	}
	return ""
}

// isDocComment reports whether a comment is a /** block, which needs
// whitespace after the opening "/**" ("/**/" and "/***/" are ordinary)
func isDocComment(comment string) bool {
	if !strings.HasPrefix(comment, "/**") || len(comment) < len("/** */") {
		return false
	}
	switch comment[3] {
	case ' ', '\t', '\n', '\r':
		return true
	}
	return false
}
