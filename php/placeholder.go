package php

import (
	"unicode"

	"github.com/heshanpadmasiri/phpast/phpast"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Names substituted for pieces the parser could not recover when
// Options.Placeholders is set
const (
	IncompleteVariable   = "__INCOMPLETE_VARIABLE__"
	IncompleteProperty   = "__INCOMPLETE_PROPERTY__"
	IncompleteClassConst = "__INCOMPLETE_CLASS_CONST__"
	IncompleteExpr       = "__INCOMPLETE_EXPR__"
)

// placeholderName returns name as a string child, nothing when placeholders are off
func (ctx *ConversionContext) placeholderName(name string) phpast.Value {
	if !ctx.Options.Placeholders {
		return nil
	}
	return phpast.String(name)
}

func (ctx *ConversionContext) incompleteVar(line int) phpast.Value {
	if !ctx.Options.Placeholders {
		return nil
	}
	return phpast.NewNode(phpast.KindVar, 0, line, phpast.String(IncompleteVariable))
}

func (ctx *ConversionContext) incompleteExpr(line int) phpast.Value {
	if !ctx.Options.Placeholders {
		return nil
	}
	return phpast.NewNode(phpast.KindConst, 0, line, newName(IncompleteExpr, line))
}

func (ctx *ConversionContext) incompleteProp(object phpast.Value, line int) phpast.Value {
	if !ctx.Options.Placeholders || phpast.IsAbsent(object) {
		return nil
	}
	return phpast.NewNode(phpast.KindProp, 0, lineOf(object, line), object, phpast.String(IncompleteProperty))
}

// incompleteClassConst takes the scope as converted in expression position
// and turns a bare constant back into the class name it stands for
func (ctx *ConversionContext) incompleteClassConst(scope phpast.Value, line int) phpast.Value {
	if !ctx.Options.Placeholders || phpast.IsAbsent(scope) {
		return nil
	}
	if n, ok := scope.(*phpast.Node); ok && n.Kind == phpast.KindConst {
		scope = n.ChildNode("name")
	}
	return phpast.NewNode(phpast.KindClassConst, 0, lineOf(scope, line), scope, phpast.String(IncompleteClassConst))
}

// missingNode converts a zero width node the parser inserted to complete a
// construct
func missingNode(ctx *ConversionContext, node *tree_sitter.Node, line int) phpast.Value {
	ctx.logger.Debug("missing node", "kind", node.Kind(), "line", line)
	if !node.IsNamed() {
		return nil
	}
	switch node.Kind() {
	case "variable_name", "dynamic_variable_name":
		return ctx.incompleteVar(line)
	}
	return ctx.incompleteExpr(line)
}

// salvageKinds are node kinds converted as whole statements when found
// inside an ERROR node
var salvageKinds = map[string]bool{
	"expression_statement":        true,
	"compound_statement":          true,
	"named_label_statement":       true,
	"goto_statement":              true,
	"if_statement":                true,
	"switch_statement":            true,
	"while_statement":             true,
	"do_statement":                true,
	"for_statement":               true,
	"foreach_statement":           true,
	"continue_statement":          true,
	"break_statement":             true,
	"return_statement":            true,
	"try_statement":               true,
	"declare_statement":           true,
	"echo_statement":              true,
	"exit_statement":              true,
	"unset_statement":             true,
	"global_declaration":          true,
	"function_static_declaration": true,
	"const_declaration":           true,
	"namespace_definition":        true,
	"namespace_use_declaration":   true,
	"function_definition":         true,
	"class_declaration":           true,
	"interface_declaration":       true,
	"trait_declaration":           true,
	"method_declaration":          true,
	"property_declaration":        true,
	"use_declaration":             true,
	"text_interpolation":          true,
	"text":                        true,
}

// salvageError rebuilds what it can from an ERROR node, or from a statement
// with one among its children. Complete statements inside it convert
// normally. A trailing fragment such as "$a = $b->" is completed with
// placeholders, or dropped when they are off.
func salvageError(ctx *ConversionContext, node *tree_sitter.Node) []phpast.Value {
	if node.IsError() {
		ctx.report(node, "recovered from parse error")
	}
	ctx.logger.Debug("salvaging parse error", "line", startLine(node), "sexp", node.ToSexp())
	s := &salvager{ctx: ctx}
	IterateChildren(node, s.visit)
	s.flush()
	return s.out
}

type salvageTarget struct {
	value phpast.Value
	line  int
}

// salvager accumulates one expression statement at a time
type salvager struct {
	ctx *ConversionContext
	out []phpast.Value

	targets      []salvageTarget
	operand      phpast.Value
	line         int
	dropped      bool
	afterKeyword bool
}

func (s *salvager) visit(child *tree_sitter.Node) {
	kind := child.Kind()
	switch {
	case child.IsError():
		// nested errors continue the pending fragment
		s.ctx.report(child, "recovered from parse error")
		IterateChildren(child, s.visit)
	case kind == "comment" || kind == "php_tag":
	case child.IsNamed() && salvageKinds[kind]:
		s.flush()
		s.out = append(s.out, ConvertNode(s.ctx, child)...)
	case child.IsNamed():
		if s.afterKeyword || structuralKinds[kind] {
			s.reset()
			return
		}
		if !phpast.IsAbsent(s.operand) {
			s.flush()
		}
		s.operand = convertExpr(s.ctx, child)
		s.line = startLine(child)
	default:
		s.token(child)
	}
}

// token handles an anonymous token of the ERROR node
func (s *salvager) token(tok *tree_sitter.Node) {
	line := startLine(tok)
	kind := tok.Kind()
	switch {
	case kind == ";":
		s.flush()
	case kind == "=":
		if phpast.IsAbsent(s.operand) {
			return
		}
		s.targets = append(s.targets, salvageTarget{value: s.operand, line: s.line})
		s.operand = nil
		s.line = line
	case kind == "->" || kind == "?->":
		if phpast.IsAbsent(s.operand) {
			return
		}
		s.complete(func(v phpast.Value) phpast.Value { return s.ctx.incompleteProp(v, line) })
	case kind == "::":
		if phpast.IsAbsent(s.operand) {
			return
		}
		s.complete(func(v phpast.Value) phpast.Value { return s.ctx.incompleteClassConst(v, line) })
	case kind == "$":
		if !phpast.IsAbsent(s.operand) {
			s.flush()
		}
		s.line = line
		s.complete(func(phpast.Value) phpast.Value { return s.ctx.incompleteVar(line) })
	case binaryOperators[kind] != 0:
		// an operator without its right operand leaves the left one
	case isKeyword(kind):
		s.reset()
		s.afterKeyword = true
	default:
		s.flush()
	}
}

// complete replaces the right-most operand of the pending fragment with a
// placeholder built around it
func (s *salvager) complete(build func(phpast.Value) phpast.Value) {
	if !s.ctx.Options.Placeholders {
		s.dropped = true
		return
	}
	s.operand = completeTrailing(s.operand, build)
}

// completeTrailing descends the right spine of assignment and binary
// operator chains and applies build to the operand it ends on
func completeTrailing(v phpast.Value, build func(phpast.Value) phpast.Value) phpast.Value {
	n, ok := v.(*phpast.Node)
	if ok && n != nil {
		switch n.Kind {
		case phpast.KindAssign, phpast.KindAssignRef, phpast.KindAssignOp:
			return phpast.NewNode(n.Kind, n.Flags, n.Lineno, n.Child("var"), completeTrailing(n.Child("expr"), build))
		case phpast.KindBinaryOp:
			return phpast.NewNode(n.Kind, n.Flags, n.Lineno, n.Child("left"), completeTrailing(n.Child("right"), build))
		}
	}
	return build(v)
}

// flush emits the pending fragment as a statement
func (s *salvager) flush() {
	defer s.reset()
	if s.dropped {
		s.ctx.logger.Debug("dropped incomplete fragment", "line", s.line)
		return
	}
	value := s.operand
	if len(s.targets) > 0 && phpast.IsAbsent(value) {
		value = s.ctx.incompleteExpr(s.line)
	}
	if phpast.IsAbsent(value) {
		return
	}
	for i := len(s.targets) - 1; i >= 0; i-- {
		t := s.targets[i]
		value = phpast.NewNode(phpast.KindAssign, 0, t.line, t.value, value)
	}
	s.out = append(s.out, value)
}

func (s *salvager) reset() {
	s.targets = nil
	s.operand = nil
	s.dropped = false
	s.afterKeyword = false
}

// splitAtError undoes a missing semicolon between two statements. The parser
// reads "$a = 1 <newline> foo();" as an assignment whose right side is the
// next statement, with the end of the first one in an ERROR node before it.
func splitAtError(ctx *ConversionContext, node *tree_sitter.Node) ([]phpast.Value, bool) {
	if node.Kind() != "assignment_expression" {
		return nil, false
	}
	left, right := field(node, "left"), field(node, "right")
	if left == nil || right == nil {
		return nil, false
	}
	var broken *tree_sitter.Node
	IterateChildren(node, func(child *tree_sitter.Node) {
		if child.IsError() && child.StartByte() < right.StartByte() {
			broken = child
		}
	})
	if broken == nil {
		return nil, false
	}

	line := startLine(node)
	var out []phpast.Value
	var value phpast.Value
	if pieces := salvageError(ctx, broken); len(pieces) > 0 {
		out = append(out, pieces[:len(pieces)-1]...)
		value = pieces[len(pieces)-1]
	} else {
		value = ctx.incompleteExpr(line)
	}
	if target := convertExpr(ctx, left); !anyAbsent(target, value) {
		out = append(out, phpast.NewNode(phpast.KindAssign, 0, line, target, value))
	}
	return append(out, convertSplitting(ctx, right)...), true
}

// convertSplitting converts an expression statement's expression, splitting
// it where semicolons are missing
func convertSplitting(ctx *ConversionContext, node *tree_sitter.Node) []phpast.Value {
	if values, ok := splitAtError(ctx, node); ok {
		return values
	}
	return ConvertNode(ctx, node)
}

// hasErrorChild reports whether one of the direct children of node is an
// ERROR node
func hasErrorChild(node *tree_sitter.Node) bool {
	found := false
	IterateChildrenWhile(node, func(child *tree_sitter.Node) bool {
		found = child.IsError()
		return !found
	})
	return found
}

func isKeyword(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if !unicode.IsLetter(r) && r != '_' {
			return false
		}
	}
	return true
}
