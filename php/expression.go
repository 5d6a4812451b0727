package php

import (
	"strings"

	"github.com/heshanpadmasiri/phpast/phpast"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

func convertFunctionCall(ctx *ConversionContext, node *tree_sitter.Node, line int) phpast.Value {
	callee := field(node, "function")
	argsNode := field(node, "arguments")
	if callee == nil {
		return nil
	}
	if callee.Kind() == "name" {
		switch strings.ToLower(text(ctx, callee)) {
		case "isset":
			return convertIsset(ctx, argsNode)
		case "empty":
			return languageConstruct(ctx, argsNode, phpast.KindEmpty, 0, line, true)
		case "eval":
			return languageConstruct(ctx, argsNode, phpast.KindIncludeOrEval, phpast.ExecEval, line, true)
		case "exit", "die":
			return languageConstruct(ctx, argsNode, phpast.KindExit, 0, line, false)
		}
	}
	var fn phpast.Value
	switch callee.Kind() {
	case "name", "qualified_name":
		fn = nameNode(ctx, callee)
	default:
		fn = convertExpr(ctx, callee)
	}
	args := convertArgumentList(ctx, argsNode, line)
	if anyAbsent(fn, args) {
		return nil
	}
	return phpast.NewNode(phpast.KindCall, 0, line, fn, args)
}

// argumentValues converts the arguments of a call. It fails when one of
// them converts to nothing, so that the call is dropped as a whole.
func argumentValues(ctx *ConversionContext, args *tree_sitter.Node) ([]phpast.Value, bool) {
	if args == nil {
		return nil, true
	}
	return convertAll(ctx, namedChildren(args))
}

// convertAll converts every node, failing when one of them yields nothing
func convertAll(ctx *ConversionContext, nodes []*tree_sitter.Node) ([]phpast.Value, bool) {
	var values []phpast.Value
	for _, n := range nodes {
		converted := ConvertNode(ctx, n)
		if len(converted) == 0 {
			return nil, false
		}
		values = append(values, converted...)
	}
	return values, true
}

func languageConstruct(ctx *ConversionContext, args *tree_sitter.Node, kind phpast.Kind, flags phpast.Flags, line int, required bool) phpast.Value {
	values, ok := argumentValues(ctx, args)
	if !ok {
		return nil
	}
	var v phpast.Value
	if len(values) > 0 {
		v = values[0]
	} else if required {
		if v = ctx.incompleteExpr(line); phpast.IsAbsent(v) {
			return nil
		}
	}
	return phpast.NewNode(kind, flags, line, v)
}

// convertIsset turns isset($a, $b, $c) into a left associative chain of
// boolean and over single argument AST_ISSET nodes
func convertIsset(ctx *ConversionContext, args *tree_sitter.Node) phpast.Value {
	var chain phpast.Value
	for _, arg := range namedChildren(args) {
		v := convertExpr(ctx, arg)
		if phpast.IsAbsent(v) {
			return nil
		}
		check := phpast.NewNode(phpast.KindIsset, 0, startLine(arg), v)
		if chain == nil {
			chain = check
			continue
		}
		chain = phpast.NewNode(phpast.KindBinaryOp, phpast.BinaryBoolAnd, lineOf(chain, check.Lineno), chain, check)
	}
	return chain
}

func convertArguments(ctx *ConversionContext, node *tree_sitter.Node, line int) phpast.Value {
	return convertArgumentList(ctx, node, line)
}

// convertArgumentList builds an AST_ARG_LIST; a missing argument list is
// empty and an incomplete one is nil
func convertArgumentList(ctx *ConversionContext, node *tree_sitter.Node, line int) *phpast.Node {
	if node == nil {
		return phpast.NewList(phpast.KindArgList, 0, line, nil)
	}
	values, ok := argumentValues(ctx, node)
	if !ok {
		return nil
	}
	return phpast.NewList(phpast.KindArgList, 0, startLine(node), values)
}

// convertArgument unwraps an argument to its value. Named arguments have no
// php-ast v40 shape.
func convertArgument(ctx *ConversionContext, node *tree_sitter.Node, line int) []phpast.Value {
	if field(node, "name") != nil {
		return single(ctx.unhandled(node, line))
	}
	children := namedChildren(node)
	for i := len(children) - 1; i >= 0; i-- {
		if children[i].Kind() != "reference_modifier" {
			return ConvertNode(ctx, children[i])
		}
	}
	return nil
}

func convertUnpack(ctx *ConversionContext, node *tree_sitter.Node, line int) phpast.Value {
	v := operand(ctx, firstNamedChild(node), line)
	if anyAbsent(v) {
		return nil
	}
	return phpast.NewNode(phpast.KindUnpack, 0, line, v)
}

func convertByRef(ctx *ConversionContext, node *tree_sitter.Node, line int) phpast.Value {
	v := convertExpr(ctx, firstNamedChild(node))
	if anyAbsent(v) {
		return nil
	}
	return phpast.NewNode(phpast.KindRef, 0, line, v)
}

// memberName converts the name after -> or :: of a method call or property
// fetch: a plain identifier is a string, {expr} and $var are expressions
func memberName(ctx *ConversionContext, node *tree_sitter.Node) phpast.Value {
	name := field(node, "name")
	if name == nil {
		return ctx.placeholderName(IncompleteProperty)
	}
	if name.Kind() == "name" && !braced(name) {
		return phpast.String(text(ctx, name))
	}
	return convertExpr(ctx, name)
}

// braced reports whether node is wrapped in { } by its parent
func braced(node *tree_sitter.Node) bool {
	prev := node.PrevSibling()
	return prev != nil && !prev.IsNamed() && prev.Kind() == "{"
}

func convertMethodCall(ctx *ConversionContext, node *tree_sitter.Node, line int) phpast.Value {
	object := operand(ctx, field(node, "object"), line)
	method := memberName(ctx, node)
	args := convertArgumentList(ctx, field(node, "arguments"), line)
	if anyAbsent(object, method, args) {
		return nil
	}
	return phpast.NewNode(phpast.KindMethodCall, 0, line, object, method, args)
}

func convertStaticCall(ctx *ConversionContext, node *tree_sitter.Node, line int) phpast.Value {
	class := classReference(ctx, field(node, "scope"), line)
	method := memberName(ctx, node)
	args := convertArgumentList(ctx, field(node, "arguments"), line)
	if anyAbsent(class, method, args) {
		return nil
	}
	return phpast.NewNode(phpast.KindStaticCall, 0, line, class, method, args)
}

func convertPropertyAccess(ctx *ConversionContext, node *tree_sitter.Node, line int) phpast.Value {
	object := operand(ctx, field(node, "object"), line)
	if anyAbsent(object) {
		return nil
	}
	prop := memberName(ctx, node)
	if anyAbsent(prop) {
		return nil
	}
	return phpast.NewNode(phpast.KindProp, 0, line, object, prop)
}

func convertStaticPropertyAccess(ctx *ConversionContext, node *tree_sitter.Node, line int) phpast.Value {
	class := classReference(ctx, field(node, "scope"), line)
	var prop phpast.Value
	if name := field(node, "name"); name != nil {
		prop = simpleVariable(ctx, name)
	} else {
		prop = ctx.placeholderName(IncompleteProperty)
	}
	if anyAbsent(class, prop) {
		return nil
	}
	return phpast.NewNode(phpast.KindStaticProp, 0, line, class, prop)
}

// convertClassConstantAccess handles Scope::NAME. Scope::class stays a
// class constant fetch named "class".
func convertClassConstantAccess(ctx *ConversionContext, node *tree_sitter.Node, line int) phpast.Value {
	children := namedChildren(node)
	if len(children) == 0 {
		return nil
	}
	class := classReference(ctx, children[0], line)
	var constant phpast.Value
	if len(children) < 2 || children[1].IsMissing() {
		constant = ctx.placeholderName(IncompleteClassConst)
	} else if c := children[1]; c.Kind() == "name" && !braced(c) {
		constant = phpast.String(text(ctx, c))
	} else {
		constant = convertExpr(ctx, c)
	}
	if anyAbsent(class, constant) {
		return nil
	}
	return phpast.NewNode(phpast.KindClassConst, 0, line, class, constant)
}

// convertSubscript leaves dim absent for the append form $a[]
func convertSubscript(ctx *ConversionContext, node *tree_sitter.Node, line int) phpast.Value {
	children := namedChildren(node)
	if len(children) == 0 {
		return nil
	}
	base := operand(ctx, children[0], line)
	if anyAbsent(base) {
		return nil
	}
	var dim phpast.Value
	if len(children) > 1 {
		dim = convertExpr(ctx, children[1])
	}
	return phpast.NewNode(phpast.KindDim, 0, line, base, dim)
}

// convertNew builds AST_NEW. An anonymous class becomes the class operand
// and lends its constructor arguments to the new expression.
func convertNew(ctx *ConversionContext, node *tree_sitter.Node, line int) phpast.Value {
	children := namedChildren(node)
	if len(children) == 0 {
		return nil
	}
	target := children[0]
	if target.Kind() == "anonymous_class" {
		class := convertAnonymousClass(ctx, target, startLine(target))
		args := convertArgumentList(ctx, firstChildOfKind(target, "arguments"), endLine(target))
		if anyAbsent(class, args) {
			return nil
		}
		return phpast.NewNode(phpast.KindNew, 0, line, class, args)
	}
	class := classReference(ctx, target, line)
	if anyAbsent(class) {
		return nil
	}
	var args *phpast.Node
	if len(children) > 1 && children[1].Kind() == "arguments" {
		args = convertArgumentList(ctx, children[1], line)
	} else {
		args = phpast.NewList(phpast.KindArgList, 0, endLine(node), nil)
	}
	if anyAbsent(args) {
		return nil
	}
	return phpast.NewNode(phpast.KindNew, 0, line, class, args)
}

// firstChildOfKind returns the first named child with the given kind, nil
// when there is none
func firstChildOfKind(node *tree_sitter.Node, kind string) *tree_sitter.Node {
	if children := namedChildrenOfKind(node, kind); len(children) > 0 {
		return children[0]
	}
	return nil
}

func convertArrayCreation(ctx *ConversionContext, node *tree_sitter.Node, line int) phpast.Value {
	flags := phpast.ArraySyntaxShort
	if hasChildToken(node, "array") {
		flags = phpast.ArraySyntaxLong
	}
	elems, ok := convertAll(ctx, namedChildren(node))
	if !ok {
		return nil
	}
	return phpast.NewList(phpast.KindArray, flags, line, elems)
}

func convertArrayElement(ctx *ConversionContext, node *tree_sitter.Node, line int) phpast.Value {
	if unpack := firstNamedChild(node); unpack != nil && unpack.Kind() == "variadic_unpacking" {
		return convertExpr(ctx, unpack)
	}
	key, value := splitPair(node)
	return arrayElement(ctx, key, value, line)
}

// arrayElement builds AST_ARRAY_ELEM. A by-reference value is flagged on
// the element instead of being wrapped.
func arrayElement(ctx *ConversionContext, key, value *tree_sitter.Node, line int) phpast.Value {
	var flags phpast.Flags
	if value != nil && value.Kind() == "by_ref" {
		flags = phpast.ArrayElemRef
		value = firstNamedChild(value)
	}
	v := operand(ctx, value, line)
	if anyAbsent(v) {
		return nil
	}
	var k phpast.Value
	if key != nil {
		if k = operand(ctx, key, line); anyAbsent(k) {
			return nil
		}
	}
	return phpast.NewNode(phpast.KindArrayElem, flags, line, v, k)
}

// convertListLiteral converts list() and [] destructuring. Skipped slots
// stay in place as absent elements; trailing ones are dropped.
func convertListLiteral(ctx *ConversionContext, node *tree_sitter.Node, line int) phpast.Value {
	flags := phpast.ArraySyntaxShort
	if hasChildToken(node, "list") {
		flags = phpast.ArraySyntaxList
	}
	var elems []phpast.Value
	var current []*tree_sitter.Node
	arrow := false
	emit := func() {
		switch {
		case len(current) == 0:
			elems = append(elems, nil)
		case arrow && len(current) > 1:
			elems = append(elems, arrayElement(ctx, current[0], current[len(current)-1], startLine(current[0])))
		default:
			elems = append(elems, arrayElement(ctx, nil, current[len(current)-1], startLine(current[0])))
		}
		current = nil
		arrow = false
	}
	IterateChildren(node, func(child *tree_sitter.Node) {
		switch {
		case child.IsExtra():
		case child.IsNamed():
			current = append(current, child)
		case child.Kind() == ",":
			emit()
		case child.Kind() == "=>":
			arrow = true
		}
	})
	if len(current) > 0 {
		emit()
	}
	for len(elems) > 0 && phpast.IsAbsent(elems[len(elems)-1]) {
		elems = elems[:len(elems)-1]
	}
	return phpast.NewList(phpast.KindArray, flags, line, elems)
}
