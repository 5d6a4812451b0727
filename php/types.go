package php

import (
	"strings"

	"github.com/heshanpadmasiri/phpast/phpast"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// builtinTypes are the type names with a TYPE_* flag. Any other name in a
// type position is a class reference.
var builtinTypes = map[string]phpast.Flags{
	"null":     phpast.TypeNull,
	"bool":     phpast.TypeBool,
	"int":      phpast.TypeLong,
	"float":    phpast.TypeDouble,
	"string":   phpast.TypeString,
	"array":    phpast.TypeArray,
	"object":   phpast.TypeObject,
	"callable": phpast.TypeCallable,
	"void":     phpast.TypeVoid,
	"iterable": phpast.TypeIterable,
}

func convertType(ctx *ConversionContext, node *tree_sitter.Node, line int) phpast.Value {
	switch node.Kind() {
	case "optional_type":
		inner := firstNamedChild(node)
		if inner == nil {
			return nil
		}
		t := convertExpr(ctx, inner)
		if phpast.IsAbsent(t) {
			return nil
		}
		return phpast.NewNode(phpast.KindNullableType, 0, line, t)
	case "named_type":
		inner := firstNamedChild(node)
		if inner == nil {
			return nil
		}
		return builtinOrClass(ctx, inner)
	}
	return builtinOrClass(ctx, node)
}

// builtinOrClass maps an unqualified builtin name, in any case, to AST_TYPE
// and everything else to AST_NAME
func builtinOrClass(ctx *ConversionContext, node *tree_sitter.Node) phpast.Value {
	name := text(ctx, node)
	if flag, ok := builtinTypes[strings.ToLower(name)]; ok {
		return phpast.NewNode(phpast.KindType, flag, startLine(node))
	}
	return nameNode(ctx, node)
}

// typeAnnotation converts an optional parameter, return or property type
func typeAnnotation(ctx *ConversionContext, node *tree_sitter.Node) phpast.Value {
	if node == nil {
		return nil
	}
	return convertExpr(ctx, node)
}

// classReference converts the class operand of new, instanceof, :: and
// the name lists of declarations. Written names become AST_NAME, anything
// dynamic is an ordinary expression.
func classReference(ctx *ConversionContext, node *tree_sitter.Node, line int) phpast.Value {
	if node == nil {
		return nil
	}
	switch node.Kind() {
	case "name", "qualified_name", "relative_scope", "namespace_name":
		return nameNode(ctx, node)
	case "named_type":
		return classReference(ctx, firstNamedChild(node), line)
	}
	return convertExpr(ctx, node)
}

// nameList builds an AST_NAME_LIST from the named children of a clause
func nameList(ctx *ConversionContext, clause *tree_sitter.Node) *phpast.Node {
	var names []phpast.Value
	for _, child := range namedChildren(clause) {
		if name := classReference(ctx, child, startLine(child)); !phpast.IsAbsent(name) {
			names = append(names, name)
		}
	}
	return phpast.NewList(phpast.KindNameList, 0, firstLine(names, startLine(clause)), names)
}
