package php

import (
	"strings"

	"github.com/heshanpadmasiri/phpast/phpast"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

var visibilityFlags = map[string]phpast.Flags{
	"public":    phpast.ModifierPublic,
	"protected": phpast.ModifierProtected,
	"private":   phpast.ModifierPrivate,
}

// visibility returns the flag of a visibility_modifier
func visibility(ctx *ConversionContext, node *tree_sitter.Node) phpast.Flags {
	if node.ChildCount() == 0 {
		return 0
	}
	return visibilityFlags[strings.ToLower(text(ctx, node.Child(0)))]
}

// memberModifiers collects the modifier flags of a class member. Members
// without a visibility keyword, and var properties, are public.
func memberModifiers(ctx *ConversionContext, node *tree_sitter.Node) phpast.Flags {
	var flags, vis phpast.Flags
	for _, child := range namedChildren(node) {
		switch child.Kind() {
		case "visibility_modifier":
			vis |= visibility(ctx, child)
		case "var_modifier":
			vis |= phpast.ModifierPublic
		case "static_modifier":
			flags |= phpast.ModifierStatic
		case "abstract_modifier":
			flags |= phpast.ModifierAbstract
		case "final_modifier":
			flags |= phpast.ModifierFinal
		}
	}
	if vis == 0 {
		vis = phpast.ModifierPublic
	}
	return flags | vis
}

func classModifiers(node *tree_sitter.Node) phpast.Flags {
	var flags phpast.Flags
	for _, child := range namedChildren(node) {
		switch child.Kind() {
		case "abstract_modifier":
			flags |= phpast.ClassAbstract
		case "final_modifier":
			flags |= phpast.ClassFinal
		}
	}
	return flags
}

// scopeKinds start a new function or class scope
var scopeKinds = map[string]bool{
	"function_definition": true,
	"method_declaration":  true,
	"anonymous_function":  true,
	"arrow_function":      true,
	"class_declaration":   true,
	"anonymous_class":     true,
}

// containsYield reports whether a function body yields, without looking
// into nested functions and classes
func containsYield(node *tree_sitter.Node) bool {
	if node == nil {
		return false
	}
	if node.Kind() == "yield_expression" {
		return true
	}
	found := false
	IterateChildrenWhile(node, func(child *tree_sitter.Node) bool {
		if !scopeKinds[child.Kind()] && containsYield(child) {
			found = true
		}
		return !found
	})
	return found
}

// functionFlags returns the by-reference and generator flags shared by all
// function-like declarations
func functionFlags(node, body *tree_sitter.Node) phpast.Flags {
	var flags phpast.Flags
	if firstChildOfKind(node, "reference_modifier") != nil {
		flags |= phpast.FuncReturnsRef
	}
	if containsYield(body) {
		flags |= phpast.FuncGenerator
	}
	return flags
}

// parameterList converts formal_parameters into an AST_PARAM_LIST, nil
// when a parameter is incomplete
func parameterList(ctx *ConversionContext, node *tree_sitter.Node, line int) *phpast.Node {
	if node == nil {
		return phpast.NewList(phpast.KindParamList, 0, line, nil)
	}
	var params []phpast.Value
	for _, p := range namedChildren(node) {
		param := convertParameter(ctx, p)
		if phpast.IsAbsent(param) {
			return nil
		}
		params = append(params, param)
	}
	return phpast.NewList(phpast.KindParamList, 0, startLine(node), params)
}

func convertParameter(ctx *ConversionContext, node *tree_sitter.Node) phpast.Value {
	line := startLine(node)
	var flags phpast.Flags
	switch node.Kind() {
	case "simple_parameter":
	case "variadic_parameter":
		flags |= phpast.ParamVariadic
	default:
		return convertExpr(ctx, node)
	}
	if node.ChildByFieldName("reference_modifier") != nil {
		flags |= phpast.ParamRef
	}
	var name phpast.Value
	if n := field(node, "name"); n != nil {
		name = simpleVariable(ctx, n)
	} else {
		name = ctx.placeholderName(IncompleteVariable)
	}
	if phpast.IsAbsent(name) {
		return nil
	}
	var def phpast.Value
	if d := field(node, "default_value"); d != nil {
		if def = convertExpr(ctx, d); phpast.IsAbsent(def) {
			return nil
		}
	}
	return phpast.NewNode(phpast.KindParam, flags, line, typeAnnotation(ctx, field(node, "type")), name, def)
}

func returnType(ctx *ConversionContext, node *tree_sitter.Node) phpast.Value {
	return typeAnnotation(ctx, field(node, "return_type"))
}

// functionBody converts a braced body, absent for abstract and interface
// methods
func functionBody(ctx *ConversionContext, body *tree_sitter.Node) phpast.Value {
	if body == nil {
		return nil
	}
	return convertStatements(ctx, statementChildren(body), endLine(body))
}

func convertFunctionDefinition(ctx *ConversionContext, node *tree_sitter.Node, line int) []phpast.Value {
	name := field(node, "name")
	if name == nil {
		return nil
	}
	params := parameterList(ctx, field(node, "parameters"), line)
	if params == nil {
		return nil
	}
	body := field(node, "body")
	decl := phpast.Decl{Name: text(ctx, name), EndLineno: endLine(node), DocComment: docComment(ctx, node)}
	return single(phpast.NewDecl(phpast.KindFuncDecl, functionFlags(node, body), line, decl,
		params,
		nil,
		functionBody(ctx, body),
		returnType(ctx, node),
	))
}

func convertMethod(ctx *ConversionContext, node *tree_sitter.Node, line int) []phpast.Value {
	name := field(node, "name")
	if name == nil {
		return nil
	}
	params := parameterList(ctx, field(node, "parameters"), line)
	if params == nil {
		return nil
	}
	body := field(node, "body")
	flags := memberModifiers(ctx, node) | functionFlags(node, body)
	decl := phpast.Decl{Name: text(ctx, name), EndLineno: endLine(node), DocComment: docComment(ctx, node)}
	return single(phpast.NewDecl(phpast.KindMethod, flags, line, decl,
		params,
		nil,
		functionBody(ctx, body),
		returnType(ctx, node),
	))
}

// closureUses converts the use (...) clause of a closure, absent when there
// is none. It fails when one of the variables is incomplete.
func closureUses(ctx *ConversionContext, node *tree_sitter.Node) (phpast.Value, bool) {
	clause := firstChildOfKind(node, "anonymous_function_use_clause")
	if clause == nil {
		return nil, true
	}
	var vars []phpast.Value
	for _, child := range namedChildren(clause) {
		var flags phpast.Flags
		v := child
		if child.Kind() == "by_ref" {
			flags = phpast.ClosureUseRef
			if v = firstNamedChild(child); v == nil {
				return nil, false
			}
		}
		name := simpleVariable(ctx, v)
		if phpast.IsAbsent(name) {
			return nil, false
		}
		vars = append(vars, phpast.NewNode(phpast.KindClosureVar, flags, startLine(child), name))
	}
	return phpast.NewList(phpast.KindClosureUses, 0, startLine(clause), vars), true
}

func closureFlags(node, body *tree_sitter.Node) phpast.Flags {
	flags := functionFlags(node, body)
	if node.ChildByFieldName("static_modifier") != nil {
		flags |= phpast.ModifierStatic
	}
	return flags
}

func convertClosure(ctx *ConversionContext, node *tree_sitter.Node, line int) phpast.Value {
	params := parameterList(ctx, field(node, "parameters"), line)
	uses, ok := closureUses(ctx, node)
	if params == nil || !ok {
		return nil
	}
	body := field(node, "body")
	decl := phpast.Decl{Name: phpast.ClosureName, EndLineno: endLine(node), DocComment: docComment(ctx, node)}
	return phpast.NewDecl(phpast.KindClosure, closureFlags(node, body), line, decl,
		params,
		uses,
		functionBody(ctx, body),
		returnType(ctx, node),
	)
}

// convertArrowFunction wraps the expression body in an implicit return
func convertArrowFunction(ctx *ConversionContext, node *tree_sitter.Node, line int) phpast.Value {
	body := field(node, "body")
	var stmts phpast.Value
	if body != nil {
		bodyLine := startLine(body)
		if v := operand(ctx, body, bodyLine); !phpast.IsAbsent(v) {
			stmts = phpast.NewNode(phpast.KindReturn, 0, bodyLine, v)
		}
	}
	params := parameterList(ctx, field(node, "parameters"), line)
	if params == nil {
		return nil
	}
	decl := phpast.Decl{Name: phpast.ClosureName, EndLineno: endLine(node), DocComment: docComment(ctx, node)}
	return phpast.NewDecl(phpast.KindArrowFunc, closureFlags(node, body), line, decl,
		params,
		nil,
		stmts,
		returnType(ctx, node),
	)
}

// classBody converts a declaration_list into the member statement list
func classBody(ctx *ConversionContext, node *tree_sitter.Node) phpast.Value {
	body := field(node, "body")
	if body == nil {
		return nil
	}
	return convertStatements(ctx, statementChildren(body), endLine(body))
}

func convertDeclarationList(ctx *ConversionContext, node *tree_sitter.Node, _ int) []phpast.Value {
	return single(convertStatements(ctx, statementChildren(node), endLine(node)))
}

// parentClass returns the single name of a class extends clause
func parentClass(ctx *ConversionContext, node *tree_sitter.Node) phpast.Value {
	base := firstChildOfKind(node, "base_clause")
	if base == nil {
		return nil
	}
	names := nameList(ctx, base)
	if names.Len() == 0 {
		return nil
	}
	return names.Elem(0)
}

func interfaces(ctx *ConversionContext, node *tree_sitter.Node, clause string) phpast.Value {
	c := firstChildOfKind(node, clause)
	if c == nil {
		return nil
	}
	return nameList(ctx, c)
}

func convertClassDeclaration(ctx *ConversionContext, node *tree_sitter.Node, line int) []phpast.Value {
	name := field(node, "name")
	if name == nil {
		return nil
	}
	decl := phpast.Decl{Name: text(ctx, name), EndLineno: endLine(node), DocComment: docComment(ctx, node)}
	return single(phpast.NewDecl(phpast.KindClass, classModifiers(node), line, decl,
		parentClass(ctx, node),
		interfaces(ctx, node, "class_interface_clause"),
		classBody(ctx, node),
	))
}

// convertInterfaceDeclaration stores the extended interfaces in the
// implements slot
func convertInterfaceDeclaration(ctx *ConversionContext, node *tree_sitter.Node, line int) []phpast.Value {
	name := field(node, "name")
	if name == nil {
		return nil
	}
	decl := phpast.Decl{Name: text(ctx, name), EndLineno: endLine(node), DocComment: docComment(ctx, node)}
	return single(phpast.NewDecl(phpast.KindClass, phpast.ClassInterface, line, decl,
		nil,
		interfaces(ctx, node, "base_clause"),
		classBody(ctx, node),
	))
}

func convertTraitDeclaration(ctx *ConversionContext, node *tree_sitter.Node, line int) []phpast.Value {
	name := field(node, "name")
	if name == nil {
		return nil
	}
	decl := phpast.Decl{Name: text(ctx, name), EndLineno: endLine(node), DocComment: docComment(ctx, node)}
	return single(phpast.NewDecl(phpast.KindClass, phpast.ClassTrait, line, decl, nil, nil, classBody(ctx, node)))
}

func convertAnonymousClass(ctx *ConversionContext, node *tree_sitter.Node, line int) phpast.Value {
	decl := phpast.Decl{Name: phpast.AnonymousClassName, EndLineno: endLine(node)}
	return phpast.NewDecl(phpast.KindClass, phpast.ClassAnonymous|classModifiers(node), line, decl,
		parentClass(ctx, node),
		interfaces(ctx, node, "class_interface_clause"),
		classBody(ctx, node),
	)
}

// convertPropertyDeclaration drops the declared type, which the v40 format
// has no slot for
func convertPropertyDeclaration(ctx *ConversionContext, node *tree_sitter.Node, line int) []phpast.Value {
	if hooks := firstChildOfKind(node, "property_hook_list"); hooks != nil {
		return single(ctx.unhandled(hooks, line))
	}
	var elems []phpast.Value
	for _, elem := range namedChildrenOfKind(node, "property_element") {
		n := field(elem, "name")
		if n == nil {
			continue
		}
		name := simpleVariable(ctx, n)
		if phpast.IsAbsent(name) {
			continue
		}
		var def phpast.Value
		if d := field(elem, "default_value"); d != nil {
			def = convertExpr(ctx, d)
		}
		elems = append(elems, phpast.NewNode(phpast.KindPropElem, 0, startLine(elem), name, def))
	}
	return single(phpast.NewList(phpast.KindPropDecl, memberModifiers(ctx, node), line, elems))
}

// convertTraitUse builds AST_USE_TRAIT with its optional adaptation block
func convertTraitUse(ctx *ConversionContext, node *tree_sitter.Node, line int) []phpast.Value {
	var names []phpast.Value
	var adaptations phpast.Value
	for _, child := range namedChildren(node) {
		switch child.Kind() {
		case "name", "qualified_name":
			names = append(names, nameNode(ctx, child))
		case "use_list":
			var rules []phpast.Value
			for _, clause := range namedChildren(child) {
				if rule := traitAdaptation(ctx, clause); !phpast.IsAbsent(rule) {
					rules = append(rules, rule)
				}
			}
			adaptations = phpast.NewList(phpast.KindTraitAdaptations, 0, startLine(child), rules)
		}
	}
	traits := phpast.NewList(phpast.KindNameList, 0, firstLine(names, line), names)
	return single(phpast.NewNode(phpast.KindUseTrait, 0, line, traits, adaptations))
}

// methodReference converts Trait::method or a bare method name
func methodReference(ctx *ConversionContext, node *tree_sitter.Node, line int) phpast.Value {
	if node.Kind() != "class_constant_access_expression" {
		return phpast.NewNode(phpast.KindMethodReference, 0, line, nil, phpast.String(text(ctx, node)))
	}
	parts := namedChildren(node)
	if len(parts) < 2 {
		return nil
	}
	return phpast.NewNode(phpast.KindMethodReference, 0, line, nameNode(ctx, parts[0]), phpast.String(text(ctx, parts[1])))
}

func traitAdaptation(ctx *ConversionContext, clause *tree_sitter.Node) phpast.Value {
	line := startLine(clause)
	parts := namedChildren(clause)
	if len(parts) == 0 {
		return convertExpr(ctx, clause)
	}
	switch clause.Kind() {
	case "use_instead_of_clause":
		method := methodReference(ctx, parts[0], line)
		if len(parts) < 2 || anyAbsent(method) {
			return nil
		}
		insteadof := phpast.NewList(phpast.KindNameList, 0, startLine(parts[1]), []phpast.Value{nameNode(ctx, parts[1])})
		return phpast.NewNode(phpast.KindTraitPrecedence, 0, line, method, insteadof)
	case "use_as_clause":
		method := methodReference(ctx, parts[0], line)
		if anyAbsent(method) {
			return nil
		}
		var flags phpast.Flags
		var alias phpast.Value
		for _, part := range parts[1:] {
			switch part.Kind() {
			case "visibility_modifier":
				flags = visibility(ctx, part)
			case "name":
				alias = phpast.String(text(ctx, part))
			}
		}
		return phpast.NewNode(phpast.KindTraitAlias, flags, line, method, alias)
	}
	return convertExpr(ctx, clause)
}
