package php

import (
	"sort"

	"github.com/heshanpadmasiri/phpast/phpast"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// converter turns one source node into zero, one or several target values.
// line is the node's resolved start line.
type converter func(ctx *ConversionContext, node *tree_sitter.Node, line int) []phpast.Value

// dispatchTable maps a tree-sitter node kind to its converter. It is filled
// once in init and only read afterwards.
var dispatchTable map[string]converter

// unsupportedKinds are grammar constructs with no php-ast v40 shape. They are
// deliberately absent from dispatchTable and degrade to AST_UNHANDLED.
var unsupportedKinds = map[string]bool{
	"match_expression":                  true,
	"match_block":                       true,
	"match_condition_list":              true,
	"match_conditional_expression":      true,
	"match_default_expression":          true,
	"nullsafe_member_access_expression": true,
	"nullsafe_member_call_expression":   true,
	"attribute":                         true,
	"attribute_group":                   true,
	"attribute_list":                    true,
	"enum_declaration":                  true,
	"enum_declaration_list":             true,
	"enum_case":                         true,
	"union_type":                        true,
	"intersection_type":                 true,
	"disjunctive_normal_form_type":      true,
	"bottom_type":                       true,
	"property_hook":                     true,
	"property_hook_list":                true,
	"property_promotion_parameter":      true,
	"variadic_placeholder":              true,
}

// structuralKinds never reach the dispatcher on their own: the converter of
// their parent reads them directly.
var structuralKinds = map[string]bool{
	"anonymous_function_use_clause": true,
	"base_clause":                   true,
	"class_interface_clause":        true,
	"case_statement":                true,
	"default_statement":             true,
	"switch_block":                  true,
	"catch_clause":                  true,
	"finally_clause":                true,
	"else_clause":                   true,
	"else_if_clause":                true,
	"cast_type":                     true,
	"const_element":                 true,
	"declare_directive":             true,
	"formal_parameters":             true,
	"simple_parameter":              true,
	"variadic_parameter":            true,
	"namespace_name":                true,
	"namespace_use_clause":          true,
	"namespace_use_group":           true,
	"pair":                          true,
	"property_element":              true,
	"static_variable_declaration":   true,
	"type_list":                     true,
	"use_list":                      true,
	"use_as_clause":                 true,
	"use_instead_of_clause":         true,
	"visibility_modifier":           true,
	"static_modifier":               true,
	"abstract_modifier":             true,
	"final_modifier":                true,
	"var_modifier":                  true,
	"readonly_modifier":             true,
	"reference_modifier":            true,
	"relative_scope":                true,
	"operation":                     true,
	"string_content":                true,
	"escape_sequence":               true,
	"heredoc_body":                  true,
	"heredoc_start":                 true,
	"heredoc_end":                   true,
	"nowdoc_body":                   true,
	"nowdoc_string":                 true,
	"sentinel_error":                true,
}

func init() {
	dispatchTable = map[string]converter{
		// statements
		"program":                     convertProgramNode,
		"expression_statement":        convertExpressionStatement,
		"compound_statement":          convertCompoundStatement,
		"colon_block":                 convertCompoundStatement,
		"empty_statement":             convertNothing,
		"comment":                     convertNothing,
		"php_tag":                     convertNothing,
		"text":                        convertText,
		"text_interpolation":          convertTextInterpolation,
		"named_label_statement":       convertLabel,
		"goto_statement":              convertGoto,
		"if_statement":                convertIf,
		"switch_statement":            convertSwitch,
		"while_statement":             convertWhile,
		"do_statement":                convertDoWhile,
		"for_statement":               convertFor,
		"foreach_statement":           convertForeach,
		"continue_statement":          convertBreakContinue(phpast.KindContinue),
		"break_statement":             convertBreakContinue(phpast.KindBreak),
		"return_statement":            convertReturn,
		"try_statement":               convertTry,
		"declare_statement":           convertDeclare,
		"echo_statement":              convertEcho,
		"exit_statement":              convertExitStatement,
		"unset_statement":             convertUnset,
		"global_declaration":          convertGlobal,
		"function_static_declaration": convertStaticDeclaration,
		"const_declaration":           convertConstDeclaration,
		"namespace_definition":        convertNamespace,
		"namespace_use_declaration":   convertUse,

		// declarations
		"function_definition":   convertFunctionDefinition,
		"class_declaration":     convertClassDeclaration,
		"interface_declaration": convertInterfaceDeclaration,
		"trait_declaration":     convertTraitDeclaration,
		"declaration_list":      convertDeclarationList,
		"method_declaration":    convertMethod,
		"property_declaration":  convertPropertyDeclaration,
		"use_declaration":       convertTraitUse,
		"anonymous_function":    expr(convertClosure),
		"arrow_function":        expr(convertArrowFunction),
		"anonymous_class":       expr(convertAnonymousClass),

		// leaves
		"variable_name":            expr(convertVariable),
		"dynamic_variable_name":    expr(convertVariable),
		"name":                     expr(convertNameExpression),
		"qualified_name":           expr(convertQualifiedNameExpression),
		"boolean":                  expr(convertKeywordConstant),
		"null":                     expr(convertKeywordConstant),
		"integer":                  expr(convertInteger),
		"float":                    expr(convertFloat),
		"string":                   expr(convertString),
		"encapsed_string":          expr(convertEncapsedString),
		"heredoc":                  expr(convertHeredoc),
		"nowdoc":                   expr(convertNowdoc),
		"shell_command_expression": expr(convertShellCommand),

		// operators
		"binary_expression":                expr(convertBinary),
		"unary_op_expression":              expr(convertUnary),
		"update_expression":                expr(convertUpdate),
		"cast_expression":                  expr(convertCast),
		"error_suppression_expression":     expr(wrapOperand(phpast.KindSilence, 0)),
		"clone_expression":                 expr(wrapOperand(phpast.KindClone, 0)),
		"print_intrinsic":                  expr(wrapOperand(phpast.KindPrint, 0)),
		"throw_expression":                 expr(wrapOperand(phpast.KindThrow, 0)),
		"include_expression":               expr(wrapOperand(phpast.KindIncludeOrEval, phpast.ExecInclude)),
		"include_once_expression":          expr(wrapOperand(phpast.KindIncludeOrEval, phpast.ExecIncludeOnce)),
		"require_expression":               expr(wrapOperand(phpast.KindIncludeOrEval, phpast.ExecRequire)),
		"require_once_expression":          expr(wrapOperand(phpast.KindIncludeOrEval, phpast.ExecRequireOnce)),
		"assignment_expression":            expr(convertAssignment),
		"reference_assignment_expression":  expr(convertReferenceAssignment),
		"augmented_assignment_expression":  expr(convertAugmentedAssignment),
		"conditional_expression":           expr(convertConditional),
		"yield_expression":                 expr(convertYield),
		"parenthesized_expression":         convertParenthesized,
		"sequence_expression":              convertSequence,

		// access and calls
		"function_call_expression":          expr(convertFunctionCall),
		"member_call_expression":            expr(convertMethodCall),
		"scoped_call_expression":            expr(convertStaticCall),
		"member_access_expression":          expr(convertPropertyAccess),
		"scoped_property_access_expression": expr(convertStaticPropertyAccess),
		"class_constant_access_expression":  expr(convertClassConstantAccess),
		"subscript_expression":              expr(convertSubscript),
		"object_creation_expression":        expr(convertNew),
		"arguments":                         expr(convertArguments),
		"argument":                          convertArgument,
		"variadic_unpacking":                expr(convertUnpack),
		"by_ref":                            expr(convertByRef),

		// arrays
		"array_creation_expression": expr(convertArrayCreation),
		"list_literal":              expr(convertListLiteral),
		"array_element_initializer": expr(convertArrayElement),

		// types
		"primitive_type": expr(convertType),
		"named_type":     expr(convertType),
		"optional_type":  expr(convertType),
	}
}

// expr adapts a converter producing at most one value
func expr(fn func(ctx *ConversionContext, node *tree_sitter.Node, line int) phpast.Value) converter {
	return func(ctx *ConversionContext, node *tree_sitter.Node, line int) []phpast.Value {
		return single(fn(ctx, node, line))
	}
}

// single wraps v in a slice, empty when v is absent
func single(v phpast.Value) []phpast.Value {
	if phpast.IsAbsent(v) {
		return nil
	}
	return []phpast.Value{v}
}

func convertNothing(*ConversionContext, *tree_sitter.Node, int) []phpast.Value {
	return nil
}

// ConvertNode converts one source node. Most nodes yield one value; list
// statements may yield several and empty or unrecoverable ones none.
func ConvertNode(ctx *ConversionContext, node *tree_sitter.Node) []phpast.Value {
	Assert("ConvertNode requires a node", node != nil)
	line := startLine(node)
	if node.IsError() {
		return salvageError(ctx, node)
	}
	if node.IsMissing() {
		return single(missingNode(ctx, node, line))
	}
	conv, ok := dispatchTable[node.Kind()]
	if !ok {
		return single(ctx.unhandled(node, line))
	}
	return conv(ctx, node, line)
}

// convertExpr converts a node expected to produce a single value. A nil
// node converts to nothing.
func convertExpr(ctx *ConversionContext, node *tree_sitter.Node) phpast.Value {
	if node == nil {
		return nil
	}
	values := ConvertNode(ctx, node)
	if len(values) == 0 {
		return nil
	}
	return values[0]
}

// convertStatements converts a run of statements into an AST_STMT_LIST,
// splicing statements that expand into siblings. The list takes the line of
// its first statement, fallback when it is empty.
func convertStatements(ctx *ConversionContext, nodes []*tree_sitter.Node, fallback int) *phpast.Node {
	var stmts []phpast.Value
	for _, node := range nodes {
		stmts = append(stmts, ConvertNode(ctx, node)...)
	}
	return phpast.NewList(phpast.KindStmtList, 0, firstLine(stmts, fallback), stmts)
}

// statementChildren returns the children of node that are statements,
// keeping comments and inline HTML out unless they carry output
func statementChildren(node *tree_sitter.Node) []*tree_sitter.Node {
	var out []*tree_sitter.Node
	IterateChildren(node, func(child *tree_sitter.Node) {
		if !child.IsNamed() && !child.IsError() {
			return
		}
		switch child.Kind() {
		case "comment", "php_tag":
			return
		}
		out = append(out, child)
	})
	return out
}

// convertBody converts the body of a control structure. Braced and colon
// blocks become an AST_STMT_LIST, a single statement stays unwrapped.
func convertBody(ctx *ConversionContext, node *tree_sitter.Node) phpast.Value {
	if node == nil {
		return nil
	}
	switch node.Kind() {
	case "compound_statement", "colon_block":
		return convertStatements(ctx, statementChildren(node), endLine(node))
	}
	values := ConvertNode(ctx, node)
	switch len(values) {
	case 0:
		return nil
	case 1:
		return values[0]
	}
	return phpast.NewList(phpast.KindStmtList, 0, firstLine(values, startLine(node)), values)
}

func convertCompoundStatement(ctx *ConversionContext, node *tree_sitter.Node, _ int) []phpast.Value {
	return single(convertStatements(ctx, statementChildren(node), endLine(node)))
}

// HandledKinds returns the tree-sitter kinds with a registered converter
func HandledKinds() []string {
	kinds := make([]string, 0, len(dispatchTable))
	for kind := range dispatchTable {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// UnsupportedKinds returns the tree-sitter kinds that degrade to AST_UNHANDLED
func UnsupportedKinds() []string {
	kinds := make([]string, 0, len(unsupportedKinds))
	for kind := range unsupportedKinds {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}
