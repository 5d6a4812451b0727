package php

import (
	"fmt"
	"strings"

	"github.com/heshanpadmasiri/phpast/phpast"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// binaryOperators covers every operator token of binary_expression except
// instanceof, which has its own node kind
var binaryOperators = map[string]phpast.Flags{
	"+":   phpast.BinaryAdd,
	"-":   phpast.BinarySub,
	"*":   phpast.BinaryMul,
	"/":   phpast.BinaryDiv,
	"%":   phpast.BinaryMod,
	"**":  phpast.BinaryPow,
	".":   phpast.BinaryConcat,
	"<<":  phpast.BinaryShiftLeft,
	">>":  phpast.BinaryShiftRight,
	"|":   phpast.BinaryBitwiseOr,
	"&":   phpast.BinaryBitwiseAnd,
	"^":   phpast.BinaryBitwiseXor,
	"&&":  phpast.BinaryBoolAnd,
	"and": phpast.BinaryBoolAnd,
	"||":  phpast.BinaryBoolOr,
	"or":  phpast.BinaryBoolOr,
	"xor": phpast.BinaryBoolXor,
	"==":  phpast.BinaryIsEqual,
	"!=":  phpast.BinaryIsNotEqual,
	"<>":  phpast.BinaryIsNotEqual,
	"===": phpast.BinaryIsIdentical,
	"!==": phpast.BinaryIsNotIdentical,
	"<":   phpast.BinaryIsSmaller,
	"<=":  phpast.BinaryIsSmallerOrEqual,
	">":   phpast.BinaryIsGreater,
	">=":  phpast.BinaryIsGreaterOrEqual,
	"<=>": phpast.BinarySpaceship,
	"??":  phpast.BinaryCoalesce,
}

var assignmentOperators = map[string]phpast.Flags{
	"+=":  phpast.BinaryAdd,
	"-=":  phpast.BinarySub,
	"*=":  phpast.BinaryMul,
	"/=":  phpast.BinaryDiv,
	"%=":  phpast.BinaryMod,
	"**=": phpast.BinaryPow,
	".=":  phpast.BinaryConcat,
	"<<=": phpast.BinaryShiftLeft,
	">>=": phpast.BinaryShiftRight,
	"|=":  phpast.BinaryBitwiseOr,
	"&=":  phpast.BinaryBitwiseAnd,
	"^=":  phpast.BinaryBitwiseXor,
	"??=": phpast.BinaryCoalesce,
}

var unaryOperators = map[string]phpast.Flags{
	"+": phpast.UnaryPlus,
	"-": phpast.UnaryMinus,
	"!": phpast.UnaryBoolNot,
	"~": phpast.UnaryBitwiseNot,
}

var castTypes = map[string]phpast.Flags{
	"array":   phpast.TypeArray,
	"binary":  phpast.TypeString,
	"string":  phpast.TypeString,
	"bool":    phpast.TypeBool,
	"boolean": phpast.TypeBool,
	"double":  phpast.TypeDouble,
	"float":   phpast.TypeDouble,
	"real":    phpast.TypeDouble,
	"int":     phpast.TypeLong,
	"integer": phpast.TypeLong,
	"object":  phpast.TypeObject,
	"unset":   phpast.TypeNull,
}

// operatorFlag looks an operator token up in table. Every token the grammar
// can produce is listed, so a miss is a bug in the table.
func operatorFlag(ctx *ConversionContext, table map[string]phpast.Flags, op *tree_sitter.Node) phpast.Flags {
	if op == nil || op.IsMissing() {
		return 0
	}
	token := strings.ToLower(text(ctx, op))
	flag, ok := table[token]
	Assert(fmt.Sprintf("operator %q missing from operator table", token), ok)
	return flag
}

// operand converts a mandatory operand. When it cannot be converted the
// expression placeholder stands in, or nothing when placeholders are off.
func operand(ctx *ConversionContext, node *tree_sitter.Node, line int) phpast.Value {
	if v := convertExpr(ctx, node); !phpast.IsAbsent(v) {
		return v
	}
	return ctx.incompleteExpr(lineOrFallback(node, line))
}

// anyAbsent reports whether one of the mandatory values is missing
func anyAbsent(values ...phpast.Value) bool {
	for _, v := range values {
		if phpast.IsAbsent(v) {
			return true
		}
	}
	return false
}

func convertBinary(ctx *ConversionContext, node *tree_sitter.Node, line int) phpast.Value {
	op := node.ChildByFieldName("operator")
	if op == nil || op.IsMissing() || field(node, "right") == nil {
		return operand(ctx, field(node, "left"), line)
	}
	if strings.EqualFold(op.Kind(), "instanceof") {
		left := operand(ctx, field(node, "left"), line)
		class := classReference(ctx, field(node, "right"), line)
		if anyAbsent(left, class) {
			return nil
		}
		return phpast.NewNode(phpast.KindInstanceof, 0, line, left, class)
	}
	flag := operatorFlag(ctx, binaryOperators, op)
	left := operand(ctx, field(node, "left"), line)
	right := operand(ctx, field(node, "right"), line)
	if anyAbsent(left, right) {
		return nil
	}
	return phpast.NewNode(phpast.KindBinaryOp, flag, line, left, right)
}

func convertUnary(ctx *ConversionContext, node *tree_sitter.Node, line int) phpast.Value {
	flag := operatorFlag(ctx, unaryOperators, node.ChildByFieldName("operator"))
	arg := operand(ctx, field(node, "argument"), line)
	if anyAbsent(arg) {
		return nil
	}
	return phpast.NewNode(phpast.KindUnaryOp, flag, line, arg)
}

// convertUpdate tells prefix from postfix by the operator's position
func convertUpdate(ctx *ConversionContext, node *tree_sitter.Node, line int) phpast.Value {
	op := node.ChildByFieldName("operator")
	arg := field(node, "argument")
	v := operand(ctx, arg, line)
	if op == nil || anyAbsent(v) {
		return nil
	}
	prefix := arg == nil || op.StartByte() < arg.StartByte()
	var kind phpast.Kind
	switch {
	case text(ctx, op) == "++" && prefix:
		kind = phpast.KindPreInc
	case text(ctx, op) == "++":
		kind = phpast.KindPostInc
	case prefix:
		kind = phpast.KindPreDec
	default:
		kind = phpast.KindPostDec
	}
	return phpast.NewNode(kind, 0, line, v)
}

func convertCast(ctx *ConversionContext, node *tree_sitter.Node, line int) phpast.Value {
	flag := operatorFlag(ctx, castTypes, node.ChildByFieldName("type"))
	v := operand(ctx, field(node, "value"), line)
	if anyAbsent(v) {
		return nil
	}
	return phpast.NewNode(phpast.KindCast, flag, line, v)
}

// wrapOperand builds the converter of a keyword or sigil applied to a
// single expression (clone, print, @, throw, include and friends)
func wrapOperand(kind phpast.Kind, flags phpast.Flags) func(*ConversionContext, *tree_sitter.Node, int) phpast.Value {
	return func(ctx *ConversionContext, node *tree_sitter.Node, line int) phpast.Value {
		v := operand(ctx, firstNamedChild(node), line)
		if anyAbsent(v) {
			return nil
		}
		return phpast.NewNode(kind, flags, line, v)
	}
}

// assignTarget converts the left side of an assignment; list() and []
// destructuring become AST_ARRAY
func assignTarget(ctx *ConversionContext, node *tree_sitter.Node, line int) phpast.Value {
	if node == nil {
		return ctx.incompleteVar(line)
	}
	return convertExpr(ctx, node)
}

func convertAssignment(ctx *ConversionContext, node *tree_sitter.Node, line int) phpast.Value {
	target := assignTarget(ctx, field(node, "left"), line)
	value := operand(ctx, field(node, "right"), line)
	if anyAbsent(target, value) {
		return nil
	}
	return phpast.NewNode(phpast.KindAssign, 0, line, target, value)
}

func convertReferenceAssignment(ctx *ConversionContext, node *tree_sitter.Node, line int) phpast.Value {
	target := assignTarget(ctx, field(node, "left"), line)
	value := operand(ctx, field(node, "right"), line)
	if anyAbsent(target, value) {
		return nil
	}
	return phpast.NewNode(phpast.KindAssignRef, 0, line, target, value)
}

func convertAugmentedAssignment(ctx *ConversionContext, node *tree_sitter.Node, line int) phpast.Value {
	flag := operatorFlag(ctx, assignmentOperators, node.ChildByFieldName("operator"))
	target := assignTarget(ctx, field(node, "left"), line)
	value := operand(ctx, field(node, "right"), line)
	if anyAbsent(target, value) {
		return nil
	}
	return phpast.NewNode(phpast.KindAssignOp, flag, line, target, value)
}

// convertConditional leaves the true branch absent for the short ?: form
func convertConditional(ctx *ConversionContext, node *tree_sitter.Node, line int) phpast.Value {
	cond := operand(ctx, field(node, "condition"), line)
	ifFalse := operand(ctx, field(node, "alternative"), line)
	if anyAbsent(cond, ifFalse) {
		return nil
	}
	var ifTrue phpast.Value
	if body := field(node, "body"); body != nil {
		ifTrue = convertExpr(ctx, body)
	}
	return phpast.NewNode(phpast.KindConditional, 0, line, cond, ifTrue, ifFalse)
}

func convertYield(ctx *ConversionContext, node *tree_sitter.Node, line int) phpast.Value {
	if hasChildToken(node, "from") {
		v := operand(ctx, firstNamedChild(node), line)
		if anyAbsent(v) {
			return nil
		}
		return phpast.NewNode(phpast.KindYieldFrom, 0, line, v)
	}
	element := firstNamedChild(node)
	if element == nil {
		return phpast.NewNode(phpast.KindYield, 0, line, nil, nil)
	}
	if element.Kind() != "array_element_initializer" {
		return phpast.NewNode(phpast.KindYield, 0, line, convertExpr(ctx, element), nil)
	}
	key, value := splitPair(element)
	return phpast.NewNode(phpast.KindYield, 0, line, convertExpr(ctx, value), convertExpr(ctx, key))
}

// splitPair separates "key => value" children. key is nil without an arrow.
func splitPair(node *tree_sitter.Node) (key, value *tree_sitter.Node) {
	children := namedChildren(node)
	if len(children) == 0 {
		return nil, nil
	}
	if hasChildToken(node, "=>") && len(children) > 1 {
		return children[0], children[len(children)-1]
	}
	return nil, children[0]
}

// convertParenthesized is transparent
func convertParenthesized(ctx *ConversionContext, node *tree_sitter.Node, _ int) []phpast.Value {
	inner := firstNamedChild(node)
	if inner == nil {
		return single(ctx.incompleteExpr(startLine(node)))
	}
	return ConvertNode(ctx, inner)
}

// convertSequence flattens the right nested comma sequence into its elements
func convertSequence(ctx *ConversionContext, node *tree_sitter.Node, _ int) []phpast.Value {
	var out []phpast.Value
	for _, child := range namedChildren(node) {
		out = append(out, ConvertNode(ctx, child)...)
	}
	return out
}
