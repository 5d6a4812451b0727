package phpast

import (
	"fmt"
	"sort"
)

// Kind identifies the grammar construct of a Node
type Kind int

const (
	isListShift      = 7
	numChildrenShift = 8
)

// Declarations
const (
	KindFuncDecl  Kind = 67
	KindClosure   Kind = 68
	KindMethod    Kind = 69
	KindClass     Kind = 70
	KindArrowFunc Kind = 71
)

// Lists
const (
	KindArgList Kind = 1<<isListShift + iota
	KindArray
	KindEncapsList
	KindExprList
	KindStmtList
	KindIf
	KindSwitchList
	KindCatchList
	KindParamList
	KindClosureUses
	KindPropDecl
	KindConstDecl
	KindClassConstDecl
	KindNameList
	KindTraitAdaptations
	KindUse
)

// Nodes without children
const (
	KindMagicConst Kind = iota
	KindType
)

// Nodes with one child
const (
	KindVar Kind = 1<<numChildrenShift + iota
	KindConst
	KindUnpack
	KindUnaryPlus
	KindUnaryMinus
	KindCast
	KindEmpty
	KindIsset
	KindSilence
	KindShellExec
	KindClone
	KindExit
	KindPrint
	KindIncludeOrEval
	KindUnaryOp
	KindPreInc
	KindPreDec
	KindPostInc
	KindPostDec
	KindYieldFrom
	KindClassName
	KindGlobal
	KindUnset
	KindReturn
	KindLabel
	KindRef
	KindHaltCompiler
	KindEcho
	KindThrow
	KindGoto
	KindBreak
	KindContinue
)

// Nodes with two children
const (
	KindDim Kind = 2<<numChildrenShift + iota
	KindProp
	KindStaticProp
	KindCall
	KindClassConst
	KindAssign
	KindAssignRef
	KindAssignOp
	KindBinaryOp
	KindGreater
	KindGreaterEqual
	KindAnd
	KindOr
	KindArrayElem
	KindNew
	KindInstanceof
	KindYield
	KindCoalesce
	KindAssignCoalesce
	KindStatic
	KindWhile
	KindDoWhile
	KindIfElem
	KindSwitch
	KindSwitchCase
	KindDeclare
	KindUseTrait
	KindTraitPrecedence
	KindMethodReference
	KindNamespace
	KindUseElem
	KindTraitAlias
	KindGroupUse
	KindPropGroup
)

// Nodes with three children
const (
	KindMethodCall Kind = 3<<numChildrenShift + iota
	KindStaticCall
	KindConditional
	KindTry
	KindCatch
	KindParam
	KindPropElem
	KindConstElem
)

// Nodes with four children
const (
	KindFor Kind = 4<<numChildrenShift + iota
	KindForeach
)

// Kinds added by php-ast on top of the engine's own
const (
	KindName Kind = 2048 + iota
	KindClosureVar
	KindNullableType
)

// KindUnhandled marks a stub emitted for a source construct that has no
// conversion rule. The stub carries the source kind in its "kind" child.
const KindUnhandled Kind = -1

var kindNames = map[Kind]string{
	KindFuncDecl:         "AST_FUNC_DECL",
	KindClosure:          "AST_CLOSURE",
	KindMethod:           "AST_METHOD",
	KindClass:            "AST_CLASS",
	KindArrowFunc:        "AST_ARROW_FUNC",
	KindArgList:          "AST_ARG_LIST",
	KindArray:            "AST_ARRAY",
	KindEncapsList:       "AST_ENCAPS_LIST",
	KindExprList:         "AST_EXPR_LIST",
	KindStmtList:         "AST_STMT_LIST",
	KindIf:               "AST_IF",
	KindSwitchList:       "AST_SWITCH_LIST",
	KindCatchList:        "AST_CATCH_LIST",
	KindParamList:        "AST_PARAM_LIST",
	KindClosureUses:      "AST_CLOSURE_USES",
	KindPropDecl:         "AST_PROP_DECL",
	KindConstDecl:        "AST_CONST_DECL",
	KindClassConstDecl:   "AST_CLASS_CONST_DECL",
	KindNameList:         "AST_NAME_LIST",
	KindTraitAdaptations: "AST_TRAIT_ADAPTATIONS",
	KindUse:              "AST_USE",
	KindMagicConst:       "AST_MAGIC_CONST",
	KindType:             "AST_TYPE",
	KindVar:              "AST_VAR",
	KindConst:            "AST_CONST",
	KindUnpack:           "AST_UNPACK",
	KindUnaryPlus:        "AST_UNARY_PLUS",
	KindUnaryMinus:       "AST_UNARY_MINUS",
	KindCast:             "AST_CAST",
	KindEmpty:            "AST_EMPTY",
	KindIsset:            "AST_ISSET",
	KindSilence:          "AST_SILENCE",
	KindShellExec:        "AST_SHELL_EXEC",
	KindClone:            "AST_CLONE",
	KindExit:             "AST_EXIT",
	KindPrint:            "AST_PRINT",
	KindIncludeOrEval:    "AST_INCLUDE_OR_EVAL",
	KindUnaryOp:          "AST_UNARY_OP",
	KindPreInc:           "AST_PRE_INC",
	KindPreDec:           "AST_PRE_DEC",
	KindPostInc:          "AST_POST_INC",
	KindPostDec:          "AST_POST_DEC",
	KindYieldFrom:        "AST_YIELD_FROM",
	KindClassName:        "AST_CLASS_NAME",
	KindGlobal:           "AST_GLOBAL",
	KindUnset:            "AST_UNSET",
	KindReturn:           "AST_RETURN",
	KindLabel:            "AST_LABEL",
	KindRef:              "AST_REF",
	KindHaltCompiler:     "AST_HALT_COMPILER",
	KindEcho:             "AST_ECHO",
	KindThrow:            "AST_THROW",
	KindGoto:             "AST_GOTO",
	KindBreak:            "AST_BREAK",
	KindContinue:         "AST_CONTINUE",
	KindDim:              "AST_DIM",
	KindProp:             "AST_PROP",
	KindStaticProp:       "AST_STATIC_PROP",
	KindCall:             "AST_CALL",
	KindClassConst:       "AST_CLASS_CONST",
	KindAssign:           "AST_ASSIGN",
	KindAssignRef:        "AST_ASSIGN_REF",
	KindAssignOp:         "AST_ASSIGN_OP",
	KindBinaryOp:         "AST_BINARY_OP",
	KindGreater:          "AST_GREATER",
	KindGreaterEqual:     "AST_GREATER_EQUAL",
	KindAnd:              "AST_AND",
	KindOr:               "AST_OR",
	KindArrayElem:        "AST_ARRAY_ELEM",
	KindNew:              "AST_NEW",
	KindInstanceof:       "AST_INSTANCEOF",
	KindYield:            "AST_YIELD",
	KindCoalesce:         "AST_COALESCE",
	KindAssignCoalesce:   "AST_ASSIGN_COALESCE",
	KindStatic:           "AST_STATIC",
	KindWhile:            "AST_WHILE",
	KindDoWhile:          "AST_DO_WHILE",
	KindIfElem:           "AST_IF_ELEM",
	KindSwitch:           "AST_SWITCH",
	KindSwitchCase:       "AST_SWITCH_CASE",
	KindDeclare:          "AST_DECLARE",
	KindUseTrait:         "AST_USE_TRAIT",
	KindTraitPrecedence:  "AST_TRAIT_PRECEDENCE",
	KindMethodReference:  "AST_METHOD_REFERENCE",
	KindNamespace:        "AST_NAMESPACE",
	KindUseElem:          "AST_USE_ELEM",
	KindTraitAlias:       "AST_TRAIT_ALIAS",
	KindGroupUse:         "AST_GROUP_USE",
	KindPropGroup:        "AST_PROP_GROUP",
	KindMethodCall:       "AST_METHOD_CALL",
	KindStaticCall:       "AST_STATIC_CALL",
	KindConditional:      "AST_CONDITIONAL",
	KindTry:              "AST_TRY",
	KindCatch:            "AST_CATCH",
	KindParam:            "AST_PARAM",
	KindPropElem:         "AST_PROP_ELEM",
	KindConstElem:        "AST_CONST_ELEM",
	KindFor:              "AST_FOR",
	KindForeach:          "AST_FOREACH",
	KindName:             "AST_NAME",
	KindClosureVar:       "AST_CLOSURE_VAR",
	KindNullableType:     "AST_NULLABLE_TYPE",
	KindUnhandled:        "AST_UNHANDLED",
}

// kindChildNames lists the child slot names of every structured kind, in
// the order the reference parser emits them.
var kindChildNames = map[Kind][]string{
	KindFuncDecl:  {"params", "uses", "stmts", "returnType"},
	KindClosure:   {"params", "uses", "stmts", "returnType"},
	KindMethod:    {"params", "uses", "stmts", "returnType"},
	KindArrowFunc: {"params", "uses", "stmts", "returnType"},
	KindClass:     {"extends", "implements", "stmts"},

	KindMagicConst: {},
	KindType:       {},

	KindVar:           {"name"},
	KindConst:         {"name"},
	KindUnpack:        {"expr"},
	KindUnaryPlus:     {"expr"},
	KindUnaryMinus:    {"expr"},
	KindCast:          {"expr"},
	KindEmpty:         {"expr"},
	KindIsset:         {"var"},
	KindSilence:       {"expr"},
	KindShellExec:     {"expr"},
	KindClone:         {"expr"},
	KindExit:          {"expr"},
	KindPrint:         {"expr"},
	KindIncludeOrEval: {"expr"},
	KindUnaryOp:       {"expr"},
	KindPreInc:        {"var"},
	KindPreDec:        {"var"},
	KindPostInc:       {"var"},
	KindPostDec:       {"var"},
	KindYieldFrom:     {"expr"},
	KindClassName:     {"class"},
	KindGlobal:        {"var"},
	KindUnset:         {"var"},
	KindReturn:        {"expr"},
	KindLabel:         {"name"},
	KindRef:           {"var"},
	KindHaltCompiler:  {"offset"},
	KindEcho:          {"expr"},
	KindThrow:         {"expr"},
	KindGoto:          {"label"},
	KindBreak:         {"depth"},
	KindContinue:      {"depth"},

	KindDim:             {"expr", "dim"},
	KindProp:            {"expr", "prop"},
	KindStaticProp:      {"class", "prop"},
	KindCall:            {"expr", "args"},
	KindClassConst:      {"class", "const"},
	KindAssign:          {"var", "expr"},
	KindAssignRef:       {"var", "expr"},
	KindAssignOp:        {"var", "expr"},
	KindBinaryOp:        {"left", "right"},
	KindGreater:         {"left", "right"},
	KindGreaterEqual:    {"left", "right"},
	KindAnd:             {"left", "right"},
	KindOr:              {"left", "right"},
	KindArrayElem:       {"value", "key"},
	KindNew:             {"class", "args"},
	KindInstanceof:      {"expr", "class"},
	KindYield:           {"value", "key"},
	KindCoalesce:        {"left", "right"},
	KindAssignCoalesce:  {"var", "expr"},
	KindStatic:          {"var", "default"},
	KindWhile:           {"cond", "stmts"},
	KindDoWhile:         {"stmts", "cond"},
	KindIfElem:          {"cond", "stmts"},
	KindSwitch:          {"cond", "stmts"},
	KindSwitchCase:      {"cond", "stmts"},
	KindDeclare:         {"declares", "stmts"},
	KindUseTrait:        {"traits", "adaptations"},
	KindTraitPrecedence: {"method", "insteadof"},
	KindMethodReference: {"class", "method"},
	KindNamespace:       {"name", "stmts"},
	KindUseElem:         {"name", "alias"},
	KindTraitAlias:      {"method", "alias"},
	KindGroupUse:        {"prefix", "uses"},
	KindPropGroup:       {"type", "props"},

	KindMethodCall:  {"expr", "method", "args"},
	KindStaticCall:  {"class", "method", "args"},
	KindConditional: {"cond", "true", "false"},
	KindTry:         {"try", "catches", "finally"},
	KindCatch:       {"class", "var", "stmts"},
	KindParam:       {"type", "name", "default"},
	KindPropElem:    {"name", "default"},
	KindConstElem:   {"name", "value"},

	KindFor:     {"init", "cond", "loop", "stmts"},
	KindForeach: {"expr", "value", "key", "stmts"},

	KindName:         {"name"},
	KindClosureVar:   {"name"},
	KindNullableType: {"type"},

	KindUnhandled: {"kind"},
}

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		m[name] = k
	}
	return m
}()

// String returns the php-ast name of the kind (e.g. AST_BINARY_OP)
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("AST_UNKNOWN_%d", int(k))
}

// IsList reports whether nodes of this kind hold an ordered sequence of children
func (k Kind) IsList() bool {
	return k >= 0 && k>>isListShift == 1
}

// IsDecl reports whether nodes of this kind carry declaration attributes
func (k Kind) IsDecl() bool {
	switch k {
	case KindFuncDecl, KindClosure, KindMethod, KindClass, KindArrowFunc:
		return true
	}
	return false
}

// ChildNames returns the named child slots of a structured kind. List kinds
// and unknown kinds return nil.
func (k Kind) ChildNames() []string {
	return kindChildNames[k]
}

// KindByName looks a kind up by its php-ast name
func KindByName(name string) (Kind, bool) {
	k, ok := kindsByName[name]
	return k, ok
}

// Kinds returns every kind in the catalog ordered by value
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(kindNames))
	for k := range kindNames {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
