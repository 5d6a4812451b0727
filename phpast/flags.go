package phpast

import (
	"fmt"
	"sort"
	"strings"
)

// Flags is a kind dependent bitmask refining a node's meaning
type Flags int

// Name resolution
const (
	NameFQ       Flags = 0
	NameNotFQ    Flags = 1
	NameRelative Flags = 2
)

// Member and function modifiers, numbered as in the PHP 7.4 engine
const (
	ModifierPublic    Flags = 1 << 0
	ModifierProtected Flags = 1 << 1
	ModifierPrivate   Flags = 1 << 2
	ModifierStatic    Flags = 1 << 4
	ModifierFinal     Flags = 1 << 5
	ModifierAbstract  Flags = 1 << 6

	FuncReturnsRef Flags = 1 << 12
	FuncGenerator  Flags = 1 << 24
)

// Class declarations
const (
	ClassInterface Flags = 1 << 0
	ClassTrait     Flags = 1 << 1
	ClassAnonymous Flags = 1 << 2
	ClassFinal     Flags = 1 << 5
	ClassAbstract  Flags = 1 << 6
)

// Parameters, closure variables and array elements
const (
	ParamRef         Flags = 1
	ParamVariadic    Flags = 2
	ClosureUseRef    Flags = 1
	ArrayElemRef     Flags = 1
	ArraySyntaxList  Flags = 1
	ArraySyntaxLong  Flags = 2
	ArraySyntaxShort Flags = 3
)

// Types, used by AST_TYPE and AST_CAST
const (
	TypeNull     Flags = 1
	TypeLong     Flags = 4
	TypeDouble   Flags = 5
	TypeString   Flags = 6
	TypeArray    Flags = 7
	TypeObject   Flags = 8
	TypeBool     Flags = 16
	TypeCallable Flags = 17
	TypeIterable Flags = 18
	TypeVoid     Flags = 19
)

// Binary operators, used by AST_BINARY_OP and AST_ASSIGN_OP
const (
	BinaryAdd              Flags = 1
	BinarySub              Flags = 2
	BinaryMul              Flags = 3
	BinaryDiv              Flags = 4
	BinaryMod              Flags = 5
	BinaryShiftLeft        Flags = 6
	BinaryShiftRight       Flags = 7
	BinaryConcat           Flags = 8
	BinaryBitwiseOr        Flags = 9
	BinaryBitwiseAnd       Flags = 10
	BinaryBitwiseXor       Flags = 11
	BinaryBoolXor          Flags = 14
	BinaryIsIdentical      Flags = 15
	BinaryIsNotIdentical   Flags = 16
	BinaryIsEqual          Flags = 17
	BinaryIsNotEqual       Flags = 18
	BinaryIsSmaller        Flags = 19
	BinaryIsSmallerOrEqual Flags = 20
	BinaryPow              Flags = 166
	BinarySpaceship        Flags = 170
	BinaryIsGreater        Flags = 256
	BinaryIsGreaterOrEqual Flags = 257
	BinaryBoolOr           Flags = 258
	BinaryBoolAnd          Flags = 259
	BinaryCoalesce         Flags = 260
)

// Unary operators
const (
	UnaryBitwiseNot Flags = 12
	UnaryBoolNot    Flags = 13
	UnaryPlus       Flags = 261
	UnaryMinus      Flags = 262
)

// Magic constants
const (
	MagicLine      Flags = 370
	MagicFile      Flags = 371
	MagicDir       Flags = 372
	MagicClass     Flags = 373
	MagicMethod    Flags = 374
	MagicFunction  Flags = 375
	MagicTrait     Flags = 376
	MagicNamespace Flags = 389
)

// include/require/eval
const (
	ExecEval        Flags = 1
	ExecInclude     Flags = 2
	ExecIncludeOnce Flags = 4
	ExecRequire     Flags = 8
	ExecRequireOnce Flags = 16
)

// use statements
const (
	UseNormal   Flags = 1
	UseFunction Flags = 2
	UseConst    Flags = 4
)

type flagName struct {
	name  string
	value Flags
}

var (
	nameFlags = []flagName{
		{"NAME_FQ", NameFQ}, {"NAME_NOT_FQ", NameNotFQ}, {"NAME_RELATIVE", NameRelative},
	}
	modifierFlags = []flagName{
		{"MODIFIER_PUBLIC", ModifierPublic}, {"MODIFIER_PROTECTED", ModifierProtected},
		{"MODIFIER_PRIVATE", ModifierPrivate}, {"MODIFIER_STATIC", ModifierStatic},
		{"MODIFIER_ABSTRACT", ModifierAbstract}, {"MODIFIER_FINAL", ModifierFinal},
	}
	funcFlags = append(append([]flagName{}, modifierFlags...),
		flagName{"FUNC_RETURNS_REF", FuncReturnsRef}, flagName{"FUNC_GENERATOR", FuncGenerator})
	classFlags = []flagName{
		{"CLASS_ABSTRACT", ClassAbstract}, {"CLASS_FINAL", ClassFinal}, {"CLASS_TRAIT", ClassTrait},
		{"CLASS_INTERFACE", ClassInterface}, {"CLASS_ANONYMOUS", ClassAnonymous},
	}
	paramFlags = []flagName{
		{"PARAM_REF", ParamRef}, {"PARAM_VARIADIC", ParamVariadic},
	}
	typeFlags = []flagName{
		{"TYPE_NULL", TypeNull}, {"TYPE_BOOL", TypeBool}, {"TYPE_LONG", TypeLong},
		{"TYPE_DOUBLE", TypeDouble}, {"TYPE_STRING", TypeString}, {"TYPE_ARRAY", TypeArray},
		{"TYPE_OBJECT", TypeObject}, {"TYPE_CALLABLE", TypeCallable}, {"TYPE_VOID", TypeVoid},
		{"TYPE_ITERABLE", TypeIterable},
	}
	binaryFlags = []flagName{
		{"BINARY_ADD", BinaryAdd}, {"BINARY_SUB", BinarySub}, {"BINARY_MUL", BinaryMul},
		{"BINARY_DIV", BinaryDiv}, {"BINARY_MOD", BinaryMod}, {"BINARY_SHIFT_LEFT", BinaryShiftLeft},
		{"BINARY_SHIFT_RIGHT", BinaryShiftRight}, {"BINARY_CONCAT", BinaryConcat},
		{"BINARY_BITWISE_OR", BinaryBitwiseOr}, {"BINARY_BITWISE_AND", BinaryBitwiseAnd},
		{"BINARY_BITWISE_XOR", BinaryBitwiseXor}, {"BINARY_BOOL_XOR", BinaryBoolXor},
		{"BINARY_IS_IDENTICAL", BinaryIsIdentical}, {"BINARY_IS_NOT_IDENTICAL", BinaryIsNotIdentical},
		{"BINARY_IS_EQUAL", BinaryIsEqual}, {"BINARY_IS_NOT_EQUAL", BinaryIsNotEqual},
		{"BINARY_IS_SMALLER", BinaryIsSmaller}, {"BINARY_IS_SMALLER_OR_EQUAL", BinaryIsSmallerOrEqual},
		{"BINARY_POW", BinaryPow}, {"BINARY_SPACESHIP", BinarySpaceship},
		{"BINARY_IS_GREATER", BinaryIsGreater}, {"BINARY_IS_GREATER_OR_EQUAL", BinaryIsGreaterOrEqual},
		{"BINARY_BOOL_OR", BinaryBoolOr}, {"BINARY_BOOL_AND", BinaryBoolAnd},
		{"BINARY_COALESCE", BinaryCoalesce},
	}
	unaryFlags = []flagName{
		{"UNARY_BITWISE_NOT", UnaryBitwiseNot}, {"UNARY_BOOL_NOT", UnaryBoolNot},
		{"UNARY_PLUS", UnaryPlus}, {"UNARY_MINUS", UnaryMinus},
	}
	magicFlags = []flagName{
		{"MAGIC_LINE", MagicLine}, {"MAGIC_FILE", MagicFile}, {"MAGIC_DIR", MagicDir},
		{"MAGIC_NAMESPACE", MagicNamespace}, {"MAGIC_FUNCTION", MagicFunction},
		{"MAGIC_METHOD", MagicMethod}, {"MAGIC_CLASS", MagicClass}, {"MAGIC_TRAIT", MagicTrait},
	}
	execFlags = []flagName{
		{"EXEC_EVAL", ExecEval}, {"EXEC_INCLUDE", ExecInclude}, {"EXEC_INCLUDE_ONCE", ExecIncludeOnce},
		{"EXEC_REQUIRE", ExecRequire}, {"EXEC_REQUIRE_ONCE", ExecRequireOnce},
	}
	useFlags = []flagName{
		{"USE_NORMAL", UseNormal}, {"USE_FUNCTION", UseFunction}, {"USE_CONST", UseConst},
	}
	arrayFlags = []flagName{
		{"ARRAY_SYNTAX_LIST", ArraySyntaxList}, {"ARRAY_SYNTAX_LONG", ArraySyntaxLong},
		{"ARRAY_SYNTAX_SHORT", ArraySyntaxShort},
	}
	arrayElemFlags  = []flagName{{"ARRAY_ELEM_REF", ArrayElemRef}}
	closureVarFlags = []flagName{{"CLOSURE_USE_REF", ClosureUseRef}}
)

type flagSet struct {
	names     []flagName
	exclusive bool
}

// flagSets maps the kinds that use flags to the names their flags are drawn
// from. Exclusive sets hold exactly one value, the others are OR-ed bits.
var flagSets = map[Kind]flagSet{
	KindName:           {nameFlags, true},
	KindType:           {typeFlags, true},
	KindCast:           {typeFlags, true},
	KindUnaryOp:        {unaryFlags, true},
	KindBinaryOp:       {binaryFlags, true},
	KindAssignOp:       {binaryFlags, true},
	KindMagicConst:     {magicFlags, true},
	KindIncludeOrEval:  {execFlags, true},
	KindUse:            {useFlags, true},
	KindGroupUse:       {useFlags, true},
	KindUseElem:        {useFlags, true},
	KindArray:          {arrayFlags, true},
	KindArrayElem:      {arrayElemFlags, false},
	KindClosureVar:     {closureVarFlags, false},
	KindParam:          {paramFlags, false},
	KindClass:          {classFlags, false},
	KindFuncDecl:       {funcFlags, false},
	KindMethod:         {funcFlags, false},
	KindClosure:        {funcFlags, false},
	KindArrowFunc:      {funcFlags, false},
	KindPropDecl:       {modifierFlags, false},
	KindClassConstDecl: {modifierFlags, false},
	KindTraitAlias:     {modifierFlags, false},
}

// UsesFlags reports whether a kind gives meaning to its flags
func (k Kind) UsesFlags() bool {
	_, ok := flagSets[k]
	return ok
}

// FormatFlags renders flags for the given kind the way ast_dump does:
// "BINARY_ADD (1)" for exclusive flags, "MODIFIER_PUBLIC | MODIFIER_STATIC (17)"
// for combinable ones, the bare number when no name is known.
func FormatFlags(kind Kind, flags Flags) string {
	set, ok := flagSets[kind]
	if !ok {
		return fmt.Sprintf("%d", int(flags))
	}
	if set.exclusive {
		for _, f := range set.names {
			if f.value == flags {
				return fmt.Sprintf("%s (%d)", f.name, int(flags))
			}
		}
		return fmt.Sprintf("%d", int(flags))
	}
	var names []string
	rest := flags
	for _, f := range set.names {
		if f.value != 0 && flags&f.value == f.value && rest&f.value != 0 {
			names = append(names, f.name)
			rest &^= f.value
		}
	}
	if rest != 0 {
		names = append(names, fmt.Sprintf("%d", int(rest)))
	}
	if len(names) == 0 {
		return "0"
	}
	return fmt.Sprintf("%s (%d)", strings.Join(names, " | "), int(flags))
}

// FlagNames returns every named flag known for a kind, ordered by value
func FlagNames(kind Kind) []string {
	set, ok := flagSets[kind]
	if !ok {
		return nil
	}
	sorted := append([]flagName{}, set.names...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].value < sorted[j].value })
	names := make([]string, 0, len(sorted))
	for _, f := range sorted {
		names = append(names, f.name)
	}
	return names
}
