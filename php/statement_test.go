package php

import (
	"testing"

	"github.com/heshanpadmasiri/phpast/phpast"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEchoSplitsIntoStatements(t *testing.T) {
	root := parse(t, "echo $a, 1;")
	want := stmts(1,
		node(phpast.KindEcho, 0, 1, variable("a", 1)),
		node(phpast.KindEcho, 0, 1, phpast.Int(1)),
	)
	assertTree(t, want, root)
}

func TestListStatementsSplit(t *testing.T) {
	root := parse(t, "global $a, $b;\nunset($c, $d);")
	want := stmts(1,
		node(phpast.KindGlobal, 0, 1, variable("a", 1)),
		node(phpast.KindGlobal, 0, 1, variable("b", 1)),
		node(phpast.KindUnset, 0, 2, variable("c", 2)),
		node(phpast.KindUnset, 0, 2, variable("d", 2)),
	)
	assertTree(t, want, root)
}

func TestIf(t *testing.T) {
	src := "if ($a) {\n" +
		"    $b;\n" +
		"} elseif ($c) {\n" +
		"} else {\n" +
		"    $d;\n" +
		"}"
	want := list(phpast.KindIf, 0, 1,
		node(phpast.KindIfElem, 0, 1, variable("a", 1), stmts(2, variable("b", 2))),
		node(phpast.KindIfElem, 0, 3, variable("c", 3), stmts(4)),
		node(phpast.KindIfElem, 0, 5, nil, stmts(5, variable("d", 5))),
	)
	assertTree(t, want, first(t, src))
}

func TestIfWithoutBraces(t *testing.T) {
	want := list(phpast.KindIf, 0, 1,
		node(phpast.KindIfElem, 0, 1, variable("a", 1), variable("b", 1)),
	)
	assertTree(t, want, first(t, "if ($a) $b;"))
}

func TestAlternativeSyntax(t *testing.T) {
	src := "while ($a):\n" +
		"    $b;\n" +
		"endwhile;"
	want := node(phpast.KindWhile, 0, 1, variable("a", 1), stmts(2, variable("b", 2)))
	assertTree(t, want, first(t, src))

	src = "for (;;):\n" +
		"    $b;\n" +
		"    $c;\n" +
		"endfor;"
	want = node(phpast.KindFor, 0, 1, nil, nil, nil, stmts(2, variable("b", 2), variable("c", 3)))
	assertTree(t, want, first(t, src))
}

func TestLoops(t *testing.T) {
	want := node(phpast.KindWhile, 0, 1, variable("a", 1), variable("b", 1))
	assertTree(t, want, first(t, "while ($a) $b;"))

	want = node(phpast.KindDoWhile, 0, 1, stmts(1, variable("a", 1)), variable("b", 1))
	assertTree(t, want, first(t, "do { $a; } while ($b);"))

	i := variable("i", 1)
	want = node(phpast.KindFor, 0, 1,
		list(phpast.KindExprList, 0, 1, node(phpast.KindAssign, 0, 1, i, phpast.Int(0))),
		list(phpast.KindExprList, 0, 1, node(phpast.KindBinaryOp, phpast.BinaryIsSmaller, 1, i, phpast.Int(3))),
		list(phpast.KindExprList, 0, 1, node(phpast.KindPostInc, 0, 1, i)),
		stmts(1),
	)
	assertTree(t, want, first(t, "for ($i = 0; $i < 3; $i++) {}"))

	want = node(phpast.KindFor, 0, 1,
		list(phpast.KindExprList, 0, 1,
			node(phpast.KindAssign, 0, 1, i, phpast.Int(0)),
			node(phpast.KindAssign, 0, 1, variable("j", 1), phpast.Int(1)),
		),
		nil, nil, nil,
	)
	assertTree(t, want, first(t, "for ($i = 0, $j = 1;;);"))
}

func TestForeach(t *testing.T) {
	want := node(phpast.KindForeach, 0, 1, variable("a", 1), variable("v", 1), variable("k", 1), stmts(1))
	assertTree(t, want, first(t, "foreach ($a as $k => $v) {}"))

	want = node(phpast.KindForeach, 0, 1,
		variable("a", 1),
		node(phpast.KindRef, 0, 1, variable("v", 1)),
		nil,
		stmts(1),
	)
	assertTree(t, want, first(t, "foreach ($a as &$v) {}"))

	want = node(phpast.KindForeach, 0, 1,
		variable("a", 1),
		list(phpast.KindArray, phpast.ArraySyntaxList, 1,
			node(phpast.KindArrayElem, 0, 1, variable("x", 1), nil),
			node(phpast.KindArrayElem, 0, 1, variable("y", 1), nil),
		),
		nil,
		stmts(1),
	)
	assertTree(t, want, first(t, "foreach ($a as list($x, $y)) {}"))
}

func TestSwitch(t *testing.T) {
	src := "switch ($a) {\n" +
		"    case 1:\n" +
		"        $b;\n" +
		"        break;\n" +
		"    default:\n" +
		"        $c;\n" +
		"}"
	want := node(phpast.KindSwitch, 0, 1,
		variable("a", 1),
		list(phpast.KindSwitchList, 0, 1,
			node(phpast.KindSwitchCase, 0, 2, phpast.Int(1), stmts(3, variable("b", 3), node(phpast.KindBreak, 0, 4, nil))),
			node(phpast.KindSwitchCase, 0, 6, nil, stmts(6, variable("c", 6))),
		),
	)
	assertTree(t, want, first(t, src))
}

func TestBreakContinueReturn(t *testing.T) {
	root := parse(t, "break 2; continue; return $a; return;")
	want := stmts(1,
		node(phpast.KindBreak, 0, 1, phpast.Int(2)),
		node(phpast.KindContinue, 0, 1, nil),
		node(phpast.KindReturn, 0, 1, variable("a", 1)),
		node(phpast.KindReturn, 0, 1, nil),
	)
	assertTree(t, want, root)
}

func TestTry(t *testing.T) {
	src := "try {\n" +
		"    $a;\n" +
		"} catch (A | \\B $e) {\n" +
		"    $c;\n" +
		"} finally {\n" +
		"    $b;\n" +
		"}"
	want := node(phpast.KindTry, 0, 1,
		stmts(2, variable("a", 2)),
		list(phpast.KindCatchList, 0, 3,
			node(phpast.KindCatch, 0, 3,
				list(phpast.KindNameList, 0, 3, name("A", 3), node(phpast.KindName, phpast.NameFQ, 3, phpast.String("B"))),
				variable("e", 3),
				stmts(4, variable("c", 4)),
			),
		),
		stmts(6, variable("b", 6)),
	)
	assertTree(t, want, first(t, src))
}

func TestTryFinallyKeepsEmptyCatchList(t *testing.T) {
	src := "try {\n" +
		"    $a;\n" +
		"} finally {\n" +
		"}"
	got := first(t, src)
	require.Equal(t, phpast.KindTry, got.Kind)
	assertTree(t, list(phpast.KindCatchList, 0, 3), got.Child("catches"))
	assertTree(t, stmts(4), got.Child("finally"))
}

func TestStaticVariables(t *testing.T) {
	fn := first(t, "function f() {\n    static $a = 1, $b;\n}")
	want := stmts(2,
		node(phpast.KindStatic, 0, 2, variable("a", 2), phpast.Int(1)),
		node(phpast.KindStatic, 0, 2, variable("b", 2), nil),
	)
	assertTree(t, want, fn.Child("stmts"))
}

func TestConstDeclaration(t *testing.T) {
	want := list(phpast.KindConstDecl, 0, 1,
		node(phpast.KindConstElem, 0, 1, phpast.String("A"), phpast.Int(1)),
		node(phpast.KindConstElem, 0, 1, phpast.String("B"), phpast.String("b")),
	)
	assertTree(t, want, first(t, "const A = 1, B = 'b';"))
}

func TestNamespace(t *testing.T) {
	want := node(phpast.KindNamespace, 0, 1, phpast.String(`Foo\Bar`), nil)
	assertTree(t, want, first(t, `namespace Foo\Bar;`))

	want = node(phpast.KindNamespace, 0, 1, phpast.String("Foo"), stmts(1, variable("a", 1)))
	assertTree(t, want, first(t, "namespace Foo { $a; }"))
}

func TestUse(t *testing.T) {
	tests := []struct {
		src  string
		want *phpast.Node
	}{
		{`use Foo\Bar as Baz, Qux;`, list(phpast.KindUse, phpast.UseNormal, 1,
			node(phpast.KindUseElem, 0, 1, phpast.String(`Foo\Bar`), phpast.String("Baz")),
			node(phpast.KindUseElem, 0, 1, phpast.String("Qux"), nil),
		)},
		{`use function Foo\bar;`, list(phpast.KindUse, phpast.UseFunction, 1,
			node(phpast.KindUseElem, 0, 1, phpast.String(`Foo\bar`), nil),
		)},
		{`use const Foo\BAR;`, list(phpast.KindUse, phpast.UseConst, 1,
			node(phpast.KindUseElem, 0, 1, phpast.String(`Foo\BAR`), nil),
		)},
		{`use Foo\{Bar, function baz};`, node(phpast.KindGroupUse, 0, 1,
			phpast.String("Foo"),
			list(phpast.KindUse, 0, 1,
				node(phpast.KindUseElem, phpast.UseNormal, 1, phpast.String("Bar"), nil),
				node(phpast.KindUseElem, phpast.UseFunction, 1, phpast.String("baz"), nil),
			),
		)},
		{`use function Foo\{bar, baz as qux};`, node(phpast.KindGroupUse, phpast.UseFunction, 1,
			phpast.String("Foo"),
			list(phpast.KindUse, 0, 1,
				node(phpast.KindUseElem, 0, 1, phpast.String("bar"), nil),
				node(phpast.KindUseElem, 0, 1, phpast.String("baz"), phpast.String("qux")),
			),
		)},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assertTree(t, tt.want, first(t, tt.src))
		})
	}
}

func TestDeclare(t *testing.T) {
	directive := list(phpast.KindConstDecl, 0, 1,
		node(phpast.KindConstElem, 0, 1, phpast.String("strict_types"), phpast.Int(1)),
	)
	assertTree(t, node(phpast.KindDeclare, 0, 1, directive, nil), first(t, "declare(strict_types=1);"))

	ticks := list(phpast.KindConstDecl, 0, 1,
		node(phpast.KindConstElem, 0, 1, phpast.String("ticks"), phpast.Int(1)),
	)
	want := node(phpast.KindDeclare, 0, 1, ticks, stmts(1, variable("a", 1)))
	assertTree(t, want, first(t, "declare(ticks=1) { $a; }"))
}

func TestLabelAndGoto(t *testing.T) {
	root := parse(t, "a:\ngoto a;")
	want := stmts(1,
		node(phpast.KindLabel, 0, 1, phpast.String("a")),
		node(phpast.KindGoto, 0, 2, phpast.String("a")),
	)
	assertTree(t, want, root)
}

func TestInlineHTML(t *testing.T) {
	root, _ := parseWith(t, "<h1>\n<?php $a; ?>\nx\n<?php $b;", DefaultOptions())
	want := stmts(1,
		node(phpast.KindEcho, 0, 1, phpast.String("<h1>\n")),
		variable("a", 2),
		node(phpast.KindEcho, 0, 3, phpast.String("x\n")),
		variable("b", 4),
	)
	assertTree(t, want, root)
}

func TestFileWithoutTag(t *testing.T) {
	root, _ := parseWith(t, "just text\n", DefaultOptions())
	assertTree(t, stmts(1, node(phpast.KindEcho, 0, 1, phpast.String("just text\n"))), root)
}

func TestEchoTag(t *testing.T) {
	root, _ := parseWith(t, "<?= $a; ?>", DefaultOptions())
	assertTree(t, stmts(1, node(phpast.KindEcho, 0, 1, variable("a", 1))), root)
}

func TestCommentsProduceNothing(t *testing.T) {
	root := parse(t, "// one\n/* two */\n# three\n$a;")
	assertTree(t, stmts(4, variable("a", 4)), root)
	assert.Equal(t, 1, root.Len())
}
