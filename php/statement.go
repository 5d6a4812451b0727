package php

import (
	"bytes"
	"strings"

	"github.com/heshanpadmasiri/phpast/phpast"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// convertProgram converts the root of a tree into the top level statement
// list. Text before the first <?php tag is echoed verbatim.
func convertProgram(ctx *ConversionContext, node *tree_sitter.Node) *phpast.Node {
	var stmts []phpast.Value
	if html := leadingHTML(ctx, node); html != "" {
		stmts = append(stmts, phpast.NewNode(phpast.KindEcho, 0, 1, phpast.String(html)))
	}
	for _, child := range statementChildren(node) {
		if child.Kind() == "text" {
			continue
		}
		stmts = append(stmts, ConvertNode(ctx, child)...)
	}
	return phpast.NewList(phpast.KindStmtList, 0, firstLine(stmts, 1), stmts)
}

func convertProgramNode(ctx *ConversionContext, node *tree_sitter.Node, _ int) []phpast.Value {
	return single(convertProgram(ctx, node))
}

// leadingHTML returns the source before the opening tag, all of it when the
// file has none
func leadingHTML(ctx *ConversionContext, program *tree_sitter.Node) string {
	if tag := firstChildOfKind(program, "php_tag"); tag != nil {
		return string(ctx.Source[:tag.StartByte()])
	}
	if firstNamedChild(program) == nil || firstChildOfKind(program, "text") != nil {
		return string(ctx.Source)
	}
	return ""
}

// lineAt returns the 1-based line of a byte offset
func lineAt(ctx *ConversionContext, offset uint) int {
	return bytes.Count(ctx.Source[:offset], []byte("\n")) + 1
}

func convertText(ctx *ConversionContext, node *tree_sitter.Node, line int) []phpast.Value {
	return single(phpast.NewNode(phpast.KindEcho, 0, line, phpast.String(text(ctx, node))))
}

// convertTextInterpolation echoes the text between ?> and the next opening
// tag. A single newline directly after ?> belongs to the tag.
func convertTextInterpolation(ctx *ConversionContext, node *tree_sitter.Node, _ int) []phpast.Value {
	start, end := node.StartByte(), node.EndByte()
	IterateChildren(node, func(child *tree_sitter.Node) {
		switch child.Kind() {
		case "?>":
			start = child.EndByte()
		case "php_tag":
			end = child.StartByte()
		}
	})
	rest := ctx.Source[start:end]
	switch {
	case bytes.HasPrefix(rest, []byte("\r\n")):
		start += 2
	case bytes.HasPrefix(rest, []byte("\n")):
		start++
	}
	if start >= end {
		return nil
	}
	return single(phpast.NewNode(phpast.KindEcho, 0, lineAt(ctx, start), phpast.String(ctx.Source[start:end])))
}

// afterEchoTag reports whether node is the statement following a <?= tag
func afterEchoTag(ctx *ConversionContext, node *tree_sitter.Node) bool {
	prev := node.PrevSibling()
	for prev != nil && prev.Kind() == "comment" {
		prev = prev.PrevSibling()
	}
	if prev == nil {
		return false
	}
	if prev.Kind() == "text_interpolation" && prev.ChildCount() > 0 {
		prev = prev.Child(prev.ChildCount() - 1)
	}
	return prev.Kind() == "php_tag" && text(ctx, prev) == "<?="
}

func convertExpressionStatement(ctx *ConversionContext, node *tree_sitter.Node, line int) []phpast.Value {
	if hasErrorChild(node) {
		return salvageError(ctx, node)
	}
	inner := firstNamedChild(node)
	if inner == nil {
		return nil
	}
	values := convertSplitting(ctx, inner)
	if !afterEchoTag(ctx, node) {
		return values
	}
	for i, v := range values {
		values[i] = phpast.NewNode(phpast.KindEcho, 0, lineOf(v, line), v)
	}
	return values
}

func convertLabel(ctx *ConversionContext, node *tree_sitter.Node, line int) []phpast.Value {
	name := firstNamedChild(node)
	if name == nil {
		return nil
	}
	return single(phpast.NewNode(phpast.KindLabel, 0, line, phpast.String(text(ctx, name))))
}

func convertGoto(ctx *ConversionContext, node *tree_sitter.Node, line int) []phpast.Value {
	name := firstNamedChild(node)
	if name == nil || name.IsMissing() {
		return nil
	}
	return single(phpast.NewNode(phpast.KindGoto, 0, line, phpast.String(text(ctx, name))))
}

// condition converts the parenthesized condition of a control structure
func condition(ctx *ConversionContext, node *tree_sitter.Node, line int) phpast.Value {
	return operand(ctx, field(node, "condition"), line)
}

// convertIf flattens if, elseif and else into the elements of one AST_IF.
// "else if" keeps the nested if as the body of the else element.
func convertIf(ctx *ConversionContext, node *tree_sitter.Node, line int) []phpast.Value {
	cond := condition(ctx, node, line)
	if anyAbsent(cond) {
		return nil
	}
	elems := []phpast.Value{
		phpast.NewNode(phpast.KindIfElem, 0, line, cond, convertBody(ctx, field(node, "body"))),
	}
	cursor := node.Walk()
	defer cursor.Close()
	for _, clause := range node.ChildrenByFieldName("alternative", cursor) {
		clauseLine := startLine(&clause)
		var clauseCond phpast.Value
		if clause.Kind() == "else_if_clause" {
			if clauseCond = condition(ctx, &clause, clauseLine); anyAbsent(clauseCond) {
				continue
			}
		}
		body := convertBody(ctx, field(&clause, "body"))
		if clauseCond == nil {
			// else takes the line of its body
			clauseLine = lineOf(body, clauseLine)
		}
		elems = append(elems, phpast.NewNode(phpast.KindIfElem, 0, clauseLine, clauseCond, body))
	}
	return single(phpast.NewList(phpast.KindIf, 0, line, elems))
}

func convertSwitch(ctx *ConversionContext, node *tree_sitter.Node, line int) []phpast.Value {
	cond := condition(ctx, node, line)
	block := field(node, "body")
	if anyAbsent(cond) || block == nil {
		return nil
	}
	var cases []phpast.Value
	for _, c := range namedChildren(block) {
		caseLine := startLine(c)
		stmts := statementChildren(c)
		var value phpast.Value
		switch c.Kind() {
		case "case_statement":
			if value = operand(ctx, field(c, "value"), caseLine); anyAbsent(value) {
				continue
			}
			if len(stmts) > 0 {
				stmts = stmts[1:]
			}
		case "default_statement":
		default:
			cases = append(cases, ConvertNode(ctx, c)...)
			continue
		}
		body := convertStatements(ctx, stmts, caseLine)
		if value == nil {
			caseLine = lineOf(body, caseLine)
		}
		cases = append(cases, phpast.NewNode(phpast.KindSwitchCase, 0, caseLine, value, body))
	}
	list := phpast.NewList(phpast.KindSwitchList, 0, startLine(block), cases)
	return single(phpast.NewNode(phpast.KindSwitch, 0, line, cond, list))
}

func convertWhile(ctx *ConversionContext, node *tree_sitter.Node, line int) []phpast.Value {
	cond := condition(ctx, node, line)
	if anyAbsent(cond) {
		return nil
	}
	return single(phpast.NewNode(phpast.KindWhile, 0, line, cond, convertBody(ctx, field(node, "body"))))
}

func convertDoWhile(ctx *ConversionContext, node *tree_sitter.Node, line int) []phpast.Value {
	cond := condition(ctx, node, line)
	if anyAbsent(cond) {
		return nil
	}
	return single(phpast.NewNode(phpast.KindDoWhile, 0, line, convertBody(ctx, field(node, "body")), cond))
}

// expressionList converts one clause of a for header into an
// AST_EXPR_LIST, absent when the clause is empty
func expressionList(ctx *ConversionContext, node *tree_sitter.Node) phpast.Value {
	if node == nil {
		return nil
	}
	values := ConvertNode(ctx, node)
	if len(values) == 0 {
		return nil
	}
	return phpast.NewList(phpast.KindExprList, 0, firstLine(values, startLine(node)), values)
}

// convertFor handles the braced, single statement and for: ... endfor forms
func convertFor(ctx *ConversionContext, node *tree_sitter.Node, line int) []phpast.Value {
	init := expressionList(ctx, field(node, "initialize"))
	cond := expressionList(ctx, field(node, "condition"))
	loop := expressionList(ctx, field(node, "update"))

	cursor := node.Walk()
	defer cursor.Close()
	bodies := node.ChildrenByFieldName("body", cursor)
	var stmts phpast.Value
	switch {
	case hasChildToken(node, ":"):
		nodes := make([]*tree_sitter.Node, len(bodies))
		for i := range bodies {
			nodes[i] = &bodies[i]
		}
		stmts = convertStatements(ctx, nodes, endLine(node))
	case len(bodies) > 0:
		stmts = convertBody(ctx, &bodies[0])
	}
	return single(phpast.NewNode(phpast.KindFor, 0, line, init, cond, loop, stmts))
}

func convertForeach(ctx *ConversionContext, node *tree_sitter.Node, line int) []phpast.Value {
	body := field(node, "body")
	var header []*tree_sitter.Node
	for _, child := range namedChildren(node) {
		if body != nil && child.StartByte() == body.StartByte() && child.Kind() == body.Kind() {
			break
		}
		header = append(header, child)
	}
	if len(header) < 2 {
		return nil
	}
	subject := operand(ctx, header[0], line)
	target := header[1]
	var key, value phpast.Value
	if target.Kind() == "pair" {
		k, v := splitPair(target)
		key = convertExpr(ctx, k)
		value = assignTarget(ctx, v, line)
	} else {
		value = assignTarget(ctx, target, line)
	}
	if anyAbsent(subject, value) {
		return nil
	}
	return single(phpast.NewNode(phpast.KindForeach, 0, line, subject, value, key, convertBody(ctx, body)))
}

// convertBreakContinue builds the converter for break or continue with an
// optional depth
func convertBreakContinue(kind phpast.Kind) converter {
	return func(ctx *ConversionContext, node *tree_sitter.Node, line int) []phpast.Value {
		return single(phpast.NewNode(kind, 0, line, convertExpr(ctx, firstNamedChild(node))))
	}
}

func convertReturn(ctx *ConversionContext, node *tree_sitter.Node, line int) []phpast.Value {
	return single(phpast.NewNode(phpast.KindReturn, 0, line, convertExpr(ctx, firstNamedChild(node))))
}

// convertTry keeps the catch list even when only a finally block follows
func convertTry(ctx *ConversionContext, node *tree_sitter.Node, line int) []phpast.Value {
	body := field(node, "body")
	if body == nil {
		return nil
	}
	tried := convertBody(ctx, body)
	var catches []phpast.Value
	var finally phpast.Value
	for _, clause := range namedChildren(node) {
		switch clause.Kind() {
		case "catch_clause":
			if c := convertCatch(ctx, clause); !phpast.IsAbsent(c) {
				catches = append(catches, c)
			}
		case "finally_clause":
			finally = convertBody(ctx, field(clause, "body"))
		}
	}
	list := phpast.NewList(phpast.KindCatchList, 0, firstLine(catches, endLine(body)), catches)
	return single(phpast.NewNode(phpast.KindTry, 0, line, tried, list, finally))
}

func convertCatch(ctx *ConversionContext, clause *tree_sitter.Node) phpast.Value {
	line := startLine(clause)
	types := field(clause, "type")
	if types == nil {
		return nil
	}
	var v phpast.Value
	if name := field(clause, "name"); name != nil {
		v = convertVariable(ctx, name, startLine(types))
	}
	return phpast.NewNode(phpast.KindCatch, 0, line, nameList(ctx, types), v, convertBody(ctx, field(clause, "body")))
}

// convertDeclare covers declare(...); as well as its block, single
// statement and enddeclare forms
func convertDeclare(ctx *ConversionContext, node *tree_sitter.Node, line int) []phpast.Value {
	var declares phpast.Value
	var body []*tree_sitter.Node
	for _, child := range statementChildren(node) {
		if child.Kind() == "declare_directive" {
			declares = convertDeclareDirective(ctx, child)
			continue
		}
		body = append(body, child)
	}
	if anyAbsent(declares) {
		return nil
	}
	var stmts phpast.Value
	switch {
	case hasChildToken(node, ":"):
		stmts = convertStatements(ctx, body, endLine(node))
	case len(body) > 0:
		stmts = convertBody(ctx, body[0])
	}
	return single(phpast.NewNode(phpast.KindDeclare, 0, line, declares, stmts))
}

func convertDeclareDirective(ctx *ConversionContext, node *tree_sitter.Node) phpast.Value {
	line := startLine(node)
	if node.ChildCount() == 0 {
		return nil
	}
	directive := text(ctx, node.Child(0))
	value := operand(ctx, firstNamedChild(node), line)
	if anyAbsent(value) {
		return nil
	}
	elem := phpast.NewNode(phpast.KindConstElem, 0, line, phpast.String(directive), value)
	return phpast.NewList(phpast.KindConstDecl, 0, line, []phpast.Value{elem})
}

// convertEcho yields one AST_ECHO per echoed expression
func convertEcho(ctx *ConversionContext, node *tree_sitter.Node, line int) []phpast.Value {
	var out []phpast.Value
	for _, child := range namedChildren(node) {
		for _, v := range ConvertNode(ctx, child) {
			out = append(out, phpast.NewNode(phpast.KindEcho, 0, lineOf(v, line), v))
		}
	}
	return out
}

func convertExitStatement(ctx *ConversionContext, node *tree_sitter.Node, line int) []phpast.Value {
	return single(phpast.NewNode(phpast.KindExit, 0, line, convertExpr(ctx, firstNamedChild(node))))
}

// convertUnset yields one AST_UNSET per variable
func convertUnset(ctx *ConversionContext, node *tree_sitter.Node, line int) []phpast.Value {
	var out []phpast.Value
	for _, child := range namedChildren(node) {
		if v := convertExpr(ctx, child); !phpast.IsAbsent(v) {
			out = append(out, phpast.NewNode(phpast.KindUnset, 0, lineOf(v, line), v))
		}
	}
	return out
}

// convertGlobal yields one AST_GLOBAL per variable
func convertGlobal(ctx *ConversionContext, node *tree_sitter.Node, line int) []phpast.Value {
	var out []phpast.Value
	for _, child := range namedChildren(node) {
		if v := convertExpr(ctx, child); !phpast.IsAbsent(v) {
			out = append(out, phpast.NewNode(phpast.KindGlobal, 0, lineOf(v, line), v))
		}
	}
	return out
}

// convertStaticDeclaration yields one AST_STATIC per declared variable
func convertStaticDeclaration(ctx *ConversionContext, node *tree_sitter.Node, line int) []phpast.Value {
	var out []phpast.Value
	for _, decl := range namedChildrenOfKind(node, "static_variable_declaration") {
		declLine := startLine(decl)
		name := field(decl, "name")
		if name == nil {
			continue
		}
		v := convertVariable(ctx, name, declLine)
		if phpast.IsAbsent(v) {
			continue
		}
		var def phpast.Value
		if value := field(decl, "value"); value != nil {
			def = convertExpr(ctx, value)
		}
		out = append(out, phpast.NewNode(phpast.KindStatic, 0, declLine, v, def))
	}
	return out
}

// convertConstDeclaration handles both top level const statements and class
// constants, which carry visibility flags
func convertConstDeclaration(ctx *ConversionContext, node *tree_sitter.Node, line int) []phpast.Value {
	var elems []phpast.Value
	for _, elem := range namedChildrenOfKind(node, "const_element") {
		children := namedChildren(elem)
		if len(children) < 2 {
			continue
		}
		elemLine := startLine(elem)
		value := operand(ctx, children[1], elemLine)
		if anyAbsent(value) {
			continue
		}
		elems = append(elems, phpast.NewNode(phpast.KindConstElem, 0, elemLine, phpast.String(text(ctx, children[0])), value))
	}
	if parent := node.Parent(); parent != nil && parent.Kind() == "declaration_list" {
		return single(phpast.NewList(phpast.KindClassConstDecl, memberModifiers(ctx, node), line, elems))
	}
	return single(phpast.NewList(phpast.KindConstDecl, 0, line, elems))
}

// namespaceName returns the written name of a namespace without its
// leading separator
func namespaceName(ctx *ConversionContext, node *tree_sitter.Node) string {
	return strings.TrimPrefix(strings.Join(strings.Fields(text(ctx, node)), ""), `\`)
}

// convertNamespace leaves stmts absent for the statement form, whose
// statements follow as siblings
func convertNamespace(ctx *ConversionContext, node *tree_sitter.Node, line int) []phpast.Value {
	var name, stmts phpast.Value
	if n := field(node, "name"); n != nil {
		name = phpast.String(namespaceName(ctx, n))
	}
	if body := field(node, "body"); body != nil {
		stmts = convertBody(ctx, body)
	}
	return single(phpast.NewNode(phpast.KindNamespace, 0, line, name, stmts))
}

// useType maps the optional function or const keyword of a use clause
func useType(ctx *ConversionContext, node *tree_sitter.Node) (phpast.Flags, bool) {
	t := node.ChildByFieldName("type")
	if t == nil {
		return phpast.UseNormal, false
	}
	switch strings.ToLower(text(ctx, t)) {
	case "function":
		return phpast.UseFunction, true
	case "const":
		return phpast.UseConst, true
	}
	return phpast.UseNormal, false
}

// useElem converts one clause of a use statement into AST_USE_ELEM
func useElem(ctx *ConversionContext, clause *tree_sitter.Node, flags phpast.Flags) phpast.Value {
	var name *tree_sitter.Node
	for _, child := range namedChildren(clause) {
		if child.Kind() == "name" || child.Kind() == "qualified_name" {
			name = child
			break
		}
	}
	if name == nil {
		return nil
	}
	var alias phpast.Value
	if a := field(clause, "alias"); a != nil {
		alias = phpast.String(text(ctx, a))
	}
	return phpast.NewNode(phpast.KindUseElem, flags, startLine(clause), phpast.String(namespaceName(ctx, name)), alias)
}

// convertUse builds AST_USE for plain imports and AST_GROUP_USE for the
// prefix\{...} form. A typed group puts its type on the group; a mixed
// group leaves the group at 0 and types each element.
func convertUse(ctx *ConversionContext, node *tree_sitter.Node, line int) []phpast.Value {
	kind, typed := useType(ctx, node)
	if group := field(node, "body"); group != nil {
		prefix := firstChildOfKind(node, "namespace_name")
		if prefix == nil {
			return nil
		}
		if !typed {
			kind = 0
		}
		var elems []phpast.Value
		for _, clause := range namedChildrenOfKind(group, "namespace_use_clause") {
			var flags phpast.Flags
			if !typed {
				flags, _ = useType(ctx, clause)
			}
			if elem := useElem(ctx, clause, flags); !phpast.IsAbsent(elem) {
				elems = append(elems, elem)
			}
		}
		uses := phpast.NewList(phpast.KindUse, 0, startLine(group), elems)
		return single(phpast.NewNode(phpast.KindGroupUse, kind, line, phpast.String(namespaceName(ctx, prefix)), uses))
	}
	clauses := namedChildrenOfKind(node, "namespace_use_clause")
	if len(clauses) > 0 {
		kind, _ = useType(ctx, clauses[0])
	}
	var elems []phpast.Value
	for _, clause := range clauses {
		if elem := useElem(ctx, clause, 0); !phpast.IsAbsent(elem) {
			elems = append(elems, elem)
		}
	}
	return single(phpast.NewList(phpast.KindUse, kind, line, elems))
}
