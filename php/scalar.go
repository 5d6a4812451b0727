package php

import (
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/heshanpadmasiri/phpast/phpast"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

var magicConstants = map[string]phpast.Flags{
	"__line__":      phpast.MagicLine,
	"__file__":      phpast.MagicFile,
	"__dir__":       phpast.MagicDir,
	"__class__":     phpast.MagicClass,
	"__method__":    phpast.MagicMethod,
	"__function__":  phpast.MagicFunction,
	"__trait__":     phpast.MagicTrait,
	"__namespace__": phpast.MagicNamespace,
}

func convertVariable(ctx *ConversionContext, node *tree_sitter.Node, line int) phpast.Value {
	name := simpleVariable(ctx, node)
	if phpast.IsAbsent(name) {
		return nil
	}
	return phpast.NewNode(phpast.KindVar, 0, line, name)
}

// simpleVariable returns what an AST_VAR wraps: the bare name for $x, an
// AST_VAR for $$x and the expression for ${expr}
func simpleVariable(ctx *ConversionContext, node *tree_sitter.Node) phpast.Value {
	switch node.Kind() {
	case "variable_name":
		name := firstNamedChild(node)
		if name == nil || name.IsMissing() {
			return ctx.placeholderName(IncompleteVariable)
		}
		return phpast.String(text(ctx, name))
	case "dynamic_variable_name":
		inner := firstNamedChild(node)
		if inner == nil || inner.IsMissing() {
			return ctx.placeholderName(IncompleteVariable)
		}
		if hasChildToken(node, "{") {
			return convertExpr(ctx, inner)
		}
		return convertVariable(ctx, inner, startLine(inner))
	}
	return convertExpr(ctx, node)
}

func convertNameExpression(ctx *ConversionContext, node *tree_sitter.Node, line int) phpast.Value {
	name := text(ctx, node)
	lower := strings.ToLower(name)
	if flag, ok := magicConstants[lower]; ok {
		return phpast.NewNode(phpast.KindMagicConst, flag, line)
	}
	switch lower {
	case "exit", "die":
		return phpast.NewNode(phpast.KindExit, 0, line, nil)
	}
	return phpast.NewNode(phpast.KindConst, 0, line, nameNode(ctx, node))
}

func convertQualifiedNameExpression(ctx *ConversionContext, node *tree_sitter.Node, line int) phpast.Value {
	return phpast.NewNode(phpast.KindConst, 0, line, nameNode(ctx, node))
}

// convertKeywordConstant keeps true, false and null as written
func convertKeywordConstant(ctx *ConversionContext, node *tree_sitter.Node, line int) phpast.Value {
	return phpast.NewNode(phpast.KindConst, 0, line, newName(text(ctx, node), line))
}

// nameNode builds an AST_NAME from a name, qualified name or relative scope
func nameNode(ctx *ConversionContext, node *tree_sitter.Node) *phpast.Node {
	return newName(text(ctx, node), startLine(node))
}

// newName resolves the written form of a name: a leading separator makes it
// fully qualified, a namespace\ prefix relative
func newName(name string, line int) *phpast.Node {
	name = strings.Join(strings.Fields(name), "")
	flags := phpast.NameNotFQ
	const relative = `namespace\`
	switch {
	case strings.HasPrefix(name, `\`):
		flags = phpast.NameFQ
		name = name[1:]
	case len(name) > len(relative) && strings.EqualFold(name[:len(relative)], relative):
		flags = phpast.NameRelative
		name = name[len(relative):]
	}
	return phpast.NewNode(phpast.KindName, flags, line, phpast.String(name))
}

func convertInteger(ctx *ConversionContext, node *tree_sitter.Node, _ int) phpast.Value {
	return parseInteger(text(ctx, node))
}

// parseInteger reads decimal, hexadecimal, octal and binary literals.
// Literals that overflow int64 become floats.
func parseInteger(raw string) phpast.Value {
	s := strings.ReplaceAll(raw, "_", "")
	base, digits := 10, s
	if len(s) > 1 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X':
			base, digits = 16, s[2:]
		case 'b', 'B':
			base, digits = 2, s[2:]
		case 'o', 'O':
			base, digits = 8, s[2:]
		default:
			base, digits = 8, s[1:]
		}
	}
	if digits == "" {
		return phpast.Int(0)
	}
	if v, err := strconv.ParseInt(digits, base, 64); err == nil {
		return phpast.Int(v)
	}
	if base == 10 {
		f, _ := strconv.ParseFloat(digits, 64)
		return phpast.Float(f)
	}
	n, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return phpast.Int(0)
	}
	f, _ := new(big.Float).SetInt(n).Float64()
	return phpast.Float(f)
}

func convertFloat(ctx *ConversionContext, node *tree_sitter.Node, _ int) phpast.Value {
	// out of range literals parse to +Inf like the engine's
	f, _ := strconv.ParseFloat(strings.ReplaceAll(text(ctx, node), "_", ""), 64)
	return phpast.Float(f)
}

// convertString handles single quoted strings, where only \\ and \' escape
func convertString(ctx *ConversionContext, node *tree_sitter.Node, _ int) phpast.Value {
	start, end := delimitedRange(node)
	return phpast.String(unescapeSingleQuoted(string(ctx.Source[start:end])))
}

func unescapeSingleQuoted(raw string) string {
	if !strings.Contains(raw, `\`) {
		return raw
	}
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] == '\\' && i+1 < len(raw) && (raw[i+1] == '\\' || raw[i+1] == '\'') {
			i++
		}
		sb.WriteByte(raw[i])
	}
	return sb.String()
}

// delimitedRange returns the byte range between a node's first and last
// child, the inside of a quoted literal
func delimitedRange(node *tree_sitter.Node) (uint, uint) {
	count := node.ChildCount()
	if count < 2 {
		return node.StartByte(), node.StartByte()
	}
	start := node.Child(0).EndByte()
	end := node.Child(count - 1).StartByte()
	if end < start {
		end = start
	}
	return start, end
}

func convertEncapsedString(ctx *ConversionContext, node *tree_sitter.Node, line int) phpast.Value {
	start, end := delimitedRange(node)
	s := interpolation{ctx: ctx, quote: '"'}
	return s.convert(node, start, end, line)
}

func convertShellCommand(ctx *ConversionContext, node *tree_sitter.Node, line int) phpast.Value {
	start, end := delimitedRange(node)
	s := interpolation{ctx: ctx, quote: '`'}
	return phpast.NewNode(phpast.KindShellExec, 0, line, s.convert(node, start, end, line))
}

func convertHeredoc(ctx *ConversionContext, node *tree_sitter.Node, line int) phpast.Value {
	body := field(node, "value")
	if body == nil {
		return phpast.String("")
	}
	s := interpolation{ctx: ctx, indent: closingIndent(ctx, node), heredoc: true}
	return s.convert(body, body.StartByte(), bodyEnd(ctx, body), line)
}

func convertNowdoc(ctx *ConversionContext, node *tree_sitter.Node, _ int) phpast.Value {
	body := field(node, "value")
	if body == nil {
		return phpast.String("")
	}
	raw := stripLeadingNewline(string(ctx.Source[body.StartByte():bodyEnd(ctx, body)]))
	out, _ := dedent(raw, closingIndent(ctx, node), true)
	return phpast.String(out)
}

// bodyEnd returns where the value of a heredoc or nowdoc ends. The line
// break before the closing marker is not part of it, whether or not the
// parser put it inside the body node.
func bodyEnd(ctx *ConversionContext, body *tree_sitter.Node) uint {
	start, end := body.StartByte(), body.EndByte()
	if end < uint(len(ctx.Source)) && (ctx.Source[end] == '\n' || ctx.Source[end] == '\r') {
		return end
	}
	switch {
	case end >= start+2 && ctx.Source[end-2] == '\r' && ctx.Source[end-1] == '\n':
		return end - 2
	case end > start && (ctx.Source[end-1] == '\n' || ctx.Source[end-1] == '\r'):
		return end - 1
	}
	return end
}

// closingIndent measures the whitespace before a heredoc's closing marker,
// which is removed from every body line
func closingIndent(ctx *ConversionContext, node *tree_sitter.Node) int {
	end := field(node, "end_tag")
	if end == nil {
		return 0
	}
	pos := int(end.StartByte())
	lineStart := strings.LastIndexByte(string(ctx.Source[:pos]), '\n') + 1
	indent := 0
	for i := lineStart; i < len(ctx.Source) && (ctx.Source[i] == ' ' || ctx.Source[i] == '\t'); i++ {
		indent++
	}
	return indent
}

func stripLeadingNewline(s string) string {
	if strings.HasPrefix(s, "\r\n") {
		return s[2:]
	}
	if strings.HasPrefix(s, "\n") || strings.HasPrefix(s, "\r") {
		return s[1:]
	}
	return s
}

// dedent removes up to indent blanks after every line start. atLineStart
// tells whether s itself begins a line; the result reports whether the text
// following s does.
func dedent(s string, indent int, atLineStart bool) (string, bool) {
	if indent == 0 {
		return s, strings.HasSuffix(s, "\n") || (atLineStart && s == "")
	}
	var sb strings.Builder
	for i := 0; i < len(s); {
		if atLineStart {
			removed := 0
			for i < len(s) && removed < indent && (s[i] == ' ' || s[i] == '\t') {
				i++
				removed++
			}
			atLineStart = false
			continue
		}
		sb.WriteByte(s[i])
		atLineStart = s[i] == '\n'
		i++
	}
	return sb.String(), atLineStart
}

// interpolation assembles the parts of a double quoted string, heredoc or
// shell command
type interpolation struct {
	ctx     *ConversionContext
	quote   byte
	indent  int
	heredoc bool
}

// convert returns a String when the literal has no embedded expressions and
// an AST_ENCAPS_LIST otherwise
func (s interpolation) convert(container *tree_sitter.Node, start, end uint, line int) phpast.Value {
	var parts []phpast.Value
	var literal strings.Builder
	cursor := start
	atLineStart := true
	first := true
	interpolated := false

	flush := func(to uint) {
		if to <= cursor {
			return
		}
		raw := string(s.ctx.Source[cursor:to])
		if first && s.heredoc {
			raw = stripLeadingNewline(raw)
		}
		first = false
		raw, atLineStart = dedent(raw, s.indent, atLineStart)
		literal.WriteString(unescapeDoubleQuoted(raw, s.quote))
	}
	IterateChildren(container, func(child *tree_sitter.Node) {
		if child.StartByte() < start || child.EndByte() > end || !child.IsNamed() || child.IsExtra() {
			return
		}
		switch child.Kind() {
		case "string_content", "escape_sequence":
			return
		}
		litEnd := child.StartByte()
		complex := false
		if prev := child.PrevSibling(); prev != nil && !prev.IsNamed() && prev.Kind() == "{" {
			litEnd = prev.StartByte()
			complex = true
		}
		flush(litEnd)
		first = false
		atLineStart = false
		if literal.Len() > 0 {
			parts = append(parts, phpast.String(literal.String()))
			literal.Reset()
		}
		if v := s.part(child, complex); !phpast.IsAbsent(v) {
			parts = append(parts, v)
		}
		interpolated = true
		cursor = child.EndByte()
		if next := child.NextSibling(); complex && next != nil && !next.IsNamed() && next.Kind() == "}" {
			cursor = next.EndByte()
		}
	})
	flush(end)
	if !interpolated {
		return phpast.String(literal.String())
	}
	if literal.Len() > 0 {
		parts = append(parts, phpast.String(literal.String()))
	}
	return phpast.NewList(phpast.KindEncapsList, 0, line, parts)
}

var numericOffset = regexp.MustCompile(`^(0|-?[1-9][0-9]*)$`)

// part converts an embedded expression. Inside the simple "$a[key]" form an
// unquoted key is a string and a numeric key an integer.
func (s interpolation) part(node *tree_sitter.Node, complex bool) phpast.Value {
	if node.Kind() == "dynamic_variable_name" && hasChildToken(node, "{") {
		if v, ok := s.bracedName(node); ok {
			return v
		}
	}
	if complex || node.Kind() != "subscript_expression" {
		return convertExpr(s.ctx, node)
	}
	children := namedChildren(node)
	if len(children) != 2 {
		return convertExpr(s.ctx, node)
	}
	base := convertExpr(s.ctx, children[0])
	var dim phpast.Value
	switch key := children[1]; key.Kind() {
	case "name", "integer", "unary_op_expression":
		raw := strings.Join(strings.Fields(text(s.ctx, key)), "")
		if numericOffset.MatchString(raw) {
			if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
				dim = phpast.Int(v)
				break
			}
		}
		dim = phpast.String(raw)
	default:
		dim = convertExpr(s.ctx, key)
	}
	if phpast.IsAbsent(base) {
		return nil
	}
	return phpast.NewNode(phpast.KindDim, 0, startLine(node), base, dim)
}

// bracedName converts "${name}" and "${name[expr]}", where the braces hold
// a variable name instead of an expression
func (s interpolation) bracedName(node *tree_sitter.Node) (phpast.Value, bool) {
	inner := firstNamedChild(node)
	if inner == nil {
		return nil, false
	}
	line := startLine(node)
	switch inner.Kind() {
	case "name":
		return phpast.NewNode(phpast.KindVar, 0, line, phpast.String(text(s.ctx, inner))), true
	case "subscript_expression":
		children := namedChildren(inner)
		if len(children) != 2 || children[0].Kind() != "name" {
			return nil, false
		}
		dim := convertExpr(s.ctx, children[1])
		if phpast.IsAbsent(dim) {
			return nil, true
		}
		v := phpast.NewNode(phpast.KindVar, 0, line, phpast.String(text(s.ctx, children[0])))
		return phpast.NewNode(phpast.KindDim, 0, line, v, dim), true
	}
	return nil, false
}

// unescapeDoubleQuoted decodes the escapes of double quoted strings,
// heredocs and shell commands. quote is the delimiter that may be escaped,
// 0 for heredocs. Unknown sequences keep their backslash.
func unescapeDoubleQuoted(raw string, quote byte) string {
	if !strings.Contains(raw, `\`) {
		return raw
	}
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '\\' || i+1 == len(raw) {
			sb.WriteByte(c)
			continue
		}
		next := raw[i+1]
		switch next {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case 'v':
			sb.WriteByte('\v')
		case 'e':
			sb.WriteByte(0x1b)
		case 'f':
			sb.WriteByte('\f')
		case '\\', '$':
			sb.WriteByte(next)
		case '"', '`':
			if next != quote {
				sb.WriteByte(c)
				continue
			}
			sb.WriteByte(next)
		case 'x':
			n := hexPrefix(raw[i+2:], 2)
			if n == 0 {
				sb.WriteByte(c)
				continue
			}
			v, _ := strconv.ParseUint(raw[i+2:i+2+n], 16, 8)
			sb.WriteByte(byte(v))
			i += n
		case 'u':
			closing := strings.IndexByte(raw[i+2:], '}')
			if i+2 >= len(raw) || raw[i+2] != '{' || closing < 2 {
				sb.WriteByte(c)
				continue
			}
			digits := raw[i+3 : i+2+closing]
			v, err := strconv.ParseUint(digits, 16, 32)
			if err != nil || hexPrefix(digits, len(digits)) != len(digits) {
				sb.WriteByte(c)
				continue
			}
			sb.WriteRune(rune(v))
			i += closing + 1
		case '0', '1', '2', '3', '4', '5', '6', '7':
			n := 1
			for n < 3 && i+1+n < len(raw) && raw[i+1+n] >= '0' && raw[i+1+n] <= '7' {
				n++
			}
			v, _ := strconv.ParseUint(raw[i+1:i+1+n], 8, 16)
			sb.WriteByte(byte(v))
			i += n - 1
		default:
			sb.WriteByte(c)
			continue
		}
		i++
	}
	return sb.String()
}

// hexPrefix counts the leading hex digits of s, at most max
func hexPrefix(s string, max int) int {
	n := 0
	for n < max && n < len(s) {
		c := s[n]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			break
		}
		n++
	}
	return n
}
