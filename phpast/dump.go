package phpast

import (
	"fmt"
	"strconv"
	"strings"
)

// DumpOptions controls Dump output
type DumpOptions struct {
	// LineNumbers appends "@ lineno" (and "-endLineno" for declarations)
	LineNumbers bool
}

// Dump renders v in the layout of php-ast's ast_dump
func Dump(v Value, opts DumpOptions) string {
	var sb strings.Builder
	dumpValue(&sb, v, opts)
	return sb.String()
}

func dumpValue(sb *strings.Builder, v Value, opts DumpOptions) {
	if IsAbsent(v) {
		sb.WriteString("null")
		return
	}
	switch x := v.(type) {
	case String:
		sb.WriteString(strconv.Quote(string(x)))
	case Int:
		sb.WriteString(strconv.FormatInt(int64(x), 10))
	case Float:
		sb.WriteString(formatFloat(float64(x)))
	case *Node:
		dumpNode(sb, x, opts)
	}
}

func dumpNode(sb *strings.Builder, n *Node, opts DumpOptions) {
	sb.WriteString(n.Kind.String())
	if opts.LineNumbers {
		fmt.Fprintf(sb, " @ %d", n.Lineno)
		if n.decl != nil {
			fmt.Fprintf(sb, "-%d", n.decl.EndLineno)
		}
	}
	if n.Flags != 0 || flagSets[n.Kind].exclusive {
		sb.WriteString("\n    flags: ")
		sb.WriteString(FormatFlags(n.Kind, n.Flags))
	}
	if n.decl != nil {
		sb.WriteString("\n    name: ")
		sb.WriteString(n.decl.Name)
		if n.decl.DocComment != "" {
			sb.WriteString("\n    docComment: ")
			sb.WriteString(n.decl.DocComment)
		}
	}
	for i, c := range n.children {
		label := c.Name
		if label == "" {
			label = strconv.Itoa(i)
		}
		var child strings.Builder
		dumpValue(&child, c.Value, opts)
		sb.WriteString("\n    ")
		sb.WriteString(label)
		sb.WriteString(": ")
		sb.WriteString(strings.ReplaceAll(child.String(), "\n", "\n    "))
	}
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEnNI") {
		s += ".0"
	}
	return s
}

// NormalizeOptions selects the normalizations applied by Normalize
type NormalizeOptions struct {
	// LineNumbers resets every lineno (and endLineno) to 1
	LineNumbers bool
	// Generators clears FUNC_GENERATOR from every function-like declaration
	Generators bool
}

// Normalize returns a copy of v with the selected normalizations applied.
// Trees from other producers may disagree on generator marking and line
// numbers, so comparisons go through this first.
func Normalize(v Value, opts NormalizeOptions) Value {
	n, ok := v.(*Node)
	if !ok || n == nil {
		return normalizeValue(v)
	}
	out := &Node{Kind: n.Kind, Flags: n.Flags, Lineno: n.Lineno}
	if opts.LineNumbers {
		out.Lineno = 1
	}
	if opts.Generators && n.Kind.IsDecl() && n.Kind != KindClass {
		out.Flags &^= FuncGenerator
	}
	if n.decl != nil {
		decl := *n.decl
		if opts.LineNumbers {
			decl.EndLineno = 1
		}
		out.decl = &decl
	}
	out.children = make([]Child, len(n.children))
	for i, c := range n.children {
		out.children[i] = Child{Name: c.Name, Value: Normalize(c.Value, opts)}
	}
	return out
}
