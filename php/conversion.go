package php

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/heshanpadmasiri/phpast/phpast"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

var (
	// ErrUnhandledKind is returned in strict mode when a source construct has no conversion rule
	ErrUnhandledKind = errors.New("unhandled node kind")
	// ErrInvalidNode is returned when the converter is handed something that is not a PHP tree
	ErrInvalidNode = errors.New("invalid source node")
)

// Options configure a single conversion. They are fixed for the lifetime of
// a ConversionContext.
type Options struct {
	// Version is the requested php-ast node format version
	Version int
	// Placeholders substitutes sentinel names for pieces the parser could not
	// recover instead of dropping the enclosing construct
	Placeholders bool
	// Strict aborts the conversion on the first construct without a conversion rule
	Strict bool
	// Logger receives debug and warning records, discarded when nil
	Logger *slog.Logger
}

// DefaultOptions returns options for the supported version with placeholders off
func DefaultOptions() Options {
	return Options{Version: phpast.Version}
}

// ConversionContext holds state during tree-sitter to php-ast conversion
type ConversionContext struct {
	Source         []byte
	SourceFilePath string
	Options        Options
	Errors         []ConversionError // Collected degradations and recoveries

	logger *slog.Logger
}

// ConversionError describes a construct that was stubbed or salvaged
type ConversionError struct {
	Location  string // e.g. "test.php:3:5"
	PHPSource string // The PHP code that failed
	SExpr     string // The S-expression
	Message   string
	NodeKind  string
}

func (e ConversionError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Location, e.Message, e.NodeKind)
}

// conversionPanic unwinds a strict conversion back to ConvertTree
type conversionPanic struct {
	err error
}

// NewConversionContext creates and initializes a new ConversionContext
func NewConversionContext(source []byte, sourceFilePath string, opts Options) *ConversionContext {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ConversionContext{
		Source:         source,
		SourceFilePath: sourceFilePath,
		Options:        opts,
		Errors:         []ConversionError{},
		logger:         logger.With("file", sourceFilePath),
	}
}

// ConvertTree converts a whole tree-sitter PHP tree into an AST_STMT_LIST
func ConvertTree(ctx *ConversionContext, tree *tree_sitter.Tree) (root *phpast.Node, err error) {
	if err := phpast.CheckVersion(ctx.Options.Version); err != nil {
		return nil, err
	}
	if tree == nil {
		return nil, fmt.Errorf("%w: nil tree", ErrInvalidNode)
	}
	node := tree.RootNode()
	if node.Kind() != "program" && !node.IsError() {
		return nil, fmt.Errorf("%w: root is %s, not program", ErrInvalidNode, node.Kind())
	}

	defer func() {
		if r := recover(); r != nil {
			p, ok := r.(conversionPanic)
			if !ok {
				panic(r)
			}
			root, err = nil, p.err
		}
	}()
	if node.IsError() {
		// an unterminated class or function leaves no program node
		stmts := salvageError(ctx, node)
		return phpast.NewList(phpast.KindStmtList, 0, firstLine(stmts, 1), stmts), nil
	}
	return convertProgram(ctx, node), nil
}

// ParseCode parses and converts PHP source in one step
func ParseCode(source []byte, sourceFilePath string, opts Options) (*phpast.Node, *ConversionContext, error) {
	if err := phpast.CheckVersion(opts.Version); err != nil {
		return nil, nil, err
	}
	tree := ParsePHP(source)
	defer tree.Close()

	ctx := NewConversionContext(source, sourceFilePath, opts)
	root, err := ConvertTree(ctx, tree)
	return root, ctx, err
}

// location returns file:line:column of a node, 1-based
func (ctx *ConversionContext) location(node *tree_sitter.Node) string {
	pos := node.StartPosition()
	return fmt.Sprintf("%s:%d:%d", ctx.SourceFilePath, pos.Row+1, pos.Column+1)
}

// report records a conversion error for node
func (ctx *ConversionContext) report(node *tree_sitter.Node, msg string) {
	ctx.Errors = append(ctx.Errors, ConversionError{
		Location:  ctx.location(node),
		PHPSource: text(ctx, node),
		SExpr:     node.ToSexp(),
		Message:   msg,
		NodeKind:  node.Kind(),
	})
}

// unhandled degrades a construct without a conversion rule to a stub node.
// In strict mode it aborts the conversion instead.
func (ctx *ConversionContext) unhandled(node *tree_sitter.Node, line int) *phpast.Node {
	msg := fmt.Sprintf("no conversion for %s", node.Kind())
	if ctx.Options.Strict {
		panic(conversionPanic{fmt.Errorf("%w: %s at %s", ErrUnhandledKind, node.Kind(), ctx.location(node))})
	}
	ctx.report(node, msg)
	ctx.logger.Warn("unhandled node kind", "kind", node.Kind(), "line", line)
	return phpast.NewUnhandled(node.Kind(), line)
}
