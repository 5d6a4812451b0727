// Command phpast converts PHP source into php-ast version 40 trees
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/heshanpadmasiri/phpast/diagnostics"
	"github.com/heshanpadmasiri/phpast/php"
	"github.com/heshanpadmasiri/phpast/phpast"
)

// errMismatch is returned by diff when the produced tree differs from the expected dump
var errMismatch = errors.New("trees differ")

var verbose bool //nolint:gochecknoglobals // CLI flag variable

func main() {
	rootCmd := &cobra.Command{
		Use:           "phpast",
		Short:         "Convert PHP source into php-ast trees",
		Long:          `phpast parses PHP with tree-sitter and prints the php-ast (version 40) tree of each file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every degraded or salvaged construct")

	rootCmd.AddCommand(dumpCmd())
	rootCmd.AddCommand(diffCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(kindsCmd())

	err := rootCmd.Execute()
	if errors.Is(err, errMismatch) {
		os.Exit(1)
	}
	diagnostics.Fatal("phpast", err)
}

// conversion is the outcome of converting one file
type conversion struct {
	root    *phpast.Node
	ctx     *php.ConversionContext
	markers php.RecoveryMarkers
}

// convertFile reads and converts the PHP file at path
func convertFile(path string, cfg config, logger *slog.Logger) (*conversion, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	opts := cfg.options()
	opts.Logger = logger

	tree := php.ParsePHP(source)
	defer tree.Close()

	ctx := php.NewConversionContext(source, path, opts)
	root, err := php.ConvertTree(ctx, tree)
	if err != nil {
		return nil, fmt.Errorf("converting %s: %w", path, err)
	}
	for _, e := range ctx.Errors {
		logger.Debug("degraded construct", "location", e.Location, "kind", e.NodeKind, "message", e.Message)
	}
	return &conversion{root: root, ctx: ctx, markers: php.CountRecoveryMarkers(tree, source)}, nil
}

func dumpCmd() *cobra.Command {
	var (
		format       string
		placeholders bool
		noLines      bool
		strict       bool
		version      int
	)
	cmd := &cobra.Command{
		Use:   "dump FILE...",
		Short: "Print the php-ast tree of each file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			flags := cmd.Flags()
			if flags.Changed("format") {
				cfg.Format = format
			}
			if flags.Changed("placeholders") {
				cfg.Placeholders = placeholders
			}
			if flags.Changed("no-lines") {
				cfg.LineNumbers = !noLines
			}
			if flags.Changed("strict") {
				cfg.Strict = strict
			}
			if flags.Changed("version") {
				cfg.ASTVersion = version
			}
			logger := diagnostics.NewLogger(verbose, cmd.ErrOrStderr())
			return runDump(cmd.OutOrStdout(), args, cfg, logger)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", phpast.FormatText, "output format (text, json, yaml)")
	cmd.Flags().BoolVar(&placeholders, "placeholders", false, "substitute placeholders for incomplete code")
	cmd.Flags().BoolVar(&noLines, "no-lines", false, "omit line numbers from text output")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on the first construct without a conversion")
	cmd.Flags().IntVar(&version, "version", phpast.Version, "php-ast version to emit")
	return cmd
}

func runDump(w io.Writer, paths []string, cfg config, logger *slog.Logger) error {
	for _, path := range paths {
		conv, err := convertFile(path, cfg, logger)
		if err != nil {
			return err
		}
		if len(paths) > 1 && cfg.Format == phpast.FormatText {
			fmt.Fprintf(w, "// %s\n", path)
		}
		if err := phpast.Encode(w, conv.root, cfg.Format, cfg.dumpOptions()); err != nil {
			return fmt.Errorf("dumping %s: %w", path, err)
		}
		if n := len(conv.ctx.Errors); n > 0 {
			logger.Warn("file converted with degradations", "file", path, "count", n)
		}
	}
	return nil
}

func diffCmd() *cobra.Command {
	var normalizeLines bool
	cmd := &cobra.Command{
		Use:   "diff FILE EXPECTED",
		Short: "Compare the tree of FILE with an expected text dump",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			color.NoColor = color.NoColor || !cfg.Color
			logger := diagnostics.NewLogger(verbose, cmd.ErrOrStderr())
			return runDiff(cmd.OutOrStdout(), args[0], args[1], normalizeLines, cfg, logger)
		},
	}
	cmd.Flags().BoolVar(&normalizeLines, "normalize-lines", false, "ignore line numbers on both sides")
	return cmd
}

var lineAnnotation = regexp.MustCompile(` @ \d+(-\d+)?$`)

// stripLineNumbers removes the "@ lineno" suffixes of a text dump
func stripLineNumbers(dump string) string {
	lines := strings.Split(dump, "\n")
	for i, line := range lines {
		lines[i] = lineAnnotation.ReplaceAllString(line, "")
	}
	return strings.Join(lines, "\n")
}

func runDiff(w io.Writer, path, expectedPath string, normalizeLines bool, cfg config, logger *slog.Logger) error {
	conv, err := convertFile(path, cfg, logger)
	if err != nil {
		return err
	}
	expected, err := os.ReadFile(expectedPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", expectedPath, err)
	}

	var root phpast.Value = conv.root
	want := strings.TrimRight(string(expected), "\n")
	if normalizeLines {
		root = phpast.Normalize(root, phpast.NormalizeOptions{LineNumbers: true})
		want = stripLineNumbers(want)
	}
	got := phpast.Dump(root, phpast.DumpOptions{LineNumbers: !normalizeLines})
	if got == want {
		fmt.Fprintln(w, color.GreenString("%s: trees match", path))
		return nil
	}
	writeLineDiff(w, want, got)
	return fmt.Errorf("%s: %w", path, errMismatch)
}

// writeLineDiff prints a line-mode diff of two dumps, expected first
func writeLineDiff(w io.Writer, want, got string) {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(want+"\n", got+"\n")
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	fmt.Fprintln(w, color.RedString("--- expected"))
	fmt.Fprintln(w, color.GreenString("+++ produced"))
	for _, d := range diffs {
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			line = strings.TrimSuffix(line, "\n")
			switch d.Type {
			case diffmatchpatch.DiffDelete:
				fmt.Fprintln(w, color.RedString("-%s", line))
			case diffmatchpatch.DiffInsert:
				fmt.Fprintln(w, color.GreenString("+%s", line))
			case diffmatchpatch.DiffEqual:
				fmt.Fprintf(w, " %s\n", line)
			}
		}
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats FILE...",
		Short: "Count the php-ast node kinds produced for each file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := diagnostics.NewLogger(verbose, cmd.ErrOrStderr())
			return runStats(cmd.OutOrStdout(), args, loadConfig(), logger)
		},
	}
}

// kindHistogram counts the nodes of every kind in a tree
func kindHistogram(root phpast.Value) map[phpast.Kind]int {
	counts := map[phpast.Kind]int{}
	phpast.Walk(root, func(n *phpast.Node) bool {
		counts[n.Kind]++
		return true
	})
	return counts
}

func runStats(w io.Writer, paths []string, cfg config, logger *slog.Logger) error {
	for _, path := range paths {
		conv, err := convertFile(path, cfg, logger)
		if err != nil {
			return err
		}
		counts := kindHistogram(conv.root)
		kinds := make([]phpast.Kind, 0, len(counts))
		total := 0
		for k, n := range counts {
			kinds = append(kinds, k)
			total += n
		}
		sort.Slice(kinds, func(i, j int) bool {
			if counts[kinds[i]] != counts[kinds[j]] {
				return counts[kinds[i]] > counts[kinds[j]]
			}
			return kinds[i] < kinds[j]
		})

		tbl := table.NewWriter()
		tbl.SetOutputMirror(w)
		tbl.SetStyle(table.StyleLight)
		tbl.SetTitle("%s", path)
		tbl.AppendHeader(table.Row{"Kind", "Count"})
		for _, k := range kinds {
			tbl.AppendRow(table.Row{k.String(), counts[k]})
		}
		tbl.AppendFooter(table.Row{"Total", total})
		tbl.Render()

		fmt.Fprintf(w, "stubs: %d  degradations: %d  recovery markers: %d (parse errors: %d, missing tokens: %d)\n",
			counts[phpast.KindUnhandled], len(conv.ctx.Errors), conv.markers.Total(), conv.markers.Errors, conv.markers.Missing)
	}
	return nil
}

func kindsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the php-ast node kinds and their child layout",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			writeKinds(cmd.OutOrStdout())
		},
	}
}

func writeKinds(w io.Writer) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Kind", "Value", "Children", "Flags"})
	for _, k := range phpast.Kinds() {
		children := "list"
		if !k.IsList() {
			children = strings.Join(k.ChildNames(), ", ")
		}
		tbl.AppendRow(table.Row{k.String(), int(k), children, strings.Join(phpast.FlagNames(k), " ")})
	}
	tbl.Render()
}
