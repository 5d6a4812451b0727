package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/heshanpadmasiri/phpast/diagnostics"
	"github.com/heshanpadmasiri/phpast/phpast"
)

var update = flag.Bool("update", false, "update expected AST dumps")

func TestMain(m *testing.M) {
	flag.Parse()
	color.NoColor = true
	os.Exit(m.Run())
}

func getASTFilePath(phpFile string) string {
	baseName := strings.TrimSuffix(filepath.Base(phpFile), ".php")
	return filepath.Join("testdata", "ast", baseName+".txt")
}

func updateExpectedFile(astFile string, content string) error {
	dir := filepath.Dir(astFile)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return os.WriteFile(astFile, []byte(content), 0o644)
}

func quietLogger() *slog.Logger {
	return diagnostics.NewLogger(false, io.Discard)
}

func TestConversion(t *testing.T) {
	phpDir := filepath.Join("testdata", "php")
	entries, err := os.ReadDir(phpDir)
	if err != nil {
		t.Fatalf("Failed to read testdata/php directory: %v", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".php") {
			continue
		}

		phpFile := filepath.Join(phpDir, entry.Name())
		testName := strings.TrimSuffix(entry.Name(), ".php")

		t.Run(testName, func(t *testing.T) {
			conv, err := convertFile(phpFile, defaultConfig(), quietLogger())
			if err != nil {
				t.Fatalf("Failed to convert %s: %v", phpFile, err)
			}
			result := phpast.Dump(conv.root, phpast.DumpOptions{LineNumbers: true}) + "\n"

			astFile := getASTFilePath(phpFile)
			expected, err := os.ReadFile(astFile)
			if err != nil {
				if *update {
					if err := updateExpectedFile(astFile, result); err != nil {
						t.Fatalf("Failed to update expected file: %v", err)
					}
					t.Logf("Created expected file: %s", astFile)
					return
				}
				t.Fatalf("Failed to read expected dump %s: %v", astFile, err)
			}

			expectedStr := string(expected)
			if result != expectedStr {
				if *update {
					if err := updateExpectedFile(astFile, result); err != nil {
						t.Fatalf("Failed to update expected file: %v", err)
					}
					t.Logf("Updated expected file: %s", astFile)
					return
				}
				t.Errorf("Output does not match expected:\n--- Got ---\n%s\n--- Expected ---\n%s", result, expectedStr)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name          string
		configContent string
		createConfig  bool
		expected      config
	}{
		{
			name: "all_keys",
			configContent: `ast_version = 40
placeholders = true
strict = true
format = "json"
line_numbers = false
color = false
`,
			createConfig: true,
			expected: config{
				ASTVersion:   40,
				Placeholders: true,
				Strict:       true,
				Format:       "json",
				LineNumbers:  false,
				Color:        false,
			},
		},
		{
			name:          "only_placeholders",
			configContent: "placeholders = true\n",
			createConfig:  true,
			expected: config{
				ASTVersion:   phpast.Version,
				Placeholders: true,
				Format:       phpast.FormatText,
				LineNumbers:  true,
				Color:        true,
			},
		},
		{
			name:          "invalid_toml",
			configContent: "format = [\n",
			createConfig:  true,
			expected:      defaultConfig(),
		},
		{
			name:         "no_config_file",
			createConfig: false,
			expected:     defaultConfig(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()

			originalWd, err := os.Getwd()
			if err != nil {
				t.Fatalf("Failed to get current working directory: %v", err)
			}
			defer os.Chdir(originalWd)

			if err := os.Chdir(tmpDir); err != nil {
				t.Fatalf("Failed to change to temp directory: %v", err)
			}

			if tt.createConfig {
				configPath := filepath.Join(tmpDir, "Config.toml")
				if err := os.WriteFile(configPath, []byte(tt.configContent), 0o644); err != nil {
					t.Fatalf("Failed to write Config.toml: %v", err)
				}
			}

			got := loadConfig()
			if got != tt.expected {
				t.Errorf("Expected config %+v, got %+v", tt.expected, got)
			}
		})
	}
}

func TestConfigOptions(t *testing.T) {
	c := defaultConfig()
	c.Placeholders = true
	c.Strict = true
	opts := c.options()
	if opts.Version != phpast.Version || !opts.Placeholders || !opts.Strict {
		t.Errorf("Unexpected options %+v", opts)
	}
	if !c.dumpOptions().LineNumbers {
		t.Error("Expected line numbers to be enabled by default")
	}
}

func TestConvertFileRejectsUnsupportedVersion(t *testing.T) {
	c := defaultConfig()
	c.ASTVersion = 70
	_, err := convertFile(filepath.Join("testdata", "php", "function.php"), c, quietLogger())
	if !errors.Is(err, phpast.ErrUnsupportedVersion) {
		t.Errorf("Expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestConvertFileMissing(t *testing.T) {
	_, err := convertFile(filepath.Join("testdata", "php", "does_not_exist.php"), defaultConfig(), quietLogger())
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected a not-exist error, got %v", err)
	}
}

func TestRunDumpFormats(t *testing.T) {
	phpFile := filepath.Join("testdata", "php", "assign_and_echo.php")

	var out strings.Builder
	c := defaultConfig()
	c.LineNumbers = false
	if err := runDump(&out, []string{phpFile}, c, quietLogger()); err != nil {
		t.Fatalf("runDump failed: %v", err)
	}
	if !strings.HasPrefix(out.String(), "AST_STMT_LIST\n    0: AST_ASSIGN\n") {
		t.Errorf("Unexpected text dump:\n%s", out.String())
	}

	out.Reset()
	c.Format = phpast.FormatJSON
	if err := runDump(&out, []string{phpFile}, c, quietLogger()); err != nil {
		t.Fatalf("runDump failed: %v", err)
	}
	if !strings.Contains(out.String(), `"AST_BINARY_OP"`) {
		t.Errorf("Expected JSON output to name AST_BINARY_OP, got:\n%s", out.String())
	}

	out.Reset()
	c.Format = "xml"
	err := runDump(&out, []string{phpFile}, c, quietLogger())
	if !errors.Is(err, phpast.ErrUnknownFormat) {
		t.Errorf("Expected ErrUnknownFormat, got %v", err)
	}
}

func TestRunDumpSeparatesFiles(t *testing.T) {
	files := []string{
		filepath.Join("testdata", "php", "function.php"),
		filepath.Join("testdata", "php", "class.php"),
	}
	var out strings.Builder
	if err := runDump(&out, files, defaultConfig(), quietLogger()); err != nil {
		t.Fatalf("runDump failed: %v", err)
	}
	for _, f := range files {
		if !strings.Contains(out.String(), "// "+f+"\n") {
			t.Errorf("Expected a header for %s, got:\n%s", f, out.String())
		}
	}
}

func TestRunDiff(t *testing.T) {
	phpFile := filepath.Join("testdata", "php", "function.php")

	var out strings.Builder
	if err := runDiff(&out, phpFile, getASTFilePath(phpFile), false, defaultConfig(), quietLogger()); err != nil {
		t.Fatalf("Expected matching trees, got %v\n%s", err, out.String())
	}
	if !strings.Contains(out.String(), "trees match") {
		t.Errorf("Expected a match message, got:\n%s", out.String())
	}

	out.Reset()
	other := getASTFilePath(filepath.Join("testdata", "php", "class.php"))
	err := runDiff(&out, phpFile, other, false, defaultConfig(), quietLogger())
	if !errors.Is(err, errMismatch) {
		t.Fatalf("Expected errMismatch, got %v", err)
	}
	if !strings.Contains(out.String(), "-    0: AST_CLASS @ 2-4") {
		t.Errorf("Expected the expected-only line to be marked, got:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "+    0: AST_FUNC_DECL @ 2-4") {
		t.Errorf("Expected the produced-only line to be marked, got:\n%s", out.String())
	}
}

func TestRunDiffNormalizeLines(t *testing.T) {
	phpFile := filepath.Join("testdata", "php", "assign_and_echo.php")
	expected := filepath.Join(t.TempDir(), "shifted.txt")

	// the same tree, every line moved down by ten
	content := strings.Join([]string{
		"AST_STMT_LIST @ 12",
		"    0: AST_ASSIGN @ 12",
		"        var: AST_VAR @ 12",
		`            name: "a"`,
		"        expr: AST_BINARY_OP @ 12",
		"            flags: BINARY_ADD (1)",
		"            left: 1",
		"            right: 2",
		"    1: AST_ECHO @ 13",
		"        expr: AST_VAR @ 13",
		`            name: "a"`,
		"    2: AST_ECHO @ 13",
		`        expr: "x"`,
	}, "\n") + "\n"
	if err := os.WriteFile(expected, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write expected dump: %v", err)
	}

	var out strings.Builder
	if err := runDiff(&out, phpFile, expected, false, defaultConfig(), quietLogger()); !errors.Is(err, errMismatch) {
		t.Errorf("Expected errMismatch without normalization, got %v", err)
	}
	out.Reset()
	if err := runDiff(&out, phpFile, expected, true, defaultConfig(), quietLogger()); err != nil {
		t.Errorf("Expected a match with normalized lines, got %v\n%s", err, out.String())
	}
}

func TestStripLineNumbers(t *testing.T) {
	in := "AST_FUNC_DECL @ 2-4\n    name: f\n    stmts: AST_STMT_LIST @ 3"
	want := "AST_FUNC_DECL\n    name: f\n    stmts: AST_STMT_LIST"
	if got := stripLineNumbers(in); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestRunStats(t *testing.T) {
	var out strings.Builder
	files := []string{filepath.Join("testdata", "php", "match_stub.php")}
	if err := runStats(&out, files, defaultConfig(), quietLogger()); err != nil {
		t.Fatalf("runStats failed: %v", err)
	}
	result := out.String()
	for _, want := range []string{"AST_ASSIGN", "AST_UNHANDLED", "stubs: 1", "degradations: 1", "recovery markers: 0", "parse errors: 0"} {
		if !strings.Contains(result, want) {
			t.Errorf("Expected stats output to contain %q, got:\n%s", want, result)
		}
	}
}

func TestRunStatsCountsRecoveryMarkers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.php")
	if err := os.WriteFile(path, []byte("<?php\n$a;\n)))\n$b;"), 0o644); err != nil {
		t.Fatalf("Failed to write source: %v", err)
	}
	var out strings.Builder
	if err := runStats(&out, []string{path}, defaultConfig(), quietLogger()); err != nil {
		t.Fatalf("runStats failed: %v", err)
	}
	if strings.Contains(out.String(), "recovery markers: 0") {
		t.Errorf("Expected recovery markers to be counted, got:\n%s", out.String())
	}
}

func TestKindHistogram(t *testing.T) {
	conv, err := convertFile(filepath.Join("testdata", "php", "assign_and_echo.php"), defaultConfig(), quietLogger())
	if err != nil {
		t.Fatalf("Failed to convert: %v", err)
	}
	counts := kindHistogram(conv.root)
	if counts[phpast.KindEcho] != 2 {
		t.Errorf("Expected 2 AST_ECHO nodes, got %d", counts[phpast.KindEcho])
	}
	if counts[phpast.KindVar] != 2 {
		t.Errorf("Expected 2 AST_VAR nodes, got %d", counts[phpast.KindVar])
	}
	if counts[phpast.KindStmtList] != 1 {
		t.Errorf("Expected 1 AST_STMT_LIST node, got %d", counts[phpast.KindStmtList])
	}
}

func TestWriteKinds(t *testing.T) {
	var out strings.Builder
	writeKinds(&out)
	for _, want := range []string{"AST_STMT_LIST", "AST_BINARY_OP", "left, right", "BINARY_ADD"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("Expected kinds table to contain %q", want)
		}
	}
}
