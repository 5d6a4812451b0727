package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/heshanpadmasiri/phpast/php"
	"github.com/heshanpadmasiri/phpast/phpast"
)

func TestErrorRecovery(t *testing.T) {
	// PHP source mixing supported code with a PHP 8 enum and a broken statement
	phpSource := []byte(`<?php
$valid1 = 5;

function getValid1() {
    return $GLOBALS['valid1'];
}

// Enums have no php-ast version 40 shape
enum Suit {
    case Hearts;
}

$broken = $obj->;

$valid2 = 10;
`)
	path := filepath.Join(t.TempDir(), "recovery.php")
	if err := os.WriteFile(path, phpSource, 0o644); err != nil {
		t.Fatalf("Failed to write source: %v", err)
	}

	t.Run("non-strict mode continues on error", func(t *testing.T) {
		conv, err := convertFile(path, defaultConfig(), quietLogger())
		if err != nil {
			t.Fatalf("Expected conversion to succeed, got %v", err)
		}

		foundEnum := false
		for _, e := range conv.ctx.Errors {
			if e.NodeKind == "enum_declaration" {
				foundEnum = true
				if !strings.Contains(e.Location, "recovery.php:9:") {
					t.Errorf("Expected enum error on line 9, got: %s", e.Location)
				}
			}
		}
		if !foundEnum {
			t.Errorf("Expected an error about enum_declaration, got: %v", conv.ctx.Errors)
		}

		stubs := phpast.Find(conv.root, phpast.KindUnhandled)
		if len(stubs) != 1 {
			t.Errorf("Expected 1 stub, got %d", len(stubs))
		}

		if conv.markers.Errors == 0 {
			t.Error("Expected the parser to report an ERROR node")
		}

		// The statements around the failures are still converted
		targets := map[string]bool{}
		for _, assign := range phpast.Find(conv.root, phpast.KindAssign) {
			if v := assign.ChildNode("var"); v != nil && v.Kind == phpast.KindVar {
				if name, ok := v.Child("name").(phpast.String); ok {
					targets[string(name)] = true
				}
			}
		}
		if !targets["valid1"] || !targets["valid2"] {
			t.Errorf("Expected valid1 and valid2 to be assigned, got %v", targets)
		}
		if funcs := phpast.Find(conv.root, phpast.KindFuncDecl); len(funcs) != 1 {
			t.Errorf("Expected 1 function, got %d", len(funcs))
		}
		if props := phpast.Find(conv.root, phpast.KindProp); len(props) != 0 {
			t.Errorf("Expected the incomplete property access to be dropped, got %d", len(props))
		}
	})

	t.Run("placeholders keep the incomplete access", func(t *testing.T) {
		c := defaultConfig()
		c.Placeholders = true
		conv, err := convertFile(path, c, quietLogger())
		if err != nil {
			t.Fatalf("Expected conversion to succeed, got %v", err)
		}
		props := phpast.Find(conv.root, phpast.KindProp)
		if len(props) != 1 {
			t.Fatalf("Expected 1 property access, got %d", len(props))
		}
		if got := props[0].Child("prop"); got != phpast.String(php.IncompleteProperty) {
			t.Errorf("Expected placeholder property name, got %v", got)
		}
	})

	t.Run("strict mode stops at the first unhandled construct", func(t *testing.T) {
		c := defaultConfig()
		c.Strict = true
		_, err := convertFile(path, c, quietLogger())
		if !errors.Is(err, php.ErrUnhandledKind) {
			t.Fatalf("Expected ErrUnhandledKind, got %v", err)
		}
		if !strings.Contains(err.Error(), "enum_declaration") {
			t.Errorf("Expected the error to name enum_declaration, got: %v", err)
		}
	})
}
